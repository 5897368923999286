package mask

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ExportMask renders the drawing into a binary mask of the same size:
// white where the drawing alpha exceeds AlphaThreshold, black elsewhere.
//
// Calling it before an image is loaded is a precondition violation and
// returns ErrNotLoaded.
func (l *Layer) ExportMask() (*image.Gray, error) {
	if !l.Loaded() {
		return nil, ErrNotLoaded
	}
	return thresholdAlpha(l.drawing, AlphaThreshold), nil
}

// ExportMaskPNG is ExportMask encoded as PNG. The encoding is lossless and
// deterministic, so unchanged drawings produce identical bytes.
func (l *Layer) ExportMaskPNG() ([]byte, error) {
	m, err := l.ExportMask()
	if err != nil {
		return nil, err
	}
	return encodePNG(m)
}

// thresholdAlpha copies the alpha channel of src into a black/white image.
func thresholdAlpha(src *image.RGBA, threshold uint8) *image.Gray {
	b := src.Bounds()
	out := image.NewGray(b)
	w := b.Dx()

	for y := 0; y < b.Dy(); y++ {
		srow := src.Pix[y*src.Stride : y*src.Stride+4*w]
		drow := out.Pix[y*out.Stride : y*out.Stride+w]
		for x := range drow {
			if srow[4*x+3] > threshold {
				drow[x] = 0xff
			}
		}
	}
	return out
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode mask: %w", err)
	}
	return buf.Bytes(), nil
}
