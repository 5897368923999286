package imaging

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Expansion is the number of pixels added on each side of an image.
type Expansion struct {
	Left, Right, Top, Bottom int

	// Overlap extends the masked area this many pixels into the source on
	// every side that grows, so the model blends across the seam.
	Overlap int
}

// ExpandCanvas builds the outpainting canvas for img: a white image grown by
// e with the source pasted at (Left, Top), and a grayscale mask of the same
// size that is white over the new area (plus the overlap) and black over
// the preserved source pixels.
//
// Negative amounts are treated as zero.
func ExpandCanvas(img image.Image, e Expansion) (*image.NRGBA, *image.Gray) {
	e.Left, e.Right = max(e.Left, 0), max(e.Right, 0)
	e.Top, e.Bottom = max(e.Top, 0), max(e.Bottom, 0)
	e.Overlap = max(e.Overlap, 0)

	b := img.Bounds()
	w := b.Dx() + e.Left + e.Right
	h := b.Dy() + e.Top + e.Bottom

	canvas := imaging.New(w, h, color.White)
	canvas = imaging.Paste(canvas, img, image.Pt(e.Left, e.Top))

	keep := image.Rect(e.Left, e.Top, e.Left+b.Dx(), e.Top+b.Dy())
	if e.Left > 0 {
		keep.Min.X += e.Overlap
	}
	if e.Right > 0 {
		keep.Max.X -= e.Overlap
	}
	if e.Top > 0 {
		keep.Min.Y += e.Overlap
	}
	if e.Bottom > 0 {
		keep.Max.Y -= e.Overlap
	}

	mask := image.NewGray(image.Rect(0, 0, w, h))
	for i := range mask.Pix {
		mask.Pix[i] = 255
	}
	if !keep.Empty() {
		for y := keep.Min.Y; y < keep.Max.Y; y++ {
			clear(mask.Pix[y*mask.Stride+keep.Min.X : y*mask.Stride+keep.Max.X])
		}
	}

	return canvas, mask
}
