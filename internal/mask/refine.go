package mask

import (
	"image"
	"image/draw"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
)

// Expansion and feather radii the processing service applies to masks
// before generation.
const (
	InpaintExpand   = 5
	InpaintFeather  = 20.0
	OutpaintExpand  = 50
	OutpaintFeather = 50.0
)

// Refine grows the white area of m by expand pixels and then softens its
// edges with a Gaussian blur of radius feather. Either step is skipped when
// its argument is not positive. The result is a new image; m is unchanged.
//
// Dilation cost grows with the square of expand. Outpainting masks are
// rectangular frames and are grown when they are built instead.
//
// Refined masks are for previewing what the service will paint. They are
// not binary and are never what ExportMask returns.
func Refine(m *image.Gray, expand int, feather float64) *image.Gray {
	var img image.Image = m
	if expand > 0 {
		img = effect.Dilate(img, float64(expand))
	}
	if feather > 0 {
		img = blur.Gaussian(img, feather)
	}

	b := img.Bounds()
	out := image.NewGray(b)
	draw.Draw(out, b, img, b.Min, draw.Src)
	return out
}
