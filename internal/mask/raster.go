package mask

import (
	"image"
	"image/color"
	"math"
)

// Point is a position in image space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) finite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// blendFunc composites into one premultiplied RGBA pixel in place.
type blendFunc func(px []uint8)

// sourceOver paints c over the destination.
func sourceOver(c color.NRGBA) blendFunc {
	a := uint32(c.A)
	r := mul255(uint32(c.R), a)
	g := mul255(uint32(c.G), a)
	b := mul255(uint32(c.B), a)
	inv := 255 - a

	return func(px []uint8) {
		px[0] = uint8(r + mul255(uint32(px[0]), inv))
		px[1] = uint8(g + mul255(uint32(px[1]), inv))
		px[2] = uint8(b + mul255(uint32(px[2]), inv))
		px[3] = uint8(a + mul255(uint32(px[3]), inv))
	}
}

// destinationOut removes alpha from the destination. With alpha 255 the
// pixel becomes fully transparent.
func destinationOut(alpha uint8) blendFunc {
	keep := 255 - uint32(alpha)
	return func(px []uint8) {
		px[0] = uint8(mul255(uint32(px[0]), keep))
		px[1] = uint8(mul255(uint32(px[1]), keep))
		px[2] = uint8(mul255(uint32(px[2]), keep))
		px[3] = uint8(mul255(uint32(px[3]), keep))
	}
}

func mul255(x, y uint32) uint32 {
	return (x*y + 127) / 255
}

// paintSegment applies blend once to every pixel whose centre lies within
// width/2 of the segment a-b. The covered set is a capsule, which gives
// round caps and, across consecutive segments, round joins. A zero-length
// segment paints a disc. Pixels outside dst are skipped.
func paintSegment(dst *image.RGBA, a, b Point, width float64, blend blendFunc) {
	if width <= 0 || !a.finite() || !b.finite() {
		return
	}

	r := width / 2
	bounds := dst.Bounds()
	minX := clampToRange(math.Floor(math.Min(a.X, b.X)-r), bounds.Min.X, bounds.Max.X)
	maxX := clampToRange(math.Ceil(math.Max(a.X, b.X)+r), bounds.Min.X, bounds.Max.X)
	minY := clampToRange(math.Floor(math.Min(a.Y, b.Y)-r), bounds.Min.Y, bounds.Max.Y)
	maxY := clampToRange(math.Ceil(math.Max(a.Y, b.Y)+r), bounds.Min.Y, bounds.Max.Y)

	dx := b.X - a.X
	dy := b.Y - a.Y
	lenSq := dx*dx + dy*dy
	rSq := r * r

	for y := minY; y < maxY; y++ {
		cy := float64(y) + 0.5
		row := dst.Pix[(y-bounds.Min.Y)*dst.Stride:]
		for x := minX; x < maxX; x++ {
			cx := float64(x) + 0.5

			// Project the pixel centre onto the segment.
			t := 0.0
			if lenSq > 0 {
				t = ((cx-a.X)*dx + (cy-a.Y)*dy) / lenSq
				t = math.Max(0, math.Min(1, t))
			}
			ex := cx - (a.X + t*dx)
			ey := cy - (a.Y + t*dy)
			if ex*ex+ey*ey > rSq {
				continue
			}

			off := (x - bounds.Min.X) * 4
			blend(row[off : off+4])
		}
	}
}

// clampToRange converts v to an int inside [lo, hi].
func clampToRange(v float64, lo, hi int) int {
	if v < float64(lo) {
		return lo
	}
	if v > float64(hi) {
		return hi
	}
	return int(v)
}
