package mask

import (
	"errors"
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
)

// ErrNotLoaded is returned by operations that need an image when none has
// been loaded into the layer.
var ErrNotLoaded = errors.New("no image loaded")

// Layer is the drawing layer of one editing session.
//
// The zero value is not usable; create layers with NewLayer. Until Reset is
// called the layer holds no buffers and every drawing operation is a no-op.
type Layer struct {
	style Style

	original *image.NRGBA
	drawing  *image.RGBA
	visible  *image.RGBA

	active bool
	last   Point
}

// NewLayer creates an empty layer that will draw with style.
// A non-positive style width falls back to DefaultWidth.
func NewLayer(style Style) *Layer {
	if style.Width <= 0 {
		style.Width = DefaultWidth
	}
	return &Layer{style: style}
}

// Style returns the stroke style.
func (l *Layer) Style() Style {
	return l.style
}

// Reset replaces the source image. All buffers are reallocated at the
// source's dimensions, the drawing is fully transparent and any stroke in
// progress is abandoned. The source is copied; later changes to src do not
// affect the layer.
func (l *Layer) Reset(src image.Image) {
	l.original = imaging.Clone(src)
	b := l.original.Bounds()
	l.drawing = image.NewRGBA(b)
	l.visible = image.NewRGBA(b)
	l.active = false
	l.last = Point{}
	l.composite()
}

// Loaded reports whether Reset has been called.
func (l *Layer) Loaded() bool {
	return l.drawing != nil
}

// Bounds returns the layer bounds, or the empty rectangle before load.
func (l *Layer) Bounds() image.Rectangle {
	if !l.Loaded() {
		return image.Rectangle{}
	}
	return l.drawing.Bounds()
}

// Active reports whether a stroke is in progress.
func (l *Layer) Active() bool {
	return l.active
}

// BeginStroke starts a new stroke at p. It must precede the first segment
// of every stroke so separate strokes are never joined.
func (l *Layer) BeginStroke(p Point) {
	if !l.Loaded() {
		return
	}
	l.active = true
	l.last = p
}

// ExtendStroke draws a segment from the previous point to p and makes p the
// start of the next segment. It does nothing unless a stroke is active.
//
// Each call selects its own composite mode, so an ADD segment following an
// ERASE segment is always drawn with source-over.
func (l *Layer) ExtendStroke(p Point, mode Mode) {
	if !l.Loaded() || !l.active {
		return
	}

	var blend blendFunc
	switch mode {
	case ModeErase:
		blend = destinationOut(255)
	default:
		blend = sourceOver(l.style.Color)
	}

	paintSegment(l.drawing, l.last, p, l.style.Width, blend)
	l.last = p
	l.composite()
}

// EndStroke finishes the current stroke and forgets its last point.
func (l *Layer) EndStroke() {
	l.active = false
	l.last = Point{}
}

// Clear makes the whole drawing transparent. Dimensions are unchanged.
func (l *Layer) Clear() {
	if !l.Loaded() {
		return
	}
	clear(l.drawing.Pix)
	l.composite()
}

// Composite returns the visible image: the original with the drawing on
// top. The returned image is owned by the layer and must not be modified.
// It is nil before load.
func (l *Layer) Composite() *image.RGBA {
	return l.visible
}

// Buffer returns the drawing buffer (premultiplied RGBA). The returned
// image is owned by the layer and must not be modified.
func (l *Layer) Buffer() *image.RGBA {
	return l.drawing
}

// AlphaAt returns the drawing alpha at (x, y), or 0 outside the layer.
func (l *Layer) AlphaAt(x, y int) uint8 {
	if !l.Loaded() || !image.Pt(x, y).In(l.drawing.Bounds()) {
		return 0
	}
	return l.drawing.RGBAAt(x, y).A
}

func (l *Layer) composite() {
	b := l.visible.Bounds()
	draw.Draw(l.visible, b, l.original, b.Min, draw.Src)
	draw.Draw(l.visible, b, l.drawing, b.Min, draw.Over)
}
