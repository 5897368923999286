package mask

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	// DefaultWidth is the stroke width in image-space pixels.
	DefaultWidth = 40.0

	// DefaultColor and DefaultOpacity give the semi-transparent red used
	// for on-screen feedback. Only the resulting alpha matters for the mask.
	DefaultColor   = "#FF0000"
	DefaultOpacity = 0.7

	// AlphaThreshold is the drawing alpha a pixel must exceed to be
	// included in an exported mask.
	AlphaThreshold = 10
)

// Mode selects how a stroke segment is composited into the drawing layer.
type Mode int

const (
	ModeAdd Mode = iota
	ModeErase
)

// String returns "draw" or "erase".
func (m Mode) String() string {
	switch m {
	case ModeAdd:
		return "draw"
	case ModeErase:
		return "erase"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts "draw" (or "add") and "erase".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "draw", "add":
		return ModeAdd, nil
	case "erase":
		return ModeErase, nil
	default:
		return ModeAdd, fmt.Errorf("unknown draw mode: %s", s)
	}
}

// Style holds the stroke appearance. Color is non-premultiplied; its alpha
// is the opacity of one ADD segment.
type Style struct {
	Color color.NRGBA
	Width float64
}

// DefaultStyle returns 40px strokes in red at 70% opacity.
func DefaultStyle() Style {
	return Style{
		Color: color.NRGBA{R: 255, G: 0, B: 0, A: 179},
		Width: DefaultWidth,
	}
}

// ParseStyle builds a Style from a hex colour ("#RRGGBB", "#RGB", with or
// without the leading '#') and an opacity in (0, 1].
//
// The opacity must leave a single ADD segment above AlphaThreshold,
// otherwise strokes would be visible but never reach the mask.
func ParseStyle(hex string, opacity float64) (Style, error) {
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return Style{}, fmt.Errorf("invalid mask color %q: %w", hex, err)
	}
	if opacity <= 0 || opacity > 1 || math.IsNaN(opacity) {
		return Style{}, fmt.Errorf("mask opacity must be in (0,1], got %v", opacity)
	}

	alpha := uint8(math.Round(opacity * 255))
	if alpha <= AlphaThreshold {
		return Style{}, fmt.Errorf("mask opacity %v is below the mask threshold", opacity)
	}

	r, g, b := c.RGB255()
	return Style{
		Color: color.NRGBA{R: r, G: g, B: b, A: alpha},
		Width: DefaultWidth,
	}, nil
}
