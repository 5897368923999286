package pointer

import "fmt"

// Kind identifies the device that produced an Input.
type Kind int

const (
	KindMouse Kind = iota
	KindTouch
)

// String returns the wire name of the kind ("mouse" or "touch").
func (k Kind) String() string {
	switch k {
	case KindMouse:
		return "mouse"
	case KindTouch:
		return "touch"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind parses "mouse" or "touch". An empty string means mouse.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "", "mouse":
		return KindMouse, nil
	case "touch":
		return KindTouch, nil
	default:
		return KindMouse, fmt.Errorf("unknown pointer kind: %s", s)
	}
}

// Input is a single pointer position in client (viewport) space.
type Input struct {
	ClientX float64 `json:"client_x"`
	ClientY float64 `json:"client_y"`
	Kind    Kind    `json:"-"`
}

// Touch is one contact point of a touch event.
type Touch struct {
	ClientX float64 `json:"client_x"`
	ClientY float64 `json:"client_y"`
}

// FromTouches builds an Input from the first contact of a touch event.
// It reports false when the list is empty (e.g. on touchend).
func FromTouches(touches []Touch) (Input, bool) {
	if len(touches) == 0 {
		return Input{}, false
	}
	return Input{
		ClientX: touches[0].ClientX,
		ClientY: touches[0].ClientY,
		Kind:    KindTouch,
	}, true
}

// Box is the rendered bounding box of the drawing surface in CSS pixels.
type Box struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Point is a position in image space. Components are fractional.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Map converts a client-space input into image-space coordinates for a
// backing buffer of bufferWidth x bufferHeight pixels rendered into box.
//
// The box must be the one current at the time of the event; callers should
// never cache it across events.
//
// An axis whose rendered size is not positive maps with scale 1, so an
// element that has not been laid out yet yields finite coordinates.
func Map(in Input, box Box, bufferWidth, bufferHeight int) Point {
	return Point{
		X: (in.ClientX - box.Left) * scale(bufferWidth, box.Width),
		Y: (in.ClientY - box.Top) * scale(bufferHeight, box.Height),
	}
}

func scale(native int, rendered float64) float64 {
	if rendered <= 0 {
		return 1
	}
	return float64(native) / rendered
}
