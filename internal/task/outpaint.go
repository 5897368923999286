package task

import (
	"errors"
	"fmt"
	"math"
)

// Direction selects which borders an outpainting request extends.
type Direction string

const (
	Left       Direction = "left"
	Right      Direction = "right"
	Top        Direction = "top"
	Bottom     Direction = "bottom"
	Horizontal Direction = "horizontal"
	Vertical   Direction = "vertical"
	AllSides   Direction = "all"
)

// ParseDirection validates a direction name.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case Left, Right, Top, Bottom, Horizontal, Vertical, AllSides:
		return d, nil
	default:
		return "", fmt.Errorf("unknown outpainting direction: %s", s)
	}
}

func (d Direction) extendsLeft() bool   { return d == Left || d == Horizontal || d == AllSides }
func (d Direction) extendsRight() bool  { return d == Right || d == Horizontal || d == AllSides }
func (d Direction) extendsTop() bool    { return d == Top || d == Vertical || d == AllSides }
func (d Direction) extendsBottom() bool { return d == Bottom || d == Vertical || d == AllSides }

// Pixels is the number of pixels added on each side.
type Pixels struct {
	Left   int `json:"left"`
	Right  int `json:"right"`
	Top    int `json:"top"`
	Bottom int `json:"bottom"`
}

// ErrZeroPercentage rejects outpainting requests that would not grow the
// image. It is raised before anything is sent to the service.
var ErrZeroPercentage = errors.New("percentage must be greater than 0% for outpainting")

// CalculatePixels converts a direction and percentage into per-side pixel
// counts. Left and right use width, top and bottom use height; each count is
// dim*percentage/100 rounded half up. Unknown directions extend nothing.
func CalculatePixels(d Direction, percentage, width, height int) Pixels {
	var p Pixels
	if d.extendsLeft() {
		p.Left = percentOf(width, percentage)
	}
	if d.extendsRight() {
		p.Right = percentOf(width, percentage)
	}
	if d.extendsTop() {
		p.Top = percentOf(height, percentage)
	}
	if d.extendsBottom() {
		p.Bottom = percentOf(height, percentage)
	}
	return p
}

func percentOf(dim, percentage int) int {
	return int(math.Floor(float64(dim)*float64(percentage)/100 + 0.5))
}

// DescribeExpansion returns a one-line summary of how much an outpainting
// request will add, for display next to the percentage control.
func DescribeExpansion(d Direction, percentage, width, height int) string {
	w := percentOf(width, percentage)
	h := percentOf(height, percentage)

	switch d {
	case Left, Right:
		return fmt.Sprintf("%dpx (%d%% of width)", w, percentage)
	case Top, Bottom:
		return fmt.Sprintf("%dpx (%d%% of height)", h, percentage)
	case Horizontal:
		return fmt.Sprintf("%dpx on each side (%d%% of width)", w, percentage)
	case Vertical:
		return fmt.Sprintf("%dpx on each side (%d%% of height)", h, percentage)
	case AllSides:
		return fmt.Sprintf("%dpx (width) x %dpx (height)", w, h)
	default:
		return ""
	}
}
