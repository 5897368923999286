package session

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/ironsheep/inpaint-studio-mcp/internal/imaging"
	"github.com/ironsheep/inpaint-studio-mcp/internal/mask"
	"github.com/ironsheep/inpaint-studio-mcp/internal/pointer"
	"github.com/ironsheep/inpaint-studio-mcp/internal/task"
)

var (
	// ErrNoImage is returned by operations that need a loaded image.
	ErrNoImage = errors.New("no image loaded")

	// ErrBusy is returned when processing is requested while a job is
	// still running.
	ErrBusy = errors.New("processing already in progress")

	// ErrNoResult is returned when no processed result is available.
	ErrNoResult = errors.New("no processed result available")

	// ErrNotInpainting is returned by explicit drawing calls made while
	// another tab is active.
	ErrNotInpainting = errors.New("mask drawing is only available on the inpainting tab")
)

// Session is one editing session. Create it with New.
type Session struct {
	mu sync.Mutex

	logger    *slog.Logger
	processor Processor
	now       func() time.Time

	source *imaging.Source
	layer  *mask.Layer
	tab    task.Task
	mode   mask.Mode

	job    *Job
	result *Result
}

// Option configures a Session.
type Option func(*Session)

// WithStyle sets the mask stroke style.
func WithStyle(style mask.Style) Option {
	return func(s *Session) {
		s.layer = mask.NewLayer(style)
	}
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithClock replaces time.Now, for result timestamps and file names.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// New creates a session that submits work to p. The session starts on the
// outpainting tab in draw mode with no image loaded.
func New(p Processor, opts ...Option) *Session {
	s := &Session{
		logger:    slog.Default(),
		processor: p,
		now:       time.Now,
		layer:     mask.NewLayer(mask.DefaultStyle()),
		tab:       task.Outpainting,
		mode:      mask.ModeAdd,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load makes src the session image. The drawing layer is reset to the new
// dimensions and any previous result is dropped. A job already in flight
// keeps running and its result is still delivered.
func (s *Session) Load(src *imaging.Source) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.source = src
	s.layer.Reset(src.Image)
	s.result = nil

	s.logger.Info("image loaded", "name", src.Name, "format", src.Format,
		"width", src.Width(), "height", src.Height())
}

// Source returns the loaded image, or nil.
func (s *Session) Source() *imaging.Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// Tab returns the active task tab.
func (s *Session) Tab() task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tab
}

// SetTab switches the active tab. Leaving the inpainting tab ends any
// stroke in progress.
func (s *Session) SetTab(t task.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t != task.Inpainting {
		s.layer.EndStroke()
	}
	s.tab = t
}

// Mode returns the draw/erase mode.
func (s *Session) Mode() mask.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetDrawMode selects whether subsequent segments add to or erase the mask.
// A stroke in progress continues in the new mode.
func (s *Session) SetDrawMode(m mask.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = m
}

// canDraw reports whether pointer input should reach the layer.
// s.mu must be held.
func (s *Session) canDraw() bool {
	return s.tab == task.Inpainting && s.source != nil
}

// mapPoint converts a pointer event to layer coordinates. s.mu must be held.
func (s *Session) mapPoint(in pointer.Input, box pointer.Box) mask.Point {
	b := s.layer.Bounds()
	p := pointer.Map(in, box, b.Dx(), b.Dy())
	return mask.Point{X: p.X, Y: p.Y}
}

// PointerDown starts a stroke at the mapped position and paints a dot
// there. It returns the image-space point and whether the layer was drawn.
func (s *Session) PointerDown(in pointer.Input, box pointer.Box) (mask.Point, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.canDraw() {
		return mask.Point{}, false
	}
	p := s.mapPoint(in, box)
	s.layer.BeginStroke(p)
	s.layer.ExtendStroke(p, s.mode)
	return p, true
}

// PointerMove extends the stroke in progress. Moves with no stroke in
// progress are ignored.
func (s *Session) PointerMove(in pointer.Input, box pointer.Box) (mask.Point, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.canDraw() || !s.layer.Active() {
		return mask.Point{}, false
	}
	p := s.mapPoint(in, box)
	s.layer.ExtendStroke(p, s.mode)
	return p, true
}

// PointerUp ends the stroke in progress.
func (s *Session) PointerUp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layer.EndStroke()
}

// PointerLeave ends the stroke in progress, as if the pointer were released.
func (s *Session) PointerLeave() {
	s.PointerUp()
}

// Drawing reports whether a stroke is in progress.
func (s *Session) Drawing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layer.Active()
}

// Stroke draws a complete stroke through points given in image space,
// using mode. A single point paints a dot.
func (s *Session) Stroke(points []mask.Point, mode mask.Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.source == nil {
		return ErrNoImage
	}
	if s.tab != task.Inpainting {
		return ErrNotInpainting
	}
	if len(points) == 0 {
		return fmt.Errorf("stroke needs at least one point")
	}

	s.layer.EndStroke()
	s.layer.BeginStroke(points[0])
	for _, p := range points {
		s.layer.ExtendStroke(p, mode)
	}
	s.layer.EndStroke()
	return nil
}

// ClearMask erases the whole drawing.
func (s *Session) ClearMask() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.source == nil {
		return ErrNoImage
	}
	s.layer.Clear()
	return nil
}

// ExportMask returns the binary mask as PNG bytes.
func (s *Session) ExportMask() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exportMaskLocked()
}

func (s *Session) exportMaskLocked() ([]byte, error) {
	data, err := s.layer.ExportMaskPNG()
	if errors.Is(err, mask.ErrNotLoaded) {
		return nil, ErrNoImage
	}
	return data, err
}

// RefinedMask returns the mask after the dilation and feathering the
// service applies before inpainting.
func (s *Session) RefinedMask() (*image.Gray, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.layer.ExportMask()
	if errors.Is(err, mask.ErrNotLoaded) {
		return nil, ErrNoImage
	}
	if err != nil {
		return nil, err
	}
	return mask.Refine(m, mask.InpaintExpand, mask.InpaintFeather), nil
}

// Composite returns a copy of the visible image: the source with the mask
// drawing on top.
func (s *Session) Composite() (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.source == nil {
		return nil, ErrNoImage
	}
	visible := s.layer.Composite()
	out := image.NewRGBA(visible.Bounds())
	copy(out.Pix, visible.Pix)
	return out, nil
}

// SampleMask reads the drawing layer pixel at (x, y).
func (s *Session) SampleMask(x, y int) (*imaging.ColorResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.source == nil {
		return nil, ErrNoImage
	}
	return imaging.SampleColor(s.layer.Buffer(), x, y)
}

// SampleMaskPoints reads several drawing layer pixels. Any point outside
// the image fails the whole call.
func (s *Session) SampleMaskPoints(points []imaging.LabeledPoint) (*imaging.MultiColorResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.source == nil {
		return nil, ErrNoImage
	}
	return imaging.SampleColorsMulti(s.layer.Buffer(), points)
}

// OutpaintPreview shows what an outpainting request would send: the
// expanded canvas and the feathered mask over the new area.
func (s *Session) OutpaintPreview(p task.OutpaintParams) (*image.NRGBA, *image.Gray, task.Pixels, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.source == nil {
		return nil, nil, task.Pixels{}, ErrNoImage
	}
	if err := p.Validate(); err != nil {
		return nil, nil, task.Pixels{}, err
	}

	p = p.WithPixels(s.source.Width(), s.source.Height())
	canvas, m := imaging.ExpandCanvas(s.source.Image, imaging.Expansion{
		Left:    p.Pixels.Left,
		Right:   p.Pixels.Right,
		Top:     p.Pixels.Top,
		Bottom:  p.Pixels.Bottom,
		Overlap: mask.OutpaintExpand,
	})
	return canvas, mask.Refine(m, 0, mask.OutpaintFeather), p.Pixels, nil
}
