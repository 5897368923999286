package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/ironsheep/inpaint-studio-mcp/internal/imaging"
	"github.com/ironsheep/inpaint-studio-mcp/internal/mask"
	"github.com/ironsheep/inpaint-studio-mcp/internal/pointer"
	"github.com/ironsheep/inpaint-studio-mcp/internal/session"
	"github.com/ironsheep/inpaint-studio-mcp/internal/task"
)

// serviceTimeout bounds health and model queries.
const serviceTimeout = 10 * time.Second

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "pointer_event").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	args := params.Arguments
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	result, err := s.executeTool(ctx, params.Name, args)
	if err != nil {
		s.logger.Debug("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Image Input
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Session State
	case "session_set_tab":
		return s.handleSessionSetTab(args)
	case "mask_set_mode":
		return s.handleMaskSetMode(args)

	// Pointer Input
	case "pointer_map":
		return s.handlePointerMap(args)
	case "pointer_event":
		return s.handlePointerEvent(args)

	// Mask Operations
	case "mask_stroke":
		return s.handleMaskStroke(args)
	case "mask_clear":
		return s.handleMaskClear(args)
	case "mask_export":
		return s.handleMaskExport(args)
	case "mask_sample":
		return s.handleMaskSample(args)
	case "canvas_composite":
		return s.handleCanvasComposite(args)

	// Outpainting
	case "outpaint_pixels":
		return s.handleOutpaintPixels(args)
	case "outpaint_preview":
		return s.handleOutpaintPreview(args)

	// Processing
	case "image_process":
		return s.handleImageProcess(ctx, args)
	case "image_process_status":
		return s.handleImageProcessStatus(args)
	case "image_use_result":
		return s.handleImageUseResult(args)
	case "image_save_result":
		return s.handleImageSaveResult(args)

	// Service
	case "service_health":
		return s.handleServiceHealth(ctx, args)
	case "service_models":
		return s.handleServiceModels(ctx, args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// encodeForDisplay downscales img to the optional limits and encodes it.
func encodeForDisplay(img image.Image, maxWidth, maxHeight int) (*imaging.EncodedImage, error) {
	return imaging.Encode(imaging.Preview(img, maxWidth, maxHeight))
}

// === Image Input Handlers ===

type imageLoadArgs struct {
	Path        string `json:"path"`
	ImageBase64 string `json:"image_base64"`
	Name        string `json:"name"`
}

type imageLoadResult struct {
	*imaging.ImageInfo
	Name string `json:"name"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	var src *imaging.Source
	var err error
	switch {
	case a.Path != "":
		src, err = s.cache.Load(a.Path)
	case a.ImageBase64 != "":
		src, err = decodeUpload(a.ImageBase64, a.Name)
	default:
		return nil, errors.New("path or image_base64 is required")
	}
	if err != nil {
		return nil, err
	}

	s.session.Load(src)
	return &imageLoadResult{ImageInfo: imaging.Info(src), Name: src.Name}, nil
}

// decodeUpload accepts raw base64 or a data URL.
func decodeUpload(b64, name string) (*imaging.Source, error) {
	if i := strings.Index(b64, ";base64,"); strings.HasPrefix(b64, "data:") && i >= 0 {
		b64 = b64[i+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("invalid image_base64: %w", err)
	}
	if name == "" {
		name = "upload"
	}
	return imaging.Decode(data, name)
}

type imageDimensionsArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageDimensionsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	if a.Path != "" {
		src, err := s.cache.Load(a.Path)
		if err != nil {
			return nil, err
		}
		return imaging.GetDimensions(src.Image), nil
	}

	src := s.session.Source()
	if src == nil {
		return nil, session.ErrNoImage
	}
	return imaging.GetDimensions(src.Image), nil
}

// === Session State Handlers ===

type sessionSetTabArgs struct {
	Tab string `json:"tab"`
}

func (s *Server) handleSessionSetTab(args json.RawMessage) (interface{}, error) {
	var a sessionSetTabArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	t, err := task.ParseTask(a.Tab)
	if err != nil {
		return nil, err
	}
	s.session.SetTab(t)
	return s.session.Status(), nil
}

type maskSetModeArgs struct {
	Mode string `json:"mode"`
}

func (s *Server) handleMaskSetMode(args json.RawMessage) (interface{}, error) {
	var a maskSetModeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	m, err := mask.ParseMode(a.Mode)
	if err != nil {
		return nil, err
	}
	s.session.SetDrawMode(m)
	return s.session.Status(), nil
}

// === Pointer Input Handlers ===

type pointerMapArgs struct {
	ClientX float64      `json:"client_x"`
	ClientY float64      `json:"client_y"`
	Box     *pointer.Box `json:"box"`
}

func (s *Server) handlePointerMap(args json.RawMessage) (interface{}, error) {
	var a pointerMapArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Box == nil {
		return nil, errors.New("box is required")
	}

	src := s.session.Source()
	if src == nil {
		return nil, session.ErrNoImage
	}
	return pointer.Map(pointer.Input{ClientX: a.ClientX, ClientY: a.ClientY}, *a.Box, src.Width(), src.Height()), nil
}

type pointerEventArgs struct {
	Type    string          `json:"type"`
	Kind    string          `json:"kind"`
	ClientX float64         `json:"client_x"`
	ClientY float64         `json:"client_y"`
	Touches []pointer.Touch `json:"touches"`
	Box     *pointer.Box    `json:"box"`
}

type pointerEventResult struct {
	Type    string      `json:"type"`
	Drawn   bool        `json:"drawn"`
	Point   *mask.Point `json:"point,omitempty"`
	Drawing bool        `json:"drawing"`
}

func (s *Server) handlePointerEvent(args json.RawMessage) (interface{}, error) {
	var a pointerEventArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	kind, err := pointer.ParseKind(a.Kind)
	if err != nil {
		return nil, err
	}

	in := pointer.Input{ClientX: a.ClientX, ClientY: a.ClientY, Kind: kind}
	if kind == pointer.KindTouch {
		if t, ok := pointer.FromTouches(a.Touches); ok {
			in = t
		}
	}

	result := &pointerEventResult{Type: a.Type}
	switch a.Type {
	case "down", "move":
		if a.Box == nil {
			return nil, fmt.Errorf("box is required for %s events", a.Type)
		}
		var p mask.Point
		var drawn bool
		if a.Type == "down" {
			p, drawn = s.session.PointerDown(in, *a.Box)
		} else {
			p, drawn = s.session.PointerMove(in, *a.Box)
		}
		result.Drawn = drawn
		if drawn {
			result.Point = &p
		}
	case "up":
		s.session.PointerUp()
	case "leave":
		s.session.PointerLeave()
	default:
		return nil, fmt.Errorf("unknown pointer event type: %s", a.Type)
	}

	result.Drawing = s.session.Drawing()
	return result, nil
}

// === Mask Handlers ===

type maskStrokeArgs struct {
	Points []mask.Point `json:"points"`
	Mode   string       `json:"mode"`
}

func (s *Server) handleMaskStroke(args json.RawMessage) (interface{}, error) {
	var a maskStrokeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	mode := s.session.Mode()
	if a.Mode != "" {
		m, err := mask.ParseMode(a.Mode)
		if err != nil {
			return nil, err
		}
		mode = m
	}

	if err := s.session.Stroke(a.Points, mode); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"points": len(a.Points),
		"mode":   mode.String(),
	}, nil
}

func (s *Server) handleMaskClear(args json.RawMessage) (interface{}, error) {
	if err := s.session.ClearMask(); err != nil {
		return nil, err
	}
	return s.session.Status(), nil
}

type maskExportArgs struct {
	Refined bool `json:"refined"`
}

func (s *Server) handleMaskExport(args json.RawMessage) (interface{}, error) {
	var a maskExportArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	if a.Refined {
		m, err := s.session.RefinedMask()
		if err != nil {
			return nil, err
		}
		return imaging.Encode(m)
	}

	data, err := s.session.ExportMask()
	if err != nil {
		return nil, err
	}
	return imaging.EncodeBytes(data, "image/png")
}

type maskSampleArgs struct {
	Points []struct {
		X     int    `json:"x"`
		Y     int    `json:"y"`
		Label string `json:"label"`
	} `json:"points"`
}

func (s *Server) handleMaskSample(args json.RawMessage) (interface{}, error) {
	var a maskSampleArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	points := make([]imaging.LabeledPoint, len(a.Points))
	for i, p := range a.Points {
		points[i] = imaging.LabeledPoint{X: p.X, Y: p.Y, Label: p.Label}
	}
	return s.session.SampleMaskPoints(points)
}

type displayArgs struct {
	MaxWidth  int `json:"max_width"`
	MaxHeight int `json:"max_height"`
}

func (s *Server) handleCanvasComposite(args json.RawMessage) (interface{}, error) {
	var a displayArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	img, err := s.session.Composite()
	if err != nil {
		return nil, err
	}
	return encodeForDisplay(img, a.MaxWidth, a.MaxHeight)
}

// === Outpainting Handlers ===

type outpaintPixelsArgs struct {
	Direction  string `json:"direction"`
	Percentage int    `json:"percentage"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
}

type outpaintPixelsResult struct {
	Pixels      task.Pixels `json:"pixels"`
	NewWidth    int         `json:"new_width"`
	NewHeight   int         `json:"new_height"`
	Description string      `json:"description"`
}

func (s *Server) handleOutpaintPixels(args json.RawMessage) (interface{}, error) {
	var a outpaintPixelsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	d, err := task.ParseDirection(a.Direction)
	if err != nil {
		return nil, err
	}
	if a.Percentage < 0 || a.Percentage > 100 {
		return nil, fmt.Errorf("percentage must be between 0 and 100, got %d", a.Percentage)
	}

	if a.Width <= 0 || a.Height <= 0 {
		src := s.session.Source()
		if src == nil {
			return nil, session.ErrNoImage
		}
		if a.Width <= 0 {
			a.Width = src.Width()
		}
		if a.Height <= 0 {
			a.Height = src.Height()
		}
	}

	px := task.CalculatePixels(d, a.Percentage, a.Width, a.Height)
	return &outpaintPixelsResult{
		Pixels:      px,
		NewWidth:    a.Width + px.Left + px.Right,
		NewHeight:   a.Height + px.Top + px.Bottom,
		Description: task.DescribeExpansion(d, a.Percentage, a.Width, a.Height),
	}, nil
}

type outpaintPreviewArgs struct {
	Direction  string `json:"direction"`
	Percentage int    `json:"percentage"`
	MaxWidth   int    `json:"max_width"`
	MaxHeight  int    `json:"max_height"`
}

type outpaintPreviewResult struct {
	Pixels task.Pixels           `json:"pixels"`
	Canvas *imaging.EncodedImage `json:"canvas"`
	Mask   *imaging.EncodedImage `json:"mask"`
}

func (s *Server) handleOutpaintPreview(args json.RawMessage) (interface{}, error) {
	var a outpaintPreviewArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	p := task.DefaultOutpaintParams()
	p.Direction = task.Direction(a.Direction)
	p.Percentage = a.Percentage

	canvas, m, px, err := s.session.OutpaintPreview(p)
	if err != nil {
		return nil, err
	}

	canvasImg, err := encodeForDisplay(canvas, a.MaxWidth, a.MaxHeight)
	if err != nil {
		return nil, err
	}
	maskImg, err := encodeForDisplay(m, a.MaxWidth, a.MaxHeight)
	if err != nil {
		return nil, err
	}
	return &outpaintPreviewResult{Pixels: px, Canvas: canvasImg, Mask: maskImg}, nil
}

// === Processing Handlers ===

type imageProcessArgs struct {
	Task           string          `json:"task"`
	Params         json.RawMessage `json:"params"`
	Wait           bool            `json:"wait"`
	TimeoutSeconds int             `json:"timeout_seconds"`
}

type jobResult struct {
	JobID  string           `json:"job_id"`
	Task   task.Task        `json:"task"`
	State  session.JobState `json:"state"`
	Result *resultInfo      `json:"result,omitempty"`
}

type resultInfo struct {
	RequestID   string `json:"request_id"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ContentType string `json:"content_type"`
	FileName    string `json:"file_name"`
}

func newResultInfo(r *session.Result) *resultInfo {
	return &resultInfo{
		RequestID:   r.RequestID,
		Width:       r.Width,
		Height:      r.Height,
		ContentType: r.ContentType,
		FileName:    session.ResultFileName(r),
	}
}

// taskParams builds the parameters for t from the service defaults
// overlaid with raw.
func taskParams(t task.Task, raw json.RawMessage) (task.Params, error) {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}

	switch t {
	case task.Outpainting:
		p := task.DefaultOutpaintParams()
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("invalid outpainting params: %w", err)
		}
		return p, nil
	case task.Inpainting:
		p := task.DefaultInpaintParams()
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("invalid inpainting params: %w", err)
		}
		return p, nil
	case task.SuperResolution:
		p := task.DefaultSuperResParams()
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("invalid superresolution params: %w", err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown task: %s", t)
	}
}

func (s *Server) handleImageProcess(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageProcessArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	t := s.session.Tab()
	if a.Task != "" {
		var err error
		if t, err = task.ParseTask(a.Task); err != nil {
			return nil, err
		}
	}

	params, err := taskParams(t, a.Params)
	if err != nil {
		return nil, err
	}

	job, err := s.session.Submit(s.ctx, params)
	if err != nil {
		return nil, err
	}
	go s.watchJob(job)

	out := &jobResult{JobID: job.ID, Task: job.Task, State: session.JobRunning}
	if !a.Wait {
		return out, nil
	}

	waitCtx := ctx
	if a.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, time.Duration(a.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	res, err := job.Wait(waitCtx)
	if errors.Is(err, context.DeadlineExceeded) && waitCtx.Err() != nil {
		// Still running; the client polls image_process_status.
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	out.State = session.JobSucceeded
	out.Result = newResultInfo(res)
	return out, nil
}

// watchJob reports the outcome of job to the client as a notification.
func (s *Server) watchJob(job *session.Job) {
	select {
	case <-job.Done():
	case <-s.ctx.Done():
		return
	}

	data := map[string]interface{}{
		"event":  "processing_finished",
		"job_id": job.ID,
		"task":   job.Task,
		"state":  job.State(),
	}
	level := "info"
	if err := job.Err(); err != nil {
		level = "error"
		data["error"] = err.Error()
	}
	s.notify(level, data)
}

type imageProcessStatusArgs struct {
	IncludeResult bool `json:"include_result"`
	MaxWidth      int  `json:"max_width"`
	MaxHeight     int  `json:"max_height"`
}

type processStatusResult struct {
	session.Status
	Result *imaging.EncodedImage `json:"result,omitempty"`
}

func (s *Server) handleImageProcessStatus(args json.RawMessage) (interface{}, error) {
	var a imageProcessStatusArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	out := &processStatusResult{Status: s.session.Status()}
	if !a.IncludeResult || !out.HasResult {
		return out, nil
	}

	res, err := s.session.Result()
	if err != nil {
		return nil, err
	}
	if a.MaxWidth <= 0 && a.MaxHeight <= 0 {
		out.Result, err = imaging.EncodeBytes(res.Data, res.ContentType)
	} else {
		var src *imaging.Source
		if src, err = imaging.Decode(res.Data, "result"); err == nil {
			out.Result, err = encodeForDisplay(src.Image, a.MaxWidth, a.MaxHeight)
		}
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Server) handleImageUseResult(args json.RawMessage) (interface{}, error) {
	src, err := s.session.UseResultAsInput()
	if err != nil {
		return nil, err
	}
	return &imageLoadResult{ImageInfo: imaging.Info(src), Name: src.Name}, nil
}

type imageSaveResultArgs struct {
	Dir string `json:"dir"`
}

func (s *Server) handleImageSaveResult(args json.RawMessage) (interface{}, error) {
	var a imageSaveResultArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Dir == "" {
		a.Dir = s.outputDir
	}

	path, err := s.session.SaveResult(a.Dir)
	if err != nil {
		return nil, err
	}
	return map[string]string{"path": path}, nil
}

// === Service Handlers ===

func (s *Server) handleServiceHealth(ctx context.Context, args json.RawMessage) (interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, serviceTimeout)
	defer cancel()

	h, err := s.service.Health(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"endpoint": s.service.Endpoint(),
		"status":   h.Status,
		"message":  h.Message,
	}, nil
}

func (s *Server) handleServiceModels(ctx context.Context, args json.RawMessage) (interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, serviceTimeout)
	defer cancel()

	models, err := s.service.Models(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"endpoint": s.service.Endpoint(),
		"tasks":    models,
	}, nil
}
