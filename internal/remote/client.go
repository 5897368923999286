package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/inpaint-studio-mcp/internal/task"
)

// DefaultEndpoint is where the processing service listens by default.
const DefaultEndpoint = "http://localhost:5000"

// DefaultTimeout bounds a single processing request. Diffusion models can
// take minutes on modest hardware.
const DefaultTimeout = 10 * time.Minute

var (
	// ErrBusy is returned when a request is submitted while another one
	// from the same client is still pending.
	ErrBusy = errors.New("a processing request is already in flight")

	// ErrMissingImage is returned for requests without image data.
	ErrMissingImage = errors.New("image is required")

	// ErrMissingMask is returned for inpainting requests without a mask.
	ErrMissingMask = errors.New("mask is required for inpainting")
)

// StatusError reports a non-success HTTP response from the service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("processing service returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("processing service returned %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

// Request is one processing submission.
type Request struct {
	// ID is sent as X-Request-ID. A random one is generated when empty.
	ID     string
	Task   task.Task
	Image  []byte
	Mask   []byte
	Params task.Params
}

// Result is a successful processing response.
type Result struct {
	RequestID   string
	Image       []byte
	ContentType string
}

// Client talks to one processing service endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
	busy       atomic.Bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient = &http.Client{Timeout: d}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a client for the service at endpoint (scheme and host,
// e.g. "http://localhost:5000"). An empty endpoint means DefaultEndpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the service base URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Busy reports whether a Process call is in flight.
func (c *Client) Busy() bool {
	return c.busy.Load()
}

// Process submits req and waits for the processed image.
//
// Only one call may be in flight; a concurrent call fails immediately with
// ErrBusy. A non-2xx response yields a *StatusError. The request is not
// retried.
func (c *Client) Process(ctx context.Context, req Request) (*Result, error) {
	if len(req.Image) == 0 {
		return nil, ErrMissingImage
	}
	if req.Task.RequiresMask() && len(req.Mask) == 0 {
		return nil, ErrMissingMask
	}
	if !c.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer c.busy.Store(false)

	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	body, contentType, err := encodeForm(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/process", body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("X-Request-ID", req.ID)

	start := time.Now()
	c.logger.Debug("submitting processing request", "id", req.ID, "task", req.Task, "endpoint", c.endpoint)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to reach processing service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warn("processing request failed", "id", req.ID, "status", resp.StatusCode)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read processed image: %w", err)
	}

	c.logger.Info("processing request finished", "id", req.ID, "task", req.Task,
		"bytes", len(data), "elapsed", time.Since(start).Round(time.Millisecond))

	return &Result{
		RequestID:   req.ID,
		Image:       data,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// encodeForm builds the multipart body of a processing request.
func encodeForm(req Request) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := writeFile(w, "image", "image.png", req.Image); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("task", string(req.Task)); err != nil {
		return nil, "", fmt.Errorf("failed to write task field: %w", err)
	}
	if len(req.Mask) > 0 {
		if err := writeFile(w, "mask", "mask.png", req.Mask); err != nil {
			return nil, "", err
		}
	}

	params := []byte("{}")
	if req.Params != nil {
		var err error
		if params, err = json.Marshal(req.Params); err != nil {
			return nil, "", fmt.Errorf("failed to encode params: %w", err)
		}
	}
	if err := w.WriteField("params", string(params)); err != nil {
		return nil, "", fmt.Errorf("failed to write params field: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func writeFile(w *multipart.Writer, field, filename string, data []byte) error {
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("failed to create %s part: %w", field, err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("failed to write %s part: %w", field, err)
	}
	return nil
}
