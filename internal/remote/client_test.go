package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ironsheep/inpaint-studio-mcp/internal/task"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type capturedRequest struct {
	method    string
	path      string
	requestID string
	task      string
	params    string
	image     []byte
	mask      []byte
	hasMask   bool
}

func captureServer(t *testing.T, status int, reply []byte) (*httptest.Server, *capturedRequest) {
	t.Helper()
	got := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.Path
		got.requestID = r.Header.Get("X-Request-ID")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
		}
		got.task = r.FormValue("task")
		got.params = r.FormValue("params")
		if f, _, err := r.FormFile("image"); err == nil {
			got.image, _ = io.ReadAll(f)
			f.Close()
		}
		if f, _, err := r.FormFile("mask"); err == nil {
			got.hasMask = true
			got.mask, _ = io.ReadAll(f)
			f.Close()
		}
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(status)
		w.Write(reply)
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func TestProcessOutpainting(t *testing.T) {
	srv, got := captureServer(t, http.StatusOK, []byte("processed"))
	c := NewClient(srv.URL, WithLogger(quietLogger()))

	params := task.DefaultOutpaintParams()
	params.Direction = task.AllSides
	params.Percentage = 50
	params.Prompt = "a meadow"

	res, err := c.Process(context.Background(), Request{
		ID:     "req-1",
		Task:   task.Outpainting,
		Image:  []byte("source-png"),
		Params: params,
	})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if got.method != http.MethodPost || got.path != "/process" {
		t.Errorf("request = %s %s, want POST /process", got.method, got.path)
	}
	if got.requestID != "req-1" {
		t.Errorf("X-Request-ID = %q, want req-1", got.requestID)
	}
	if got.task != "outpainting" {
		t.Errorf("task field = %q, want outpainting", got.task)
	}
	if string(got.image) != "source-png" {
		t.Errorf("image part = %q", got.image)
	}
	if got.hasMask {
		t.Error("outpainting request should not carry a mask")
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(got.params), &decoded); err != nil {
		t.Fatalf("params is not JSON: %v (%q)", err, got.params)
	}
	if decoded["direction"] != "all" || decoded["prompt"] != "a meadow" {
		t.Errorf("params = %v", decoded)
	}

	if string(res.Image) != "processed" {
		t.Errorf("result image = %q", res.Image)
	}
	if res.ContentType != "image/png" {
		t.Errorf("content type = %q", res.ContentType)
	}
	if res.RequestID != "req-1" {
		t.Errorf("result request id = %q", res.RequestID)
	}
}

func TestProcessInpaintingSendsMask(t *testing.T) {
	srv, got := captureServer(t, http.StatusOK, []byte("ok"))
	c := NewClient(srv.URL, WithLogger(quietLogger()))

	_, err := c.Process(context.Background(), Request{
		Task:   task.Inpainting,
		Image:  []byte("img"),
		Mask:   []byte("mask-bytes"),
		Params: task.DefaultInpaintParams(),
	})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if !got.hasMask || string(got.mask) != "mask-bytes" {
		t.Errorf("mask part = %q (present %v)", got.mask, got.hasMask)
	}
	if got.requestID == "" {
		t.Error("expected a generated X-Request-ID")
	}
}

func TestProcessPreconditions(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", WithLogger(quietLogger()))

	tests := []struct {
		name string
		req  Request
		want error
	}{
		{"no image", Request{Task: task.SuperResolution}, ErrMissingImage},
		{"inpaint without mask", Request{Task: task.Inpainting, Image: []byte("x")}, ErrMissingMask},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Process(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestProcessStatusError(t *testing.T) {
	srv, _ := captureServer(t, http.StatusInternalServerError, []byte("model not loaded\n"))
	c := NewClient(srv.URL, WithLogger(quietLogger()))

	_, err := c.Process(context.Background(), Request{Task: task.SuperResolution, Image: []byte("x")})
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if se.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d", se.StatusCode)
	}
	if se.Body != "model not loaded" {
		t.Errorf("body = %q", se.Body)
	}
	if c.Busy() {
		t.Error("client should not be busy after a failed request")
	}
}

func TestProcessSingleFlight(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	var once sync.Once
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() { close(entered) })
		<-release
		w.Write([]byte("done"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithLogger(quietLogger()))
	req := Request{Task: task.SuperResolution, Image: []byte("x")}

	errc := make(chan error, 1)
	go func() {
		_, err := c.Process(context.Background(), req)
		errc <- err
	}()

	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first request never reached the server")
	}

	if !c.Busy() {
		t.Error("client should report busy while a request is pending")
	}
	if _, err := c.Process(context.Background(), req); !errors.Is(err, ErrBusy) {
		t.Errorf("second Process err = %v, want ErrBusy", err)
	}

	close(release)
	if err := <-errc; err != nil {
		t.Fatalf("first Process failed: %v", err)
	}
	if c.Busy() {
		t.Error("client still busy after completion")
	}
}

func TestProcessContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithLogger(quietLogger()))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Process(ctx, Request{Task: task.SuperResolution, Image: []byte("x")})
	if err == nil {
		t.Fatal("expected an error for a cancelled request")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}

func TestHealthAndModels(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","message":"Image processing service is running"}`))
	})
	mux.HandleFunc("/models/info", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"outpainting":{"available":true,"description":"Extend images"},` +
			`"superresolution":{"available":false,"description":"Upscale","models":["esrgan","swinir"]}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL+"/", WithLogger(quietLogger()))
	if c.Endpoint() != srv.URL {
		t.Errorf("Endpoint() = %q, want trailing slash trimmed", c.Endpoint())
	}

	h, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if h.Status != "healthy" {
		t.Errorf("status = %q", h.Status)
	}

	models, err := c.Models(context.Background())
	if err != nil {
		t.Fatalf("Models failed: %v", err)
	}
	if !models["outpainting"].Available {
		t.Error("outpainting should be available")
	}
	sr := models["superresolution"]
	if sr.Available || strings.Join(sr.Models, ",") != "esrgan,swinir" {
		t.Errorf("superresolution = %+v", sr)
	}
}

func TestHealthStatusError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := NewClient(srv.URL, WithLogger(quietLogger()))
	_, err := c.Health(context.Background())
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusNotFound {
		t.Errorf("err = %v, want 404 StatusError", err)
	}
}
