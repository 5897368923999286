package session

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/inpaint-studio-mcp/internal/imaging"
	"github.com/ironsheep/inpaint-studio-mcp/internal/remote"
	"github.com/ironsheep/inpaint-studio-mcp/internal/task"
)

// Processor runs a processing request. *remote.Client implements it.
type Processor interface {
	Process(ctx context.Context, req remote.Request) (*remote.Result, error)
}

// JobState is the lifecycle state of a processing job.
type JobState string

const (
	JobRunning   JobState = "running"
	JobSucceeded JobState = "succeeded"
	JobFailed    JobState = "failed"
)

// Result is a successful processing outcome.
type Result struct {
	Task        task.Task
	RequestID   string
	Data        []byte
	ContentType string
	Width       int
	Height      int
	Completed   time.Time
}

// Job is one submitted processing request.
type Job struct {
	ID      string
	Task    task.Task
	Started time.Time

	done chan struct{}

	mu     sync.Mutex
	state  JobState
	result *Result
	err    error
}

// Done is closed when the job finishes.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// State returns the job state.
func (j *Job) State() JobState {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// Err returns the failure of a finished job, or nil.
func (j *Job) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// Wait blocks until the job finishes or ctx is done. Giving up on the wait
// does not cancel the job.
func (j *Job) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-j.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result, j.err
}

func (j *Job) finish(res *Result, err error) {
	j.mu.Lock()
	j.result, j.err = res, err
	if err != nil {
		j.state = JobFailed
	} else {
		j.state = JobSucceeded
	}
	j.mu.Unlock()
	close(j.done)
}

// Submit validates p against the session and starts processing in the
// background. The job runs under ctx, which should outlive the call.
//
// Validation failures, a missing image and a job already in flight are
// reported before anything is sent. Outpainting pixel amounts are computed
// from the source dimensions; inpainting requests carry the exported mask.
func (s *Session) Submit(ctx context.Context, p task.Params) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.source == nil {
		return nil, ErrNoImage
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if s.job != nil && s.job.State() == JobRunning {
		return nil, ErrBusy
	}

	if op, ok := p.(task.OutpaintParams); ok {
		p = op.WithPixels(s.source.Width(), s.source.Height())
	}

	img, err := imaging.EncodePNG(s.source.Image)
	if err != nil {
		return nil, err
	}

	req := remote.Request{
		ID:     uuid.NewString(),
		Task:   p.Task(),
		Image:  img,
		Params: p,
	}
	if req.Task.RequiresMask() {
		if req.Mask, err = s.exportMaskLocked(); err != nil {
			return nil, err
		}
	}

	job := &Job{
		ID:      req.ID,
		Task:    req.Task,
		Started: s.now(),
		done:    make(chan struct{}),
		state:   JobRunning,
	}
	s.job = job

	s.logger.Info("processing submitted", "job", job.ID, "task", job.Task)
	go s.run(ctx, job, req)

	return job, nil
}

func (s *Session) run(ctx context.Context, job *Job, req remote.Request) {
	res, err := s.processor.Process(ctx, req)
	if err != nil {
		s.logger.Error("processing failed", "job", job.ID, "task", job.Task, "error", err)
		job.finish(nil, fmt.Errorf("processing failed: %w", err))
		return
	}

	result := &Result{
		Task:        job.Task,
		RequestID:   res.RequestID,
		Data:        res.Image,
		ContentType: res.ContentType,
		Completed:   s.now(),
	}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(res.Image)); err == nil {
		result.Width, result.Height = cfg.Width, cfg.Height
	}

	s.mu.Lock()
	s.result = result
	s.mu.Unlock()

	s.logger.Info("processing finished", "job", job.ID, "task", job.Task,
		"width", result.Width, "height", result.Height,
		"elapsed", result.Completed.Sub(job.Started).Round(time.Millisecond))
	job.finish(result, nil)
}

// Job returns the most recent job, or nil.
func (s *Session) Job() *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.job
}

// Result returns the last successful result.
func (s *Session) Result() (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.result == nil {
		return nil, ErrNoResult
	}
	return s.result, nil
}

// UseResultAsInput loads the last result as the session image, so further
// edits build on it. The mask is reset to the result's dimensions.
func (s *Session) UseResultAsInput() (*imaging.Source, error) {
	res, err := s.Result()
	if err != nil {
		return nil, err
	}

	src, err := imaging.Decode(res.Data, fmt.Sprintf("processed_%s", res.Task))
	if err != nil {
		return nil, err
	}
	s.Load(src)
	return src, nil
}

// ResultFileName is the download name of r:
// processed_<task>_<unix millis>.png.
func ResultFileName(r *Result) string {
	return fmt.Sprintf("processed_%s_%d.png", r.Task, r.Completed.UnixMilli())
}

// SaveResult writes the last result into dir and returns the file path.
// Results the service did not return as PNG are re-encoded.
func (s *Session) SaveResult(dir string) (string, error) {
	res, err := s.Result()
	if err != nil {
		return "", err
	}

	data := res.Data
	if _, format, err := image.DecodeConfig(bytes.NewReader(data)); err != nil || format != "png" {
		src, err := imaging.Decode(data, "result")
		if err != nil {
			return "", err
		}
		if data, err = imaging.EncodePNG(src.Image); err != nil {
			return "", err
		}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, ResultFileName(res))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write result: %w", err)
	}

	s.logger.Info("result saved", "path", path)
	return path, nil
}

// Status is a snapshot of the session for display.
type Status struct {
	Loaded     bool      `json:"loaded"`
	Width      int       `json:"width,omitempty"`
	Height     int       `json:"height,omitempty"`
	Tab        task.Task `json:"tab"`
	Mode       string    `json:"mode"`
	Drawing    bool      `json:"drawing"`
	Processing bool      `json:"processing"`
	JobID      string    `json:"job_id,omitempty"`
	JobState   JobState  `json:"job_state,omitempty"`
	JobError   string    `json:"job_error,omitempty"`
	HasResult  bool      `json:"has_result"`
	ResultFile string    `json:"result_file,omitempty"`
}

// Status returns a snapshot of the session.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		Loaded:  s.source != nil,
		Tab:     s.tab,
		Mode:    s.mode.String(),
		Drawing: s.layer.Active(),
	}
	if s.source != nil {
		st.Width, st.Height = s.source.Width(), s.source.Height()
	}
	if s.job != nil {
		st.JobID = s.job.ID
		st.JobState = s.job.State()
		st.Processing = st.JobState == JobRunning
		if err := s.job.Err(); err != nil {
			st.JobError = err.Error()
		}
	}
	if s.result != nil {
		st.HasResult = true
		st.ResultFile = ResultFileName(s.result)
	}
	return st
}
