package task

import "fmt"

// Task is one of the processing operations supported by the service.
type Task string

const (
	Outpainting     Task = "outpainting"
	Inpainting      Task = "inpainting"
	SuperResolution Task = "superresolution"
)

// All lists the tasks in display order.
var All = []Task{Outpainting, Inpainting, SuperResolution}

// ParseTask validates a task name.
func ParseTask(s string) (Task, error) {
	switch t := Task(s); t {
	case Outpainting, Inpainting, SuperResolution:
		return t, nil
	default:
		return "", fmt.Errorf("unknown task: %s", s)
	}
}

// RequiresMask reports whether requests for t must carry a mask.
func (t Task) RequiresMask() bool {
	return t == Inpainting
}

// Params is implemented by the per-task parameter structs.
type Params interface {
	Task() Task
	Validate() error
}
