package ports

import (
	"time"
)

// Renderer is the abstraction for task progress output.
// It decouples telemetry collection from presentation.
//
//go:generate go run go.uber.org/mock/mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// OnPlanEmit is called once the tasks of a run are known, in execution order.
	OnPlanEmit(tasks []string, targets []string)

	// OnTaskStart is called when a task begins execution.
	OnTaskStart(spanID, parentID, name string, startTime time.Time)

	// OnTaskLog is called when a task emits output.
	// data may contain partial lines.
	OnTaskLog(spanID string, data []byte)

	// OnTaskComplete is called when a task finishes execution.
	// err is nil if the task succeeded.
	OnTaskComplete(spanID string, endTime time.Time, err error)

	// Flush writes out any buffered partial lines.
	Flush() error
}
