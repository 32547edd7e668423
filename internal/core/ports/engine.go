package ports

import (
	"context"
	"io"

	"go.trai.ch/glaze/internal/core/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=engine.go -destination=mocks/mock_engine.go -package=mocks

// TaskRunner runs the streams of a single task.
type TaskRunner interface {
	// RunTask runs every stream of task in order. Step output goes to out.
	RunTask(ctx context.Context, root string, task domain.Task, out io.Writer) error
}

// Scheduler runs targets together with everything they depend on.
type Scheduler interface {
	Run(ctx context.Context, graph *domain.Graph, targets []string, opts ...SpanOption) error
}

// WatchLoop serves a watch task until ctx is cancelled, re-running the
// tasks named by its watch rules through scheduler.
type WatchLoop interface {
	Watch(ctx context.Context, graph *domain.Graph, task domain.Task, scheduler Scheduler) error
}
