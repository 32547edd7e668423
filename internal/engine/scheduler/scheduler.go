// Package scheduler runs a set of target tasks and everything they depend on.
package scheduler

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"go.trai.ch/glaze/internal/core/domain"
	"go.trai.ch/glaze/internal/core/ports"
	"go.trai.ch/zerr"
)

// TaskStatus represents the status of a task.
type TaskStatus string

const (
	// StatusPending indicates the task is waiting to be executed.
	StatusPending TaskStatus = "Pending"
	// StatusRunning indicates the task is currently executing.
	StatusRunning TaskStatus = "Running"
	// StatusCompleted indicates the task has finished successfully.
	StatusCompleted TaskStatus = "Completed"
	// StatusFailed indicates the task execution failed.
	StatusFailed TaskStatus = "Failed"
)

var _ ports.Scheduler = (*Scheduler)(nil)

// Scheduler manages the execution of tasks in the dependency graph.
// Watch tasks are handed to the watch loop, which re-enters Run for every
// batch of changes.
type Scheduler struct {
	runner ports.TaskRunner
	watch  ports.WatchLoop
	tracer ports.Tracer

	parallelism int

	mu         sync.RWMutex
	taskStatus map[domain.InternedString]TaskStatus
}

// NewScheduler creates a new Scheduler with the given dependencies.
func NewScheduler(runner ports.TaskRunner, watch ports.WatchLoop, tracer ports.Tracer) *Scheduler {
	return &Scheduler{
		runner:      runner,
		watch:       watch,
		tracer:      tracer,
		parallelism: max(runtime.NumCPU(), 1),
		taskStatus:  make(map[domain.InternedString]TaskStatus),
	}
}

func (s *Scheduler) initTaskStatuses(tasks []domain.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range tasks {
		s.taskStatus[tasks[i].Name] = StatusPending
	}
}

func (s *Scheduler) updateStatus(name domain.InternedString, status TaskStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taskStatus[name] = status
}

// Run executes targets and their transitive dependencies. Every task runs at
// most once, after all of its dependencies succeeded. Independent tasks run
// concurrently. The first failure cancels the remaining tasks. When ctx is
// cancelled before any task fails, Run returns ctx.Err() unwrapped.
//
// It assumes graph.Validate() has returned nil.
func (s *Scheduler) Run(ctx context.Context, graph *domain.Graph, targets []string, opts ...ports.SpanOption) error {
	tasks, err := graph.Closure(targets)
	if err != nil {
		return err
	}

	planned := make([]string, len(tasks))
	for i := range tasks {
		planned[i] = tasks[i].Name.String()
	}
	s.tracer.EmitPlan(ctx, planned, targets)

	state := s.newRunState(ctx, graph, tasks, opts)
	defer state.cancel()

	s.initTaskStatuses(tasks)
	return state.runExecutionLoop()
}

type result struct {
	task domain.InternedString
	err  error
}

type runState struct {
	s          *Scheduler
	parent     context.Context
	ctx        context.Context
	cancel     context.CancelFunc
	graph      *domain.Graph
	opts       []ports.SpanOption
	tasks      map[domain.InternedString]domain.Task
	inDegree   map[domain.InternedString]int
	dependents map[domain.InternedString][]domain.InternedString
	ready      []domain.InternedString
	active     int
	busy       int
	resultsCh  chan result
	errs       error
}

func (s *Scheduler) newRunState(
	ctx context.Context,
	graph *domain.Graph,
	tasks []domain.Task,
	opts []ports.SpanOption,
) *runState {
	runCtx, cancel := context.WithCancel(ctx)
	state := &runState{
		s:          s,
		parent:     ctx,
		ctx:        runCtx,
		cancel:     cancel,
		graph:      graph,
		opts:       opts,
		tasks:      make(map[domain.InternedString]domain.Task, len(tasks)),
		inDegree:   make(map[domain.InternedString]int, len(tasks)),
		dependents: make(map[domain.InternedString][]domain.InternedString),
		resultsCh:  make(chan result, len(tasks)),
	}

	for i := range tasks {
		state.tasks[tasks[i].Name] = tasks[i]
	}

	// tasks is in execution order, so the ready queue starts out ordered too.
	for i := range tasks {
		t := &tasks[i]
		degree := 0
		for _, dep := range t.Dependencies {
			if _, ok := state.tasks[dep]; ok {
				degree++
				state.dependents[dep] = append(state.dependents[dep], t.Name)
			}
		}
		state.inDegree[t.Name] = degree
		if degree == 0 {
			state.ready = append(state.ready, t.Name)
		}
	}
	return state
}

func (state *runState) runExecutionLoop() error {
	for !state.isDone() {
		state.schedule()

		if state.isDone() {
			break
		}

		state.handleResult(<-state.resultsCh)
	}

	if err := state.parent.Err(); err != nil {
		if state.errs == nil {
			return err
		}
		return errors.Join(state.errs, err)
	}
	return state.errs
}

func (state *runState) isDone() bool {
	if state.active > 0 {
		return false
	}
	return len(state.ready) == 0 || state.ctx.Err() != nil
}

// schedule starts every ready task the parallelism limit allows. Watch tasks
// never finish on their own, so they do not count against the limit.
func (state *runState) schedule() {
	remaining := state.ready[:0]
	for _, name := range state.ready {
		if state.ctx.Err() != nil {
			remaining = append(remaining, name)
			continue
		}

		t := state.tasks[name]
		watch := t.IsWatch()
		if !watch && state.busy >= state.s.parallelism {
			remaining = append(remaining, name)
			continue
		}

		state.active++
		if !watch {
			state.busy++
		}
		state.s.updateStatus(name, StatusRunning)
		go state.executeTask(t)
	}
	state.ready = remaining
}

func (state *runState) executeTask(t domain.Task) {
	// The span must end before the result is sent, so that everything the
	// renderer prints for this task precedes whatever runs next.
	res := func() result {
		ctx, span := state.s.tracer.Start(state.ctx, t.Name.String(), state.opts...)
		defer span.End()

		var err error
		if len(t.Streams) > 0 {
			err = state.s.runner.RunTask(ctx, state.graph.Root(), t, span)
		}
		if err == nil && t.IsWatch() {
			err = state.s.watch.Watch(ctx, state.graph, t, state.s)
		}
		if err != nil {
			span.RecordError(err)
		}
		return result{task: t.Name, err: err}
	}()

	state.resultsCh <- res
}

func (state *runState) handleResult(res result) {
	state.active--
	if t := state.tasks[res.task]; !t.IsWatch() {
		state.busy--
	}

	if res.err != nil {
		state.s.updateStatus(res.task, StatusFailed)
		// Tasks interrupted by an earlier failure or by the caller add nothing.
		interrupted := state.errs != nil || state.parent.Err() != nil
		if interrupted && errors.Is(res.err, context.Canceled) {
			return
		}
		enhancedErr := zerr.With(zerr.Wrap(res.err, domain.ErrTaskExecutionFailed.Error()), "task", res.task.String())
		state.errs = errors.Join(state.errs, enhancedErr)
		state.cancel()
		return
	}

	state.s.updateStatus(res.task, StatusCompleted)
	for _, dep := range state.dependents[res.task] {
		state.inDegree[dep]--
		if state.inDegree[dep] == 0 {
			state.ready = append(state.ready, dep)
		}
	}
}
