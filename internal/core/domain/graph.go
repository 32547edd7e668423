// Package domain contains the core domain models of the asset build: tasks,
// their streams and steps, and the registry tying task names together.
package domain

import (
	"iter"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// ReloadConfig holds the live-reload server address.
type ReloadConfig struct {
	Host string
	Port int
}

// Graph is the registry of tasks of a project.
type Graph struct {
	tasks          map[InternedString]Task
	executionOrder []InternedString
	root           string
	output         string
	reload         ReloadConfig
}

// NewGraph creates a new empty Graph.
func NewGraph() *Graph {
	return &Graph{
		tasks:  make(map[InternedString]Task),
		output: DefaultOutputDir,
		reload: ReloadConfig{Host: DefaultReloadHost, Port: DefaultReloadPort},
	}
}

// SetRoot sets the project root all globs and destinations are relative to.
func (g *Graph) SetRoot(root string) { g.root = root }

// Root returns the project root.
func (g *Graph) Root() string { return g.root }

// SetOutput sets the static output tree, relative to the root.
func (g *Graph) SetOutput(dir string) { g.output = dir }

// Output returns the static output tree, relative to the root.
func (g *Graph) Output() string { return g.output }

// SetReload sets the live-reload server address.
func (g *Graph) SetReload(cfg ReloadConfig) { g.reload = cfg }

// Reload returns the live-reload server address.
func (g *Graph) Reload() ReloadConfig { return g.reload }

// AddTask adds a task to the graph.
// It returns an error if a task with the same name already exists.
func (g *Graph) AddTask(t *Task) error {
	if _, exists := g.tasks[t.Name]; exists {
		return zerr.With(ErrTaskAlreadyExists, "task_name", t.Name.String())
	}
	g.tasks[t.Name] = *t
	return nil
}

// GetTask returns the task registered under name.
func (g *Graph) GetTask(name InternedString) (Task, bool) {
	t, ok := g.tasks[name]
	return t, ok
}

// TaskCount returns the number of registered tasks.
func (g *Graph) TaskCount() int {
	return len(g.tasks)
}

// Names returns all task names sorted alphabetically.
func (g *Graph) Names() []string {
	names := make([]string, 0, len(g.tasks))
	for name := range g.tasks {
		names = append(names, name.String())
	}
	slices.Sort(names)
	return names
}

// Validate checks that every dependency and watch target is registered and
// that the dependency graph has no cycles. It populates the execution order.
func (g *Graph) Validate() error {
	for _, name := range g.Names() {
		task := g.tasks[NewInternedString(name)]
		for _, w := range task.Watches {
			for _, target := range w.Tasks {
				if _, ok := g.tasks[target]; !ok {
					err := zerr.With(ErrMissingWatchTarget, "task", name)
					return zerr.With(err, "watch_target", target.String())
				}
			}
		}
	}

	g.executionOrder = make([]InternedString, 0, len(g.tasks))
	visited := make(map[InternedString]int) // 0: unvisited, 1: visiting, 2: visited
	var path []InternedString

	var visit func(u InternedString) error
	visit = func(u InternedString) error {
		visited[u] = 1
		path = append(path, u)

		task, exists := g.tasks[u]
		if !exists {
			return zerr.With(ErrMissingDependency, "dependency", u.String())
		}

		for _, dep := range task.Dependencies {
			if visited[dep] == 1 {
				return buildCycleError(path, dep)
			}
			if visited[dep] == 0 {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		visited[u] = 2
		path = path[:len(path)-1]
		g.executionOrder = append(g.executionOrder, u)
		return nil
	}

	// Sorted iteration keeps the order stable across runs.
	for _, name := range g.Names() {
		n := NewInternedString(name)
		if visited[n] == 0 {
			if err := visit(n); err != nil {
				return err
			}
		}
	}

	return nil
}

func buildCycleError(path []InternedString, dep InternedString) error {
	start := slices.Index(path, dep)
	parts := make([]string, 0, len(path)-start+1)
	for _, node := range path[start:] {
		parts = append(parts, node.String())
	}
	parts = append(parts, dep.String())
	return zerr.With(ErrCycleDetected, "cycle", strings.Join(parts, " -> "))
}

// Walk returns an iterator that yields tasks in execution order.
// It assumes Validate() has been called and returned nil.
func (g *Graph) Walk() iter.Seq[Task] {
	return func(yield func(Task) bool) {
		for _, name := range g.executionOrder {
			if !yield(g.tasks[name]) {
				return
			}
		}
	}
}

// Closure returns the given targets and everything they transitively depend
// on, in execution order.
func (g *Graph) Closure(targets []string) ([]Task, error) {
	needed := make(map[InternedString]bool)
	queue := make([]InternedString, 0, len(targets))
	for _, name := range targets {
		n := NewInternedString(name)
		if _, ok := g.tasks[n]; !ok {
			return nil, zerr.With(ErrTaskNotFound, "task", name)
		}
		queue = append(queue, n)
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if needed[current] {
			continue
		}
		needed[current] = true
		queue = append(queue, g.tasks[current].Dependencies...)
	}

	tasks := make([]Task, 0, len(needed))
	for task := range g.Walk() {
		if needed[task.Name] {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}
