// Package app implements the application layer for glaze.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/glaze/internal/adapters/config"
	"go.trai.ch/glaze/internal/adapters/detector"
	"go.trai.ch/glaze/internal/adapters/linear"
	"go.trai.ch/glaze/internal/adapters/telemetry"
	"go.trai.ch/glaze/internal/core/domain"
	"go.trai.ch/glaze/internal/core/ports"
	"go.trai.ch/glaze/internal/engine/scheduler"
	"go.trai.ch/glaze/internal/ui/style"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	runner       ports.TaskRunner
	watch        ports.WatchLoop
	walker       ports.FileWalker
	logger       ports.Logger
	stdout       io.Writer
	stderr       io.Writer
	workDir      string
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	runner ports.TaskRunner,
	watch ports.WatchLoop,
	walker ports.FileWalker,
	log ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		runner:       runner,
		watch:        watch,
		walker:       walker,
		logger:       log,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
	}
}

// WithOutput redirects task output and listings. Nil writers are ignored.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	if stdout != nil {
		a.stdout = stdout
	}
	if stderr != nil {
		a.stderr = stderr
	}
	return a
}

// WithWorkDir sets the directory the task file search starts from. It
// defaults to the process working directory.
func (a *App) WithWorkDir(dir string) *App {
	a.workDir = dir
	return a
}

// RunOptions configuration for the Run method.
type RunOptions struct {
	// ConfigPath names a task file explicitly instead of searching for one.
	ConfigPath string
}

// Run executes the given tasks, or the default task when none are named.
// Watch tasks keep Run alive until ctx is cancelled; an interrupt that does
// not cut a task short is not an error.
func (a *App) Run(ctx context.Context, targetNames []string, opts RunOptions) error {
	graph, err := a.loadGraph(opts.ConfigPath)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	if len(targetNames) == 0 {
		targetNames = []string{domain.DefaultTask}
	}
	// Unknown targets are a usage error, reported before any task starts.
	if _, err := graph.Closure(targetNames); err != nil {
		return err
	}

	renderer := linear.NewRenderer(a.stdout, a.stderr)
	provider := telemetry.NewProvider(renderer)
	defer func() {
		_ = provider.Shutdown(context.WithoutCancel(ctx))
	}()
	tracer := telemetry.NewOTelTracer(provider, renderer)

	sched := scheduler.NewScheduler(a.runner, a.watch, tracer)
	if err := sched.Run(ctx, graph, targetNames); err != nil {
		//nolint:errorlint // only the unwrapped interrupt of an otherwise clean run is swallowed
		if ctxErr := ctx.Err(); ctxErr != nil && err == ctxErr {
			return nil
		}
		return errors.Join(domain.ErrBuildExecutionFailed, err)
	}
	return nil
}

// List prints every task with its dependencies and the tasks its watch rules
// re-run.
func (a *App) List(_ context.Context, opts RunOptions) error {
	graph, err := a.loadGraph(opts.ConfigPath)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	if graph.TaskCount() == 0 {
		a.logger.Info("no tasks defined")
		return nil
	}

	for _, name := range graph.Names() {
		task, _ := graph.GetTask(domain.NewInternedString(name))

		line := style.Foreground(style.Accent, name)
		if deps := joinNames(task.Dependencies); deps != "" {
			line += " " + style.Arrow + " " + deps
		}
		for _, w := range task.Watches {
			line += fmt.Sprintf(" %s watch %s %s %s",
				style.Dot, strings.Join(w.Globs, ","), style.Arrow, joinNames(w.Tasks))
		}
		if _, err := fmt.Fprintln(a.stdout, line); err != nil {
			return err
		}
	}
	return nil
}

// Clean removes the output directory of the project.
func (a *App) Clean(_ context.Context, opts RunOptions) error {
	graph, err := a.loadGraph(opts.ConfigPath)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	root := graph.Root()
	output := filepath.Join(root, filepath.FromSlash(graph.Output()))
	rel, err := filepath.Rel(root, output)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return zerr.With(domain.ErrOutputPathOutsideRoot, "path", output)
	}

	if _, err := os.Stat(output); errors.Is(err, os.ErrNotExist) {
		a.logger.Info(fmt.Sprintf("%s does not exist, nothing to clean", rel))
		return nil
	}

	count := 0
	for range a.walker.WalkFiles(output) {
		count++
	}

	a.logger.Info(fmt.Sprintf("removing %s...", rel))
	if err := os.RemoveAll(output); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCleanFailed.Error()), "path", output)
	}
	a.logger.Info(fmt.Sprintf("removed %s (%d files)", rel, count))
	return nil
}

// Init writes the built-in task file to the working directory.
func (a *App) Init(_ context.Context) error {
	cwd, err := a.cwd()
	if err != nil {
		return err
	}
	path, err := config.WriteDefault(cwd)
	if err != nil {
		return err
	}
	a.logger.Info(fmt.Sprintf("created %s", path))
	return nil
}

// SetLogFormat switches the logger between pretty and JSON output. The flag
// value "auto" picks JSON on CI runners without a terminal.
func (a *App) SetLogFormat(flag string) error {
	format, err := detector.ResolveLogFormat(detector.DetectLogFormat(), flag)
	if err != nil {
		return err
	}
	if l, ok := a.logger.(interface{ SetJSON(enable bool) }); ok {
		l.SetJSON(format == detector.FormatJSON)
	}
	return nil
}

func (a *App) loadGraph(configPath string) (*domain.Graph, error) {
	cwd, err := a.cwd()
	if err != nil {
		return nil, err
	}
	if configPath == "" {
		return a.configLoader.Load(cwd)
	}
	if !filepath.IsAbs(configPath) {
		configPath = filepath.Join(cwd, configPath)
	}
	return a.configLoader.LoadFile(configPath)
}

func (a *App) cwd() (string, error) {
	if a.workDir != "" {
		return a.workDir, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", zerr.Wrap(err, "failed to get working directory")
	}
	return cwd, nil
}

func joinNames(names []domain.InternedString) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = n.String()
	}
	return strings.Join(parts, ", ")
}
