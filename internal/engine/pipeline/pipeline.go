// Package pipeline runs the streams of a task through their steps.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"time"

	"go.trai.ch/glaze/internal/core/domain"
	"go.trai.ch/glaze/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

var _ ports.TaskRunner = (*Runner)(nil)

// Runner implements ports.TaskRunner.
type Runner struct {
	resolver  ports.InputResolver
	writer    ports.OutputWriter
	compilers map[string]ports.Compiler
	prefixer  ports.Prefixer
	minifier  ports.Minifier
	reloader  ports.Reloader
}

// NewRunner creates a Runner. Compile steps select a compiler by its Name.
func NewRunner(
	resolver ports.InputResolver,
	writer ports.OutputWriter,
	compilers []ports.Compiler,
	prefixer ports.Prefixer,
	minifier ports.Minifier,
	reloader ports.Reloader,
) *Runner {
	byName := make(map[string]ports.Compiler, len(compilers))
	for _, c := range compilers {
		byName[c.Name()] = c
	}
	return &Runner{
		resolver:  resolver,
		writer:    writer,
		compilers: byName,
		prefixer:  prefixer,
		minifier:  minifier,
		reloader:  reloader,
	}
}

// streamState is the set of files in flight through one stream.
type streamState struct {
	root  string
	files []domain.File
	out   io.Writer
}

// RunTask runs the streams of task concurrently. The first failing step
// aborts its stream and cancels the others.
func (r *Runner) RunTask(ctx context.Context, root string, task domain.Task, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	g, ctx := errgroup.WithContext(ctx)
	for i := range task.Streams {
		g.Go(func() error {
			return r.runStream(ctx, root, &task.Streams[i], out)
		})
	}
	return g.Wait()
}

func (r *Runner) runStream(ctx context.Context, root string, stream *domain.Stream, out io.Writer) error {
	files, err := r.resolver.Resolve(root, stream.Sources)
	if err != nil {
		return err
	}

	state := &streamState{root: root, files: files, out: out}
	for _, step := range stream.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.apply(ctx, state, &step); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrStepFailed.Error()), "step", string(step.Kind))
		}
	}
	return nil
}

func (r *Runner) apply(ctx context.Context, state *streamState, step *domain.Step) error {
	switch step.Kind {
	case domain.StepCompile:
		return r.compile(ctx, state, step.Compile)
	case domain.StepAutoprefix:
		return transformCSS(state, func(css []byte) ([]byte, error) {
			return r.prefixer.Prefix(css, step.Autoprefix)
		})
	case domain.StepMinify:
		return transformCSS(state, r.minifier.Minify)
	case domain.StepClean:
		return r.clean(state)
	case domain.StepRename:
		for i := range state.files {
			state.files[i].Path = rename(&state.files[i], step.Rename)
		}
		return nil
	case domain.StepDest:
		return r.dest(state, step.Dest)
	case domain.StepWait:
		return wait(ctx, step.Wait)
	case domain.StepReload:
		r.reload(state)
		return nil
	default:
		return zerr.With(domain.ErrUnknownStep, "kind", string(step.Kind))
	}
}

func (r *Runner) compile(ctx context.Context, state *streamState, opts domain.CompileOptions) error {
	compiler, ok := r.compilers[opts.Compiler]
	if !ok {
		return zerr.With(domain.ErrUnknownCompiler, "compiler", opts.Compiler)
	}

	files, err := compiler.Compile(ctx, ports.CompileRequest{
		Root:    state.root,
		Files:   state.files,
		Options: opts,
		Output:  state.out,
	})
	if err != nil {
		return err
	}
	state.files = files
	return nil
}

// transformCSS replaces the contents of every css file in flight. Other files
// pass through untouched.
func transformCSS(state *streamState, fn func([]byte) ([]byte, error)) error {
	for i := range state.files {
		f := &state.files[i]
		if f.Ext() != ".css" {
			continue
		}
		contents, err := fn(f.Contents)
		if err != nil {
			return zerr.With(err, "path", path.Join(f.Base, f.Path))
		}
		f.Contents = contents
	}
	return nil
}

// clean deletes the on-disk origin of every file in flight. The files
// themselves stay in the stream.
func (r *Runner) clean(state *streamState) error {
	origins := make([]string, 0, len(state.files))
	for i := range state.files {
		if state.files[i].Origin != "" {
			origins = append(origins, state.files[i].Origin)
			state.files[i].Origin = ""
		}
	}
	if len(origins) == 0 {
		return nil
	}
	return r.writer.Remove(origins)
}

// dest writes the files in flight under dir. Afterwards the files are
// anchored at dir, so a following reload reports their written paths.
func (r *Runner) dest(state *streamState, dir string) error {
	written, err := r.writer.Write(state.root, dir, state.files)
	if err != nil {
		return err
	}
	for _, p := range written {
		_, _ = fmt.Fprintf(state.out, "write %s\n", p)
	}

	base := path.Clean(filepath.ToSlash(dir))
	for i := range state.files {
		f := &state.files[i]
		f.Base = base
		f.Origin = filepath.Join(state.root, filepath.FromSlash(path.Join(base, f.Path)))
	}
	return nil
}

func (r *Runner) reload(state *streamState) {
	if len(state.files) == 0 {
		return
	}
	paths := make([]string, len(state.files))
	for i := range state.files {
		paths[i] = path.Join(state.files[i].Base, state.files[i].Path)
	}
	r.reloader.Notify(paths)
}

// rename applies gulp-rename style path-part options.
func rename(f *domain.File, opts domain.RenameOptions) string {
	stem := f.Stem()
	if opts.Basename != "" {
		stem = opts.Basename
	}
	ext := f.Ext()
	if opts.Extname != "" {
		ext = opts.Extname
	}
	return path.Join(f.Dir(), opts.Prefix+stem+opts.Suffix+ext)
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
