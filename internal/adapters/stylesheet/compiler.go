// Package stylesheet compiles, prefixes and minifies css.
package stylesheet

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.trai.ch/glaze/internal/core/domain"
	"go.trai.ch/glaze/internal/core/ports"
	"go.trai.ch/zerr"
)

const cssExt = ".css"

var (
	_ ports.Compiler = (*CompassCompiler)(nil)
	_ ports.Compiler = (*PassthroughCompiler)(nil)
)

// CompassCompiler runs an external compass command over the stream's
// sources and collects the css files it leaves in the output directory.
type CompassCompiler struct {
	executor ports.Executor
}

// NewCompassCompiler creates a compiler running its command through executor.
func NewCompassCompiler(executor ports.Executor) *CompassCompiler {
	return &CompassCompiler{executor: executor}
}

// Name implements ports.Compiler.
func (c *CompassCompiler) Name() string {
	return domain.CompilerCompass
}

// Compile runs the configured command once with every non-partial source
// appended, then reads <OutputDir>/<path>.css for each of them. The css file
// becomes the origin of the returned file so a later clean step removes it.
func (c *CompassCompiler) Compile(ctx context.Context, req ports.CompileRequest) ([]domain.File, error) {
	sources := make([]domain.File, 0, len(req.Files))
	for _, f := range req.Files {
		// Sass partials are only ever imported; compass writes nothing for them.
		if strings.HasPrefix(path.Base(f.Path), "_") {
			continue
		}
		sources = append(sources, f)
	}
	if len(sources) == 0 {
		return nil, nil
	}

	args := append([]string(nil), req.Options.Command...)
	for _, f := range sources {
		args = append(args, path.Join(f.Base, f.Path))
	}

	output := req.Output
	if output == nil {
		output = io.Discard
	}
	cmd := ports.Command{Args: args, WorkingDir: req.Root}
	if err := c.executor.Execute(ctx, cmd, output, output); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCompileFailed.Error()), "compiler", c.Name())
	}

	compiled := make([]domain.File, 0, len(sources))
	for _, f := range sources {
		rel := f.WithExt(cssExt)
		abs := filepath.Join(req.Root, filepath.FromSlash(req.Options.OutputDir), filepath.FromSlash(rel))
		contents, err := os.ReadFile(abs) //nolint:gosec // path is built from the task file
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, zerr.With(domain.ErrCompiledOutputMissing, "path", abs)
			}
			return nil, zerr.With(zerr.Wrap(err, domain.ErrFileReadFailed.Error()), "path", abs)
		}
		compiled = append(compiled, domain.File{
			Path:     rel,
			Base:     req.Options.OutputDir,
			Contents: contents,
			Origin:   abs,
		})
	}
	return compiled, nil
}

// PassthroughCompiler treats its sources as plain css. It only switches the
// extension, so projects without a Ruby toolchain can still run the pipeline.
type PassthroughCompiler struct{}

// NewPassthroughCompiler creates a PassthroughCompiler.
func NewPassthroughCompiler() *PassthroughCompiler {
	return &PassthroughCompiler{}
}

// Name implements ports.Compiler.
func (c *PassthroughCompiler) Name() string {
	return domain.CompilerPassthrough
}

// Compile returns the sources renamed to .css. The origin is dropped: the
// source file is not an intermediate and must survive a clean step.
func (c *PassthroughCompiler) Compile(_ context.Context, req ports.CompileRequest) ([]domain.File, error) {
	compiled := make([]domain.File, 0, len(req.Files))
	for _, f := range req.Files {
		compiled = append(compiled, domain.File{
			Path:     f.WithExt(cssExt),
			Base:     f.Base,
			Contents: f.Contents,
		})
	}
	return compiled, nil
}
