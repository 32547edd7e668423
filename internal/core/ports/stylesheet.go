package ports

import (
	"context"
	"io"

	"go.trai.ch/glaze/internal/core/domain"
)

// CompileRequest is the input of a Compiler run.
type CompileRequest struct {
	// Root is the absolute project root.
	Root string
	// Files are the stylesheet sources matched by the stream.
	Files []domain.File
	// Options are the compile step options.
	Options domain.CompileOptions
	// Output receives the compiler's console output.
	Output io.Writer
}

// Compiler turns stylesheet sources into css files.
//
//go:generate go run go.uber.org/mock/mockgen -source=stylesheet.go -destination=mocks/mock_stylesheet.go -package=mocks
type Compiler interface {
	// Name is the identifier used by compile steps to select the compiler.
	Name() string
	// Compile returns one css file per source file, in the same order.
	Compile(ctx context.Context, req CompileRequest) ([]domain.File, error)
}

// Prefixer adds vendor prefixes to css.
type Prefixer interface {
	Prefix(css []byte, opts domain.AutoprefixOptions) ([]byte, error)
}

// Minifier minifies css.
type Minifier interface {
	Minify(css []byte) ([]byte, error)
}
