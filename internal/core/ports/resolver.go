package ports

import (
	"iter"

	"go.trai.ch/glaze/internal/core/domain"
)

// InputResolver defines the interface for resolving source globs.
//
//go:generate go run go.uber.org/mock/mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks
type InputResolver interface {
	// Resolve expands the globs relative to root and reads every matched file.
	// Files are returned sorted by path; a glob matching nothing is not an error.
	Resolve(root string, globs []string) ([]domain.File, error)

	// Match reports whether the root-relative path matches any of the globs.
	Match(globs []string, relPath string) bool
}

// OutputWriter writes files in flight to the output tree.
type OutputWriter interface {
	// Write stores every file under dir (relative to root) and returns the
	// root-relative paths it changed. Files whose destination already holds
	// identical bytes are left untouched and not reported.
	Write(root, dir string, files []domain.File) ([]string, error)

	// Remove deletes the given absolute paths.
	Remove(paths []string) error
}

// FileWalker lists the regular files of a directory tree.
type FileWalker interface {
	WalkFiles(root string) iter.Seq[string]
}
