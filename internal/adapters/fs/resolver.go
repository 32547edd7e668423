// Package fs resolves source globs into files in flight and writes them back
// to the output tree.
package fs

import (
	"cmp"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/glaze/internal/core/domain"
	"go.trai.ch/glaze/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.InputResolver = (*Resolver)(nil)

// Resolver implements ports.InputResolver with doublestar globs. A glob
// prefixed with "!" excludes the files it matches.
type Resolver struct{}

// NewResolver creates a new Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve expands globs relative to root and reads every matched file.
func (r *Resolver) Resolve(root string, globs []string) ([]domain.File, error) {
	include, exclude := splitNegated(globs)
	seen := make(map[string]bool)
	var files []domain.File

	for _, glob := range include {
		base, pattern := doublestar.SplitPattern(filepath.ToSlash(glob))
		matches, err := doublestar.Glob(os.DirFS(filepath.Join(root, base)), pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrGlobFailed.Error()), "glob", glob)
		}

		for _, match := range matches {
			relPath := path.Join(base, match)
			if seen[relPath] || matchAny(exclude, relPath) {
				continue
			}
			seen[relPath] = true

			origin := filepath.Join(root, filepath.FromSlash(relPath))
			contents, err := os.ReadFile(origin) //nolint:gosec // path comes from the project's own globs
			if err != nil {
				return nil, zerr.With(zerr.Wrap(err, domain.ErrFileReadFailed.Error()), "path", relPath)
			}
			files = append(files, domain.File{
				Path:     match,
				Base:     path.Clean(base),
				Contents: contents,
				Origin:   origin,
			})
		}
	}

	slices.SortFunc(files, func(a, b domain.File) int {
		return cmp.Compare(path.Join(a.Base, a.Path), path.Join(b.Base, b.Path))
	})
	return files, nil
}

// Match reports whether relPath matches one of the globs and none of the
// negated ones.
func (r *Resolver) Match(globs []string, relPath string) bool {
	include, exclude := splitNegated(globs)
	relPath = filepath.ToSlash(relPath)
	return matchAny(include, relPath) && !matchAny(exclude, relPath)
}

func splitNegated(globs []string) (include, exclude []string) {
	for _, glob := range globs {
		if negated, ok := strings.CutPrefix(glob, "!"); ok {
			exclude = append(exclude, negated)
			continue
		}
		include = append(include, glob)
	}
	return include, exclude
}

func matchAny(globs []string, relPath string) bool {
	for _, glob := range globs {
		if ok, err := doublestar.Match(path.Clean(filepath.ToSlash(glob)), relPath); err == nil && ok {
			return true
		}
	}
	return false
}
