package fs

import (
	"errors"
	"io"
	iofs "io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/glaze/internal/core/domain"
	"go.trai.ch/glaze/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.OutputWriter = (*Writer)(nil)

// Writer implements ports.OutputWriter. Destinations already holding the same
// bytes are left alone, so repeated builds keep their mtimes.
type Writer struct{}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write stores files under dir, relative to root. It returns the paths whose
// contents changed; identical files are left alone.
func (w *Writer) Write(root, dir string, files []domain.File) ([]string, error) {
	written := make([]string, 0, len(files))
	for i := range files {
		relPath := path.Join(filepath.ToSlash(dir), files[i].Path)
		dest, err := resolveInsideRoot(root, relPath)
		if err != nil {
			return nil, err
		}

		changed, err := writeIfChanged(dest, files[i].Contents)
		if err != nil {
			return nil, zerr.With(err, "path", relPath)
		}
		if changed {
			written = append(written, relPath)
		}
	}
	return written, nil
}

// Remove deletes the given absolute paths. Missing files are not an error.
func (w *Writer) Remove(paths []string) error {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, iofs.ErrNotExist) {
			return zerr.With(zerr.Wrap(err, domain.ErrFileRemoveFailed.Error()), "path", p)
		}
	}
	return nil
}

func resolveInsideRoot(root, relPath string) (string, error) {
	dest := filepath.Join(root, filepath.FromSlash(relPath))
	rel, err := filepath.Rel(root, dest)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", zerr.With(domain.ErrOutputPathOutsideRoot, "path", relPath)
	}
	return dest, nil
}

func writeIfChanged(dest string, contents []byte) (bool, error) {
	if existing, err := fileHash(dest); err == nil && existing == xxhash.Sum64(contents) {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), domain.DirPerm); err != nil {
		return false, zerr.Wrap(err, domain.ErrFileWriteFailed.Error())
	}

	// Written through a temp file so watchers and browsers never see a partial file.
	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*")
	if err != nil {
		return false, zerr.Wrap(err, domain.ErrFileWriteFailed.Error())
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(contents); err != nil {
		_ = tmp.Close()
		return false, zerr.Wrap(err, domain.ErrFileWriteFailed.Error())
	}
	if err := tmp.Close(); err != nil {
		return false, zerr.Wrap(err, domain.ErrFileWriteFailed.Error())
	}
	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		return false, zerr.Wrap(err, domain.ErrFileWriteFailed.Error())
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return false, zerr.Wrap(err, domain.ErrFileWriteFailed.Error())
	}
	return true, nil
}

// fileHash computes the xxhash of a file's content.
func fileHash(p string) (uint64, error) {
	f, err := os.Open(p) //nolint:gosec // path is resolved inside the project root
	if err != nil {
		return 0, err
	}
	defer f.Close() //nolint:errcheck // best effort close of a read-only file

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, err
	}
	return hasher.Sum64(), nil
}
