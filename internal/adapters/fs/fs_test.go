package fs_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/glaze/internal/adapters/fs"
	"go.trai.ch/glaze/internal/core/domain"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), domain.DirPerm))
		require.NoError(t, os.WriteFile(p, []byte(content), domain.PrivateFilePerm))
	}
}

func relPaths(files []domain.File) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Base+"/"+f.Path)
	}
	return out
}

func TestResolver_Resolve(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"images/logo.png":         "png",
		"images/icons/a.svg":      "svg",
		"images/icons/deep/b.png": "png",
		"images/notes.txt":        "txt",
		"fonts/a.woff2":           "w2",
		"fonts/a.woff":            "w",
		"fonts/a.eot":             "eot",
	})

	tests := []struct {
		name  string
		globs []string
		want  []string
	}{
		{
			name:  "double star crosses directories",
			globs: []string{"images/**/*.png", "images/**/*.svg"},
			want:  []string{"images/icons/a.svg", "images/icons/deep/b.png", "images/logo.png"},
		},
		{
			name:  "single star stays in directory",
			globs: []string{"fonts/*.woff2", "fonts/*.woff", "fonts/*.ttf"},
			want:  []string{"fonts/a.woff", "fonts/a.woff2"},
		},
		{
			name:  "duplicates collapse",
			globs: []string{"fonts/*.woff", "fonts/a.woff"},
			want:  []string{"fonts/a.woff"},
		},
		{
			name:  "negated glob excludes",
			globs: []string{"images/**/*.png", "!images/icons/**"},
			want:  []string{"images/logo.png"},
		},
		{
			name:  "no matches is empty",
			globs: []string{"css/*.scss"},
			want:  []string{},
		},
	}

	r := fs.NewResolver()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := r.Resolve(root, tt.globs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, relPaths(files))
		})
	}
}

func TestResolver_Resolve_FileFields(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"images/icons/a.svg": "<svg/>"})

	files, err := fs.NewResolver().Resolve(root, []string{"images/**/*.svg"})
	require.NoError(t, err)
	require.Len(t, files, 1)

	assert.Equal(t, "icons/a.svg", files[0].Path)
	assert.Equal(t, "images", files[0].Base)
	assert.Equal(t, []byte("<svg/>"), files[0].Contents)
	assert.Equal(t, filepath.Join(root, "images", "icons", "a.svg"), files[0].Origin)
}

func TestResolver_Resolve_BadPattern(t *testing.T) {
	_, err := fs.NewResolver().Resolve(t.TempDir(), []string{"css/[.scss"})
	require.ErrorContains(t, err, domain.ErrGlobFailed.Error())
}

func TestResolver_Match(t *testing.T) {
	r := fs.NewResolver()
	images := []string{"images/**/*.png", "images/**/*.jpg", "images/**/*.jpeg", "images/**/*.svg"}

	assert.True(t, r.Match([]string{"css/*.scss"}, "css/app.scss"))
	assert.False(t, r.Match([]string{"css/*.scss"}, "css/partials/_grid.scss"))
	assert.False(t, r.Match([]string{"css/*.scss"}, "static/css/app.min.css"))
	assert.True(t, r.Match(images, "images/logo.png"))
	assert.True(t, r.Match(images, "images/a/b/c.svg"))
	assert.False(t, r.Match(images, "images/readme.md"))
	assert.False(t, r.Match([]string{"images/**/*.png", "!images/tmp/**"}, "images/tmp/x.png"))
}

func TestWriter_Write(t *testing.T) {
	root := t.TempDir()
	w := fs.NewWriter()

	files := []domain.File{
		{Path: "app.min.css", Contents: []byte("a{b:c}")},
		{Path: "icons/a.svg", Contents: []byte("<svg/>")},
	}
	written, err := w.Write(root, "static/out", files)
	require.NoError(t, err)
	assert.Equal(t, []string{"static/out/app.min.css", "static/out/icons/a.svg"}, written)

	got, err := os.ReadFile(filepath.Join(root, "static", "out", "icons", "a.svg"))
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(got))
}

func TestWriter_Write_SkipsIdenticalContent(t *testing.T) {
	root := t.TempDir()
	w := fs.NewWriter()
	files := []domain.File{{Path: "app.min.css", Contents: []byte("a{b:c}")}}

	_, err := w.Write(root, "static", files)
	require.NoError(t, err)

	dest := filepath.Join(root, "static", "app.min.css")
	old := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(dest, old, old))

	written, err := w.Write(root, "static", files)
	require.NoError(t, err)
	assert.Empty(t, written)
	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(old), "identical content must not be rewritten")

	files[0].Contents = []byte("a{b:d}")
	written, err = w.Write(root, "static", files)
	require.NoError(t, err)
	assert.Equal(t, []string{"static/app.min.css"}, written)
	info, err = os.Stat(dest)
	require.NoError(t, err)
	assert.False(t, info.ModTime().Equal(old))

	entries, err := os.ReadDir(filepath.Join(root, "static"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestWriter_Write_OutsideRoot(t *testing.T) {
	_, err := fs.NewWriter().Write(t.TempDir(), "../escape", []domain.File{{Path: "x.css"}})
	require.ErrorContains(t, err, domain.ErrOutputPathOutsideRoot.Error())
}

func TestWriter_Remove(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"static/css/app.css": "x"})
	target := filepath.Join(root, "static", "css", "app.css")

	w := fs.NewWriter()
	require.NoError(t, w.Remove([]string{target}))
	assert.NoFileExists(t, target)

	require.NoError(t, w.Remove([]string{target}), "removing a missing file is not an error")
}

func TestWalker_WalkFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"css/app.min.css": "x",
		"js/share.min.js": "y",
		".git/HEAD":       "ref",
	})

	var got []string
	for p := range fs.NewWalker().WalkFiles(root) {
		rel, err := filepath.Rel(root, p)
		require.NoError(t, err)
		got = append(got, filepath.ToSlash(rel))
	}
	assert.ElementsMatch(t, []string{"css/app.min.css", "js/share.min.js"}, got)

	var missing []string
	for p := range fs.NewWalker().WalkFiles(filepath.Join(root, "nope")) {
		missing = append(missing, p)
	}
	assert.Empty(t, missing)
}
