package domain

import (
	"path"
	"strings"
)

// File is an artefact in flight through a stream.
type File struct {
	// Path is the slash separated path relative to Base.
	Path string
	// Base is the directory the source glob was anchored at, relative to the root.
	Base string
	// Contents holds the current bytes of the file.
	Contents []byte
	// Origin is the absolute path of the on-disk file the contents were last read from.
	Origin string
}

// Ext returns the extension of the file name including the dot.
func (f *File) Ext() string {
	return path.Ext(f.Path)
}

// Stem returns the file name without directory and extension.
func (f *File) Stem() string {
	return strings.TrimSuffix(path.Base(f.Path), f.Ext())
}

// Dir returns the directory part of Path, "." when there is none.
func (f *File) Dir() string {
	return path.Dir(f.Path)
}

// WithExt returns the path of f with its extension replaced by ext.
func (f *File) WithExt(ext string) string {
	return path.Join(f.Dir(), f.Stem()+ext)
}
