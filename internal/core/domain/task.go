package domain

import "time"

// Task represents a named, independently invokable build step.
// A task may run any number of streams, depend on other tasks, and, when it
// carries watch rules, stay alive re-running other tasks on file changes.
type Task struct {
	Name         InternedString
	Dependencies []InternedString
	Streams      []Stream
	Watches      []Watch
}

// IsWatch reports whether the task is a long-lived watch task.
func (t *Task) IsWatch() bool {
	return len(t.Watches) > 0
}

// Stream is a single source-to-destination pipeline: the files matched by
// Sources are read and handed through Steps in order.
type Stream struct {
	Sources []string
	Steps   []Step
}

// Watch maps a set of globs to the tasks re-run when a matching file changes.
type Watch struct {
	Globs []string
	Tasks []InternedString
}

// StepKind identifies one of the transformations a stream can apply.
type StepKind string

const (
	// StepCompile compiles stylesheet sources to css.
	StepCompile StepKind = "compile"
	// StepAutoprefix adds vendor-prefixed declarations.
	StepAutoprefix StepKind = "autoprefix"
	// StepMinify minifies stylesheets.
	StepMinify StepKind = "minify"
	// StepClean deletes the on-disk origin of every file in flight.
	StepClean StepKind = "clean"
	// StepRename changes the file names of files in flight.
	StepRename StepKind = "rename"
	// StepDest writes files in flight to a directory.
	StepDest StepKind = "dest"
	// StepWait pauses the stream.
	StepWait StepKind = "wait"
	// StepReload notifies live-reload clients about written files.
	StepReload StepKind = "reload"
)

// StepKinds lists every step kind in the order they are documented.
var StepKinds = []StepKind{
	StepCompile, StepAutoprefix, StepMinify, StepClean,
	StepRename, StepDest, StepWait, StepReload,
}

// Step is one transformation of a stream. Only the options matching Kind are set.
type Step struct {
	Kind       StepKind
	Compile    CompileOptions
	Autoprefix AutoprefixOptions
	Rename     RenameOptions
	Dest       string
	Wait       time.Duration
}

// CompileOptions configures the stylesheet compiler.
type CompileOptions struct {
	// Compiler names the compiler implementation ("compass" or "passthrough").
	Compiler string
	// Command is the command line run once per stream by command based compilers.
	Command []string
	// OutputDir is where the compiler writes its css, relative to the project root.
	OutputDir string
}

// Compiler names.
const (
	CompilerCompass     = "compass"
	CompilerPassthrough = "passthrough"
)

// Vendor prefixes understood by the autoprefixer.
const (
	VendorWebkit = "webkit"
	VendorMoz    = "moz"
	VendorMs     = "ms"
)

// Vendors lists every supported vendor.
var Vendors = []string{VendorWebkit, VendorMoz, VendorMs}

// AutoprefixOptions configures the autoprefixer.
type AutoprefixOptions struct {
	// Vendors restricts the emitted prefixes, e.g. "webkit", "moz", "ms".
	// Empty means all supported vendors.
	Vendors []string
}

// RenameOptions mirrors the path-part options of gulp-rename.
type RenameOptions struct {
	Extname  string
	Basename string
	Prefix   string
	Suffix   string
}
