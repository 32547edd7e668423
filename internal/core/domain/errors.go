package domain

import "go.trai.ch/zerr"

var (
	// ErrTaskAlreadyExists is returned when attempting to add a task with a name that already exists.
	ErrTaskAlreadyExists = zerr.New("task already exists")

	// ErrMissingDependency is returned when a task references a dependency that doesn't exist in the graph.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrMissingWatchTarget is returned when a watch rule references a task that doesn't exist.
	ErrMissingWatchTarget = zerr.New("watch rule references unknown task")

	// ErrCycleDetected is returned when a cycle is detected in the task dependency graph.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrTaskNotFound is returned when a requested task is not found in the graph.
	ErrTaskNotFound = zerr.New("task not found")

	// ErrInvalidTaskName is returned when a task name contains invalid characters.
	ErrInvalidTaskName = zerr.New("task name can only contain alphanumeric characters, hyphens and underscores")

	// ErrUnknownStep is returned when a stream references a step kind the runner does not know.
	ErrUnknownStep = zerr.New("unknown step")

	// ErrInvalidStep is returned when a step's options cannot be decoded.
	ErrInvalidStep = zerr.New("invalid step options")

	// ErrMissingSources is returned when a stream declares no source globs.
	ErrMissingSources = zerr.New("stream has no sources")

	// ErrUnknownPathRef is returned when a source references an undefined named path list.
	ErrUnknownPathRef = zerr.New("unknown path reference")

	// ErrUnknownCompiler is returned when a compile step names a compiler that is not registered.
	ErrUnknownCompiler = zerr.New("unknown stylesheet compiler")

	// ErrUnsupportedVendor is returned when autoprefix is configured with an unknown vendor.
	ErrUnsupportedVendor = zerr.New("unsupported vendor prefix")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrBuildExecutionFailed is returned when the build execution fails.
	ErrBuildExecutionFailed = zerr.New("build execution failed")

	// ErrTaskExecutionFailed is returned when a task execution fails.
	ErrTaskExecutionFailed = zerr.New("task execution failed")

	// ErrStepFailed is returned when a pipeline step fails.
	ErrStepFailed = zerr.New("step failed")

	// ErrGlobFailed is returned when a source glob cannot be evaluated.
	ErrGlobFailed = zerr.New("failed to expand glob")

	// ErrFileReadFailed is returned when a source file cannot be read.
	ErrFileReadFailed = zerr.New("failed to read file")

	// ErrFileWriteFailed is returned when an output file cannot be written.
	ErrFileWriteFailed = zerr.New("failed to write file")

	// ErrFileRemoveFailed is returned when an intermediate file cannot be removed.
	ErrFileRemoveFailed = zerr.New("failed to remove file")

	// ErrOutputPathOutsideRoot is returned when a destination resolves outside the project root.
	ErrOutputPathOutsideRoot = zerr.New("output path is outside project root")

	// ErrCompileFailed is returned when the stylesheet compiler fails.
	ErrCompileFailed = zerr.New("stylesheet compilation failed")

	// ErrCompiledOutputMissing is returned when the compiler did not produce the expected css file.
	ErrCompiledOutputMissing = zerr.New("compiled stylesheet not found")

	// ErrPrefixFailed is returned when a stylesheet cannot be parsed for prefixing.
	ErrPrefixFailed = zerr.New("failed to autoprefix stylesheet")

	// ErrMinifyFailed is returned when minification fails.
	ErrMinifyFailed = zerr.New("failed to minify stylesheet")

	// ErrWatcherStartFailed is returned when the filesystem watcher cannot be started.
	ErrWatcherStartFailed = zerr.New("failed to start file watcher")

	// ErrReloadServerFailed is returned when the live-reload server cannot listen.
	ErrReloadServerFailed = zerr.New("failed to start live-reload server")

	// ErrCleanFailed is returned when the output directory cannot be removed.
	ErrCleanFailed = zerr.New("failed to clean output directory")

	// ErrConfigExists is returned when init would overwrite an existing task file.
	ErrConfigExists = zerr.New("config file already exists")

	// ErrInvalidLogFormat is returned when --log-format names an unknown format.
	ErrInvalidLogFormat = zerr.New("invalid log format")
)
