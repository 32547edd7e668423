package domain

import "time"

const (
	// ConfigFileName is the name of the task file looked up from the working directory upwards.
	ConfigFileName = "glaze.yaml"

	// DefaultOutputDir is the static output tree all destinations live under.
	DefaultOutputDir = "static"

	// DefaultReloadPort is the standard LiveReload port.
	DefaultReloadPort = 35729

	// DefaultReloadHost is the interface the live-reload server binds to.
	DefaultReloadHost = ""

	// DefaultTask is the task run when no target is given.
	DefaultTask = "default"

	// DefaultDebounceWindow is the time window used to coalesce filesystem events.
	DefaultDebounceWindow = 50 * time.Millisecond

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)
