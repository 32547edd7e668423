package ports

import (
	"context"
	"iter"
)

// WatchOp is the kind of change reported for a path.
type WatchOp uint8

const (
	// OpCreate means the path appeared.
	OpCreate WatchOp = iota
	// OpWrite means the file contents changed.
	OpWrite
	// OpRemove means the path is gone.
	OpRemove
	// OpRename means the path was moved away.
	OpRename
)

// String returns the lower-case operation name used in log lines.
func (op WatchOp) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpWrite:
		return "write"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// WatchEvent is one file system change.
type WatchEvent struct {
	// Path is absolute.
	Path      string
	Operation WatchOp
}

// Watcher observes a project tree and yields batched change events.
type Watcher interface {
	// Start watches root recursively until ctx is cancelled or Stop is called.
	Start(ctx context.Context, root string) error
	// Stop releases the underlying watches. Events stops yielding afterwards.
	Stop() error
	// Events yields one batch per settled debounce window. Each path appears
	// at most once per batch, carrying its latest operation.
	Events() iter.Seq[[]WatchEvent]
}

// WatcherFactory creates a Watcher. Watchers are single use.
type WatcherFactory func() (Watcher, error)
