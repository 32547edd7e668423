package ports

import "context"

// Reloader notifies connected browsers that files changed.
//
//go:generate go run go.uber.org/mock/mockgen -source=reloader.go -destination=mocks/mock_reloader.go -package=mocks
type Reloader interface {
	// Listen starts serving clients on addr until ctx is cancelled.
	Listen(ctx context.Context, addr string) error

	// Notify tells every connected client to reload the given paths.
	// It is a no-op when the server is not listening.
	Notify(paths []string)
}
