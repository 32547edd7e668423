package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/glaze/internal/adapters/watcher"
	"go.trai.ch/glaze/internal/core/ports"
	"go.trai.ch/glaze/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestWatcher_ReportsChangedFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "css"), 0o750))

	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()

	w, err := watcher.NewWatcher(logger, 20*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx, root))

	target := filepath.Join(root, "css", "main.scss")
	require.NoError(t, os.WriteFile(target, []byte("a { b: c }"), 0o600))

	found := waitForPath(t, w, target)
	assert.True(t, found, "expected an event for %s", target)
}

func TestWatcher_SkipsCacheDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".sass-cache"), 0o750))

	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()

	w, err := watcher.NewWatcher(logger, 20*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx, root))

	cached := filepath.Join(root, ".sass-cache", "main.scssc")
	require.NoError(t, os.WriteFile(cached, []byte("x"), 0o600))
	marker := filepath.Join(root, "marker.txt")
	require.NoError(t, os.WriteFile(marker, []byte("x"), 0o600))

	var seen []string
	deadline := time.After(5 * time.Second)
	next, stop := pull(w)
	defer stop()
	for !slices.Contains(seen, marker) {
		select {
		case batch := <-next:
			for _, e := range batch {
				seen = append(seen, e.Path)
			}
		case <-deadline:
			t.Fatal("timed out waiting for marker event")
		}
	}
	assert.NotContains(t, seen, cached)
}

func TestWatcher_StopEndsEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()

	w, err := watcher.NewWatcher(logger, 20*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background(), t.TempDir()))
	require.NoError(t, w.Stop())

	done := make(chan struct{})
	go func() {
		for range w.Events() {
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Events did not finish after Stop")
	}
}

func waitForPath(t *testing.T, w *watcher.Watcher, path string) bool {
	t.Helper()
	next, stop := pull(w)
	defer stop()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case batch, ok := <-next:
			if !ok {
				return false
			}
			for _, e := range batch {
				if e.Path == path {
					return true
				}
			}
		case <-deadline:
			return false
		}
	}
}

// pull moves batches onto a channel so tests can select with a deadline.
func pull(w *watcher.Watcher) (<-chan []ports.WatchEvent, func()) {
	out := make(chan []ports.WatchEvent)
	quit := make(chan struct{})
	go func() {
		defer close(out)
		for batch := range w.Events() {
			select {
			case out <- batch:
			case <-quit:
				return
			}
		}
	}()
	return out, func() { close(quit) }
}
