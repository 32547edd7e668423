package watcher_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/glaze/internal/adapters/watcher"
	"go.trai.ch/glaze/internal/core/ports"
)

func write(path string) ports.WatchEvent {
	return ports.WatchEvent{Path: path, Operation: ports.OpWrite}
}

func TestDebouncer_Add_SingleEvent(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var batches [][]ports.WatchEvent

		d := watcher.NewDebouncer(50*time.Millisecond, func(batch []ports.WatchEvent) {
			batches = append(batches, batch)
		})

		d.Add(write("/site/css/main.scss"))

		time.Sleep(80 * time.Millisecond)
		synctest.Wait()

		require.Len(t, batches, 1)
		assert.Equal(t, []ports.WatchEvent{write("/site/css/main.scss")}, batches[0])
	})
}

func TestDebouncer_Add_BurstCoalescedAndSorted(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var batches [][]ports.WatchEvent

		d := watcher.NewDebouncer(50*time.Millisecond, func(batch []ports.WatchEvent) {
			batches = append(batches, batch)
		})

		d.Add(write("/site/images/b.png"))
		d.Add(write("/site/css/main.scss"))
		d.Add(write("/site/images/a.png"))

		time.Sleep(80 * time.Millisecond)
		synctest.Wait()

		require.Len(t, batches, 1)
		assert.Equal(t, []ports.WatchEvent{
			write("/site/css/main.scss"),
			write("/site/images/a.png"),
			write("/site/images/b.png"),
		}, batches[0])
	})
}

func TestDebouncer_Add_LatestOperationWins(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var batches [][]ports.WatchEvent

		d := watcher.NewDebouncer(50*time.Millisecond, func(batch []ports.WatchEvent) {
			batches = append(batches, batch)
		})

		d.Add(ports.WatchEvent{Path: "/site/fonts/a.woff", Operation: ports.OpCreate})
		d.Add(ports.WatchEvent{Path: "/site/fonts/a.woff", Operation: ports.OpWrite})
		d.Add(ports.WatchEvent{Path: "/site/fonts/a.woff", Operation: ports.OpRemove})

		time.Sleep(80 * time.Millisecond)
		synctest.Wait()

		require.Len(t, batches, 1)
		require.Len(t, batches[0], 1)
		assert.Equal(t, ports.OpRemove, batches[0][0].Operation)
	})
}

func TestDebouncer_Add_TimerReset(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var mu sync.Mutex
		calls := 0

		d := watcher.NewDebouncer(100*time.Millisecond, func([]ports.WatchEvent) {
			mu.Lock()
			calls++
			mu.Unlock()
		})

		d.Add(write("/site/css/a.scss"))
		time.Sleep(60 * time.Millisecond)
		d.Add(write("/site/css/b.scss"))
		time.Sleep(60 * time.Millisecond)
		synctest.Wait()

		mu.Lock()
		assert.Equal(t, 0, calls)
		mu.Unlock()

		time.Sleep(60 * time.Millisecond)
		synctest.Wait()

		mu.Lock()
		assert.Equal(t, 1, calls)
		mu.Unlock()
	})
}

func TestDebouncer_Flush(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var batches [][]ports.WatchEvent

		d := watcher.NewDebouncer(100*time.Millisecond, func(batch []ports.WatchEvent) {
			batches = append(batches, batch)
		})

		d.Add(write("/site/css/a.scss"))
		d.Flush()

		require.Len(t, batches, 1)

		// The stopped timer must not deliver the batch a second time.
		time.Sleep(150 * time.Millisecond)
		synctest.Wait()
		assert.Len(t, batches, 1)
	})
}

func TestDebouncer_Flush_Empty(t *testing.T) {
	calls := 0
	d := watcher.NewDebouncer(100*time.Millisecond, func([]ports.WatchEvent) {
		calls++
	})

	d.Flush()

	assert.Equal(t, 0, calls)
}

func TestDebouncer_Flush_AfterFire(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		calls := 0
		d := watcher.NewDebouncer(50*time.Millisecond, func([]ports.WatchEvent) {
			calls++
		})

		d.Add(write("/site/css/a.scss"))
		time.Sleep(80 * time.Millisecond)
		synctest.Wait()
		require.Equal(t, 1, calls)

		d.Flush()
		assert.Equal(t, 1, calls)
	})
}

func TestDebouncer_NilCallback(t *testing.T) {
	synctest.Test(t, func(_ *testing.T) {
		d := watcher.NewDebouncer(50*time.Millisecond, nil)

		d.Add(write("/site/css/a.scss"))
		time.Sleep(80 * time.Millisecond)
		synctest.Wait()

		d.Flush()
	})
}

func TestWatchOp_String(t *testing.T) {
	tests := map[ports.WatchOp]string{
		ports.OpCreate:   "create",
		ports.OpWrite:    "write",
		ports.OpRemove:   "remove",
		ports.OpRename:   "rename",
		ports.WatchOp(9): "unknown",
	}
	for op, want := range tests {
		assert.Equal(t, want, op.String())
	}
}
