package watchloop_test

import (
	"context"
	"errors"
	"iter"
	"path/filepath"
	"sync"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/glaze/internal/adapters/fs"
	"go.trai.ch/glaze/internal/core/domain"
	"go.trai.ch/glaze/internal/core/ports"
	"go.trai.ch/glaze/internal/core/ports/mocks"
	"go.trai.ch/glaze/internal/engine/watchloop"
	"go.uber.org/mock/gomock"
)

const root = "/project"

type fakeWatcher struct {
	batches   chan []ports.WatchEvent
	closeOnce sync.Once

	mu   sync.Mutex
	root string
}

func newFakeWatcher() *fakeWatcher {
	return &fakeWatcher{batches: make(chan []ports.WatchEvent)}
}

func (f *fakeWatcher) Start(ctx context.Context, root string) error {
	f.mu.Lock()
	f.root = root
	f.mu.Unlock()
	go func() {
		<-ctx.Done()
		_ = f.Stop()
	}()
	return nil
}

func (f *fakeWatcher) Stop() error {
	f.closeOnce.Do(func() { close(f.batches) })
	return nil
}

func (f *fakeWatcher) Events() iter.Seq[[]ports.WatchEvent] {
	return func(yield func([]ports.WatchEvent) bool) {
		for batch := range f.batches {
			if !yield(batch) {
				return
			}
		}
	}
}

func (f *fakeWatcher) startedAt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.root
}

func (f *fakeWatcher) send(paths ...string) {
	batch := make([]ports.WatchEvent, len(paths))
	for i, p := range paths {
		batch[i] = ports.WatchEvent{Path: filepath.Join(root, filepath.FromSlash(p)), Operation: ports.OpWrite}
	}
	f.batches <- batch
}

func watchTask() domain.Task {
	css := domain.NewInternedString("css")
	images := domain.NewInternedString("images")
	return domain.Task{
		Name: domain.NewInternedString("watch"),
		Watches: []domain.Watch{
			{Globs: []string{"css/*.scss"}, Tasks: []domain.InternedString{css}},
			{Globs: []string{"images/**/*.png", "images/**/*.jpg"}, Tasks: []domain.InternedString{images}},
		},
	}
}

func newGraph() *domain.Graph {
	g := domain.NewGraph()
	g.SetRoot(root)
	return g
}

type loopTest struct {
	loop      *watchloop.Loop
	watcher   *fakeWatcher
	reloader  *mocks.MockReloader
	scheduler *mocks.MockScheduler
	logger    *mocks.MockLogger
}

func setupLoopTest(t *testing.T) *loopTest {
	t.Helper()
	ctrl := gomock.NewController(t)
	lt := &loopTest{
		watcher:   newFakeWatcher(),
		reloader:  mocks.NewMockReloader(ctrl),
		scheduler: mocks.NewMockScheduler(ctrl),
		logger:    mocks.NewMockLogger(ctrl),
	}
	lt.logger.EXPECT().Info(gomock.Any()).AnyTimes()
	lt.loop = watchloop.NewLoop(
		func() (ports.Watcher, error) { return lt.watcher, nil },
		lt.reloader,
		fs.NewResolver(),
		lt.logger,
	)
	return lt
}

// start runs Watch in the background and returns a function that stops it
// and reports its result.
func (lt *loopTest) start(t *testing.T, g *domain.Graph) func() error {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- lt.loop.Watch(ctx, g, watchTask(), lt.scheduler)
	}()
	synctest.Wait()
	return func() error {
		cancel()
		return <-errCh
	}
}

func isWatchRun(opts ...ports.SpanOption) bool {
	cfg := &ports.SpanConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg.Watch
}

func TestLoop_RerunsMatchedTask(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		lt := setupLoopTest(t)
		g := newGraph()

		lt.reloader.EXPECT().Listen(gomock.Any(), ":35729").Return(nil)
		lt.scheduler.EXPECT().Run(gomock.Any(), g, []string{"css"}, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ *domain.Graph, _ []string, opts ...ports.SpanOption) error {
				assert.True(t, isWatchRun(opts...))
				return nil
			},
		).Times(1)

		stop := lt.start(t, g)
		assert.Equal(t, root, lt.watcher.startedAt())

		lt.watcher.send("css/main.scss", "static/css/main.css")
		synctest.Wait()

		require.NoError(t, stop())
	})
}

func TestLoop_UnrelatedChangesTriggerNothing(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		lt := setupLoopTest(t)
		g := newGraph()

		lt.reloader.EXPECT().Listen(gomock.Any(), gomock.Any()).Return(nil)
		lt.scheduler.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		stop := lt.start(t, g)

		lt.watcher.send("README.md")
		lt.watcher.send("static/images/logo.png", "css/notes.txt")
		lt.watcher.send("css/nested/deep.scss")
		synctest.Wait()

		require.NoError(t, stop())
	})
}

func TestLoop_OneRunPerBatch(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		lt := setupLoopTest(t)
		g := newGraph()

		lt.reloader.EXPECT().Listen(gomock.Any(), gomock.Any()).Return(nil)
		lt.scheduler.EXPECT().Run(gomock.Any(), g, []string{"css", "images"}, gomock.Any()).Return(nil).Times(1)

		stop := lt.start(t, g)

		lt.watcher.send("css/main.scss", "images/a/logo.png", "css/print.scss", "images/b.jpg")
		synctest.Wait()

		require.NoError(t, stop())
	})
}

func TestLoop_FailureIsLoggedAndLoopContinues(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		lt := setupLoopTest(t)
		g := newGraph()

		failure := errors.New("compass exited 1")
		lt.reloader.EXPECT().Listen(gomock.Any(), gomock.Any()).Return(nil)
		first := lt.scheduler.EXPECT().Run(gomock.Any(), g, []string{"css"}, gomock.Any()).Return(failure)
		lt.logger.EXPECT().Error(failure)
		lt.scheduler.EXPECT().Run(gomock.Any(), g, []string{"images"}, gomock.Any()).Return(nil).After(first)

		stop := lt.start(t, g)

		lt.watcher.send("css/main.scss")
		synctest.Wait()
		lt.watcher.send("images/logo.png")
		synctest.Wait()

		require.NoError(t, stop())
	})
}

func TestLoop_PathsOutsideRootIgnored(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		lt := setupLoopTest(t)
		g := newGraph()

		lt.reloader.EXPECT().Listen(gomock.Any(), gomock.Any()).Return(nil)
		lt.scheduler.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		stop := lt.start(t, g)

		lt.watcher.batches <- []ports.WatchEvent{{Path: "/elsewhere/css/main.scss", Operation: ports.OpWrite}}
		synctest.Wait()

		require.NoError(t, stop())
	})
}

func TestLoop_ListenFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	reloader := mocks.NewMockReloader(ctrl)
	listenErr := errors.New("address already in use")
	reloader.EXPECT().Listen(gomock.Any(), "127.0.0.1:4000").Return(listenErr)

	created := false
	loop := watchloop.NewLoop(
		func() (ports.Watcher, error) {
			created = true
			return newFakeWatcher(), nil
		},
		reloader,
		fs.NewResolver(),
		mocks.NewMockLogger(ctrl),
	)

	g := newGraph()
	g.SetReload(domain.ReloadConfig{Host: "127.0.0.1", Port: 4000})

	err := loop.Watch(context.Background(), g, watchTask(), mocks.NewMockScheduler(ctrl))
	require.ErrorIs(t, err, listenErr)
	assert.False(t, created)
}

func TestLoop_WatcherFactoryFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	reloader := mocks.NewMockReloader(ctrl)
	reloader.EXPECT().Listen(gomock.Any(), gomock.Any()).Return(nil)

	factoryErr := errors.New("too many open files")
	loop := watchloop.NewLoop(
		func() (ports.Watcher, error) { return nil, factoryErr },
		reloader,
		fs.NewResolver(),
		mocks.NewMockLogger(ctrl),
	)

	err := loop.Watch(context.Background(), newGraph(), watchTask(), mocks.NewMockScheduler(ctrl))
	require.ErrorIs(t, err, factoryErr)
}
