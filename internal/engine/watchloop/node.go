package watchloop

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/glaze/internal/adapters/fs"
	"go.trai.ch/glaze/internal/adapters/livereload"
	"go.trai.ch/glaze/internal/adapters/logger"
	"go.trai.ch/glaze/internal/adapters/watcher"
	"go.trai.ch/glaze/internal/core/ports"
)

// NodeID is the unique identifier for the watch loop Graft node.
const NodeID graft.ID = "engine.watchloop"

func init() {
	graft.Register(graft.Node[ports.WatchLoop]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			watcher.NodeID,
			livereload.NodeID,
			fs.ResolverNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (ports.WatchLoop, error) {
			newWatcher, err := graft.Dep[ports.WatcherFactory](ctx)
			if err != nil {
				return nil, err
			}
			reloader, err := graft.Dep[ports.Reloader](ctx)
			if err != nil {
				return nil, err
			}
			resolver, err := graft.Dep[ports.InputResolver](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewLoop(newWatcher, reloader, resolver, log), nil
		},
	})
}
