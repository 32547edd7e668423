package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/glaze/internal/adapters/config" //nolint:depguard // Wired in app layer
	"go.trai.ch/glaze/internal/adapters/fs"     //nolint:depguard // Wired in app layer
	"go.trai.ch/glaze/internal/adapters/logger" //nolint:depguard // Wired in app layer
	"go.trai.ch/glaze/internal/core/ports"
	"go.trai.ch/glaze/internal/engine/pipeline"
	"go.trai.ch/glaze/internal/engine/watchloop"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			pipeline.NodeID,
			watchloop.NodeID,
			fs.WalkerNodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			application, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: application, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}
	runner, err := graft.Dep[ports.TaskRunner](ctx)
	if err != nil {
		return nil, err
	}
	watch, err := graft.Dep[ports.WatchLoop](ctx)
	if err != nil {
		return nil, err
	}
	walker, err := graft.Dep[ports.FileWalker](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	return New(loader, runner, watch, walker, log), nil
}
