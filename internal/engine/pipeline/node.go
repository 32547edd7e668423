package pipeline

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/glaze/internal/adapters/fs"
	"go.trai.ch/glaze/internal/adapters/livereload"
	"go.trai.ch/glaze/internal/adapters/stylesheet"
	"go.trai.ch/glaze/internal/core/ports"
)

// NodeID is the unique identifier for the stream runner Graft node.
const NodeID graft.ID = "engine.pipeline"

func init() {
	graft.Register(graft.Node[ports.TaskRunner]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			fs.ResolverNodeID,
			fs.WriterNodeID,
			stylesheet.CompilersNodeID,
			stylesheet.PrefixerNodeID,
			stylesheet.MinifierNodeID,
			livereload.NodeID,
		},
		Run: func(ctx context.Context) (ports.TaskRunner, error) {
			resolver, err := graft.Dep[ports.InputResolver](ctx)
			if err != nil {
				return nil, err
			}
			writer, err := graft.Dep[ports.OutputWriter](ctx)
			if err != nil {
				return nil, err
			}
			compilers, err := graft.Dep[[]ports.Compiler](ctx)
			if err != nil {
				return nil, err
			}
			prefixer, err := graft.Dep[ports.Prefixer](ctx)
			if err != nil {
				return nil, err
			}
			minifier, err := graft.Dep[ports.Minifier](ctx)
			if err != nil {
				return nil, err
			}
			reloader, err := graft.Dep[ports.Reloader](ctx)
			if err != nil {
				return nil, err
			}
			return NewRunner(resolver, writer, compilers, prefixer, minifier, reloader), nil
		},
	})
}
