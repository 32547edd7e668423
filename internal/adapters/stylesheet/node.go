package stylesheet

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/glaze/internal/adapters/shell"
	"go.trai.ch/glaze/internal/core/ports"
)

const (
	// CompilersNodeID is the unique identifier for the compiler set.
	CompilersNodeID graft.ID = "adapter.stylesheet.compilers"
	// PrefixerNodeID is the unique identifier for the autoprefixer.
	PrefixerNodeID graft.ID = "adapter.stylesheet.prefixer"
	// MinifierNodeID is the unique identifier for the minifier.
	MinifierNodeID graft.ID = "adapter.stylesheet.minifier"
)

func init() {
	graft.Register(graft.Node[[]ports.Compiler]{
		ID:        CompilersNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.NodeID},
		Run: func(ctx context.Context) ([]ports.Compiler, error) {
			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}
			return []ports.Compiler{
				NewCompassCompiler(executor),
				NewPassthroughCompiler(),
			}, nil
		},
	})

	graft.Register(graft.Node[ports.Prefixer]{
		ID:        PrefixerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{},
		Run: func(_ context.Context) (ports.Prefixer, error) {
			return NewPrefixer(), nil
		},
	})

	graft.Register(graft.Node[ports.Minifier]{
		ID:        MinifierNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{},
		Run: func(_ context.Context) (ports.Minifier, error) {
			return NewMinifier(), nil
		},
	})
}
