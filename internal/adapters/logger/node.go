package logger

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/glaze/internal/adapters/detector"
	"go.trai.ch/glaze/internal/core/ports"
)

// NodeID is the unique identifier for the logger Graft node.
const NodeID graft.ID = "adapter.logger"

func init() {
	graft.Register(graft.Node[ports.Logger]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Logger, error) {
			// Records logged while the graph is built, before --log-format is
			// parsed, already follow the environment.
			l := New()
			l.SetJSON(detector.DetectLogFormat() == detector.FormatJSON)
			return l, nil
		},
	})
}
