package ports

import "go.trai.ch/glaze/internal/core/domain"

// ConfigLoader defines the interface for loading the task file.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load finds the task file starting at cwd and returns the task graph.
	Load(cwd string) (*domain.Graph, error)

	// LoadFile reads the task file at path and returns the task graph.
	LoadFile(path string) (*domain.Graph, error)
}
