package scheduler

import (
	"maps"

	"go.trai.ch/glaze/internal/core/domain"
)

// GetTaskStatusMap returns a copy of the internal task status map.
// This is exported for testing purposes only.
func (s *Scheduler) GetTaskStatusMap() map[domain.InternedString]TaskStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.taskStatus)
}

// SetParallelism overrides the number of concurrently running tasks.
func (s *Scheduler) SetParallelism(n int) {
	s.parallelism = n
}
