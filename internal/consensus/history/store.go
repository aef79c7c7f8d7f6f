// Package history persists completed deliberations. The engine appends every
// session here, success or failure; the store is append-only.
package history

import (
	"context"
	"sync"

	"dev.helix.consensus/internal/consensus"
)

// Store is the append-only deliberation history collaborator.
type Store interface {
	// Append records a completed deliberation.
	Append(ctx context.Context, delib *consensus.Deliberation) error
	// Recent returns up to limit deliberations, most recent first.
	Recent(ctx context.Context, limit int) ([]*consensus.Deliberation, error)
	// Count returns the total number of recorded deliberations.
	Count(ctx context.Context) (int, error)
}

// MemoryStore is an in-process Store. Writes are mutex-serialized.
type MemoryStore struct {
	deliberations []*consensus.Deliberation
	mu            sync.RWMutex
}

// NewMemoryStore creates an empty in-memory history store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{deliberations: make([]*consensus.Deliberation, 0)}
}

// Append records a completed deliberation.
func (s *MemoryStore) Append(ctx context.Context, delib *consensus.Deliberation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deliberations = append(s.deliberations, delib)
	return nil
}

// Recent returns up to limit deliberations, most recent first.
func (s *MemoryStore) Recent(ctx context.Context, limit int) ([]*consensus.Deliberation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.deliberations)
	if limit <= 0 || limit > n {
		limit = n
	}

	recent := make([]*consensus.Deliberation, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		recent = append(recent, s.deliberations[i])
	}
	return recent, nil
}

// Count returns the total number of recorded deliberations.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.deliberations), nil
}
