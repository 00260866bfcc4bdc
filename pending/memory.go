package pending

import (
	"context"
	"sync"
)

// MemoryStore is an in-process slot store for hosts that run without Redis
// and for tests that need to assert exact put/take sequencing. It applies
// no TTL.
type MemoryStore struct {
	mu    sync.Mutex
	slots map[string]Record
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		slots: make(map[string]Record),
	}
}

// Put overwrites the scope's slot with rec.
func (s *MemoryStore) Put(_ context.Context, scope string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.slots[normalizeScope(scope)] = rec
	return nil
}

// TakeIfPresent reads and deletes the scope's slot, or returns (nil, nil)
// when it is empty.
func (s *MemoryStore) TakeIfPresent(_ context.Context, scope string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.slots[normalizeScope(scope)]
	if !ok {
		return nil, nil
	}
	delete(s.slots, normalizeScope(scope))
	return &rec, nil
}
