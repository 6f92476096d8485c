package store

import (
	"context"
	"sync"

	"fitrelay/internal/cache"
)

// InMemoryStore keeps cache entries in process memory.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[string]cache.Entry
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{entries: make(map[string]cache.Entry)}
}

// Get returns the stored entry for the key, stale or not.
func (s *InMemoryStore) Get(_ context.Context, key cache.Key) (*cache.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.entries[key.String()]; ok {
		return &e, nil
	}
	return nil, ErrNotFound
}

// Upsert overwrites any existing entry under the same key. Concurrent writes
// for the same key are last-write-wins.
func (s *InMemoryStore) Upsert(_ context.Context, entry *cache.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.Key.String()] = *entry
	return nil
}

// Delete removes the entry for the key. Deleting an absent key is not an
// error: invalidation is idempotent.
func (s *InMemoryStore) Delete(_ context.Context, key cache.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key.String())
	return nil
}

// Len reports the number of stored entries, for tests and gauges.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
