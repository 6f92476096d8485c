package store

import (
	"context"
	"sync"

	"fitrelay/internal/credential/models"
)

// InMemoryStore keeps credential records in process memory. It is the default
// backend when no database is configured and the workhorse for tests.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]models.Record
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]models.Record)}
}

func (s *InMemoryStore) Find(_ context.Context, userID string) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.records[userID]; ok {
		return &r, nil
	}
	return nil, ErrNotFound
}

// Upsert performs an idempotent full replace keyed by UserID.
// Concurrent upserts for the same user are last-write-wins.
func (s *InMemoryStore) Upsert(_ context.Context, record *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.UserID] = *record
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[userID]; !ok {
		return ErrNotFound
	}
	delete(s.records, userID)
	return nil
}
