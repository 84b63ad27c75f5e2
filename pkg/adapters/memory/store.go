package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/stepwise/pkg/domain"
)

// Store implements ports.StateStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]domain.FilledData
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.FilledData),
	}
}

// Save keeps a private copy of data.
func (s *Store) Save(ctx context.Context, sessionID string, data domain.FilledData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = data.Clone()
	return nil
}

// Load returns a copy so callers cannot reach the stored pointers.
func (s *Store) Load(ctx context.Context, sessionID string) (domain.FilledData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[sessionID]
	if !ok {
		return domain.FilledData{}, domain.ErrSessionNotFound
	}
	return data.Clone(), nil
}

// Delete removes the snapshot.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns stored session IDs in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]string, 0, len(s.data))
	for id := range s.data {
		sessions = append(sessions, id)
	}
	sort.Strings(sessions)
	return sessions, nil
}
