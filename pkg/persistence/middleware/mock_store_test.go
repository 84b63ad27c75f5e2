package middleware_test

import (
	"context"
	"errors"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
)

var errBroken = errors.New("disk on fire")

// MockStore is a simple map-based store for testing middleware.
type MockStore struct {
	data   map[string]domain.FilledData
	broken bool
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]domain.FilledData),
	}
}

func (s *MockStore) Save(ctx context.Context, sessionID string, data domain.FilledData) error {
	if s.broken {
		return errBroken
	}
	s.data[sessionID] = data
	return nil
}

func (s *MockStore) Load(ctx context.Context, sessionID string) (domain.FilledData, error) {
	data, ok := s.data[sessionID]
	if !ok {
		return domain.FilledData{}, domain.ErrSessionNotFound
	}
	return data, nil
}

func (s *MockStore) Delete(ctx context.Context, sessionID string) error {
	delete(s.data, sessionID)
	return nil
}

func (s *MockStore) List(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}

var _ ports.StateStore = (*MockStore)(nil)
