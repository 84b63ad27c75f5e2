package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/stepwise/pkg/adapters/memory"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
	"github.com/aretw0/stepwise/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	data   map[string]domain.FilledData
	mu     sync.Mutex
	active int
	peak   int
}

func (s *SlowStore) enter() {
	s.mu.Lock()
	s.active++
	if s.active > s.peak {
		s.peak = s.active
	}
	s.mu.Unlock()
}

func (s *SlowStore) leave() {
	s.mu.Lock()
	s.active--
	s.mu.Unlock()
}

func (s *SlowStore) Save(ctx context.Context, sessionID string, data domain.FilledData) error {
	s.enter()
	defer s.leave()
	time.Sleep(5 * time.Millisecond)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		s.data = make(map[string]domain.FilledData)
	}
	s.data[sessionID] = data
	return nil
}

func (s *SlowStore) Load(ctx context.Context, sessionID string) (domain.FilledData, error) {
	s.enter()
	defer s.leave()
	time.Sleep(5 * time.Millisecond)

	s.mu.Lock()
	defer s.mu.Unlock()
	if data, ok := s.data[sessionID]; ok {
		return data, nil
	}
	return domain.FilledData{}, domain.ErrSessionNotFound
}

func (s *SlowStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

func (s *SlowStore) List(ctx context.Context) ([]string, error) {
	return nil, nil
}

func TestManager_SerializesAccessPerSession(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, manager.Save(ctx, "race-test", domain.Empty().WithEmail("a@b")))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, store.peak, "saves for one session must not overlap")
}

func TestManager_LoadOrStart(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store)
	ctx := context.Background()
	id := "atomic-init"

	var wg sync.WaitGroup
	var mu sync.Mutex
	resumedCount := 0
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data, resumed, err := manager.LoadOrStart(ctx, id)
			assert.NoError(t, err)
			assert.Equal(t, domain.Empty(), data)
			if resumed {
				mu.Lock()
				resumedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, resumedCount, "exactly one caller creates the session")

	_, err := manager.Load(ctx, id)
	assert.NoError(t, err)
}

func TestManager_LoadOrStartResumes(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()
	saved := domain.Empty().WithFlowType(domain.FlowSocial)
	require.NoError(t, manager.Save(ctx, "s", saved))

	data, resumed, err := manager.LoadOrStart(ctx, "s")
	require.NoError(t, err)
	assert.True(t, resumed)
	assert.Equal(t, saved, data)
}

type brokenStore struct{ ports.StateStore }

func (brokenStore) Load(context.Context, string) (domain.FilledData, error) {
	return domain.FilledData{}, errors.New("disk on fire")
}

func TestManager_LoadOrStartPropagatesStoreErrors(t *testing.T) {
	manager := session.NewManager(brokenStore{})
	_, _, err := manager.LoadOrStart(context.Background(), "s")
	assert.ErrorContains(t, err, "disk on fire")
}

type recordingLocker struct {
	mu       sync.Mutex
	locked   []string
	ttls     []time.Duration
	unlocked int
	err      error
}

func (l *recordingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.locked = append(l.locked, key)
	l.ttls = append(l.ttls, ttl)
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.unlocked++
		return nil
	}, nil
}

func TestManager_DistributedLock(t *testing.T) {
	locker := &recordingLocker{}
	manager := session.NewManager(memory.NewStore(), session.WithLocker(locker), session.WithLockTTL(5*time.Second))
	ctx := context.Background()

	require.NoError(t, manager.Save(ctx, "s1", domain.Empty()))
	require.NoError(t, manager.Delete(ctx, "s1"))

	assert.Equal(t, []string{"s1", "s1"}, locker.locked)
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second}, locker.ttls)
	assert.Equal(t, 2, locker.unlocked)
}

func TestManager_DistributedLockFailure(t *testing.T) {
	locker := &recordingLocker{err: errors.New("redis down")}
	manager := session.NewManager(memory.NewStore(), session.WithLocker(locker))

	err := manager.Save(context.Background(), "s1", domain.Empty())
	assert.ErrorContains(t, err, "redis down")
}
