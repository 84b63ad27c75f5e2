package http

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/aretw0/stepwise"
	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/session"
	"github.com/google/uuid"
)

// EngineFactory builds the engine hosting sessionID, starting from data.
type EngineFactory func(sessionID string, data domain.FilledData) (*stepwise.Engine, error)

type hosted struct {
	engine *stepwise.Engine
	stop   context.CancelFunc
	saved  <-chan struct{}
}

// Registry keeps one live engine per session and persists each through the
// session manager. Sessions found only in the store are resumed on access.
// Store I/O happens outside mu; concurrent requests for a session that is
// being started wait for that start instead.
type Registry struct {
	sessions *session.Manager
	factory  EngineFactory
	logger   *slog.Logger

	mu       sync.Mutex
	live     map[string]*hosted
	starting map[string]chan struct{}
	closed   bool
}

// NewRegistry creates an empty registry.
func NewRegistry(sessions *session.Manager, factory EngineFactory, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Registry{
		sessions: sessions,
		factory:  factory,
		logger:   logger,
		live:     make(map[string]*hosted),
		starting: make(map[string]chan struct{}),
	}
}

// Create starts (or resumes) a session. An empty id gets a fresh UUID.
func (r *Registry) Create(ctx context.Context, id string) (string, *stepwise.Engine, error) {
	if id == "" {
		id = uuid.NewString()
	}
	eng, err := r.host(ctx, id, true)
	return id, eng, err
}

// Get returns the live engine for id, resuming it from the store when it is
// not hosted yet. Unknown ids yield domain.ErrSessionNotFound.
func (r *Registry) Get(ctx context.Context, id string) (*stepwise.Engine, error) {
	return r.host(ctx, id, false)
}

func (r *Registry) host(ctx context.Context, id string, create bool) (*stepwise.Engine, error) {
	for {
		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			return nil, domain.ErrEngineClosed
		}
		var stale *hosted
		if h, ok := r.live[id]; ok {
			select {
			case <-h.engine.Done():
				// Aborted; the stored data is still good.
				delete(r.live, id)
				stale = h
			default:
				r.mu.Unlock()
				return h.engine, nil
			}
		}
		if wait, ok := r.starting[id]; ok {
			r.mu.Unlock()
			select {
			case <-wait:
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		started := make(chan struct{})
		r.starting[id] = started
		r.mu.Unlock()

		h, err := r.start(ctx, id, create, stale)

		r.mu.Lock()
		delete(r.starting, id)
		close(started)
		closed := r.closed
		if err == nil && !closed {
			r.live[id] = h
		}
		r.mu.Unlock()

		if err != nil {
			return nil, err
		}
		if closed {
			h.shutdown()
			return nil, domain.ErrEngineClosed
		}
		r.logger.Info("session hosted", "session_id", id)
		return h.engine, nil
	}
}

// start runs without mu. stale, when set, is the aborted engine previously
// hosted for id; its final save completes before the data is reloaded.
func (r *Registry) start(ctx context.Context, id string, create bool, stale *hosted) (*hosted, error) {
	if stale != nil {
		stale.shutdown()
	}

	var data domain.FilledData
	var err error
	if create {
		data, _, err = r.sessions.LoadOrStart(ctx, id)
	} else {
		data, err = r.sessions.Load(ctx, id)
	}
	if err != nil {
		return nil, err
	}

	eng, err := r.factory(id, data)
	if err != nil {
		return nil, fmt.Errorf("start engine: %w", err)
	}
	saveCtx, stop := context.WithCancel(context.Background())
	return &hosted{engine: eng, stop: stop, saved: r.sessions.AutoSave(saveCtx, id, eng)}, nil
}

// shutdown must not run under a session lock: the autosave loop may be
// waiting for it.
func (h *hosted) shutdown() {
	h.engine.Close()
	h.stop()
	<-h.saved
}

// Delete stops the session and removes its stored data.
func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	for {
		wait, pending := r.starting[id]
		if !pending {
			break
		}
		r.mu.Unlock()
		select {
		case <-wait:
		case <-ctx.Done():
			return ctx.Err()
		}
		r.mu.Lock()
	}
	h, ok := r.live[id]
	delete(r.live, id)
	r.mu.Unlock()

	if ok {
		h.shutdown()
	} else if _, err := r.sessions.Load(ctx, id); err != nil {
		return err
	}
	return r.sessions.Delete(ctx, id)
}

// List returns the ids of stored sessions.
func (r *Registry) List(ctx context.Context) ([]string, error) {
	ids, err := r.sessions.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}

// Close stops every live engine after a final save. Later lookups fail
// with domain.ErrEngineClosed.
func (r *Registry) Close(ctx context.Context) {
	r.mu.Lock()
	r.closed = true
	live := r.live
	r.live = make(map[string]*hosted)
	r.mu.Unlock()

	for id, h := range live {
		if data, err := h.engine.Serialize(ctx); err == nil {
			if err := r.sessions.Save(ctx, id, data); err != nil {
				r.logger.Error("final save failed", "session_id", id, "err", err)
			}
		}
		h.shutdown()
	}
}
