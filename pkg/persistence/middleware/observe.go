package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
)

// Observer receives the outcome of every store operation.
// op is one of "save", "load", "delete", "list".
type Observer func(op string, elapsed time.Duration, err error)

type observed struct {
	next    ports.StateStore
	observe Observer
}

// NewObserverMiddleware reports each operation to observe.
func NewObserverMiddleware(observe Observer) Middleware {
	return func(next ports.StateStore) ports.StateStore {
		return &observed{next: next, observe: observe}
	}
}

// NewLoggingMiddleware logs operations at debug level and failures at warn.
// A missing session is not a failure.
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	return NewObserverMiddleware(func(op string, elapsed time.Duration, err error) {
		if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			logger.Warn("store operation failed", "op", op, "duration", elapsed, "err", err)
			return
		}
		logger.Debug("store operation", "op", op, "duration", elapsed)
	})
}

func (m *observed) Save(ctx context.Context, sessionID string, data domain.FilledData) error {
	start := time.Now()
	err := m.next.Save(ctx, sessionID, data)
	m.observe("save", time.Since(start), err)
	return err
}

func (m *observed) Load(ctx context.Context, sessionID string) (domain.FilledData, error) {
	start := time.Now()
	data, err := m.next.Load(ctx, sessionID)
	m.observe("load", time.Since(start), err)
	return data, err
}

func (m *observed) Delete(ctx context.Context, sessionID string) error {
	start := time.Now()
	err := m.next.Delete(ctx, sessionID)
	m.observe("delete", time.Since(start), err)
	return err
}

func (m *observed) List(ctx context.Context) ([]string, error) {
	start := time.Now()
	ids, err := m.next.List(ctx)
	m.observe("list", time.Since(start), err)
	return ids, err
}
