package session

import (
	"context"

	"github.com/aretw0/stepwise/pkg/domain"
)

// Source is the part of an engine that AutoSave needs.
type Source interface {
	Subscribe(ctx context.Context) <-chan domain.UIState
	Serialize(ctx context.Context) (domain.FilledData, error)
}

// AutoSave persists src's filled data after every emission that changed it,
// until ctx ends or src stops. The returned channel is closed when it stops.
// Save failures are logged and retried on the next emission.
func (m *Manager) AutoSave(ctx context.Context, sessionID string, src Source) <-chan struct{} {
	done := make(chan struct{})
	updates := src.Subscribe(ctx)

	go func() {
		defer close(done)

		var last *domain.FilledData
		for range updates {
			data, err := src.Serialize(ctx)
			if err != nil {
				// Engine closed or ctx over; the subscription ends too.
				m.logger.Debug("autosave stopped", "session_id", sessionID, "err", err)
				return
			}
			if last != nil && len(domain.Diff(*last, data)) == 0 {
				continue
			}
			if err := m.Save(ctx, sessionID, data); err != nil {
				m.logger.Error("autosave failed", "session_id", sessionID, "err", err)
				continue
			}
			last = &data
			m.logger.Debug("session saved", "session_id", sessionID)
		}
	}()
	return done
}
