package ports

import (
	"context"

	"github.com/aretw0/stepwise/pkg/domain"
)

// StateStore defines the interface for persisting what a user has filled in.
// Only FilledData is durable; the current step is always recomputed from it.
type StateStore interface {
	// Save persists the snapshot for a given session ID.
	Save(ctx context.Context, sessionID string, data domain.FilledData) error

	// Load retrieves the snapshot for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (domain.FilledData, error)

	// Delete removes the snapshot for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of stored sessions.
	List(ctx context.Context) ([]string, error)
}
