package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ListSessions prints the stored session IDs.
func (a *App) ListSessions(ctx context.Context, w io.Writer) error {
	ids, err := a.Sessions.List(ctx)
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}
	if len(ids) == 0 {
		fmt.Fprintln(w, "No active sessions found.")
		return nil
	}
	fmt.Fprintln(w, "Active Sessions:")
	for _, id := range ids {
		fmt.Fprintln(w, "- "+id)
	}
	return nil
}

// InspectSession prints a session's data as JSON with the password masked.
func (a *App) InspectSession(ctx context.Context, w io.Writer, id string) error {
	data, err := a.Sessions.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("loading session '%s': %w", id, err)
	}
	out, err := json.MarshalIndent(data.Redacted(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(out))
	return nil
}

// RemoveSessions deletes every listed session, reporting each one.
func (a *App) RemoveSessions(ctx context.Context, w io.Writer, ids []string) error {
	var errs []error
	for _, id := range ids {
		if err := a.Sessions.Delete(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("removing '%s': %w", id, err))
			continue
		}
		fmt.Fprintf(w, "Removed session '%s'\n", id)
	}
	return errors.Join(errs...)
}
