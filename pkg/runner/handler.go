package runner

import (
	"context"

	"github.com/aretw0/stepwise/pkg/domain"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Render presents one UI state.
	Render(ctx context.Context, view View) error

	// Input reads a response from the user.
	Input(ctx context.Context, req InputRequest) (string, error)

	// SystemOutput presents a meta-message (hints, warnings) that is not
	// part of the step content.
	SystemOutput(ctx context.Context, msg string) error
}

// InputRequest describes the answer the runner is waiting for.
type InputRequest struct {
	NavID domain.NavID `json:"nav_id"`
	// Secret asks the handler not to echo the answer.
	Secret bool `json:"secret,omitempty"`
	// Default is returned when the user submits an empty line.
	Default string `json:"default,omitempty"`
}

// ContentRenderer transforms step markdown before it is printed
// (e.g. markdown to ANSI) without coupling this package to a renderer.
type ContentRenderer func(string) (string, error)
