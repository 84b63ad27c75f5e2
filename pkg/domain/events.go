package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepEnter    EventType = "step_enter"
	EventStatusChange EventType = "status_change"
	EventLoginStart   EventType = "login_start"
	EventLoginReturn  EventType = "login_return"
	EventReconcile    EventType = "reconcile"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Seq       uint64    `json:"seq"`
}

// StepEvent is emitted whenever a step is published.
type StepEvent struct {
	EventBase
	NavID  NavID  `json:"nav_id"`
	Status Status `json:"status"`
}

// StatusEvent is emitted when the action status changes.
type StatusEvent struct {
	EventBase
	From Status `json:"from"`
	To   Status `json:"to"`
	Err  error  `json:"-"`
}

// LoginEvent describes one login attempt.
type LoginEvent struct {
	EventBase
	Attempt    uint64        `json:"attempt"`
	Duration   time.Duration `json:"duration,omitempty"`
	IsError    bool          `json:"is_error,omitempty"`
	Superseded bool          `json:"superseded,omitempty"`
}

// ReconcileEvent is emitted when the navigation layer drifted from the engine.
type ReconcileEvent struct {
	EventBase
	From NavID `json:"from"`
	To   NavID `json:"to"`
}

// LifecycleHooks defines callbacks for engine observability.
// Hooks run inside the engine's event loop and must not block.
type LifecycleHooks struct {
	OnStepEnter    func(context.Context, *StepEvent)
	OnStatusChange func(context.Context, *StatusEvent)
	OnLoginStart   func(context.Context, *LoginEvent)
	OnLoginReturn  func(context.Context, *LoginEvent)
	OnReconcile    func(context.Context, *ReconcileEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStepEnter:    chain(h.OnStepEnter, other.OnStepEnter),
		OnStatusChange: chain(h.OnStatusChange, other.OnStatusChange),
		OnLoginStart:   chain(h.OnLoginStart, other.OnLoginStart),
		OnLoginReturn:  chain(h.OnLoginReturn, other.OnLoginReturn),
		OnReconcile:    chain(h.OnReconcile, other.OnReconcile),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
