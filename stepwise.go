package stepwise

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/internal/runtime"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
	"github.com/aretw0/stepwise/pkg/resolver"
)

// ErrNoAuthenticator is returned by New when no login backend was configured.
var ErrNoAuthenticator = errors.New("stepwise: an authenticator is required")

// Engine is the high-level entry point for the Stepwise library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Engine struct {
	runtime *runtime.Engine

	auth     ports.Authenticator
	resolver runtime.StepResolver
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	initial  *domain.FilledData
	queue    int
	Name     string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithAuthenticator sets the login backend. It is required.
func WithAuthenticator(auth ports.Authenticator) Option {
	return func(e *Engine) {
		e.auth = auth
	}
}

// WithResolver replaces the default rule chain, e.g. with one built by
// resolver.New(resolver.WithTerms(url)) or resolver.WithMinAge(n).
func WithResolver(r runtime.StepResolver) Option {
	return func(e *Engine) {
		e.resolver = r
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithInitialData starts from a previously serialized snapshot.
func WithInitialData(data domain.FilledData) Option {
	return func(e *Engine) {
		d := data.Clone()
		e.initial = &d
	}
}

// WithQueueSize bounds the number of pending input events.
func WithQueueSize(n int) Option {
	return func(e *Engine) {
		e.queue = n
	}
}

// WithName labels the engine (typically the session ID) in its log lines.
func WithName(name string) Option {
	return func(e *Engine) {
		e.Name = name
	}
}

// New initializes a Stepwise Engine and publishes its first step.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.auth == nil {
		return nil, ErrNoAuthenticator
	}
	if eng.resolver == nil {
		eng.resolver = resolver.Default()
	}
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("session", eng.Name)
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
		runtime.WithQueueSize(eng.queue),
	}
	if eng.initial != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithInitialData(*eng.initial))
	}

	eng.runtime = runtime.NewEngine(eng.resolver, eng.auth, runtimeOpts...)
	return eng, nil
}

// SelectFlow records the login method. An unknown flow type panics with a
// *domain.ContractViolation and aborts the engine.
func (e *Engine) SelectFlow(ctx context.Context, flow domain.FlowType) error {
	return e.runtime.SelectFlow(ctx, flow)
}

// SelectOption maps one of the labels offered by domain.ChooseFlow to its
// flow type and selects it. An unknown label is a contract violation.
func (e *Engine) SelectOption(ctx context.Context, option string) error {
	return e.runtime.SelectOption(ctx, option)
}

// SubmitEmail validates and stores the email address.
func (e *Engine) SubmitEmail(ctx context.Context, email string) error {
	return e.runtime.SubmitEmail(ctx, email)
}

// SubmitPassword starts a login attempt. The latest submission wins.
func (e *Engine) SubmitPassword(ctx context.Context, password string) error {
	return e.runtime.SubmitPassword(ctx, password)
}

// VerifyAge answers the age screen added by resolver.WithMinAge.
func (e *Engine) VerifyAge(ctx context.Context, age int) error {
	return e.runtime.VerifyAge(ctx, age)
}

// ConfirmTerms answers the terms screen.
func (e *Engine) ConfirmTerms(ctx context.Context, accepted bool) error {
	return e.runtime.ConfirmTerms(ctx, accepted)
}

// OnExternalNavigation tells the engine where the navigation layer actually is.
func (e *Engine) OnExternalNavigation(ctx context.Context, nav domain.NavID) error {
	return e.runtime.OnExternalNavigation(ctx, nav)
}

// Subscribe streams UI states, starting with the latest one.
func (e *Engine) Subscribe(ctx context.Context) <-chan domain.UIState {
	return e.runtime.Subscribe(ctx)
}

// Current returns the latest UI state.
func (e *Engine) Current() domain.UIState {
	return e.runtime.Current()
}

// Serialize returns the durable part of the engine state.
func (e *Engine) Serialize(ctx context.Context) (domain.FilledData, error) {
	return e.runtime.Serialize(ctx)
}

// Restore replaces the filled data and recomputes the step.
func (e *Engine) Restore(ctx context.Context, data domain.FilledData) error {
	return e.runtime.Restore(ctx, data)
}

// Close stops the engine, cancelling any login in flight.
func (e *Engine) Close() {
	e.runtime.Close()
}

// Done is closed when the engine has stopped.
func (e *Engine) Done() <-chan struct{} {
	return e.runtime.Done()
}
