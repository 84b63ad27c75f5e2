package cli

import (
	"context"
	"log/slog"

	"github.com/aretw0/stepwise"
	"github.com/aretw0/stepwise/internal/config"
	"github.com/aretw0/stepwise/pkg/adapters/login"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
	"github.com/aretw0/stepwise/pkg/resolver"
)

// newAuthenticator builds the simulated login backend from cfg.
func newAuthenticator(cfg config.LoginConfig) ports.Authenticator {
	opts := []login.Option{
		login.WithLatency(cfg.Latency),
		login.WithFailRate(cfg.FailRate),
	}
	if cfg.Seed != 0 {
		opts = append(opts, login.WithSeed(cfg.Seed))
	}
	return login.NewSimulated(opts...)
}

// newResolver adds the age and terms screens when they are configured.
func newResolver(cfg config.Config) *resolver.Resolver {
	var opts []resolver.Option
	if cfg.MinAge > 0 {
		opts = append(opts, resolver.WithMinAge(cfg.MinAge))
	}
	if cfg.TermsURL != "" {
		opts = append(opts, resolver.WithTerms(cfg.TermsURL))
	}
	return resolver.New(opts...)
}

// engineFactory returns a constructor for session engines following the
// CLI conventions: configured login backend and resolver, metrics hooks,
// and debug hooks when the logger is at debug level.
func (a *App) engineFactory() func(sessionID string, data domain.FilledData) (*stepwise.Engine, error) {
	auth := newAuthenticator(a.Config.Login)
	res := newResolver(a.Config)

	hooks := a.Metrics.Hooks()
	if a.Logger.Enabled(context.Background(), slog.LevelDebug) {
		hooks = hooks.Merge(createDebugHooks(a.Logger))
	}

	return func(sessionID string, data domain.FilledData) (*stepwise.Engine, error) {
		return stepwise.New(
			stepwise.WithAuthenticator(auth),
			stepwise.WithResolver(res),
			stepwise.WithLogger(a.Logger),
			stepwise.WithLifecycleHooks(hooks),
			stepwise.WithInitialData(data),
			stepwise.WithName(sessionID),
		)
	}
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			logger.Debug("Enter Step", "nav_id", e.NavID, "status", e.Status, "seq", e.Seq)
		},
		OnLoginStart: func(ctx context.Context, e *domain.LoginEvent) {
			logger.Debug("Login Start", "attempt", e.Attempt)
		},
		OnLoginReturn: func(ctx context.Context, e *domain.LoginEvent) {
			if e.Superseded {
				logger.Debug("Login Return (Superseded)", "attempt", e.Attempt)
			} else if e.IsError {
				logger.Debug("Login Return (Error)", "attempt", e.Attempt, "duration", e.Duration)
			} else {
				logger.Debug("Login Return (Success)", "attempt", e.Attempt, "duration", e.Duration)
			}
		},
		OnReconcile: func(ctx context.Context, e *domain.ReconcileEvent) {
			logger.Debug("Reconcile", "from", e.From, "to", e.To)
		},
	}
}
