package cli

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/stepwise/internal/config"
	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/internal/metrics"
	"github.com/aretw0/stepwise/pkg/persistence/middleware"
	"github.com/aretw0/stepwise/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// App bundles what every command needs: configuration, logger, storage and
// metrics.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Store    *Persistence
	Sessions *session.Manager
	Metrics  *metrics.Collectors
}

// NewApp opens the configured backend. Callers must Close it.
func NewApp(cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	p, err := OpenStore(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}

	opts := []session.Option{session.WithLogger(logger), session.WithLockTTL(cfg.Store.LockTTL)}
	if p.Locker != nil {
		opts = append(opts, session.WithLocker(p.Locker))
	}

	m := metrics.New(newRegistry())
	store := middleware.Chain(p.Store,
		middleware.NewLoggingMiddleware(logger.With("store", cfg.Store.Driver)),
		middleware.NewObserverMiddleware(m.ObserveStore),
	)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Store:    p,
		Sessions: session.NewManager(store, opts...),
		Metrics:  m,
	}, nil
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Close releases the storage backend.
func (a *App) Close() error {
	return a.Store.Close()
}
