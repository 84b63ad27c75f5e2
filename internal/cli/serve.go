package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	httpapi "github.com/aretw0/stepwise/internal/adapters/http"
)

// ShutdownTimeout bounds graceful shutdown of the HTTP servers.
const ShutdownTimeout = 5 * time.Second

// Serve hosts sessions over HTTP on ln until ctx ends. The metrics endpoint
// is served on its own address when metrics.addr is configured, and mounted
// at /metrics otherwise.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	reg := httpapi.NewRegistry(a.Sessions, a.engineFactory(), a.Logger)

	apiOpts := []httpapi.ServerOption{httpapi.WithLogger(a.Logger)}
	var metricsSrv *http.Server
	if a.Config.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", a.Metrics.Handler())
		metricsSrv = &http.Server{Addr: a.Config.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	} else {
		apiOpts = append(apiOpts, httpapi.WithMetrics(a.Metrics.Handler()))
	}

	srv := &http.Server{
		Handler:           httpapi.NewHandler(reg, apiOpts...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 2)
	go func() {
		a.Logger.Info("Starting Stepwise Server", "addr", ln.Addr().String())
		serverErrors <- srv.Serve(ln)
	}()
	if metricsSrv != nil {
		go func() {
			a.Logger.Info("Starting metrics endpoint", "addr", metricsSrv.Addr)
			serverErrors <- metricsSrv.ListenAndServe()
		}()
	}

	var runErr error
	select {
	case err := <-serverErrors:
		runErr = fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		a.Logger.Info("Start shutdown...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	for _, s := range []*http.Server{srv, metricsSrv} {
		if s == nil {
			continue
		}
		if err := s.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Warn("Graceful shutdown did not complete", "timeout", ShutdownTimeout, "err", err)
			_ = s.Close()
		}
	}
	reg.Close(shutdownCtx)
	a.Logger.Info("Stepwise Server stopped")
	return runErr
}
