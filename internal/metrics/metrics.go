// Package metrics exposes engine lifecycle events as Prometheus collectors.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stepwise"

// Collectors holds the engine metrics. One set is shared by every engine
// of a process.
type Collectors struct {
	StepVisits    *prometheus.CounterVec
	StatusChanges *prometheus.CounterVec
	LoginDuration *prometheus.HistogramVec
	LoginStarts   prometheus.Counter
	Superseded    prometheus.Counter
	Reconciles    *prometheus.CounterVec
	StoreOps      *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with reg. A nil reg uses
// a fresh private registry.
func New(reg *prometheus.Registry) *Collectors {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	c := &Collectors{
		StepVisits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "step_visits_total",
			Help:      "Steps published, by navigation id.",
		}, []string{"nav_id"}),
		StatusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_changes_total",
			Help:      "Action status transitions, by target status.",
		}, []string{"status"}),
		LoginDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "login_duration_seconds",
			Help:      "Duration of applied login attempts.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2, 4, 8},
		}, []string{"result"}),
		LoginStarts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_started_total",
			Help:      "Login attempts started.",
		}),
		Superseded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_superseded_total",
			Help:      "Login results discarded because a newer attempt or input replaced them.",
		}),
		Reconciles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconciles_total",
			Help:      "External navigations that moved the engine, by destination.",
		}, []string{"to"}),
		StoreOps: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_seconds",
			Help:      "Session store latency, by operation and result.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "result"}),
		gatherer: reg,
	}
	reg.MustRegister(c.StepVisits, c.StatusChanges, c.LoginDuration, c.LoginStarts, c.Superseded, c.Reconciles, c.StoreOps)
	return c
}

// Hooks returns lifecycle hooks feeding the collectors.
func (c *Collectors) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(_ context.Context, e *domain.StepEvent) {
			c.StepVisits.WithLabelValues(string(e.NavID)).Inc()
		},
		OnStatusChange: func(_ context.Context, e *domain.StatusEvent) {
			c.StatusChanges.WithLabelValues(string(e.To)).Inc()
		},
		OnLoginStart: func(_ context.Context, _ *domain.LoginEvent) {
			c.LoginStarts.Inc()
		},
		OnLoginReturn: func(_ context.Context, e *domain.LoginEvent) {
			if e.Superseded {
				c.Superseded.Inc()
				return
			}
			result := "success"
			if e.IsError {
				result = "error"
			}
			c.LoginDuration.WithLabelValues(result).Observe(e.Duration.Seconds())
		},
		OnReconcile: func(_ context.Context, e *domain.ReconcileEvent) {
			c.Reconciles.WithLabelValues(string(e.To)).Inc()
		},
	}
}

// ObserveStore records one session store operation. A missing session
// counts as a hit on an empty key, not an error.
func (c *Collectors) ObserveStore(op string, elapsed time.Duration, err error) {
	result := "ok"
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		result = "not_found"
	case err != nil:
		result = "error"
	}
	c.StoreOps.WithLabelValues(op, result).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
