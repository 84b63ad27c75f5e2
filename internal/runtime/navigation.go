package runtime

import (
	"context"

	"github.com/aretw0/stepwise/pkg/domain"
)

// OnExternalNavigation reconciles the engine with the location the navigation
// layer actually shows. When it matches the last published step nothing
// happens. Otherwise the step for that location is rebuilt from the current
// data and republished; the data itself is never touched.
func (e *Engine) OnExternalNavigation(ctx context.Context, nav domain.NavID) error {
	return e.submit(ctx, "OnExternalNavigation", func() error {
		current := e.step.NavID()
		if nav == current {
			return nil
		}

		step, ok := e.resolver.StepFor(nav, e.data)
		if !ok {
			e.logger.Warn("ignoring navigation to unknown location", "nav_id", nav, "current", current)
			return nil
		}

		e.logger.Debug("reconciling navigation", "from", current, "to", nav)
		if e.hooks.OnReconcile != nil {
			e.hooks.OnReconcile(e.ctx, &domain.ReconcileEvent{
				EventBase: e.event(domain.EventReconcile),
				From:      current,
				To:        nav,
			})
		}

		e.step = step
		e.publish()
		return nil
	})
}
