package runtime

import (
	"context"
	"time"

	"github.com/aretw0/stepwise/pkg/domain"
)

// startLogin supersedes the attempt in flight (if any), emits Loading and
// runs the authenticator off the event loop.
func (e *Engine) startLogin(email, password string) {
	e.abandonLogin("superseded")

	e.attempt++
	attempt := e.attempt
	actx, cancel := context.WithCancel(e.ctx)
	e.cancelAttempt = cancel

	e.setStatus(domain.Loading(domain.Unit{}))
	e.publish()

	e.logger.Debug("login started", "attempt", attempt)
	if e.hooks.OnLoginStart != nil {
		e.hooks.OnLoginStart(e.ctx, &domain.LoginEvent{
			EventBase: e.event(domain.EventLoginStart),
			Attempt:   attempt,
		})
	}

	go func() {
		start := time.Now()
		userID, err := e.auth.Login(actx, email, password)
		res := loginResult{
			attempt:  attempt,
			password: password,
			userID:   userID,
			err:      err,
			duration: time.Since(start),
		}
		select {
		case e.results <- res:
		case <-e.done:
		}
	}()
}

// abandonLogin cancels the attempt in flight. Its completion, if it still
// arrives, no longer matches e.attempt and is discarded.
func (e *Engine) abandonLogin(reason string) {
	if e.cancelAttempt == nil {
		return
	}
	e.logger.Debug("login abandoned", "attempt", e.attempt, "reason", reason)
	e.cancelAttempt()
	e.cancelAttempt = nil
	e.attempt++
}

func (e *Engine) applyLogin(res loginResult) {
	stale := res.attempt != e.attempt || e.cancelAttempt == nil
	if e.hooks.OnLoginReturn != nil {
		e.hooks.OnLoginReturn(e.ctx, &domain.LoginEvent{
			EventBase:  e.event(domain.EventLoginReturn),
			Attempt:    res.attempt,
			Duration:   res.duration,
			IsError:    res.err != nil,
			Superseded: stale,
		})
	}
	if stale {
		e.logger.Debug("discarding superseded login result", "attempt", res.attempt, "current", e.attempt)
		return
	}

	e.cancelAttempt()
	e.cancelAttempt = nil

	if res.err != nil {
		e.logger.Info("login failed", "attempt", res.attempt, "err", res.err)
		e.setStatus(domain.Failure(domain.Unit{}, res.err))
		e.publish()
		return
	}

	e.logger.Info("login succeeded", "attempt", res.attempt, "duration", res.duration)
	e.setData(e.data.WithCredentials(res.password, res.userID))
	e.setStatus(domain.Success(domain.Unit{}))
	e.resolveAndPublish()
}
