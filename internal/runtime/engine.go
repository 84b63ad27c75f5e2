package runtime

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
)

// DefaultQueueSize is the number of input events that may wait for the event loop.
const DefaultQueueSize = 16

// StepResolver derives steps from data. *resolver.Resolver satisfies it.
type StepResolver interface {
	Resolve(data domain.FilledData) domain.Step
	StepFor(nav domain.NavID, data domain.FilledData) (domain.Step, bool)
}

// Engine is the flow-state actor. A single goroutine owns the filled data,
// the action status and the current step; every public operation is queued
// to it and applied one at a time. Login calls run on their own goroutines
// and deliver their completion back to the same loop.
type Engine struct {
	resolver  StepResolver
	auth      ports.Authenticator
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
	queueSize int
	initial   domain.FilledData

	cmds    chan command
	results chan loginResult
	done    chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	hub *hub

	// Owned by the event loop.
	data          domain.FilledData
	status        domain.Outcome[domain.Unit]
	step          domain.Step
	seq           uint64
	attempt       uint64
	cancelAttempt context.CancelFunc

	closeOnce sync.Once
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithInitialData starts the engine from a restored snapshot instead of an empty one.
func WithInitialData(data domain.FilledData) EngineOption {
	return func(e *Engine) {
		e.initial = data.Clone()
	}
}

// WithQueueSize sets how many input events may be pending at once.
func WithQueueSize(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.queueSize = n
		}
	}
}

type command struct {
	op    string
	fn    func() error
	reply chan error
}

type loginResult struct {
	attempt  uint64
	password string
	userID   string
	err      error
	duration time.Duration
}

// NewEngine creates the engine and starts its event loop. The first step is
// resolved from the initial data and published before NewEngine returns.
func NewEngine(res StepResolver, auth ports.Authenticator, opts ...EngineOption) *Engine {
	e := &Engine{
		resolver:  res,
		auth:      auth,
		logger:    logging.NewNop(),
		queueSize: DefaultQueueSize,
		initial:   domain.Empty(),
		hub:       newHub(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.cmds = make(chan command, e.queueSize)
	e.results = make(chan loginResult)
	e.done = make(chan struct{})
	e.ctx, e.cancel = context.WithCancel(context.Background())

	e.data = e.initial
	e.status = domain.Success(domain.Unit{})
	e.step = domain.Start{}
	e.resolveAndPublish()

	go e.loop()
	return e
}

// Close cancels any in-flight login, stops the event loop and closes all
// subscriptions. It is safe to call more than once.
func (e *Engine) Close() {
	e.closeOnce.Do(e.cancel)
	<-e.done
}

// Done is closed once the engine has stopped, either by Close or because a
// contract violation aborted the session.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

func (e *Engine) loop() {
	defer close(e.done)
	defer e.shutdown()

	for {
		select {
		case <-e.ctx.Done():
			return
		case cmd := <-e.cmds:
			err := cmd.fn()
			cmd.reply <- err
			var cv *domain.ContractViolation
			if errors.As(err, &cv) {
				e.logger.Error("contract violation, aborting session", "op", cmd.op, "reason", cv.Reason)
				e.closeOnce.Do(e.cancel)
				return
			}
		case res := <-e.results:
			e.applyLogin(res)
		}
	}
}

func (e *Engine) shutdown() {
	if e.cancelAttempt != nil {
		e.cancelAttempt()
		e.cancelAttempt = nil
	}
	e.hub.close()
	e.logger.Debug("engine stopped", "seq", e.seq)
}

// submit queues fn on the event loop and waits for it to be applied.
// A contract violation reported by fn is re-raised as a panic in the caller.
func (e *Engine) submit(ctx context.Context, op string, fn func() error) error {
	cmd := command{op: op, fn: fn, reply: make(chan error, 1)}

	select {
	case e.cmds <- cmd:
	case <-e.done:
		return domain.ErrEngineClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-cmd.reply:
		return raise(err)
	case <-e.done:
		// The loop may have answered right before stopping.
		select {
		case err := <-cmd.reply:
			return raise(err)
		default:
			return domain.ErrEngineClosed
		}
	case <-ctx.Done():
		// Already queued: the loop still applies it.
		return ctx.Err()
	}
}

func raise(err error) error {
	var cv *domain.ContractViolation
	if errors.As(err, &cv) {
		panic(cv)
	}
	return err
}

// --- state transitions (event loop only) ---

func (e *Engine) setData(next domain.FilledData) {
	if changed := domain.Diff(e.data, next); len(changed) > 0 {
		e.logger.Debug("filled data updated", "fields", changed)
	}
	e.data = next
}

func (e *Engine) setStatus(next domain.Outcome[domain.Unit]) {
	prev := e.status
	e.status = next
	if prev.Status == next.Status && next.Status != domain.StatusError {
		return
	}
	if e.hooks.OnStatusChange != nil {
		e.hooks.OnStatusChange(e.ctx, &domain.StatusEvent{
			EventBase: e.event(domain.EventStatusChange),
			From:      prev.Status,
			To:        next.Status,
			Err:       next.Err,
		})
	}
}

func (e *Engine) resolveAndPublish() {
	e.step = e.resolver.Resolve(e.data)
	e.publish()
}

// publish emits the current (status, step) pair. Every call yields a new
// sequence number, even when the step is logically unchanged.
func (e *Engine) publish() {
	e.seq++
	step := e.step
	state := domain.UIState{
		Outcome: domain.Map(e.status, func(domain.Unit) domain.Step { return step }),
		Seq:     e.seq,
	}
	e.hub.publish(state)

	e.logger.Debug("step published", "seq", e.seq, "nav_id", step.NavID(), "status", e.status.Status)
	if e.hooks.OnStepEnter != nil {
		e.hooks.OnStepEnter(e.ctx, &domain.StepEvent{
			EventBase: e.event(domain.EventStepEnter),
			NavID:     step.NavID(),
			Status:    e.status.Status,
		})
	}
}

func (e *Engine) event(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: time.Now(), Type: t, Seq: e.seq}
}
