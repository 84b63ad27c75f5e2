package navigation

import (
	"context"
	"sync"

	"github.com/aretw0/stepwise/pkg/domain"
)

// Reporter receives the navigator's location after a Back. The engine's
// OnExternalNavigation satisfies it.
type Reporter interface {
	OnExternalNavigation(ctx context.Context, nav domain.NavID) error
}

// Navigator is a reference navigation layer. It follows the engine's
// steps forward on a back-stack and, on Back, pops and reports the screen
// it lands on so the engine can reconcile.
// Safe for concurrent use.
type Navigator struct {
	mu       sync.Mutex
	stack    *Stack
	reporter Reporter
}

// NewNavigator creates a navigator reporting to r.
func NewNavigator(r Reporter) *Navigator {
	return &Navigator{stack: NewStack(), reporter: r}
}

// Follow applies one UI state. A step for the screen on top refreshes it,
// a step for a screen further down pops back to it, anything else is pushed.
// The Start placeholder is never shown and is ignored.
func (n *Navigator) Follow(state domain.UIState) {
	step := state.Step()
	if step == nil || step.NavID() == domain.NavStart {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if top := n.stack.Peek(); top != nil && top.NavID == step.NavID() {
		n.stack.Replace(step)
		return
	}
	if n.stack.PopTo(step.NavID()) {
		n.stack.Replace(step)
		return
	}
	n.stack.Push(step)
}

// Run follows updates until the channel closes or ctx ends.
func (n *Navigator) Run(ctx context.Context, updates <-chan domain.UIState) {
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-updates:
			if !ok {
				return
			}
			n.Follow(s)
		}
	}
}

// CanGoBack reports whether there is a screen below the current one.
func (n *Navigator) CanGoBack() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stack.Len() > 1
}

// Back pops the current screen and reports the one below it. It returns
// false when there is nowhere to go back to.
func (n *Navigator) Back(ctx context.Context) (domain.NavID, bool, error) {
	n.mu.Lock()
	if n.stack.Len() <= 1 {
		n.mu.Unlock()
		return "", false, nil
	}
	n.stack.Pop()
	nav := n.stack.Peek().NavID
	n.mu.Unlock()

	return nav, true, n.reporter.OnExternalNavigation(ctx, nav)
}

// Current returns the screen on top, or "" before the first step.
func (n *Navigator) Current() domain.NavID {
	n.mu.Lock()
	defer n.mu.Unlock()
	if top := n.stack.Peek(); top != nil {
		return top.NavID
	}
	return ""
}

// History lists the back-stack bottom to top.
func (n *Navigator) History() []domain.NavID {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stack.NavIDs()
}
