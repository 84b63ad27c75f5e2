package runtime

import (
	"context"
	"sync"

	"github.com/aretw0/stepwise/pkg/domain"
)

// hub fans UI states out to subscribers. It keeps the latest value for
// replay, and each subscriber has a single-slot mailbox where a newer value
// replaces an unread older one.
type hub struct {
	mu     sync.Mutex
	latest domain.UIState
	subs   map[chan domain.UIState]struct{}
	closed bool
	done   chan struct{}
}

func newHub() *hub {
	return &hub{
		subs: make(map[chan domain.UIState]struct{}),
		done: make(chan struct{}),
	}
}

func (h *hub) publish(s domain.UIState) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.latest = s
	for ch := range h.subs {
		offer(ch, s)
	}
}

// offer delivers s, dropping the pending value if the reader is behind.
// Only publish sends on subscriber channels, under h.mu, so the second send
// cannot block.
func offer(ch chan domain.UIState, s domain.UIState) {
	select {
	case ch <- s:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- s:
	default:
	}
}

func (h *hub) current() domain.UIState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.latest
}

func (h *hub) subscribe(ctx context.Context) <-chan domain.UIState {
	ch := make(chan domain.UIState, 1)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch
	}
	if h.latest.Seq > 0 {
		ch <- h.latest
	}
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-h.done:
		}
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
	}()
	return ch
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	close(h.done)
}
