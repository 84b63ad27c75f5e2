// Package login provides a stand-in remote login backend for demos, tests
// and the CLI. It waits like a network call would and answers with a fresh
// user ID.
package login

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultLatency matches the delay of the reference backend.
const DefaultLatency = 2 * time.Second

// ErrRejected is returned when the simulated backend refuses a login.
var ErrRejected = errors.New("login rejected by server")

// Simulated implements ports.Authenticator without any real backend.
type Simulated struct {
	latency  time.Duration
	failRate float64
	newID    func() string

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures Simulated.
type Option func(*Simulated)

// WithLatency sets how long each login takes.
func WithLatency(d time.Duration) Option {
	return func(s *Simulated) {
		if d >= 0 {
			s.latency = d
		}
	}
}

// WithFailRate sets the probability (0..1) that a login is rejected.
func WithFailRate(p float64) Option {
	return func(s *Simulated) {
		s.failRate = min(max(p, 0), 1)
	}
}

// WithSeed makes failure injection reproducible.
func WithSeed(seed uint64) Option {
	return func(s *Simulated) {
		s.rng = rand.New(rand.NewPCG(seed, seed))
	}
}

// WithIDGenerator replaces the uuid-based user ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Simulated) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewSimulated returns a backend with DefaultLatency that never fails.
func NewSimulated(opts ...Option) *Simulated {
	s := &Simulated{
		latency: DefaultLatency,
		newID:   uuid.NewString,
		rng:     rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login waits for the configured latency, then returns a new user ID or
// ErrRejected. It gives up early when ctx is cancelled.
func (s *Simulated) Login(ctx context.Context, email, password string) (string, error) {
	if s.latency > 0 {
		timer := time.NewTimer(s.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return "", err
	}

	if strings.TrimSpace(password) == "" || s.roll() {
		return "", ErrRejected
	}
	return s.newID(), nil
}

func (s *Simulated) roll() bool {
	if s.failRate == 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64() < s.failRate
}
