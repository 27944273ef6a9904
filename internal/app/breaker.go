package app

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"hotelfuse/internal/adapters/observability"
)

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

func (s breakerState) String() string {
	switch s {
	case breakerOpen:
		return "open"
	case breakerHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// Breaker is a per-supplier circuit breaker. Failures are counted over a
// rolling window; once the threshold is reached the breaker opens and calls
// fail fast until the cooldown elapses, after which a single probe is let
// through. A successful probe closes the breaker, a failed one re-opens it.
type Breaker struct {
	supplier  string
	threshold int
	window    time.Duration
	cooldown  time.Duration

	mu       sync.Mutex
	state    breakerState
	failures []time.Time
	openedAt time.Time
	probing  bool
}

func NewBreaker(supplier string, threshold int, window, cooldown time.Duration) *Breaker {
	return &Breaker{
		supplier:  supplier,
		threshold: threshold,
		window:    window,
		cooldown:  cooldown,
	}
}

// Allow reports whether a call may proceed. In the half-open state only the
// first caller gets through; everyone else is rejected until the probe
// settles.
func (b *Breaker) Allow(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case breakerClosed:
		return true
	case breakerOpen:
		if now.Sub(b.openedAt) < b.cooldown {
			return false
		}
		b.transition(breakerHalfOpen)
		b.probing = true
		return true
	case breakerHalfOpen:
		if b.probing {
			return false
		}
		b.probing = true
		return true
	}
	return false
}

// Success records a successful call.
func (b *Breaker) Success(now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == breakerHalfOpen {
		b.probing = false
		b.transition(breakerClosed)
	}
	b.failures = b.failures[:0]
}

// Failure records a failed call, opening the breaker if the rolling-window
// threshold is reached.
func (b *Breaker) Failure(now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == breakerHalfOpen {
		b.probing = false
		b.openedAt = now
		b.transition(breakerOpen)
		return
	}

	b.failures = append(b.failures, now)
	cutoff := now.Add(-b.window)
	kept := b.failures[:0]
	for _, t := range b.failures {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	b.failures = kept

	if b.state == breakerClosed && len(b.failures) >= b.threshold {
		b.openedAt = now
		b.failures = b.failures[:0]
		b.transition(breakerOpen)
	}
}

// State returns the current state name, for health reporting.
func (b *Breaker) State() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.String()
}

func (b *Breaker) transition(to breakerState) {
	if b.state == to {
		return
	}
	log.Warn().
		Str("supplier", b.supplier).
		Str("from", b.state.String()).
		Str("to", to.String()).
		Msg("breaker transition")
	observability.BreakerTransitions.WithLabelValues(b.supplier, to.String()).Inc()
	b.state = to
}

// BreakerSet holds one breaker per supplier, created lazily.
type BreakerSet struct {
	threshold int
	window    time.Duration
	cooldown  time.Duration

	mu       sync.Mutex
	breakers map[string]*Breaker
}

func NewBreakerSet(threshold int, window, cooldown time.Duration) *BreakerSet {
	return &BreakerSet{
		threshold: threshold,
		window:    window,
		cooldown:  cooldown,
		breakers:  make(map[string]*Breaker),
	}
}

func (s *BreakerSet) For(supplier string) *Breaker {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.breakers[supplier]
	if !ok {
		b = NewBreaker(supplier, s.threshold, s.window, s.cooldown)
		s.breakers[supplier] = b
	}
	return b
}

// Snapshot returns the state of every breaker seen so far.
func (s *BreakerSet) Snapshot() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.breakers))
	for code, b := range s.breakers {
		out[code] = b.State()
	}
	return out
}
