package resilience

import (
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrCircuitOpen is returned when a call is rejected because the provider's
// circuit is open.
var ErrCircuitOpen = eris.New("circuit breaker is open")

// BreakerState is the state of a provider circuit.
type BreakerState int

const (
	// BreakerClosed is the normal state — calls flow through.
	BreakerClosed BreakerState = iota
	// BreakerOpen rejects calls immediately after too many failures.
	BreakerOpen
	// BreakerProbing lets one call through to test recovery.
	BreakerProbing
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerProbing:
		return "probing"
	default:
		return "unknown"
	}
}

// Breaker is a per-provider circuit breaker shared across the worker pool.
// Consecutive transient failures open it; while open, calls fail fast with
// ErrCircuitOpen instead of stacking more retries onto a provider that is
// already refusing work. After resetAfter elapses one probe call is allowed
// through, and its outcome closes or reopens the circuit.
type Breaker struct {
	service    string
	threshold  int
	resetAfter time.Duration

	mu       sync.Mutex
	state    BreakerState
	failures int
	openedAt time.Time

	now func() time.Time
}

// NewBreaker creates a breaker that opens after threshold consecutive
// transient failures and probes again resetAfter later. Zero values get
// defaults of 5 failures and 30s.
func NewBreaker(service string, threshold int, resetAfter time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = 5
	}
	if resetAfter <= 0 {
		resetAfter = 30 * time.Second
	}
	return &Breaker{
		service:    service,
		threshold:  threshold,
		resetAfter: resetAfter,
		now:        time.Now,
	}
}

// Allow reports whether a call may proceed. An open circuit past its reset
// window moves to probing and admits the call.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerOpen:
		if b.now().Sub(b.openedAt) >= b.resetAfter {
			b.transition(BreakerProbing)
			return nil
		}
		return eris.Wrapf(ErrCircuitOpen, "%s", b.service)
	default:
		return nil
	}
}

// Record feeds one call outcome into the breaker. Only failures the retry
// layer considers transient count toward the threshold; a hard 4xx says
// nothing about provider health.
func (b *Breaker) Record(failed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !failed {
		if b.state == BreakerProbing {
			b.transition(BreakerClosed)
		}
		b.failures = 0
		return
	}

	b.failures++
	switch b.state {
	case BreakerClosed:
		if b.failures >= b.threshold {
			b.openedAt = b.now()
			b.transition(BreakerOpen)
		}
	case BreakerProbing:
		b.openedAt = b.now()
		b.transition(BreakerOpen)
	}
}

// State returns the current state, surfacing the open → probing move once
// the reset window has passed.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == BreakerOpen && b.now().Sub(b.openedAt) >= b.resetAfter {
		return BreakerProbing
	}
	return b.state
}

func (b *Breaker) transition(to BreakerState) {
	from := b.state
	b.state = to
	zap.L().Warn("circuit state change",
		zap.String("service", b.service),
		zap.Stringer("from", from),
		zap.Stringer("to", to),
	)
}
