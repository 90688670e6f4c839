// Package resilience protects the cloud speech backends from cascading
// failures. A [CircuitBreaker] stops forwarding calls to a backend that
// keeps erroring, and a [FallbackGroup] routes each call to the first
// backend whose breaker still admits it. The Transcriber and Speaker
// wrappers expose the group behind the provider ports so the rest of the
// application never sees failover happening.
//
// All types are safe for concurrent use.
package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tallyvox/tallyvox/internal/observe"
)

// ErrCircuitOpen is returned by [CircuitBreaker.Execute] when the breaker
// is open and the reset timeout has not yet elapsed.
var ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

// State is the operating mode of a [CircuitBreaker].
type State int

const (
	// StateClosed forwards all calls.
	StateClosed State = iota

	// StateOpen rejects calls immediately with [ErrCircuitOpen] until the
	// reset timeout elapses.
	StateOpen

	// StateHalfOpen admits a limited number of probe calls after the reset
	// timeout. Successful probes close the breaker, any failure re-opens it.
	StateHalfOpen
)

// String returns the human-readable name of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig holds tuning knobs for a [CircuitBreaker].
type CircuitBreakerConfig struct {
	// Name labels the breaker in logs and metrics, e.g. "openai" for the
	// speech backend it guards.
	Name string

	// MaxFailures is the number of consecutive failures in the closed state
	// before the breaker opens. Default: 5.
	MaxFailures int

	// ResetTimeout is how long the breaker stays open before admitting
	// probe calls. Default: 30s.
	ResetTimeout time.Duration

	// HalfOpenMax is the number of probe calls admitted in the half-open
	// state. Default: 3.
	HalfOpenMax int

	// Metrics receives state transition counts. Nil disables recording.
	Metrics *observe.Metrics
}

// CircuitBreaker is a three-state breaker (closed, open, half-open) guarding
// one backend.
type CircuitBreaker struct {
	name         string
	maxFailures  int
	resetTimeout time.Duration
	halfOpenMax  int
	metrics      *observe.Metrics

	mu              sync.Mutex
	state           State
	consecutiveFail int
	lastFailure     time.Time
	halfOpenCalls   int
	halfOpenFails   int
}

// NewCircuitBreaker creates a [CircuitBreaker] from cfg, substituting
// defaults for zero-value fields.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 30 * time.Second
	}
	if cfg.HalfOpenMax <= 0 {
		cfg.HalfOpenMax = 3
	}
	return &CircuitBreaker{
		name:         cfg.Name,
		maxFailures:  cfg.MaxFailures,
		resetTimeout: cfg.ResetTimeout,
		halfOpenMax:  cfg.HalfOpenMax,
		metrics:      cfg.Metrics,
		state:        StateClosed,
	}
}

// Execute runs fn if the breaker admits the call, forwarding ctx. In the
// open state it returns [ErrCircuitOpen] without calling fn; in the
// half-open state only the probe allowance is admitted.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	cb.mu.Lock()
	switch cb.state {
	case StateOpen:
		if time.Since(cb.lastFailure) < cb.resetTimeout {
			cb.mu.Unlock()
			return ErrCircuitOpen
		}
		cb.transition(ctx, StateHalfOpen)
		cb.halfOpenCalls = 0
		cb.halfOpenFails = 0

	case StateHalfOpen:
		if cb.halfOpenCalls >= cb.halfOpenMax {
			// Probe allowance exhausted; stay open.
			cb.mu.Unlock()
			return ErrCircuitOpen
		}
	}

	inHalfOpen := cb.state == StateHalfOpen
	if inHalfOpen {
		cb.halfOpenCalls++
	}
	cb.mu.Unlock()

	err := fn(ctx)

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.recordFailure(ctx, inHalfOpen)
	} else {
		cb.recordSuccess(ctx, inHalfOpen)
	}
	return err
}

// recordFailure handles failure accounting. Must be called with cb.mu held.
func (cb *CircuitBreaker) recordFailure(ctx context.Context, inHalfOpen bool) {
	cb.lastFailure = time.Now()

	if inHalfOpen {
		cb.halfOpenFails++
		// Any failed probe re-opens immediately.
		cb.transition(ctx, StateOpen)
		cb.consecutiveFail = cb.maxFailures
		return
	}

	cb.consecutiveFail++
	if cb.consecutiveFail >= cb.maxFailures {
		cb.transition(ctx, StateOpen)
	}
}

// recordSuccess handles success accounting. Must be called with cb.mu held.
func (cb *CircuitBreaker) recordSuccess(ctx context.Context, inHalfOpen bool) {
	if inHalfOpen {
		if cb.halfOpenCalls-cb.halfOpenFails >= cb.halfOpenMax {
			cb.transition(ctx, StateClosed)
			cb.consecutiveFail = 0
			cb.halfOpenCalls = 0
			cb.halfOpenFails = 0
		}
		return
	}
	cb.consecutiveFail = 0
}

// transition moves the breaker to next, logging and counting the change.
// Must be called with cb.mu held.
func (cb *CircuitBreaker) transition(ctx context.Context, next State) {
	if cb.state == next {
		return
	}
	cb.state = next
	observe.Logger(ctx).Info("resilience: breaker state changed",
		"breaker", cb.name,
		"state", next.String(),
		"consecutive_failures", cb.consecutiveFail)
	cb.metrics.RecordBreakerTransition(cb.name, next.String())
}

// State returns the current [State]. When the breaker is open and the reset
// timeout has elapsed it reports [StateHalfOpen]; the actual transition
// happens on the next [CircuitBreaker.Execute] call.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen && time.Since(cb.lastFailure) >= cb.resetTimeout {
		return StateHalfOpen
	}
	return cb.state
}

// Reset forces the breaker back to [StateClosed] and clears all failure
// counters.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.transition(context.Background(), StateClosed)
	cb.consecutiveFail = 0
	cb.halfOpenCalls = 0
	cb.halfOpenFails = 0
}
