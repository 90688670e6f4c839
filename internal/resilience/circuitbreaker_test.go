package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errTest = errors.New("test error")

func openBreaker(t *testing.T, cb *CircuitBreaker, failures int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < failures; i++ {
		_ = cb.Execute(ctx, func(context.Context) error { return errTest })
	}
}

func TestCircuitBreakerDefaults(t *testing.T) {
	t.Parallel()
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "stt"})

	if cb.maxFailures != 5 {
		t.Errorf("maxFailures = %d, want 5", cb.maxFailures)
	}
	if cb.resetTimeout != 30*time.Second {
		t.Errorf("resetTimeout = %v, want 30s", cb.resetTimeout)
	}
	if cb.halfOpenMax != 3 {
		t.Errorf("halfOpenMax = %d, want 3", cb.halfOpenMax)
	}
	if got := cb.State(); got != StateClosed {
		t.Errorf("initial state = %v, want %v", got, StateClosed)
	}
}

func TestCircuitBreakerClosedForwardsCalls(t *testing.T) {
	t.Parallel()
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "stt", MaxFailures: 3})

	called := false
	err := cb.Execute(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !called {
		t.Fatal("fn was not called")
	}
}

func TestCircuitBreakerForwardsContext(t *testing.T) {
	t.Parallel()
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "stt"})

	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "marker")

	var got any
	_ = cb.Execute(ctx, func(ctx context.Context) error {
		got = ctx.Value(key{})
		return nil
	})
	if got != "marker" {
		t.Fatalf("ctx value = %v, want marker", got)
	}
}

func TestCircuitBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:         "stt",
		MaxFailures:  3,
		ResetTimeout: time.Hour,
	})

	openBreaker(t, cb, 2)
	if got := cb.State(); got != StateClosed {
		t.Fatalf("state after 2 failures = %v, want %v", got, StateClosed)
	}

	openBreaker(t, cb, 1)
	if got := cb.State(); got != StateOpen {
		t.Fatalf("state after 3 failures = %v, want %v", got, StateOpen)
	}

	err := cb.Execute(context.Background(), func(context.Context) error { return nil })
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen", err)
	}
}

func TestCircuitBreakerSuccessResetsFailureCount(t *testing.T) {
	t.Parallel()
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "stt", MaxFailures: 3})

	openBreaker(t, cb, 2)
	_ = cb.Execute(context.Background(), func(context.Context) error { return nil })
	openBreaker(t, cb, 2)

	// The success in between cleared the counter, so only 2 of the 3
	// failures needed to trip have accumulated.
	if got := cb.State(); got != StateClosed {
		t.Fatalf("state = %v, want %v", got, StateClosed)
	}
}

func TestCircuitBreakerOpenToHalfOpenAfterTimeout(t *testing.T) {
	t.Parallel()
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:         "stt",
		MaxFailures:  2,
		ResetTimeout: 10 * time.Millisecond,
		HalfOpenMax:  2,
	})

	openBreaker(t, cb, 2)
	if got := cb.State(); got != StateOpen {
		t.Fatalf("state = %v, want %v", got, StateOpen)
	}

	time.Sleep(15 * time.Millisecond)

	if got := cb.State(); got != StateHalfOpen {
		t.Fatalf("state after timeout = %v, want %v", got, StateHalfOpen)
	}
}

func TestCircuitBreakerHalfOpenClosesAfterProbes(t *testing.T) {
	t.Parallel()
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:         "stt",
		MaxFailures:  2,
		ResetTimeout: 10 * time.Millisecond,
		HalfOpenMax:  2,
	})

	openBreaker(t, cb, 2)
	time.Sleep(15 * time.Millisecond)

	for i := 0; i < 2; i++ {
		if err := cb.Execute(context.Background(), func(context.Context) error { return nil }); err != nil {
			t.Fatalf("probe %d: %v", i, err)
		}
	}

	if got := cb.State(); got != StateClosed {
		t.Fatalf("state = %v, want %v", got, StateClosed)
	}
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	t.Parallel()
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:         "stt",
		MaxFailures:  2,
		ResetTimeout: 10 * time.Millisecond,
		HalfOpenMax:  3,
	})

	openBreaker(t, cb, 2)
	time.Sleep(15 * time.Millisecond)

	if err := cb.Execute(context.Background(), func(context.Context) error { return errTest }); err == nil {
		t.Fatal("expected error from failing probe")
	}

	// State() reports half-open once the timeout elapses, so inspect the
	// raw state to confirm the probe failure re-opened the breaker.
	cb.mu.Lock()
	got := cb.state
	cb.mu.Unlock()
	if got != StateOpen {
		t.Fatalf("state = %v, want %v", got, StateOpen)
	}
}

func TestCircuitBreakerManualReset(t *testing.T) {
	t.Parallel()
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:         "stt",
		MaxFailures:  2,
		ResetTimeout: time.Hour,
	})

	openBreaker(t, cb, 2)
	cb.Reset()

	if got := cb.State(); got != StateClosed {
		t.Fatalf("state = %v, want %v", got, StateClosed)
	}
	if err := cb.Execute(context.Background(), func(context.Context) error { return nil }); err != nil {
		t.Fatalf("Execute after reset: %v", err)
	}
}

func TestStateString(t *testing.T) {
	t.Parallel()
	tests := []struct {
		state State
		want  string
	}{
		{StateClosed, "closed"},
		{StateOpen, "open"},
		{StateHalfOpen, "half-open"},
		{State(99), "unknown"},
	}
	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			t.Parallel()
			if got := tc.state.String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
		})
	}
}
