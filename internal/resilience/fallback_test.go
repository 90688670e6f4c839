package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/tallyvox/tallyvox/internal/observe"
)

func newStringGroup(maxFailures int) *FallbackGroup[string] {
	fg := NewFallbackGroup("primary", "primary", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{
			MaxFailures:  maxFailures,
			ResetTimeout: time.Hour,
		},
	})
	fg.AddFallback("secondary", "secondary")
	return fg
}

func TestFallbackGroupPrimaryFirst(t *testing.T) {
	t.Parallel()
	fg := newStringGroup(3)

	var called string
	err := fg.Execute(context.Background(), func(_ context.Context, v string) error {
		called = v
		return nil
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if called != "primary" {
		t.Errorf("called = %q, want primary", called)
	}
}

func TestFallbackGroupFailsOverInOrder(t *testing.T) {
	t.Parallel()
	fg := newStringGroup(3)

	var called string
	err := fg.Execute(context.Background(), func(_ context.Context, v string) error {
		if v == "primary" {
			return errTest
		}
		called = v
		return nil
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if called != "secondary" {
		t.Errorf("called = %q, want secondary", called)
	}
}

func TestFallbackGroupAllFail(t *testing.T) {
	t.Parallel()
	fg := newStringGroup(3)

	err := fg.Execute(context.Background(), func(context.Context, string) error { return errTest })
	if !errors.Is(err, ErrAllFailed) {
		t.Fatalf("err = %v, want ErrAllFailed", err)
	}
}

func TestFallbackGroupSkipsOpenCircuit(t *testing.T) {
	t.Parallel()
	fg := newStringGroup(2)
	ctx := context.Background()

	// Trip the primary's breaker; the secondary absorbs both rounds.
	for i := 0; i < 2; i++ {
		_ = fg.Execute(ctx, func(_ context.Context, v string) error {
			if v == "primary" {
				return errTest
			}
			return nil
		})
	}

	var called string
	err := fg.Execute(ctx, func(_ context.Context, v string) error {
		called = v
		return nil
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if called != "secondary" {
		t.Errorf("called = %q, want secondary while primary circuit is open", called)
	}
}

func TestFallbackGroupRecordsBreakerTransitions(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := observe.NewMetrics(provider)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	fg := NewFallbackGroup("primary", "primary", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{
			MaxFailures:  2,
			ResetTimeout: time.Hour,
			Metrics:      metrics,
		},
	})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_ = fg.Execute(ctx, func(context.Context, string) error { return errTest })
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "tallyvox.resilience.breaker_transitions" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("breaker_transitions data type = %T, want Sum[int64]", m.Data)
			}
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	if total != 1 {
		t.Errorf("breaker transitions = %d, want 1 (closed to open)", total)
	}
}

func TestExecuteWithResult(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		primaryErr bool
		wantResult string
	}{
		{name: "primary result wins", wantResult: "from-primary"},
		{name: "fail over to secondary", primaryErr: true, wantResult: "from-secondary"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			fg := newStringGroup(3)

			result, err := ExecuteWithResult(context.Background(), fg, func(_ context.Context, v string) (string, error) {
				if v == "primary" {
					if tc.primaryErr {
						return "", errTest
					}
					return "from-primary", nil
				}
				return "from-secondary", nil
			})
			if err != nil {
				t.Fatalf("ExecuteWithResult: %v", err)
			}
			if result != tc.wantResult {
				t.Errorf("result = %q, want %q", result, tc.wantResult)
			}
		})
	}
}

func TestExecuteWithResultAllFail(t *testing.T) {
	t.Parallel()
	fg := newStringGroup(3)

	_, err := ExecuteWithResult(context.Background(), fg, func(context.Context, string) (string, error) {
		return "", errTest
	})
	if !errors.Is(err, ErrAllFailed) {
		t.Fatalf("err = %v, want ErrAllFailed", err)
	}
}
