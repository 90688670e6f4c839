package observe

import (
	"context"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

func counterValue(rm metricdata.ResourceMetrics, name string) (int64, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				return 0, false
			}
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total, true
		}
	}
	return 0, false
}

func TestMetricsRecording(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(provider)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	m.RecordRoute("on_device", 12, true)
	m.RecordRoute("", 40, false)
	m.RecordUtterance("added")
	m.RecordUtterance("ask")
	m.AddClarificationTurn()
	m.AddClarificationTurn()
	m.AddDisambiguationRound()
	m.AddSessionReset()

	rm := collect(t, reader)

	tests := []struct {
		metric string
		want   int64
	}{
		{"tallyvox.nlu.routes", 2},
		{"tallyvox.dialogue.utterances", 2},
		{"tallyvox.dialogue.clarification_turns", 2},
		{"tallyvox.dialogue.disambiguation_rounds", 1},
		{"tallyvox.dialogue.session_resets", 1},
	}
	for _, tc := range tests {
		got, ok := counterValue(rm, tc.metric)
		if !ok {
			t.Errorf("metric %q not found", tc.metric)
			continue
		}
		if got != tc.want {
			t.Errorf("%s = %d, want %d", tc.metric, got, tc.want)
		}
	}
}

func TestMetricsZeroValueIsSafe(t *testing.T) {
	t.Parallel()

	// A zero Metrics must tolerate every record call.
	var m Metrics
	m.RecordRoute("on_device", 10, true)
	m.RecordUtterance("added")
	m.AddClarificationTurn()
	m.AddDisambiguationRound()
	m.AddSessionReset()
	m.RecordBreakerTransition("stt", "open")
}

func TestMetricsPartialPopulationIsSafe(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	full, err := NewMetrics(provider)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	// Only the route counter is populated; the histogram must be skipped,
	// not dereferenced.
	m := &Metrics{ParseRoutes: full.ParseRoutes}
	m.RecordRoute("on_device", 12, true)

	rm := collect(t, reader)
	if got, ok := counterValue(rm, "tallyvox.nlu.routes"); !ok || got != 1 {
		t.Errorf("routes total = (%d, %v), want 1", got, ok)
	}
}
