// Package observe provides observability primitives for tallyvox:
// OpenTelemetry metrics with a Prometheus exporter bridge, a tracer helper,
// and slog enrichment from the active span.
//
// A package-level default [Metrics] instance ([DefaultMetrics]) is provided
// for convenience; tests should use [NewMetrics] with a custom
// [metric.MeterProvider] to avoid cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all tallyvox metrics.
const meterName = "github.com/tallyvox/tallyvox"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// Utterances counts processed utterances. Use with attribute:
	//   attribute.String("response", ...) — added, ask, info, settle.
	Utterances metric.Int64Counter

	// ParseRoutes counts routing pipeline outcomes. Use with attributes:
	//   attribute.String("route", ...), attribute.String("outcome", ...)
	ParseRoutes metric.Int64Counter

	// ComplexityScore tracks the complexity score distribution of transcripts.
	ComplexityScore metric.Int64Histogram

	// ClarificationTurns counts slot-filling questions asked.
	ClarificationTurns metric.Int64Counter

	// DisambiguationRounds counts name disambiguation question/answer rounds.
	DisambiguationRounds metric.Int64Counter

	// SessionResets counts conversations reset after exceeding the
	// clarification cap.
	SessionResets metric.Int64Counter

	// BreakerTransitions counts circuit breaker state changes. Use with
	// attributes:
	//   attribute.String("breaker", ...), attribute.String("to", ...)
	BreakerTransitions metric.Int64Counter
}

// NewMetrics creates all metric instruments from the given provider.
func NewMetrics(provider metric.MeterProvider) (*Metrics, error) {
	meter := provider.Meter(meterName)
	m := &Metrics{}

	var err error
	if m.Utterances, err = meter.Int64Counter("tallyvox.dialogue.utterances",
		metric.WithDescription("Utterances processed, by response kind")); err != nil {
		return nil, err
	}
	if m.ParseRoutes, err = meter.Int64Counter("tallyvox.nlu.routes",
		metric.WithDescription("Routing pipeline outcomes, by route and outcome")); err != nil {
		return nil, err
	}
	if m.ComplexityScore, err = meter.Int64Histogram("tallyvox.nlu.complexity_score",
		metric.WithDescription("Distribution of transcript complexity scores")); err != nil {
		return nil, err
	}
	if m.ClarificationTurns, err = meter.Int64Counter("tallyvox.dialogue.clarification_turns",
		metric.WithDescription("Slot-filling questions asked")); err != nil {
		return nil, err
	}
	if m.DisambiguationRounds, err = meter.Int64Counter("tallyvox.dialogue.disambiguation_rounds",
		metric.WithDescription("Name disambiguation rounds")); err != nil {
		return nil, err
	}
	if m.SessionResets, err = meter.Int64Counter("tallyvox.dialogue.session_resets",
		metric.WithDescription("Sessions reset after exceeding the clarification cap")); err != nil {
		return nil, err
	}
	if m.BreakerTransitions, err = meter.Int64Counter("tallyvox.resilience.breaker_transitions",
		metric.WithDescription("Circuit breaker state transitions, by breaker and target state")); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordRoute records a routing pipeline outcome and its complexity score.
// Instruments that failed to initialise are nil-checked so a zero Metrics
// value is safe in tests.
func (m *Metrics) RecordRoute(route string, complexity int, success bool) {
	if m.ParseRoutes == nil {
		return
	}
	ctx := context.Background()
	outcome := "parse_failed"
	if success {
		outcome = "success"
	}
	if route == "" {
		route = "none"
	}
	m.ParseRoutes.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("route", route),
			attribute.String("outcome", outcome),
		))
	if m.ComplexityScore != nil {
		m.ComplexityScore.Record(ctx, int64(complexity))
	}
}

// RecordUtterance records a processed utterance by response kind.
func (m *Metrics) RecordUtterance(kind string) {
	if m.Utterances == nil {
		return
	}
	m.Utterances.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("response", kind)))
}

// AddClarificationTurn counts one slot-filling question.
func (m *Metrics) AddClarificationTurn() {
	if m.ClarificationTurns == nil {
		return
	}
	m.ClarificationTurns.Add(context.Background(), 1)
}

// AddDisambiguationRound counts one disambiguation round.
func (m *Metrics) AddDisambiguationRound() {
	if m.DisambiguationRounds == nil {
		return
	}
	m.DisambiguationRounds.Add(context.Background(), 1)
}

// AddSessionReset counts one forced session reset.
func (m *Metrics) AddSessionReset() {
	if m.SessionResets == nil {
		return
	}
	m.SessionResets.Add(context.Background(), 1)
}

// RecordBreakerTransition records a circuit breaker entering the given state.
func (m *Metrics) RecordBreakerTransition(breaker, to string) {
	if m == nil || m.BreakerTransitions == nil {
		return
	}
	m.BreakerTransitions.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String("breaker", breaker),
			attribute.String("to", to),
		))
}

var (
	defaultMetricsOnce sync.Once
	defaultMetrics     *Metrics
)

// DefaultMetrics returns the package-level Metrics instance backed by the
// globally registered meter provider. Instrument creation errors leave the
// corresponding instruments nil, which record methods tolerate.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		m, err := NewMetrics(otel.GetMeterProvider())
		if err != nil {
			m = &Metrics{}
		}
		defaultMetrics = m
	})
	return defaultMetrics
}
