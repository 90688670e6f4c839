package nlu

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/tallyvox/tallyvox/internal/observe"
)

// ErrParseFailed is returned when neither grammar tier matched a transcript.
var ErrParseFailed = errors.New("nlu: no grammar matched")

// fallbackMinWords is the default minimum word count for the fallback gate.
const fallbackMinWords = 20

// RouterConfig configures a [Router].
type RouterConfig struct {
	// CloudThreshold is the complexity score at which the fallback gate can
	// fire. Defaults to [DefaultCloudThreshold] when zero or negative.
	CloudThreshold int

	// FallbackMinWords is the minimum word count for the fallback gate.
	// Defaults to 20 when zero or negative.
	FallbackMinWords int

	// Metrics records routing outcomes. May be nil.
	Metrics *observe.Metrics
}

// Router is the routing pipeline: it scores a transcript, attempts the
// strict grammar, and falls back to the permissive grammar when the
// complexity gate fires. The last [RouteDecision] is retained for
// observability.
//
// Router is safe for concurrent use; Route calls only contend on the
// last-decision slot.
type Router struct {
	strict     *Parser
	permissive *Parser
	threshold  int
	minWords   int
	metrics    *observe.Metrics

	mu      sync.Mutex
	last    RouteDecision
	hasLast bool
}

// NewRouter constructs a Router with both grammar tiers.
func NewRouter(cfg RouterConfig) *Router {
	if cfg.CloudThreshold <= 0 {
		cfg.CloudThreshold = DefaultCloudThreshold
	}
	if cfg.FallbackMinWords <= 0 {
		cfg.FallbackMinWords = fallbackMinWords
	}
	return &Router{
		strict:     NewParser(TierStrict),
		permissive: NewParser(TierPermissive),
		threshold:  cfg.CloudThreshold,
		minWords:   cfg.FallbackMinWords,
		metrics:    cfg.Metrics,
	}
}

// Route parses a transcript through the two-tier pipeline.
//
// The strict grammar is always attempted first. On strict success the route
// is on-device. On strict failure the permissive grammar is attempted only
// when the fallback gate fires: complexity ≥ threshold, word count ≥ the
// minimum, and the transcript contains a comma or semicolon. When neither
// tier produces a parse, Route returns [ErrParseFailed]; the returned
// command still carries the decision for the caller's taxonomy.
func (r *Router) Route(transcript string) (ParsedCommand, error) {
	score := ComplexityScore(transcript)

	if ex, ok := r.strict.Parse(transcript); ok {
		reasons := []string{ReasonOnDeviceSuccess}
		if score >= r.threshold {
			reasons = append(reasons, ReasonComplexButLocal)
		} else {
			reasons = append(reasons, ReasonLowComplexity)
		}
		return r.finish(transcript, ex, RouteDecision{
			Route:      RouteOnDevice,
			Reasons:    reasons,
			Complexity: score,
		})
	}

	if r.gateOpen(transcript, score) {
		if ex, ok := r.permissive.Parse(transcript); ok {
			return r.finish(transcript, ex, RouteDecision{
				Route:      RouteCloudFallback,
				Reasons:    []string{ReasonOnDeviceParseFailed, ReasonComplexityTriggered, ReasonCloudFallbackSuccess},
				Complexity: score,
			})
		}
	}

	decision := RouteDecision{
		Reasons:    []string{ReasonOnDeviceParseFailed, ReasonFallbackNotTriggered},
		Complexity: score,
	}
	r.record(decision)
	slog.Debug("nlu: parse failed", "complexity", score, "gate_open", r.gateOpen(transcript, score))
	return ParsedCommand{Decision: decision, Transcript: transcript},
		fmt.Errorf("%w (complexity %d)", ErrParseFailed, score)
}

// LastDecision returns the decision of the most recent Route call.
func (r *Router) LastDecision() (RouteDecision, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last, r.hasLast
}

// gateOpen evaluates the cloud-fallback gate for a transcript.
func (r *Router) gateOpen(transcript string, score int) bool {
	return score >= r.threshold &&
		WordCount(transcript) >= r.minWords &&
		strings.ContainsAny(transcript, ",;")
}

func (r *Router) finish(transcript string, ex Extraction, decision RouteDecision) (ParsedCommand, error) {
	r.record(decision)
	slog.Debug("nlu: parsed",
		"pattern", ex.Pattern,
		"route", decision.Route,
		"complexity", decision.Complexity,
	)
	return ParsedCommand{
		Creditor:   ex.Creditor,
		Debtor:     ex.Debtor,
		Amount:     ex.Amount,
		Note:       ex.Note,
		Decision:   decision,
		Transcript: transcript,
	}, nil
}

func (r *Router) record(decision RouteDecision) {
	r.mu.Lock()
	r.last = decision
	r.hasLast = true
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.RecordRoute(string(decision.Route), decision.Complexity, decision.Route != "")
	}
}
