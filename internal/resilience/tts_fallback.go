package resilience

import (
	"context"
	"io"

	"github.com/tallyvox/tallyvox/pkg/provider/tts"
)

// SpeakerFallback implements [tts.Speaker] with automatic failover across
// multiple synthesis backends. Each backend has its own circuit breaker.
type SpeakerFallback struct {
	group *FallbackGroup[tts.Speaker]
}

// Compile-time interface assertion.
var _ tts.Speaker = (*SpeakerFallback)(nil)

// NewSpeakerFallback creates a [SpeakerFallback] with primary as the
// preferred backend.
func NewSpeakerFallback(primary tts.Speaker, primaryName string, cfg FallbackConfig) *SpeakerFallback {
	return &SpeakerFallback{
		group: NewFallbackGroup(primary, primaryName, cfg),
	}
}

// AddFallback registers an additional synthesis backend. Fallbacks are tried
// in the order they are added, after the primary.
func (f *SpeakerFallback) AddFallback(name string, s tts.Speaker) {
	f.group.AddFallback(name, s)
}

// Synthesize renders text through the first healthy backend. Only the
// request itself is covered by failover; errors while reading the returned
// audio stream are the caller's responsibility.
func (f *SpeakerFallback) Synthesize(ctx context.Context, text, voice string) (io.ReadCloser, error) {
	return ExecuteWithResult(ctx, f.group, func(ctx context.Context, s tts.Speaker) (io.ReadCloser, error) {
		return s.Synthesize(ctx, text, voice)
	})
}
