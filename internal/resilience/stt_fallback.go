package resilience

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/tallyvox/tallyvox/pkg/provider/stt"
)

// TranscriberFallback implements [stt.Transcriber] with automatic failover
// across multiple transcription backends. Each backend has its own circuit
// breaker.
type TranscriberFallback struct {
	group *FallbackGroup[stt.Transcriber]
}

// Compile-time interface assertion.
var _ stt.Transcriber = (*TranscriberFallback)(nil)

// NewTranscriberFallback creates a [TranscriberFallback] with primary as the
// preferred backend.
func NewTranscriberFallback(primary stt.Transcriber, primaryName string, cfg FallbackConfig) *TranscriberFallback {
	return &TranscriberFallback{
		group: NewFallbackGroup(primary, primaryName, cfg),
	}
}

// AddFallback registers an additional transcription backend. Fallbacks are
// tried in the order they are added, after the primary.
func (f *TranscriberFallback) AddFallback(name string, t stt.Transcriber) {
	f.group.AddFallback(name, t)
}

// Transcribe runs the utterance through the first healthy backend. The audio
// is buffered up front so a failed attempt can be replayed against the next
// backend; utterances are short clips, so the copy stays small.
func (f *TranscriberFallback) Transcribe(ctx context.Context, audio io.Reader, hints []string) (stt.Transcript, error) {
	clip, err := io.ReadAll(audio)
	if err != nil {
		return stt.Transcript{}, fmt.Errorf("resilience: buffer audio: %w", err)
	}
	return ExecuteWithResult(ctx, f.group, func(ctx context.Context, t stt.Transcriber) (stt.Transcript, error) {
		return t.Transcribe(ctx, bytes.NewReader(clip), hints)
	})
}
