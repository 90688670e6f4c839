// Package mock provides a test double for the stt package interfaces.
//
// Pre-populate Transcripts with the values the consumer should receive, in
// order; once exhausted, TranscribeErr (or a zero Transcript) is returned.
package mock

import (
	"context"
	"io"
	"sync"

	"github.com/tallyvox/tallyvox/pkg/provider/stt"
)

// TranscribeCall records a single invocation of Transcriber.Transcribe.
type TranscribeCall struct {
	// Audio is the full audio payload that was read from the reader.
	Audio []byte

	// Hints is a copy of the vocabulary hints passed to Transcribe.
	Hints []string
}

// Transcriber is a mock implementation of stt.Transcriber.
type Transcriber struct {
	mu sync.Mutex

	// Transcripts are returned one per Transcribe call, in order.
	Transcripts []stt.Transcript

	// TranscribeErr, if non-nil, is returned once Transcripts is exhausted.
	TranscribeErr error

	// TranscribeCalls records every call to Transcribe.
	TranscribeCalls []TranscribeCall

	next int
}

// Transcribe records the call and returns the next queued Transcript.
func (t *Transcriber) Transcribe(ctx context.Context, audio io.Reader, hints []string) (stt.Transcript, error) {
	payload, err := io.ReadAll(audio)
	if err != nil {
		return stt.Transcript{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	h := make([]string, len(hints))
	copy(h, hints)
	t.TranscribeCalls = append(t.TranscribeCalls, TranscribeCall{Audio: payload, Hints: h})

	if t.next < len(t.Transcripts) {
		tr := t.Transcripts[t.next]
		t.next++
		return tr, nil
	}
	if t.TranscribeErr != nil {
		return stt.Transcript{}, t.TranscribeErr
	}
	return stt.Transcript{}, nil
}

// Reset clears all recorded calls and rewinds the transcript queue.
func (t *Transcriber) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.TranscribeCalls = nil
	t.next = 0
}

// Ensure Transcriber implements stt.Transcriber at compile time.
var _ stt.Transcriber = (*Transcriber)(nil)
