// Package mock provides a test double for the tts package interfaces.
package mock

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/tallyvox/tallyvox/pkg/provider/tts"
)

// SynthesizeCall records a single invocation of Speaker.Synthesize.
type SynthesizeCall struct {
	Text  string
	Voice string
}

// Speaker is a mock implementation of tts.Speaker.
type Speaker struct {
	mu sync.Mutex

	// Audio is the payload returned from every Synthesize call.
	Audio []byte

	// SynthesizeErr, if non-nil, is returned by every Synthesize call.
	SynthesizeErr error

	// SynthesizeCalls records every call to Synthesize.
	SynthesizeCalls []SynthesizeCall
}

// Synthesize records the call and returns Audio wrapped in a ReadCloser.
func (s *Speaker) Synthesize(ctx context.Context, text, voice string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SynthesizeCalls = append(s.SynthesizeCalls, SynthesizeCall{Text: text, Voice: voice})
	if s.SynthesizeErr != nil {
		return nil, s.SynthesizeErr
	}
	return io.NopCloser(bytes.NewReader(s.Audio)), nil
}

// Reset clears all recorded calls.
func (s *Speaker) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SynthesizeCalls = nil
}

// Ensure Speaker implements tts.Speaker at compile time.
var _ tts.Speaker = (*Speaker)(nil)
