// Package tts defines the Speaker interface for text-to-speech backends.
//
// Replies in tallyvox are short single sentences, so synthesis is a batch
// operation: one reply in, one encoded audio clip out.
//
// Implementations must be safe for concurrent use.
package tts

import (
	"context"
	"io"
)

// Speaker is the abstraction over any TTS backend.
type Speaker interface {
	// Synthesize converts text into an encoded audio clip spoken with the
	// given voice. An empty voice selects the provider's default. The caller
	// owns the returned reader and must close it.
	Synthesize(ctx context.Context, text, voice string) (io.ReadCloser, error)
}
