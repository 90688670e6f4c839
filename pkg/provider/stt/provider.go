// Package stt defines the Transcriber interface for speech-to-text
// backends.
//
// tallyvox processes one utterance at a time, so the abstraction is a
// batch one: a complete audio clip in, one transcript out. Vocabulary
// hints carry the contact directory into recognition so proper names
// survive transcription.
//
// Implementations must be safe for concurrent use.
package stt

import (
	"context"
	"io"
	"time"
)

// Transcript is the result of transcribing one audio clip.
type Transcript struct {
	// Text is the transcribed speech content.
	Text string

	// Confidence is the overall confidence score (0.0–1.0). Zero when the
	// provider does not report confidence.
	Confidence float64

	// Duration is the length of the transcribed audio, when reported.
	Duration time.Duration
}

// Transcriber is the abstraction over any STT backend.
type Transcriber interface {
	// Transcribe converts a complete audio clip into text. The audio reader
	// holds an encoded clip (WAV, MP3, or another format the provider
	// accepts). hints is an optional vocabulary list, typically the contact
	// directory, that biases recognition towards those spellings.
	//
	// Returns an error when the provider cannot be reached or rejects the
	// clip; an empty utterance is a valid result, not an error.
	Transcribe(ctx context.Context, audio io.Reader, hints []string) (Transcript, error)
}
