package resilience

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tallyvox/tallyvox/pkg/provider/stt"
	sttmock "github.com/tallyvox/tallyvox/pkg/provider/stt/mock"
)

func TestTranscriberFallbackPrimarySuccess(t *testing.T) {
	t.Parallel()
	primary := &sttmock.Transcriber{
		Transcripts: []stt.Transcript{{Text: "alice owes me 10"}},
	}
	secondary := &sttmock.Transcriber{}

	f := NewTranscriberFallback(primary, "primary", FallbackConfig{})
	f.AddFallback("secondary", secondary)

	tr, err := f.Transcribe(context.Background(), strings.NewReader("clip"), []string{"Alice"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Text != "alice owes me 10" {
		t.Errorf("text = %q, want %q", tr.Text, "alice owes me 10")
	}
	if len(secondary.TranscribeCalls) != 0 {
		t.Errorf("secondary called %d times, want 0", len(secondary.TranscribeCalls))
	}
}

func TestTranscriberFallbackPrimaryFailFallbackSuccess(t *testing.T) {
	t.Parallel()
	primary := &sttmock.Transcriber{TranscribeErr: errTest}
	secondary := &sttmock.Transcriber{
		Transcripts: []stt.Transcript{{Text: "bob owes alice 5"}},
	}

	f := NewTranscriberFallback(primary, "primary", FallbackConfig{})
	f.AddFallback("secondary", secondary)

	tr, err := f.Transcribe(context.Background(), strings.NewReader("clip"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Text != "bob owes alice 5" {
		t.Errorf("text = %q, want %q", tr.Text, "bob owes alice 5")
	}
	if len(primary.TranscribeCalls) != 1 {
		t.Errorf("primary called %d times, want 1", len(primary.TranscribeCalls))
	}
}

func TestTranscriberFallbackAudioReplayedForFallback(t *testing.T) {
	t.Parallel()
	primary := &sttmock.Transcriber{TranscribeErr: errTest}
	secondary := &sttmock.Transcriber{
		Transcripts: []stt.Transcript{{Text: "ok"}},
	}

	f := NewTranscriberFallback(primary, "primary", FallbackConfig{})
	f.AddFallback("secondary", secondary)

	payload := []byte("fake-wav-bytes")
	if _, err := f.Transcribe(context.Background(), bytes.NewReader(payload), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Both backends must see the full clip even though the primary already
	// consumed its reader.
	if got := primary.TranscribeCalls[0].Audio; !bytes.Equal(got, payload) {
		t.Errorf("primary audio = %q, want %q", got, payload)
	}
	if got := secondary.TranscribeCalls[0].Audio; !bytes.Equal(got, payload) {
		t.Errorf("secondary audio = %q, want %q", got, payload)
	}
}

func TestTranscriberFallbackAllFail(t *testing.T) {
	t.Parallel()
	primary := &sttmock.Transcriber{TranscribeErr: errTest}
	secondary := &sttmock.Transcriber{TranscribeErr: errTest}

	f := NewTranscriberFallback(primary, "primary", FallbackConfig{})
	f.AddFallback("secondary", secondary)

	_, err := f.Transcribe(context.Background(), strings.NewReader("clip"), nil)
	if !errors.Is(err, ErrAllFailed) {
		t.Fatalf("err = %v, want ErrAllFailed", err)
	}
}
