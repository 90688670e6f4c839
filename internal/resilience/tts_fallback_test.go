package resilience

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	ttsmock "github.com/tallyvox/tallyvox/pkg/provider/tts/mock"
)

func TestSpeakerFallbackPrimarySuccess(t *testing.T) {
	t.Parallel()
	primary := &ttsmock.Speaker{Audio: []byte("primary-audio")}
	secondary := &ttsmock.Speaker{Audio: []byte("secondary-audio")}

	f := NewSpeakerFallback(primary, "primary", FallbackConfig{})
	f.AddFallback("secondary", secondary)

	rc, err := f.Synthesize(context.Background(), "Recorded.", "alloy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer rc.Close()

	audio, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read audio: %v", err)
	}
	if !bytes.Equal(audio, []byte("primary-audio")) {
		t.Errorf("audio = %q, want %q", audio, "primary-audio")
	}
	if len(secondary.SynthesizeCalls) != 0 {
		t.Errorf("secondary called %d times, want 0", len(secondary.SynthesizeCalls))
	}
}

func TestSpeakerFallbackPrimaryFailFallbackSuccess(t *testing.T) {
	t.Parallel()
	primary := &ttsmock.Speaker{SynthesizeErr: errTest}
	secondary := &ttsmock.Speaker{Audio: []byte("secondary-audio")}

	f := NewSpeakerFallback(primary, "primary", FallbackConfig{})
	f.AddFallback("secondary", secondary)

	rc, err := f.Synthesize(context.Background(), "Recorded.", "alloy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer rc.Close()

	audio, _ := io.ReadAll(rc)
	if !bytes.Equal(audio, []byte("secondary-audio")) {
		t.Errorf("audio = %q, want %q", audio, "secondary-audio")
	}
	if len(secondary.SynthesizeCalls) != 1 {
		t.Fatalf("secondary called %d times, want 1", len(secondary.SynthesizeCalls))
	}
	if got := secondary.SynthesizeCalls[0].Voice; got != "alloy" {
		t.Errorf("voice = %q, want %q", got, "alloy")
	}
}

func TestSpeakerFallbackAllFail(t *testing.T) {
	t.Parallel()
	primary := &ttsmock.Speaker{SynthesizeErr: errTest}

	f := NewSpeakerFallback(primary, "primary", FallbackConfig{})

	_, err := f.Synthesize(context.Background(), "Recorded.", "alloy")
	if !errors.Is(err, ErrAllFailed) {
		t.Fatalf("err = %v, want ErrAllFailed", err)
	}
}
