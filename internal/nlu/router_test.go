package nlu

import (
	"errors"
	"strings"
	"testing"
)

const longFallbackSentence = "okay so we went to the game yesterday, and after we got food with everyone, and sorted the tickets, alice owes me twenty five for the pizza"

func TestRouterOnDevice(t *testing.T) {
	t.Parallel()

	r := NewRouter(RouterConfig{})

	cmd, err := r.Route("alice owes me 12.50 for lunch")
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if cmd.Decision.Route != RouteOnDevice {
		t.Errorf("Route = %q, want %q", cmd.Decision.Route, RouteOnDevice)
	}
	wantReasons := []string{ReasonOnDeviceSuccess, ReasonLowComplexity}
	if !equalStrings(cmd.Decision.Reasons, wantReasons) {
		t.Errorf("Reasons = %v, want %v", cmd.Decision.Reasons, wantReasons)
	}

	last, ok := r.LastDecision()
	if !ok || last.Route != RouteOnDevice {
		t.Errorf("LastDecision = (%+v, %v)", last, ok)
	}
}

func TestRouterCloudFallback(t *testing.T) {
	t.Parallel()

	r := NewRouter(RouterConfig{})

	cmd, err := r.Route(longFallbackSentence)
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if cmd.Decision.Route != RouteCloudFallback {
		t.Errorf("Route = %q, want %q", cmd.Decision.Route, RouteCloudFallback)
	}
	wantReasons := []string{ReasonOnDeviceParseFailed, ReasonComplexityTriggered, ReasonCloudFallbackSuccess}
	if !equalStrings(cmd.Decision.Reasons, wantReasons) {
		t.Errorf("Reasons = %v, want %v", cmd.Decision.Reasons, wantReasons)
	}
	if cmd.Debtor != "alice" || cmd.Creditor != "me" {
		t.Errorf("parties = (%q, %q), want (alice, me)", cmd.Debtor, cmd.Creditor)
	}
}

func TestRouterGate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
	}{
		{
			name: "no punctuation keeps the gate closed",
			text: strings.ReplaceAll(longFallbackSentence, ",", ""),
		},
		{
			name: "short utterances never fall back",
			text: "hmm, owes alice 10",
		},
		{
			name: "complexity below threshold",
			text: "we saw them, bob owes alice ten",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r := NewRouter(RouterConfig{})

			cmd, err := r.Route(tc.text)
			if !errors.Is(err, ErrParseFailed) {
				t.Fatalf("Route(%q) err = %v, want ErrParseFailed", tc.text, err)
			}
			wantReasons := []string{ReasonOnDeviceParseFailed, ReasonFallbackNotTriggered}
			if !equalStrings(cmd.Decision.Reasons, wantReasons) {
				t.Errorf("Reasons = %v, want %v", cmd.Decision.Reasons, wantReasons)
			}
		})
	}
}

func TestRouterComplexButLocal(t *testing.T) {
	t.Parallel()

	r := NewRouter(RouterConfig{CloudThreshold: 5})

	// Score is over the (lowered) threshold but the strict grammar still
	// matches, so the parse stays on device.
	cmd, err := r.Route("alice owes me 10 for lunch and coffee")
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if cmd.Decision.Route != RouteOnDevice {
		t.Errorf("Route = %q, want %q", cmd.Decision.Route, RouteOnDevice)
	}
	wantReasons := []string{ReasonOnDeviceSuccess, ReasonComplexButLocal}
	if !equalStrings(cmd.Decision.Reasons, wantReasons) {
		t.Errorf("Reasons = %v, want %v", cmd.Decision.Reasons, wantReasons)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
