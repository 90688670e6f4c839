package resolve

import (
	"testing"
)

func TestCorrectorRewritesMishearings(t *testing.T) {
	t.Parallel()

	c := NewCorrector()
	contacts := []string{"Alice", "Bob", "Nadia"}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "phonetic near miss",
			in:   "alyce owes me 10",
			want: "Alice owes me 10",
		},
		{
			name: "exact contact token untouched",
			in:   "alice owes me 10",
			want: "alice owes me 10",
		},
		{
			name: "grammar words never rewritten",
			in:   "i owe nadya 20 for lunch",
			want: "i owe Nadia 20 for lunch",
		},
		{
			name: "numbers pass through",
			in:   "bob owes me 12.50",
			want: "bob owes me 12.50",
		},
		{
			name: "unrelated words left alone",
			in:   "the weather is nice",
			want: "the weather is nice",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := c.Correct(tc.in, contacts); got != tc.want {
				t.Errorf("Correct(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestCorrectorBigramSpan(t *testing.T) {
	t.Parallel()

	c := NewCorrector()
	contacts := []string{"Roberto"}

	// Two tokens that together spell one contact collapse into it.
	got := c.Correct("rob berto owes me 10", contacts)
	if got != "Roberto owes me 10" {
		t.Errorf("Correct = %q, want the span folded into Roberto", got)
	}
}

func TestCorrectorEmptyInputs(t *testing.T) {
	t.Parallel()

	c := NewCorrector()

	if got := c.Correct("alyce owes me 10", nil); got != "alyce owes me 10" {
		t.Errorf("no contacts: got %q, want input unchanged", got)
	}
	if got := c.Correct("", []string{"Alice"}); got != "" {
		t.Errorf("empty text: got %q, want empty", got)
	}
}

func TestCorrectorThresholdOptions(t *testing.T) {
	t.Parallel()

	// An impossible threshold disables rewriting entirely.
	strict := NewCorrector(WithPhoneticThreshold(1.01), WithFuzzyThreshold(1.01))
	if got := strict.Correct("alyce owes me 10", []string{"Alice"}); got != "alyce owes me 10" {
		t.Errorf("strict thresholds: got %q, want input unchanged", got)
	}
}
