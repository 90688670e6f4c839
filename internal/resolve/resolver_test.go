package resolve

import (
	"testing"
)

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		raw           string
		lastMentioned string
		want          string
	}{
		{"title case", "alice", "", "Alice"},
		{"multi token", "alice  smith", "", "Alice Smith"},
		{"first person i", "i", "", "me"},
		{"first person me", "ME", "", "me"},
		{"pronoun with memo", "her", "Alice", "Alice"},
		{"pronoun them", "them", "Bob", "Bob"},
		{"pronoun without memo stays raw", "him", "", "him"},
		{"empty", "  ", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeName(tc.raw, tc.lastMentioned); got != tc.want {
				t.Errorf("NormalizeName(%q, %q) = %q, want %q", tc.raw, tc.lastMentioned, got, tc.want)
			}
		})
	}
}

func TestResolveName(t *testing.T) {
	t.Parallel()

	directory := []string{"Alice Smith", "Alicia Nunez", "Bob", "Carol Jones"}

	tests := []struct {
		name           string
		raw            string
		contacts       []string
		memo           string
		wantKind       ResolutionKind
		wantName       string
		wantCandidates []string
	}{
		{
			name:     "me is always resolved",
			raw:      "me",
			contacts: directory,
			wantKind: Resolved,
			wantName: "me",
		},
		{
			name:     "exact match wins outright",
			raw:      "bob",
			contacts: directory,
			wantKind: Resolved,
			wantName: "Bob",
		},
		{
			name:     "free-form without a directory",
			raw:      "charlie",
			contacts: nil,
			wantKind: Resolved,
			wantName: "Charlie",
		},
		{
			name:           "first token match is a suggestion",
			raw:            "carol",
			contacts:       directory,
			wantKind:       Ambiguous,
			wantCandidates: []string{"Carol Jones"},
		},
		{
			name:           "substring tie is alphabetized",
			raw:            "ali",
			contacts:       directory,
			wantKind:       Ambiguous,
			wantCandidates: []string{"Alice Smith", "Alicia Nunez"},
		},
		{
			name:     "no match",
			raw:      "zorro",
			contacts: directory,
			wantKind: NotFound,
		},
		{
			name:     "pronoun resolves through memo before scoring",
			raw:      "her",
			contacts: directory,
			memo:     "Bob",
			wantKind: Resolved,
			wantName: "Bob",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			res := ResolveName(tc.raw, tc.contacts, tc.memo)
			if res.Kind != tc.wantKind {
				t.Fatalf("Kind = %v, want %v (res %+v)", res.Kind, tc.wantKind, res)
			}
			if res.Name != tc.wantName {
				t.Errorf("Name = %q, want %q", res.Name, tc.wantName)
			}
			if len(res.Candidates) != len(tc.wantCandidates) {
				t.Fatalf("Candidates = %v, want %v", res.Candidates, tc.wantCandidates)
			}
			for i := range res.Candidates {
				if res.Candidates[i] != tc.wantCandidates[i] {
					t.Errorf("Candidates = %v, want %v", res.Candidates, tc.wantCandidates)
				}
			}
		})
	}
}

func TestResolveNameCandidateCap(t *testing.T) {
	t.Parallel()

	contacts := []string{"Ann Lee", "Anna Ray", "Annette Cole", "Annika Berg"}
	res := ResolveName("ann", contacts, "")
	if res.Kind != Ambiguous {
		t.Fatalf("Kind = %v, want Ambiguous", res.Kind)
	}
	if len(res.Candidates) != 3 {
		t.Fatalf("len(Candidates) = %d, want 3", len(res.Candidates))
	}
	// "Ann Lee" scores as a first-token match, the rest as substrings.
	if res.Candidates[0] != "Ann Lee" {
		t.Errorf("Candidates[0] = %q, want Ann Lee", res.Candidates[0])
	}
}
