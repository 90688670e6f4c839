// Package resolve maps raw name tokens from parsed utterances onto the
// known-contacts directory. It combines deterministic scored matching
// (exact, first-token, prefix, substring) with an optional phonetic
// transcript pre-correction stage for STT mishearings.
package resolve

import (
	"sort"
	"strings"
)

// maxCandidates caps the number of ranked candidates offered for
// disambiguation.
const maxCandidates = 3

// Candidate match scores, highest rule that applies wins.
const (
	scoreExact      = 100
	scoreFirstToken = 90
	scorePrefix     = 85
	scoreSubstring  = 70
	scoreQueryHolds = 55
)

// ResolutionKind tags the outcome of a name resolution.
type ResolutionKind int

const (
	// Resolved means the name maps to exactly one contact (or is "me", or
	// free-form because no directory is available).
	Resolved ResolutionKind = iota

	// Ambiguous means one to three ranked candidates survived scoring. A
	// single candidate is a confirmable suggestion, not an automatic match.
	Ambiguous

	// NotFound means no contact scored above zero.
	NotFound
)

// Resolution is the outcome of [ResolveName].
type Resolution struct {
	Kind ResolutionKind

	// Name is the resolved display name when Kind is Resolved.
	Name string

	// Candidates holds 1–3 ranked suggestions when Kind is Ambiguous,
	// ordered by score descending then alphabetically.
	Candidates []string
}

// NormalizeName collapses whitespace and title-cases each token of raw.
// "i" and "me" become "me"; the pronouns "him", "her", and "them" resolve to
// lastMentioned (or stay as-is when no counterparty has been mentioned yet).
func NormalizeName(raw, lastMentioned string) string {
	tokens := strings.Fields(raw)
	if len(tokens) == 0 {
		return ""
	}

	lower := strings.ToLower(strings.Join(tokens, " "))
	switch lower {
	case "i", "me":
		return "me"
	case "him", "her", "them":
		if lastMentioned != "" {
			return lastMentioned
		}
		return strings.Join(tokens, " ")
	}

	for i, tok := range tokens {
		tokens[i] = titleCase(tok)
	}
	return strings.Join(tokens, " ")
}

// ResolveName resolves raw against the contact directory.
//
// The name is normalized first (see [NormalizeName]). "me" is always
// resolved immediately. With an empty directory every name resolves
// verbatim — free-form names are permitted when no contact list exists.
// Otherwise an exact case-insensitive match wins outright, and failing
// that every contact is scored, zero scores are discarded, and the top
// three survivors (score descending, ties alphabetical, case-insensitive
// de-duplication) are returned as an ambiguity.
func ResolveName(raw string, contacts []string, lastMentioned string) Resolution {
	name := NormalizeName(raw, lastMentioned)
	if name == "" {
		return Resolution{Kind: NotFound}
	}
	if name == "me" {
		return Resolution{Kind: Resolved, Name: "me"}
	}
	if len(contacts) == 0 {
		return Resolution{Kind: Resolved, Name: name}
	}

	query := strings.ToLower(name)

	for _, c := range contacts {
		if strings.EqualFold(c, name) {
			return Resolution{Kind: Resolved, Name: c}
		}
	}

	type scored struct {
		name  string
		score int
	}
	var ranked []scored
	for _, c := range contacts {
		if s := scoreContact(query, strings.ToLower(c)); s > 0 {
			ranked = append(ranked, scored{name: c, score: s})
		}
	}
	if len(ranked) == 0 {
		return Resolution{Kind: NotFound}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].name < ranked[j].name
	})

	seen := make(map[string]struct{}, len(ranked))
	candidates := make([]string, 0, maxCandidates)
	for _, r := range ranked {
		key := strings.ToLower(r.name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		candidates = append(candidates, r.name)
		if len(candidates) == maxCandidates {
			break
		}
	}

	return Resolution{Kind: Ambiguous, Candidates: candidates}
}

// scoreContact ranks one lowercased contact against the lowercased query.
func scoreContact(query, contact string) int {
	switch {
	case contact == query:
		return scoreExact
	case firstToken(contact) == query:
		return scoreFirstToken
	case strings.HasPrefix(contact, query+" "):
		return scorePrefix
	case strings.Contains(contact, query) || strings.Contains(query, contact):
		return scoreSubstring
	case strings.Contains(query, firstToken(contact)):
		return scoreQueryHolds
	}
	return 0
}

func firstToken(s string) string {
	tok, _, _ := strings.Cut(s, " ")
	return tok
}

// titleCase upper-cases the first letter of tok, lower-casing the rest.
// Sufficient for contact display names; no locale handling needed.
func titleCase(tok string) string {
	if tok == "" {
		return tok
	}
	return strings.ToUpper(tok[:1]) + strings.ToLower(tok[1:])
}
