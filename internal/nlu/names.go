package nlu

import "strings"

// maxNameTokens and maxNameLen bound how much of an utterance the grammar
// will accept as a person name.
const (
	maxNameTokens = 3
	maxNameLen    = 24
)

// fillerWords are tokens that never form a person name on their own.
// A captured name equal to one of these is rejected outright, and leading
// filler tokens are trimmed from permissive captures.
var fillerWords = map[string]struct{}{
	"hi": {}, "hey": {}, "hello": {}, "okay": {}, "ok": {},
	"yes": {}, "yeah": {}, "yep": {}, "no": {}, "nope": {},
	"that": {}, "this": {}, "it": {}, "the": {}, "a": {}, "an": {},
	"so": {}, "well": {}, "um": {}, "uh": {}, "anyway": {},
	"please": {}, "thanks": {},
}

// PlausibleName reports whether name could be a person name: no filler
// words, at most 3 tokens and 24 characters, every token at least 2
// characters and composed only of letters, apostrophes, or hyphens. The
// filler check applies per token so that leading chatter glued onto a
// capture ("so anyway alice") cannot pass as a multi-token name.
func PlausibleName(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxNameLen {
		return false
	}

	tokens := strings.Fields(name)
	if len(tokens) == 0 || len(tokens) > maxNameTokens {
		return false
	}
	for _, tok := range tokens {
		if !plausibleNameToken(tok) {
			return false
		}
		if _, blocked := fillerWords[strings.ToLower(tok)]; blocked {
			return false
		}
	}
	return true
}

// plausibleNameToken checks a single name token: length ≥ 2 and only
// letters, apostrophe, or hyphen.
func plausibleNameToken(tok string) bool {
	if len([]rune(tok)) < 2 {
		return false
	}
	for _, r := range tok {
		if !isNameRune(r) {
			return false
		}
	}
	return true
}

func isNameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		return true
	case r == '\'' || r == '-':
		return true
	}
	return false
}

// trimToName reduces a raw capture to its trailing run of at most 3
// plausible name tokens, dropping leading filler words. The permissive
// grammar uses it to ignore leading text in front of a clause.
// Returns "" when no plausible name remains.
func trimToName(raw string) string {
	tokens := strings.Fields(raw)

	// Keep only the trailing tokens that look like name tokens.
	start := len(tokens)
	for start > 0 && plausibleNameToken(tokens[start-1]) {
		start--
	}
	tokens = tokens[start:]

	if len(tokens) > maxNameTokens {
		tokens = tokens[len(tokens)-maxNameTokens:]
	}

	// Drop filler tokens from the front ("that bob" → "bob").
	for len(tokens) > 0 {
		if _, filler := fillerWords[strings.ToLower(tokens[0])]; !filler {
			break
		}
		tokens = tokens[1:]
	}

	name := strings.Join(tokens, " ")
	if !PlausibleName(name) {
		return ""
	}
	return name
}
