package resolve

import (
	"strings"

	"github.com/antzucaro/matchr"
)

const (
	defaultPhoneticThreshold = 0.70
	defaultFuzzyThreshold    = 0.85
)

// grammarWords are tokens the corrector must never rewrite: grammar
// keywords, pronouns, and everything the amount extractor may consume.
var grammarWords = map[string]struct{}{
	"owes": {}, "owe": {}, "paid": {}, "pay": {}, "settle": {}, "mark": {},
	"me": {}, "i": {}, "him": {}, "her": {}, "them": {}, "you": {},
	"for": {}, "and": {}, "then": {}, "also": {}, "while": {}, "up": {},
	"hundred": {}, "thousand": {}, "net": {}, "out": {}, "it": {},
}

// CorrectorOption is a functional option for configuring a [Corrector].
type CorrectorOption func(*Corrector)

// WithPhoneticThreshold sets the minimum Jaro-Winkler score required for a
// phonetically matched contact to be accepted. Default: 0.70.
func WithPhoneticThreshold(t float64) CorrectorOption {
	return func(c *Corrector) { c.phoneticThreshold = t }
}

// WithFuzzyThreshold sets the minimum Jaro-Winkler score required when no
// phonetic candidate exists and pure string similarity is used. Default: 0.85.
func WithFuzzyThreshold(t float64) CorrectorOption {
	return func(c *Corrector) { c.fuzzyThreshold = t }
}

// Corrector rewrites near-miss contact names in a transcript before it
// reaches the grammar. Speech-to-text frequently mangles proper nouns
// ("a leash a" for "Alicia"); the corrector aligns such spans with the
// contact directory using Double Metaphone candidate filtering and
// Jaro-Winkler ranking.
//
// Only alphabetic tokens are ever rewritten, so numeric amounts and
// currency markers pass through untouched. Corrector is read-only after
// construction and safe for concurrent use.
type Corrector struct {
	phoneticThreshold float64
	fuzzyThreshold    float64
}

// NewCorrector returns a Corrector configured with the supplied options.
func NewCorrector(opts ...CorrectorOption) *Corrector {
	c := &Corrector{
		phoneticThreshold: defaultPhoneticThreshold,
		fuzzyThreshold:    defaultFuzzyThreshold,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Correct returns text with misheard contact names replaced by their
// directory spelling. Spans of two tokens are tried before single tokens so
// multi-word names ("Alice Smith") win over their components. Tokens that
// already spell a contact exactly, grammar keywords, and non-alphabetic
// tokens are left alone.
func (c *Corrector) Correct(text string, contacts []string) string {
	if len(contacts) == 0 || strings.TrimSpace(text) == "" {
		return text
	}

	tokens := strings.Fields(text)
	out := make([]string, 0, len(tokens))

	for i := 0; i < len(tokens); i++ {
		// Bigram first: a two-token span may be one spoken name.
		if i+1 < len(tokens) && c.correctable(tokens[i], contacts) && c.correctable(tokens[i+1], contacts) {
			span := tokens[i] + " " + tokens[i+1]
			if best, ok := c.match(span, contacts); ok {
				out = append(out, best)
				i++
				continue
			}
		}
		if c.correctable(tokens[i], contacts) {
			if best, ok := c.match(tokens[i], contacts); ok {
				out = append(out, best)
				continue
			}
		}
		out = append(out, tokens[i])
	}

	return strings.Join(out, " ")
}

// correctable reports whether tok is a candidate for rewriting: alphabetic,
// not a grammar keyword, not a number word, and not already an exact
// contact token.
func (c *Corrector) correctable(tok string, contacts []string) bool {
	trimmed := strings.Trim(tok, ",.;:!?")
	if trimmed != tok {
		// Punctuation-bearing tokens bound clauses; leave them alone.
		return false
	}
	lower := strings.ToLower(tok)
	if _, keyword := grammarWords[lower]; keyword {
		return false
	}
	for _, r := range lower {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	for _, contact := range contacts {
		for _, ct := range strings.Fields(strings.ToLower(contact)) {
			if ct == lower {
				return false
			}
		}
	}
	return len(lower) >= 3
}

// match finds the contact most phonetically similar to span, if any.
func (c *Corrector) match(span string, contacts []string) (string, bool) {
	spanLower := strings.ToLower(span)
	spanCodes := metaphoneCodes(strings.Fields(spanLower))

	var (
		bestName     string
		bestScore    float64
		bestPhonetic bool
	)

	for _, contact := range contacts {
		contactLower := strings.ToLower(strings.TrimSpace(contact))
		if contactLower == "" {
			continue
		}
		contactTokens := strings.Fields(contactLower)

		phonetic := codesOverlap(spanCodes, metaphoneCodes(contactTokens))
		score := bestSimilarity(spanLower, contactLower, contactTokens)

		if phonetic {
			if score >= c.phoneticThreshold && (!bestPhonetic || score > bestScore) {
				bestName, bestScore, bestPhonetic = contact, score, true
			}
		} else if !bestPhonetic && score >= c.fuzzyThreshold && score > bestScore {
			bestName, bestScore = contact, score
		}
	}

	return bestName, bestName != ""
}

// metaphoneCodes returns the union of Double Metaphone codes for tokens.
func metaphoneCodes(tokens []string) map[string]struct{} {
	codes := make(map[string]struct{}, len(tokens)*2)
	for _, t := range tokens {
		p, s := matchr.DoubleMetaphone(t)
		if p != "" {
			codes[p] = struct{}{}
		}
		if s != "" {
			codes[s] = struct{}{}
		}
	}
	return codes
}

func codesOverlap(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for code := range a {
		if _, ok := b[code]; ok {
			return true
		}
	}
	return false
}

// bestSimilarity is the highest Jaro-Winkler score between the span and the
// contact across full-string, space-stripped, and pairwise-token comparisons.
func bestSimilarity(span, contact string, contactTokens []string) float64 {
	score := matchr.JaroWinkler(span, contact, false)

	spanTokens := strings.Fields(span)
	if len(spanTokens) > 1 || len(contactTokens) > 1 {
		if s := matchr.JaroWinkler(strings.Join(spanTokens, ""), strings.Join(contactTokens, ""), false); s > score {
			score = s
		}
	}

	for _, st := range spanTokens {
		for _, ct := range contactTokens {
			if s := matchr.JaroWinkler(st, ct, false); s > score {
				score = s
			}
		}
	}
	return score
}
