// Package nlu implements deterministic natural-language understanding for
// ledger commands: utterance complexity scoring, exact amount extraction,
// the two-tier grammar (strict and permissive), and the routing pipeline
// that decides which tier handles a transcript.
package nlu

import (
	"strings"
	"unicode"
)

// DefaultCloudThreshold is the complexity score at or above which a
// transcript becomes eligible for the permissive cloud-fallback grammar.
const DefaultCloudThreshold = 26

// conjunctions are counted as substring occurrences, not whole words. A word
// like "thousand" therefore contributes a hit for "and". This inflation is
// deliberate inherited behaviour: long compound utterances score higher even
// when the conjunction is buried inside another word.
var conjunctions = []string{"and", "then", "after", "also", "while"}

// ComplexityScore estimates how hard an utterance is to parse:
//
//	score = wordCount + 4·conjunctionHits + 2·punctuationCount
//
// where a word is a maximal run of letters or digits, conjunction hits are
// substring occurrences of "and", "then", "after", "also", "while", and
// punctuation counts the characters ',', ';', ':'. The score is always
// non-negative and grows monotonically with added words, conjunctions, or
// punctuation.
func ComplexityScore(text string) int {
	lower := strings.ToLower(text)

	score := WordCount(lower)
	for _, c := range conjunctions {
		score += 4 * strings.Count(lower, c)
	}
	for _, r := range lower {
		switch r {
		case ',', ';', ':':
			score += 2
		}
	}
	return score
}

// WordCount returns the number of maximal letter/digit runs in text.
func WordCount(text string) int {
	count := 0
	inWord := false
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if !inWord {
				count++
				inWord = true
			}
		} else {
			inWord = false
		}
	}
	return count
}

// ShouldUseCloud reports whether the utterance's complexity score reaches
// [DefaultCloudThreshold].
func ShouldUseCloud(text string) bool {
	return ComplexityScore(text) >= DefaultCloudThreshold
}
