package nlu

import (
	"regexp"
	"strings"

	"github.com/tallyvox/tallyvox/pkg/money"
)

// numericAmountRe matches an optional currency marker ("$", "US$", "usd")
// followed by digits with an optional 1–2 digit fraction, anywhere in the
// text.
var numericAmountRe = regexp.MustCompile(`(?i)(?:us\$|usd\s*|\$)?\s*(\d+)(?:\.(\d{1,2}))?`)

// onesWords maps spelled-out values 0–19.
var onesWords = map[string]int64{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4,
	"five": 5, "six": 6, "seven": 7, "eight": 8, "nine": 9,
	"ten": 10, "eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
	"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
}

// tensWords maps spelled-out multiples of ten.
var tensWords = map[string]int64{
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

// ParseFlexibleAmount extracts a currency amount from text.
//
// The numeric form is tried first: digits with an optional fraction and an
// optional currency marker. When no numeric form is present, a spelled-out
// number ("two hundred fifty") is accumulated word by word; parsing stops at
// the first non-number token once at least one number word has been read.
//
// The two paths have different acceptance rules, kept as-is from the original
// behaviour: the numeric path accepts zero, while the spelled-out path
// requires a strictly positive result.
func ParseFlexibleAmount(text string) (money.Amount, bool) {
	if m := numericAmountRe.FindStringSubmatch(text); m != nil {
		raw := m[1]
		if m[2] != "" {
			raw += "." + m[2]
		}
		amt, err := money.ParseDecimal(raw)
		if err != nil {
			return 0, false
		}
		return amt, true
	}
	return parseSpelledAmount(text)
}

// parseSpelledAmount accumulates spelled-out number words into a value.
// "hundred" multiplies the running accumulator (only when it is non-zero);
// "thousand" flushes accumulator×1000 into the total and resets it.
func parseSpelledAmount(text string) (money.Amount, bool) {
	var total, current int64
	started := false

	for _, tok := range strings.Fields(strings.ToLower(text)) {
		tok = strings.Trim(tok, ",.;:!?")
		switch {
		case tok == "hundred":
			if current != 0 {
				current *= 100
			}
			started = true
		case tok == "thousand":
			total += current * 1000
			current = 0
			started = true
		default:
			if v, ok := onesWords[tok]; ok {
				current += v
				started = true
			} else if v, ok := tensWords[tok]; ok {
				current += v
				started = true
			} else if started {
				// First non-number token after a number word ends the run.
				return finishSpelled(total + current)
			}
		}
	}

	if !started {
		return 0, false
	}
	return finishSpelled(total + current)
}

func finishSpelled(units int64) (money.Amount, bool) {
	if units <= 0 {
		return 0, false
	}
	return money.FromUnits(units), true
}

// isNumberToken reports whether tok can begin an amount: a numeric form with
// an optional currency marker, or a spelled-out number word. Used by the
// grammar extractors to find the boundary between a name and the amount that
// follows it.
func isNumberToken(tok string) bool {
	if tok == "" {
		return false
	}
	lower := strings.ToLower(tok)
	if _, ok := onesWords[lower]; ok {
		return true
	}
	if _, ok := tensWords[lower]; ok {
		return true
	}
	trimmed := strings.TrimPrefix(strings.TrimPrefix(strings.TrimPrefix(lower, "us$"), "usd"), "$")
	if trimmed == "" {
		// A bare currency marker starts an amount ("$ 20").
		return lower == "$" || lower == "usd" || lower == "us$"
	}
	return trimmed[0] >= '0' && trimmed[0] <= '9'
}
