package nlu

import (
	"regexp"
	"strings"

	"github.com/tallyvox/tallyvox/pkg/money"
)

// Tier selects which pattern set a Parser carries.
type Tier string

const (
	// TierStrict is the on-device grammar: first-person patterns only.
	TierStrict Tier = "strict"

	// TierPermissive additionally matches third-party "X owes Y" statements
	// anywhere in the sentence.
	TierPermissive Tier = "permissive"
)

// Extraction is the result of a successful grammar match: raw slot values
// before entity resolution. "me" denotes the speaking user.
type Extraction struct {
	Creditor string
	Debtor   string
	Amount   money.Amount
	Note     string

	// Pattern is the name of the pattern that matched, for logging.
	Pattern string
}

// pattern pairs a compiled regex with the extractor that turns its submatches
// into an Extraction. Extractors return false when a capture fails the
// plausibility filter or the amount does not parse.
type pattern struct {
	name    string
	re      *regexp.Regexp
	extract func(m []string) (Extraction, bool)
}

// Parser is an ordered grammar: patterns are tried in fixed order and the
// first successful extraction wins. Parser is stateless and safe for
// concurrent use.
type Parser struct {
	tier     Tier
	patterns []pattern
}

// NewParser returns the grammar for the given tier.
func NewParser(tier Tier) *Parser {
	p := &Parser{tier: tier}

	owesMe := pattern{
		name: "owes-me",
		re:   regexp.MustCompile(`^(.+?)\s+owes\s+me\s+(.+)$`),
		extract: func(m []string) (Extraction, bool) {
			debtor := strings.TrimSpace(m[1])
			if !PlausibleName(debtor) {
				return Extraction{}, false
			}
			amt, note, ok := splitAmountNote(m[2])
			if !ok {
				return Extraction{}, false
			}
			return Extraction{Creditor: "me", Debtor: debtor, Amount: amt, Note: note, Pattern: "owes-me"}, true
		},
	}

	iOwe := pattern{
		name: "i-owe",
		re:   regexp.MustCompile(`^(?:i|me)\s+owe\s+(.+)$`),
		extract: func(m []string) (Extraction, bool) {
			creditor, amt, note, ok := splitNameAmountNote(m[1])
			if !ok || !PlausibleName(creditor) {
				return Extraction{}, false
			}
			return Extraction{Creditor: creditor, Debtor: "me", Amount: amt, Note: note, Pattern: "i-owe"}, true
		},
	}

	thirdParty := pattern{
		name: "third-party-owes",
		// Unanchored: leading text before the clause is ignored. The debtor
		// capture cannot cross punctuation, so a comma bounds it naturally.
		re: regexp.MustCompile(`([a-z'][a-z' -]*?)\s+owes\s+(.+)$`),
		extract: func(m []string) (Extraction, bool) {
			debtor := trimToName(m[1])
			if debtor == "" {
				return Extraction{}, false
			}
			creditor, amt, note, ok := splitNameAmountNote(m[2])
			if !ok || !PlausibleName(creditor) {
				return Extraction{}, false
			}
			return Extraction{Creditor: creditor, Debtor: debtor, Amount: amt, Note: note, Pattern: "third-party-owes"}, true
		},
	}

	paidFor := pattern{
		name: "paid-for",
		re:   regexp.MustCompile(`^(.+?)\s+paid\s+(.+?)\s+for\s+(.+)$`),
		extract: func(m []string) (Extraction, bool) {
			creditor := strings.TrimSpace(m[1])
			if !PlausibleName(creditor) {
				return Extraction{}, false
			}
			amt, ok := ParseFlexibleAmount(m[2])
			if !ok {
				return Extraction{}, false
			}
			debtorRaw, note, _ := strings.Cut(m[3], " for ")
			debtor := strings.TrimSpace(debtorRaw)
			if !PlausibleName(debtor) {
				return Extraction{}, false
			}
			return Extraction{Creditor: creditor, Debtor: debtor, Amount: amt, Note: strings.TrimSpace(note), Pattern: "paid-for"}, true
		},
	}

	p.patterns = append(p.patterns, owesMe, iOwe)
	if tier == TierPermissive {
		p.patterns = append(p.patterns, thirdParty)
	}
	p.patterns = append(p.patterns, paidFor)
	return p
}

// Tier returns the parser's grammar tier.
func (p *Parser) Tier() Tier {
	return p.tier
}

// Parse normalizes text and tries each pattern in order. It returns the
// first successful extraction, or false when no pattern matches or every
// match fails the plausibility filter.
func (p *Parser) Parse(text string) (Extraction, bool) {
	norm := Normalize(text)
	if norm == "" {
		return Extraction{}, false
	}
	for _, pat := range p.patterns {
		m := pat.re.FindStringSubmatch(norm)
		if m == nil {
			continue
		}
		if ex, ok := pat.extract(m); ok {
			return ex, true
		}
	}
	return Extraction{}, false
}

// Normalize trims the text, collapses internal whitespace, lower-cases it,
// and strips trailing sentence punctuation.
func Normalize(text string) string {
	norm := strings.Join(strings.Fields(text), " ")
	norm = strings.ToLower(norm)
	return strings.TrimRight(norm, ".!? ")
}

// splitAmountNote splits "<amount> [for <note>]" into its parts.
func splitAmountNote(rest string) (money.Amount, string, bool) {
	amtText, note, _ := strings.Cut(rest, " for ")
	amt, ok := ParseFlexibleAmount(amtText)
	if !ok {
		return 0, "", false
	}
	return amt, strings.TrimSpace(note), true
}

// splitNameAmountNote splits "<name> <amount> [for <note>]". The name/amount
// boundary is the first token that can begin an amount.
func splitNameAmountNote(rest string) (string, money.Amount, string, bool) {
	head, note, _ := strings.Cut(rest, " for ")

	tokens := strings.Fields(head)
	boundary := -1
	for i, tok := range tokens {
		if isNumberToken(tok) {
			boundary = i
			break
		}
	}
	if boundary <= 0 {
		// No amount found, or no name before it.
		return "", 0, "", false
	}

	name := strings.Join(tokens[:boundary], " ")
	amt, ok := ParseFlexibleAmount(strings.Join(tokens[boundary:], " "))
	if !ok {
		return "", 0, "", false
	}
	return name, amt, strings.TrimSpace(note), true
}
