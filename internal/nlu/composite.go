package nlu

import (
	"regexp"
	"strings"
)

// clauseSplitRe separates a multi-clause utterance on punctuation and
// spoken conjunctions.
// The period is not a separator: it appears inside decimal amounts.
var clauseSplitRe = regexp.MustCompile(`[,;]|\s+and\s+|\s+then\s+|\s+also\s+|\s+after\s+|\s+while\s+`)

var (
	clauseOwesMeRe = regexp.MustCompile(`^(.+?)\s+owes\s+me\s+(.+)$`)
	clauseIOweRe   = regexp.MustCompile(`^(?:i|me)\s+owe\s+(.+)$`)
)

// ExtractBalances scans text for debt clauses of the forms "<X> owes me
// <amount>" and "(i|me) owe <X> <amount>", separated by conjunctions or
// punctuation. Names are returned raw (lower-case, pronouns unresolved);
// "me" marks the user's side. Clauses that fail the plausibility filter or
// carry no parseable amount are skipped.
func ExtractBalances(text string) []BalanceCommand {
	norm := Normalize(text)
	if norm == "" {
		return nil
	}

	var out []BalanceCommand
	for _, clause := range clauseSplitRe.Split(norm, -1) {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}

		if m := clauseOwesMeRe.FindStringSubmatch(clause); m != nil {
			debtor := compositeName(m[1])
			if debtor == "" {
				continue
			}
			if amt, _, ok := splitAmountNote(m[2]); ok {
				out = append(out, BalanceCommand{Creditor: "me", Debtor: debtor, Amount: amt})
			}
			continue
		}

		if m := clauseIOweRe.FindStringSubmatch(clause); m != nil {
			creditor, amt, _, ok := splitNameAmountNote(m[1])
			if !ok {
				continue
			}
			creditor = compositeName(creditor)
			if creditor == "" {
				continue
			}
			out = append(out, BalanceCommand{Creditor: creditor, Debtor: "me", Amount: amt})
		}
	}
	return out
}

// compositeName accepts a clause-level name capture: a plausible name, or a
// pronoun the dialogue layer resolves against its last-mentioned memo.
func compositeName(raw string) string {
	raw = strings.TrimSpace(raw)
	switch raw {
	case "him", "her", "them":
		return raw
	}
	return trimToName(raw)
}
