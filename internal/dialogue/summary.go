package dialogue

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/tallyvox/tallyvox/internal/ledger"
	"github.com/tallyvox/tallyvox/internal/nlu"
	"github.com/tallyvox/tallyvox/internal/resolve"
	"github.com/tallyvox/tallyvox/pkg/money"
)

// summaryKeywords mark an utterance as asking for a netted consensus.
var summaryKeywords = []string{
	"net it out", "net out", "net them out", "settle up", "square up",
	"who owes", "balance", "summary", "consensus", "total",
}

func wantsSummary(norm string) bool {
	for _, kw := range summaryKeywords {
		if strings.Contains(norm, kw) {
			return true
		}
	}
	return false
}

// summarize nets the extracted balances from the user's perspective and
// replies with one line per counterparty, alphabetically. Nothing is
// written to the ledger and the running draft is left untouched.
func (m *Manager) summarize(sess *Session, clauses []nlu.BalanceCommand) Response {
	// net > 0: they owe the user; net < 0: the user owes them.
	net := make(map[string]money.Amount)
	for _, c := range clauses {
		debtor := resolve.NormalizeName(c.Debtor, sess.lastCounterparty)
		creditor := resolve.NormalizeName(c.Creditor, sess.lastCounterparty)
		if isUnresolvedPronoun(debtor) || isUnresolvedPronoun(creditor) {
			slog.Debug("dialogue: dropping clause with unresolved pronoun",
				"debtor", c.Debtor, "creditor", c.Creditor)
			continue
		}
		if strings.EqualFold(debtor, creditor) {
			continue
		}
		switch {
		case creditor == ledger.Me:
			net[debtor] = net[debtor].Add(c.Amount)
		case debtor == ledger.Me:
			net[creditor] = net[creditor].Sub(c.Amount)
		}
		// Balances strictly between third parties do not touch the
		// user's position and are omitted from the summary.
	}

	names := make([]string, 0, len(net))
	for name := range net {
		names = append(names, name)
	}
	sort.Strings(names)

	if len(names) == 0 {
		return info(allSettled)
	}

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, describeNet(name, net[name]))
	}
	return info(strings.Join(lines, " "))
}

// describeNet renders one consensus line for a counterparty.
func describeNet(name string, net money.Amount) string {
	switch {
	case net > 0:
		return name + " owes you " + net.String() + "."
	case net < 0:
		return "You owe " + name + " " + net.Neg().String() + "."
	default:
		return "You and " + name + " are settled up."
	}
}

func isUnresolvedPronoun(name string) bool {
	switch strings.ToLower(name) {
	case "him", "her", "them":
		return true
	}
	return false
}
