package dialogue

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/tallyvox/tallyvox/internal/ledger"
	"github.com/tallyvox/tallyvox/internal/resolve"
	"github.com/tallyvox/tallyvox/pkg/money"
)

// Settlement phrasings, tried in order. Target captures are restricted to
// name characters so that expense sentences like "alice paid 30 for dinner"
// never match.
var settlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^settle up with ([a-z' -]+)$`),
	regexp.MustCompile(`^settle (?:up )?(?:with )?([a-z' -]+)$`),
	regexp.MustCompile(`^mark ([a-z' -]+?) (?:as )?paid$`),
	regexp.MustCompile(`^pay (?:back )?([a-z' -]+)$`),
	regexp.MustCompile(`^(?:i )?paid (?:back )?([a-z' -]+)$`),
}

var settleBare = map[string]struct{}{
	"settle": {}, "settle up": {}, "mark paid": {},
	"paid": {}, "i paid": {}, "pay back": {},
}

// settleIntent reports whether the normalized utterance asks to settle a
// balance, and with whom. An empty target means "pick one for me".
func settleIntent(norm string) (target string, ok bool) {
	if _, bare := settleBare[norm]; bare {
		return "", true
	}
	for _, re := range settlePatterns {
		if m := re.FindStringSubmatch(norm); m != nil {
			return strings.TrimSpace(m[1]), true
		}
	}
	return "", false
}

// handleSettle resolves a settlement request. Explicit targets go through
// name resolution; a bare request picks the most pressing open balance,
// preferring debts the user owes.
func (m *Manager) handleSettle(ctx context.Context, sess *Session, target string, names []string) (Response, error) {
	if target == "" {
		balances, err := m.store.OpenBalances(ctx)
		if err != nil {
			return Response{}, fmt.Errorf("dialogue: open balances: %w", err)
		}
		pick := pickSettleTarget(balances)
		if pick == "" {
			return info(allSettled), nil
		}
		return settle(pick), nil
	}

	res := resolve.ResolveName(target, names, sess.lastCounterparty)
	switch res.Kind {
	case resolve.Ambiguous:
		sess.pending = &PendingDisambiguation{
			Slot:       SlotSettleTarget,
			RawName:    target,
			Candidates: res.Candidates,
		}
		return ask(disambiguationQuestion(SlotSettleTarget, res.Candidates)), nil
	case resolve.NotFound:
		return info(noOpenBalance(resolve.NormalizeName(target, sess.lastCounterparty))), nil
	}

	if res.Name == ledger.Me {
		return info("You can't settle up with yourself."), nil
	}
	return m.settleResolved(ctx, sess, res.Name)
}

// settleResolved checks that the named counterparty actually has open
// entries before emitting the settlement. A zero net still settles: the
// offsetting entries are cleared and the reply reports being even.
func (m *Manager) settleResolved(ctx context.Context, sess *Session, name string) (Response, error) {
	balances, err := m.store.OpenBalances(ctx)
	if err != nil {
		return Response{}, fmt.Errorf("dialogue: open balances: %w", err)
	}
	for who := range balances {
		if strings.EqualFold(who, name) {
			return settle(who), nil
		}
	}
	return info(noOpenBalance(name)), nil
}

// pickSettleTarget chooses a counterparty for a bare settlement request:
// the alphabetically first name the user owes, else the alphabetically
// first name that owes the user. Zero balances are skipped.
func pickSettleTarget(balances map[string]money.Amount) string {
	keys := make([]string, 0, len(balances))
	for k := range balances {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if balances[k] < 0 {
			return k
		}
	}
	for _, k := range keys {
		if balances[k] > 0 {
			return k
		}
	}
	return ""
}

func noOpenBalance(name string) string {
	return fmt.Sprintf("No open balance found for %s.", name)
}
