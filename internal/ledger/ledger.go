// Package ledger stores finalized bill entries and answers open-balance
// queries for settlement. It is the persistence collaborator behind the
// dialogue manager: understanding never writes here directly, the
// application layer does after a command is finalized.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/tallyvox/tallyvox/pkg/money"
)

// Me is the reserved participant name denoting the speaking user.
const Me = "me"

// ErrNoOpenBalance is returned by Settle when the counterparty has no
// outstanding entries.
var ErrNoOpenBalance = errors.New("ledger: no open balance")

// Entry is one recorded bill: Debtor owes Creditor the Amount. Either side
// may be [Me]; entries between two third parties are permitted but do not
// contribute to the user's balances.
type Entry struct {
	ID        string
	Creditor  string
	Debtor    string
	Amount    money.Amount
	Note      string
	CreatedAt time.Time

	// Settled marks the entry as cleared by a settlement.
	Settled bool
}

// Counterparty returns the non-[Me] participant, defaulting to the debtor
// when both sides are third parties.
func (e Entry) Counterparty() string {
	if e.Debtor != Me {
		return e.Debtor
	}
	return e.Creditor
}

// Store is the ledger persistence abstraction. Implementations must be safe
// for concurrent use.
type Store interface {
	// Add records a new entry. A missing ID is generated; a zero CreatedAt
	// is stamped with the current time.
	Add(ctx context.Context, entry Entry) (Entry, error)

	// List returns all entries, oldest first.
	List(ctx context.Context) ([]Entry, error)

	// OpenBalances returns the signed net balance per counterparty over all
	// unsettled entries involving the user. Positive means the counterparty
	// owes the user; negative means the user owes them. Counterparties whose
	// net is zero are included so "settled up" can be reported.
	OpenBalances(ctx context.Context) (map[string]money.Amount, error)

	// Settle marks every unsettled entry with the given counterparty
	// (case-insensitive) as settled and returns the net that was cleared.
	// Returns ErrNoOpenBalance when no such entries exist.
	Settle(ctx context.Context, counterparty string) (money.Amount, error)
}
