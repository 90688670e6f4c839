package ledger

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tallyvox/tallyvox/pkg/money"
)

// Compile-time assertion that MemStore satisfies the Store interface.
var _ Store = (*MemStore)(nil)

// MemStore is a thread-safe, in-memory implementation of [Store].
// It is suitable for single-process use and testing.
type MemStore struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewMemStore returns an initialised [MemStore].
func NewMemStore() *MemStore {
	return &MemStore{}
}

// Add implements [Store.Add].
func (s *MemStore) Add(ctx context.Context, entry Entry) (Entry, error) {
	if entry.ID == "" {
		id, err := generateID()
		if err != nil {
			return Entry{}, fmt.Errorf("ledger: generate id: %w", err)
		}
		entry.ID = id
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	s.entries = append(s.entries, entry)
	s.mu.Unlock()
	return entry, nil
}

// List implements [Store.List].
func (s *MemStore) List(ctx context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

// OpenBalances implements [Store.OpenBalances].
func (s *MemStore) OpenBalances(ctx context.Context) (map[string]money.Amount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	balances := make(map[string]money.Amount)
	for _, e := range s.entries {
		if e.Settled {
			continue
		}
		applyBalance(balances, e)
	}
	return balances, nil
}

// Settle implements [Store.Settle].
func (s *MemStore) Settle(ctx context.Context, counterparty string) (money.Amount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var net money.Amount
	found := false
	for i := range s.entries {
		e := &s.entries[i]
		if e.Settled || !strings.EqualFold(e.Counterparty(), counterparty) {
			continue
		}
		if e.Creditor == Me {
			net = net.Add(e.Amount)
		} else if e.Debtor == Me {
			net = net.Sub(e.Amount)
		} else {
			continue
		}
		e.Settled = true
		found = true
	}
	if !found {
		return 0, ErrNoOpenBalance
	}
	return net, nil
}

// applyBalance folds one entry into the per-counterparty balance map.
// Entries between two third parties are skipped.
func applyBalance(balances map[string]money.Amount, e Entry) {
	switch {
	case e.Creditor == Me && e.Debtor != Me:
		balances[e.Debtor] = balances[e.Debtor].Add(e.Amount)
	case e.Debtor == Me && e.Creditor != Me:
		balances[e.Creditor] = balances[e.Creditor].Sub(e.Amount)
	}
}

// generateID returns a random 16-hex-character identifier.
func generateID() (string, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
