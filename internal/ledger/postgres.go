package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tallyvox/tallyvox/pkg/money"
)

// Schema is the SQL DDL for the ledger_entries table. Execute it via
// [PostgresStore.Migrate] or apply it manually during deployment.
const Schema = `
CREATE TABLE IF NOT EXISTS ledger_entries (
    id           TEXT PRIMARY KEY,
    creditor     TEXT NOT NULL,
    debtor       TEXT NOT NULL,
    amount_cents BIGINT NOT NULL,
    note         TEXT NOT NULL DEFAULT '',
    settled      BOOLEAN NOT NULL DEFAULT FALSE,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_ledger_entries_creditor ON ledger_entries(lower(creditor));
CREATE INDEX IF NOT EXISTS idx_ledger_entries_debtor ON ledger_entries(lower(debtor));
`

// DB is the database interface used by [PostgresStore]. Both *pgxpool.Pool
// and *pgx.Conn satisfy this interface.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore is a [Store] backed by a PostgreSQL database. Amounts are
// persisted as integer cents.
type PostgresStore struct {
	db DB
}

// Compile-time interface check.
var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a [PostgresStore] using the given connection or
// pool. The caller is responsible for calling [PostgresStore.Migrate] before
// issuing queries.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate executes the [Schema] DDL, creating the ledger_entries table and
// indexes if they do not already exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("ledger: migrate: %w", err)
	}
	return nil
}

// Add implements [Store.Add].
func (s *PostgresStore) Add(ctx context.Context, entry Entry) (Entry, error) {
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

	_, err := s.db.Exec(ctx,
		`INSERT INTO ledger_entries (id, creditor, debtor, amount_cents, note, settled, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, entry.Creditor, entry.Debtor, entry.Amount.Cents(), entry.Note, entry.Settled, entry.CreatedAt,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("ledger: insert entry: %w", err)
	}
	return entry, nil
}

// List implements [Store.List].
func (s *PostgresStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, creditor, debtor, amount_cents, note, settled, created_at
		 FROM ledger_entries ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("ledger: list entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e     Entry
			cents int64
		)
		if err := rows.Scan(&e.ID, &e.Creditor, &e.Debtor, &cents, &e.Note, &e.Settled, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("ledger: scan entry: %w", err)
		}
		e.Amount = money.FromCents(cents)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger: iterate entries: %w", err)
	}
	return entries, nil
}

// OpenBalances implements [Store.OpenBalances].
func (s *PostgresStore) OpenBalances(ctx context.Context) (map[string]money.Amount, error) {
	rows, err := s.db.Query(ctx,
		`SELECT creditor, debtor, amount_cents
		 FROM ledger_entries
		 WHERE NOT settled AND (lower(creditor) = $1 OR lower(debtor) = $1)`,
		Me)
	if err != nil {
		return nil, fmt.Errorf("ledger: query open balances: %w", err)
	}
	defer rows.Close()

	balances := make(map[string]money.Amount)
	for rows.Next() {
		var (
			e     Entry
			cents int64
		)
		if err := rows.Scan(&e.Creditor, &e.Debtor, &cents); err != nil {
			return nil, fmt.Errorf("ledger: scan balance row: %w", err)
		}
		e.Amount = money.FromCents(cents)
		applyBalance(balances, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger: iterate balance rows: %w", err)
	}
	return balances, nil
}

// Settle implements [Store.Settle]. The update and the net computation run
// in one statement so concurrent settles cannot double-clear an entry.
func (s *PostgresStore) Settle(ctx context.Context, counterparty string) (money.Amount, error) {
	row := s.db.QueryRow(ctx,
		`WITH cleared AS (
		     UPDATE ledger_entries
		     SET settled = TRUE
		     WHERE NOT settled
		       AND ((lower(creditor) = $1 AND lower(debtor) = $2)
		         OR (lower(creditor) = $2 AND lower(debtor) = $1))
		     RETURNING creditor, amount_cents
		 )
		 SELECT count(*),
		        COALESCE(sum(CASE WHEN lower(creditor) = $1 THEN amount_cents ELSE -amount_cents END), 0)
		 FROM cleared`,
		Me, strings.ToLower(counterparty))

	var (
		count int64
		cents int64
	)
	if err := row.Scan(&count, &cents); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNoOpenBalance
		}
		return 0, fmt.Errorf("ledger: settle %q: %w", counterparty, err)
	}
	if count == 0 {
		return 0, ErrNoOpenBalance
	}
	return money.FromCents(cents), nil
}
