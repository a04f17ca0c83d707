/*
Package sqlite provides a SQLite-backed implementation of books.RecordStore.

PURPOSE:
  Persists accounts and transactions and hands the engine consistent
  snapshots. The schema is deliberately flat: one row per record, monetary
  values stored as decimal TEXT so nothing is lost to REAL rounding.

UPSERT SEMANTICS:
  Records are keyed by identity. Saving an existing identity replaces the
  row in place (INSERT ... ON CONFLICT DO UPDATE), which keeps its rowid.
  Snapshots are read ORDER BY rowid, so the iteration order is the first
  insertion order and same-timestamp ties replay identically after updates.

KEY TABLES:
  accounts:     identity, display name, kind, opening balance, currency
  transactions: identity, date/time, type, amounts, account references

CONSISTENCY:
  Snapshot reads both tables inside one read-only transaction, so a
  concurrent write is either fully visible or not at all.

WAL MODE:
  File databases are opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  An in-memory database is pinned to one connection, since every
  connection to ":memory:" would otherwise see its own empty database.

USAGE:
  store, err := sqlite.New("./data/books.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  snap, err := store.Snapshot(ctx)

SEE ALSO:
  - books/store.go: Interface definition
  - books/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/bookkeeping/books"
)

// Store implements books.RecordStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL DEFAULT '',
		kind TEXT NOT NULL DEFAULT 'other',
		opening_balance TEXT NOT NULL DEFAULT '0',
		currency TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		tx_date TEXT NOT NULL,
		tx_time TEXT NOT NULL DEFAULT '',
		tx_type TEXT NOT NULL,
		amount TEXT NOT NULL DEFAULT '0',
		discount TEXT NOT NULL DEFAULT '0',
		refund TEXT NOT NULL DEFAULT '0',
		refund_target TEXT,
		source TEXT,
		destination TEXT,
		note TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Chronological replay order (hot path)
	CREATE INDEX IF NOT EXISTS idx_transactions_date
		ON transactions(tx_date, tx_time);

	-- Per-account lookups
	CREATE INDEX IF NOT EXISTS idx_transactions_source
		ON transactions(source) WHERE source IS NOT NULL;
	CREATE INDEX IF NOT EXISTS idx_transactions_destination
		ON transactions(destination) WHERE destination IS NOT NULL;
	CREATE INDEX IF NOT EXISTS idx_transactions_refund_target
		ON transactions(refund_target) WHERE refund_target IS NOT NULL;
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SNAPSHOT
// =============================================================================

// Snapshot reads every account and transaction in one read transaction and
// resolves display-name references to identities.
func (s *Store) Snapshot(ctx context.Context) (books.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return books.Snapshot{}, fmt.Errorf("failed to begin snapshot: %w", err)
	}
	defer tx.Rollback()

	accounts, err := queryAccounts(ctx, tx, `
		SELECT id, display_name, kind, opening_balance, currency
		FROM accounts ORDER BY rowid`)
	if err != nil {
		return books.Snapshot{}, err
	}
	txs, err := queryTransactions(ctx, tx, `
		SELECT id, tx_date, tx_time, tx_type, amount, discount, refund,
		       refund_target, source, destination, note
		FROM transactions ORDER BY rowid`)
	if err != nil {
		return books.Snapshot{}, err
	}

	return books.ResolveAliases(books.Snapshot{Accounts: accounts, Transactions: txs})
}

// =============================================================================
// ACCOUNTS
// =============================================================================

// SaveAccount creates or replaces an account.
func (s *Store) SaveAccount(ctx context.Context, a books.Account) error {
	if err := books.ValidateAccount(a); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveAccount(ctx, s.db, a)
}

func saveAccount(ctx context.Context, e execer, a books.Account) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := e.ExecContext(ctx, `
		INSERT INTO accounts (id, display_name, kind, opening_balance, currency, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			display_name = excluded.display_name,
			kind = excluded.kind,
			opening_balance = excluded.opening_balance,
			currency = excluded.currency,
			updated_at = excluded.updated_at
	`, string(a.ID), a.DisplayName, string(a.Kind), a.OpeningBalance.String(), a.Currency, now, now)
	if err != nil {
		return fmt.Errorf("failed to save account %s: %w", a.ID, err)
	}
	return nil
}

// GetAccount returns one account.
func (s *Store) GetAccount(ctx context.Context, id books.AccountID) (*books.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts, err := queryAccounts(ctx, s.db, `
		SELECT id, display_name, kind, opening_balance, currency
		FROM accounts WHERE id = ?`, string(id))
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, books.ErrAccountNotFound
	}
	return &accounts[0], nil
}

// DeleteAccount removes an account.
func (s *Store) DeleteAccount(ctx context.Context, id books.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("failed to delete account %s: %w", id, err)
	}
	return expectOneRow(res, books.ErrAccountNotFound)
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// SaveTransaction creates or replaces a transaction.
func (s *Store) SaveTransaction(ctx context.Context, tx books.Transaction) error {
	if tx.ID == "" {
		return &books.ValidationError{Field: "id", Code: "missing_id", Message: "transaction id is required"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveTransaction(ctx, s.db, tx)
}

func saveTransaction(ctx context.Context, e execer, tx books.Transaction) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := e.ExecContext(ctx, `
		INSERT INTO transactions (id, tx_date, tx_time, tx_type, amount, discount, refund,
			refund_target, source, destination, note, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			tx_date = excluded.tx_date,
			tx_time = excluded.tx_time,
			tx_type = excluded.tx_type,
			amount = excluded.amount,
			discount = excluded.discount,
			refund = excluded.refund,
			refund_target = excluded.refund_target,
			source = excluded.source,
			destination = excluded.destination,
			note = excluded.note,
			updated_at = excluded.updated_at
	`,
		string(tx.ID), tx.At.Date, tx.At.Time, string(tx.Type),
		tx.Amount.String(), tx.Discount.String(), tx.Refund.String(),
		nullString(string(tx.RefundTarget)), nullString(string(tx.Source)), nullString(string(tx.Destination)),
		nullString(tx.Note), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save transaction %s: %w", tx.ID, err)
	}
	return nil
}

// GetTransaction returns one transaction.
func (s *Store) GetTransaction(ctx context.Context, id books.TransactionID) (*books.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txs, err := queryTransactions(ctx, s.db, `
		SELECT id, tx_date, tx_time, tx_type, amount, discount, refund,
		       refund_target, source, destination, note
		FROM transactions WHERE id = ?`, string(id))
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, books.ErrTransactionNotFound
	}
	return &txs[0], nil
}

// DeleteTransaction removes a transaction.
func (s *Store) DeleteTransaction(ctx context.Context, id books.TransactionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", id, err)
	}
	return expectOneRow(res, books.ErrTransactionNotFound)
}

// =============================================================================
// BULK LOAD
// =============================================================================

// LoadSnapshot upserts every record of snap in one database transaction.
// Either all records are saved or none are.
func (s *Store) LoadSnapshot(ctx context.Context, snap books.Snapshot) error {
	for _, a := range snap.Accounts {
		if err := books.ValidateAccount(a); err != nil {
			return err
		}
	}
	for _, tx := range snap.Transactions {
		if tx.ID == "" {
			return &books.ValidationError{Field: "id", Code: "missing_id", Message: "transaction id is required"}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin load: %w", err)
	}
	defer dbTx.Rollback()

	for _, a := range snap.Accounts {
		if err := saveAccount(ctx, dbTx, a); err != nil {
			return err
		}
	}
	for _, tx := range snap.Transactions {
		if err := saveTransaction(ctx, dbTx, tx); err != nil {
			return err
		}
	}
	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit load: %w", err)
	}
	return nil
}

// Reset clears all data (for testing/demos).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"transactions", "accounts"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryAccounts(ctx context.Context, q querier, query string, args ...any) ([]books.Account, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var out []books.Account
	for rows.Next() {
		var (
			a                books.Account
			id, kind, opening string
		)
		if err := rows.Scan(&id, &a.DisplayName, &kind, &opening, &a.Currency); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		a.ID = books.AccountID(id)
		a.Kind = books.Kind(kind)
		if a.OpeningBalance, err = parseDecimal("opening_balance", opening); err != nil {
			return nil, fmt.Errorf("account %s: %w", id, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func queryTransactions(ctx context.Context, q querier, query string, args ...any) ([]books.Transaction, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var out []books.Transaction
	for rows.Next() {
		var (
			tx                       books.Transaction
			id, txType               string
			amount, discount, refund string
			refundTarget, source     sql.NullString
			destination, note        sql.NullString
		)
		if err := rows.Scan(&id, &tx.At.Date, &tx.At.Time, &txType, &amount, &discount, &refund,
			&refundTarget, &source, &destination, &note); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		tx.ID = books.TransactionID(id)
		tx.Type = books.TxType(txType)
		if tx.Amount, err = parseDecimal("amount", amount); err != nil {
			return nil, fmt.Errorf("transaction %s: %w", id, err)
		}
		if tx.Discount, err = parseDecimal("discount", discount); err != nil {
			return nil, fmt.Errorf("transaction %s: %w", id, err)
		}
		if tx.Refund, err = parseDecimal("refund", refund); err != nil {
			return nil, fmt.Errorf("transaction %s: %w", id, err)
		}
		tx.RefundTarget = books.AccountID(refundTarget.String)
		tx.Source = books.AccountID(source.String)
		tx.Destination = books.AccountID(destination.String)
		tx.Note = note.String
		out = append(out, tx)
	}
	return out, rows.Err()
}

func expectOneRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// parseDecimal reads a TEXT amount. An empty column is zero.
func parseDecimal(column, value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", column, value, err)
	}
	return d, nil
}
