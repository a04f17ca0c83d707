/*
store.go - Record Store interface

PURPOSE:
  The Record Store is the external collaborator that owns accounts and
  transactions. The engine only ever sees what Snapshot returns: a
  consistent, read-only (accounts, transactions) pair per invocation.

UPSERT CONTRACT:
  Records are facts keyed by identity, not an append-only log:
  - Save*(): Create or replace the record with the same identity
  - Delete*(): Remove the record; ErrAccountNotFound / ErrTransactionNotFound
    when absent
  - Re-saving a record keeps its original position in the iteration order,
    so same-timestamp ties replay identically before and after an update

ALL OR NOTHING:
  Snapshot must never expose a partially applied write. Implementations take
  a read lock (memory) or a single query per table inside one read
  transaction (SQLite).

BULK LOADS:
  LoadSnapshot uses a store's own SnapshotLoader when it has one, so an
  import either lands completely or not at all.

IMPLEMENTATIONS:
  - books/store/memory.go: In-memory for tests and development
  - store/sqlite/sqlite.go: SQLite

SEE ALSO:
  - alias.go: Display-name resolution applied by implementations in Snapshot
  - cache.go: Write-through replay cache layered on top of a store
*/
package books

import "context"

// RecordStore supplies and persists accounts and transactions.
type RecordStore interface {
	// Snapshot returns every account and transaction, with account
	// references resolved to identities.
	Snapshot(ctx context.Context) (Snapshot, error)

	// SaveAccount creates or replaces an account.
	SaveAccount(ctx context.Context, a Account) error

	// DeleteAccount removes an account. Transactions referencing it are kept.
	DeleteAccount(ctx context.Context, id AccountID) error

	// SaveTransaction creates or replaces a transaction.
	SaveTransaction(ctx context.Context, tx Transaction) error

	// DeleteTransaction removes a transaction.
	DeleteTransaction(ctx context.Context, id TransactionID) error

	// Reset removes every record.
	Reset(ctx context.Context) error
}

// SnapshotLoader is implemented by stores that can save a whole snapshot
// atomically.
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context, snap Snapshot) error
}

// LoadSnapshot persists every record of snap into store, accounts first.
// Stores implementing SnapshotLoader apply it all or nothing; others are
// written record by record and may keep a prefix on failure.
func LoadSnapshot(ctx context.Context, store RecordStore, snap Snapshot) error {
	if loader, ok := store.(SnapshotLoader); ok {
		return loader.LoadSnapshot(ctx, snap)
	}
	for _, a := range snap.Accounts {
		if err := store.SaveAccount(ctx, a); err != nil {
			return err
		}
	}
	for _, tx := range snap.Transactions {
		if err := store.SaveTransaction(ctx, tx); err != nil {
			return err
		}
	}
	return nil
}
