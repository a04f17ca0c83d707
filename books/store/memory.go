// Package store provides RecordStore implementations.
package store

import (
	"context"
	"sync"

	"github.com/warp/bookkeeping/books"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory keeps records in insertion order. Replacing a record keeps its slot.
type Memory struct {
	mu           sync.RWMutex
	accounts     []books.Account
	transactions []books.Transaction
}

func NewMemory() *Memory {
	return &Memory{}
}

// Snapshot returns a copy of every record with account references resolved.
func (m *Memory) Snapshot(_ context.Context) (books.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return books.ResolveAliases(books.Snapshot{
		Accounts:     m.accounts,
		Transactions: m.transactions,
	})
}

func (m *Memory) SaveAccount(_ context.Context, a books.Account) error {
	if err := books.ValidateAccount(a); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putAccount(a)
	return nil
}

func (m *Memory) putAccount(a books.Account) {
	for i := range m.accounts {
		if m.accounts[i].ID == a.ID {
			m.accounts[i] = a
			return
		}
	}
	m.accounts = append(m.accounts, a)
}

func (m *Memory) DeleteAccount(_ context.Context, id books.AccountID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.accounts {
		if m.accounts[i].ID == id {
			m.accounts = append(m.accounts[:i], m.accounts[i+1:]...)
			return nil
		}
	}
	return books.ErrAccountNotFound
}

func (m *Memory) SaveTransaction(_ context.Context, tx books.Transaction) error {
	if tx.ID == "" {
		return &books.ValidationError{Field: "id", Code: "missing_id", Message: "transaction id is required"}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putTransaction(tx)
	return nil
}

func (m *Memory) putTransaction(tx books.Transaction) {
	for i := range m.transactions {
		if m.transactions[i].ID == tx.ID {
			m.transactions[i] = tx
			return
		}
	}
	m.transactions = append(m.transactions, tx)
}

// LoadSnapshot checks every record first, then upserts them all under one lock.
func (m *Memory) LoadSnapshot(_ context.Context, snap books.Snapshot) error {
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

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range snap.Accounts {
		m.putAccount(a)
	}
	for _, tx := range snap.Transactions {
		m.putTransaction(tx)
	}
	return nil
}

func (m *Memory) DeleteTransaction(_ context.Context, id books.TransactionID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.transactions {
		if m.transactions[i].ID == id {
			m.transactions = append(m.transactions[:i], m.transactions[i+1:]...)
			return nil
		}
	}
	return books.ErrTransactionNotFound
}

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts = nil
	m.transactions = nil
	return nil
}
