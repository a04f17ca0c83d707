/*
cache.go - Write-through replay cache

PURPOSE:
  Serving an account history should not require replaying every account on
  each request. ReplayCache mirrors the Record Store's records and keeps the
  replayed history of each account until a write touches that account.

INVALIDATION:
  PutTransaction:    accounts touched by the previous and the new version
  RemoveTransaction: accounts touched by the removed version
  PutAccount:        that account (opening balance may have changed)
  RemoveAccount:     that account
  Reset:             everything

  The cache does not resolve display names. A write that changes which
  references resolve (a new account, a renamed or removed display name)
  must be followed by Reset with a fresh store snapshot.

  Histories are recomputed lazily with History over the cache's current
  records, so a cached result always equals a fresh replay of Snapshot().
  The cache is an optimization only; dropping it never changes a result.

CONCURRENCY:
  Safe for concurrent use. The hosting API writes through it after the
  store accepted a write.
*/
package books

import (
	"sync"

	"github.com/shopspring/decimal"
)

// ReplayCache holds a copy of the records and per-account replay results.
type ReplayCache struct {
	mu        sync.Mutex
	accounts  []Account
	txs       []Transaction
	histories map[AccountID][]HistoryEntry
}

// NewReplayCache seeds a cache from a snapshot.
func NewReplayCache(snap Snapshot) *ReplayCache {
	c := &ReplayCache{}
	c.Reset(snap)
	return c
}

// Reset replaces every record and drops all cached histories.
func (c *ReplayCache) Reset(snap Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accounts = append([]Account(nil), snap.Accounts...)
	c.txs = append([]Transaction(nil), snap.Transactions...)
	c.histories = make(map[AccountID][]HistoryEntry)
}

// Snapshot returns a copy of the cached records.
func (c *ReplayCache) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Accounts:     append([]Account(nil), c.accounts...),
		Transactions: append([]Transaction(nil), c.txs...),
	}
}

// PutAccount inserts or replaces an account, keeping its position.
func (c *ReplayCache) PutAccount(a Account) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.histories, a.ID)
	for i := range c.accounts {
		if c.accounts[i].ID == a.ID {
			c.accounts[i] = a
			return
		}
	}
	c.accounts = append(c.accounts, a)
}

// RemoveAccount drops an account. Its history falls back to a zero opening balance.
func (c *ReplayCache) RemoveAccount(id AccountID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.histories, id)
	for i := range c.accounts {
		if c.accounts[i].ID == id {
			c.accounts = append(c.accounts[:i], c.accounts[i+1:]...)
			return
		}
	}
}

// PutTransaction inserts or replaces a transaction, keeping its position.
func (c *ReplayCache) PutTransaction(tx Transaction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidate(tx.Accounts())
	for i := range c.txs {
		if c.txs[i].ID == tx.ID {
			c.invalidate(c.txs[i].Accounts())
			c.txs[i] = tx
			return
		}
	}
	c.txs = append(c.txs, tx)
}

// RemoveTransaction drops a transaction and reports whether it existed.
func (c *ReplayCache) RemoveTransaction(id TransactionID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.txs {
		if c.txs[i].ID == id {
			c.invalidate(c.txs[i].Accounts())
			c.txs = append(c.txs[:i], c.txs[i+1:]...)
			return true
		}
	}
	return false
}

func (c *ReplayCache) invalidate(ids []AccountID) {
	for _, id := range ids {
		delete(c.histories, id)
	}
}

// History returns the chronological replay of an account, computing it on a miss.
func (c *ReplayCache) History(id AccountID) []HistoryEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.histories[id]
	if !ok {
		h = History(id, c.openingLocked(id), c.txs)
		c.histories[id] = h
	}
	out := make([]HistoryEntry, len(h))
	copy(out, h)
	return out
}

// RunningBalances is the cached equivalent of the package-level RunningBalances.
func (c *ReplayCache) RunningBalances(id AccountID) map[TransactionID]RunningBalance {
	entries := c.History(id)
	out := make(map[TransactionID]RunningBalance, len(entries))
	for _, e := range entries {
		out[e.Transaction.ID] = e.Balance
	}
	return out
}

// Cached reports whether the account's history is currently cached.
func (c *ReplayCache) Cached(id AccountID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.histories[id]
	return ok
}

func (c *ReplayCache) openingLocked(id AccountID) decimal.Decimal {
	for _, a := range c.accounts {
		if a.ID == id {
			return a.OpeningBalance
		}
	}
	return decimal.Zero
}
