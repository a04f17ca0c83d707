/*
replay.go - Chronological replay of running balances

PURPOSE:
  Produces the balance of an account immediately before and after each
  transaction, in chronological order. Two entry points:

  RunningBalances:    one account, only the transactions touching it
  AllRunningBalances: every tracked account in one globally sorted pass

ORDERING:
  Transactions are stable-sorted ascending by (Date, Time) using plain string
  comparison on zero-padded ISO components. Ties keep the input order, so
  the same snapshot always replays the same way.

WHY A SINGLE PASS FOR ALL ACCOUNTS?
  A transaction that moves two accounts must be applied to both at the same
  position of the global order used for display. Replaying each account on
  its own and merging afterwards can disagree with that order when several
  transactions share a timestamp.

RESTARTABILITY:
  Nothing is memoized here. Every call folds from the given opening balance
  over the given snapshot; calling twice yields identical results.

SEE ALSO:
  - delta.go: The per-step increment
  - cache.go: Optional write-through cache over RunningBalances
*/
package books

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ORDERING
// =============================================================================

// SortChronologically returns a stable-sorted copy of txs. The input is not modified.
func SortChronologically(txs []Transaction) []Transaction {
	sorted := make([]Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].At.Before(sorted[j].At)
	})
	return sorted
}

// TransactionsFor returns the transactions touching account, in input order.
func TransactionsFor(account AccountID, txs []Transaction) []Transaction {
	var out []Transaction
	for _, tx := range txs {
		if tx.Touches(account) {
			out = append(out, tx)
		}
	}
	return out
}

// =============================================================================
// SINGLE ACCOUNT REPLAY
// =============================================================================

// HistoryEntry is one step of an account's chronological replay.
type HistoryEntry struct {
	Transaction Transaction
	Delta       decimal.Decimal
	Balance     RunningBalance
}

// History replays the transactions touching account in chronological order,
// starting from opening. Reported balances are normalized; the carried running
// total is not.
func History(account AccountID, opening decimal.Decimal, txs []Transaction) []HistoryEntry {
	ordered := SortChronologically(TransactionsFor(account, txs))
	entries := make([]HistoryEntry, 0, len(ordered))

	running := opening
	for _, tx := range ordered {
		delta := Delta(tx, account)
		next := running.Add(delta)
		entries = append(entries, HistoryEntry{
			Transaction: tx,
			Delta:       delta,
			Balance:     RunningBalance{Before: Normalize(running), After: Normalize(next)},
		})
		running = next
	}
	return entries
}

// RunningBalances returns the before/after balance of account for every
// transaction touching it, keyed by transaction identity.
func RunningBalances(account AccountID, opening decimal.Decimal, txs []Transaction) map[TransactionID]RunningBalance {
	entries := History(account, opening, txs)
	out := make(map[TransactionID]RunningBalance, len(entries))
	for _, e := range entries {
		out[e.Transaction.ID] = e.Balance
	}
	return out
}

// FinalBalance returns the After of the last replayed step, or the normalized
// opening balance when no transaction touches the account.
func FinalBalance(entries []HistoryEntry, opening decimal.Decimal) decimal.Decimal {
	if len(entries) == 0 {
		return Normalize(opening)
	}
	return entries[len(entries)-1].Balance.After
}

// =============================================================================
// ALL ACCOUNTS REPLAY
// =============================================================================

// AllRunningBalances replays every transaction once in global chronological
// order, keeping one running total per account seeded from openings. For each
// transaction it updates the source, then the destination if different, then
// the effective refund target if different from both. Accounts missing from
// openings are skipped.
func AllRunningBalances(openings map[AccountID]decimal.Decimal, txs []Transaction) BalanceSnapshot {
	running := make(map[AccountID]decimal.Decimal, len(openings))
	for id, opening := range openings {
		running[id] = opening
	}

	out := make(BalanceSnapshot)
	for _, tx := range SortChronologically(txs) {
		entry := make(map[AccountID]RunningBalance)
		for _, id := range tx.Accounts() {
			current, tracked := running[id]
			if !tracked {
				continue
			}
			next := current.Add(Delta(tx, id))
			entry[id] = RunningBalance{Before: Normalize(current), After: Normalize(next)}
			running[id] = next
		}
		out[tx.ID] = entry
	}
	return out
}

// LedgerRow is one transaction of the all-accounts replay, in display order.
type LedgerRow struct {
	Transaction Transaction
	Balances    map[AccountID]RunningBalance
}

// Ledger returns AllRunningBalances as an ordered list of rows.
func Ledger(openings map[AccountID]decimal.Decimal, txs []Transaction) []LedgerRow {
	snapshot := AllRunningBalances(openings, txs)
	ordered := SortChronologically(txs)
	rows := make([]LedgerRow, 0, len(ordered))
	for _, tx := range ordered {
		rows = append(rows, LedgerRow{Transaction: tx, Balances: snapshot[tx.ID]})
	}
	return rows
}
