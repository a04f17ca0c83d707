/*
balance.go - Current balance aggregation

PURPOSE:
  Answers "how much is in this account right now?" as
  openingBalance + sum(Delta(t, account)) over every transaction.

KEY INSIGHT:
  Summation is commutative, so no ordering is needed here. That makes the
  aggregate an independent cross-check of the chronological replay: the
  final After of RunningBalances must equal CurrentBalance exactly.

ZERO-SNAPPING:
  Results whose magnitude is below Epsilon are reported as exact zero, so a
  balance of -0.0000001 (typically from float-derived inputs) is neither
  shown as "-0.00" nor classified as a liability. Only reported values are
  snapped; running totals are carried unsnapped so that both paths agree.

SEE ALSO:
  - replay.go: Chronological counterpart
  - networth.go: Classifies the snapped balances
*/
package books

import "github.com/shopspring/decimal"

// Epsilon is the magnitude below which a balance is reported as zero.
var Epsilon = decimal.New(1, -6)

// Normalize snaps values within Epsilon of zero to exact zero.
func Normalize(v decimal.Decimal) decimal.Decimal {
	if v.Abs().LessThan(Epsilon) {
		return decimal.Zero
	}
	return v
}

// CurrentBalance returns the account's opening balance plus every delta, normalized.
func CurrentBalance(account Account, txs []Transaction) decimal.Decimal {
	return Normalize(rawBalance(account.ID, account.OpeningBalance, txs))
}

func rawBalance(id AccountID, opening decimal.Decimal, txs []Transaction) decimal.Decimal {
	total := opening
	for _, tx := range txs {
		total = total.Add(Delta(tx, id))
	}
	return total
}

// CurrentBalances returns the current balance of every account in the snapshot.
func CurrentBalances(snap Snapshot) map[AccountID]decimal.Decimal {
	out := make(map[AccountID]decimal.Decimal, len(snap.Accounts))
	for _, a := range snap.Accounts {
		out[a.ID] = CurrentBalance(a, snap.Transactions)
	}
	return out
}

// BalanceOf returns the current balance of id. An identity absent from the
// snapshot's accounts has an implicit opening balance of zero.
func BalanceOf(snap Snapshot, id AccountID) decimal.Decimal {
	if a, ok := snap.Account(id); ok {
		return CurrentBalance(a, snap.Transactions)
	}
	return Normalize(rawBalance(id, decimal.Zero, snap.Transactions))
}
