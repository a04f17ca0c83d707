/*
Package books provides the balance computation core of the bookkeeping engine.

PURPOSE:
  Given a snapshot of accounts (with opening balances) and transactions, this
  package computes each account's current balance, the chronological running
  balance of every account, and the net worth summary. Everything here is a
  pure function over an immutable snapshot: no I/O, no hidden state.

KEY CONCEPTS IN THIS FILE (types.go):
  - Account: A named bucket of money with an opening balance
  - Transaction: A single financial fact (income, expense, transfer, repayment)
  - RunningBalance: Balance of one account before/after one transaction
  - Snapshot: The (accounts, transactions) pair handed to every computation

DESIGN PRINCIPLES:
  1. Snapshot in, values out: re-invocation is the only refresh mechanism
  2. Precision: Uses decimal.Decimal, with epsilon zero-snapping on output
  3. Total functions: malformed input never panics, it yields a number
  4. Sign is derived: amounts on records are always face values

USAGE:
  snap := books.Snapshot{Accounts: accounts, Transactions: txs}
  balance := books.CurrentBalance(checking, snap.Transactions)
  ledger := books.AllRunningBalances(snap.OpeningBalances(), snap.Transactions)

SEE ALSO:
  - delta.go: Per-transaction, per-account signed effect
  - balance.go: Current balance aggregation and zero-snapping
  - replay.go: Chronological replay (single account and all accounts)
  - networth.go: Assets / liabilities summary
*/
package books

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type AccountID string
type TransactionID string

// =============================================================================
// ACCOUNT KIND - Categorical tag, open-ended at the record level
// =============================================================================

type Kind string

const (
	KindBank       Kind = "bank"
	KindCredit     Kind = "credit"
	KindWallet     Kind = "wallet"
	KindCash       Kind = "cash"
	KindInvestment Kind = "investment"
	KindPrepaid    Kind = "prepaid"
	KindOther      Kind = "other"
)

// KindOrder is the fixed display order for kind groups. KindOther is last.
var KindOrder = []Kind{
	KindBank,
	KindCredit,
	KindWallet,
	KindCash,
	KindInvestment,
	KindPrepaid,
	KindOther,
}

// ParseKind maps a record's kind tag to a known Kind. Unknown tags fall into KindOther.
func ParseKind(s string) Kind {
	k := Kind(s)
	if k.Known() {
		return k
	}
	return KindOther
}

// Known reports whether k is one of the fixed kinds.
func (k Kind) Known() bool {
	for _, known := range KindOrder {
		if k == known {
			return true
		}
	}
	return false
}

func (k Kind) rank() int {
	for i, known := range KindOrder {
		if k == known {
			return i
		}
	}
	return len(KindOrder) - 1
}

// =============================================================================
// ACCOUNT
// =============================================================================

// Account is a money bucket identified by an immutable ID.
//
// OpeningBalance must not be patched incrementally once transactions exist
// against the account: a change requires a full recomputation.
type Account struct {
	ID             AccountID
	DisplayName    string
	Kind           Kind
	OpeningBalance decimal.Decimal
	Currency       string
}

// Name returns the display name, falling back to the identity.
func (a Account) Name() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return string(a.ID)
}

// =============================================================================
// TRANSACTION TYPE - Closed enumeration
// =============================================================================

type TxType string

const (
	TxIncome    TxType = "income"
	TxExpense   TxType = "expense"
	TxTransfer  TxType = "transfer"
	TxRepayment TxType = "repayment"
)

// Valid reports whether t is one of the four transaction types.
func (t TxType) Valid() bool {
	switch t {
	case TxIncome, TxExpense, TxTransfer, TxRepayment:
		return true
	}
	return false
}

// ParseTxType returns the TxType named by s.
func ParseTxType(s string) (TxType, error) {
	t := TxType(s)
	if !t.Valid() {
		return "", &ValidationError{Field: "type", Code: "unknown_type", Message: "unknown transaction type " + s}
	}
	return t, nil
}

// =============================================================================
// TRANSACTION - One financial fact
// =============================================================================

// Transaction is an atomic, order-independent financial record.
// The set of transactions is the source of truth, not an append-only log.
//
// Amount, Discount and Refund are non-negative face values. Discount is only
// meaningful for repayments, Refund and RefundTarget only for expenses.
// An empty account reference means "not applicable".
type Transaction struct {
	ID           TransactionID
	At           Timestamp
	Type         TxType
	Amount       decimal.Decimal
	Discount     decimal.Decimal
	Refund       decimal.Decimal
	RefundTarget AccountID
	Source       AccountID
	Destination  AccountID
	Note         string
}

// EffectiveRefundTarget returns RefundTarget, or the paying account when unset.
func (t Transaction) EffectiveRefundTarget() AccountID {
	if t.RefundTarget != "" {
		return t.RefundTarget
	}
	return t.Source
}

// Touches reports whether the transaction references the account as source,
// destination or effective refund target.
func (t Transaction) Touches(account AccountID) bool {
	if account == "" {
		return false
	}
	if t.Source == account || t.Destination == account {
		return true
	}
	return t.Type == TxExpense && t.EffectiveRefundTarget() == account
}

// Accounts returns the distinct accounts the transaction references, in
// source, destination, refund target order.
func (t Transaction) Accounts() []AccountID {
	var out []AccountID
	add := func(id AccountID) {
		if id == "" {
			return
		}
		for _, seen := range out {
			if seen == id {
				return
			}
		}
		out = append(out, id)
	}
	add(t.Source)
	add(t.Destination)
	if t.Type == TxExpense {
		add(t.EffectiveRefundTarget())
	}
	return out
}

// =============================================================================
// RUNNING BALANCE - Engine output, never persisted
// =============================================================================

// RunningBalance is an account's balance immediately before and after a transaction.
type RunningBalance struct {
	Before decimal.Decimal
	After  decimal.Decimal
}

// BalanceSnapshot maps each transaction to the running balances of the accounts it touches.
type BalanceSnapshot map[TransactionID]map[AccountID]RunningBalance

// =============================================================================
// SNAPSHOT - Immutable input for one invocation
// =============================================================================

// Snapshot is the consistent (accounts, transactions) pair supplied by a RecordStore.
type Snapshot struct {
	Accounts     []Account
	Transactions []Transaction
}

// Account returns the account with the given identity.
func (s Snapshot) Account(id AccountID) (Account, bool) {
	for _, a := range s.Accounts {
		if a.ID == id {
			return a, true
		}
	}
	return Account{}, false
}

// OpeningBalances returns the opening balance of every account in the snapshot.
func (s Snapshot) OpeningBalances() map[AccountID]decimal.Decimal {
	out := make(map[AccountID]decimal.Decimal, len(s.Accounts))
	for _, a := range s.Accounts {
		out[a.ID] = a.OpeningBalance
	}
	return out
}

// Transaction returns the transaction with the given identity.
func (s Snapshot) Transaction(id TransactionID) (Transaction, bool) {
	for _, t := range s.Transactions {
		if t.ID == id {
			return t, true
		}
	}
	return Transaction{}, false
}
