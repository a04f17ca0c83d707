package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/bookkeeping/books"
	"github.com/warp/bookkeeping/factory"
)

const cardLedger = `
currency: USD
accounts:
  - id: checking
    name: Checking
    kind: bank
    opening_balance: "2000"
  - id: visa
    name: Visa
    kind: credit
  - id: wallet
    name: Wallet
    kind: wallet
    opening_balance: "40"
transactions:
  - id: laptop
    date: 2025-03-01
    type: expense
    amount: "100"
    refund: "30"
    refund_target: wallet
    source: visa
    note: New laptop
  - id: visa-payment
    date: 2025-03-15
    type: repayment
    amount: "70"
    discount: "5"
    source: checking
    destination: visa
  - id: visa-cashback
    date: 2025-03-20
    type: repayment
    amount: "10"
    discount: "2"
    source: visa
    destination: visa
`

func loadCardLedger(t *testing.T) books.Snapshot {
	t.Helper()
	books.DefaultCurrency = "USD"
	snap, err := factory.ParseLedger([]byte(cardLedger))
	require.NoError(t, err)
	return snap
}

func TestBalancesMarkdown(t *testing.T) {
	snap := loadCardLedger(t)

	out := BalancesMarkdown(snap.Accounts, snap.Transactions)

	assert.Contains(t, out, "Balances")
	assert.Contains(t, out, "$1,935.00")
	assert.Contains(t, out, "-$28.00")
	assert.Contains(t, out, "$70.00")
}

func TestHistoryMarkdown(t *testing.T) {
	snap := loadCardLedger(t)
	visa, ok := snap.Account("visa")
	require.True(t, ok)

	out := HistoryMarkdown(visa, books.History(visa.ID, visa.OpeningBalance, snap.Transactions))

	assert.Contains(t, out, "History for Visa")
	assert.Contains(t, out, "New laptop", "notes replace ids when present")
	assert.Contains(t, out, "visa-cashback")
	assert.Contains(t, out, "Current balance: -$28.00")
}

func TestLedgerMarkdown(t *testing.T) {
	snap := loadCardLedger(t)

	out := LedgerMarkdown(snap)

	assert.Contains(t, out, "Ledger")
	assert.Contains(t, out, "Wallet")
	assert.Contains(t, out, "$1,935.00")
}

func TestSummaryMarkdown(t *testing.T) {
	snap := loadCardLedger(t)

	out := SummaryMarkdown(snap)

	assert.Contains(t, out, "$1,977.00")
	assert.Contains(t, out, "$2,005.00")
	assert.Contains(t, out, "$28.00")
	assert.Contains(t, out, "bank")
	assert.Contains(t, out, "credit")
}

func TestProblemsMarkdown(t *testing.T) {
	out := ProblemsMarkdown("ledger.yaml", []error{
		errors.New("transactions[0]: amount must not be negative"),
		errors.New("accounts[1]: missing id"),
	})

	assert.Contains(t, out, "ledger.yaml: 2 invalid record(s)")
	assert.Contains(t, out, "amount must not be negative")
	assert.Contains(t, out, "missing id")
}

func TestFindAccount(t *testing.T) {
	snap := loadCardLedger(t)

	byID, err := findAccount(snap, "visa")
	require.NoError(t, err)
	assert.Equal(t, books.AccountID("visa"), byID.ID)

	byName, err := findAccount(snap, "Wallet")
	require.NoError(t, err)
	assert.Equal(t, books.AccountID("wallet"), byName.ID)

	_, err = findAccount(snap, "nope")
	assert.ErrorIs(t, err, books.ErrAccountNotFound)
}
