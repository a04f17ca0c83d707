package books_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/warp/bookkeeping/books"
)

// =============================================================================
// DELTA TABLE
// =============================================================================

func TestDelta_Table(t *testing.T) {
	tests := []struct {
		name    string
		tx      books.Transaction
		account books.AccountID
		want    string
	}{
		{"income to destination", income("t", "2025-01-01", "300", "checking"), "checking", "300"},
		{"income unrelated account", income("t", "2025-01-01", "300", "checking"), "savings", "0"},
		{
			"income falls back to source",
			books.Transaction{ID: "t", Type: books.TxIncome, Amount: dec("12"), Source: "wallet"},
			"wallet", "12",
		},
		{"expense source without refund", expense("t", "2025-01-01", "200", "0", "checking"), "checking", "-200"},
		{"expense source refunded to itself", expense("t", "2025-01-01", "200", "50", "checking"), "checking", "-150"},
		{"repayment source only", repayment("t", "2025-01-01", "70", "5", "checking", "visa"), "checking", "-65"},
		{"repayment destination only", repayment("t", "2025-01-01", "70", "5", "checking", "visa"), "visa", "70"},
		{"repayment to itself", repayment("t", "2025-01-01", "10", "2", "visa", "visa"), "visa", "2"},
		{"transfer source", transfer("t", "2025-01-01", "500", "checking", "savings"), "checking", "-500"},
		{"transfer destination", transfer("t", "2025-01-01", "500", "checking", "savings"), "savings", "500"},
		{"transfer to itself", transfer("t", "2025-01-01", "500", "checking", "checking"), "checking", "0"},
		{"transfer unrelated", transfer("t", "2025-01-01", "500", "checking", "savings"), "cash", "0"},
		{"empty account", transfer("t", "2025-01-01", "500", "checking", "savings"), "", "0"},
		{
			"unknown type",
			books.Transaction{ID: "t", Type: "gift", Amount: dec("5"), Source: "checking"},
			"checking", "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := books.Delta(tt.tx, tt.account)
			assert.True(t, decEqual(dec(tt.want), got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestDelta_RefundRedirection(t *testing.T) {
	// GIVEN: An expense of 100 from A with a refund of 30
	// WHEN: The refund is redirected to B
	// THEN: A loses 100 and B gains 30; without redirection A loses 70

	redirected := expense("t", "2025-01-01", "100", "30", "A")
	redirected.RefundTarget = "B"

	assert.True(t, decEqual(dec("-100"), books.Delta(redirected, "A")))
	assert.True(t, decEqual(dec("30"), books.Delta(redirected, "B")))

	plain := expense("t", "2025-01-01", "100", "30", "A")
	assert.True(t, decEqual(dec("-70"), books.Delta(plain, "A")))
	assert.True(t, decEqual(dec("0"), books.Delta(plain, "B")))
}

func TestDelta_SelfTransferNeutralRegardlessOfAmount(t *testing.T) {
	for _, amount := range []string{"0", "1", "999999.99"} {
		assert.True(t, books.Delta(transfer("t", "2025-01-01", amount, "x", "x"), "x").IsZero(), amount)
		assert.True(t, decEqual(dec("3"), books.Delta(repayment("t", "2025-01-01", amount, "3", "x", "x"), "x")), amount)
	}
}

func TestDelta_DataQualityViolationsDoNotPanic(t *testing.T) {
	// GIVEN: Values the boundary would reject
	// THEN: The delta is still computed arithmetically

	tx := repayment("t", "2025-01-01", "10", "25", "checking", "visa")
	assert.True(t, decEqual(dec("15"), books.Delta(tx, "checking")))

	neg := expense("t", "2025-01-01", "-20", "0", "checking")
	assert.True(t, decEqual(dec("20"), books.Delta(neg, "checking")))
}
