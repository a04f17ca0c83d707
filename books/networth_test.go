package books_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/bookkeeping/books"
)

// =============================================================================
// NET WORTH
// =============================================================================

func TestSummarize_PartitionsBySignNotKind(t *testing.T) {
	// GIVEN: A credit account with a positive balance and a bank account overdrawn
	// THEN: The credit account is an asset and the bank account a liability

	credit := books.Account{ID: "visa", Kind: books.KindCredit, OpeningBalance: dec("25")}
	bank := books.Account{ID: "bank", Kind: books.KindBank, OpeningBalance: dec("-75.50")}

	summary := books.Summarize([]books.Account{credit, bank}, nil)

	assert.True(t, decEqual(dec("25"), summary.Assets))
	assert.True(t, decEqual(dec("75.50"), summary.Liabilities))
	assert.True(t, decEqual(dec("-50.50"), summary.NetWorth))
}

func TestSummarize_CreditCardScenario(t *testing.T) {
	accounts := []books.Account{
		{ID: "checking", Kind: books.KindBank, OpeningBalance: dec("2000")},
		{ID: "visa", Kind: books.KindCredit, OpeningBalance: dec("0")},
		{ID: "wallet", Kind: books.KindWallet, OpeningBalance: dec("40")},
	}
	laptop := expense("laptop", "2025-03-01", "100", "30", "visa")
	laptop.RefundTarget = "wallet"
	txs := []books.Transaction{
		laptop,
		repayment("payment", "2025-03-15", "70", "5", "checking", "visa"),
		repayment("cashback", "2025-03-20", "10", "2", "visa", "visa"),
	}

	summary := books.Summarize(accounts, txs)

	assert.True(t, decEqual(dec("2005"), summary.Assets))
	assert.True(t, decEqual(dec("28"), summary.Liabilities))
	assert.True(t, decEqual(dec("1977"), summary.NetWorth))
}

func TestSummarize_DoesNotMutateAccounts(t *testing.T) {
	accounts := []books.Account{account("b", "1"), account("a", "-1")}
	before := append([]books.Account(nil), accounts...)

	books.Summarize(accounts, []books.Transaction{income("i", "2025-01-01", "5", "a")})

	assert.Equal(t, before, accounts)
}

func TestSummarize_Empty(t *testing.T) {
	summary := books.Summarize(nil, nil)
	assert.True(t, summary.Assets.IsZero())
	assert.True(t, summary.Liabilities.IsZero())
	assert.True(t, summary.NetWorth.IsZero())
}

// =============================================================================
// KIND GROUPS
// =============================================================================

func TestGroupByKind_FixedOrderUnknownLast(t *testing.T) {
	accounts := []books.Account{
		{ID: "jar", Kind: "piggy", OpeningBalance: dec("12.34")},
		{ID: "broker", Kind: books.KindInvestment, OpeningBalance: dec("100")},
		{ID: "bank-2", Kind: books.KindBank, OpeningBalance: dec("5")},
		{ID: "card", Kind: books.KindCredit, OpeningBalance: dec("-20")},
		{ID: "bank-1", Kind: books.KindBank, OpeningBalance: dec("10")},
	}

	groups := books.GroupByKind(accounts, nil)

	require.Len(t, groups, 4)
	assert.Equal(t, books.KindBank, groups[0].Kind)
	assert.Equal(t, books.KindCredit, groups[1].Kind)
	assert.Equal(t, books.KindInvestment, groups[2].Kind)
	assert.Equal(t, books.KindOther, groups[3].Kind)

	assert.True(t, decEqual(dec("15"), groups[0].Total))
	require.Len(t, groups[0].Accounts, 2)
	assert.Equal(t, books.AccountID("bank-2"), groups[0].Accounts[0].Account.ID, "input order within a group")
	assert.True(t, decEqual(dec("-20"), groups[1].Total))
}

func TestGroupByKind_TotalsMatchSummary(t *testing.T) {
	accounts := []books.Account{
		{ID: "a", Kind: books.KindCash, OpeningBalance: dec("10")},
		{ID: "b", Kind: books.KindCredit, OpeningBalance: dec("-3")},
		{ID: "c", Kind: books.KindPrepaid, OpeningBalance: dec("1")},
	}
	txs := []books.Transaction{transfer("t", "2025-01-01", "4", "a", "b")}

	total := dec("0")
	for _, g := range books.GroupByKind(accounts, txs) {
		total = total.Add(g.Total)
	}

	assert.True(t, decEqual(books.Summarize(accounts, txs).NetWorth, total))
}

func TestParseKind(t *testing.T) {
	assert.Equal(t, books.KindWallet, books.ParseKind("wallet"))
	assert.Equal(t, books.KindOther, books.ParseKind("piggy"))
	assert.Equal(t, books.KindOther, books.ParseKind(""))
	assert.True(t, books.KindPrepaid.Known())
	assert.False(t, books.Kind("piggy").Known())
}
