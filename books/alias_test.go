package books_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/bookkeeping/books"
)

// =============================================================================
// ALIAS RESOLUTION
// =============================================================================

func TestResolveAliases_DisplayNamesBecomeIdentities(t *testing.T) {
	// GIVEN: Transactions that reference accounts by display name
	// WHEN: Aliases are resolved
	// THEN: Every reference is an identity and balances follow

	snap := books.Snapshot{
		Accounts: []books.Account{
			{ID: "acc-1", DisplayName: "Checking", OpeningBalance: dec("100")},
			{ID: "acc-2", DisplayName: "Wallet"},
		},
		Transactions: []books.Transaction{
			{ID: "t", At: at("2025-01-01", ""), Type: books.TxExpense, Amount: dec("10"), Refund: dec("4"),
				Source: "Checking", RefundTarget: "Wallet"},
		},
	}

	resolved, err := books.ResolveAliases(snap)
	require.NoError(t, err)

	tx := resolved.Transactions[0]
	assert.Equal(t, books.AccountID("acc-1"), tx.Source)
	assert.Equal(t, books.AccountID("acc-2"), tx.RefundTarget)
	assert.Equal(t, books.AccountID("Checking"), snap.Transactions[0].Source, "input is not modified")

	assert.True(t, decEqual(dec("90"), books.BalanceOf(resolved, "acc-1")))
	assert.True(t, decEqual(dec("4"), books.BalanceOf(resolved, "acc-2")))
}

func TestResolveAliases_DuplicateDisplayName(t *testing.T) {
	snap := books.Snapshot{Accounts: []books.Account{
		{ID: "a", DisplayName: "Savings"},
		{ID: "b", DisplayName: "Savings"},
	}}

	_, err := books.ResolveAliases(snap)

	assert.ErrorIs(t, err, books.ErrDuplicateDisplayName)
	var dup *books.DuplicateDisplayNameError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, books.AccountID("a"), dup.First)
	assert.Equal(t, books.AccountID("b"), dup.Second)
	assert.True(t, books.IsClientError(err))
}

func TestAliasTable_IdentityWinsOverDisplayName(t *testing.T) {
	// GIVEN: Account "b" displays as "a", which is also another account's identity
	// THEN: "a" still resolves to account a

	table, err := books.NewAliasTable([]books.Account{
		{ID: "a"},
		{ID: "b", DisplayName: "a"},
	})
	require.NoError(t, err)

	assert.Equal(t, books.AccountID("a"), table.Resolve("a"))
	assert.Equal(t, books.AccountID("b"), table.Resolve("b"))
	assert.Equal(t, books.AccountID("unknown"), table.Resolve("unknown"))
	assert.Equal(t, books.AccountID(""), table.Resolve(""))
}
