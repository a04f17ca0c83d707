package books_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/bookkeeping/books"
)

// =============================================================================
// REPLAY CACHE
// =============================================================================

func cacheSnapshot() books.Snapshot {
	return books.Snapshot{
		Accounts: []books.Account{account("checking", "1000"), account("savings", "0"), account("cash", "20")},
		Transactions: []books.Transaction{
			expense("groceries", "2025-01-01", "200", "50", "checking"),
			transfer("save", "2025-01-02", "100", "checking", "savings"),
			income("tips", "2025-01-03", "5", "cash"),
		},
	}
}

// assertFresh checks the cached history against a replay of the cache's own records.
func assertFresh(t *testing.T, c *books.ReplayCache, id books.AccountID) {
	t.Helper()
	snap := c.Snapshot()
	opening := dec("0")
	if a, ok := snap.Account(id); ok {
		opening = a.OpeningBalance
	}
	assert.Equal(t, books.History(id, opening, snap.Transactions), c.History(id))
}

func TestReplayCache_HitsUntilInvalidated(t *testing.T) {
	c := books.NewReplayCache(cacheSnapshot())

	assert.False(t, c.Cached("checking"))
	h := c.History("checking")
	require.Len(t, h, 2)
	assert.True(t, c.Cached("checking"))

	// A write that does not touch checking keeps it cached
	c.PutTransaction(income("bonus", "2025-01-04", "1", "cash"))
	assert.True(t, c.Cached("checking"))

	// A write touching it drops it
	c.PutTransaction(income("salary", "2025-01-05", "300", "checking"))
	assert.False(t, c.Cached("checking"))
	assertFresh(t, c, "checking")
	assert.True(t, decEqual(dec("1050"), c.History("checking")[2].Balance.After))
}

func TestReplayCache_UpdateInvalidatesOldAndNewAccounts(t *testing.T) {
	// GIVEN: A transfer from checking to savings, cached for both
	// WHEN: It is edited to move money from checking to cash
	// THEN: Savings, checking and cash are all recomputed

	c := books.NewReplayCache(cacheSnapshot())
	c.History("checking")
	c.History("savings")
	c.History("cash")

	c.PutTransaction(transfer("save", "2025-01-02", "100", "checking", "cash"))

	assert.False(t, c.Cached("savings"))
	assert.False(t, c.Cached("checking"))
	assert.False(t, c.Cached("cash"))
	assert.Empty(t, c.History("savings"))
	assertFresh(t, c, "cash")

	ids := []books.TransactionID{}
	for _, tx := range c.Snapshot().Transactions {
		ids = append(ids, tx.ID)
	}
	assert.Equal(t, []books.TransactionID{"groceries", "save", "tips"}, ids, "updates keep position")
}

func TestReplayCache_RemoveTransaction(t *testing.T) {
	c := books.NewReplayCache(cacheSnapshot())
	c.History("savings")

	assert.True(t, c.RemoveTransaction("save"))
	assert.False(t, c.Cached("savings"))
	assert.Empty(t, c.History("savings"))
	assert.False(t, c.RemoveTransaction("save"))
}

func TestReplayCache_AccountChangesRecompute(t *testing.T) {
	c := books.NewReplayCache(cacheSnapshot())
	c.History("cash")

	c.PutAccount(account("cash", "50"))
	assert.False(t, c.Cached("cash"))
	assert.True(t, decEqual(dec("55"), c.History("cash")[0].Balance.After))

	c.RemoveAccount("cash")
	assert.True(t, decEqual(dec("5"), c.History("cash")[0].Balance.After), "removed account falls back to zero")
}

func TestReplayCache_MatchesFullRecomputation(t *testing.T) {
	snap := cacheSnapshot()
	c := books.NewReplayCache(snap)

	for _, a := range snap.Accounts {
		want := books.RunningBalances(a.ID, a.OpeningBalance, snap.Transactions)
		assert.Equal(t, want, c.RunningBalances(a.ID))
		assert.Equal(t, want, c.RunningBalances(a.ID), "second read from cache")
	}
}

func TestReplayCache_ReturnsCopies(t *testing.T) {
	c := books.NewReplayCache(cacheSnapshot())

	h := c.History("checking")
	h[0].Delta = dec("12345")

	assert.True(t, decEqual(dec("-150"), c.History("checking")[0].Delta))
}

func TestReplayCache_ConcurrentAccess(t *testing.T) {
	c := books.NewReplayCache(cacheSnapshot())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.History("checking")
		}()
		go func(i int) {
			defer wg.Done()
			c.PutTransaction(income("tx-"+string(rune('a'+i)), "2025-02-01", "1", "checking"))
		}(i)
	}
	wg.Wait()

	assertFresh(t, c, "checking")
	assert.Len(t, c.History("checking"), 10)
}

func TestReplayCache_Reset(t *testing.T) {
	c := books.NewReplayCache(cacheSnapshot())
	c.History("checking")

	c.Reset(books.Snapshot{})

	assert.False(t, c.Cached("checking"))
	assert.Empty(t, c.Snapshot().Accounts)
	assert.Empty(t, c.History("checking"))
}
