package api

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const syncLedger = `
accounts:
  - id: bank
    opening_balance: 100
transactions:
  - id: pay
    date: 2025-01-01
    type: income
    amount: 50
    destination: bank
`

const syncLedgerEdited = `
accounts:
  - id: bank
    opening_balance: 100
  - id: cash
transactions:
  - id: pay
    date: 2025-01-01
    type: income
    amount: 50
    destination: bank
  - id: atm
    date: 2025-01-02
    type: transfer
    amount: 20
    source: bank
    destination: cash
`

func writeLedger(t *testing.T, path, doc string, mod time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

// =============================================================================
// RUN NOW
// =============================================================================

func TestLedgerSync_ImportsOnlyOnChange(t *testing.T) {
	// GIVEN: A ledger file on disk
	// WHEN: The sync runs twice, then again after an edit
	// THEN: It imports, skips, then imports the edit

	h, router := newTestServer(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.yaml")
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	writeLedger(t, path, syncLedger, base)

	ls := NewLedgerSync(h, path, 0)
	assert.False(t, ls.Enabled)

	run := ls.RunNow(ctx)
	assert.Equal(t, SyncImported, run.Status)
	assert.Equal(t, 1, run.Accounts)
	assert.Equal(t, 1, run.Transactions)
	assertDecimal(t, "150", balances(t, router)["bank"].Balance)

	run = ls.RunNow(ctx)
	assert.Equal(t, SyncUnchanged, run.Status)

	writeLedger(t, path, syncLedgerEdited, base.Add(time.Minute))
	run = ls.RunNow(ctx)
	require.Equal(t, SyncImported, run.Status, run.Error)
	got := balances(t, router)
	assertDecimal(t, "130", got["bank"].Balance)
	assertDecimal(t, "20", got["cash"].Balance)
}

func TestLedgerSync_InvalidFileLeavesStore(t *testing.T) {
	h, router := newTestServer(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.yaml")
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	writeLedger(t, path, syncLedger, base)

	ls := NewLedgerSync(h, path, 0)
	require.Equal(t, SyncImported, ls.RunNow(ctx).Status)

	writeLedger(t, path, "accounts: [unterminated", base.Add(time.Minute))
	run := ls.RunNow(ctx)
	assert.Equal(t, SyncFailed, run.Status)
	assert.NotEmpty(t, run.Error)
	assertDecimal(t, "150", balances(t, router)["bank"].Balance)

	// The broken version is not parsed again, but the problem stays visible.
	again := ls.RunNow(ctx)
	assert.Equal(t, SyncUnchanged, again.Status)
	assert.Equal(t, run.Error, again.Error)

	writeLedger(t, path, syncLedgerEdited, base.Add(2*time.Minute))
	fixed := ls.RunNow(ctx)
	assert.Equal(t, SyncImported, fixed.Status, "retried after the next change")
	assert.Empty(t, fixed.Error)
	assert.Equal(t, SyncUnchanged, ls.RunNow(ctx).Status)
	assert.Empty(t, ls.LastRun().Error)
}

func TestLedgerSync_MissingFile(t *testing.T) {
	h, _ := newTestServer(t)
	ls := NewLedgerSync(h, filepath.Join(t.TempDir(), "missing.yaml"), 0)

	run := ls.RunNow(context.Background())
	assert.Equal(t, SyncFailed, run.Status)
}

// =============================================================================
// STATUS ENDPOINT
// =============================================================================

func TestGetSyncStatus(t *testing.T) {
	h, router := newTestServer(t)

	rec := do(t, router, http.MethodGet, "/api/sync", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null\n", rec.Body.String(), "no ledger file configured")

	path := filepath.Join(t.TempDir(), "ledger.yaml")
	writeLedger(t, path, syncLedger, time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	ls := NewLedgerSync(h, path, 0)
	assert.Nil(t, ls.LastRun())
	ls.RunNow(context.Background())

	status := decode[SyncRun](t, do(t, router, http.MethodGet, "/api/sync", nil))
	assert.Equal(t, SyncImported, status.Status)
	assert.Equal(t, path, status.Path)
	assert.Equal(t, 1, status.Accounts)
}

// =============================================================================
// BACKGROUND LOOP
// =============================================================================

func TestLedgerSync_StartStop(t *testing.T) {
	h, router := newTestServer(t)
	path := filepath.Join(t.TempDir(), "ledger.yaml")
	writeLedger(t, path, syncLedger, time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))

	ls := NewLedgerSync(h, path, 10*time.Millisecond)
	require.True(t, ls.Enabled)
	ls.Start()
	ls.Start()

	require.Eventually(t, func() bool {
		run := ls.LastRun()
		return run != nil && run.Status == SyncImported
	}, time.Second, 5*time.Millisecond)

	ls.Stop()
	ls.Stop()
	assertDecimal(t, "150", balances(t, router)["bank"].Balance)
}
