/*
sync.go - Ledger file sync

PURPOSE:
  Keeps the store in step with a ledger file edited by hand. The file is
  checked periodically; when its modification time changes it is parsed
  and every record is upserted, then the replay cache is reloaded.

DESIGN:
  - Runs a background goroutine with a configurable check interval
  - The first check always imports the file
  - An unchanged file is skipped
  - A file that fails to parse leaves the store untouched; that version is
    not parsed again, and the next change is retried
  - Records removed from the file are not removed from the store

CONFIGURATION:
  - CheckInterval: How often to check (BOOKS_SYNC_INTERVAL)
  - Enabled: Whether the sync is active (interval > 0)

USAGE:
  ls := api.NewLedgerSync(handler, "ledger.yaml", 30*time.Second)
  ls.Start()
  // ... later
  ls.Stop()

SEE ALSO:
  - handlers.go: ImportLedger endpoint (manual import)
  - factory/records.go: Ledger file parsing
*/
package api

import (
	"context"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/warp/bookkeeping/factory"
)

// Sync run statuses.
const (
	SyncImported  = "imported"
	SyncUnchanged = "unchanged"
	SyncFailed    = "failed"
)

// SyncRun records the outcome of one check.
type SyncRun struct {
	Path         string    `json:"path"`
	Status       string    `json:"status"`
	CheckedAt    time.Time `json:"checked_at"`
	ModifiedAt   time.Time `json:"modified_at"`
	Accounts     int       `json:"accounts"`
	Transactions int       `json:"transactions"`
	Error        string    `json:"error,omitempty"`
}

// LedgerSync imports a ledger file whenever it changes.
type LedgerSync struct {
	Handler       *Handler
	Path          string
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex

	// guarded by runMu
	runMu     sync.Mutex
	lastMod   time.Time // last imported version
	failedMod time.Time // last version that failed to parse
	failure   string
	lastRun   *SyncRun
}

// NewLedgerSync creates a sync for path and registers it with the handler.
// A non-positive interval disables the background loop; RunNow still works.
func NewLedgerSync(h *Handler, path string, interval time.Duration) *LedgerSync {
	ls := &LedgerSync{
		Handler:       h,
		Path:          path,
		CheckInterval: interval,
		Enabled:       interval > 0 && path != "",
	}
	h.ledgerSync = ls
	return ls
}

// Start begins the background loop.
func (ls *LedgerSync) Start() {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if !ls.Enabled {
		ls.Handler.Log.Info().Msg("ledger sync disabled, not starting")
		return
	}

	if ls.ticker != nil {
		return
	}
	ls.stop = make(chan struct{})
	ls.ticker = time.NewTicker(ls.CheckInterval)
	ls.wg.Add(1)

	go ls.run()

	ls.Handler.Log.Info().
		Str("path", ls.Path).
		Dur("interval", ls.CheckInterval).
		Msg("ledger sync started")
}

// Stop stops the background loop and waits for a running check to finish.
func (ls *LedgerSync) Stop() {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.ticker != nil {
		ls.ticker.Stop()
		close(ls.stop)
		ls.wg.Wait()
		ls.ticker = nil
		ls.Handler.Log.Info().Msg("ledger sync stopped")
	}
}

func (ls *LedgerSync) run() {
	defer ls.wg.Done()

	// Run immediately on start
	ls.RunNow(context.Background())

	for {
		select {
		case <-ls.ticker.C:
			ls.RunNow(context.Background())
		case <-ls.stop:
			return
		}
	}
}

// RunNow checks the file once and imports it if it changed.
func (ls *LedgerSync) RunNow(ctx context.Context) SyncRun {
	ls.runMu.Lock()
	defer ls.runMu.Unlock()

	run := ls.check(ctx)
	ls.lastRun = &run

	event := ls.Handler.Log.Debug()
	switch run.Status {
	case SyncImported:
		event = ls.Handler.Log.Info()
	case SyncFailed:
		event = ls.Handler.Log.Error()
	}
	event.
		Str("path", run.Path).
		Str("status", run.Status).
		Int("accounts", run.Accounts).
		Int("transactions", run.Transactions).
		Str("error", run.Error).
		Msg("ledger sync")
	return run
}

func (ls *LedgerSync) check(ctx context.Context) SyncRun {
	run := SyncRun{Path: ls.Path, CheckedAt: time.Now().UTC()}

	info, err := os.Stat(ls.Path)
	if err != nil {
		run.Status = SyncFailed
		run.Error = err.Error()
		return run
	}
	mod := info.ModTime()
	run.ModifiedAt = mod.UTC()
	switch {
	case mod.Equal(ls.lastMod):
		run.Status = SyncUnchanged
		return run
	case mod.Equal(ls.failedMod):
		run.Status = SyncUnchanged
		run.Error = ls.failure
		return run
	}

	snap, err := factory.LoadLedger(ls.Path)
	if err != nil {
		ls.failedMod = mod
		ls.failure = err.Error()
		run.Status = SyncFailed
		run.Error = ls.failure
		return run
	}
	// Store failures are retried on the next tick.
	if err := ls.Handler.importSnapshot(ctx, snap); err != nil {
		run.Status = SyncFailed
		run.Error = err.Error()
		return run
	}

	ls.lastMod = mod
	ls.failedMod = time.Time{}
	ls.failure = ""
	run.Status = SyncImported
	run.Accounts = len(snap.Accounts)
	run.Transactions = len(snap.Transactions)
	return run
}

// LastRun returns the most recent check, or nil before the first one.
func (ls *LedgerSync) LastRun() *SyncRun {
	ls.runMu.Lock()
	defer ls.runMu.Unlock()
	if ls.lastRun == nil {
		return nil
	}
	run := *ls.lastRun
	return &run
}

// GetSyncStatus returns the last ledger sync run, or null when no file is synced.
func (h *Handler) GetSyncStatus(w http.ResponseWriter, r *http.Request) {
	if h.ledgerSync == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, h.ledgerSync.LastRun())
}
