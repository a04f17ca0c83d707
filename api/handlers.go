/*
handlers.go - HTTP API handlers for the bookkeeping engine

PURPOSE:
  Exposes the balance computations via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the books package.

ENDPOINTS:
  Accounts:
    GET    /api/accounts               List accounts with current balance
    POST   /api/accounts               Create or replace an account
    GET    /api/accounts/{id}          Account with current balance
    DELETE /api/accounts/{id}          Remove an account
    GET    /api/accounts/{id}/history  Chronological running balances

  Transactions:
    GET    /api/transactions           List in replay order
    POST   /api/transactions           Create or replace (id generated if empty)
    PUT    /api/transactions/{id}      Replace
    DELETE /api/transactions/{id}      Remove

  Views:
    GET    /api/ledger                 Running balances of every account per transaction
    GET    /api/summary                Assets, liabilities, net worth, kind groups

  Files:
    GET    /api/export                 Ledger file (YAML)
    POST   /api/import                 Upsert every record of a ledger file
    GET    /api/sync                   Last ledger file sync run

ARCHITECTURE:
  Handler holds:
  - Store: the Record Store (SQLite in production)
  - Cache: write-through ReplayCache mirroring the store

  Writes go to the store first and then to the cache. Reads take a
  snapshot of the cache and run the pure computations on it, so every
  response is computed from one consistent snapshot.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Account or transaction not found
  - 409: Display name already used by another account
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - sync.go: Ledger file sync
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/warp/bookkeeping/books"
	"github.com/warp/bookkeeping/factory"
	"github.com/warp/bookkeeping/logger"
)

// maxImportBytes bounds the size of an imported ledger file.
const maxImportBytes = 8 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    books.RecordStore
	Cache    *books.ReplayCache
	Log      zerolog.Logger
	Currency string

	// writes serializes store+cache updates so the cache never diverges
	writes sync.Mutex

	// Track currently loaded scenario
	currentScenario string

	// Set when a ledger file is kept in sync
	ledgerSync *LedgerSync
}

// NewHandler creates a handler over the given store. Call Refresh before serving.
func NewHandler(store books.RecordStore, log zerolog.Logger, currency string) *Handler {
	if currency == "" {
		currency = books.DefaultCurrency
	}
	return &Handler{
		Store:    store,
		Cache:    books.NewReplayCache(books.Snapshot{}),
		Log:      log,
		Currency: currency,
	}
}

// Refresh reloads the cache from the store.
func (h *Handler) Refresh(ctx context.Context) error {
	snap, err := h.Store.Snapshot(ctx)
	if err != nil {
		return err
	}
	h.Cache.Reset(snap)
	h.Log.Debug().
		Int("accounts", len(snap.Accounts)).
		Int("transactions", len(snap.Transactions)).
		Msg("cache refreshed")
	return nil
}

// =============================================================================
// ACCOUNT HANDLERS
// =============================================================================

// ListAccounts returns all accounts with their current balance.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	snap := h.Cache.Snapshot()
	balances := books.CurrentBalances(snap)

	dtos := make([]AccountDTO, len(snap.Accounts))
	for i, a := range snap.Accounts {
		dtos[i] = toAccountDTO(a, balances[a.ID])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetAccount returns a single account.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id := books.AccountID(chi.URLParam(r, "id"))
	snap := h.Cache.Snapshot()

	a, ok := snap.Account(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Account not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toAccountDTO(a, books.CurrentBalance(a, snap.Transactions)))
}

// SaveAccount creates or replaces an account.
func (h *Handler) SaveAccount(w http.ResponseWriter, r *http.Request) {
	var req factory.AccountRecord
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.ID) == "" {
		req.ID = uuid.NewString()
	}
	a, err := req.ToAccount(h.Currency)
	if err != nil {
		h.fail(r.Context(), w, "Invalid account", err)
		return
	}

	h.writes.Lock()
	defer h.writes.Unlock()

	snap := h.Cache.Snapshot()
	others := make([]books.Account, 0, len(snap.Accounts)+1)
	for _, existing := range snap.Accounts {
		if existing.ID != a.ID {
			others = append(others, existing)
		}
	}
	if _, err := books.NewAliasTable(append(others, a)); err != nil {
		h.fail(r.Context(), w, "Display name already in use", err)
		return
	}

	if err := h.Store.SaveAccount(r.Context(), a); err != nil {
		h.fail(r.Context(), w, "Failed to save account", err)
		return
	}
	// A new identity or display name can claim transactions that were saved
	// with an unresolved reference, so the cache is reloaded from the store.
	if prev, ok := snap.Account(a.ID); ok && prev.DisplayName == a.DisplayName {
		h.Cache.PutAccount(a)
	} else if err := h.Refresh(r.Context()); err != nil {
		h.fail(r.Context(), w, "Failed to reload records", err)
		return
	}

	snap = h.Cache.Snapshot()
	writeJSON(w, http.StatusCreated, toAccountDTO(a, books.CurrentBalance(a, snap.Transactions)))
}

// DeleteAccount removes an account. Its transactions are kept.
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id := books.AccountID(chi.URLParam(r, "id"))

	h.writes.Lock()
	defer h.writes.Unlock()

	prev, _ := h.Cache.Snapshot().Account(id)
	if err := h.Store.DeleteAccount(r.Context(), id); err != nil {
		h.fail(r.Context(), w, "Failed to delete account", err)
		return
	}
	// References by the removed display name no longer resolve.
	if prev.DisplayName == "" || prev.DisplayName == string(id) {
		h.Cache.RemoveAccount(id)
	} else if err := h.Refresh(r.Context()); err != nil {
		h.fail(r.Context(), w, "Failed to reload records", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetAccountHistory returns the chronological running balances of an account.
func (h *Handler) GetAccountHistory(w http.ResponseWriter, r *http.Request) {
	id := books.AccountID(chi.URLParam(r, "id"))
	snap := h.Cache.Snapshot()

	a, ok := snap.Account(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Account not found", nil)
		return
	}

	entries := h.Cache.History(id)
	dto := AccountHistoryDTO{
		Account: toAccountDTO(a, books.FinalBalance(entries, a.OpeningBalance)),
		Entries: make([]HistoryEntryDTO, len(entries)),
	}
	for i, e := range entries {
		dto.Entries[i] = HistoryEntryDTO{
			Transaction: factory.FromTransaction(e.Transaction),
			Delta:       e.Delta,
			Before:      e.Balance.Before,
			After:       e.Balance.After,
		}
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// TRANSACTION HANDLERS
// =============================================================================

// ListTransactions returns every transaction in replay order.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	snap := h.Cache.Snapshot()
	ordered := books.SortChronologically(snap.Transactions)

	dtos := make([]factory.TransactionRecord, len(ordered))
	for i, tx := range ordered {
		dtos[i] = factory.FromTransaction(tx)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateTransaction creates or replaces a transaction from the request body.
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	h.saveTransaction(w, r, "")
}

// UpdateTransaction replaces the transaction named in the URL.
func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	h.saveTransaction(w, r, chi.URLParam(r, "id"))
}

func (h *Handler) saveTransaction(w http.ResponseWriter, r *http.Request, id string) {
	var req factory.TransactionRecord
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	switch {
	case id != "":
		req.ID = id
	case strings.TrimSpace(req.ID) == "":
		req.ID = uuid.NewString()
	}

	tx, err := req.ToTransaction()
	if err != nil {
		h.fail(r.Context(), w, "Invalid transaction", err)
		return
	}

	h.writes.Lock()
	defer h.writes.Unlock()

	table, err := books.NewAliasTable(h.Cache.Snapshot().Accounts)
	if err != nil {
		h.fail(r.Context(), w, "Account aliases are ambiguous", err)
		return
	}
	tx = table.ResolveTransaction(tx)

	if err := h.Store.SaveTransaction(r.Context(), tx); err != nil {
		h.fail(r.Context(), w, "Failed to save transaction", err)
		return
	}
	h.Cache.PutTransaction(tx)

	status := http.StatusCreated
	if id != "" {
		status = http.StatusOK
	}
	writeJSON(w, status, factory.FromTransaction(tx))
}

// DeleteTransaction removes a transaction.
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := books.TransactionID(chi.URLParam(r, "id"))

	h.writes.Lock()
	defer h.writes.Unlock()

	if err := h.Store.DeleteTransaction(r.Context(), id); err != nil {
		h.fail(r.Context(), w, "Failed to delete transaction", err)
		return
	}
	h.Cache.RemoveTransaction(id)
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// VIEWS
// =============================================================================

// GetLedger returns every transaction in replay order with the running
// balances of the tracked accounts it touches.
func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	snap := h.Cache.Snapshot()
	rows := books.Ledger(snap.OpeningBalances(), snap.Transactions)

	dtos := make([]LedgerRowDTO, len(rows))
	for i, row := range rows {
		balances := make(map[string]RunningBalanceDTO, len(row.Balances))
		for id, b := range row.Balances {
			balances[string(id)] = RunningBalanceDTO{Before: b.Before, After: b.After}
		}
		dtos[i] = LedgerRowDTO{Transaction: factory.FromTransaction(row.Transaction), Balances: balances}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetSummary returns assets, liabilities, net worth and kind groups.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	snap := h.Cache.Snapshot()
	summary := books.Summarize(snap.Accounts, snap.Transactions)

	dto := SummaryDTO{
		Currency:    h.Currency,
		Assets:      summary.Assets,
		Liabilities: summary.Liabilities,
		NetWorth:    summary.NetWorth,
		Formatted: FormattedTotals{
			Assets:      books.FormatMoney(summary.Assets, h.Currency),
			Liabilities: books.FormatMoney(summary.Liabilities, h.Currency),
			NetWorth:    books.FormatMoney(summary.NetWorth, h.Currency),
		},
		Groups: []KindGroupDTO{},
	}
	for _, g := range books.GroupByKind(snap.Accounts, snap.Transactions) {
		group := KindGroupDTO{Kind: string(g.Kind), Total: g.Total, Accounts: make([]AccountDTO, len(g.Accounts))}
		for i, ab := range g.Accounts {
			group.Accounts[i] = toAccountDTO(ab.Account, ab.Balance)
		}
		dto.Groups = append(dto.Groups, group)
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// IMPORT / EXPORT
// =============================================================================

// ExportLedger returns the current records as a YAML ledger file.
func (h *Handler) ExportLedger(w http.ResponseWriter, r *http.Request) {
	data, err := factory.EncodeLedger(h.Cache.Snapshot())
	if err != nil {
		h.fail(r.Context(), w, "Failed to encode ledger", err)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// ImportLedger upserts every record of a YAML/JSON ledger file.
func (h *Handler) ImportLedger(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read body", err)
		return
	}
	snap, err := factory.ParseLedger(data)
	if err != nil {
		h.fail(r.Context(), w, "Invalid ledger", err)
		return
	}

	if err := h.importSnapshot(r.Context(), snap); err != nil {
		h.fail(r.Context(), w, "Failed to import ledger", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"accounts":     len(snap.Accounts),
		"transactions": len(snap.Transactions),
	})
}

// importSnapshot upserts every record of snap and reloads the cache. The
// cache is reloaded even when the store rejected the import, so it always
// mirrors whatever the store kept.
func (h *Handler) importSnapshot(ctx context.Context, snap books.Snapshot) error {
	h.writes.Lock()
	defer h.writes.Unlock()

	loadErr := books.LoadSnapshot(ctx, h.Store, snap)
	if err := h.Refresh(ctx); err != nil {
		return errors.Join(loadErr, err)
	}
	return loadErr
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, books.ErrDuplicateDisplayName):
		return http.StatusConflict
	case books.IsNotFound(err):
		return http.StatusNotFound
	case books.IsClientError(err), factory.IsLedgerError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the error response and logs server-side failures.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, message string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Msg(message)
	}
	writeError(w, status, message, err)
}
