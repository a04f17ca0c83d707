/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built ledgers that populate the store with realistic data
	for demos and integration tests. Each scenario is a ledger file parsed
	by the factory, so scenarios exercise the same path as imports.

AVAILABLE SCENARIOS:

	checking-basics: One checking account, a refunded expense and an income
	transfer:        Checking to savings, net worth conserved
	credit-card:     Redirected refund, discounted repayment, self-repayment
	household:       Every account kind, mixed currencies, same-day ties

HOW SCENARIOS WORK:
 1. Reset the store (clear all records)
 2. Parse the scenario ledger via factory.ParseLedger
 3. Save accounts, then transactions
 4. Reload the replay cache

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "credit-card"}

NOTE:

	Scenarios reset the store. Only use in development/demo environments.
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/warp/bookkeeping/books"
	"github.com/warp/bookkeeping/factory"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "checking-basics",
		Name:        "Checking Basics",
		Description: "Opening balance, a partially refunded expense and an income",
	},
	{
		ID:          "transfer",
		Name:        "Transfer",
		Description: "Money moved between two accounts leaves net worth unchanged",
	},
	{
		ID:          "credit-card",
		Name:        "Credit Card",
		Description: "Refund to another account, discounted repayment, self-repayment",
	},
	{
		ID:          "household",
		Name:        "Household",
		Description: "Every account kind with same-day transactions ordered by time",
	},
}

var scenarioLedgers = map[string]string{
	"checking-basics": `
accounts:
  - id: checking
    name: Checking
    kind: bank
    opening_balance: "1000"
transactions:
  - id: groceries
    date: 2025-01-01
    type: expense
    amount: "200"
    refund: "50"
    source: checking
  - id: salary
    date: 2025-01-02
    type: income
    amount: "300"
    destination: checking
`,
	"transfer": `
accounts:
  - id: checking
    name: Checking
    kind: bank
  - id: savings
    name: Savings
    kind: bank
transactions:
  - id: move-to-savings
    date: 2025-02-01
    type: transfer
    amount: "500"
    source: checking
    destination: savings
`,
	"credit-card": `
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
    time: "10:00"
    type: expense
    amount: "100"
    refund: "30"
    refund_target: Wallet
    source: Visa
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
`,
	"household": `
currency: EUR
accounts:
  - id: bank
    name: Main Bank
    kind: bank
    opening_balance: "2500.00"
  - id: card
    name: Credit Card
    kind: credit
    opening_balance: "-120.50"
  - id: cash
    name: Pocket Cash
    kind: cash
    opening_balance: "60"
  - id: broker
    name: Broker
    kind: investment
    opening_balance: "10000"
  - id: transit
    name: Transit Pass
    kind: prepaid
    opening_balance: "20"
  - id: jar
    name: Coin Jar
    kind: piggy
    opening_balance: "12.34"
transactions:
  - id: rent
    date: 2025-04-01
    time: "08:00"
    type: expense
    amount: "900"
    source: bank
  - id: atm
    date: 2025-04-01
    time: "07:30"
    type: transfer
    amount: "100"
    source: bank
    destination: cash
  - id: dinner
    date: 2025-04-03
    time: "20:15:10"
    type: expense
    amount: "64.20"
    source: card
  - id: topup
    date: 2025-04-03
    time: "20:15:09"
    type: transfer
    amount: "30"
    source: cash
    destination: transit
  - id: card-payment
    date: 2025-04-10
    type: repayment
    amount: "184.70"
    source: bank
    destination: card
  - id: dividend
    date: 2025-04-15
    type: income
    amount: "42.10"
    destination: broker
`,
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.writes.Lock()
	current := h.currentScenario
	h.writes.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the store and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.loadScenario(r.Context(), req.ScenarioID); err != nil {
		if _, known := scenarioLedgers[req.ScenarioID]; !known {
			writeError(w, http.StatusNotFound, "Unknown scenario", err)
			return
		}
		h.fail(r.Context(), w, "Failed to load scenario", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "loaded",
		"scenario": req.ScenarioID,
	})
}

// ResetDatabase clears every record.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	h.writes.Lock()
	defer h.writes.Unlock()

	if err := h.Store.Reset(r.Context()); err != nil {
		h.fail(r.Context(), w, "Failed to reset database", err)
		return
	}
	h.Cache.Reset(books.Snapshot{})
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) loadScenario(ctx context.Context, id string) error {
	doc, ok := scenarioLedgers[id]
	if !ok {
		return fmt.Errorf("unknown scenario: %s", id)
	}
	snap, err := factory.ParseLedger([]byte(doc))
	if err != nil {
		return fmt.Errorf("scenario %s: %w", id, err)
	}

	h.writes.Lock()
	defer h.writes.Unlock()

	if err := h.Store.Reset(ctx); err != nil {
		return err
	}
	if err := books.LoadSnapshot(ctx, h.Store, snap); err != nil {
		return err
	}
	if err := h.Refresh(ctx); err != nil {
		return err
	}
	h.currentScenario = id
	h.Log.Info().Str("scenario", id).Msg("scenario loaded")
	return nil
}
