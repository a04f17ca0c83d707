/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Request bodies reuse
  factory.AccountRecord / factory.TransactionRecord so the API and ledger
  files share one external shape and one validation path.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Decimal values are serialized as JSON strings ("1150.5") so that clients
  never see binary float rounding. Formatted companions ("$1,150.50") are
  display strings only.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/records.go: Record shapes
*/
package api

import (
	"github.com/shopspring/decimal"
	"github.com/warp/bookkeeping/books"
	"github.com/warp/bookkeeping/factory"
)

// =============================================================================
// ACCOUNTS
// =============================================================================

// AccountDTO represents an account and its current balance.
type AccountDTO struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Kind           string          `json:"kind"`
	Currency       string          `json:"currency"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Balance        decimal.Decimal `json:"balance"`
	Formatted      string          `json:"formatted"`
}

func toAccountDTO(a books.Account, balance decimal.Decimal) AccountDTO {
	return AccountDTO{
		ID:             string(a.ID),
		Name:           a.Name(),
		Kind:           string(books.ParseKind(string(a.Kind))),
		Currency:       a.Currency,
		OpeningBalance: a.OpeningBalance,
		Balance:        balance,
		Formatted:      books.FormatMoney(balance, a.Currency),
	}
}

// =============================================================================
// HISTORY / LEDGER
// =============================================================================

// RunningBalanceDTO is one account's balance around one transaction.
type RunningBalanceDTO struct {
	Before decimal.Decimal `json:"before"`
	After  decimal.Decimal `json:"after"`
}

// HistoryEntryDTO is one step of an account's chronological replay.
type HistoryEntryDTO struct {
	Transaction factory.TransactionRecord `json:"transaction"`
	Delta       decimal.Decimal           `json:"delta"`
	Before      decimal.Decimal           `json:"before"`
	After       decimal.Decimal           `json:"after"`
}

// AccountHistoryDTO is the full replay of an account.
type AccountHistoryDTO struct {
	Account AccountDTO        `json:"account"`
	Entries []HistoryEntryDTO `json:"entries"`
}

// LedgerRowDTO is one transaction with the running balances of every tracked
// account it touches.
type LedgerRowDTO struct {
	Transaction factory.TransactionRecord    `json:"transaction"`
	Balances    map[string]RunningBalanceDTO `json:"balances"`
}

// =============================================================================
// SUMMARY
// =============================================================================

// SummaryDTO is the net worth view.
type SummaryDTO struct {
	Currency    string          `json:"currency"`
	Assets      decimal.Decimal `json:"assets"`
	Liabilities decimal.Decimal `json:"liabilities"`
	NetWorth    decimal.Decimal `json:"net_worth"`
	Formatted   FormattedTotals `json:"formatted"`
	Groups      []KindGroupDTO  `json:"groups"`
}

// FormattedTotals carries display strings for the summary totals.
type FormattedTotals struct {
	Assets      string `json:"assets"`
	Liabilities string `json:"liabilities"`
	NetWorth    string `json:"net_worth"`
}

// KindGroupDTO is the accounts of one kind.
type KindGroupDTO struct {
	Kind     string          `json:"kind"`
	Total    decimal.Decimal `json:"total"`
	Accounts []AccountDTO    `json:"accounts"`
}

// =============================================================================
// SCENARIOS / ERRORS
// =============================================================================

// ScenarioDTO describes a demo data set.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
