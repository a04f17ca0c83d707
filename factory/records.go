/*
Package factory converts ledger files and API payloads into books records.

PURPOSE:
  The engine consumes already-parsed records. This package is the parsing
  and validation boundary in front of it: YAML (or JSON, which YAML 1.2
  accepts as-is) ledger files, and the JSON bodies the API receives, become
  books.Account and books.Transaction values that passed ValidateAccount /
  ValidateTransaction.

LEDGER FILE SCHEMA:
  currency: EUR                 # default for accounts without one
  accounts:
    - id: checking
      name: Checking            # optional display name
      kind: bank                # unknown kinds become "other"
      opening_balance: 1000
      currency: EUR
  transactions:
    - id: 2025-01-01-groceries
      date: 2025-01-01
      time: "09:30"             # optional, seconds optional
      type: expense             # income | expense | transfer | repayment
      amount: 200
      refund: 50                # expense only
      refund_target: wallet     # optional, defaults to source
      discount: 0               # repayment only
      source: checking
      destination: ""
      note: weekly shop

  Amounts may be written as numbers or strings ("12.30"); strings avoid any
  float rounding by the YAML parser.

KEY FEATURES:
  - Zero-pads dates and times so that string ordering is chronological
  - Collects every validation failure with its record position
  - Resolves display-name references to identities (ResolveAliases)

USAGE:
  snap, err := factory.LoadLedger("ledger.yaml")
  if err != nil {
      var errs *factory.LedgerError
      ...
  }
  summary := books.Summarize(snap.Accounts, snap.Transactions)

SEE ALSO:
  - books/validate.go: The rules applied here
  - api/handlers.go: Reuses AccountRecord / TransactionRecord as request bodies
*/
package factory

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/bookkeeping/books"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// SCHEMA TYPES
// =============================================================================

// LedgerFile is the on-disk representation of a snapshot.
type LedgerFile struct {
	Currency     string              `yaml:"currency,omitempty" json:"currency,omitempty"`
	Accounts     []AccountRecord     `yaml:"accounts" json:"accounts"`
	Transactions []TransactionRecord `yaml:"transactions" json:"transactions"`
}

// AccountRecord is the external shape of an account.
type AccountRecord struct {
	ID             string `yaml:"id" json:"id"`
	Name           string `yaml:"name,omitempty" json:"name,omitempty"`
	Kind           string `yaml:"kind,omitempty" json:"kind,omitempty"`
	OpeningBalance Amount `yaml:"opening_balance,omitempty" json:"opening_balance"`
	Currency       string `yaml:"currency,omitempty" json:"currency,omitempty"`
}

// TransactionRecord is the external shape of a transaction.
type TransactionRecord struct {
	ID           string `yaml:"id" json:"id"`
	Date         Scalar `yaml:"date" json:"date"`
	Time         Scalar `yaml:"time,omitempty" json:"time,omitempty"`
	Type         string `yaml:"type" json:"type"`
	Amount       Amount `yaml:"amount" json:"amount"`
	Discount     Amount `yaml:"discount,omitempty" json:"discount,omitempty"`
	Refund       Amount `yaml:"refund,omitempty" json:"refund,omitempty"`
	RefundTarget string `yaml:"refund_target,omitempty" json:"refund_target,omitempty"`
	Source       string `yaml:"source,omitempty" json:"source,omitempty"`
	Destination  string `yaml:"destination,omitempty" json:"destination,omitempty"`
	Note         string `yaml:"note,omitempty" json:"note,omitempty"`
}

// =============================================================================
// SCALARS - Read the literal text, never a parser-rounded value
// =============================================================================

// Amount is a decimal read from a YAML/JSON number or string.
type Amount struct {
	decimal.Decimal
}

func NewAmount(d decimal.Decimal) Amount { return Amount{Decimal: d} }

func (a *Amount) parse(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		a.Decimal = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return fmt.Errorf("invalid amount %q", text)
	}
	a.Decimal = d
	return nil
}

func (a *Amount) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: amount must be a scalar", value.Line)
	}
	return a.parse(value.Value)
}

func (a Amount) MarshalYAML() (any, error) {
	return a.Decimal.String(), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "null" {
		a.Decimal = decimal.Zero
		return nil
	}
	return a.parse(strings.Trim(text, `"`))
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Decimal.String())
}

func (a Amount) IsZero() bool { return a.Decimal.IsZero() }

// Scalar keeps the literal text of a YAML scalar, so that 2025-01-01 stays a
// string instead of becoming a timestamp.
type Scalar string

func (s *Scalar) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar", value.Line)
	}
	*s = Scalar(value.Value)
	return nil
}

// =============================================================================
// ERRORS
// =============================================================================

// LedgerError collects every record that failed to convert.
type LedgerError struct {
	Problems []error
}

func (e *LedgerError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Error()
	}
	return fmt.Sprintf("%d invalid record(s): %s", len(e.Problems), strings.Join(msgs, "; "))
}

func (e *LedgerError) Unwrap() []error { return e.Problems }

// =============================================================================
// CONVERSION
// =============================================================================

// ToAccount converts and validates an account record. An empty currency takes
// defaultCurrency.
func (r AccountRecord) ToAccount(defaultCurrency string) (books.Account, error) {
	a := books.Account{
		ID:             books.AccountID(strings.TrimSpace(r.ID)),
		DisplayName:    strings.TrimSpace(r.Name),
		Kind:           books.ParseKind(strings.ToLower(strings.TrimSpace(r.Kind))),
		OpeningBalance: r.OpeningBalance.Decimal,
		Currency:       strings.ToUpper(strings.TrimSpace(r.Currency)),
	}
	if a.Currency == "" {
		a.Currency = defaultCurrency
	}
	if err := books.ValidateAccount(a); err != nil {
		return books.Account{}, err
	}
	return a, nil
}

// ToTransaction converts and validates a transaction record.
func (r TransactionRecord) ToTransaction() (books.Transaction, error) {
	txType, err := books.ParseTxType(strings.ToLower(strings.TrimSpace(r.Type)))
	if err != nil {
		return books.Transaction{}, err
	}
	at, err := books.ParseTimestamp(string(r.Date), string(r.Time))
	if err != nil {
		return books.Transaction{}, err
	}
	tx := books.Transaction{
		ID:           books.TransactionID(strings.TrimSpace(r.ID)),
		At:           at,
		Type:         txType,
		Amount:       r.Amount.Decimal,
		Discount:     r.Discount.Decimal,
		Refund:       r.Refund.Decimal,
		RefundTarget: books.AccountID(strings.TrimSpace(r.RefundTarget)),
		Source:       books.AccountID(strings.TrimSpace(r.Source)),
		Destination:  books.AccountID(strings.TrimSpace(r.Destination)),
		Note:         r.Note,
	}
	if err := books.ValidateTransaction(tx); err != nil {
		return books.Transaction{}, err
	}
	return tx, nil
}

// FromAccount is the inverse of ToAccount.
func FromAccount(a books.Account) AccountRecord {
	return AccountRecord{
		ID:             string(a.ID),
		Name:           a.DisplayName,
		Kind:           string(a.Kind),
		OpeningBalance: NewAmount(a.OpeningBalance),
		Currency:       a.Currency,
	}
}

// FromTransaction is the inverse of ToTransaction.
func FromTransaction(tx books.Transaction) TransactionRecord {
	return TransactionRecord{
		ID:           string(tx.ID),
		Date:         Scalar(tx.At.Date),
		Time:         Scalar(tx.At.Time),
		Type:         string(tx.Type),
		Amount:       NewAmount(tx.Amount),
		Discount:     NewAmount(tx.Discount),
		Refund:       NewAmount(tx.Refund),
		RefundTarget: string(tx.RefundTarget),
		Source:       string(tx.Source),
		Destination:  string(tx.Destination),
		Note:         tx.Note,
	}
}

// ToSnapshot converts every record. All failures are reported together.
func (f LedgerFile) ToSnapshot() (books.Snapshot, error) {
	currency := strings.ToUpper(strings.TrimSpace(f.Currency))
	if currency == "" {
		currency = books.DefaultCurrency
	}

	var (
		snap     books.Snapshot
		problems []error
		seenAcc  = make(map[books.AccountID]bool)
		seenTx   = make(map[books.TransactionID]bool)
	)
	for i, r := range f.Accounts {
		a, err := r.ToAccount(currency)
		if err != nil {
			problems = append(problems, fmt.Errorf("accounts[%d]: %w", i, err))
			continue
		}
		if seenAcc[a.ID] {
			problems = append(problems, fmt.Errorf("accounts[%d]: %w", i, &books.ValidationError{
				Field: "id", Code: "duplicate_id", Message: "duplicate account id " + string(a.ID),
			}))
			continue
		}
		seenAcc[a.ID] = true
		snap.Accounts = append(snap.Accounts, a)
	}
	for i, r := range f.Transactions {
		tx, err := r.ToTransaction()
		if err != nil {
			problems = append(problems, fmt.Errorf("transactions[%d]: %w", i, err))
			continue
		}
		if seenTx[tx.ID] {
			problems = append(problems, fmt.Errorf("transactions[%d]: %w", i, &books.ValidationError{
				Field: "id", Code: "duplicate_id", Message: "duplicate transaction id " + string(tx.ID),
			}))
			continue
		}
		seenTx[tx.ID] = true
		snap.Transactions = append(snap.Transactions, tx)
	}
	if len(problems) > 0 {
		return books.Snapshot{}, &LedgerError{Problems: problems}
	}
	return books.ResolveAliases(snap)
}

// ParseLedger decodes a YAML or JSON ledger document.
func ParseLedger(data []byte) (books.Snapshot, error) {
	var f LedgerFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return books.Snapshot{}, &LedgerError{Problems: []error{fmt.Errorf("failed to parse ledger: %w", err)}}
	}
	return f.ToSnapshot()
}

// LoadLedger reads and decodes a ledger file.
func LoadLedger(path string) (books.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return books.Snapshot{}, fmt.Errorf("failed to read ledger file: %w", err)
	}
	return ParseLedger(data)
}

// EncodeLedger renders a snapshot as a YAML ledger document.
func EncodeLedger(snap books.Snapshot) ([]byte, error) {
	f := LedgerFile{
		Accounts:     make([]AccountRecord, 0, len(snap.Accounts)),
		Transactions: make([]TransactionRecord, 0, len(snap.Transactions)),
	}
	for _, a := range snap.Accounts {
		f.Accounts = append(f.Accounts, FromAccount(a))
	}
	for _, tx := range snap.Transactions {
		f.Transactions = append(f.Transactions, FromTransaction(tx))
	}
	return yaml.Marshal(f)
}

// IsLedgerError reports whether err carries record-level problems.
func IsLedgerError(err error) bool {
	var le *LedgerError
	return errors.As(err, &le)
}
