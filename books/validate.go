package books

import (
	"errors"
	"fmt"
)

// =============================================================================
// BOUNDARY VALIDATION
// =============================================================================
// The engine never calls these. Ingestion paths (factory, api) do, so that
// data-quality violations are rejected before they reach a snapshot.

// ValidateAccount checks an account record.
func ValidateAccount(a Account) error {
	if a.ID == "" {
		return &ValidationError{Field: "id", Code: "missing_id", Message: "account id is required"}
	}
	return nil
}

// ValidateTransaction checks a transaction record and returns every violation
// joined together, or nil.
func ValidateTransaction(tx Transaction) error {
	var errs []error
	fail := func(field, code, format string, args ...any) {
		errs = append(errs, &ValidationError{Field: field, Code: code, Message: fmt.Sprintf(format, args...)})
	}

	if tx.ID == "" {
		fail("id", "missing_id", "transaction id is required")
	}
	if tx.At.Date == "" {
		fail("date", "missing_date", "transaction date is required")
	} else if _, err := ParseTimestamp(tx.At.Date, tx.At.Time); err != nil {
		errs = append(errs, err)
	}
	if !tx.Type.Valid() {
		fail("type", "unknown_type", "unknown transaction type %q", tx.Type)
	}

	if tx.Amount.IsNegative() {
		fail("amount", "negative_amount", "amount %s is negative", tx.Amount)
	}
	if tx.Discount.IsNegative() {
		fail("discount", "negative_discount", "discount %s is negative", tx.Discount)
	}
	if tx.Refund.IsNegative() {
		fail("refund", "negative_refund", "refund %s is negative", tx.Refund)
	}
	if tx.Discount.GreaterThan(tx.Amount) {
		fail("discount", "discount_exceeds_amount", "discount %s exceeds amount %s", tx.Discount, tx.Amount)
	}
	if tx.Refund.GreaterThan(tx.Amount) {
		fail("refund", "refund_exceeds_amount", "refund %s exceeds amount %s", tx.Refund, tx.Amount)
	}

	switch tx.Type {
	case TxIncome:
		if tx.Source == "" && tx.Destination == "" {
			fail("destination", "missing_account", "income needs a destination account")
		}
	case TxExpense:
		if tx.Source == "" {
			fail("source", "missing_account", "expense needs a source account")
		}
	case TxTransfer, TxRepayment:
		if tx.Source == "" {
			fail("source", "missing_account", "%s needs a source account", tx.Type)
		}
		if tx.Destination == "" {
			fail("destination", "missing_account", "%s needs a destination account", tx.Type)
		}
	}

	return errors.Join(errs...)
}
