/*
errors.go - Centralized error types for the bookkeeping core

PURPOSE:
  The computation functions are total and never return errors. The errors
  here belong to the edges of the core: boundary validation of incoming
  records, alias resolution, and RecordStore lookups.

ERROR CATEGORIES:
  1. Validation errors - A record violates a data-quality rule
  2. Lookup errors - A referenced account or transaction does not exist
  3. Identity errors - Two accounts claim the same display name

USAGE:
  if errors.Is(err, books.ErrInvalidRecord) {
      // reject at the boundary, the engine would still compute a number
  }

SEE ALSO:
  - validate.go: Produces ValidationError
  - alias.go: Produces ErrDuplicateDisplayName
  - store.go: Produces the not-found errors
*/
package books

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidRecord is returned when an account or transaction fails boundary validation.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrAccountNotFound is returned when a referenced account doesn't exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrTransactionNotFound is returned when a referenced transaction doesn't exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrDuplicateDisplayName is returned when two accounts share a display name.
	ErrDuplicateDisplayName = errors.New("duplicate account display name")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError describes one failed data-quality rule.
type ValidationError struct {
	Field   string // e.g. "amount", "source"
	Code    string // e.g. "negative_amount", "refund_exceeds_amount"
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidRecord
}

// DuplicateDisplayNameError names the accounts that collide.
type DuplicateDisplayNameError struct {
	DisplayName string
	First       AccountID
	Second      AccountID
}

func (e *DuplicateDisplayNameError) Error() string {
	return fmt.Sprintf("display name %q used by both %s and %s", e.DisplayName, e.First, e.Second)
}

func (e *DuplicateDisplayNameError) Unwrap() error {
	return ErrDuplicateDisplayName
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRecord) ||
		errors.Is(err, ErrDuplicateDisplayName)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrTransactionNotFound)
}
