package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across layers. Repositories and services wrap these
// with context via fmt.Errorf("...: %w", err); callers test with errors.Is.
var (
	// ErrEmptySelection: a booking was finalized with nothing selected.
	ErrEmptySelection = errors.New("booking selection is empty")

	// ErrNotFound: a referenced record does not exist (stale selection).
	ErrNotFound = errors.New("not found")

	// ErrDuplicate: an insert violated a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate record")

	// ErrInvalidState: the transaction is in the wrong lifecycle stage for
	// the requested operation.
	ErrInvalidState = errors.New("invalid state")

	// ErrTimeout: the unit of work exceeded its deadline. Retryable.
	ErrTimeout = errors.New("operation timed out")

	// ErrStorageFailure: the unit of work could not commit.
	ErrStorageFailure = errors.New("storage failure")
)

// ValidationError reports bad input shape or range. The caller corrects the
// input and resubmits.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConflictError identifies the concrete unit that lost an availability
// re-check at finalize time.
type ConflictError struct {
	ItemID       int64
	SerialNumber string
	Reason       string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("item %s (id %d): %s", e.SerialNumber, e.ItemID, e.Reason)
}

// InsufficientInventoryError reports a set-component shortfall during
// allocation. The whole unit of work aborts.
type InsufficientInventoryError struct {
	SetName   string
	Category  ItemCategory
	Required  int
	Available int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("not enough available %q items for set %q: need %d, have %d",
		e.Category, e.SetName, e.Required, e.Available)
}
