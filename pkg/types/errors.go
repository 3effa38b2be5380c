package types

import (
	"errors"
	"fmt"
)

// Validation and precondition errors.
var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCapacity    = errors.New("capacity must be positive")
	ErrInvalidSprintLimit = errors.New("sprint limit must not be negative")
)

// Not-found errors.
var (
	ErrNoItems        = errors.New("backlog has no work items")
	ErrSprintNotFound = errors.New("sprint not found")
)

// Storage errors.
var (
	ErrCorruptSnapshot = errors.New("corrupt backlog snapshot")
	ErrStoreClosed     = errors.New("store is closed")
)

// ValidationError describes one rejected field. It matches ErrValidation
// under errors.Is so callers can classify without a type assertion.
type ValidationError struct {
	ItemID string // Empty for backlog-level fields.
	Field  string // JSON field name.
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	if e.ItemID != "" {
		return fmt.Sprintf("item %s: invalid %s %v: %s", e.ItemID, e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// Unwrap returns ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(itemID, field string, value any, reason string) *ValidationError {
	return &ValidationError{ItemID: itemID, Field: field, Value: value, Reason: reason}
}
