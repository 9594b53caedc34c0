package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRate is returned for negative VAT rates.
	ErrInvalidRate = errors.New("invalid VAT rate")
	// ErrEmptyOrder is returned when finalizing an order with no lines.
	ErrEmptyOrder = errors.New("order has no items")
	// ErrNotFound is returned when an operation requires a line or table that does not exist.
	ErrNotFound = errors.New("not found")
)

// CorruptStateError marks a persisted file that exists but cannot be parsed.
// Components recovering from it fall back to a documented default instead of crashing.
type CorruptStateError struct {
	Path string
	Err  error
}

func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("corrupt state in %s: %v", e.Path, e.Err)
}

func (e *CorruptStateError) Unwrap() error { return e.Err }
