package models

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the referenced customer, entry or payment does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateSlot indicates a milk entry already exists for the same
// (customer, date, shift) slot. Callers must not retry blindly.
var ErrDuplicateSlot = errors.New("entry already recorded for this customer, date and shift")

// ErrInvalidInput indicates a missing, non-numeric or out-of-range field.
var ErrInvalidInput = errors.New("invalid input")

// ErrStoreUnavailable indicates an underlying store failure. Safe to retry
// with backoff; writes are atomic so a failed write never partially applies.
var ErrStoreUnavailable = errors.New("store unavailable")

// InvalidFieldError builds an ErrInvalidInput naming the offending field.
func InvalidFieldError(field, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidInput, field, reason)
}
