package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks malformed or missing caller data. No state changed.
	ErrInvalidInput = errors.New("invalid input")
	// ErrStoreUnavailable marks a failed or timed out persistence call.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrNotFound marks a lookup for an id that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrQuantityOverflow rejects an increment the cumulative total cannot hold.
	ErrQuantityOverflow = fmt.Errorf("%w: cumulative quantity would overflow", ErrInvalidInput)
)

// Unavailable wraps a persistence failure so it matches ErrStoreUnavailable
// while keeping the cause reachable.
func Unavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
