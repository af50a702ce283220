package ledger

import (
	"errors"
	"fmt"
)

// Sentinel precondition failures. None of these implies any mutation
// happened; callers may retry after fixing the input.
var (
	ErrEmptyPool        = errors.New("no tickets in the draw pool")
	ErrNothingToArchive = errors.New("no sales to archive")
)

// ValidationError rejects malformed input before any store write.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// OutOfRangeError rejects a correction larger than the seller's current total.
type OutOfRangeError struct {
	SellerID  string
	Requested int
	Available int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("cannot remove %d tickets from seller %s: only %d recorded",
		e.Requested, e.SellerID, e.Available)
}

// StorageError wraps a failed store call. Step identifies where a
// multi-step sequence stopped so the caller can judge the blast radius;
// nothing before the failed step is rolled back.
type StorageError struct {
	Step string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure at %q: %v", e.Step, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
