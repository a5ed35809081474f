package store

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for lookup and registry operations.
var (
	ErrNotFound = errors.New("record not found")
	ErrExists   = errors.New("value already exists")
	ErrNoStock  = errors.New("no stock available")
)

// ValidationError aggregates every failed field rule for one operation.
// The operation makes no state change when validation fails.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StorageError marks a persistence failure. The in-memory mutation has
// already been rolled back when this is returned.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("persisting snapshot: %v", e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
