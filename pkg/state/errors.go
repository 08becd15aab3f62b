package state

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Load when no state document exists.
var ErrNotFound = errors.New("state document not found")

// CorruptError is returned by Load when the document exists but cannot be
// decoded.
type CorruptError struct {
	Path  string // Location of the document, "" for in-memory stores
	Cause error  // Decode error
}

// Error implements the error interface.
func (e *CorruptError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("state document is corrupt: %v", e.Cause)
	}
	return fmt.Sprintf("state document %s is corrupt: %v", e.Path, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *CorruptError) Unwrap() error {
	return e.Cause
}

// StoreError represents an I/O failure reading or writing the document.
type StoreError struct {
	Operation string // "load" or "save"
	Path      string
	Cause     error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("state %s failed [path=%s]: %v", e.Operation, e.Path, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

// IsCorrupt reports whether err is or wraps a *CorruptError.
func IsCorrupt(err error) bool {
	var ce *CorruptError
	return errors.As(err, &ce)
}
