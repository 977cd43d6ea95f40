package store

import (
	"errors"
	"fmt"
)

// Common errors returned by store operations.
//
// These can be checked with errors.Is():
//
//	if errors.Is(err, store.ErrConcurrentModification) {
//	    // Re-load the document and retry the operation.
//	}
var (
	// ErrNotFound is returned when the document file does not exist.
	ErrNotFound = errors.New("task document not found")

	// ErrConcurrentModification is returned when the document on disk
	// changed after it was loaded. The caller should re-load, re-validate
	// and retry rather than overwrite.
	ErrConcurrentModification = errors.New("task document modified concurrently")
)

// ParseError is returned when the document exists but is not well-formed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse task document %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsRetryable reports whether the error is likely to succeed on retry.
// Only concurrent modifications qualify; parse and I/O failures need
// intervention.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}
