package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoResults is the only search failure a caller ever sees: zero
	// suppliers enabled, or nothing responded before the global deadline.
	ErrNoResults = errors.New("no results available")

	ErrNotFound = errors.New("not found")
)

// FailureKind classifies a supplier call failure for circuit-breaker and
// metrics purposes.
type FailureKind string

const (
	FailTimeout     FailureKind = "timeout"
	FailHTTP        FailureKind = "http"
	FailMalformed   FailureKind = "malformed"
	FailCircuitOpen FailureKind = "circuit-open"
)

// SupplierError is a typed, non-fatal failure from one supplier adapter.
// It is recorded in the search's supplier metrics and never aborts the
// overall search.
type SupplierError struct {
	Supplier string
	Kind     FailureKind
	Err      error
}

func (e *SupplierError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("supplier %s: %s", e.Supplier, e.Kind)
	}
	return fmt.Sprintf("supplier %s: %s: %v", e.Supplier, e.Kind, e.Err)
}

func (e *SupplierError) Unwrap() error { return e.Err }

// NewSupplierError wraps err as a typed supplier failure.
func NewSupplierError(supplier string, kind FailureKind, err error) *SupplierError {
	return &SupplierError{Supplier: supplier, Kind: kind, Err: err}
}
