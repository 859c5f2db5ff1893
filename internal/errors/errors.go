// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrNoValidRows      = errors.New("no valid trade rows")
	ErrEmptyFile        = errors.New("file is empty")
	ErrMissingHeader    = errors.New("missing header row")
	ErrConfigInvalid    = errors.New("invalid configuration")
	ErrDataNotFound     = errors.New("data not found")
	ErrDatabaseError    = errors.New("database error")
	ErrCoachUnavailable = errors.New("coaching producer unavailable")
)

// RowError describes why an individual row was rejected during
// normalization. Rejected rows are dropped, never fatal.
type RowError struct {
	Index  int
	Field  string
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: field %q: %s", e.Index, e.Field, e.Reason)
}

// NewRowError creates a new RowError.
func NewRowError(index int, field, reason string) *RowError {
	return &RowError{Index: index, Field: field, Reason: reason}
}

// ReportError represents a failure while producing a coaching report.
type ReportError struct {
	Producer string
	Err      error
}

func (e *ReportError) Error() string {
	return fmt.Sprintf("coaching report [%s]: %v", e.Producer, e.Err)
}

func (e *ReportError) Unwrap() error {
	return e.Err
}

// NewReportError creates a new ReportError.
func NewReportError(producer string, err error) *ReportError {
	return &ReportError{Producer: producer, Err: err}
}

// StoreError represents a persistence failure with operation context.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
