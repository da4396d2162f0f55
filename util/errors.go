// Package util provides shared utility types for fluxgate.
//
// # Error Conventions
//
// This project follows a standardized error pattern across all packages:
//
//   - Sentinel errors (errors.New) for well-known, stable conditions
//     that callers check with errors.Is(). Example: ErrNotFound.
//   - Structured error types for context-rich errors that carry
//     additional fields (e.g., ActionNotFoundError). Each type
//     implements Error(), Unwrap() (if wrapping), and Is().
//   - fmt.Errorf with %w for ad-hoc wrapping that adds context to an
//     existing error without introducing a new type.
//
// All custom error types must implement:
//
//	Error() string           – human-readable message
//	Unwrap() error           – if the type wraps another error
//	Is(target error) bool    – for errors.Is() compatibility
package util

import (
	"errors"
	"fmt"
)

// Common sentinel errors.
var (
	ErrNotFound      = errors.New("not found")
	ErrStateMismatch = errors.New("state/registry length mismatch")
)

// ActionNotFoundError is returned when no registered action matches a path.
type ActionNotFoundError struct {
	Path string
}

// Error implements the error interface.
func (e *ActionNotFoundError) Error() string {
	return fmt.Sprintf("no action found for path %s", e.Path)
}

// Is checks if the error matches the target.
func (e *ActionNotFoundError) Is(target error) bool {
	if target == ErrNotFound {
		return true
	}
	_, ok := target.(*ActionNotFoundError)
	return ok
}

// NewActionNotFoundError creates a new ActionNotFoundError.
func NewActionNotFoundError(path string) *ActionNotFoundError {
	return &ActionNotFoundError{Path: path}
}

// StoreNotFoundError is returned when no registered store matches a path.
type StoreNotFoundError struct {
	Path string
}

// Error implements the error interface.
func (e *StoreNotFoundError) Error() string {
	return fmt.Sprintf("no store found for path %s", e.Path)
}

// Is checks if the error matches the target.
func (e *StoreNotFoundError) Is(target error) bool {
	if target == ErrNotFound {
		return true
	}
	_, ok := target.(*StoreNotFoundError)
	return ok
}

// NewStoreNotFoundError creates a new StoreNotFoundError.
func NewStoreNotFoundError(path string) *StoreNotFoundError {
	return &StoreNotFoundError{Path: path}
}

// StateMismatchError is returned when a state snapshot list does not line
// up with the registry's store sequence.
type StateMismatchError struct {
	Want int
	Got  int
}

// Error implements the error interface.
func (e *StateMismatchError) Error() string {
	return fmt.Sprintf("state/registry length mismatch: registry has %d stores, snapshot has %d entries", e.Want, e.Got)
}

// Is checks if the error matches the target.
func (e *StateMismatchError) Is(target error) bool {
	if target == ErrStateMismatch {
		return true
	}
	_, ok := target.(*StateMismatchError)
	return ok
}

// NewStateMismatchError creates a new StateMismatchError.
func NewStateMismatchError(want, got int) *StateMismatchError {
	return &StateMismatchError{Want: want, Got: got}
}

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
