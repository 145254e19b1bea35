package kv

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrKeyNotFound is returned when a key is absent from a collection
	ErrKeyNotFound = errors.New("key not found")

	// ErrStoreClosed is returned when trying to use a closed store
	ErrStoreClosed = errors.New("store is closed")

	// ErrTxOpen is returned when beginning a transaction while one is pending
	ErrTxOpen = errors.New("transaction already open")

	// ErrNoTx is returned when committing or rolling back without a
	// pending transaction
	ErrNoTx = errors.New("no open transaction")
)

// StoreError wraps errors with operation context
type StoreError struct {
	Op  string // Operation name
	Err error  // Underlying error
}

// Error implements the error interface
func (e *StoreError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("littledb: %v", e.Err)
	}
	return fmt.Sprintf("littledb: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target
func (e *StoreError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// wrapError wraps an error with operation context
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
