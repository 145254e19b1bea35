package codec

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrFormatNotFound is returned when no codec is registered for a format name
	ErrFormatNotFound = errors.New("serialization format not found")

	// ErrFormatExists is returned when registering a format name twice
	ErrFormatExists = errors.New("serialization format already registered")

	// ErrNameNotFound is returned when a tagged-type marker cannot be
	// resolved in the namespace supplied to the decoder
	ErrNameNotFound = errors.New("type name not found in namespace")

	// ErrMalformedTag is returned when a tagged object carries an
	// unusable marker or constructor arguments
	ErrMalformedTag = errors.New("malformed type tag")
)

// CodecError wraps errors with format context
type CodecError struct {
	Format string // Format name
	Err    error  // Underlying error
}

// Error implements the error interface
func (e *CodecError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("codec: %v", e.Err)
	}
	return fmt.Sprintf("codec: %s: %v", e.Format, e.Err)
}

// Unwrap returns the underlying error
func (e *CodecError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target
func (e *CodecError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// wrapError wraps an error with format context
func wrapError(format string, err error) error {
	if err == nil {
		return nil
	}
	return &CodecError{Format: format, Err: err}
}
