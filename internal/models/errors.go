package models

import (
	"errors"
	"fmt"
)

// Custom errors
var (
	ErrNotFound    = errors.New("record not found")
	ErrNoGames     = errors.New("no games matched")
	ErrRunExists   = errors.New("run artifact already exists")
	ErrRunNotFound = errors.New("run artifact not found")
	ErrInvalidID   = errors.New("invalid ID format")
)

// ValidationError is a configuration error detected before any computation
// starts.
type ValidationError struct {
	Code    string
	Message string
}

// NewValidationError creates a validation error with a stable code
func NewValidationError(code, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsValidationError reports whether err is a configuration error
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
