package helpers

import (
	"errors"
	"fmt"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type SleepObserverError struct {
	Message string
	Cause   error
}

func (e *SleepObserverError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *SleepObserverError) Unwrap() error {
	return e.Cause
}

// Distinct error kinds for errors.As checks
type ConfigurationError struct{ SleepObserverError }
type NetworkError struct{ SleepObserverError }
type StorageError struct{ SleepObserverError }
type FeedError struct{ SleepObserverError }
type ValidationError struct{ SleepObserverError }

// -----------------------------------------------------------------------------
// Constructors
// -----------------------------------------------------------------------------

func NewConfigurationError(msg string, cause error) error {
	return &ConfigurationError{SleepObserverError{Message: msg, Cause: cause}}
}

func NewNetworkError(msg string, cause error) error {
	return &NetworkError{SleepObserverError{Message: msg, Cause: cause}}
}

func NewStorageError(msg string, cause error) error {
	return &StorageError{SleepObserverError{Message: msg, Cause: cause}}
}

func NewFeedError(msg string, cause error) error {
	return &FeedError{SleepObserverError{Message: msg, Cause: cause}}
}

func NewValidationError(msg string) error {
	return &ValidationError{SleepObserverError{Message: msg}}
}

// -----------------------------------------------------------------------------

// IsValidation reports whether err (or anything it wraps) is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
