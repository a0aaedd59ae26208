package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrServiceUnavailable is returned when the model service cannot be reached.
	ErrServiceUnavailable = errors.New("model service unavailable")
	// ErrEmptyDocument is returned when an uploaded document yields no extractable text.
	ErrEmptyDocument = errors.New("document has no extractable text")
	// ErrUnsupportedFormat is returned when a file extension is not recognized.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrConflictingState is returned when an operation is rejected because it
	// would invalidate existing state, e.g. changing the embedding model while
	// documents are still indexed.
	ErrConflictingState = errors.New("conflicting state")
	// ErrStorageFailure is returned when a durable write to one of the stores fails.
	ErrStorageFailure = errors.New("storage failure")
)

// Unavailable wraps ErrServiceUnavailable with the endpoint that was attempted.
func Unavailable(endpoint string, err error) error {
	return fmt.Errorf("%w at %s: %v", ErrServiceUnavailable, endpoint, err)
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
