package errors

import (
	"errors"
	"fmt"
)

// Common error types for the auth client
var (
	// Storage errors
	ErrStorageClosed      = errors.New("storage closed")
	ErrUnsupportedBackend = errors.New("unsupported storage backend")
	ErrInvalidStorageKey  = errors.New("invalid storage key")

	// Form errors
	ErrSubmitInProgress = errors.New("submit already in progress")
	ErrInvalidMode      = errors.New("invalid form mode")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
