package learning

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means a referenced course, content, question or option
	// does not exist (or is not visible to the caller).
	ErrNotFound = errors.New("not found")
	// ErrValidation means the request was malformed; it is returned before
	// anything is written.
	ErrValidation = errors.New("validation error")
	// ErrConflict means lock or version contention; the caller should retry.
	ErrConflict = errors.New("conflict")
	// ErrIntegrity means a uniqueness or constraint violation at the store.
	ErrIntegrity = errors.New("integrity error")
	// ErrStoreUnavailable wraps any other persistence failure.
	ErrStoreUnavailable = errors.New("store unavailable")
)

func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// IsRetryable reports whether err is worth retrying with backoff.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict)
}
