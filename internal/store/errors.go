package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mind-engage/coeus/internal/learning"
)

// Postgres SQLSTATE codes that mean "try again".
const (
	pgLockNotAvailable     = "55P03"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// classify maps driver errors onto the learning error taxonomy. Errors that
// already carry a taxonomy sentinel, and caller cancellations, pass through.
func classify(err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{
		learning.ErrNotFound,
		learning.ErrValidation,
		learning.ErrConflict,
		learning.ErrIntegrity,
		learning.ErrStoreUnavailable,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "23"):
			return fmt.Errorf("%w: %s", learning.ErrIntegrity, pgErr.Message)
		case pgErr.Code == pgLockNotAvailable,
			pgErr.Code == pgSerializationFailure,
			pgErr.Code == pgDeadlockDetected:
			return fmt.Errorf("%w: %s", learning.ErrConflict, pgErr.Message)
		}
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() & 0xff {
		case sqlite3.SQLITE_CONSTRAINT:
			return fmt.Errorf("%w: %s", learning.ErrIntegrity, liteErr.Error())
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return fmt.Errorf("%w: %s", learning.ErrConflict, liteErr.Error())
		}
	}

	return fmt.Errorf("%w: %w", learning.ErrStoreUnavailable, err)
}
