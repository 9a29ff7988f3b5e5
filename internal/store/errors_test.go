package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/coeus/internal/learning"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unique violation", &pgconn.PgError{Code: "23505", Message: "duplicate key"}, learning.ErrIntegrity},
		{"fk violation", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503"}), learning.ErrIntegrity},
		{"lock timeout", &pgconn.PgError{Code: "55P03"}, learning.ErrConflict},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, learning.ErrConflict},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, learning.ErrConflict},
		{"other pg error", &pgconn.PgError{Code: "42P01"}, learning.ErrStoreUnavailable},
		{"plain error", errors.New("connection reset"), learning.ErrStoreUnavailable},
		{"already classified", learning.NotFoundf("content x"), learning.ErrNotFound},
		{"canceled", context.Canceled, context.Canceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, classify(tt.err), tt.want)
		})
	}
	assert.NoError(t, classify(nil))
}

func TestClassifyKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := classify(cause)
	require.ErrorIs(t, err, learning.ErrStoreUnavailable)
	assert.ErrorIs(t, err, cause)
}

func TestParseDriver(t *testing.T) {
	for in, want := range map[string]Driver{
		"":           DriverSQLite,
		"sqlite3":    DriverSQLite,
		"Postgres":   DriverPostgres,
		" pgx ":      DriverPostgres,
		"postgresql": DriverPostgres,
	} {
		got, err := ParseDriver(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseDriver("mysql")
	assert.Error(t, err)
}
