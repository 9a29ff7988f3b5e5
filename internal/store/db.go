package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// DefaultLockTimeout bounds how long a writer waits for row locks before
// giving up with learning.ErrConflict.
const DefaultLockTimeout = 3 * time.Second

// DB is the progress store: a *sql.DB plus the dialect it speaks.
type DB struct {
	SQL         *sql.DB
	driver      Driver
	lockTimeout time.Duration
}

type Option func(*DB)

// WithLockTimeout overrides DefaultLockTimeout.
func WithLockTimeout(d time.Duration) Option {
	return func(db *DB) {
		if d > 0 {
			db.lockTimeout = d
		}
	}
}

// ParseDriver maps common aliases to a Driver.
func ParseDriver(s string) (Driver, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sqlite", "sqlite3":
		return DriverSQLite, nil
	case "postgres", "postgresql", "pg", "pgx":
		return DriverPostgres, nil
	default:
		return "", fmt.Errorf("unsupported driver: %s", s)
	}
}

// Open opens a DB, tunes the pool and ensures the schema exists.
func Open(ctx context.Context, driver Driver, dsn string, opts ...Option) (*DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:coeus.db?mode=rwc&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/coeus?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	sqldb, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	tunePool(driver, sqldb)

	if err := sqldb.PingContext(ctx); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if driver == DriverSQLite {
		if err := applySQLitePragmas(ctx, sqldb); err != nil {
			_ = sqldb.Close()
			return nil, err
		}
	}

	db := &DB{SQL: sqldb, driver: driver, lockTimeout: DefaultLockTimeout}
	for _, o := range opts {
		o(db)
	}
	if err := db.Migrate(ctx); err != nil {
		_ = sqldb.Close()
		return nil, err
	}
	return db, nil
}

// Migrate applies the schema for the DB's driver. It is idempotent.
func (d *DB) Migrate(ctx context.Context) error {
	schema := schemaSQLite
	if d.driver == DriverPostgres {
		schema = schemaPostgres
	}
	if _, err := d.SQL.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

func (d *DB) Driver() Driver { return d.driver }

// Close closes the underlying *sql.DB (safe to call multiple times).
func (d *DB) Close() error {
	if d == nil || d.SQL == nil {
		return nil
	}
	return d.SQL.Close()
}

func (d *DB) Ping(ctx context.Context) error {
	if d == nil || d.SQL == nil {
		return errors.New("store: DB is nil")
	}
	if err := d.SQL.PingContext(ctx); err != nil {
		return classify(err)
	}
	return nil
}

func tunePool(driver Driver, db *sql.DB) {
	switch driver {
	case DriverSQLite:
		// Single writer. Every transaction holds the only connection, which
		// also serializes writers inside this process.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	default:
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(45 * time.Minute)
		db.SetConnMaxIdleTime(15 * time.Minute)
	}
}

func applySQLitePragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
		"PRAGMA synchronous = NORMAL;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("store: sqlite pragma %q: %w", p, err)
		}
	}
	return nil
}
