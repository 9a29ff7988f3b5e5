package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mind-engage/coeus/internal/learning"
)

// TxMode selects how a unit of work is opened.
type TxMode int

const (
	// ReadTx is a consistent read-only snapshot.
	ReadTx TxMode = iota
	// WriteTx takes row locks; acquiring the connection and any row lock is
	// bounded by the DB's lock timeout and fails with learning.ErrConflict.
	WriteTx
)

// Tx is a unit of work. All queries of one operation go through the same
// Tx, which WithTx commits or rolls back; it is never shared between calls.
//
// Tx methods take no context: they run under the context the transaction
// was opened with, minus its cancellation.
type Tx struct {
	ctx    context.Context
	tx     *sql.Tx
	driver Driver
}

// WithTx runs fn inside a transaction and commits if fn returns nil.
// If fn returns an error the transaction is rolled back and the classified
// error is returned, so no partial writes are ever visible.
//
// Once the connection is acquired the transaction no longer observes ctx
// cancellation: the critical section is short and runs to commit or
// rollback.
func (d *DB) WithTx(ctx context.Context, mode TxMode, fn func(*Tx) error) (err error) {
	if d == nil || d.SQL == nil {
		return fmt.Errorf("%w: DB is nil", learning.ErrStoreUnavailable)
	}

	acquireCtx := ctx
	if mode == WriteTx {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, d.lockTimeout)
		defer cancel()
	}
	conn, err := d.SQL.Conn(acquireCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return learning.Conflictf("connection busy after %s", d.lockTimeout)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return classify(err)
	}
	defer conn.Close()

	txCtx := context.WithoutCancel(ctx)
	tx, err := conn.BeginTx(txCtx, d.txOptions(mode))
	if err != nil {
		return classify(fmt.Errorf("begin tx: %w", err))
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			err = classify(err)
			return
		}
		if e := tx.Commit(); e != nil {
			err = classify(fmt.Errorf("commit: %w", e))
		}
	}()

	if mode == WriteTx && d.driver == DriverPostgres {
		// SET cannot take bind parameters; the value is an integer we format.
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", d.lockTimeout.Milliseconds())
		if _, err = tx.ExecContext(txCtx, stmt); err != nil {
			return err
		}
	}

	err = fn(&Tx{ctx: txCtx, tx: tx, driver: d.driver})
	return err
}

func (d *DB) txOptions(mode TxMode) *sql.TxOptions {
	if d.driver != DriverPostgres {
		// The sqlite pool has one connection, so every tx is already a
		// serial snapshot.
		return nil
	}
	if mode == ReadTx {
		return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	}
	return &sql.TxOptions{Isolation: sql.LevelReadCommitted}
}

// forUpdate is appended to SELECTs that take row locks. SQLite has no row
// locks; its writers are serialized by the single pooled connection.
func (t *Tx) forUpdate() string {
	if t.driver == DriverPostgres {
		return " FOR UPDATE"
	}
	return ""
}

// forShare is forUpdate for readers that only need the row to stay put.
func (t *Tx) forShare() string {
	if t.driver == DriverPostgres {
		return " FOR SHARE"
	}
	return ""
}

func (t *Tx) exec(query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(t.ctx, query, args...)
}

func (t *Tx) query(query string, args ...any) (*sql.Rows, error) {
	return t.tx.QueryContext(t.ctx, query, args...)
}

func (t *Tx) queryRow(query string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(t.ctx, query, args...)
}
