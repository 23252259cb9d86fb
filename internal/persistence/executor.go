package persistence

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Args carries named query parameters. Every value is validated and bound
// as a typed parameter; values never end up concatenated into SQL text.
type Args map[string]any

// Querier is the query surface shared by the pooled executor and an open
// transaction. The op argument names the operation for error context.
type Querier interface {
	Exec(ctx context.Context, op, query string, args Args) (pgconn.CommandTag, error)
	Query(ctx context.Context, op, query string, args Args) (pgx.Rows, error)
	QueryRow(ctx context.Context, op, query string, args Args) pgx.Row
}

type pgxConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// dbTx is the slice of pgx.Tx the executor needs.
type dbTx interface {
	pgxConn
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Executor binds named parameters into parameterized queries against the
// pool, applying a per-call timeout. It never retries: idempotency is not
// guaranteed at this layer, so retry decisions belong to callers.
type Executor struct {
	conn    pgxConn
	begin   func(ctx context.Context) (dbTx, error)
	timeout time.Duration
}

// NewExecutor wraps the pool handle.
func NewExecutor(pool *pgxpool.Pool, timeout time.Duration) *Executor {
	return &Executor{
		conn: pool,
		begin: func(ctx context.Context) (dbTx, error) {
			return pool.Begin(ctx)
		},
		timeout: timeout,
	}
}

// Exec runs a statement that returns no rows.
func (e *Executor) Exec(ctx context.Context, op, query string, args Args) (pgconn.CommandTag, error) {
	named, err := bindArgs(args)
	if err != nil {
		return pgconn.CommandTag{}, wrapQueryErr(op, err)
	}
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	tag, err := e.conn.Exec(ctx, query, named)
	if err != nil {
		return pgconn.CommandTag{}, wrapQueryErr(op, err)
	}
	return tag, nil
}

// Query runs a statement returning rows. The timeout is released when the
// returned rows are closed.
func (e *Executor) Query(ctx context.Context, op, query string, args Args) (pgx.Rows, error) {
	named, err := bindArgs(args)
	if err != nil {
		return nil, wrapQueryErr(op, err)
	}
	ctx, cancel := e.withTimeout(ctx)

	rows, err := e.conn.Query(ctx, query, named)
	if err != nil {
		cancel()
		return nil, wrapQueryErr(op, err)
	}
	return &timedRows{Rows: rows, cancel: cancel}, nil
}

// QueryRow runs a statement expected to return a single row. Binding and
// execution errors surface from Scan.
func (e *Executor) QueryRow(ctx context.Context, op, query string, args Args) pgx.Row {
	named, err := bindArgs(args)
	if err != nil {
		return errRow{err: wrapQueryErr(op, err)}
	}
	ctx, cancel := e.withTimeout(ctx)
	return timedRow{op: op, row: e.conn.QueryRow(ctx, query, named), cancel: cancel}
}

// InTx runs fn inside a transaction: any error or panic triggers a
// rollback before propagating, otherwise the batch commits as a unit.
func (e *Executor) InTx(ctx context.Context, op string, fn func(q Querier) error) error {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	tx, err := e.begin(ctx)
	if err != nil {
		return wrapQueryErr(op, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(&txQuerier{ctx: ctx, tx: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return wrapQueryErr(op, err)
	}
	return nil
}

func (e *Executor) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, e.timeout)
}

// txQuerier exposes the Querier surface over an open transaction. The
// transaction context already carries the deadline.
type txQuerier struct {
	ctx context.Context
	tx  dbTx
}

func (t *txQuerier) Exec(_ context.Context, op, query string, args Args) (pgconn.CommandTag, error) {
	named, err := bindArgs(args)
	if err != nil {
		return pgconn.CommandTag{}, wrapQueryErr(op, err)
	}
	tag, err := t.tx.Exec(t.ctx, query, named)
	if err != nil {
		return pgconn.CommandTag{}, wrapQueryErr(op, err)
	}
	return tag, nil
}

func (t *txQuerier) Query(_ context.Context, op, query string, args Args) (pgx.Rows, error) {
	named, err := bindArgs(args)
	if err != nil {
		return nil, wrapQueryErr(op, err)
	}
	rows, err := t.tx.Query(t.ctx, query, named)
	if err != nil {
		return nil, wrapQueryErr(op, err)
	}
	return rows, nil
}

func (t *txQuerier) QueryRow(_ context.Context, op, query string, args Args) pgx.Row {
	named, err := bindArgs(args)
	if err != nil {
		return errRow{err: wrapQueryErr(op, err)}
	}
	return timedRow{op: op, row: t.tx.QueryRow(t.ctx, query, named), cancel: func() {}}
}

// bindArgs validates parameter values against the allowed runtime types
// and hands them to pgx as named arguments. Object-shaped values are
// rejected outright rather than silently coerced.
func bindArgs(args Args) (pgx.NamedArgs, error) {
	if len(args) == 0 {
		return pgx.NamedArgs{}, nil
	}
	named := make(pgx.NamedArgs, len(args))
	for name, value := range args {
		bound, err := bindValue(name, value)
		if err != nil {
			return nil, err
		}
		named[name] = bound
	}
	return named, nil
}

func bindValue(name string, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch value.(type) {
	case time.Time, *time.Time, []byte:
		return value, nil
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		elem := rv.Elem().Interface()
		if _, ok := elem.(time.Time); ok {
			return elem, nil
		}
		rv = rv.Elem()
		value = elem
	}

	switch rv.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return value, nil
	}
	return nil, fmt.Errorf("cannot bind parameter %q: unsupported type %T", name, value)
}

func wrapQueryErr(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	return fmt.Errorf("query failed: %s: %w", op, err)
}

// timedRows releases the query timeout when the row stream is closed.
type timedRows struct {
	pgx.Rows
	cancel context.CancelFunc
}

func (r *timedRows) Close() {
	r.Rows.Close()
	r.cancel()
}

// timedRow releases the query timeout once the row has been scanned.
type timedRow struct {
	op     string
	row    pgx.Row
	cancel context.CancelFunc
}

func (r timedRow) Scan(dest ...any) error {
	defer r.cancel()
	if err := r.row.Scan(dest...); err != nil {
		return wrapQueryErr(r.op, err)
	}
	return nil
}

type errRow struct {
	err error
}

func (r errRow) Scan(...any) error {
	return r.err
}
