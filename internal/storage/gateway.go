// Package storage is the data access gateway shared by every repository.
// Statements are written with ? placeholders and rebound for the driver
// in use.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/Domenick1991/flightops/config"
)

// Querier is the statement surface available both on the gateway and
// inside a transaction started by WithTransaction.
type Querier interface {
	Query(ctx context.Context, dest any, query string, args ...any) error
	QueryOne(ctx context.Context, dest any, query string, args ...any) (bool, error)
	Execute(ctx context.Context, query string, args ...any) (int64, error)
	InsertReturningID(ctx context.Context, query string, args ...any) (int64, error)
	CallProcedure(ctx context.Context, dest any, name string, args ...any) error
	CallFunction(ctx context.Context, dest any, name string, args ...any) error
	DriverName() string
}

// SupportsRoutines reports whether q's engine has the stored procedures and
// functions from the postgres schema. The embedded sqlite schema has none.
func SupportsRoutines(q Querier) bool {
	return q.DriverName() != config.DriverSQLite
}

// RunInTransaction runs fn in a new transaction when q is the gateway and
// directly on q when q already belongs to a transaction.
func RunInTransaction(ctx context.Context, q Querier, fn func(tx Querier) error) error {
	if g, ok := q.(*Gateway); ok {
		return g.WithTransaction(ctx, fn)
	}
	return fn(q)
}

type Gateway struct {
	db  *sqlx.DB
	log *logrus.Entry
}

func NewGateway(db *sqlx.DB, log *logrus.Entry) *Gateway {
	return &Gateway{db: db, log: log}
}

func (g *Gateway) DriverName() string {
	return g.db.DriverName()
}

func (g *Gateway) Ping(ctx context.Context) error {
	return g.db.PingContext(ctx)
}

// Query runs a read and scans all rows into dest, which must be a slice pointer.
func (g *Gateway) Query(ctx context.Context, dest any, query string, args ...any) error {
	return runner{ext: g.db}.Query(ctx, dest, query, args...)
}

// QueryOne scans at most one row into dest and reports whether a row was found.
func (g *Gateway) QueryOne(ctx context.Context, dest any, query string, args ...any) (bool, error) {
	return runner{ext: g.db}.QueryOne(ctx, dest, query, args...)
}

func (g *Gateway) CallFunction(ctx context.Context, dest any, name string, args ...any) error {
	return runner{ext: g.db}.CallFunction(ctx, dest, name, args...)
}

// Execute runs a write in its own transaction and returns the affected row count.
func (g *Gateway) Execute(ctx context.Context, query string, args ...any) (int64, error) {
	var affected int64
	err := g.WithTransaction(ctx, func(tx Querier) error {
		n, err := tx.Execute(ctx, query, args...)
		affected = n
		return err
	})
	return affected, err
}

func (g *Gateway) InsertReturningID(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	err := g.WithTransaction(ctx, func(tx Querier) error {
		var err error
		id, err = tx.InsertReturningID(ctx, query, args...)
		return err
	})
	return id, err
}

// CallProcedure invokes a stored procedure in its own transaction.
func (g *Gateway) CallProcedure(ctx context.Context, dest any, name string, args ...any) error {
	return g.WithTransaction(ctx, func(tx Querier) error {
		return tx.CallProcedure(ctx, dest, name, args...)
	})
}

// WithTransaction runs fn inside one transaction. The transaction commits
// when fn returns nil and rolls back when fn returns an error or panics.
func (g *Gateway) WithTransaction(ctx context.Context, fn func(tx Querier) error) (err error) {
	tx, err := g.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(runner{ext: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			g.log.WithError(rbErr).Warn("rollback failed")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

var _ Querier = (*Gateway)(nil)

// runner executes statements on either *sqlx.DB or *sqlx.Tx.
type runner struct {
	ext sqlx.ExtContext
}

func (r runner) DriverName() string {
	return r.ext.DriverName()
}

func (r runner) Query(ctx context.Context, dest any, query string, args ...any) error {
	return sqlx.SelectContext(ctx, r.ext, dest, r.ext.Rebind(query), args...)
}

func (r runner) QueryOne(ctx context.Context, dest any, query string, args ...any) (bool, error) {
	err := sqlx.GetContext(ctx, r.ext, dest, r.ext.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r runner) Execute(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.ext.ExecContext(ctx, r.ext.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// InsertReturningID expects query to end with RETURNING id.
func (r runner) InsertReturningID(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	if err := sqlx.GetContext(ctx, r.ext, &id, r.ext.Rebind(query), args...); err != nil {
		return 0, err
	}
	return id, nil
}

// CallProcedure issues CALL name(args...). When dest is nil the result set
// is discarded, otherwise it is scanned into dest (a slice pointer).
func (r runner) CallProcedure(ctx context.Context, dest any, name string, args ...any) error {
	stmt := r.ext.Rebind(fmt.Sprintf("CALL %s(%s)", name, placeholders(len(args))))
	if dest == nil {
		_, err := r.ext.ExecContext(ctx, stmt, args...)
		return err
	}
	return sqlx.SelectContext(ctx, r.ext, dest, stmt, args...)
}

func (r runner) CallFunction(ctx context.Context, dest any, name string, args ...any) error {
	stmt := r.ext.Rebind(fmt.Sprintf("SELECT %s(%s) AS result", name, placeholders(len(args))))
	return sqlx.GetContext(ctx, r.ext, dest, stmt, args...)
}

func placeholders(n int) string {
	if n == 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
