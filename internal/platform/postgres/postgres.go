// Package postgres opens the shared database and owns the per-tenant schema
// layout used by the link and data stat stores.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/lib/pq"

	id "authlinks/pkg/domain"
	dErrors "authlinks/pkg/domain-errors"
	txcontext "authlinks/pkg/platform/tx"
)

const (
	schemaSuffix        = "_authority_links"
	defaultTxTimeout    = 5 * time.Second
	defaultMaxOpenConns = 20
	defaultConnLifetime = 30 * time.Minute
	TableLinks          = "instance_authority_link"
	TableAuthorityStats = "authority_data_stat"
)

// Open connects to dsn with the pgx driver and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetConnMaxLifetime(defaultConnLifetime)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// SchemaName returns the unquoted schema holding tenant's tables.
func SchemaName(tenant id.TenantID) string {
	return string(tenant) + schemaSuffix
}

// Table returns the quoted, schema-qualified name of table for tenant.
func Table(tenant id.TenantID, table string) string {
	return pq.QuoteIdentifier(SchemaName(tenant)) + "." + pq.QuoteIdentifier(table)
}

// Executor is satisfied by *sql.DB and *sql.Tx.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Conn returns the transaction stored in ctx, or db when there is none.
func Conn(ctx context.Context, db *sql.DB) Executor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return db
}

// RunInTx runs fn with a transaction stored in its context. The transaction
// commits when fn returns nil and rolls back otherwise.
func RunInTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, ok := txcontext.From(ctx); ok {
		return fn(ctx)
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultTxTimeout)
		defer cancel()
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.With(ctx, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Transactor exposes RunInTx for services that depend on a transaction port.
type Transactor struct {
	db *sql.DB
}

func NewTransactor(db *sql.DB) *Transactor {
	return &Transactor{db: db}
}

func (t *Transactor) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return RunInTx(ctx, t.db, fn)
}
