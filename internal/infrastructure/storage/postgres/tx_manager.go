package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"rebanho/internal/core/tx"
	"rebanho/pkg/logger"
)

var tracer = otel.Tracer("rebanho/tx")

var _ tx.Manager = (*TxManager)(nil)

// TxOptions configures transaction behavior.
type TxOptions struct {
	IsolationLevel pgx.TxIsoLevel
	AccessMode     pgx.TxAccessMode

	// StatementTimeout guards against runaway queries.
	StatementTimeout time.Duration
}

// DefaultTxOptions returns the defaults used for document posting.
func DefaultTxOptions() TxOptions {
	return TxOptions{
		IsolationLevel:   pgx.ReadCommitted,
		AccessMode:       pgx.ReadWrite,
		StatementTimeout: 30 * time.Second,
	}
}

// TxManager carries the active transaction through the context so that
// every repository call inside RunInTransaction shares one pgx.Tx.
// Nested RunInTransaction calls join the outer transaction.
type TxManager struct {
	pool *pgxpool.Pool
}

func NewTxManager(pool *Pool) *TxManager {
	return &TxManager{pool: pool.Pool}
}

type txKey struct{}

// RunInTransaction executes fn within a transaction. A transaction already
// present in ctx is reused.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.RunInTransactionWithOptions(ctx, DefaultTxOptions(), fn)
}

// RunInTransactionWithOptions executes fn with custom transaction options.
func (m *TxManager) RunInTransactionWithOptions(ctx context.Context, opts TxOptions, fn func(ctx context.Context) error) error {
	ctx, span := tracer.Start(ctx, "transaction",
		trace.WithAttributes(
			attribute.String("tx.isolation", string(opts.IsolationLevel)),
		))
	defer span.End()

	if existing := m.getTx(ctx); existing != nil {
		return fn(ctx)
	}

	dbTx, err := m.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   opts.IsolationLevel,
		AccessMode: opts.AccessMode,
	})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if opts.StatementTimeout > 0 {
		_, err = dbTx.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = '%dms'", opts.StatementTimeout.Milliseconds()))
		if err != nil {
			_ = dbTx.Rollback(ctx)
			return fmt.Errorf("set statement_timeout: %w", err)
		}
	}

	txCtx := context.WithValue(ctx, txKey{}, dbTx)
	if err := fn(txCtx); err != nil {
		// Rollback on a background context so it completes even when the
		// request context was cancelled.
		if rbErr := dbTx.Rollback(context.Background()); rbErr != nil {
			logger.Error(ctx, "rollback failed", "error", rbErr, "original_error", err)
		}
		return err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ReadOnly executes fn in a read-only transaction.
func (m *TxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	opts := DefaultTxOptions()
	opts.AccessMode = pgx.ReadOnly
	return m.RunInTransactionWithOptions(ctx, opts, fn)
}

func (m *TxManager) getTx(ctx context.Context) pgx.Tx {
	if dbTx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return dbTx
	}
	return nil
}

// TxFromContext exposes the active transaction, when there is one.
// Repositories that need savepoints (pgx.Tx.Begin on an open transaction)
// use this instead of GetQuerier.
func (m *TxManager) TxFromContext(ctx context.Context) (pgx.Tx, bool) {
	dbTx := m.getTx(ctx)
	return dbTx, dbTx != nil
}

// Querier is the subset of pgx shared by pool and transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// GetQuerier returns the context transaction when inside one, otherwise the
// pool. Repositories always go through this, so the same code works inside
// and outside transactions.
func (m *TxManager) GetQuerier(ctx context.Context) Querier {
	if dbTx := m.getTx(ctx); dbTx != nil {
		return dbTx
	}
	return m.pool
}
