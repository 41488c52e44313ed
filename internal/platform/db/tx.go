package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey string

const txKey contextKey = "db_tx"

// WithTx returns a copy of ctx carrying the given transaction. Repositories
// that see a transaction in context execute their statements on it instead of
// the pool.
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey, tx)
}

// TxFromContext retrieves the transaction from context, or nil.
func TxFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey).(pgx.Tx)
	return tx
}

// InTx runs fn inside a transaction carried through the context. The
// transaction is committed when fn returns nil and rolled back otherwise. If
// the context already carries a transaction, fn joins it and commit/rollback
// is left to the outer call.
func InTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	if TxFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(WithTx(ctx, tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Runner binds InTx to a pool so domain services can take a transaction
// runner as a narrow dependency.
type Runner struct{ pool *pgxpool.Pool }

func NewRunner(pool *pgxpool.Pool) *Runner { return &Runner{pool: pool} }

func (r *Runner) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return InTx(ctx, r.pool, fn)
}
