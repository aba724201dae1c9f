package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TxOptions are the options every governance transaction runs under.
// ReadCommitted is required, not a relaxation: writers serialize on
// pg_advisory_xact_lock, and the waiter must re-read whatever the previous
// lock holder committed. A repeatable-read snapshot is established by the
// transaction's first statement, before the lock wait, so it would hide
// that commit and let a stale check pass.
var TxOptions = pgx.TxOptions{IsoLevel: pgx.ReadCommitted}

// WithTx executes fn within one transaction. Every mutating governance
// operation runs through here so a failed check never leaves a partially
// applied write behind.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, TxOptions)
	if err != nil {
		return fmt.Errorf("platform/db: begin tx: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("platform/db: commit tx: %w", err)
	}

	return nil
}
