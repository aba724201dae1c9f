package allocations

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tempora-hq/tempora/internal/platform/db"
	"github.com/tempora-hq/tempora/internal/shared"
)

// Repository persists project allocations.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListByUser(ctx context.Context, userID int64) ([]Allocation, error)
}

// TxRepository defines the serialized insert path.
type TxRepository interface {
	// AcquireUserLock serializes allocation inserts for one user so two
	// concurrent adds cannot both pass a stale sum.
	AcquireUserLock(ctx context.Context, userID int64) error
	SumPercent(ctx context.Context, userID int64) (decimal.Decimal, error)
	Insert(ctx context.Context, alloc Allocation) (Allocation, error)
}

var _ Repository = (*pgRepository)(nil)
var _ TxRepository = (*pgTxRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

// WithTx runs fn under db.TxOptions; the read-committed level makes the
// post-lock SumPercent see the previous lock holder's committed insert.
func (r *pgRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, db.TxOptions)
	if err != nil {
		return err
	}
	if err := fn(ctx, &pgTxRepository{tx: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func (r *pgRepository) ListByUser(ctx context.Context, userID int64) ([]Allocation, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, user_id, project_id, percent, created_at
FROM project_allocations WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Allocation
	for rows.Next() {
		var a Allocation
		if err := rows.Scan(&a.ID, &a.UserID, &a.ProjectID, &a.Percent, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type pgTxRepository struct {
	tx pgx.Tx
}

func (t *pgTxRepository) AcquireUserLock(ctx context.Context, userID int64) error {
	_, err := t.tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, shared.AllocationLockKey(userID))
	return err
}

func (t *pgTxRepository) SumPercent(ctx context.Context, userID int64) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := t.tx.QueryRow(ctx, `SELECT COALESCE(SUM(percent), 0) FROM project_allocations
WHERE user_id = $1`, userID).Scan(&sum)
	return sum, err
}

func (t *pgTxRepository) Insert(ctx context.Context, alloc Allocation) (Allocation, error) {
	err := t.tx.QueryRow(ctx, `INSERT INTO project_allocations (user_id, project_id, percent, created_at)
VALUES ($1, $2, $3, $4) RETURNING id`,
		alloc.UserID, alloc.ProjectID, alloc.Percent, alloc.CreatedAt).Scan(&alloc.ID)
	return alloc, err
}
