package periods

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tempora-hq/tempora/internal/platform/db"
	"github.com/tempora-hq/tempora/internal/shared"
)

// Repository persists reporting periods.
type Repository interface {
	Insert(ctx context.Context, year int, semester Semester) (Period, error)
	Activate(ctx context.Context, id int64) (Period, error)
	GetActive(ctx context.Context) (Period, error)
	Get(ctx context.Context, id int64) (Period, error)
	List(ctx context.Context) ([]Period, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const periodColumns = `id, year, semester, is_active, created_at, updated_at`

func scanPeriod(row pgx.Row) (Period, error) {
	var p Period
	err := row.Scan(&p.ID, &p.Year, &p.Semester, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *pgRepository) Insert(ctx context.Context, year int, semester Semester) (Period, error) {
	p, err := scanPeriod(r.pool.QueryRow(ctx, `INSERT INTO periods (year, semester, is_active)
VALUES ($1, $2, false) RETURNING `+periodColumns, year, semester))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Period{}, ErrPeriodExists
		}
		return Period{}, err
	}
	return p, nil
}

// Activate flips the active flag to the target period inside one
// transaction. Activations serialize on one advisory lock: row locks
// alone do not serialize the zero-active case, where two racers'
// clears both match nothing and both targets end up active. Under
// db.TxOptions the post-lock clear sees whatever the previous holder
// committed, so the last committer wins and no reader ever observes two
// active periods.
func (r *pgRepository) Activate(ctx context.Context, id int64) (Period, error) {
	var p Period
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, shared.PeriodRegistryLockKey()); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE periods SET is_active = false, updated_at = NOW() WHERE is_active`); err != nil {
			return err
		}
		var err error
		p, err = scanPeriod(tx.QueryRow(ctx, `UPDATE periods SET is_active = true, updated_at = NOW()
WHERE id = $1 RETURNING `+periodColumns, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPeriodNotFound
		}
		return err
	})
	if err != nil {
		return Period{}, err
	}
	return p, nil
}

func (r *pgRepository) GetActive(ctx context.Context) (Period, error) {
	p, err := scanPeriod(r.pool.QueryRow(ctx, `SELECT `+periodColumns+` FROM periods WHERE is_active LIMIT 1`))
	if errors.Is(err, pgx.ErrNoRows) {
		return Period{}, ErrNoActivePeriod
	}
	if err != nil {
		return Period{}, err
	}
	return p, nil
}

func (r *pgRepository) Get(ctx context.Context, id int64) (Period, error) {
	p, err := scanPeriod(r.pool.QueryRow(ctx, `SELECT `+periodColumns+` FROM periods WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Period{}, ErrPeriodNotFound
	}
	if err != nil {
		return Period{}, err
	}
	return p, nil
}

func (r *pgRepository) List(ctx context.Context) ([]Period, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+periodColumns+` FROM periods ORDER BY year DESC, semester DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
