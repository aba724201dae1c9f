package cost

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tempora-hq/tempora/internal/periods"
)

// Repository reads proforma cost configuration and period entry rows.
type Repository interface {
	GetProforma(ctx context.Context, userID int64, year int) (ProformaCost, error)
	UpsertProforma(ctx context.Context, pc ProformaCost) error
	ListProformaByYear(ctx context.Context, year int) ([]ProformaCost, error)
	ListEntryRows(ctx context.Context, year int, semester periods.Semester) ([]EntryRow, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) GetProforma(ctx context.Context, userID int64, year int) (ProformaCost, error) {
	var pc ProformaCost
	err := r.pool.QueryRow(ctx, `SELECT user_id, year, annual_cost FROM proforma_costs
WHERE user_id = $1 AND year = $2`, userID, year).Scan(&pc.UserID, &pc.Year, &pc.AnnualCost)
	if errors.Is(err, pgx.ErrNoRows) {
		return ProformaCost{}, ErrProformaNotFound
	}
	if err != nil {
		return ProformaCost{}, err
	}
	return pc, nil
}

func (r *pgRepository) UpsertProforma(ctx context.Context, pc ProformaCost) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO proforma_costs (user_id, year, annual_cost)
VALUES ($1, $2, $3)
ON CONFLICT (user_id, year) DO UPDATE SET annual_cost = EXCLUDED.annual_cost`,
		pc.UserID, pc.Year, pc.AnnualCost)
	return err
}

func (r *pgRepository) ListProformaByYear(ctx context.Context, year int) ([]ProformaCost, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id, year, annual_cost FROM proforma_costs
WHERE year = $1 ORDER BY user_id`, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ProformaCost
	for rows.Next() {
		var pc ProformaCost
		if err := rows.Scan(&pc.UserID, &pc.Year, &pc.AnnualCost); err != nil {
			return nil, err
		}
		out = append(out, pc)
	}
	return out, rows.Err()
}

func (r *pgRepository) ListEntryRows(ctx context.Context, year int, semester periods.Semester) ([]EntryRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id, project_id, hours, status FROM time_entries
WHERE year = $1 AND semester = $2`, year, semester)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []EntryRow
	for rows.Next() {
		var row EntryRow
		if err := rows.Scan(&row.UserID, &row.ProjectID, &row.Hours, &row.Status); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
