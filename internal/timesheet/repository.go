package timesheet

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tempora-hq/tempora/internal/periods"
	"github.com/tempora-hq/tempora/internal/platform/db"
	"github.com/tempora-hq/tempora/internal/shared"
)

// StatusCount pairs a workflow status with the number of entries in it.
type StatusCount struct {
	Status EntryStatus
	Count  int
}

// Repository defines time entry data access outside transactions.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error

	Get(ctx context.Context, id uuid.UUID) (TimeEntry, error)
	ListByTuple(ctx context.Context, userID int64, year int, semester periods.Semester) ([]TimeEntry, error)
	ListByUser(ctx context.Context, userID int64) ([]TimeEntry, error)
	SumHours(ctx context.Context, userID int64, year int, semester periods.Semester) (decimal.Decimal, error)
	StatusCounts(ctx context.Context, userID int64, year int, semester periods.Semester) ([]StatusCount, error)
	History(ctx context.Context, entryID uuid.UUID) ([]ValidationRecord, error)
}

// TxRepository defines the operations available inside one atomic unit.
// Every mutating governance operation runs its checks and its write
// through the same TxRepository so partial application is never visible.
type TxRepository interface {
	// ActivePeriod re-reads the active period inside the transaction, so
	// the period gate is evaluated at commit time rather than trusted from
	// an earlier client-side or handler-side check.
	ActivePeriod(ctx context.Context) (periods.Period, error)
	// AcquireBudgetLock serializes all writers for one (user, year,
	// semester) budget key until the transaction ends.
	AcquireBudgetLock(ctx context.Context, userID int64, year int, semester periods.Semester) error
	SumHours(ctx context.Context, userID int64, year int, semester periods.Semester) (decimal.Decimal, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (TimeEntry, error)
	Insert(ctx context.Context, entry TimeEntry) error
	UpdateContent(ctx context.Context, entry TimeEntry) error
	UpdateStatus(ctx context.Context, entry TimeEntry) error
	Delete(ctx context.Context, id uuid.UUID) error
	AppendValidationRecord(ctx context.Context, rec ValidationRecord) (ValidationRecord, error)
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

// WithTx runs fn in one transaction under db.TxOptions. Budget
// reservations rely on the read-committed level there: after waiting on
// the advisory lock, SumHours must see the hours the previous holder
// committed, which a snapshot taken before the lock wait would not.
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

const entryColumns = `id, user_id, project_id, activity_id, hours, year, semester, status, comment,
created_at, updated_at, last_validated_by, last_validated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (TimeEntry, error) {
	var e TimeEntry
	err := row.Scan(&e.ID, &e.UserID, &e.ProjectID, &e.ActivityID, &e.Hours, &e.Year, &e.Semester,
		&e.Status, &e.Comment, &e.CreatedAt, &e.UpdatedAt, &e.LastValidatedBy, &e.LastValidatedAt)
	return e, err
}

func (r *pgRepository) Get(ctx context.Context, id uuid.UUID) (TimeEntry, error) {
	e, err := scanEntry(r.pool.QueryRow(ctx, `SELECT `+entryColumns+` FROM time_entries WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return TimeEntry{}, ErrEntryNotFound
	}
	if err != nil {
		return TimeEntry{}, err
	}
	return e, nil
}

func (r *pgRepository) ListByTuple(ctx context.Context, userID int64, year int, semester periods.Semester) ([]TimeEntry, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+entryColumns+` FROM time_entries
WHERE user_id = $1 AND year = $2 AND semester = $3 ORDER BY created_at`, userID, year, semester)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntries(rows)
}

func (r *pgRepository) ListByUser(ctx context.Context, userID int64) ([]TimeEntry, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+entryColumns+` FROM time_entries
WHERE user_id = $1 ORDER BY year DESC, semester DESC, created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntries(rows)
}

func collectEntries(rows pgx.Rows) ([]TimeEntry, error) {
	var out []TimeEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

const sumHoursQuery = `SELECT COALESCE(SUM(hours), 0) FROM time_entries
WHERE user_id = $1 AND year = $2 AND semester = $3`

func (r *pgRepository) SumHours(ctx context.Context, userID int64, year int, semester periods.Semester) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.pool.QueryRow(ctx, sumHoursQuery, userID, year, semester).Scan(&sum)
	return sum, err
}

func (r *pgRepository) StatusCounts(ctx context.Context, userID int64, year int, semester periods.Semester) ([]StatusCount, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM time_entries
WHERE user_id = $1 AND year = $2 AND semester = $3 GROUP BY status`, userID, year, semester)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []StatusCount
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (r *pgRepository) History(ctx context.Context, entryID uuid.UUID) ([]ValidationRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, entry_id, status, comment, validated_by, created_at
FROM validation_records WHERE entry_id = $1 ORDER BY created_at, id`, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ValidationRecord
	for rows.Next() {
		var rec ValidationRecord
		if err := rows.Scan(&rec.ID, &rec.EntryID, &rec.Status, &rec.Comment, &rec.ValidatedBy, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type pgTxRepository struct {
	tx pgx.Tx
}

func (t *pgTxRepository) ActivePeriod(ctx context.Context) (periods.Period, error) {
	var p periods.Period
	err := t.tx.QueryRow(ctx, `SELECT id, year, semester, is_active, created_at, updated_at
FROM periods WHERE is_active LIMIT 1`).
		Scan(&p.ID, &p.Year, &p.Semester, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return periods.Period{}, periods.ErrNoActivePeriod
	}
	if err != nil {
		return periods.Period{}, err
	}
	return p, nil
}

func (t *pgTxRepository) AcquireBudgetLock(ctx context.Context, userID int64, year int, semester periods.Semester) error {
	_, err := t.tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`,
		shared.BudgetLockKey(userID, year, string(semester)))
	return err
}

func (t *pgTxRepository) SumHours(ctx context.Context, userID int64, year int, semester periods.Semester) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := t.tx.QueryRow(ctx, sumHoursQuery, userID, year, semester).Scan(&sum)
	return sum, err
}

func (t *pgTxRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (TimeEntry, error) {
	e, err := scanEntry(t.tx.QueryRow(ctx, `SELECT `+entryColumns+` FROM time_entries WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return TimeEntry{}, ErrEntryNotFound
	}
	if err != nil {
		return TimeEntry{}, err
	}
	return e, nil
}

func (t *pgTxRepository) Insert(ctx context.Context, entry TimeEntry) error {
	_, err := t.tx.Exec(ctx, `INSERT INTO time_entries
(id, user_id, project_id, activity_id, hours, year, semester, status, comment, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		entry.ID, entry.UserID, entry.ProjectID, entry.ActivityID, entry.Hours,
		entry.Year, entry.Semester, entry.Status, entry.Comment, entry.CreatedAt, entry.UpdatedAt)
	return err
}

func (t *pgTxRepository) UpdateContent(ctx context.Context, entry TimeEntry) error {
	tag, err := t.tx.Exec(ctx, `UPDATE time_entries
SET project_id = $2, activity_id = $3, hours = $4, comment = $5, updated_at = $6
WHERE id = $1`,
		entry.ID, entry.ProjectID, entry.ActivityID, entry.Hours, entry.Comment, entry.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (t *pgTxRepository) UpdateStatus(ctx context.Context, entry TimeEntry) error {
	tag, err := t.tx.Exec(ctx, `UPDATE time_entries
SET status = $2, updated_at = $3, last_validated_by = $4, last_validated_at = $5
WHERE id = $1`,
		entry.ID, entry.Status, entry.UpdatedAt, entry.LastValidatedBy, entry.LastValidatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (t *pgTxRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM time_entries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (t *pgTxRepository) AppendValidationRecord(ctx context.Context, rec ValidationRecord) (ValidationRecord, error) {
	err := t.tx.QueryRow(ctx, `INSERT INTO validation_records (entry_id, status, comment, validated_by, created_at)
VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		rec.EntryID, rec.Status, rec.Comment, rec.ValidatedBy, rec.CreatedAt).Scan(&rec.ID)
	return rec, err
}
