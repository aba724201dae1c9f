package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	jobmetrics "github.com/tempora-hq/tempora/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// BudgetIntegrityJob sweeps stored entries and reports any user/period tuple
// whose summed hours exceed the ceiling. Violations cannot happen through the
// API path, so any hit points at out-of-band writes.
type BudgetIntegrityJob struct {
	Pool    *pgxpool.Pool
	Ceiling decimal.Decimal
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewBudgetIntegrityJob wires dependencies for the integrity handler.
func NewBudgetIntegrityJob(pool *pgxpool.Pool, ceiling decimal.Decimal, logger *slog.Logger, metrics *jobmetrics.Metrics) *BudgetIntegrityJob {
	return &BudgetIntegrityJob{Pool: pool, Ceiling: ceiling, Logger: logger, Metrics: metrics}
}

type budgetViolation struct {
	UserID   int64
	Year     int
	Semester string
	Total    decimal.Decimal
}

// Handle processes budget integrity tasks.
func (j *BudgetIntegrityJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("budget integrity: handler not configured")
	}
	var payload BudgetIntegrityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskBudgetIntegrity)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	if payload.Year != 0 {
		logger = logger.With(slog.Int("year", payload.Year), slog.String("semester", payload.Semester))
	}
	logger.Info("starting budget integrity scan")

	violations, err := j.scan(ctx, payload)
	if err != nil {
		resultErr = err
		logger.Error("scan budget totals", slog.Any("error", err))
		return resultErr
	}

	j.metrics().AddViolations(len(violations))
	for _, v := range violations {
		logger.Error("hour ceiling exceeded in stored data",
			slog.Int64("user_id", v.UserID),
			slog.Int("year", v.Year),
			slog.String("semester", v.Semester),
			slog.String("total_hours", v.Total.String()),
			slog.String("ceiling", j.Ceiling.String()))
	}
	if len(violations) == 0 {
		logger.Info("budget integrity scan clean")
	}
	return resultErr
}

func (j *BudgetIntegrityJob) scan(ctx context.Context, payload BudgetIntegrityPayload) ([]budgetViolation, error) {
	if j.Pool == nil {
		return nil, errors.New("budget integrity: pool not configured")
	}
	query := `
		SELECT user_id, year, semester, SUM(hours) AS total
		FROM time_entries
		GROUP BY user_id, year, semester
		HAVING SUM(hours) > $1`
	args := []any{j.Ceiling}
	if payload.Year != 0 {
		query += ` AND year = $2 AND semester = $3`
		args = append(args, payload.Year, payload.Semester)
	}

	rows, err := j.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	violations := make([]budgetViolation, 0)
	for rows.Next() {
		var v budgetViolation
		if err := rows.Scan(&v.UserID, &v.Year, &v.Semester, &v.Total); err != nil {
			return nil, err
		}
		violations = append(violations, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return violations, nil
}

func (j *BudgetIntegrityJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskBudgetIntegrity))
	}
	return slog.Default().With(slog.String("job", TaskBudgetIntegrity))
}

func (j *BudgetIntegrityJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
