package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/tempora-hq/tempora/internal/cost"
	jobmetrics "github.com/tempora-hq/tempora/internal/jobs"
	"github.com/tempora-hq/tempora/internal/periods"
)

// CostWarmupJob rebuilds cost summary caches so dashboard reads stay warm
// after proforma or entry changes.
type CostWarmupJob struct {
	Cost    *cost.Service
	Periods *periods.Service
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewCostWarmupJob wires dependencies for the warmup handler.
func NewCostWarmupJob(costSvc *cost.Service, periodSvc *periods.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *CostWarmupJob {
	return &CostWarmupJob{Cost: costSvc, Periods: periodSvc, Logger: logger, Metrics: metrics}
}

// Handle processes cost warmup tasks. A zero-valued payload falls back to the
// active period.
func (j *CostWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("cost warmup: handler not configured")
	}
	var payload CostWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskCostWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	req, err := j.resolveRequest(ctx, payload)
	if err != nil {
		if errors.Is(err, periods.ErrNoActivePeriod) {
			j.logger().Info("no active period, skipping warmup")
			return resultErr
		}
		resultErr = err
		return resultErr
	}

	logger := j.logger().With(slog.Int("year", req.Year), slog.String("semester", string(req.Semester)))
	logger.Info("starting cost warmup")

	warmCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	start := time.Now()
	if err := j.Cost.WarmSummaries(warmCtx, req); err != nil {
		resultErr = err
		logger.Error("warm summaries", slog.Any("error", err))
		return resultErr
	}
	logger.Info("completed cost warmup", slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *CostWarmupJob) resolveRequest(ctx context.Context, payload CostWarmupPayload) (cost.SummaryRequest, error) {
	if payload.Year != 0 {
		semester, err := periods.ParseSemester(payload.Semester)
		if err != nil {
			return cost.SummaryRequest{}, asynq.SkipRetry
		}
		return cost.SummaryRequest{Year: payload.Year, Semester: semester}, nil
	}
	active, err := j.Periods.GetActive(ctx)
	if err != nil {
		return cost.SummaryRequest{}, err
	}
	return cost.SummaryRequest{Year: active.Year, Semester: active.Semester}, nil
}

func (j *CostWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskCostWarmup))
	}
	return slog.Default().With(slog.String("job", TaskCostWarmup))
}

func (j *CostWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
