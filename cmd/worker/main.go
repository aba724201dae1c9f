package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/tempora-hq/tempora/internal/app"
	"github.com/tempora-hq/tempora/internal/cost"
	jobmetrics "github.com/tempora-hq/tempora/internal/jobs"
	"github.com/tempora-hq/tempora/internal/periods"
	"github.com/tempora-hq/tempora/internal/shared"
	"github.com/tempora-hq/tempora/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}

	ceiling := decimal.NewFromInt(cfg.BudgetCeilingHours)
	auditLogger := shared.NewAuditLogger(pool)
	metrics := jobmetrics.NewMetrics(nil)

	periodRepo := periods.NewRepository(pool)
	periodService := periods.NewService(periodRepo, auditLogger, logger)

	costRepo := cost.NewRepository(pool)
	costEngine := cost.NewEngine(ceiling)
	costCache := cost.NewCache(redisClient, cfg.SummaryCacheTTL)
	costService := cost.NewService(costRepo, costEngine, costCache, auditLogger, logger)

	integrityJob := jobs.NewBudgetIntegrityJob(pool, ceiling, logger, metrics)
	warmupJob := jobs.NewCostWarmupJob(costService, periodService, logger, metrics)

	integrityTask, err := jobs.NewBudgetIntegrityTask(jobs.BudgetIntegrityPayload{})
	if err != nil {
		logger.Error("build integrity task", slog.Any("error", err))
		os.Exit(1)
	}
	warmupTask, err := jobs.NewCostWarmupTask(jobs.CostWarmupPayload{})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskBudgetIntegrity, Handler: integrityJob.Handle},
			{Type: jobs.TaskCostWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "15 1 * * *", Task: integrityTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "45 1 * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
