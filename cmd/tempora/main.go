package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	"github.com/tempora-hq/tempora/internal/allocations"
	"github.com/tempora-hq/tempora/internal/app"
	"github.com/tempora-hq/tempora/internal/auth"
	"github.com/tempora-hq/tempora/internal/cost"
	"github.com/tempora-hq/tempora/internal/observability"
	"github.com/tempora-hq/tempora/internal/periods"
	"github.com/tempora-hq/tempora/internal/platform/cache"
	"github.com/tempora-hq/tempora/internal/platform/db"
	"github.com/tempora-hq/tempora/internal/policy"
	"github.com/tempora-hq/tempora/internal/shared"
	"github.com/tempora-hq/tempora/internal/timesheet"
	"github.com/tempora-hq/tempora/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		// Sessions and summary caches live in Redis, so this is fatal.
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "tempora_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	auditLogger := shared.NewAuditLogger(dbpool)
	metrics := observability.NewMetrics()
	policyMW := policy.Middleware{Logger: logger}

	ceiling := decimal.NewFromInt(cfg.BudgetCeilingHours)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager)

	periodRepo := periods.NewRepository(dbpool)
	periodService := periods.NewService(periodRepo, auditLogger, logger)
	periodHandler := periods.NewHandler(logger, periodService, policyMW)

	entryRepo := timesheet.NewRepository(dbpool)
	ledger := timesheet.NewLedger(ceiling)
	entryService := timesheet.NewService(entryRepo, ledger, auditLogger, logger)
	entryService.WithMetrics(metrics)
	entryHandler := timesheet.NewHandler(logger, entryService, policyMW)

	costRepo := cost.NewRepository(dbpool)
	costEngine := cost.NewEngine(ceiling)
	costCache := cost.NewCache(redisClient, cfg.SummaryCacheTTL)
	costService := cost.NewService(costRepo, costEngine, costCache, auditLogger, logger)
	costService.WithMetrics(metrics)
	// Entry mutations change the hours the summaries aggregate.
	entryService.WithInvalidator(costCache)
	costHandler := cost.NewHandler(logger, costService, cost.NewCSVExporter(), policyMW)

	allocationRepo := allocations.NewRepository(dbpool)
	allocationService := allocations.NewService(allocationRepo, auditLogger, logger)
	allocationHandler := allocations.NewHandler(logger, allocationService, policyMW)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		AuthHandler:        authHandler,
		PeriodsHandler:     periodHandler,
		TimesheetHandler:   entryHandler,
		CostHandler:        costHandler,
		AllocationsHandler: allocationHandler,
		JobHandler:         jobHandler,
		Pool:               dbpool,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
