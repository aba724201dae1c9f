package cost

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/tempora-hq/tempora/internal/observability"
	"github.com/tempora-hq/tempora/internal/shared"
)

// Service derives monetary cost from persisted entries and proforma
// configuration. It is read-only over the entry set; only proforma rows
// are written here.
type Service struct {
	repo    Repository
	engine  Engine
	cache   *Cache
	group   singleflight.Group
	audit   *shared.AuditLogger
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewService constructs a Service.
func NewService(repo Repository, engine Engine, cache *Cache, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		engine: engine,
		cache:  cache,
		audit:  audit,
		logger: logger,
	}
}

// WithMetrics attaches the application metric set.
func (s *Service) WithMetrics(m *observability.Metrics) {
	s.metrics = m
}

// HourlyRate returns the user's derived hourly rate for the year.
func (s *Service) HourlyRate(ctx context.Context, userID int64, year int) (decimal.Decimal, error) {
	pc, err := s.repo.GetProforma(ctx, userID, year)
	if err != nil {
		return decimal.Zero, err
	}
	return s.engine.HourlyRate(pc.AnnualCost), nil
}

// SetProforma stores the annual cost for a user and year and invalidates
// cached summaries.
func (s *Service) SetProforma(ctx context.Context, actor shared.Principal, pc ProformaCost) error {
	if !pc.AnnualCost.IsPositive() {
		return ErrInvalidAnnualCost
	}
	if err := s.repo.UpsertProforma(ctx, pc); err != nil {
		return err
	}
	if err := s.cache.Bump(ctx); err != nil && s.logger != nil {
		s.logger.Warn("bump cost cache", slog.Any("error", err))
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actor.UserID,
			Action:   "cost.proforma.set",
			Entity:   "proforma_cost",
			EntityID: strconv.FormatInt(pc.UserID, 10),
			Meta:     map[string]any{"year": pc.Year, "annual_cost": pc.AnnualCost.String()},
		})
	}
	return nil
}

// ProjectSummaries aggregates hours and cost per project for a period.
// Concurrent identical requests collapse to one build, and results are
// cached until the version bumps or the TTL lapses.
func (s *Service) ProjectSummaries(ctx context.Context, req SummaryRequest) ([]ProjectSummary, error) {
	key, err := s.summaryKey(ctx, "project", req)
	if err != nil {
		return nil, err
	}
	var cached []ProjectSummary
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	result, err, _ := s.group.Do(key, func() (any, error) {
		if s.metrics != nil {
			s.metrics.SummaryCacheMiss.Inc()
		}
		entries, rates, err := s.load(ctx, req)
		if err != nil {
			return nil, err
		}
		summaries := s.engine.AggregateByProject(entries, rates, s.logger)
		if err := s.cache.Set(ctx, key, summaries); err != nil && s.logger != nil {
			s.logger.Warn("cache project summaries", slog.Any("error", err))
		}
		return summaries, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]ProjectSummary), nil
}

// UserSummaries aggregates hours and cost per user for a period.
func (s *Service) UserSummaries(ctx context.Context, req SummaryRequest) ([]UserSummary, error) {
	key, err := s.summaryKey(ctx, "user", req)
	if err != nil {
		return nil, err
	}
	var cached []UserSummary
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	result, err, _ := s.group.Do(key, func() (any, error) {
		if s.metrics != nil {
			s.metrics.SummaryCacheMiss.Inc()
		}
		entries, rates, err := s.load(ctx, req)
		if err != nil {
			return nil, err
		}
		summaries := s.engine.AggregateByUser(entries, rates, s.logger)
		if err := s.cache.Set(ctx, key, summaries); err != nil && s.logger != nil {
			s.logger.Warn("cache user summaries", slog.Any("error", err))
		}
		return summaries, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]UserSummary), nil
}

// InvalidateSummaries drops every cached summary.
func (s *Service) InvalidateSummaries(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

// WarmSummaries precomputes both summary kinds for a period, used by the
// background warmup job.
func (s *Service) WarmSummaries(ctx context.Context, req SummaryRequest) error {
	if _, err := s.ProjectSummaries(ctx, req); err != nil {
		return fmt.Errorf("cost: warm project summaries: %w", err)
	}
	if _, err := s.UserSummaries(ctx, req); err != nil {
		return fmt.Errorf("cost: warm user summaries: %w", err)
	}
	return nil
}

func (s *Service) load(ctx context.Context, req SummaryRequest) ([]EntryRow, map[int64]decimal.Decimal, error) {
	entries, err := s.repo.ListEntryRows(ctx, req.Year, req.Semester)
	if err != nil {
		return nil, nil, err
	}
	proformas, err := s.repo.ListProformaByYear(ctx, req.Year)
	if err != nil {
		return nil, nil, err
	}
	rates := make(map[int64]decimal.Decimal, len(proformas))
	for _, pc := range proformas {
		rates[pc.UserID] = pc.AnnualCost
	}
	return entries, rates, nil
}

func (s *Service) summaryKey(ctx context.Context, kind string, req SummaryRequest) (string, error) {
	version, err := s.cache.Version(ctx)
	if err != nil {
		return "", err
	}
	return SummaryKey(version, kind, req.Year, string(req.Semester)), nil
}
