package periods

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/tempora-hq/tempora/internal/shared"
)

// Service owns the reporting period registry and its single-active
// invariant.
type Service struct {
	repo   Repository
	audit  *shared.AuditLogger
	logger *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, logger: logger}
}

// Create registers a new inactive period.
func (s *Service) Create(ctx context.Context, actor shared.Principal, year int, semester Semester) (Period, error) {
	if year < 2000 || year > 2100 {
		return Period{}, ErrInvalidYear
	}
	period, err := s.repo.Insert(ctx, year, semester)
	if err != nil {
		return Period{}, err
	}
	s.recordAudit(ctx, actor, "period.create", period)
	return period, nil
}

// Activate makes the target period the only active one. Deactivation of
// the previous period happens only here, as a side effect.
func (s *Service) Activate(ctx context.Context, actor shared.Principal, id int64) (Period, error) {
	period, err := s.repo.Activate(ctx, id)
	if err != nil {
		return Period{}, err
	}
	s.recordAudit(ctx, actor, "period.activate", period)
	if s.logger != nil {
		s.logger.Info("period activated",
			slog.Int64("period_id", period.ID),
			slog.Int("year", period.Year),
			slog.String("semester", string(period.Semester)))
	}
	return period, nil
}

// GetActive returns the currently active period, or ErrNoActivePeriod.
func (s *Service) GetActive(ctx context.Context) (Period, error) {
	return s.repo.GetActive(ctx)
}

// List returns all registered periods, newest first.
func (s *Service) List(ctx context.Context) ([]Period, error) {
	return s.repo.List(ctx)
}

// IsAllowed reports whether (year, semester) is the active period. A
// registry with no active period accepts nothing.
func (s *Service) IsAllowed(ctx context.Context, year int, semester Semester) (bool, error) {
	active, err := s.repo.GetActive(ctx)
	if err != nil {
		if errors.Is(err, ErrNoActivePeriod) {
			return false, nil
		}
		return false, fmt.Errorf("periods: resolve active: %w", err)
	}
	return active.Year == year && active.Semester == semester, nil
}

func (s *Service) recordAudit(ctx context.Context, actor shared.Principal, action string, period Period) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.UserID,
		Action:   action,
		Entity:   "period",
		EntityID: strconv.FormatInt(period.ID, 10),
		Meta: map[string]any{
			"year":     period.Year,
			"semester": period.Semester,
		},
	})
	if err != nil && s.logger != nil {
		s.logger.Error("record period audit", slog.Any("error", err))
	}
}
