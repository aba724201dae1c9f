package allocations

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tempora-hq/tempora/internal/shared"
)

// Service enforces the per-user 100% allocation cap.
type Service struct {
	repo   Repository
	audit  *shared.AuditLogger
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repository, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, logger: logger, now: time.Now}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Add inserts an allocation after re-verifying the user's total share
// inside the same serialized transaction that writes.
func (s *Service) Add(ctx context.Context, actor shared.Principal, userID, projectID int64, percent decimal.Decimal) (Allocation, error) {
	if !percent.IsPositive() || percent.GreaterThan(hundred) {
		return Allocation{}, ErrInvalidPercent
	}

	alloc := Allocation{
		UserID:    userID,
		ProjectID: projectID,
		Percent:   percent,
		CreatedAt: s.now(),
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.AcquireUserLock(ctx, userID); err != nil {
			return err
		}
		sum, err := tx.SumPercent(ctx, userID)
		if err != nil {
			return err
		}
		if sum.Add(percent).GreaterThan(hundred) {
			return ErrAllocationExceeded
		}
		alloc, err = tx.Insert(ctx, alloc)
		return err
	})
	if err != nil {
		return Allocation{}, err
	}

	if s.audit != nil {
		auditErr := s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actor.UserID,
			Action:   "allocation.add",
			Entity:   "project_allocation",
			EntityID: strconv.FormatInt(alloc.ID, 10),
			Meta: map[string]any{
				"user_id":    userID,
				"project_id": projectID,
				"percent":    percent.String(),
			},
		})
		if auditErr != nil && s.logger != nil {
			s.logger.Error("record allocation audit", slog.Any("error", auditErr))
		}
	}
	return alloc, nil
}

// ListByUser returns a user's allocations, oldest first.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]Allocation, error) {
	return s.repo.ListByUser(ctx, userID)
}
