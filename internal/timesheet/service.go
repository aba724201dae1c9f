package timesheet

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tempora-hq/tempora/internal/observability"
	"github.com/tempora-hq/tempora/internal/periods"
	"github.com/tempora-hq/tempora/internal/policy"
	"github.com/tempora-hq/tempora/internal/shared"
)

// SummaryInvalidator drops derived summaries when the entry set changes.
// Cost summaries aggregate the very hours mutated here, so every commit
// that touches hours or grouping must advance the cache version.
type SummaryInvalidator interface {
	Bump(ctx context.Context) error
}

// Service owns time entry governance: the period gate, the budget ledger
// and the approval state machine. Every mutation re-runs its checks inside
// the same transaction that writes, so a stale or adversarial client can
// never slip past a gate.
type Service struct {
	repo        Repository
	ledger      Ledger
	audit       *shared.AuditLogger
	logger      *slog.Logger
	metrics     *observability.Metrics
	invalidator SummaryInvalidator
	now         func() time.Time
}

// NewService constructs a Service. The ceiling is injected once and shared
// with the cost engine through configuration.
func NewService(repo Repository, ledger Ledger, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		ledger: ledger,
		audit:  audit,
		logger: logger,
		now:    time.Now,
	}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// WithMetrics attaches the application metric set.
func (s *Service) WithMetrics(m *observability.Metrics) {
	s.metrics = m
}

// WithInvalidator attaches the summary cache invalidator.
func (s *Service) WithInvalidator(inv SummaryInvalidator) {
	s.invalidator = inv
}

// Ledger exposes the budget arithmetic, shared with reporting.
func (s *Service) Ledger() Ledger {
	return s.ledger
}

// Submit creates a PENDING entry for the actor after the period gate and
// the budget reservation both pass at commit time.
func (s *Service) Submit(ctx context.Context, actor shared.Principal, in SubmitEntryInput) (TimeEntry, error) {
	if !policy.AllowsPrincipal(actor, policy.OpEntrySubmit) {
		return TimeEntry{}, ErrPermissionDenied
	}
	if !in.Hours.IsPositive() {
		return TimeEntry{}, ErrInvalidHours
	}
	if in.ProjectID == 0 || in.ActivityID == 0 {
		return TimeEntry{}, ErrMissingReference
	}

	now := s.now()
	entry := TimeEntry{
		ID:         uuid.New(),
		UserID:     actor.UserID,
		ProjectID:  in.ProjectID,
		ActivityID: in.ActivityID,
		Hours:      in.Hours,
		Status:     StatusPending,
		Comment:    in.Comment,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		active, err := tx.ActivePeriod(ctx)
		if err != nil {
			if errors.Is(err, periods.ErrNoActivePeriod) {
				return ErrPeriodMismatch
			}
			return err
		}
		entry.Year = active.Year
		entry.Semester = active.Semester

		if err := tx.AcquireBudgetLock(ctx, actor.UserID, entry.Year, entry.Semester); err != nil {
			return err
		}
		consumed, err := tx.SumHours(ctx, actor.UserID, entry.Year, entry.Semester)
		if err != nil {
			return err
		}
		if err := s.ledger.CheckReserve(consumed, entry.Hours); err != nil {
			return err
		}
		return tx.Insert(ctx, entry)
	})
	if err != nil {
		if errors.Is(err, ErrBudgetExceeded) && s.metrics != nil {
			s.metrics.BudgetRejections.Inc()
		}
		return TimeEntry{}, err
	}

	s.bumpSummaries(ctx)
	s.recordAudit(ctx, actor, "entry.submit", entry, map[string]any{
		"hours":    entry.Hours.String(),
		"year":     entry.Year,
		"semester": entry.Semester,
	})
	return entry, nil
}

// SubmitFor creates a PENDING entry in the target period on behalf of a
// user. Only privileged roles may claim hours for someone else, and the
// target period must still be the active one.
func (s *Service) SubmitFor(ctx context.Context, actor shared.Principal, userID int64, in SubmitEntryInput) (TimeEntry, error) {
	if actor.UserID == userID {
		return s.Submit(ctx, actor, in)
	}
	if !actor.Role.Privileged() {
		return TimeEntry{}, ErrPermissionDenied
	}
	delegate := shared.Principal{UserID: userID, Role: shared.RoleStaff}
	entry, err := s.Submit(ctx, delegate, in)
	if err != nil {
		return TimeEntry{}, err
	}
	s.recordAudit(ctx, actor, "entry.submit.delegated", entry, map[string]any{"for_user": userID})
	return entry, nil
}

// Edit applies a privileged content change. Status is never touched here:
// edits do not reset the workflow. The budget re-check excludes the
// entry's own prior hours so an edit is never double-counted.
func (s *Service) Edit(ctx context.Context, actor shared.Principal, entryID uuid.UUID, in EditEntryInput) (TimeEntry, error) {
	if !policy.AllowsPrincipal(actor, policy.OpEntryEdit) {
		return TimeEntry{}, ErrPermissionDenied
	}
	if in.Hours != nil && !in.Hours.IsPositive() {
		return TimeEntry{}, ErrInvalidHours
	}

	var updated TimeEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		entry, err := tx.GetForUpdate(ctx, entryID)
		if err != nil {
			return err
		}

		allowed, err := s.periodAllows(ctx, tx, entry.Year, entry.Semester)
		if err != nil {
			return err
		}
		if !allowed {
			return ErrPeriodMismatch
		}

		if in.Hours != nil && !in.Hours.Equal(entry.Hours) {
			if err := tx.AcquireBudgetLock(ctx, entry.UserID, entry.Year, entry.Semester); err != nil {
				return err
			}
			consumed, err := tx.SumHours(ctx, entry.UserID, entry.Year, entry.Semester)
			if err != nil {
				return err
			}
			if err := s.ledger.CheckEdit(consumed, entry.Hours, *in.Hours); err != nil {
				return err
			}
			entry.Hours = *in.Hours
		}
		if in.ProjectID != nil {
			entry.ProjectID = *in.ProjectID
		}
		if in.ActivityID != nil {
			entry.ActivityID = *in.ActivityID
		}
		if in.Comment != nil {
			entry.Comment = *in.Comment
		}
		entry.UpdatedAt = s.now()

		if err := tx.UpdateContent(ctx, entry); err != nil {
			return err
		}
		updated = entry
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrBudgetExceeded) && s.metrics != nil {
			s.metrics.BudgetRejections.Inc()
		}
		return TimeEntry{}, err
	}

	s.bumpSummaries(ctx)
	s.recordAudit(ctx, actor, "entry.edit", updated, map[string]any{"hours": updated.Hours.String()})
	return updated, nil
}

// Delete removes an entry. Owners may delete their own PENDING entries;
// privileged roles may delete any entry. Releasing the budget needs no
// bookkeeping because consumption is recomputed from surviving rows.
func (s *Service) Delete(ctx context.Context, actor shared.Principal, entryID uuid.UUID) error {
	if !policy.AllowsPrincipal(actor, policy.OpEntryDelete) {
		return ErrPermissionDenied
	}

	var deleted TimeEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		entry, err := tx.GetForUpdate(ctx, entryID)
		if err != nil {
			return err
		}
		if !actor.Role.Privileged() {
			if entry.UserID != actor.UserID || entry.Status != StatusPending {
				return ErrPermissionDenied
			}
		}
		deleted = entry
		return tx.Delete(ctx, entryID)
	})
	if err != nil {
		return err
	}

	s.bumpSummaries(ctx)
	s.recordAudit(ctx, actor, "entry.delete", deleted, nil)
	return nil
}

// Transition applies a validator decision and appends one immutable
// ValidationRecord in the same transaction.
func (s *Service) Transition(ctx context.Context, actor shared.Principal, entryID uuid.UUID, in TransitionInput) (TimeEntry, error) {
	if !policy.AllowsPrincipal(actor, policy.OpEntryTransition) {
		return TimeEntry{}, ErrPermissionDenied
	}

	var updated TimeEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		entry, err := tx.GetForUpdate(ctx, entryID)
		if err != nil {
			return err
		}
		if err := CanTransition(entry.Status, in.Status); err != nil {
			return err
		}

		now := s.now()
		entry.Status = in.Status
		entry.UpdatedAt = now
		validatedBy := actor.UserID
		entry.LastValidatedBy = &validatedBy
		entry.LastValidatedAt = &now

		if err := tx.UpdateStatus(ctx, entry); err != nil {
			return err
		}
		if _, err := tx.AppendValidationRecord(ctx, ValidationRecord{
			EntryID:     entry.ID,
			Status:      in.Status,
			Comment:     in.Comment,
			ValidatedBy: actor.UserID,
			CreatedAt:   now,
		}); err != nil {
			return err
		}
		updated = entry
		return nil
	})
	if err != nil {
		return TimeEntry{}, err
	}

	if s.metrics != nil {
		s.metrics.TransitionsTotal.WithLabelValues(string(updated.Status)).Inc()
	}
	s.recordAudit(ctx, actor, "entry.transition", updated, map[string]any{"status": updated.Status})
	return updated, nil
}

// Get returns one entry, restricted to its owner unless the actor may
// view the whole sheet.
func (s *Service) Get(ctx context.Context, actor shared.Principal, entryID uuid.UUID) (TimeEntry, error) {
	entry, err := s.repo.Get(ctx, entryID)
	if err != nil {
		return TimeEntry{}, err
	}
	if entry.UserID != actor.UserID && !actor.Role.Privileged() && actor.Role != shared.RoleManagement {
		return TimeEntry{}, ErrPermissionDenied
	}
	return entry, nil
}

// History returns the ordered validation trail, oldest first.
func (s *Service) History(ctx context.Context, entryID uuid.UUID) ([]ValidationRecord, error) {
	if _, err := s.repo.Get(ctx, entryID); err != nil {
		return nil, err
	}
	return s.repo.History(ctx, entryID)
}

// ListByTuple returns a user's entries for one reporting period.
func (s *Service) ListByTuple(ctx context.Context, userID int64, year int, semester periods.Semester) ([]TimeEntry, error) {
	return s.repo.ListByTuple(ctx, userID, year, semester)
}

// ListForUser returns every entry a user has filed, newest period first.
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]TimeEntry, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Consumed returns the summed hours claimed for the tuple, every status
// included.
func (s *Service) Consumed(ctx context.Context, userID int64, year int, semester periods.Semester) (decimal.Decimal, error) {
	return s.repo.SumHours(ctx, userID, year, semester)
}

// Remaining returns the unclaimed balance under the ceiling.
func (s *Service) Remaining(ctx context.Context, userID int64, year int, semester periods.Semester) (decimal.Decimal, error) {
	consumed, err := s.repo.SumHours(ctx, userID, year, semester)
	if err != nil {
		return decimal.Zero, err
	}
	return s.ledger.Remaining(consumed), nil
}

// AllApproved reports whether the tuple has at least one entry and every
// entry is APPROVED. The downstream signature workflow reads only this
// boolean; signing itself lives outside the engine.
func (s *Service) AllApproved(ctx context.Context, userID int64, year int, semester periods.Semester) (bool, error) {
	counts, err := s.repo.StatusCounts(ctx, userID, year, semester)
	if err != nil {
		return false, err
	}
	if len(counts) == 0 {
		return false, nil
	}
	for _, sc := range counts {
		if sc.Status != StatusApproved && sc.Count > 0 {
			return false, nil
		}
	}
	return true, nil
}

// periodAllows evaluates the period gate inside the transaction.
func (s *Service) periodAllows(ctx context.Context, tx TxRepository, year int, semester periods.Semester) (bool, error) {
	active, err := tx.ActivePeriod(ctx)
	if err != nil {
		if errors.Is(err, periods.ErrNoActivePeriod) {
			return false, nil
		}
		return false, err
	}
	return active.Year == year && active.Semester == semester, nil
}

// bumpSummaries orphans cached cost summaries after a committed entry
// mutation. Failures are logged, not returned: the write already
// committed, and the cache TTL bounds how long a missed bump can linger.
func (s *Service) bumpSummaries(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Bump(ctx); err != nil && s.logger != nil {
		s.logger.Warn("invalidate cost summaries", slog.Any("error", err))
	}
}

func (s *Service) recordAudit(ctx context.Context, actor shared.Principal, action string, entry TimeEntry, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.UserID,
		Action:   action,
		Entity:   "time_entry",
		EntityID: entry.ID.String(),
		Meta:     meta,
	})
	if err != nil && s.logger != nil {
		s.logger.Error("record timesheet audit", slog.Any("error", err))
	}
}
