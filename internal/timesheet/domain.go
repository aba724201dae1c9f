package timesheet

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tempora-hq/tempora/internal/periods"
	"github.com/tempora-hq/tempora/internal/platform/httpx"
)

// EntryStatus enumerates the approval workflow states of a time entry.
type EntryStatus string

const (
	// StatusPending is the initial state of every submitted entry.
	StatusPending EntryStatus = "PENDING"
	// StatusApproved is terminal; an approved entry never transitions again.
	StatusApproved EntryStatus = "APPROVED"
	// StatusRejected marks an entry refused by a validator. Non-terminal.
	StatusRejected EntryStatus = "REJECTED"
	// StatusRevised marks an entry sent back for rework. Non-terminal.
	StatusRevised EntryStatus = "REVISED"
)

// ParseStatus validates a workflow status label for transitions.
func ParseStatus(s string) (EntryStatus, error) {
	switch EntryStatus(s) {
	case StatusApproved, StatusRejected, StatusRevised:
		return EntryStatus(s), nil
	case StatusPending:
		return "", fmt.Errorf("%w: PENDING is not a transition target", httpx.ErrValidation)
	}
	return "", fmt.Errorf("%w: unknown status %q", httpx.ErrValidation, s)
}

// TimeEntry is one block of hours claimed by a user against a project
// activity within a reporting period.
type TimeEntry struct {
	ID              uuid.UUID
	UserID          int64
	ProjectID       int64
	ActivityID      int64
	Hours           decimal.Decimal
	Year            int
	Semester        periods.Semester
	Status          EntryStatus
	Comment         string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	LastValidatedBy *int64
	LastValidatedAt *time.Time
}

// ValidationRecord is one immutable row of the approval audit trail.
// Records are only ever appended, never mutated or deleted.
type ValidationRecord struct {
	ID          int64
	EntryID     uuid.UUID
	Status      EntryStatus
	Comment     string
	ValidatedBy int64
	CreatedAt   time.Time
}

// SubmitEntryInput carries a new entry submission.
type SubmitEntryInput struct {
	ProjectID  int64
	ActivityID int64
	Hours      decimal.Decimal
	Comment    string
}

// EditEntryInput carries a privileged content edit. Nil fields are left
// untouched. Editing never changes the workflow status.
type EditEntryInput struct {
	ProjectID  *int64
	ActivityID *int64
	Hours      *decimal.Decimal
	Comment    *string
}

// TransitionInput carries a validator decision.
type TransitionInput struct {
	Status  EntryStatus
	Comment string
}

var (
	// ErrEntryNotFound indicates an unknown entry id.
	ErrEntryNotFound = fmt.Errorf("%w: time entry", httpx.ErrNotFound)
	// ErrPermissionDenied indicates the actor's role or ownership does not
	// allow the operation.
	ErrPermissionDenied = fmt.Errorf("%w: time entry operation", httpx.ErrForbidden)
	// ErrPeriodMismatch indicates the entry's period is not the active one.
	ErrPeriodMismatch = fmt.Errorf("%w: period is not open for reporting", httpx.ErrUnprocessable)
	// ErrBudgetExceeded indicates the semester hour ceiling would be overrun.
	ErrBudgetExceeded = fmt.Errorf("%w: semester hour budget exceeded", httpx.ErrUnprocessable)
	// ErrInvalidTransition indicates a forbidden workflow transition.
	ErrInvalidTransition = fmt.Errorf("%w: invalid status transition", httpx.ErrUnprocessable)
	// ErrInvalidHours rejects non-positive hour amounts.
	ErrInvalidHours = fmt.Errorf("%w: hours must be positive", httpx.ErrValidation)
	// ErrMissingReference rejects entries without project or activity.
	ErrMissingReference = fmt.Errorf("%w: project and activity are required", httpx.ErrValidation)
)
