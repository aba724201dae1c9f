package cost

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tempora-hq/tempora/internal/periods"
	"github.com/tempora-hq/tempora/internal/platform/httpx"
	"github.com/tempora-hq/tempora/internal/timesheet"
)

// ProformaCost is a user's standard annual cost rate, administrator-owned
// configuration with one row per user per year.
type ProformaCost struct {
	UserID     int64
	Year       int
	AnnualCost decimal.Decimal
}

// EntryRow is the slice of a time entry the cost engine needs.
type EntryRow struct {
	UserID    int64
	ProjectID int64
	Hours     decimal.Decimal
	Status    timesheet.EntryStatus
}

// ProjectSummary aggregates hours and derived cost for one project within
// a reporting period.
type ProjectSummary struct {
	ProjectID  int64
	TotalHours decimal.Decimal
	TotalCost  decimal.Decimal
}

// UserSummary aggregates hours and derived cost for one user within a
// reporting period.
type UserSummary struct {
	UserID     int64
	TotalHours decimal.Decimal
	TotalCost  decimal.Decimal
}

// SummaryRequest selects the period to aggregate.
type SummaryRequest struct {
	Year     int
	Semester periods.Semester
}

var (
	// ErrProformaNotFound indicates no annual cost row for the user/year.
	ErrProformaNotFound = fmt.Errorf("%w: proforma cost", httpx.ErrNotFound)
	// ErrInvalidAnnualCost rejects non-positive annual costs.
	ErrInvalidAnnualCost = fmt.Errorf("%w: annual cost must be positive", httpx.ErrValidation)
)
