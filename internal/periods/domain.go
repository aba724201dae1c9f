package periods

import (
	"fmt"
	"time"

	"github.com/tempora-hq/tempora/internal/platform/httpx"
)

// Semester is a half-year reporting window.
type Semester string

const (
	// SemesterS1 covers January through June.
	SemesterS1 Semester = "S1"
	// SemesterS2 covers July through December.
	SemesterS2 Semester = "S2"
)

// ParseSemester validates a semester label.
func ParseSemester(s string) (Semester, error) {
	switch Semester(s) {
	case SemesterS1, SemesterS2:
		return Semester(s), nil
	}
	return "", fmt.Errorf("%w: semester must be S1 or S2", httpx.ErrValidation)
}

// Period is one (year, semester) reporting window. At most one period is
// active across the whole system at any instant.
type Period struct {
	ID        int64
	Year      int
	Semester  Semester
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

var (
	// ErrPeriodExists indicates the (year, semester) pair is already registered.
	ErrPeriodExists = fmt.Errorf("%w: period already exists", httpx.ErrConflict)
	// ErrPeriodNotFound indicates an unknown period id.
	ErrPeriodNotFound = fmt.Errorf("%w: period", httpx.ErrNotFound)
	// ErrNoActivePeriod indicates no period is currently accepting entries.
	ErrNoActivePeriod = fmt.Errorf("%w: no active period", httpx.ErrNotFound)
	// ErrInvalidYear rejects years outside the portal's range.
	ErrInvalidYear = fmt.Errorf("%w: year out of range", httpx.ErrValidation)
)
