package allocations

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tempora-hq/tempora/internal/platform/httpx"
)

// Allocation assigns a share of a user's time to a project. The shares of
// one user must never sum past 100 percent.
type Allocation struct {
	ID        int64
	UserID    int64
	ProjectID int64
	Percent   decimal.Decimal
	CreatedAt time.Time
}

var (
	// ErrAllocationExceeded indicates the user's shares would pass 100%.
	ErrAllocationExceeded = fmt.Errorf("%w: allocation exceeds 100%%", httpx.ErrUnprocessable)
	// ErrInvalidPercent rejects shares outside (0, 100].
	ErrInvalidPercent = fmt.Errorf("%w: percent must be in (0, 100]", httpx.ErrValidation)
	// ErrAllocationNotFound indicates an unknown allocation id.
	ErrAllocationNotFound = fmt.Errorf("%w: allocation", httpx.ErrNotFound)
)

var hundred = decimal.NewFromInt(100)
