package auth

import (
	"fmt"
	"time"

	"github.com/tempora-hq/tempora/internal/platform/httpx"
	"github.com/tempora-hq/tempora/internal/shared"
)

// User represents a portal account.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         shared.Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ErrInvalidCredentials covers unknown accounts, disabled accounts and
// wrong passwords alike so responses do not leak which one failed.
var ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", httpx.ErrUnauthorized)
