package policy

import (
	"log/slog"
	"net/http"

	"github.com/tempora-hq/tempora/internal/platform/httpx"
	"github.com/tempora-hq/tempora/internal/shared"
)

// Middleware guards HTTP routes with the policy table.
type Middleware struct {
	Logger *slog.Logger
}

// Require ensures the request principal may perform the operation.
func (m Middleware) Require(op Operation) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := shared.PrincipalFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			if !Allows(p.Role, op) {
				if m.Logger != nil {
					m.Logger.Warn("policy denied",
						slog.Int64("user_id", p.UserID),
						slog.String("role", string(p.Role)),
						slog.String("operation", string(op)))
				}
				httpx.RespondError(w, httpx.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
