package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tempora-hq/tempora/internal/allocations"
	"github.com/tempora-hq/tempora/internal/auth"
	"github.com/tempora-hq/tempora/internal/cost"
	"github.com/tempora-hq/tempora/internal/observability"
	"github.com/tempora-hq/tempora/internal/periods"
	"github.com/tempora-hq/tempora/internal/shared"
	"github.com/tempora-hq/tempora/internal/timesheet"
	"github.com/tempora-hq/tempora/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	SessionManager     *shared.SessionManager
	AuthHandler        *auth.Handler
	PeriodsHandler     *periods.Handler
	TimesheetHandler   *timesheet.Handler
	CostHandler        *cost.Handler
	AllocationsHandler *allocations.Handler
	JobHandler         *jobs.Handler
	Pool               *pgxpool.Pool
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/auth", params.AuthHandler.MountRoutes)
	r.Route("/periods", params.PeriodsHandler.MountRoutes)
	r.Route("/timesheet", params.TimesheetHandler.MountRoutes)
	r.Route("/costs", params.CostHandler.MountRoutes)
	r.Route("/allocations", params.AllocationsHandler.MountRoutes)
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	return r
}
