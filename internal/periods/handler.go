package periods

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/tempora-hq/tempora/internal/platform/httpx"
	"github.com/tempora-hq/tempora/internal/policy"
	"github.com/tempora-hq/tempora/internal/shared"
)

// Handler exposes the period registry over HTTP.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	policy   policy.Middleware
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, policyMW policy.Middleware) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		policy:   policyMW,
		validate: validator.New(),
	}
}

// MountRoutes registers period routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.policy.Require(policy.OpPeriodView))
		r.Get("/", h.List)
		r.Get("/active", h.GetActive)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.policy.Require(policy.OpPeriodCreate))
		r.Post("/", h.Create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.policy.Require(policy.OpPeriodActivate))
		r.Post("/{id}/activate", h.Activate)
	})
}

type createPeriodRequest struct {
	Year     int    `json:"year" validate:"required,gte=2000,lte=2100"`
	Semester string `json:"semester" validate:"required,oneof=S1 S2"`
}

type periodResponse struct {
	ID       int64  `json:"id"`
	Year     int    `json:"year"`
	Semester string `json:"semester"`
	IsActive bool   `json:"is_active"`
}

func toPeriodResponse(p Period) periodResponse {
	return periodResponse{ID: p.ID, Year: p.Year, Semester: string(p.Semester), IsActive: p.IsActive}
}

// Create handles POST /periods.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPeriodRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	semester, err := ParseSemester(req.Semester)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	actor, _ := shared.PrincipalFromContext(r.Context())
	period, err := h.service.Create(r.Context(), actor, req.Year, semester)
	if err != nil {
		h.logger.Warn("create period", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toPeriodResponse(period))
}

// Activate handles POST /periods/{id}/activate.
func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid period id")
		return
	}
	actor, _ := shared.PrincipalFromContext(r.Context())
	period, err := h.service.Activate(r.Context(), actor, id)
	if err != nil {
		h.logger.Warn("activate period", slog.Int64("period_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPeriodResponse(period))
}

// GetActive handles GET /periods/active.
func (h *Handler) GetActive(w http.ResponseWriter, r *http.Request) {
	period, err := h.service.GetActive(r.Context())
	if err != nil {
		if errors.Is(err, ErrNoActivePeriod) {
			httpx.JSON(w, http.StatusOK, nil)
			return
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPeriodResponse(period))
}

// List handles GET /periods.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out := make([]periodResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toPeriodResponse(p))
	}
	httpx.JSON(w, http.StatusOK, out)
}
