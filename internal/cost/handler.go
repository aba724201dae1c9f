package cost

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/tempora-hq/tempora/internal/periods"
	"github.com/tempora-hq/tempora/internal/platform/httpx"
	"github.com/tempora-hq/tempora/internal/policy"
	"github.com/tempora-hq/tempora/internal/shared"
)

// Handler exposes cost reporting over HTTP.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	exporter *CSVExporter
	policy   policy.Middleware
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, exporter *CSVExporter, policyMW policy.Middleware) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		exporter: exporter,
		policy:   policyMW,
		validate: validator.New(),
	}
}

// MountRoutes registers cost routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.policy.Require(policy.OpCostView))
		r.Get("/projects", h.ProjectSummaries)
		r.Get("/users", h.UserSummaries)
		r.Get("/projects/export", h.ExportProjectSummaries)
		r.Get("/users/export", h.ExportUserSummaries)
		r.Get("/rate", h.HourlyRate)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.policy.Require(policy.OpProformaSet))
		r.Put("/proforma", h.SetProforma)
	})
}

type setProformaRequest struct {
	UserID     int64  `json:"user_id" validate:"required,gt=0"`
	Year       int    `json:"year" validate:"required,gte=2000,lte=2100"`
	AnnualCost string `json:"annual_cost" validate:"required"`
}

type projectSummaryResponse struct {
	ProjectID  int64  `json:"project_id"`
	TotalHours string `json:"total_hours"`
	TotalCost  string `json:"total_cost"`
}

type userSummaryResponse struct {
	UserID     int64  `json:"user_id"`
	TotalHours string `json:"total_hours"`
	TotalCost  string `json:"total_cost"`
}

// SetProforma handles PUT /costs/proforma.
func (h *Handler) SetProforma(w http.ResponseWriter, r *http.Request) {
	var req setProformaRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	annual, err := decimal.NewFromString(req.AnnualCost)
	if err != nil {
		httpx.RespondError(w, ErrInvalidAnnualCost)
		return
	}
	actor, _ := shared.PrincipalFromContext(r.Context())
	if err := h.service.SetProforma(r.Context(), actor, ProformaCost{
		UserID:     req.UserID,
		Year:       req.Year,
		AnnualCost: annual,
	}); err != nil {
		h.logger.Warn("set proforma", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HourlyRate handles GET /costs/rate?user_id=&year=.
func (h *Handler) HourlyRate(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid user_id")
		return
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid year")
		return
	}
	rate, err := h.service.HourlyRate(r.Context(), userID, year)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"user_id":     userID,
		"year":        year,
		"hourly_rate": rate.String(),
	})
}

// ProjectSummaries handles GET /costs/projects?year=&semester=.
func (h *Handler) ProjectSummaries(w http.ResponseWriter, r *http.Request) {
	req, ok := h.summaryRequest(w, r)
	if !ok {
		return
	}
	summaries, err := h.service.ProjectSummaries(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out := make([]projectSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, projectSummaryResponse{
			ProjectID:  s.ProjectID,
			TotalHours: s.TotalHours.String(),
			TotalCost:  s.TotalCost.String(),
		})
	}
	httpx.JSON(w, http.StatusOK, out)
}

// UserSummaries handles GET /costs/users?year=&semester=.
func (h *Handler) UserSummaries(w http.ResponseWriter, r *http.Request) {
	req, ok := h.summaryRequest(w, r)
	if !ok {
		return
	}
	summaries, err := h.service.UserSummaries(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out := make([]userSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, userSummaryResponse{
			UserID:     s.UserID,
			TotalHours: s.TotalHours.String(),
			TotalCost:  s.TotalCost.String(),
		})
	}
	httpx.JSON(w, http.StatusOK, out)
}

// ExportProjectSummaries handles GET /costs/projects/export.
func (h *Handler) ExportProjectSummaries(w http.ResponseWriter, r *http.Request) {
	req, ok := h.summaryRequest(w, r)
	if !ok {
		return
	}
	summaries, err := h.service.ProjectSummaries(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=project_costs.csv")
	if err := h.exporter.WriteProjectSummaries(w, summaries); err != nil {
		h.logger.Error("export project summaries", slog.Any("error", err))
	}
}

// ExportUserSummaries handles GET /costs/users/export.
func (h *Handler) ExportUserSummaries(w http.ResponseWriter, r *http.Request) {
	req, ok := h.summaryRequest(w, r)
	if !ok {
		return
	}
	summaries, err := h.service.UserSummaries(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=user_costs.csv")
	if err := h.exporter.WriteUserSummaries(w, summaries); err != nil {
		h.logger.Error("export user summaries", slog.Any("error", err))
	}
}

func (h *Handler) summaryRequest(w http.ResponseWriter, r *http.Request) (SummaryRequest, bool) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid year")
		return SummaryRequest{}, false
	}
	semester, perr := periods.ParseSemester(r.URL.Query().Get("semester"))
	if perr != nil {
		httpx.RespondError(w, perr)
		return SummaryRequest{}, false
	}
	return SummaryRequest{Year: year, Semester: semester}, true
}
