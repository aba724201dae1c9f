package allocations

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/tempora-hq/tempora/internal/platform/httpx"
	"github.com/tempora-hq/tempora/internal/policy"
	"github.com/tempora-hq/tempora/internal/shared"
)

// Handler exposes project allocations over HTTP.
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

// MountRoutes registers allocation routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.policy.Require(policy.OpAllocationAdd))
		r.Post("/", h.Add)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.policy.Require(policy.OpAllocationView))
		r.Get("/users/{userID}", h.ListByUser)
	})
}

type addAllocationRequest struct {
	UserID    int64  `json:"user_id" validate:"required"`
	ProjectID int64  `json:"project_id" validate:"required"`
	Percent   string `json:"percent" validate:"required"`
}

type allocationResponse struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	ProjectID int64  `json:"project_id"`
	Percent   string `json:"percent"`
}

func toAllocationResponse(a Allocation) allocationResponse {
	return allocationResponse{ID: a.ID, UserID: a.UserID, ProjectID: a.ProjectID, Percent: a.Percent.String()}
}

// Add handles POST /allocations.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	var req addAllocationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	percent, err := decimal.NewFromString(req.Percent)
	if err != nil {
		httpx.RespondError(w, ErrInvalidPercent)
		return
	}
	actor, _ := shared.PrincipalFromContext(r.Context())
	alloc, err := h.service.Add(r.Context(), actor, req.UserID, req.ProjectID, percent)
	if err != nil {
		h.logger.Warn("add allocation", slog.Int64("user_id", req.UserID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toAllocationResponse(alloc))
}

// ListByUser handles GET /allocations/users/{userID}.
func (h *Handler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid user id")
		return
	}
	actor, ok := shared.PrincipalFromContext(r.Context())
	if ok && actor.Role == shared.RoleStaff && actor.UserID != userID {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}
	list, err := h.service.ListByUser(r.Context(), userID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out := make([]allocationResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toAllocationResponse(a))
	}
	httpx.JSON(w, http.StatusOK, out)
}
