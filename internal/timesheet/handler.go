package timesheet

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	playvalidator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/tempora-hq/tempora/internal/periods"
	"github.com/tempora-hq/tempora/internal/platform/httpx"
	"github.com/tempora-hq/tempora/internal/policy"
	"github.com/tempora-hq/tempora/internal/shared"
)

// Handler exposes time entry governance over HTTP.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	policy   policy.Middleware
	validate *playvalidator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, policyMW policy.Middleware) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		policy:   policyMW,
		validate: playvalidator.New(),
	}
}

// MountRoutes registers timesheet routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.policy.Require(policy.OpEntrySubmit))
		r.Post("/entries", h.Submit)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.policy.Require(policy.OpEntryView))
		r.Get("/entries", h.List)
		r.Get("/entries/{id}", h.Get)
		r.Get("/entries/{id}/history", h.History)
		r.Get("/budget", h.Budget)
		r.Get("/approval", h.Approval)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.policy.Require(policy.OpEntryEdit))
		r.Patch("/entries/{id}", h.Edit)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.policy.Require(policy.OpEntryDelete))
		r.Delete("/entries/{id}", h.Delete)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.policy.Require(policy.OpEntryTransition))
		r.Post("/entries/{id}/transition", h.Transition)
	})
}

// Submit handles POST /timesheet/entries.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitEntryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	hours, err := parseHours(req.Hours)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	actor, _ := shared.PrincipalFromContext(r.Context())
	in := SubmitEntryInput{
		ProjectID:  req.ProjectID,
		ActivityID: req.ActivityID,
		Hours:      hours,
		Comment:    req.Comment,
	}

	var entry TimeEntry
	if req.ForUserID != 0 && req.ForUserID != actor.UserID {
		entry, err = h.service.SubmitFor(r.Context(), actor, req.ForUserID, in)
	} else {
		entry, err = h.service.Submit(r.Context(), actor, in)
	}
	if err != nil {
		h.logger.Warn("submit entry", slog.Int64("user_id", actor.UserID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toEntryResponse(entry))
}

// Edit handles PATCH /timesheet/entries/{id}.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.entryID(w, r)
	if !ok {
		return
	}
	var req editEntryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	in := EditEntryInput{
		ProjectID:  req.ProjectID,
		ActivityID: req.ActivityID,
		Comment:    req.Comment,
	}
	if req.Hours != nil {
		hours, err := parseHours(*req.Hours)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		in.Hours = &hours
	}
	actor, _ := shared.PrincipalFromContext(r.Context())
	entry, err := h.service.Edit(r.Context(), actor, id, in)
	if err != nil {
		h.logger.Warn("edit entry", slog.String("entry_id", id.String()), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toEntryResponse(entry))
}

// Delete handles DELETE /timesheet/entries/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.entryID(w, r)
	if !ok {
		return
	}
	actor, _ := shared.PrincipalFromContext(r.Context())
	if err := h.service.Delete(r.Context(), actor, id); err != nil {
		h.logger.Warn("delete entry", slog.String("entry_id", id.String()), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Transition handles POST /timesheet/entries/{id}/transition.
func (h *Handler) Transition(w http.ResponseWriter, r *http.Request) {
	id, ok := h.entryID(w, r)
	if !ok {
		return
	}
	var req transitionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	status, err := ParseStatus(req.Status)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	actor, _ := shared.PrincipalFromContext(r.Context())
	entry, err := h.service.Transition(r.Context(), actor, id, TransitionInput{Status: status, Comment: req.Comment})
	if err != nil {
		h.logger.Warn("transition entry", slog.String("entry_id", id.String()), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toEntryResponse(entry))
}

// List handles GET /timesheet/entries?user_id=&year=&semester=. Without
// year and semester it spans every period the user has filed in.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userParam(w, r)
	if !ok {
		return
	}
	var (
		entries []TimeEntry
		err     error
	)
	if r.URL.Query().Get("year") != "" || r.URL.Query().Get("semester") != "" {
		year, aerr := strconv.Atoi(r.URL.Query().Get("year"))
		if aerr != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid year")
			return
		}
		semester, perr := periods.ParseSemester(r.URL.Query().Get("semester"))
		if perr != nil {
			httpx.RespondError(w, perr)
			return
		}
		entries, err = h.service.ListByTuple(r.Context(), userID, year, semester)
	} else {
		entries, err = h.service.ListForUser(r.Context(), userID)
	}
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResponse(e))
	}
	httpx.JSON(w, http.StatusOK, out)
}

// Get handles GET /timesheet/entries/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.entryID(w, r)
	if !ok {
		return
	}
	actor, _ := shared.PrincipalFromContext(r.Context())
	entry, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toEntryResponse(entry))
}

// History handles GET /timesheet/entries/{id}/history.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := h.entryID(w, r)
	if !ok {
		return
	}
	records, err := h.service.History(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out := make([]validationRecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, validationRecordResponse{
			ID:          rec.ID,
			EntryID:     rec.EntryID.String(),
			Status:      string(rec.Status),
			Comment:     rec.Comment,
			ValidatedBy: rec.ValidatedBy,
			CreatedAt:   rec.CreatedAt,
		})
	}
	httpx.JSON(w, http.StatusOK, out)
}

// Budget handles GET /timesheet/budget?user_id=&year=&semester=.
func (h *Handler) Budget(w http.ResponseWriter, r *http.Request) {
	userID, year, semester, ok := h.tupleParams(w, r)
	if !ok {
		return
	}
	consumed, err := h.service.Consumed(r.Context(), userID, year, semester)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	ledger := h.service.Ledger()
	httpx.JSON(w, http.StatusOK, budgetResponse{
		UserID:    userID,
		Year:      year,
		Semester:  string(semester),
		Ceiling:   ledger.Ceiling().String(),
		Consumed:  consumed.String(),
		Remaining: ledger.Remaining(consumed).String(),
	})
}

// Approval handles GET /timesheet/approval?user_id=&year=&semester=.
func (h *Handler) Approval(w http.ResponseWriter, r *http.Request) {
	userID, year, semester, ok := h.tupleParams(w, r)
	if !ok {
		return
	}
	approved, err := h.service.AllApproved(r.Context(), userID, year, semester)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"user_id":      userID,
		"year":         year,
		"semester":     semester,
		"all_approved": approved,
	})
}

func (h *Handler) entryID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid entry id")
		return uuid.Nil, false
	}
	return id, true
}

// userParam resolves the target user from the user_id query parameter,
// defaulting to the actor. Only privileged and management roles may read
// someone else's sheet.
func (h *Handler) userParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	actor, _ := shared.PrincipalFromContext(r.Context())
	userID := actor.UserID
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid user_id")
			return 0, false
		}
		if parsed != actor.UserID && !actor.Role.Privileged() && actor.Role != shared.RoleManagement {
			httpx.RespondError(w, httpx.ErrForbidden)
			return 0, false
		}
		userID = parsed
	}
	return userID, true
}

func (h *Handler) tupleParams(w http.ResponseWriter, r *http.Request) (int64, int, periods.Semester, bool) {
	userID, ok := h.userParam(w, r)
	if !ok {
		return 0, 0, "", false
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid year")
		return 0, 0, "", false
	}
	semester, perr := periods.ParseSemester(r.URL.Query().Get("semester"))
	if perr != nil {
		httpx.RespondError(w, perr)
		return 0, 0, "", false
	}
	return userID, year, semester, true
}
