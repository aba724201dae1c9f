package timesheet

import (
	"time"

	"github.com/shopspring/decimal"
)

type submitEntryRequest struct {
	ProjectID  int64  `json:"project_id" validate:"required,gt=0"`
	ActivityID int64  `json:"activity_id" validate:"required,gt=0"`
	Hours      string `json:"hours" validate:"required"`
	Comment    string `json:"comment" validate:"max=2000"`
	ForUserID  int64  `json:"for_user_id,omitempty" validate:"gte=0"`
}

type editEntryRequest struct {
	ProjectID  *int64  `json:"project_id,omitempty" validate:"omitempty,gt=0"`
	ActivityID *int64  `json:"activity_id,omitempty" validate:"omitempty,gt=0"`
	Hours      *string `json:"hours,omitempty"`
	Comment    *string `json:"comment,omitempty" validate:"omitempty,max=2000"`
}

type transitionRequest struct {
	Status  string `json:"status" validate:"required,oneof=APPROVED REJECTED REVISED"`
	Comment string `json:"comment" validate:"max=2000"`
}

type entryResponse struct {
	ID              string     `json:"id"`
	UserID          int64      `json:"user_id"`
	ProjectID       int64      `json:"project_id"`
	ActivityID      int64      `json:"activity_id"`
	Hours           string     `json:"hours"`
	Year            int        `json:"year"`
	Semester        string     `json:"semester"`
	Status          string     `json:"status"`
	Comment         string     `json:"comment,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	LastValidatedBy *int64     `json:"last_validated_by,omitempty"`
	LastValidatedAt *time.Time `json:"last_validated_at,omitempty"`
}

func toEntryResponse(e TimeEntry) entryResponse {
	return entryResponse{
		ID:              e.ID.String(),
		UserID:          e.UserID,
		ProjectID:       e.ProjectID,
		ActivityID:      e.ActivityID,
		Hours:           e.Hours.String(),
		Year:            e.Year,
		Semester:        string(e.Semester),
		Status:          string(e.Status),
		Comment:         e.Comment,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
		LastValidatedBy: e.LastValidatedBy,
		LastValidatedAt: e.LastValidatedAt,
	}
}

type validationRecordResponse struct {
	ID          int64     `json:"id"`
	EntryID     string    `json:"entry_id"`
	Status      string    `json:"status"`
	Comment     string    `json:"comment,omitempty"`
	ValidatedBy int64     `json:"validated_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type budgetResponse struct {
	UserID    int64  `json:"user_id"`
	Year      int    `json:"year"`
	Semester  string `json:"semester"`
	Ceiling   string `json:"ceiling"`
	Consumed  string `json:"consumed"`
	Remaining string `json:"remaining"`
}

func parseHours(raw string) (decimal.Decimal, error) {
	hours, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ErrInvalidHours
	}
	return hours, nil
}
