package cost

import (
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"
)

var two = decimal.NewFromInt(2)

// Engine derives monetary cost from logged hours. The hourly rate divides
// by the same ceiling the budget ledger enforces: the full-time rate
// assumes full utilisation of the semester budget. That coupling is
// deliberate, so the ceiling arrives injected, never redefined here.
type Engine struct {
	ceiling decimal.Decimal
}

// NewEngine constructs an Engine with the shared hour ceiling.
func NewEngine(ceiling decimal.Decimal) Engine {
	return Engine{ceiling: ceiling}
}

// HourlyRate derives the per-hour rate from an annual cost. The year has
// two semesters, hence the halving before dividing by the semester
// ceiling.
func (e Engine) HourlyRate(annualCost decimal.Decimal) decimal.Decimal {
	return annualCost.Div(two).Div(e.ceiling)
}

// EntryCost prices a single entry's hours at the user's hourly rate.
// All arithmetic stays in decimal; rounding happens only at the
// presentation boundary.
func (e Engine) EntryCost(annualCost, hours decimal.Decimal) decimal.Decimal {
	return e.HourlyRate(annualCost).Mul(hours)
}

// AggregateByProject sums hours and cost per project over the entry set.
// Entries of every status are included: these summaries feed internal
// progress dashboards, while external recovered-amount reporting is gated
// separately on full approval. Users without a proforma cost contribute
// hours at zero cost.
func (e Engine) AggregateByProject(entries []EntryRow, rates map[int64]decimal.Decimal, logger *slog.Logger) []ProjectSummary {
	hours := make(map[int64]decimal.Decimal)
	costs := make(map[int64]decimal.Decimal)
	for _, entry := range entries {
		annual, ok := rates[entry.UserID]
		if !ok && logger != nil {
			logger.Warn("no proforma cost for user", slog.Int64("user_id", entry.UserID))
		}
		hours[entry.ProjectID] = hours[entry.ProjectID].Add(entry.Hours)
		if ok {
			costs[entry.ProjectID] = costs[entry.ProjectID].Add(e.EntryCost(annual, entry.Hours))
		}
	}
	out := make([]ProjectSummary, 0, len(hours))
	for projectID, total := range hours {
		out = append(out, ProjectSummary{ProjectID: projectID, TotalHours: total, TotalCost: costs[projectID]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProjectID < out[j].ProjectID })
	return out
}

// AggregateByUser sums hours and cost per user over the entry set.
func (e Engine) AggregateByUser(entries []EntryRow, rates map[int64]decimal.Decimal, logger *slog.Logger) []UserSummary {
	hours := make(map[int64]decimal.Decimal)
	costs := make(map[int64]decimal.Decimal)
	for _, entry := range entries {
		annual, ok := rates[entry.UserID]
		hours[entry.UserID] = hours[entry.UserID].Add(entry.Hours)
		if ok {
			costs[entry.UserID] = costs[entry.UserID].Add(e.EntryCost(annual, entry.Hours))
		}
	}
	out := make([]UserSummary, 0, len(hours))
	for userID, total := range hours {
		out = append(out, UserSummary{UserID: userID, TotalHours: total, TotalCost: costs[userID]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}
