package timesheet

import (
	"github.com/shopspring/decimal"
)

// DefaultCeilingHours is the per-user hour budget for one semester. The
// cost engine divides by the same constant, so a different ceiling must be
// injected through configuration, never redefined locally.
const DefaultCeilingHours = 480

// Ledger holds the budget arithmetic for one configured ceiling. It is
// pure: consumed hours are always recomputed from persisted entries, so
// there is no counter that could drift.
type Ledger struct {
	ceiling decimal.Decimal
}

// NewLedger constructs a Ledger with the given hour ceiling.
func NewLedger(ceiling decimal.Decimal) Ledger {
	return Ledger{ceiling: ceiling}
}

// Ceiling returns the configured semester hour budget.
func (l Ledger) Ceiling() decimal.Decimal {
	return l.ceiling
}

// Remaining returns ceiling minus consumed. Every status counts toward
// consumption: the budget is about time claimed, not approval.
func (l Ledger) Remaining(consumed decimal.Decimal) decimal.Decimal {
	return l.ceiling.Sub(consumed)
}

// CheckReserve verifies a new entry's hours fit the remaining budget.
func (l Ledger) CheckReserve(consumed, hours decimal.Decimal) error {
	if hours.GreaterThan(l.Remaining(consumed)) {
		return ErrBudgetExceeded
	}
	return nil
}

// CheckEdit verifies changed hours fit the budget once the entry's own
// prior contribution is subtracted. Skipping the self-exclusion would
// double-count the entry and reject legitimate edits.
func (l Ledger) CheckEdit(consumed, prior, newHours decimal.Decimal) error {
	if newHours.GreaterThan(l.Remaining(consumed).Add(prior)) {
		return ErrBudgetExceeded
	}
	return nil
}
