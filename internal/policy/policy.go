// Package policy centralises role based access decisions. Every governed
// operation is named once here instead of re-deriving role checks at each
// call site.
package policy

import (
	"github.com/tempora-hq/tempora/internal/shared"
)

// Operation identifies a governed action.
type Operation string

const (
	OpPeriodCreate    Operation = "period.create"
	OpPeriodActivate  Operation = "period.activate"
	OpPeriodView      Operation = "period.view"
	OpEntrySubmit     Operation = "entry.submit"
	OpEntryEdit       Operation = "entry.edit"
	OpEntryDelete     Operation = "entry.delete"
	OpEntryTransition Operation = "entry.transition"
	OpEntryView       Operation = "entry.view"
	OpCostView        Operation = "cost.view"
	OpProformaSet     Operation = "cost.proforma.set"
	OpAllocationAdd   Operation = "allocation.add"
	OpAllocationView  Operation = "allocation.view"
)

// table maps each role to the operations it may perform. Ownership rules
// (an owner deleting their own PENDING entry) are layered on top by the
// services; this table answers the pure role question.
var table = map[shared.Role]map[Operation]bool{
	shared.RoleStaff: {
		OpPeriodView:     true,
		OpEntrySubmit:    true,
		OpEntryDelete:    true,
		OpEntryView:      true,
		OpAllocationView: true,
	},
	shared.RoleAdmin: {
		OpPeriodCreate:    true,
		OpPeriodActivate:  true,
		OpPeriodView:      true,
		OpEntrySubmit:     true,
		OpEntryEdit:       true,
		OpEntryDelete:     true,
		OpEntryTransition: true,
		OpEntryView:       true,
		OpCostView:        true,
		OpProformaSet:     true,
		OpAllocationAdd:   true,
		OpAllocationView:  true,
	},
	shared.RolePMSU: {
		OpPeriodView:      true,
		OpEntryEdit:       true,
		OpEntryDelete:     true,
		OpEntryTransition: true,
		OpEntryView:       true,
		OpCostView:        true,
		OpAllocationAdd:   true,
		OpAllocationView:  true,
	},
	shared.RoleManagement: {
		OpPeriodView:     true,
		OpEntryView:      true,
		OpCostView:       true,
		OpAllocationView: true,
	},
}

// Allows reports whether the role may perform the operation.
func Allows(role shared.Role, op Operation) bool {
	return table[role][op]
}

// AllowsPrincipal is a convenience wrapper over Allows.
func AllowsPrincipal(p shared.Principal, op Operation) bool {
	return Allows(p.Role, op)
}
