package policy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tempora-hq/tempora/internal/shared"
)

func TestRoleMatrix(t *testing.T) {
	cases := []struct {
		role    shared.Role
		op      Operation
		allowed bool
	}{
		{shared.RoleStaff, OpEntrySubmit, true},
		{shared.RoleStaff, OpEntryDelete, true},
		{shared.RoleStaff, OpEntryView, true},
		{shared.RoleStaff, OpEntryEdit, false},
		{shared.RoleStaff, OpEntryTransition, false},
		{shared.RoleStaff, OpPeriodCreate, false},
		{shared.RoleStaff, OpPeriodActivate, false},
		{shared.RoleStaff, OpCostView, false},
		{shared.RoleStaff, OpProformaSet, false},
		{shared.RoleStaff, OpAllocationAdd, false},

		{shared.RolePMSU, OpEntrySubmit, false},
		{shared.RolePMSU, OpEntryEdit, true},
		{shared.RolePMSU, OpEntryTransition, true},
		{shared.RolePMSU, OpCostView, true},
		{shared.RolePMSU, OpProformaSet, false},
		{shared.RolePMSU, OpAllocationAdd, true},
		{shared.RolePMSU, OpPeriodCreate, false},

		{shared.RoleAdmin, OpPeriodCreate, true},
		{shared.RoleAdmin, OpPeriodActivate, true},
		{shared.RoleAdmin, OpEntryTransition, true},
		{shared.RoleAdmin, OpProformaSet, true},
		{shared.RoleAdmin, OpAllocationAdd, true},

		{shared.RoleManagement, OpPeriodView, true},
		{shared.RoleManagement, OpEntryView, true},
		{shared.RoleManagement, OpCostView, true},
		{shared.RoleManagement, OpEntrySubmit, false},
		{shared.RoleManagement, OpEntryTransition, false},
		{shared.RoleManagement, OpAllocationAdd, false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.allowed, Allows(tc.role, tc.op), "%s / %s", tc.role, tc.op)
	}
}

func TestUnknownRoleDeniedEverything(t *testing.T) {
	require.False(t, Allows(shared.Role("INTERN"), OpEntryView))
	require.False(t, AllowsPrincipal(shared.Principal{}, OpEntrySubmit))
}
