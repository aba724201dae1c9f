package shared

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBudgetLockKeyStableAndDistinct(t *testing.T) {
	key := BudgetLockKey(7, 2025, "S1")
	require.Equal(t, key, BudgetLockKey(7, 2025, "S1"), "key must be stable across calls")

	require.NotEqual(t, key, BudgetLockKey(8, 2025, "S1"))
	require.NotEqual(t, key, BudgetLockKey(7, 2024, "S1"))
	require.NotEqual(t, key, BudgetLockKey(7, 2025, "S2"))
}

func TestAllocationLockKeyIndependentOfBudgetKeys(t *testing.T) {
	require.NotEqual(t, AllocationLockKey(7), BudgetLockKey(7, 2025, "S1"))
	require.NotEqual(t, AllocationLockKey(7), AllocationLockKey(8))
}

func TestPeriodRegistryLockKeyConstantAndDistinct(t *testing.T) {
	key := PeriodRegistryLockKey()
	require.Equal(t, key, PeriodRegistryLockKey(), "every activation must contend on the same key")

	require.NotEqual(t, key, AllocationLockKey(0))
	require.NotEqual(t, key, BudgetLockKey(0, 0, "S1"))
}
