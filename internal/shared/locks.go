package shared

import "fmt"

// BudgetLockKey derives the advisory lock key serializing budget
// reservations for one (user, year, semester) tuple. The hash must be
// stable across processes, so it stays a plain FNV-1a over the formatted
// tuple rather than anything runtime-seeded.
func BudgetLockKey(userID int64, year int, semester string) int64 {
	const (
		offset64 = 14695981039346656037
		prime64  = 1099511628211
	)
	var h uint64 = offset64
	for _, b := range []byte(fmt.Sprintf("budget:%d:%d:%s", userID, year, semester)) {
		h ^= uint64(b)
		h *= prime64
	}
	return int64(h)
}

// AllocationLockKey serializes project allocation inserts per user.
func AllocationLockKey(userID int64) int64 {
	return BudgetLockKey(userID, 0, "alloc")
}

// PeriodRegistryLockKey serializes period activations. The registry has a
// single active slot, so one constant key covers every activation; without
// it two activations racing from a zero-active state touch disjoint rows
// and both commit.
func PeriodRegistryLockKey() int64 {
	return BudgetLockKey(0, 0, "period-registry")
}
