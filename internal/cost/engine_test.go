package cost

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tempora-hq/tempora/internal/timesheet"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testEngine() Engine {
	return NewEngine(decimal.NewFromInt(480))
}

func TestHourlyRateDerivation(t *testing.T) {
	engine := testEngine()

	// 72,000 a year -> 36,000 a semester -> 75 an hour.
	rate := engine.HourlyRate(dec("72000"))
	require.True(t, rate.Equal(dec("75")), "rate = %s", rate)
}

func TestEntryCost(t *testing.T) {
	engine := testEngine()

	cost := engine.EntryCost(dec("72000"), dec("20"))
	require.True(t, cost.Equal(dec("1500")), "cost = %s", cost)

	// Fractional hours stay exact in decimal.
	cost = engine.EntryCost(dec("72000"), dec("0.25"))
	require.True(t, cost.Equal(dec("18.75")), "cost = %s", cost)
}

func TestHourlyRateNoBinaryFloatDrift(t *testing.T) {
	engine := testEngine()

	// 50,000/2/480 has no finite binary representation; summing the
	// per-entry cost 480 times must still land exactly on 25,000.
	rate := engine.HourlyRate(dec("50000"))
	total := decimal.Zero
	for i := 0; i < 480; i++ {
		total = total.Add(rate)
	}
	require.True(t, total.Equal(dec("25000")), "total = %s", total)
}

func TestAggregateByProject(t *testing.T) {
	engine := testEngine()

	entries := []EntryRow{
		{UserID: 1, ProjectID: 10, Hours: dec("20"), Status: timesheet.StatusApproved},
		{UserID: 1, ProjectID: 10, Hours: dec("10"), Status: timesheet.StatusPending},
		{UserID: 2, ProjectID: 10, Hours: dec("5"), Status: timesheet.StatusRejected},
		{UserID: 2, ProjectID: 11, Hours: dec("8"), Status: timesheet.StatusApproved},
	}
	rates := map[int64]decimal.Decimal{
		1: dec("72000"), // 75/h
		2: dec("48000"), // 50/h
	}

	out := engine.AggregateByProject(entries, rates, nil)
	require.Len(t, out, 2)

	// Sorted by project id; every status contributes.
	require.Equal(t, int64(10), out[0].ProjectID)
	require.True(t, out[0].TotalHours.Equal(dec("35")))
	require.True(t, out[0].TotalCost.Equal(dec("2500")), "cost = %s", out[0].TotalCost) // 30*75 + 5*50

	require.Equal(t, int64(11), out[1].ProjectID)
	require.True(t, out[1].TotalHours.Equal(dec("8")))
	require.True(t, out[1].TotalCost.Equal(dec("400")))
}

func TestAggregateByUser(t *testing.T) {
	engine := testEngine()

	entries := []EntryRow{
		{UserID: 1, ProjectID: 10, Hours: dec("12"), Status: timesheet.StatusApproved},
		{UserID: 1, ProjectID: 11, Hours: dec("8"), Status: timesheet.StatusRevised},
		{UserID: 2, ProjectID: 10, Hours: dec("40"), Status: timesheet.StatusApproved},
	}
	rates := map[int64]decimal.Decimal{1: dec("72000"), 2: dec("48000")}

	out := engine.AggregateByUser(entries, rates, nil)
	require.Len(t, out, 2)
	require.Equal(t, int64(1), out[0].UserID)
	require.True(t, out[0].TotalHours.Equal(dec("20")))
	require.True(t, out[0].TotalCost.Equal(dec("1500")))
	require.Equal(t, int64(2), out[1].UserID)
	require.True(t, out[1].TotalCost.Equal(dec("2000")))
}

func TestAggregateMissingProformaCountsHoursOnly(t *testing.T) {
	engine := testEngine()

	entries := []EntryRow{
		{UserID: 1, ProjectID: 10, Hours: dec("20"), Status: timesheet.StatusApproved},
		{UserID: 3, ProjectID: 10, Hours: dec("6"), Status: timesheet.StatusApproved},
	}
	rates := map[int64]decimal.Decimal{1: dec("72000")}

	out := engine.AggregateByProject(entries, rates, nil)
	require.Len(t, out, 1)
	require.True(t, out[0].TotalHours.Equal(dec("26")), "hours counted even without a rate")
	require.True(t, out[0].TotalCost.Equal(dec("1500")), "unknown rate contributes zero cost")
}
