package projection_test

import (
	"testing"

	"github.com/Moserpilot/Finance-Planner-2/projection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoAccountPlan() projection.Plan {
	return projection.Plan{
		StartMonth:       "2026-01",
		StartingNetWorth: dec("777"),
		Accounts: []projection.Account{
			{ID: "a", Balances: []projection.DatedAmount{at("2026-01", "1000"), at("2026-04", "1500")}},
			{ID: "b", Balances: []projection.DatedAmount{at("2026-04", "0"), at("2026-09", "250")}},
		},
	}
}

// =============================================================================
// BALANCE AGGREGATOR
// =============================================================================

func TestAccountBalanceForMonth_ExactMonthOnly(t *testing.T) {
	acct := projection.Account{Balances: []projection.DatedAmount{at("2026-01", "1000")}}

	assertAmount(t, "1000", projection.AccountBalanceForMonth(acct, "2026-01"))
	assertAmount(t, "0", projection.AccountBalanceForMonth(acct, "2026-02"), "no carry-forward")
}

func TestNetWorthForMonth_SumsAccounts(t *testing.T) {
	plan := twoAccountPlan()

	assertAmount(t, "1000", projection.NetWorthForMonth(plan, "2026-01"))
	assertAmount(t, "1500", projection.NetWorthForMonth(plan, "2026-04"))
	assertAmount(t, "250", projection.NetWorthForMonth(plan, "2026-09"))
	assertAmount(t, "0", projection.NetWorthForMonth(plan, "2026-02"), "accounts exist, legacy is never used")
}

func TestNetWorthForMonth_NoAccountsUsesLegacy(t *testing.T) {
	plan := projection.Plan{StartingNetWorth: dec("42000")}
	assertAmount(t, "42000", projection.NetWorthForMonth(plan, "2030-01"))
}

// =============================================================================
// SNAPSHOT LOCATOR
// =============================================================================

func TestHasSnapshot_ZeroBalanceCounts(t *testing.T) {
	plan := twoAccountPlan()

	assert.True(t, projection.HasSnapshot(plan, "2026-04"))
	assert.True(t, projection.HasSnapshot(plan, "2026-09"))
	assert.False(t, projection.HasSnapshot(plan, "2026-05"))

	zeroOnly := projection.Plan{Accounts: []projection.Account{{Balances: []projection.DatedAmount{at("2026-07", "0")}}}}
	assert.True(t, projection.HasSnapshot(zeroOnly, "2026-07"), "an entered zero is a snapshot")
}

func TestLatestSnapshotMonth(t *testing.T) {
	m, ok := projection.LatestSnapshotMonth(twoAccountPlan())
	require.True(t, ok)
	assert.Equal(t, projection.MonthKey("2026-09"), m)

	_, ok = projection.LatestSnapshotMonth(projection.Plan{Accounts: []projection.Account{{ID: "empty"}}})
	assert.False(t, ok)
}

func TestSnapshotAtOrBefore(t *testing.T) {
	plan := twoAccountPlan()

	cases := []struct {
		target string
		want   string
		ok     bool
	}{
		{"2025-12", "", false},
		{"2026-01", "2026-01", true},
		{"2026-03", "2026-01", true},
		{"2026-04", "2026-04", true},
		{"2026-08", "2026-04", true},
		{"2031-01", "2026-09", true},
	}
	for _, c := range cases {
		got, ok := projection.SnapshotAtOrBefore(plan, projection.MonthKey(c.target))
		assert.Equal(t, c.ok, ok, c.target)
		assert.Equal(t, projection.MonthKey(c.want), got, c.target)
	}
}

func TestLastSnapshotAtOrBefore_NoDataIsNotZero(t *testing.T) {
	// GIVEN: Balances exist, but only after the target
	// WHEN: Asking for a baseline before the first entry
	// THEN: There is no baseline (legacy is not consulted once entries exist)
	plan := twoAccountPlan()

	_, ok := projection.LastSnapshotAtOrBefore(plan, "2025-06")
	assert.False(t, ok)

	v, ok := projection.LastSnapshotAtOrBefore(plan, "2026-05")
	require.True(t, ok)
	assertAmount(t, "1500", v)
}

func TestLastSnapshotAtOrBefore_LegacyFallback(t *testing.T) {
	// No entries anywhere: a non-zero legacy value is the baseline
	plan := projection.Plan{StartingNetWorth: dec("5000"), Accounts: []projection.Account{{ID: "empty"}}}
	v, ok := projection.LastSnapshotAtOrBefore(plan, "2026-01")
	require.True(t, ok)
	assertAmount(t, "5000", v)

	// A zero legacy value is "no baseline", not zero dollars
	plan.StartingNetWorth = dec("0")
	_, ok = projection.LastSnapshotAtOrBefore(plan, "2026-01")
	assert.False(t, ok)
}

func TestSnapshotMonths_SortedDistinct(t *testing.T) {
	got := projection.SnapshotMonths(twoAccountPlan())
	assert.Equal(t, []projection.MonthKey{"2026-01", "2026-04", "2026-09"}, got)
}

// =============================================================================
// AS-OF QUERY
// =============================================================================

func TestNetWorthAsOf(t *testing.T) {
	plan := twoAccountPlan()

	got, ok := projection.NetWorthAsOf(plan, "2026-06")
	require.True(t, ok)
	assert.Equal(t, projection.MonthKey("2026-04"), got.Month)
	assert.Equal(t, projection.SourceSnapshot, got.Source)
	assertAmount(t, "1500", got.NetWorth)

	// Before the first entry the legacy value is reported against the target
	got, ok = projection.NetWorthAsOf(plan, "2025-06")
	require.True(t, ok)
	assert.Equal(t, projection.MonthKey("2025-06"), got.Month)
	assert.Equal(t, projection.SourceLegacy, got.Source)
	assertAmount(t, "777", got.NetWorth)

	plan.StartingNetWorth = dec("0")
	_, ok = projection.NetWorthAsOf(plan, "2025-06")
	assert.False(t, ok)
}

func TestNetWorthAsOf_AgreesWithAggregateAtEverySnapshot(t *testing.T) {
	plan := twoAccountPlan()
	for _, m := range projection.SnapshotMonths(plan) {
		got, ok := projection.NetWorthAsOf(plan, m)
		require.True(t, ok)
		assert.Equal(t, projection.SourceSnapshot, got.Source)
		assert.True(t, projection.NetWorthForMonth(plan, m).Equal(got.NetWorth), m)
	}
}
