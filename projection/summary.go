package projection

import "github.com/shopspring/decimal"

// =============================================================================
// SUMMARY - Headline figures for a plan
// =============================================================================

// MilestoneYears are the horizons reported in a Summary.
var MilestoneYears = []int{1, 5, 10, 25, 50}

// Milestone is the projected net worth a whole number of years after start.
type Milestone struct {
	Years    int
	Month    MonthKey
	NetWorth decimal.Decimal
}

// Summary gathers the figures a dashboard shows next to the series.
type Summary struct {
	AsOfMonth MonthKey

	// Current is the as-of answer; HasCurrent is false when there is none.
	Current    AsOf
	HasCurrent bool

	LatestSnapshot    MonthKey
	HasLatestSnapshot bool

	CashFlow CashFlow

	Goal decimal.Decimal

	// GoalProgressPct is Current / Goal * 100, zero when Goal <= 0.
	GoalProgressPct decimal.Decimal

	// GoalMonthIndex is the first series point at or above Goal; -1 when
	// the goal is unset or never reached within the horizon.
	GoalMonthIndex int

	Milestones []Milestone
}

// Summarize computes the Summary for plan as seen from asOf.
func Summarize(plan Plan, asOf MonthKey) Summary {
	asOf = asOf.OrDefault()
	s := Summary{
		AsOfMonth:      asOf,
		CashFlow:       CashFlowForMonth(plan, asOf),
		Goal:           plan.GoalNetWorth,
		GoalMonthIndex: -1,
	}
	s.Current, s.HasCurrent = NetWorthAsOf(plan, asOf)
	s.LatestSnapshot, s.HasLatestSnapshot = LatestSnapshotMonth(plan)

	series := BuildNetWorthSeries(plan)

	if plan.GoalNetWorth.IsPositive() {
		if s.HasCurrent {
			s.GoalProgressPct = s.Current.NetWorth.Div(plan.GoalNetWorth).Mul(hundred).Round(2)
		}
		for _, p := range series {
			if p.NetWorth.GreaterThanOrEqual(plan.GoalNetWorth) {
				s.GoalMonthIndex = p.MonthIndex
				break
			}
		}
	}

	for _, years := range MilestoneYears {
		i := years * 12
		if i >= len(series) {
			break
		}
		s.Milestones = append(s.Milestones, Milestone{
			Years:    years,
			Month:    series[i].Month,
			NetWorth: series[i].NetWorth,
		})
	}
	return s
}
