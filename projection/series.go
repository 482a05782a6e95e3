/*
series.go - Net-worth series builder

PURPOSE:
  Walks a fixed 50-year horizon month by month and emits the net-worth
  trajectory. This is where every other piece of the engine composes, and
  where the accounting mode really matters.

KEY INSIGHT:
  Entered balances and modeled values must never be added together. The
  mode decides, for each month, which one is in charge:

  ModeSnapshot:
    Entered balances only. The line carries the latest snapshot at or
    before each month and jumps at each new entry. No return, no cash flow.

  ModeProjection:
    Start from the baseline and compound forward:
      netWorth = netWorth * (1 + monthlyRate) + netCashFlow
    Entered balances after the start month are ignored.

  ModeHybrid:
    Compound like projection, but a month with an entered balance (an
    anchor month) takes that balance as-is. Compounding is suppressed on
    anchor months: the entered value already reflects that month's cash
    flow and return.

BASELINE (month 0):
  snapshot:   snapshot-or-legacy baseline at start, else 0
  hybrid:     snapshot-or-legacy baseline at start, else legacy (even 0)
  projection: entered aggregate if start has a snapshot, else legacy

MONTHLY RATE:
  ExpectedReturnPct / 100 / 12. A flat division, not the geometric
  (1+r)^(1/12)-1.

EXAMPLE:
  Start 2026-01, balance 10000 at 2026-01, 12% return, income 1000/month:

  projection: 10000, 11100, 12211, ...
  snapshot:   10000, 10000, 10000, ...

SEE ALSO:
  - snapshot.go: Baseline and snapshot lookups
  - recurring.go: Monthly cash flow
*/
package projection

import "github.com/shopspring/decimal"

// =============================================================================
// SERIES BUILDER
// =============================================================================

const (
	// HorizonMonths is how far past the start month the series runs.
	HorizonMonths = 600

	// SeriesLength is the number of points, month 0 included.
	SeriesLength = HorizonMonths + 1

	// compoundScale bounds the decimal places kept after each compounding
	// step; exact decimal products would otherwise grow every month.
	compoundScale = 10
)

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// MonthlyRate converts an annual percentage into the monthly rate.
func MonthlyRate(annualPct decimal.Decimal) decimal.Decimal {
	return annualPct.Div(hundred).Div(twelve)
}

// BuildNetWorthSeries computes the net-worth series for plan.
// It always returns SeriesLength points with MonthIndex 0, 1, 2, ...
func BuildNetWorthSeries(plan Plan) []SeriesPoint {
	start := plan.Start()
	mode := ParseMode(string(plan.NetWorthMode))
	growth := decimal.NewFromInt(1).Add(MonthlyRate(plan.ExpectedReturnPct))

	netWorth := baseline(plan, mode, start)
	points := make([]SeriesPoint, 0, SeriesLength)

	for i := 0; i < SeriesLength; i++ {
		month := start.Add(i)
		netWorth = step(plan, mode, i, month, netWorth, growth)
		points = append(points, SeriesPoint{MonthIndex: i, Month: month, NetWorth: netWorth})
	}
	return points
}

func baseline(plan Plan, mode Mode, start MonthKey) decimal.Decimal {
	switch mode {
	case ModeSnapshot:
		if v, ok := LastSnapshotAtOrBefore(plan, start); ok {
			return v
		}
		return decimal.Zero
	case ModeProjection:
		if HasSnapshot(plan, start) {
			return NetWorthForMonth(plan, start)
		}
		return plan.StartingNetWorth
	default: // ModeHybrid
		if v, ok := LastSnapshotAtOrBefore(plan, start); ok {
			return v
		}
		return plan.StartingNetWorth
	}
}

// step produces month i's value from the previous one. The mode is checked
// before any compounding happens.
func step(plan Plan, mode Mode, i int, month MonthKey, netWorth, growth decimal.Decimal) decimal.Decimal {
	switch mode {
	case ModeSnapshot:
		if m, ok := SnapshotAtOrBefore(plan, month); ok {
			return NetWorthForMonth(plan, m)
		}
		return netWorth
	case ModeHybrid:
		if HasSnapshot(plan, month) {
			return NetWorthForMonth(plan, month)
		}
	}

	if i == 0 {
		return netWorth
	}
	flow := CashFlowForMonth(plan, month)
	return netWorth.Mul(growth).Add(flow.Net).Round(compoundScale)
}
