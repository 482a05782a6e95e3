package projection

// NetWorthAsOf answers "what was net worth as of target" without building
// the series.
//
// The nearest snapshot at or before target wins (SourceSnapshot). Without
// one, a non-zero legacy StartingNetWorth is reported against target itself
// (SourceLegacy). Otherwise there is no answer.
func NetWorthAsOf(plan Plan, target MonthKey) (AsOf, bool) {
	if month, ok := SnapshotAtOrBefore(plan, target); ok {
		return AsOf{Month: month, NetWorth: NetWorthForMonth(plan, month), Source: SourceSnapshot}, true
	}
	if !plan.StartingNetWorth.IsZero() {
		return AsOf{Month: target, NetWorth: plan.StartingNetWorth, Source: SourceLegacy}, true
	}
	return AsOf{}, false
}
