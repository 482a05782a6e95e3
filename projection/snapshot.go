/*
snapshot.go - Locating entered balances

PURPOSE:
  A snapshot is a month for which at least one account has an entered
  balance. Zero is a valid entered balance; "no entry" is not. This file
  answers where snapshots are, and what net worth a snapshot gives as a
  baseline.

TWO KINDS OF ANSWER:
  Month location:   HasSnapshot, LatestSnapshotMonth, SnapshotAtOrBefore
  Baseline value:   LastSnapshotAtOrBefore

  They stay separate so "no data" is never confused with "zero dollars":
  every lookup returns (value, ok).

SEE ALSO:
  - balance.go: NetWorthForMonth (the aggregate at a snapshot month)
  - series.go: Uses both kinds per mode
  - asof.go: As-of query
*/
package projection

import (
	"slices"

	"github.com/shopspring/decimal"
)

// HasSnapshot reports whether any account has an entry for exactly month.
func HasSnapshot(plan Plan, month MonthKey) bool {
	for _, acct := range plan.Accounts {
		if _, ok := entryFor(acct.Balances, month); ok {
			return true
		}
	}
	return false
}

// LatestSnapshotMonth returns the latest month with any entered balance.
func LatestSnapshotMonth(plan Plan) (MonthKey, bool) {
	var (
		latest MonthKey
		found  bool
	)
	for _, acct := range plan.Accounts {
		for _, e := range acct.Balances {
			if !found || e.Month > latest {
				latest, found = e.Month, true
			}
		}
	}
	return latest, found
}

// SnapshotAtOrBefore returns the latest entered month <= target.
func SnapshotAtOrBefore(plan Plan, target MonthKey) (MonthKey, bool) {
	var (
		best  MonthKey
		found bool
	)
	for _, acct := range plan.Accounts {
		if e, ok := latestAtOrBefore(acct.Balances, target); ok {
			if !found || e.Month > best {
				best, found = e.Month, true
			}
		}
	}
	return best, found
}

// LastSnapshotAtOrBefore returns the baseline net worth for target: the
// aggregate at the latest snapshot <= target. When no balance has been
// entered anywhere, a non-zero legacy StartingNetWorth is the baseline.
// Otherwise there is none.
func LastSnapshotAtOrBefore(plan Plan, target MonthKey) (decimal.Decimal, bool) {
	if month, ok := SnapshotAtOrBefore(plan, target); ok {
		return NetWorthForMonth(plan, month), true
	}
	if _, entered := LatestSnapshotMonth(plan); entered {
		return decimal.Zero, false
	}
	if !plan.StartingNetWorth.IsZero() {
		return plan.StartingNetWorth, true
	}
	return decimal.Zero, false
}

// SnapshotMonths returns every distinct entered month, ascending.
func SnapshotMonths(plan Plan) []MonthKey {
	seen := make(map[MonthKey]bool)
	var months []MonthKey
	for _, acct := range plan.Accounts {
		for _, e := range acct.Balances {
			if !seen[e.Month] {
				seen[e.Month] = true
				months = append(months, e.Month)
			}
		}
	}
	slices.Sort(months)
	return months
}
