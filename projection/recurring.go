/*
recurring.go - Recurring amount resolution

PURPOSE:
  Answers "how much does this recurring item contribute in month M?"
  given its behavior and its dated history.

RESOLUTION ORDER:
  1. EndMonth set and M > EndMonth: 0 (the item has lapsed)
  2. MonthOnly: the override recorded for exactly M, else DefaultAmount
  3. CarryForward: the latest change at or before M, else DefaultAmount

EXAMPLE:
  Rent 1000 by default, change to 1200 recorded for 2026-06:

  2026-05 -> 1000
  2026-06 -> 1200
  2031-01 -> 1200 (still in force)

DUPLICATES:
  Histories should hold one entry per month. When they don't, the first
  entry in array order wins.

SEE ALSO:
  - series.go: Sums these amounts into monthly cash flow
*/
package projection

import "github.com/shopspring/decimal"

// AmountForMonth resolves the amount item contributes in month.
func AmountForMonth(item RecurringItem, month MonthKey) decimal.Decimal {
	if item.EndMonth != "" && month > item.EndMonth {
		return decimal.Zero
	}
	base := item.DefaultAmount

	switch item.Behavior {
	case MonthOnly:
		if o, ok := entryFor(item.Overrides, month); ok {
			return o.Amount
		}
		return base
	default: // CarryForward
		if c, ok := latestAtOrBefore(item.Changes, month); ok {
			return c.Amount
		}
		return base
	}
}

// latestAtOrBefore returns the entry with the greatest month <= target.
// The history does not need to be sorted.
func latestAtOrBefore(history []DatedAmount, target MonthKey) (DatedAmount, bool) {
	var (
		best  DatedAmount
		found bool
	)
	for _, e := range history {
		if e.Month > target {
			continue
		}
		if !found || e.Month > best.Month {
			best, found = e, true
		}
	}
	return best, found
}

// CashFlowForMonth totals recurring and one-time income and expense for month.
func CashFlowForMonth(plan Plan, month MonthKey) CashFlow {
	income, expense := decimal.Zero, decimal.Zero

	for _, item := range plan.Recurring {
		amount := AmountForMonth(item, month)
		switch item.Kind {
		case KindIncome:
			income = income.Add(amount)
		case KindExpense:
			expense = expense.Add(amount)
		}
	}

	for _, item := range plan.OneTime {
		if item.Month != month {
			continue
		}
		switch item.Kind {
		case KindIncome:
			income = income.Add(item.Amount)
		case KindExpense:
			expense = expense.Add(item.Amount)
		}
	}

	return CashFlow{Income: income, Expense: expense, Net: income.Sub(expense)}
}
