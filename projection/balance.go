package projection

import "github.com/shopspring/decimal"

// =============================================================================
// BALANCE AGGREGATOR
// =============================================================================

// AccountBalanceForMonth returns the balance entered for exactly month, or
// zero. There is no carry-forward at the account level.
func AccountBalanceForMonth(account Account, month MonthKey) decimal.Decimal {
	if e, ok := entryFor(account.Balances, month); ok {
		return e.Amount
	}
	return decimal.Zero
}

// NetWorthForMonth sums every account's balance for month.
//
// A plan with no accounts at all (a document from before multi-account
// support) reports its legacy StartingNetWorth instead. Once any account
// exists the legacy value is never used here, even if every balance is
// missing.
func NetWorthForMonth(plan Plan, month MonthKey) decimal.Decimal {
	if len(plan.Accounts) == 0 {
		return plan.StartingNetWorth
	}
	total := decimal.Zero
	for _, acct := range plan.Accounts {
		total = total.Add(AccountBalanceForMonth(acct, month))
	}
	return total
}

// entryFor returns the first entry recorded for exactly month.
func entryFor(history []DatedAmount, month MonthKey) (DatedAmount, bool) {
	for _, e := range history {
		if e.Month == month {
			return e, true
		}
	}
	return DatedAmount{}, false
}
