package projection_test

import (
	"fmt"
	"testing"

	"github.com/Moserpilot/Finance-Planner-2/projection"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func at(month string, amount string) projection.DatedAmount {
	return projection.DatedAmount{Month: projection.MonthKey(month), Amount: dec(amount)}
}

func assertAmount(t *testing.T, want string, got decimal.Decimal, context ...any) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s %s", want, got.String(), fmt.Sprint(context...))
}

// salaryPlan is the reference setup: start 2026-01, one account holding
// 10000 at 2026-01, 12% expected return, 1000/month carry-forward income.
func salaryPlan(mode projection.Mode) projection.Plan {
	return projection.Plan{
		Currency:          "USD",
		StartMonth:        "2026-01",
		ExpectedReturnPct: dec("12"),
		Recurring: []projection.RecurringItem{
			{
				ID:            "salary",
				Kind:          projection.KindIncome,
				Name:          "Salary",
				DefaultAmount: dec("1000"),
				Behavior:      projection.CarryForward,
			},
		},
		Accounts: []projection.Account{
			{ID: "checking", Name: "Checking", Balances: []projection.DatedAmount{at("2026-01", "10000")}},
		},
		NetWorthMode: mode,
	}
}
