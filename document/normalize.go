package document

import (
	"slices"
	"strings"

	"github.com/Moserpilot/Finance-Planner-2/projection"
	"github.com/Rhymond/go-money"
	"github.com/google/uuid"
)

// DefaultCurrency replaces unknown currency codes.
const DefaultCurrency = money.USD

// =============================================================================
// NORMALIZE
// =============================================================================

// Normalize returns a canonical copy of plan. The input is not modified.
//
// After Normalize every month is valid (or empty for a never-ending item),
// every kind, behavior and mode is a known value, IDs are unique within each
// list, and every dated history is sorted with one entry per month.
func Normalize(plan projection.Plan) projection.Plan {
	out := plan.Clone()
	out.Currency = NormalizeCurrency(plan.Currency)
	out.StartMonth = NormalizeMonth(string(plan.StartMonth))
	out.NetWorthMode = projection.ParseMode(strings.TrimSpace(string(plan.NetWorthMode)))

	ids := make(map[string]bool)
	out.Recurring = make([]projection.RecurringItem, 0, len(plan.Recurring))
	for _, item := range plan.Recurring {
		item.ID = uniqueID(item.ID, ids)
		item.Kind = NormalizeKind(string(item.Kind))
		item.Name = strings.TrimSpace(item.Name)
		item.Behavior = NormalizeBehavior(string(item.Behavior))
		item.Changes = NormalizeDated(item.Changes)
		item.Overrides = NormalizeDated(item.Overrides)
		item.EndMonth = normalizeEndMonth(string(item.EndMonth))
		out.Recurring = append(out.Recurring, item)
	}

	ids = make(map[string]bool)
	out.OneTime = make([]projection.OneTimeItem, 0, len(plan.OneTime))
	for _, item := range plan.OneTime {
		item.ID = uniqueID(item.ID, ids)
		item.Kind = NormalizeKind(string(item.Kind))
		item.Name = strings.TrimSpace(item.Name)
		item.Month = NormalizeMonth(string(item.Month))
		out.OneTime = append(out.OneTime, item)
	}

	ids = make(map[string]bool)
	out.Accounts = make([]projection.Account, 0, len(plan.Accounts))
	for _, acct := range plan.Accounts {
		acct.ID = uniqueID(acct.ID, ids)
		acct.Name = strings.TrimSpace(acct.Name)
		acct.Balances = NormalizeDated(acct.Balances)
		out.Accounts = append(out.Accounts, acct)
	}

	return out
}

// NormalizeCurrency upper-cases code and falls back to DefaultCurrency for
// anything go-money does not know.
func NormalizeCurrency(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || money.GetCurrency(code) == nil {
		return DefaultCurrency
	}
	return code
}

// NormalizeMonth returns s as a MonthKey, or projection.DefaultMonth.
func NormalizeMonth(s string) projection.MonthKey {
	if m, ok := projection.ParseMonth(strings.TrimSpace(s)); ok {
		return m
	}
	return projection.DefaultMonth
}

func normalizeEndMonth(s string) projection.MonthKey {
	m, _ := projection.ParseMonth(strings.TrimSpace(s))
	return m
}

// NormalizeKind maps s onto a Kind; anything unknown is an expense.
func NormalizeKind(s string) projection.Kind {
	if projection.Kind(strings.TrimSpace(s)) == projection.KindIncome {
		return projection.KindIncome
	}
	return projection.KindExpense
}

// NormalizeBehavior maps s onto a Behavior; anything unknown carries forward.
func NormalizeBehavior(s string) projection.Behavior {
	if projection.Behavior(strings.TrimSpace(s)) == projection.MonthOnly {
		return projection.MonthOnly
	}
	return projection.CarryForward
}

// NormalizeDated drops entries with an invalid month, keeps the last entry
// for each month and sorts the result by month.
func NormalizeDated(history []projection.DatedAmount) []projection.DatedAmount {
	byMonth := make(map[projection.MonthKey]int, len(history))
	out := make([]projection.DatedAmount, 0, len(history))
	for _, e := range history {
		m, ok := projection.ParseMonth(strings.TrimSpace(string(e.Month)))
		if !ok {
			continue
		}
		e.Month = m
		if i, seen := byMonth[m]; seen {
			out[i] = e
			continue
		}
		byMonth[m] = len(out)
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b projection.DatedAmount) int {
		return a.Month.Compare(b.Month)
	})
	return out
}

func uniqueID(id string, seen map[string]bool) string {
	id = strings.TrimSpace(id)
	if id == "" || seen[id] {
		id = uuid.NewString()
	}
	seen[id] = true
	return id
}
