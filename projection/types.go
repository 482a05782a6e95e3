/*
Package projection provides the net-worth projection engine.

PURPOSE:
  This package contains the pure functions that turn a plan document into
  derived numbers: the amount a recurring item contributes in a month, the
  net worth recorded for a month, the snapshot relevant to a month, and the
  601-month net-worth trajectory under the selected accounting mode.

KEY CONCEPTS IN THIS FILE (types.go):
  - Plan: The aggregate root (settings, cash-flow items, accounts)
  - DatedAmount: A value that took effect (or was observed) in a month
  - RecurringItem / OneTimeItem: Cash-flow sources
  - Account: Tracked balances, entered actuals only
  - Mode: snapshot | projection | hybrid

DESIGN PRINCIPLES:
  1. Purity: Nothing in this package mutates a Plan or keeps state
  2. Totality: Every function returns a value, never an error
  3. Precision: Uses decimal.Decimal for all money amounts
  4. No aliasing: Outputs are freshly allocated

USAGE:
  plan := projection.Plan{
      StartMonth:        "2026-01",
      ExpectedReturnPct: decimal.NewFromInt(7),
      NetWorthMode:      projection.ModeHybrid,
  }
  series := projection.BuildNetWorthSeries(plan)

SEE ALSO:
  - month.go: MonthKey arithmetic
  - recurring.go: Recurring amount resolution
  - snapshot.go: Snapshot location
  - series.go: Series builder
*/
package projection

import (
	"math"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNTS
// =============================================================================

// FromFloat converts a float64 into a decimal amount. Non-finite values
// (NaN, ±Inf) become zero.
func FromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

// DatedAmount is a value that took effect (or was observed) in a month.
type DatedAmount struct {
	Month  MonthKey
	Amount decimal.Decimal
}

// =============================================================================
// CASH-FLOW ITEMS
// =============================================================================

type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Behavior selects which dated history of a recurring item is active.
type Behavior string

const (
	// CarryForward: a change recorded for month M applies from M onward
	// until superseded.
	CarryForward Behavior = "carryForward"

	// MonthOnly: an override recorded for month M applies to M only.
	MonthOnly Behavior = "monthOnly"
)

// RecurringItem is a monthly income or expense.
//
// Only one history is active at a time: Changes under CarryForward,
// Overrides under MonthOnly. The other may still hold entries from before a
// behavior switch; they are kept and ignored.
type RecurringItem struct {
	ID            string
	Kind          Kind
	Name          string
	DefaultAmount decimal.Decimal
	Behavior      Behavior
	Changes       []DatedAmount
	Overrides     []DatedAmount
	EndMonth      MonthKey // Empty = never ends
}

// OneTimeItem is a single-month cash-flow event.
type OneTimeItem struct {
	ID     string
	Kind   Kind
	Name   string
	Month  MonthKey
	Amount decimal.Decimal
}

// Account is a tracked net-worth account. Balances are entered
// observations only, never modeled values.
type Account struct {
	ID       string
	Name     string
	Balances []DatedAmount
}

// =============================================================================
// MODE
// =============================================================================

// Mode is the accounting policy used to build the net-worth series.
type Mode string

const (
	// ModeSnapshot: the series follows entered balances only, flat between
	// entries.
	ModeSnapshot Mode = "snapshot"

	// ModeProjection: the series compounds from the baseline with cash flow,
	// ignoring later entries.
	ModeProjection Mode = "projection"

	// ModeHybrid: compounds like projection but snaps to every entered
	// balance (anchor months).
	ModeHybrid Mode = "hybrid"
)

// ParseMode maps s onto a Mode. Anything unrecognized is hybrid.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeSnapshot, ModeProjection, ModeHybrid:
		return Mode(s)
	default:
		return ModeHybrid
	}
}

// =============================================================================
// PLAN - Aggregate root
// =============================================================================

// Plan is the document the engine reads. It is owned by the caller; engine
// functions only read it.
type Plan struct {
	Currency   string
	StartMonth MonthKey

	// StartingNetWorth predates multi-account support. It is the fallback
	// when a plan has no accounts or no entered balances.
	StartingNetWorth decimal.Decimal

	GoalNetWorth      decimal.Decimal
	ExpectedReturnPct decimal.Decimal // Annual, e.g. 7 for 7%

	Recurring []RecurringItem
	OneTime   []OneTimeItem
	Accounts  []Account

	NetWorthMode Mode
}

// Start returns the plan's start month, or DefaultMonth when it is invalid
// or leaves no room for the horizon.
func (p Plan) Start() MonthKey {
	if m, ok := ParseMonth(string(p.StartMonth)); ok {
		return m
	}
	return DefaultMonth
}

// Clone returns a deep copy of the plan.
func (p Plan) Clone() Plan {
	out := p
	if p.Recurring != nil {
		out.Recurring = make([]RecurringItem, len(p.Recurring))
		for i, item := range p.Recurring {
			item.Changes = cloneDated(item.Changes)
			item.Overrides = cloneDated(item.Overrides)
			out.Recurring[i] = item
		}
	}
	if p.OneTime != nil {
		out.OneTime = append([]OneTimeItem{}, p.OneTime...)
	}
	if p.Accounts != nil {
		out.Accounts = make([]Account, len(p.Accounts))
		for i, acct := range p.Accounts {
			acct.Balances = cloneDated(acct.Balances)
			out.Accounts[i] = acct
		}
	}
	return out
}

func cloneDated(in []DatedAmount) []DatedAmount {
	if in == nil {
		return nil
	}
	return append([]DatedAmount{}, in...)
}

// =============================================================================
// OUTPUTS
// =============================================================================

// SeriesPoint is one month of the net-worth series.
type SeriesPoint struct {
	MonthIndex int
	Month      MonthKey
	NetWorth   decimal.Decimal
}

type Source string

const (
	SourceSnapshot Source = "snapshot"
	SourceLegacy   Source = "legacy"
)

// AsOf is the answer to "what was net worth as of month X".
type AsOf struct {
	Month    MonthKey
	NetWorth decimal.Decimal
	Source   Source
}

// CashFlow totals one month of income and expense.
type CashFlow struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Net     decimal.Decimal
}
