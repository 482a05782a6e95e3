/*
Package document converts plan documents between JSON and projection.Plan.

PURPOSE:
  A plan document is user-owned and may be hand-edited, produced by an older
  client, or partially written. This package reads such documents without
  failing on field-level defects, normalizes them into a projection.Plan the
  engine can consume, and writes them back in canonical form.

JSON SCHEMA:
  {
    "currency": "USD",
    "startMonth": "2026-01",
    "startingNetWorth": 0,
    "goalNetWorth": 1000000,
    "expectedReturnPct": 7,
    "netWorthMode": "hybrid",
    "recurring": [
      {
        "id": "salary", "kind": "income", "name": "Salary",
        "defaultAmount": 5000, "behavior": "carryForward",
        "changes":   [{"month": "2026-06", "amount": 5500}],
        "overrides": [],
        "endMonth": "2040-12"
      }
    ],
    "oneTime": [
      {"id": "bonus", "kind": "income", "name": "Bonus", "month": "2026-12", "amount": 2500}
    ],
    "netWorthAccounts": [
      {"id": "checking", "name": "Checking", "balances": [{"month": "2026-01", "amount": 10000}]}
    ]
  }

NORMALIZATION:
  - Only a non-object top level is an error
  - Malformed arrays become empty, malformed elements are skipped
  - Unknown kind becomes expense, unknown behavior carryForward,
    unknown mode hybrid
  - Invalid startMonth or one-time month becomes projection.DefaultMonth,
    invalid endMonth becomes "never ends"
  - Dated entries with an invalid month or amount are dropped; duplicate
    months keep the last entry; entries are sorted by month
  - Missing IDs are generated, unknown currencies become USD

SEE ALSO:
  - projection/types.go: The in-memory plan
  - planner/service.go: Mutations that re-normalize after every change
*/
package document

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PlanJSON is the canonical JSON representation of a plan.
type PlanJSON struct {
	Currency          string          `json:"currency"`
	StartMonth        string          `json:"startMonth"`
	StartingNetWorth  Number          `json:"startingNetWorth"`
	GoalNetWorth      Number          `json:"goalNetWorth"`
	ExpectedReturnPct Number          `json:"expectedReturnPct"`
	Recurring         []RecurringJSON `json:"recurring"`
	OneTime           []OneTimeJSON   `json:"oneTime"`
	Accounts          []AccountJSON   `json:"netWorthAccounts"`
	NetWorthMode      string          `json:"netWorthMode"`
}

// RecurringJSON is a recurring income or expense.
type RecurringJSON struct {
	ID            string      `json:"id"`
	Kind          string      `json:"kind"`
	Name          string      `json:"name"`
	DefaultAmount Number      `json:"defaultAmount"`
	Behavior      string      `json:"behavior"`
	Changes       []DatedJSON `json:"changes"`
	Overrides     []DatedJSON `json:"overrides"`
	EndMonth      string      `json:"endMonth,omitempty"` // Empty = never ends
}

// OneTimeJSON is a single-month event.
type OneTimeJSON struct {
	ID     string `json:"id"`
	Kind   string `json:"kind"`
	Name   string `json:"name"`
	Month  string `json:"month"`
	Amount Number `json:"amount"`
}

// AccountJSON is a tracked net-worth account.
type AccountJSON struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Balances []DatedJSON `json:"balances"`
}

// DatedJSON is one {month, amount} entry.
type DatedJSON struct {
	Month  string `json:"month"`
	Amount Number `json:"amount"`
}

// =============================================================================
// NUMBER - Lenient numeric field
// =============================================================================

// Number is a JSON amount. It accepts numbers, numeric strings and null;
// anything else decodes to an invalid Number rather than an error.
//
// Values are read as IEEE doubles: magnitudes beyond the float64 range are
// invalid, and digits past double precision are dropped.
type Number struct {
	Value decimal.Decimal
	Valid bool
}

// NewNumber wraps d as a valid Number.
func NewNumber(d decimal.Decimal) Number {
	return Number{Value: d, Valid: true}
}

// OrZero returns the value, or zero when invalid.
func (n Number) OrZero() decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	return n.Value
}

func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var text string
	switch data[0] {
	case '"':
		if err := json.Unmarshal(data, &text); err != nil {
			return nil
		}
		text = strings.TrimSpace(text)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		text = string(data)
	default:
		return nil
	}

	if strings.ContainsAny(text, "xXpP_") {
		return nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return nil
	}
	n.Value, n.Valid = decimal.NewFromFloat(f), true
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("0"), nil
	}
	return []byte(n.Value.String()), nil
}
