package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Moserpilot/Finance-Planner-2/projection"
	"github.com/shopspring/decimal"
)

// ErrNotObject is returned when a document is not a JSON object.
var ErrNotObject = errors.New("plan document must be a JSON object")

// =============================================================================
// DECODE
// =============================================================================

// Decode parses a plan document. Only a top level that is not a JSON object
// is an error; every field-level defect is normalized away.
func Decode(data []byte) (projection.Plan, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return projection.Plan{}, ErrNotObject
	}

	plan := projection.Plan{
		Currency:          text(fields["currency"]),
		StartMonth:        projection.MonthKey(text(fields["startMonth"])),
		StartingNetWorth:  number(fields["startingNetWorth"]).OrZero(),
		GoalNetWorth:      number(fields["goalNetWorth"]).OrZero(),
		ExpectedReturnPct: number(fields["expectedReturnPct"]).OrZero(),
		NetWorthMode:      projection.Mode(text(fields["netWorthMode"])),
	}

	for _, obj := range objects(fields["recurring"]) {
		plan.Recurring = append(plan.Recurring, projection.RecurringItem{
			ID:            text(obj["id"]),
			Kind:          projection.Kind(text(obj["kind"])),
			Name:          text(obj["name"]),
			DefaultAmount: number(obj["defaultAmount"]).OrZero(),
			Behavior:      projection.Behavior(text(obj["behavior"])),
			Changes:       dated(obj["changes"]),
			Overrides:     dated(obj["overrides"]),
			EndMonth:      projection.MonthKey(text(obj["endMonth"])),
		})
	}

	for _, obj := range objects(fields["oneTime"]) {
		plan.OneTime = append(plan.OneTime, projection.OneTimeItem{
			ID:     text(obj["id"]),
			Kind:   projection.Kind(text(obj["kind"])),
			Name:   text(obj["name"]),
			Month:  projection.MonthKey(text(obj["month"])),
			Amount: number(obj["amount"]).OrZero(),
		})
	}

	for _, obj := range objects(fields["netWorthAccounts"]) {
		plan.Accounts = append(plan.Accounts, projection.Account{
			ID:       text(obj["id"]),
			Name:     text(obj["name"]),
			Balances: dated(obj["balances"]),
		})
	}

	return Normalize(plan), nil
}

// objects returns the elements of a JSON array that are objects. Anything
// that is not an array yields nothing.
func objects(raw json.RawMessage) []map[string]json.RawMessage {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil
	}
	out := make([]map[string]json.RawMessage, 0, len(elems))
	for _, e := range elems {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(e, &obj); err != nil || obj == nil {
			continue
		}
		out = append(out, obj)
	}
	return out
}

// dated decodes a {month, amount} array, dropping entries whose amount is
// not a finite number. Month validation is left to Normalize.
func dated(raw json.RawMessage) []projection.DatedAmount {
	var out []projection.DatedAmount
	for _, obj := range objects(raw) {
		n := number(obj["amount"])
		if !n.Valid {
			continue
		}
		out = append(out, projection.DatedAmount{
			Month:  projection.MonthKey(text(obj["month"])),
			Amount: n.Value,
		})
	}
	return out
}

// text reads a string field. Numbers are accepted as their literal text so
// numeric IDs survive; anything else is "".
func text(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func number(raw json.RawMessage) Number {
	var n Number
	if len(raw) > 0 {
		_ = n.UnmarshalJSON(raw)
	}
	return n
}

// =============================================================================
// ENCODE
// =============================================================================

// ToJSON converts plan into its JSON schema form. Nil histories become empty
// arrays so the encoded document is always complete.
func ToJSON(plan projection.Plan) PlanJSON {
	out := PlanJSON{
		Currency:          plan.Currency,
		StartMonth:        plan.StartMonth.String(),
		StartingNetWorth:  NewNumber(plan.StartingNetWorth),
		GoalNetWorth:      NewNumber(plan.GoalNetWorth),
		ExpectedReturnPct: NewNumber(plan.ExpectedReturnPct),
		Recurring:         make([]RecurringJSON, 0, len(plan.Recurring)),
		OneTime:           make([]OneTimeJSON, 0, len(plan.OneTime)),
		Accounts:          make([]AccountJSON, 0, len(plan.Accounts)),
		NetWorthMode:      string(plan.NetWorthMode),
	}
	for _, item := range plan.Recurring {
		out.Recurring = append(out.Recurring, RecurringJSON{
			ID:            item.ID,
			Kind:          string(item.Kind),
			Name:          item.Name,
			DefaultAmount: NewNumber(item.DefaultAmount),
			Behavior:      string(item.Behavior),
			Changes:       datedJSON(item.Changes),
			Overrides:     datedJSON(item.Overrides),
			EndMonth:      item.EndMonth.String(),
		})
	}
	for _, item := range plan.OneTime {
		out.OneTime = append(out.OneTime, OneTimeJSON{
			ID:     item.ID,
			Kind:   string(item.Kind),
			Name:   item.Name,
			Month:  item.Month.String(),
			Amount: NewNumber(item.Amount),
		})
	}
	for _, acct := range plan.Accounts {
		out.Accounts = append(out.Accounts, AccountJSON{
			ID:       acct.ID,
			Name:     acct.Name,
			Balances: datedJSON(acct.Balances),
		})
	}
	return out
}

func datedJSON(history []projection.DatedAmount) []DatedJSON {
	out := make([]DatedJSON, 0, len(history))
	for _, e := range history {
		out = append(out, DatedJSON{Month: e.Month.String(), Amount: NewNumber(e.Amount)})
	}
	return out
}

// Encode writes plan as an indented JSON document.
func Encode(plan projection.Plan) ([]byte, error) {
	data, err := json.MarshalIndent(ToJSON(plan), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode plan: %w", err)
	}
	return data, nil
}

// New returns an empty plan with default settings.
func New() projection.Plan {
	return Normalize(projection.Plan{
		Currency:          DefaultCurrency,
		StartMonth:        projection.DefaultMonth,
		ExpectedReturnPct: decimal.NewFromInt(7),
		NetWorthMode:      projection.ModeHybrid,
	})
}
