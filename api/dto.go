/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's types from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Wrappers around several DTOs

AMOUNTS:
  Amounts are float64 on the wire. Whole plan documents (GET/PUT
  /api/plans/{id}) use document.PlanJSON instead, which keeps exact decimals.

VALIDATION:
  Validation is done by the planner service, not in DTOs. DTOs are pure
  data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - document/schema.go: PlanJSON
*/
package api

import (
	"encoding/json"
	"time"

	"github.com/Moserpilot/Finance-Planner-2/document"
	"github.com/Moserpilot/Finance-Planner-2/planner"
	"github.com/Moserpilot/Finance-Planner-2/projection"
	"github.com/shopspring/decimal"
)

// =============================================================================
// PLANS
// =============================================================================

// PlanDTO is a stored plan with its document.
type PlanDTO struct {
	ID        string            `json:"id"`
	Version   int64             `json:"version"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
	Document  document.PlanJSON `json:"document"`
}

// PlanSummaryDTO is a plan in list responses.
type PlanSummaryDTO struct {
	ID             string    `json:"id"`
	Version        int64     `json:"version"`
	UpdatedAt      time.Time `json:"updatedAt"`
	Currency       string    `json:"currency"`
	StartMonth     string    `json:"startMonth"`
	NetWorthMode   string    `json:"netWorthMode"`
	RecurringCount int       `json:"recurringCount"`
	OneTimeCount   int       `json:"oneTimeCount"`
	AccountCount   int       `json:"accountCount"`
}

// CreatePlanRequest creates a plan. Document is optional; an empty plan
// with default settings is used without it.
type CreatePlanRequest struct {
	ID       string          `json:"id"`
	Document json.RawMessage `json:"document,omitempty"`
}

// SettingsRequest is a partial settings update.
type SettingsRequest struct {
	Currency          *string  `json:"currency,omitempty"`
	StartMonth        *string  `json:"startMonth,omitempty"`
	StartingNetWorth  *float64 `json:"startingNetWorth,omitempty"`
	GoalNetWorth      *float64 `json:"goalNetWorth,omitempty"`
	ExpectedReturnPct *float64 `json:"expectedReturnPct,omitempty"`
	NetWorthMode      *string  `json:"netWorthMode,omitempty"`
}

// =============================================================================
// CASH-FLOW ITEMS
// =============================================================================

type DatedAmountDTO struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

// AmountRequest sets a dated amount; the month comes from the URL.
type AmountRequest struct {
	Amount *float64 `json:"amount"`
}

type RecurringRequest struct {
	ID            string  `json:"id,omitempty"`
	Kind          string  `json:"kind"`
	Name          string  `json:"name"`
	DefaultAmount float64 `json:"defaultAmount"`
	Behavior      string  `json:"behavior,omitempty"`
	EndMonth      string  `json:"endMonth,omitempty"`
}

type RecurringItemDTO struct {
	ID            string           `json:"id"`
	Kind          string           `json:"kind"`
	Name          string           `json:"name"`
	DefaultAmount float64          `json:"defaultAmount"`
	Behavior      string           `json:"behavior"`
	Changes       []DatedAmountDTO `json:"changes"`
	Overrides     []DatedAmountDTO `json:"overrides"`
	EndMonth      string           `json:"endMonth,omitempty"`
}

type OneTimeRequest struct {
	ID     string  `json:"id,omitempty"`
	Kind   string  `json:"kind"`
	Name   string  `json:"name"`
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

type OneTimeItemDTO struct {
	ID     string  `json:"id"`
	Kind   string  `json:"kind"`
	Name   string  `json:"name"`
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

// ItemAmountDTO is the resolved amount of a recurring item in one month.
type ItemAmountDTO struct {
	ItemID string  `json:"itemId"`
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

// =============================================================================
// ACCOUNTS
// =============================================================================

type AccountRequest struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

type AccountDTO struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Balances []DatedAmountDTO `json:"balances"`
}

// =============================================================================
// ENGINE QUERIES
// =============================================================================

type SeriesPointDTO struct {
	MonthIndex int     `json:"monthIndex"`
	Month      string  `json:"month"`
	NetWorth   float64 `json:"netWorth"`
}

type SeriesResponse struct {
	PlanID     string           `json:"planId"`
	Mode       string           `json:"mode"`
	StartMonth string           `json:"startMonth"`
	Points     []SeriesPointDTO `json:"points"`
}

// NetWorthDTO is the aggregate of entered balances in one month.
type NetWorthDTO struct {
	Month       string  `json:"month"`
	NetWorth    float64 `json:"netWorth"`
	HasSnapshot bool    `json:"hasSnapshot"`
}

// AsOfDTO answers "what was net worth as of Target". Found is false when
// there is no data at or before Target.
type AsOfDTO struct {
	Target   string  `json:"target"`
	Found    bool    `json:"found"`
	Month    string  `json:"month,omitempty"`
	NetWorth float64 `json:"netWorth"`
	Source   string  `json:"source,omitempty"`
}

type SnapshotsDTO struct {
	Months []string `json:"months"`
	Latest string   `json:"latest,omitempty"`
}

type CashFlowDTO struct {
	Month   string  `json:"month"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Net     float64 `json:"net"`
}

type MilestoneDTO struct {
	Years    int     `json:"years"`
	Month    string  `json:"month"`
	NetWorth float64 `json:"netWorth"`
}

type SummaryDTO struct {
	PlanID          string         `json:"planId"`
	AsOfMonth       string         `json:"asOfMonth"`
	Current         AsOfDTO        `json:"current"`
	LatestSnapshot  string         `json:"latestSnapshot,omitempty"`
	CashFlow        CashFlowDTO    `json:"cashFlow"`
	Goal            float64        `json:"goal"`
	GoalProgressPct float64        `json:"goalProgressPct"`
	GoalMonthIndex  int            `json:"goalMonthIndex"`
	GoalMonth       string         `json:"goalMonth,omitempty"`
	Milestones      []MilestoneDTO `json:"milestones"`
	Formatted       FormattedDTO   `json:"formatted"`
}

// FormattedDTO carries display strings in the plan's currency.
type FormattedDTO struct {
	Current string `json:"current"`
	Goal    string `json:"goal"`
	Net     string `json:"net"`
}

// =============================================================================
// SCENARIOS AND ERRORS
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Mode        string `json:"mode"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
	PlanID     string `json:"plan_id,omitempty"` // Defaults to the server's default plan
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func toPlanDTO(rec planner.Record) PlanDTO {
	return PlanDTO{
		ID:        rec.ID,
		Version:   rec.Version,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
		Document:  document.ToJSON(rec.Plan),
	}
}

func toPlanSummaryDTO(rec planner.Record) PlanSummaryDTO {
	return PlanSummaryDTO{
		ID:             rec.ID,
		Version:        rec.Version,
		UpdatedAt:      rec.UpdatedAt,
		Currency:       rec.Plan.Currency,
		StartMonth:     rec.Plan.StartMonth.String(),
		NetWorthMode:   string(rec.Plan.NetWorthMode),
		RecurringCount: len(rec.Plan.Recurring),
		OneTimeCount:   len(rec.Plan.OneTime),
		AccountCount:   len(rec.Plan.Accounts),
	}
}

func toDatedDTOs(history []projection.DatedAmount) []DatedAmountDTO {
	out := make([]DatedAmountDTO, 0, len(history))
	for _, e := range history {
		out = append(out, DatedAmountDTO{Month: e.Month.String(), Amount: toFloat(e.Amount)})
	}
	return out
}

func toRecurringDTO(item projection.RecurringItem) RecurringItemDTO {
	return RecurringItemDTO{
		ID:            item.ID,
		Kind:          string(item.Kind),
		Name:          item.Name,
		DefaultAmount: toFloat(item.DefaultAmount),
		Behavior:      string(item.Behavior),
		Changes:       toDatedDTOs(item.Changes),
		Overrides:     toDatedDTOs(item.Overrides),
		EndMonth:      item.EndMonth.String(),
	}
}

func toOneTimeDTO(item projection.OneTimeItem) OneTimeItemDTO {
	return OneTimeItemDTO{
		ID:     item.ID,
		Kind:   string(item.Kind),
		Name:   item.Name,
		Month:  item.Month.String(),
		Amount: toFloat(item.Amount),
	}
}

func toAccountDTO(acct projection.Account) AccountDTO {
	return AccountDTO{ID: acct.ID, Name: acct.Name, Balances: toDatedDTOs(acct.Balances)}
}

func toCashFlowDTO(month projection.MonthKey, flow projection.CashFlow) CashFlowDTO {
	return CashFlowDTO{
		Month:   month.String(),
		Income:  toFloat(flow.Income),
		Expense: toFloat(flow.Expense),
		Net:     toFloat(flow.Net),
	}
}

func toAsOfDTO(target projection.MonthKey, asOf projection.AsOf, found bool) AsOfDTO {
	if !found {
		return AsOfDTO{Target: target.String()}
	}
	return AsOfDTO{
		Target:   target.String(),
		Found:    true,
		Month:    asOf.Month.String(),
		NetWorth: toFloat(asOf.NetWorth),
		Source:   string(asOf.Source),
	}
}

// optionalDecimal converts an optional float from a request.
func optionalDecimal(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	d := projection.FromFloat(*f)
	return &d
}
