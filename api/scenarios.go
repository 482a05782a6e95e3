/*
scenarios.go - Demo plans for testing and demonstrations

PURPOSE:

	Provides pre-built plans that show how each net-worth mode behaves.
	Loading a scenario replaces the target plan's document.

AVAILABLE SCENARIOS:

	projection-salary: Compounding from one balance plus a salary
	snapshot-flat:     Same inputs, snapshot mode (flat line)
	hybrid-anchor:     Compounding that snaps to a June re-measurement
	household:         Realistic plan with raises, overrides, one-time items
	                   and several accounts

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "hybrid-anchor", "plan_id": "demo"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Add a case to buildScenario

SEE ALSO:
  - handlers.go: Handler type
  - document/codec.go: Decode, used for the household document
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Moserpilot/Finance-Planner-2/document"
	"github.com/Moserpilot/Finance-Planner-2/planner"
	"github.com/Moserpilot/Finance-Planner-2/projection"
	"github.com/shopspring/decimal"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "projection-salary",
		Name:        "Projection",
		Description: "10,000 at 2026-01 compounding at 12% a year plus 1,000 monthly income",
		Mode:        string(projection.ModeProjection),
	},
	{
		ID:          "snapshot-flat",
		Name:        "Snapshot",
		Description: "Same inputs in snapshot mode: the series stays at 10,000",
		Mode:        string(projection.ModeSnapshot),
	},
	{
		ID:          "hybrid-anchor",
		Name:        "Hybrid Anchor",
		Description: "Compounds from 10,000 and snaps to a 9,000 balance entered for 2026-06",
		Mode:        string(projection.ModeHybrid),
	},
	{
		ID:          "household",
		Name:        "Household",
		Description: "Two salaries with a raise, rent, a one-off bonus and three accounts",
		Mode:        string(projection.ModeHybrid),
	},
}

// householdDocument is stored in the same shape clients send.
const householdDocument = `{
  "currency": "EUR",
  "startMonth": "2026-01",
  "goalNetWorth": 250000,
  "expectedReturnPct": 6,
  "netWorthMode": "hybrid",
  "recurring": [
    {"id": "salary-a", "kind": "income", "name": "Salary A", "defaultAmount": 3800,
     "changes": [{"month": "2026-09", "amount": 4100}]},
    {"id": "salary-b", "kind": "income", "name": "Salary B", "defaultAmount": 2900},
    {"id": "rent", "kind": "expense", "name": "Rent", "defaultAmount": 1450,
     "changes": [{"month": "2027-01", "amount": 1500}]},
    {"id": "groceries", "kind": "expense", "name": "Groceries", "defaultAmount": 650,
     "overrides": [{"month": "2026-12", "amount": 900}]},
    {"id": "car-loan", "kind": "expense", "name": "Car loan", "defaultAmount": 320,
     "endMonth": "2028-06"}
  ],
  "oneTime": [
    {"id": "bonus", "kind": "income", "name": "Year-end bonus", "month": "2026-12", "amount": 5000},
    {"id": "holiday", "kind": "expense", "name": "Summer holiday", "month": "2026-08", "amount": 2400}
  ],
  "netWorthAccounts": [
    {"id": "checking", "name": "Checking", "balances": [{"month": "2026-01", "amount": 6200}]},
    {"id": "savings", "name": "Savings", "balances": [
      {"month": "2026-01", "amount": 18000}, {"month": "2026-07", "amount": 21500}]},
    {"id": "brokerage", "name": "Brokerage", "balances": [
      {"month": "2026-01", "amount": 41000}, {"month": "2026-07", "amount": 43800}]}
  ]
}`

// salaryPlan is the shared base of the three mode scenarios.
func salaryPlan(mode projection.Mode) projection.Plan {
	plan := document.New()
	plan.ExpectedReturnPct = decimal.NewFromInt(12)
	plan.NetWorthMode = mode
	plan.Recurring = []projection.RecurringItem{{
		ID:            "salary",
		Kind:          projection.KindIncome,
		Name:          "Salary",
		DefaultAmount: decimal.NewFromInt(1000),
		Behavior:      projection.CarryForward,
	}}
	plan.Accounts = []projection.Account{{
		ID:       "checking",
		Name:     "Checking",
		Balances: []projection.DatedAmount{{Month: "2026-01", Amount: decimal.NewFromInt(10000)}},
	}}
	return plan
}

func knownScenario(id string) bool {
	for _, s := range scenarios {
		if s.ID == id {
			return true
		}
	}
	return false
}

func buildScenario(id string) (projection.Plan, error) {
	switch id {
	case "projection-salary":
		return salaryPlan(projection.ModeProjection), nil
	case "snapshot-flat":
		return salaryPlan(projection.ModeSnapshot), nil
	case "hybrid-anchor":
		plan := salaryPlan(projection.ModeHybrid)
		plan.Accounts[0].Balances = append(plan.Accounts[0].Balances,
			projection.DatedAmount{Month: "2026-06", Amount: decimal.NewFromInt(9000)})
		return plan, nil
	case "household":
		return document.Decode([]byte(householdDocument))
	default:
		return projection.Plan{}, fmt.Errorf("unknown scenario %q", id)
	}
}

// =============================================================================
// HANDLERS
// =============================================================================

// ListScenarios returns all available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the most recently loaded scenario, or null.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario writes a demo plan into the requested plan ID.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.PlanID == "" {
		req.PlanID = h.DefaultPlanID
	}

	if !knownScenario(req.ScenarioID) {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	rec, err := h.SeedScenario(r.Context(), req.PlanID, req.ScenarioID)
	if err != nil {
		h.writeServiceError(w, "Failed to load scenario", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "loaded",
		"scenario": req.ScenarioID,
		"plan":     toPlanDTO(rec),
	})
}

// SeedScenario creates or replaces planID with the scenario's plan.
func (h *Handler) SeedScenario(ctx context.Context, planID, scenarioID string) (planner.Record, error) {
	plan, err := buildScenario(scenarioID)
	if err != nil {
		return planner.Record{}, err
	}

	rec, err := h.Service.Replace(ctx, planID, plan)
	if planner.IsNotFound(err) {
		rec, err = h.Service.Create(ctx, planID, plan)
	}
	if err != nil {
		return planner.Record{}, err
	}

	h.mu.Lock()
	h.currentScenario = scenarioID
	h.mu.Unlock()

	h.Logger.Info().Str("plan_id", planID).Str("scenario", scenarioID).Msg("scenario loaded")
	return rec, nil
}
