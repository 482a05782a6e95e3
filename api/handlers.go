/*
handlers.go - HTTP API handlers for the net-worth planner

PURPOSE:
  Exposes plan editing and the projection engine via REST API. Handles HTTP
  request/response and JSON serialization, and delegates to the planner
  service (writes) and the projection package (reads).

ENDPOINTS:
  Plans:
    GET    /api/plans                         List plans
    POST   /api/plans                         Create plan
    GET    /api/plans/{id}                    Get plan document
    PUT    /api/plans/{id}                    Replace plan document
    DELETE /api/plans/{id}                    Delete plan
    PATCH  /api/plans/{id}/settings           Partial settings update

  Cash flow:
    POST   /api/plans/{id}/recurring                         Add recurring item
    PUT    /api/plans/{id}/recurring/{itemID}                Update scalar fields
    DELETE /api/plans/{id}/recurring/{itemID}                Delete
    PUT    /api/plans/{id}/recurring/{itemID}/changes/{month}    Set change
    DELETE /api/plans/{id}/recurring/{itemID}/changes/{month}    Delete change
    PUT    /api/plans/{id}/recurring/{itemID}/overrides/{month}  Set override
    DELETE /api/plans/{id}/recurring/{itemID}/overrides/{month}  Delete override
    GET    /api/plans/{id}/recurring/{itemID}/amount?month=      Resolved amount
    POST   /api/plans/{id}/one-time                          Add one-time item
    DELETE /api/plans/{id}/one-time/{itemID}                 Delete

  Accounts:
    POST   /api/plans/{id}/accounts                              Add account
    PUT    /api/plans/{id}/accounts/{accountID}                  Rename
    DELETE /api/plans/{id}/accounts/{accountID}                  Delete
    PUT    /api/plans/{id}/accounts/{accountID}/balances/{month} Set balance
    DELETE /api/plans/{id}/accounts/{accountID}/balances/{month} Delete balance

  Engine:
    GET    /api/plans/{id}/series[?every=N]   601-month net-worth series
    GET    /api/plans/{id}/net-worth?month=   Aggregate of entered balances
    GET    /api/plans/{id}/as-of?month=       Latest snapshot at or before month
    GET    /api/plans/{id}/snapshots          Months with entered balances
    GET    /api/plans/{id}/cash-flow?month=   Income, expense, net
    GET    /api/plans/{id}/summary[?month=]   Dashboard figures

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Plan, item, account or entry not found
  - 409: Conflict (existing ID, lost update)
  - 500: Internal errors

SECURITY NOTE:
  No authentication. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo plans
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/Moserpilot/Finance-Planner-2/document"
	"github.com/Moserpilot/Finance-Planner-2/planner"
	"github.com/Moserpilot/Finance-Planner-2/projection"
	"github.com/go-chi/chi/v5"
	"github.com/phuslu/log"
	"github.com/shopspring/decimal"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *planner.Service
	Logger  *log.Logger

	// DefaultPlanID receives scenarios loaded without an explicit plan ID.
	DefaultPlanID string

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a handler over the given service.
func NewHandler(svc *planner.Service, logger *log.Logger, defaultPlanID string) *Handler {
	return &Handler{
		Service:       svc,
		Logger:        logger,
		DefaultPlanID: defaultPlanID,
	}
}

// =============================================================================
// PLAN ENDPOINTS
// =============================================================================

// ListPlans returns a summary of every plan.
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	records, err := h.Service.List(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to list plans", err)
		return
	}

	out := make([]PlanSummaryDTO, 0, len(records))
	for _, rec := range records {
		out = append(out, toPlanSummaryDTO(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

// CreatePlan creates a plan from an optional document.
func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req CreatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	plan := document.New()
	if len(req.Document) > 0 {
		var err error
		if plan, err = planner.DecodeDocument(req.Document); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid plan document", err)
			return
		}
	}

	rec, err := h.Service.Create(r.Context(), req.ID, plan)
	if err != nil {
		h.writeServiceError(w, "Failed to create plan", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPlanDTO(rec))
}

// GetPlan returns the full plan document.
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.loadPlan(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toPlanDTO(rec))
}

// ReplacePlan overwrites the plan document with the request body.
func (h *Handler) ReplacePlan(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeError(w, status, "Failed to read request body", err)
		return
	}
	plan, err := planner.DecodeDocument(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid plan document", err)
		return
	}

	rec, err := h.Service.Replace(r.Context(), chi.URLParam(r, "id"), plan)
	if err != nil {
		h.writeServiceError(w, "Failed to replace plan", err)
		return
	}
	writeJSON(w, http.StatusOK, toPlanDTO(rec))
}

// DeletePlan removes a plan.
func (h *Handler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, "Failed to delete plan", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateSettings applies a partial settings update.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rec, err := h.Service.UpdateSettings(r.Context(), chi.URLParam(r, "id"), planner.Settings{
		Currency:          req.Currency,
		StartMonth:        req.StartMonth,
		StartingNetWorth:  optionalDecimal(req.StartingNetWorth),
		GoalNetWorth:      optionalDecimal(req.GoalNetWorth),
		ExpectedReturnPct: optionalDecimal(req.ExpectedReturnPct),
		NetWorthMode:      req.NetWorthMode,
	})
	if err != nil {
		h.writeServiceError(w, "Failed to update settings", err)
		return
	}
	writeJSON(w, http.StatusOK, toPlanDTO(rec))
}

// =============================================================================
// RECURRING ENDPOINTS
// =============================================================================

func (req RecurringRequest) input() planner.RecurringInput {
	return planner.RecurringInput{
		ID:            req.ID,
		Kind:          req.Kind,
		Name:          req.Name,
		DefaultAmount: projection.FromFloat(req.DefaultAmount),
		Behavior:      req.Behavior,
		EndMonth:      req.EndMonth,
	}
}

// AddRecurring appends a recurring item.
func (h *Handler) AddRecurring(w http.ResponseWriter, r *http.Request) {
	var req RecurringRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	item, err := h.Service.AddRecurring(r.Context(), chi.URLParam(r, "id"), req.input())
	if err != nil {
		h.writeServiceError(w, "Failed to add recurring item", err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecurringDTO(item))
}

// UpdateRecurring replaces an item's scalar fields.
func (h *Handler) UpdateRecurring(w http.ResponseWriter, r *http.Request) {
	var req RecurringRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	item, err := h.Service.UpdateRecurring(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemID"), req.input())
	if err != nil {
		h.writeServiceError(w, "Failed to update recurring item", err)
		return
	}
	writeJSON(w, http.StatusOK, toRecurringDTO(item))
}

// DeleteRecurring removes an item.
func (h *Handler) DeleteRecurring(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteRecurring(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemID")); err != nil {
		h.writeServiceError(w, "Failed to delete recurring item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetRecurringChange records a carry-forward change.
func (h *Handler) SetRecurringChange(w http.ResponseWriter, r *http.Request) {
	amount, ok := readAmount(w, r)
	if !ok {
		return
	}
	item, err := h.Service.SetRecurringChange(r.Context(),
		chi.URLParam(r, "id"), chi.URLParam(r, "itemID"), chi.URLParam(r, "month"), amount)
	if err != nil {
		h.writeServiceError(w, "Failed to set change", err)
		return
	}
	writeJSON(w, http.StatusOK, toRecurringDTO(item))
}

// DeleteRecurringChange removes a change.
func (h *Handler) DeleteRecurringChange(w http.ResponseWriter, r *http.Request) {
	item, err := h.Service.DeleteRecurringChange(r.Context(),
		chi.URLParam(r, "id"), chi.URLParam(r, "itemID"), chi.URLParam(r, "month"))
	if err != nil {
		h.writeServiceError(w, "Failed to delete change", err)
		return
	}
	writeJSON(w, http.StatusOK, toRecurringDTO(item))
}

// SetRecurringOverride records a month-only override.
func (h *Handler) SetRecurringOverride(w http.ResponseWriter, r *http.Request) {
	amount, ok := readAmount(w, r)
	if !ok {
		return
	}
	item, err := h.Service.SetRecurringOverride(r.Context(),
		chi.URLParam(r, "id"), chi.URLParam(r, "itemID"), chi.URLParam(r, "month"), amount)
	if err != nil {
		h.writeServiceError(w, "Failed to set override", err)
		return
	}
	writeJSON(w, http.StatusOK, toRecurringDTO(item))
}

// DeleteRecurringOverride removes an override.
func (h *Handler) DeleteRecurringOverride(w http.ResponseWriter, r *http.Request) {
	item, err := h.Service.DeleteRecurringOverride(r.Context(),
		chi.URLParam(r, "id"), chi.URLParam(r, "itemID"), chi.URLParam(r, "month"))
	if err != nil {
		h.writeServiceError(w, "Failed to delete override", err)
		return
	}
	writeJSON(w, http.StatusOK, toRecurringDTO(item))
}

// GetRecurringAmount resolves what an item contributes in a month.
func (h *Handler) GetRecurringAmount(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.loadPlan(w, r)
	if !ok {
		return
	}
	month, ok := requireMonth(w, r)
	if !ok {
		return
	}

	itemID := chi.URLParam(r, "itemID")
	for _, item := range rec.Plan.Recurring {
		if item.ID == itemID {
			writeJSON(w, http.StatusOK, ItemAmountDTO{
				ItemID: itemID,
				Month:  month.String(),
				Amount: toFloat(projection.AmountForMonth(item, month)),
			})
			return
		}
	}
	writeError(w, http.StatusNotFound, "Recurring item not found", nil)
}

// =============================================================================
// ONE-TIME ENDPOINTS
// =============================================================================

// AddOneTime appends a one-time item.
func (h *Handler) AddOneTime(w http.ResponseWriter, r *http.Request) {
	var req OneTimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	item, err := h.Service.AddOneTime(r.Context(), chi.URLParam(r, "id"), planner.OneTimeInput{
		ID:     req.ID,
		Kind:   req.Kind,
		Name:   req.Name,
		Month:  req.Month,
		Amount: projection.FromFloat(req.Amount),
	})
	if err != nil {
		h.writeServiceError(w, "Failed to add one-time item", err)
		return
	}
	writeJSON(w, http.StatusCreated, toOneTimeDTO(item))
}

// DeleteOneTime removes a one-time item.
func (h *Handler) DeleteOneTime(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteOneTime(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemID")); err != nil {
		h.writeServiceError(w, "Failed to delete one-time item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// ACCOUNT ENDPOINTS
// =============================================================================

// AddAccount appends an account.
func (h *Handler) AddAccount(w http.ResponseWriter, r *http.Request) {
	var req AccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	acct, err := h.Service.AddAccount(r.Context(), chi.URLParam(r, "id"), req.ID, req.Name)
	if err != nil {
		h.writeServiceError(w, "Failed to add account", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountDTO(acct))
}

// RenameAccount changes an account's name.
func (h *Handler) RenameAccount(w http.ResponseWriter, r *http.Request) {
	var req AccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	acct, err := h.Service.RenameAccount(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "accountID"), req.Name)
	if err != nil {
		h.writeServiceError(w, "Failed to rename account", err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountDTO(acct))
}

// DeleteAccount removes an account.
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteAccount(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "accountID")); err != nil {
		h.writeServiceError(w, "Failed to delete account", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetBalance records an observed balance.
func (h *Handler) SetBalance(w http.ResponseWriter, r *http.Request) {
	amount, ok := readAmount(w, r)
	if !ok {
		return
	}
	acct, err := h.Service.SetBalance(r.Context(),
		chi.URLParam(r, "id"), chi.URLParam(r, "accountID"), chi.URLParam(r, "month"), amount)
	if err != nil {
		h.writeServiceError(w, "Failed to set balance", err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountDTO(acct))
}

// DeleteBalance removes an observed balance.
func (h *Handler) DeleteBalance(w http.ResponseWriter, r *http.Request) {
	acct, err := h.Service.DeleteBalance(r.Context(),
		chi.URLParam(r, "id"), chi.URLParam(r, "accountID"), chi.URLParam(r, "month"))
	if err != nil {
		h.writeServiceError(w, "Failed to delete balance", err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountDTO(acct))
}

// =============================================================================
// ENGINE ENDPOINTS
// =============================================================================

// GetSeries returns the net-worth series, optionally sampled every N months.
func (h *Handler) GetSeries(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.loadPlan(w, r)
	if !ok {
		return
	}

	every := 1
	if s := r.URL.Query().Get("every"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "Invalid 'every' parameter, expected a positive integer", err)
			return
		}
		every = n
	}

	series := projection.BuildNetWorthSeries(rec.Plan)
	points := make([]SeriesPointDTO, 0, len(series)/every+1)
	for _, p := range series {
		if p.MonthIndex%every != 0 {
			continue
		}
		points = append(points, SeriesPointDTO{
			MonthIndex: p.MonthIndex,
			Month:      p.Month.String(),
			NetWorth:   toFloat(p.NetWorth),
		})
	}

	writeJSON(w, http.StatusOK, SeriesResponse{
		PlanID:     rec.ID,
		Mode:       string(projection.ParseMode(string(rec.Plan.NetWorthMode))),
		StartMonth: rec.Plan.Start().String(),
		Points:     points,
	})
}

// GetNetWorth returns the aggregate of balances entered for a month.
func (h *Handler) GetNetWorth(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.loadPlan(w, r)
	if !ok {
		return
	}
	month, ok := requireMonth(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, NetWorthDTO{
		Month:       month.String(),
		NetWorth:    toFloat(projection.NetWorthForMonth(rec.Plan, month)),
		HasSnapshot: projection.HasSnapshot(rec.Plan, month),
	})
}

// GetAsOf answers "what was net worth as of month".
func (h *Handler) GetAsOf(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.loadPlan(w, r)
	if !ok {
		return
	}
	month, ok := requireMonth(w, r)
	if !ok {
		return
	}

	asOf, found := projection.NetWorthAsOf(rec.Plan, month)
	writeJSON(w, http.StatusOK, toAsOfDTO(month, asOf, found))
}

// GetSnapshots lists months with entered balances.
func (h *Handler) GetSnapshots(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.loadPlan(w, r)
	if !ok {
		return
	}

	months := projection.SnapshotMonths(rec.Plan)
	out := SnapshotsDTO{Months: make([]string, 0, len(months))}
	for _, m := range months {
		out.Months = append(out.Months, m.String())
	}
	if latest, ok := projection.LatestSnapshotMonth(rec.Plan); ok {
		out.Latest = latest.String()
	}
	writeJSON(w, http.StatusOK, out)
}

// GetCashFlow returns income, expense and net for a month.
func (h *Handler) GetCashFlow(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.loadPlan(w, r)
	if !ok {
		return
	}
	month, ok := requireMonth(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toCashFlowDTO(month, projection.CashFlowForMonth(rec.Plan, month)))
}

// GetSummary returns dashboard figures. Without ?month= the plan's start
// month is used.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.loadPlan(w, r)
	if !ok {
		return
	}

	month := rec.Plan.Start()
	if r.URL.Query().Get("month") != "" {
		if month, ok = requireMonth(w, r); !ok {
			return
		}
	}

	s := projection.Summarize(rec.Plan, month)
	out := SummaryDTO{
		PlanID:          rec.ID,
		AsOfMonth:       s.AsOfMonth.String(),
		Current:         toAsOfDTO(s.AsOfMonth, s.Current, s.HasCurrent),
		CashFlow:        toCashFlowDTO(s.AsOfMonth, s.CashFlow),
		Goal:            toFloat(s.Goal),
		GoalProgressPct: toFloat(s.GoalProgressPct),
		GoalMonthIndex:  s.GoalMonthIndex,
		Milestones:      make([]MilestoneDTO, 0, len(s.Milestones)),
		Formatted: FormattedDTO{
			Current: document.FormatAmount(s.Current.NetWorth, rec.Plan.Currency),
			Goal:    document.FormatAmount(s.Goal, rec.Plan.Currency),
			Net:     document.FormatAmount(s.CashFlow.Net, rec.Plan.Currency),
		},
	}
	if s.HasLatestSnapshot {
		out.LatestSnapshot = s.LatestSnapshot.String()
	}
	if s.GoalMonthIndex >= 0 {
		out.GoalMonth = rec.Plan.Start().Add(s.GoalMonthIndex).String()
	}
	for _, m := range s.Milestones {
		out.Milestones = append(out.Milestones, MilestoneDTO{
			Years:    m.Years,
			Month:    m.Month.String(),
			NetWorth: toFloat(m.NetWorth),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) loadPlan(w http.ResponseWriter, r *http.Request) (planner.Record, bool) {
	rec, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, "Failed to load plan", err)
		return planner.Record{}, false
	}
	return rec, true
}

func requireMonth(w http.ResponseWriter, r *http.Request) (projection.MonthKey, bool) {
	month, err := planner.ParseMonth(r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid 'month' parameter", err)
		return "", false
	}
	return month, true
}

func readAmount(w http.ResponseWriter, r *http.Request) (decimal.Decimal, bool) {
	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return decimal.Zero, false
	}
	if req.Amount == nil {
		writeError(w, http.StatusBadRequest, "Missing 'amount'", planner.ErrInvalidAmount)
		return decimal.Zero, false
	}
	return projection.FromFloat(*req.Amount), true
}

// writeServiceError maps planner errors onto HTTP status codes.
func (h *Handler) writeServiceError(w http.ResponseWriter, message string, err error) {
	switch {
	case planner.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case planner.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	case planner.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	default:
		h.Logger.Error().Err(err).Msg(message)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
