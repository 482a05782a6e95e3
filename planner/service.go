/*
Package planner manages stored plan documents.

PURPOSE:
  The projection engine is pure: it reads a plan and returns numbers. This
  package owns everything with side effects: loading and saving plans,
  validating edits, and applying field-level changes to a document.

  Every mutation follows the same cycle:

    load -> clone -> mutate -> normalize -> save (optimistic version check)

  A save that loses a race is retried against the fresh document, so two
  clients editing different fields of the same plan both land.

KEY CONCEPTS:
  - Record: A stored plan with its version
  - Store: Persistence (memory, SQLite)
  - Service: Validated mutations and reads

SEE ALSO:
  - errors.go: Error types
  - dated.go: Upserts into month-keyed histories
  - store/memory.go, ../store/sqlite: Store implementations
  - ../document: Normalization applied before every save
*/
package planner

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Moserpilot/Finance-Planner-2/document"
	"github.com/Moserpilot/Finance-Planner-2/projection"
	"github.com/Rhymond/go-money"
	"github.com/google/uuid"
	"github.com/phuslu/log"
	"github.com/shopspring/decimal"
)

// maxAttempts bounds retries after ErrConcurrentModification.
const maxAttempts = 3

var idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,63}$`)

// Service applies validated changes to stored plans.
type Service struct {
	store  Store
	logger *log.Logger
}

// NewService creates a plan service.
func NewService(store Store, logger *log.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// =============================================================================
// PLANS
// =============================================================================

// Create stores plan under id. An empty id is generated.
func (s *Service) Create(ctx context.Context, id string, plan projection.Plan) (Record, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if err := validateID("id", id); err != nil {
		return Record{}, err
	}

	rec, err := s.store.Save(ctx, Record{ID: id, Plan: document.Normalize(plan)})
	if err != nil {
		return Record{}, s.storeError("create", id, err)
	}
	s.logger.Info().Str("plan_id", id).Msg("plan created")
	return rec, nil
}

// Get loads a plan.
func (s *Service) Get(ctx context.Context, id string) (Record, error) {
	return s.store.Load(ctx, id)
}

// List returns every stored plan ordered by ID.
func (s *Service) List(ctx context.Context) ([]Record, error) {
	return s.store.List(ctx)
}

// Replace overwrites the whole document of an existing plan.
func (s *Service) Replace(ctx context.Context, id string, plan projection.Plan) (Record, error) {
	return s.mutate(ctx, id, "replace", func(p *projection.Plan) error {
		*p = plan.Clone()
		return nil
	})
}

// Delete removes a plan.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return s.storeError("delete", id, err)
	}
	s.logger.Info().Str("plan_id", id).Msg("plan deleted")
	return nil
}

// Settings is a partial update of plan-level fields. Nil fields are left
// unchanged.
type Settings struct {
	Currency          *string
	StartMonth        *string
	StartingNetWorth  *decimal.Decimal
	GoalNetWorth      *decimal.Decimal
	ExpectedReturnPct *decimal.Decimal
	NetWorthMode      *string
}

// UpdateSettings applies a partial settings update.
func (s *Service) UpdateSettings(ctx context.Context, id string, in Settings) (Record, error) {
	if in.Currency != nil && money.GetCurrency(strings.ToUpper(*in.Currency)) == nil {
		return Record{}, &ValidationError{Field: "currency", Value: *in.Currency, Err: ErrInvalidCurrency}
	}
	var start projection.MonthKey
	if in.StartMonth != nil {
		m, err := parseMonth("startMonth", *in.StartMonth)
		if err != nil {
			return Record{}, err
		}
		start = m
	}
	if in.NetWorthMode != nil && projection.ParseMode(*in.NetWorthMode) != projection.Mode(*in.NetWorthMode) {
		return Record{}, &ValidationError{Field: "netWorthMode", Value: *in.NetWorthMode, Err: ErrInvalidMode,
			Reason: "expected snapshot, projection or hybrid"}
	}

	return s.mutate(ctx, id, "update settings", func(p *projection.Plan) error {
		if in.Currency != nil {
			p.Currency = strings.ToUpper(*in.Currency)
		}
		if in.StartMonth != nil {
			p.StartMonth = start
		}
		if in.StartingNetWorth != nil {
			p.StartingNetWorth = *in.StartingNetWorth
		}
		if in.GoalNetWorth != nil {
			p.GoalNetWorth = *in.GoalNetWorth
		}
		if in.ExpectedReturnPct != nil {
			p.ExpectedReturnPct = *in.ExpectedReturnPct
		}
		if in.NetWorthMode != nil {
			p.NetWorthMode = projection.Mode(*in.NetWorthMode)
		}
		return nil
	})
}

// =============================================================================
// RECURRING ITEMS
// =============================================================================

// RecurringInput holds the scalar fields of a recurring item. Histories are
// edited through the change and override operations.
type RecurringInput struct {
	ID            string // Optional on add
	Kind          string
	Name          string
	DefaultAmount decimal.Decimal
	Behavior      string // Empty = carryForward
	EndMonth      string // Empty = never ends
}

func (in RecurringInput) validate() (projection.RecurringItem, error) {
	item := projection.RecurringItem{ID: in.ID, DefaultAmount: in.DefaultAmount}
	var err error
	if item.Kind, err = parseKind(in.Kind); err != nil {
		return item, err
	}
	if item.Name, err = parseName(in.Name); err != nil {
		return item, err
	}
	switch projection.Behavior(in.Behavior) {
	case "", projection.CarryForward:
		item.Behavior = projection.CarryForward
	case projection.MonthOnly:
		item.Behavior = projection.MonthOnly
	default:
		return item, &ValidationError{Field: "behavior", Value: in.Behavior, Err: ErrInvalidBehavior,
			Reason: "expected carryForward or monthOnly"}
	}
	if in.EndMonth != "" {
		if item.EndMonth, err = parseMonth("endMonth", in.EndMonth); err != nil {
			return item, err
		}
	}
	return item, nil
}

// AddRecurring appends a recurring item.
func (s *Service) AddRecurring(ctx context.Context, planID string, in RecurringInput) (projection.RecurringItem, error) {
	item, err := in.validate()
	if err != nil {
		return item, err
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	} else if err := validateID("id", item.ID); err != nil {
		return item, err
	}

	rec, err := s.mutate(ctx, planID, "add recurring", func(p *projection.Plan) error {
		if findRecurring(p, item.ID) >= 0 {
			return &ValidationError{Field: "id", Value: item.ID, Err: ErrInvalidID, Reason: "already in use"}
		}
		p.Recurring = append(p.Recurring, item)
		return nil
	})
	if err != nil {
		return projection.RecurringItem{}, err
	}
	return rec.Plan.Recurring[findRecurring(&rec.Plan, item.ID)], nil
}

// UpdateRecurring replaces the scalar fields of an item, keeping its
// changes and overrides.
func (s *Service) UpdateRecurring(ctx context.Context, planID, itemID string, in RecurringInput) (projection.RecurringItem, error) {
	next, err := in.validate()
	if err != nil {
		return next, err
	}

	rec, err := s.mutate(ctx, planID, "update recurring", func(p *projection.Plan) error {
		i, err := recurringIndex(p, itemID)
		if err != nil {
			return err
		}
		item := &p.Recurring[i]
		item.Kind = next.Kind
		item.Name = next.Name
		item.DefaultAmount = next.DefaultAmount
		item.Behavior = next.Behavior
		item.EndMonth = next.EndMonth
		return nil
	})
	if err != nil {
		return projection.RecurringItem{}, err
	}
	return rec.Plan.Recurring[findRecurring(&rec.Plan, itemID)], nil
}

// DeleteRecurring removes an item.
func (s *Service) DeleteRecurring(ctx context.Context, planID, itemID string) error {
	_, err := s.mutate(ctx, planID, "delete recurring", func(p *projection.Plan) error {
		i, err := recurringIndex(p, itemID)
		if err != nil {
			return err
		}
		p.Recurring = append(p.Recurring[:i], p.Recurring[i+1:]...)
		return nil
	})
	return err
}

// SetRecurringChange records a carry-forward change effective from month.
func (s *Service) SetRecurringChange(ctx context.Context, planID, itemID, month string, amount decimal.Decimal) (projection.RecurringItem, error) {
	return s.editHistory(ctx, planID, itemID, month, "set change", func(item *projection.RecurringItem, m projection.MonthKey) error {
		item.Changes = UpsertDated(item.Changes, m, amount)
		return nil
	})
}

// DeleteRecurringChange removes the change recorded for month.
func (s *Service) DeleteRecurringChange(ctx context.Context, planID, itemID, month string) (projection.RecurringItem, error) {
	return s.editHistory(ctx, planID, itemID, month, "delete change", func(item *projection.RecurringItem, m projection.MonthKey) error {
		var found bool
		if item.Changes, found = RemoveDated(item.Changes, m); !found {
			return &NotFoundError{Resource: "change", ID: m.String(), Err: ErrEntryNotFound}
		}
		return nil
	})
}

// SetRecurringOverride records a month-only override for month.
func (s *Service) SetRecurringOverride(ctx context.Context, planID, itemID, month string, amount decimal.Decimal) (projection.RecurringItem, error) {
	return s.editHistory(ctx, planID, itemID, month, "set override", func(item *projection.RecurringItem, m projection.MonthKey) error {
		item.Overrides = UpsertDated(item.Overrides, m, amount)
		return nil
	})
}

// DeleteRecurringOverride removes the override recorded for month.
func (s *Service) DeleteRecurringOverride(ctx context.Context, planID, itemID, month string) (projection.RecurringItem, error) {
	return s.editHistory(ctx, planID, itemID, month, "delete override", func(item *projection.RecurringItem, m projection.MonthKey) error {
		var found bool
		if item.Overrides, found = RemoveDated(item.Overrides, m); !found {
			return &NotFoundError{Resource: "override", ID: m.String(), Err: ErrEntryNotFound}
		}
		return nil
	})
}

func (s *Service) editHistory(ctx context.Context, planID, itemID, month, op string, edit func(*projection.RecurringItem, projection.MonthKey) error) (projection.RecurringItem, error) {
	m, err := parseMonth("month", month)
	if err != nil {
		return projection.RecurringItem{}, err
	}
	rec, err := s.mutate(ctx, planID, op, func(p *projection.Plan) error {
		i, err := recurringIndex(p, itemID)
		if err != nil {
			return err
		}
		return edit(&p.Recurring[i], m)
	})
	if err != nil {
		return projection.RecurringItem{}, err
	}
	return rec.Plan.Recurring[findRecurring(&rec.Plan, itemID)], nil
}

// =============================================================================
// ONE-TIME ITEMS
// =============================================================================

// OneTimeInput describes a single-month event.
type OneTimeInput struct {
	ID     string // Optional
	Kind   string
	Name   string
	Month  string
	Amount decimal.Decimal
}

// AddOneTime appends a one-time item.
func (s *Service) AddOneTime(ctx context.Context, planID string, in OneTimeInput) (projection.OneTimeItem, error) {
	item := projection.OneTimeItem{ID: in.ID, Amount: in.Amount}
	var err error
	if item.Kind, err = parseKind(in.Kind); err != nil {
		return item, err
	}
	if item.Name, err = parseName(in.Name); err != nil {
		return item, err
	}
	if item.Month, err = parseMonth("month", in.Month); err != nil {
		return item, err
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	} else if err := validateID("id", item.ID); err != nil {
		return item, err
	}

	_, err = s.mutate(ctx, planID, "add one-time", func(p *projection.Plan) error {
		for _, existing := range p.OneTime {
			if existing.ID == item.ID {
				return &ValidationError{Field: "id", Value: item.ID, Err: ErrInvalidID, Reason: "already in use"}
			}
		}
		p.OneTime = append(p.OneTime, item)
		return nil
	})
	if err != nil {
		return projection.OneTimeItem{}, err
	}
	return item, nil
}

// DeleteOneTime removes a one-time item.
func (s *Service) DeleteOneTime(ctx context.Context, planID, itemID string) error {
	_, err := s.mutate(ctx, planID, "delete one-time", func(p *projection.Plan) error {
		for i, item := range p.OneTime {
			if item.ID == itemID {
				p.OneTime = append(p.OneTime[:i], p.OneTime[i+1:]...)
				return nil
			}
		}
		return &NotFoundError{Resource: "one-time item", ID: itemID, Err: ErrItemNotFound}
	})
	return err
}

// =============================================================================
// ACCOUNTS
// =============================================================================

// AddAccount appends an account with no balances.
func (s *Service) AddAccount(ctx context.Context, planID, id, name string) (projection.Account, error) {
	acct := projection.Account{ID: id, Balances: []projection.DatedAmount{}}
	var err error
	if acct.Name, err = parseName(name); err != nil {
		return acct, err
	}
	if acct.ID == "" {
		acct.ID = uuid.NewString()
	} else if err := validateID("id", acct.ID); err != nil {
		return acct, err
	}

	_, err = s.mutate(ctx, planID, "add account", func(p *projection.Plan) error {
		if findAccount(p, acct.ID) >= 0 {
			return &ValidationError{Field: "id", Value: acct.ID, Err: ErrInvalidID, Reason: "already in use"}
		}
		p.Accounts = append(p.Accounts, acct)
		return nil
	})
	if err != nil {
		return projection.Account{}, err
	}
	return acct, nil
}

// RenameAccount changes an account's display name.
func (s *Service) RenameAccount(ctx context.Context, planID, accountID, name string) (projection.Account, error) {
	name, err := parseName(name)
	if err != nil {
		return projection.Account{}, err
	}
	return s.editAccount(ctx, planID, accountID, "rename account", func(a *projection.Account) error {
		a.Name = name
		return nil
	})
}

// DeleteAccount removes an account and its balances.
func (s *Service) DeleteAccount(ctx context.Context, planID, accountID string) error {
	_, err := s.mutate(ctx, planID, "delete account", func(p *projection.Plan) error {
		i, err := accountIndex(p, accountID)
		if err != nil {
			return err
		}
		p.Accounts = append(p.Accounts[:i], p.Accounts[i+1:]...)
		return nil
	})
	return err
}

// SetBalance records an observed balance. An entered zero is a snapshot.
func (s *Service) SetBalance(ctx context.Context, planID, accountID, month string, amount decimal.Decimal) (projection.Account, error) {
	m, err := parseMonth("month", month)
	if err != nil {
		return projection.Account{}, err
	}
	return s.editAccount(ctx, planID, accountID, "set balance", func(a *projection.Account) error {
		a.Balances = UpsertDated(a.Balances, m, amount)
		return nil
	})
}

// DeleteBalance removes the balance recorded for month.
func (s *Service) DeleteBalance(ctx context.Context, planID, accountID, month string) (projection.Account, error) {
	m, err := parseMonth("month", month)
	if err != nil {
		return projection.Account{}, err
	}
	return s.editAccount(ctx, planID, accountID, "delete balance", func(a *projection.Account) error {
		var found bool
		if a.Balances, found = RemoveDated(a.Balances, m); !found {
			return &NotFoundError{Resource: "balance", ID: m.String(), Err: ErrEntryNotFound}
		}
		return nil
	})
}

func (s *Service) editAccount(ctx context.Context, planID, accountID, op string, edit func(*projection.Account) error) (projection.Account, error) {
	rec, err := s.mutate(ctx, planID, op, func(p *projection.Plan) error {
		i, err := accountIndex(p, accountID)
		if err != nil {
			return err
		}
		return edit(&p.Accounts[i])
	})
	if err != nil {
		return projection.Account{}, err
	}
	return rec.Plan.Accounts[findAccount(&rec.Plan, accountID)], nil
}

// =============================================================================
// MUTATION CYCLE
// =============================================================================

// mutate runs fn against a private copy of the stored plan and saves the
// normalized result. Lost races are retried with the fresh document.
func (s *Service) mutate(ctx context.Context, id, op string, fn func(*projection.Plan) error) (Record, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		rec, err := s.store.Load(ctx, id)
		if err != nil {
			return Record{}, err
		}

		plan := rec.Plan.Clone()
		if err := fn(&plan); err != nil {
			return Record{}, err
		}
		rec.Plan = document.Normalize(plan)

		saved, err := s.store.Save(ctx, rec)
		if err == nil {
			s.logger.Debug().
				Str("plan_id", id).
				Str("op", op).
				Int64("version", saved.Version).
				Msg("plan updated")
			return saved, nil
		}
		if !IsRetryable(err) {
			return Record{}, s.storeError(op, id, err)
		}
		lastErr = err
		s.logger.Warn().Str("plan_id", id).Str("op", op).Int("attempt", attempt).Msg("version conflict, retrying")
	}
	return Record{}, lastErr
}

func (s *Service) storeError(op, id string, err error) error {
	if IsNotFound(err) || IsConflict(err) {
		return err
	}
	s.logger.Error().Err(err).Str("plan_id", id).Str("op", op).Msg("store failure")
	return fmt.Errorf("failed to %s plan %s: %w", op, id, err)
}

// =============================================================================
// LOOKUPS AND PARSING
// =============================================================================

func findRecurring(p *projection.Plan, id string) int {
	for i := range p.Recurring {
		if p.Recurring[i].ID == id {
			return i
		}
	}
	return -1
}

func recurringIndex(p *projection.Plan, id string) (int, error) {
	if i := findRecurring(p, id); i >= 0 {
		return i, nil
	}
	return -1, &NotFoundError{Resource: "recurring item", ID: id, Err: ErrItemNotFound}
}

func findAccount(p *projection.Plan, id string) int {
	for i := range p.Accounts {
		if p.Accounts[i].ID == id {
			return i
		}
	}
	return -1
}

func accountIndex(p *projection.Plan, id string) (int, error) {
	if i := findAccount(p, id); i >= 0 {
		return i, nil
	}
	return -1, &NotFoundError{Resource: "account", ID: id, Err: ErrAccountNotFound}
}

// ParseMonth validates a month supplied by a caller.
func ParseMonth(s string) (projection.MonthKey, error) {
	return parseMonth("month", s)
}

func parseMonth(field, s string) (projection.MonthKey, error) {
	m, ok := projection.ParseMonth(strings.TrimSpace(s))
	if !ok {
		return "", &ValidationError{Field: field, Value: s, Err: ErrInvalidMonth, Reason: fmt.Sprintf("expected YYYY-MM no later than %d-12", projection.MaxYear)}
	}
	return m, nil
}

func parseKind(s string) (projection.Kind, error) {
	switch projection.Kind(s) {
	case projection.KindIncome, projection.KindExpense:
		return projection.Kind(s), nil
	default:
		return "", &ValidationError{Field: "kind", Value: s, Err: ErrInvalidKind, Reason: "expected income or expense"}
	}
}

func parseName(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", &ValidationError{Field: "name", Value: s, Err: ErrInvalidName, Reason: "must not be empty"}
	}
	return s, nil
}

func validateID(field, id string) error {
	if !idPattern.MatchString(id) {
		return &ValidationError{Field: field, Value: id, Err: ErrInvalidID,
			Reason: "letters, digits, '.', '_' or '-', at most 64 characters"}
	}
	return nil
}

// DecodeDocument parses a plan document supplied by a caller.
func DecodeDocument(data []byte) (projection.Plan, error) {
	plan, err := document.Decode(data)
	if err != nil {
		return projection.Plan{}, errors.Join(ErrInvalidDocument, err)
	}
	return plan, nil
}
