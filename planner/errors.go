/*
errors.go - Error types for the plan service and its stores

PURPOSE:
  The projection engine never fails; everything that can go wrong happens
  around it: a plan or item that does not exist, a malformed month in a
  request, a write that lost a race. Those errors are defined here so the
  stores, the service and the HTTP layer agree on them.

ERROR CATEGORIES:
  1. Not found - plan, item, account or dated entry missing
  2. Validation - malformed input to a mutation
  3. Store - conflicts and persistence failures

SEE ALSO:
  - service.go: Returns these errors
  - api/handlers.go: Maps them onto HTTP status codes
*/
package planner

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	ErrPlanNotFound    = errors.New("plan not found")
	ErrItemNotFound    = errors.New("item not found")
	ErrAccountNotFound = errors.New("account not found")
	ErrEntryNotFound   = errors.New("dated entry not found")

	// ErrPlanExists is returned when creating a plan whose ID is taken.
	ErrPlanExists = errors.New("plan already exists")

	// ErrConcurrentModification is returned when a save carries a stale
	// version.
	ErrConcurrentModification = errors.New("concurrent modification detected")

	ErrInvalidID       = errors.New("invalid id")
	ErrInvalidMonth    = errors.New("invalid month")
	ErrInvalidKind     = errors.New("invalid kind")
	ErrInvalidBehavior = errors.New("invalid behavior")
	ErrInvalidMode     = errors.New("invalid net worth mode")
	ErrInvalidName     = errors.New("invalid name")
	ErrInvalidCurrency = errors.New("invalid currency")
	ErrInvalidAmount   = errors.New("invalid amount")

	// ErrInvalidDocument is returned when a plan document cannot be read at all.
	ErrInvalidDocument = errors.New("invalid plan document")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NotFoundError names the missing resource.
type NotFoundError struct {
	Resource string // "plan", "recurring item", "account", ...
	ID       string
	Err      error // Sentinel matched by errors.Is
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("%s %q: %v: %s", e.Field, e.Value, e.Err, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// PlanNotFound builds the error stores return for a missing plan.
func PlanNotFound(id string) error {
	return &NotFoundError{Resource: "plan", ID: id, Err: ErrPlanNotFound}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPlanNotFound) ||
		errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrEntryNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr) ||
		errors.Is(err, ErrInvalidDocument) ||
		errors.Is(err, ErrInvalidID)
}

// IsConflict returns true if the request clashed with existing state.
func IsConflict(err error) bool {
	return errors.Is(err, ErrPlanExists) ||
		errors.Is(err, ErrConcurrentModification)
}

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}
