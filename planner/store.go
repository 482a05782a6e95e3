package planner

import (
	"context"
	"time"

	"github.com/Moserpilot/Finance-Planner-2/projection"
)

// =============================================================================
// STORE INTERFACE
// =============================================================================

// Record is a stored plan document.
type Record struct {
	ID        string
	Version   int64 // Incremented on every save, starts at 1
	Plan      projection.Plan
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store persists plan documents.
//
// Save is optimistic: rec.Version must equal the stored version (0 when the
// plan is new). On success the stored record with its new version is
// returned. A mismatch returns ErrConcurrentModification; creating a plan
// whose ID exists returns ErrPlanExists.
type Store interface {
	Load(ctx context.Context, id string) (Record, error)
	Save(ctx context.Context, rec Record) (Record, error)
	List(ctx context.Context) ([]Record, error)
	Delete(ctx context.Context, id string) error
	Close() error
}
