package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Moserpilot/Finance-Planner-2/document"
	"github.com/Moserpilot/Finance-Planner-2/logging"
	"github.com/Moserpilot/Finance-Planner-2/planner"
	"github.com/Moserpilot/Finance-Planner-2/projection"
	"github.com/Moserpilot/Finance-Planner-2/store/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func samplePlan() projection.Plan {
	plan := document.New()
	plan.Recurring = []projection.RecurringItem{{
		ID: "salary", Kind: projection.KindIncome, Name: "Salary",
		DefaultAmount: decimal.NewFromInt(5000), Behavior: projection.CarryForward,
		Changes:   []projection.DatedAmount{{Month: "2026-07", Amount: decimal.RequireFromString("5250.50")}},
		Overrides: []projection.DatedAmount{},
	}}
	plan.Accounts = []projection.Account{{
		ID: "checking", Name: "Checking",
		Balances: []projection.DatedAmount{{Month: "2026-01", Amount: decimal.NewFromInt(0)}},
	}}
	return plan
}

func TestStore_SaveAndLoad(t *testing.T) {
	// GIVEN: A fresh database
	// WHEN: Saving a plan and reading it back
	// THEN: The document survives the JSON round trip and versions start at 1

	ctx := context.Background()
	store := newStore(t)

	saved, err := store.Save(ctx, planner.Record{ID: "household", Plan: samplePlan()})
	require.NoError(t, err)
	assert.Equal(t, int64(1), saved.Version)

	loaded, err := store.Load(ctx, "household")
	require.NoError(t, err)
	assert.Equal(t, int64(1), loaded.Version)
	assert.False(t, loaded.CreatedAt.IsZero())

	require.Len(t, loaded.Plan.Recurring, 1)
	change := loaded.Plan.Recurring[0].Changes[0]
	assert.Equal(t, projection.MonthKey("2026-07"), change.Month)
	assert.True(t, change.Amount.Equal(decimal.RequireFromString("5250.5")))

	// An entered zero survives storage and still counts as a snapshot
	assert.True(t, projection.HasSnapshot(loaded.Plan, "2026-01"))
}

func TestStore_OptimisticVersioning(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	first, err := store.Save(ctx, planner.Record{ID: "p", Plan: samplePlan()})
	require.NoError(t, err)

	_, err = store.Save(ctx, planner.Record{ID: "p", Plan: samplePlan()})
	assert.ErrorIs(t, err, planner.ErrPlanExists)

	second, err := store.Save(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Version)
	assert.Equal(t, first.CreatedAt.Unix(), second.CreatedAt.Unix())

	// first is now stale
	_, err = store.Save(ctx, first)
	assert.ErrorIs(t, err, planner.ErrConcurrentModification)

	_, err = store.Save(ctx, planner.Record{ID: "ghost", Version: 3, Plan: samplePlan()})
	assert.ErrorIs(t, err, planner.ErrPlanNotFound)
}

func TestStore_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	for _, id := range []string{"zeta", "alpha"} {
		_, err := store.Save(ctx, planner.Record{ID: id, Plan: samplePlan()})
		require.NoError(t, err)
	}

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].ID)

	require.NoError(t, store.Delete(ctx, "alpha"))
	_, err = store.Load(ctx, "alpha")
	assert.True(t, planner.IsNotFound(err))
	assert.ErrorIs(t, store.Delete(ctx, "alpha"), planner.ErrPlanNotFound)
}

func TestStore_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "planner.db")

	store, err := sqlite.New(path)
	require.NoError(t, err)
	_, err = store.Save(ctx, planner.Record{ID: "p", Plan: samplePlan()})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Migrations are already applied; reopening must not fail
	store, err = sqlite.New(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	rec, err := store.Load(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, "Salary", rec.Plan.Recurring[0].Name)
}

func TestStore_BehindService(t *testing.T) {
	ctx := context.Background()
	svc := planner.NewService(newStore(t), logging.Discard())

	_, err := svc.Create(ctx, "household", samplePlan())
	require.NoError(t, err)

	_, err = svc.SetBalance(ctx, "household", "checking", "2026-02", decimal.NewFromInt(900))
	require.NoError(t, err)

	rec, err := svc.Get(ctx, "household")
	require.NoError(t, err)
	assert.Equal(t, int64(2), rec.Version)
	assert.True(t, projection.NetWorthForMonth(rec.Plan, "2026-02").Equal(decimal.NewFromInt(900)))
}
