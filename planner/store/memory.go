// Package store provides in-process planner.Store implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Moserpilot/Finance-Planner-2/planner"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu    sync.RWMutex
	plans map[string]planner.Record
	now   func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		plans: make(map[string]planner.Record),
		now:   time.Now,
	}
}

// Load returns a copy of the stored record.
func (m *Memory) Load(_ context.Context, id string) (planner.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.plans[id]
	if !ok {
		return planner.Record{}, planner.PlanNotFound(id)
	}
	rec.Plan = rec.Plan.Clone()
	return rec, nil
}

// Save stores rec if its version matches the stored one.
func (m *Memory) Save(_ context.Context, rec planner.Record) (planner.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	existing, ok := m.plans[rec.ID]
	switch {
	case !ok && rec.Version != 0:
		return planner.Record{}, planner.PlanNotFound(rec.ID)
	case ok && rec.Version == 0:
		return planner.Record{}, planner.ErrPlanExists
	case ok && existing.Version != rec.Version:
		return planner.Record{}, planner.ErrConcurrentModification
	}

	if ok {
		rec.CreatedAt = existing.CreatedAt
	} else {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	rec.Version++
	rec.Plan = rec.Plan.Clone()
	m.plans[rec.ID] = rec

	out := rec
	out.Plan = rec.Plan.Clone()
	return out, nil
}

// List returns copies of every record ordered by ID.
func (m *Memory) List(_ context.Context) ([]planner.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]planner.Record, 0, len(m.plans))
	for _, rec := range m.plans {
		rec.Plan = rec.Plan.Clone()
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.plans[id]; !ok {
		return planner.PlanNotFound(id)
	}
	delete(m.plans, id)
	return nil
}

func (m *Memory) Close() error { return nil }
