/*
Package sqlite provides a SQLite-backed planner.Store.

PURPOSE:
  Persists plan documents as canonical JSON, one row per plan, with an
  optimistic version counter. The document format is owned by the document
  package; this store never looks inside it.

KEY TABLES:
  plans: id, document_json, version, created_at, updated_at

CONCURRENCY:
  Saves run in a transaction that re-reads the version before writing, so a
  stale Record is rejected with planner.ErrConcurrentModification. A
  sync.RWMutex serializes writers within the process.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so readers do not block the
  single writer.

MIGRATIONS:
  Versioned SQL files under migrations/ are embedded and applied on New()
  with golang-migrate.

USAGE:
  store, err := sqlite.New("./data/planner.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := planner.NewService(store, logger)

SEE ALSO:
  - planner/store.go: Interface definition
  - planner/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Moserpilot/Finance-Planner-2/document"
	"github.com/Moserpilot/Finance-Planner-2/planner"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store implements planner.Store using SQLite.
type Store struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time
}

// New opens the database at dbPath and applies pending migrations.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" databases alive and shared.
	db.SetMaxOpenConns(1)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// runMigrations applies the embedded migrations on db. The migrate instance
// is not closed: closing it would close db.
func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// =============================================================================
// planner.Store
// =============================================================================

// Load reads and decodes a plan.
func (s *Store) Load(ctx context.Context, id string) (planner.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, document_json, version, created_at, updated_at
		FROM plans WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return planner.Record{}, planner.PlanNotFound(id)
	}
	if err != nil {
		return planner.Record{}, fmt.Errorf("failed to load plan %s: %w", id, err)
	}
	return rec, nil
}

// Save inserts (Version 0) or updates (matching Version) a plan.
func (s *Store) Save(ctx context.Context, rec planner.Record) (planner.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := document.Encode(rec.Plan)
	if err != nil {
		return planner.Record{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return planner.Record{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current int64
	var createdAt string
	err = tx.QueryRowContext(ctx, `SELECT version, created_at FROM plans WHERE id = ?`, rec.ID).
		Scan(&current, &createdAt)
	exists := err == nil
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return planner.Record{}, fmt.Errorf("failed to read plan version: %w", err)
	}

	switch {
	case !exists && rec.Version != 0:
		return planner.Record{}, planner.PlanNotFound(rec.ID)
	case exists && rec.Version == 0:
		return planner.Record{}, planner.ErrPlanExists
	case exists && current != rec.Version:
		return planner.Record{}, planner.ErrConcurrentModification
	}

	now := s.now().UTC()
	if exists {
		_, err = tx.ExecContext(ctx, `
			UPDATE plans SET document_json = ?, version = ?, updated_at = ?
			WHERE id = ? AND version = ?`,
			string(data), rec.Version+1, now.Format(time.RFC3339Nano), rec.ID, rec.Version)
		if err != nil {
			return planner.Record{}, fmt.Errorf("failed to update plan: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	} else {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO plans (id, document_json, version, created_at, updated_at)
			VALUES (?, ?, 1, ?, ?)`,
			rec.ID, string(data), now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano))
		if err != nil {
			return planner.Record{}, fmt.Errorf("failed to insert plan: %w", err)
		}
		rec.CreatedAt = now
	}

	if err := tx.Commit(); err != nil {
		return planner.Record{}, fmt.Errorf("failed to commit plan: %w", err)
	}

	rec.Version++
	rec.UpdatedAt = now
	rec.Plan = rec.Plan.Clone()
	return rec, nil
}

// List returns every plan ordered by ID.
func (s *Store) List(ctx context.Context) ([]planner.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_json, version, created_at, updated_at
		FROM plans ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	var out []planner.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Delete removes a plan.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM plans WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete plan: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return planner.PlanNotFound(id)
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (planner.Record, error) {
	var rec planner.Record
	var data, createdAt, updatedAt string
	if err := row.Scan(&rec.ID, &data, &rec.Version, &createdAt, &updatedAt); err != nil {
		return planner.Record{}, err
	}

	plan, err := document.Decode([]byte(data))
	if err != nil {
		return planner.Record{}, fmt.Errorf("plan %s: %w", rec.ID, err)
	}
	rec.Plan = plan
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return rec, nil
}
