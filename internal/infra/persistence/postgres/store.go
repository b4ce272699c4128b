// Package postgres persists run snapshots to PostgreSQL through the pgx driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	"github.com/jmoiron/sqlx"

	"aquacore/internal/infra/persistence/codec"
	"aquacore/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.SnapshotStore = (*Store)(nil)

const (
	defaultDriver = "pgx"
	// Default DSN keeps parity with OpenSnapshotStore defaults while allowing overrides via env.
	defaultDSN = "postgres://localhost/aquacore?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// OverrideSQLOpen swaps the function used to open database handles and returns a restore func.
func OverrideSQLOpen(fn func(driverName, dsn string) (*sql.DB, error)) func() {
	openMu.Lock()
	prev := sqlOpen
	sqlOpen = fn
	openMu.Unlock()
	return func() {
		openMu.Lock()
		sqlOpen = prev
		openMu.Unlock()
	}
}

var ddl = []string{
	`CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		step INTEGER NOT NULL,
		operation TEXT NOT NULL,
		amount DOUBLE PRECISION NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		payload JSONB NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_snapshots_run_step ON snapshots (run_id, step)`,
}

// Store appends snapshots to the snapshots table.
type Store struct {
	db *sqlx.DB
}

// NewStore opens a Postgres-backed store using the provided DSN (falls back to defaultDSN)
// and ensures the snapshot table exists.
func NewStore(dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	raw, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db := sqlx.NewDb(raw, defaultDriver)
	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	for _, stmt := range ddl {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply ddl: %w", err)
		}
	}
	return &Store{db: db}, nil
}

func insertQuery() string {
	placeholders := make([]string, len(codec.Columns))
	for i := range codec.Columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO snapshots (%s) VALUES (%s)", strings.Join(codec.Columns, ", "), strings.Join(placeholders, ", "))
}

// Append inserts snap inside a transaction.
func (s *Store) Append(ctx context.Context, snap domain.Snapshot) (retErr error) {
	row, err := codec.Encode(snap)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, insertQuery(), row.Args()...); err != nil {
		return fmt.Errorf("insert snapshot %s: %w", snap.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// List returns the run's snapshots ordered by step.
func (s *Store) List(ctx context.Context, runID string) ([]domain.Snapshot, error) {
	var rows []codec.Row
	query := fmt.Sprintf("SELECT %s FROM snapshots WHERE run_id = $1 ORDER BY step, recorded_at", strings.Join(codec.Columns, ", "))
	if err := s.db.SelectContext(ctx, &rows, query, runID); err != nil {
		return nil, fmt.Errorf("select snapshots: %w", err)
	}
	filtered := rows[:0]
	for _, r := range rows {
		if r.RunID == runID {
			filtered = append(filtered, r)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Step < filtered[j].Step })
	return codec.DecodeAll(filtered)
}

// Runs returns the distinct run identifiers in sorted order.
func (s *Store) Runs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := s.db.SelectContext(ctx, &ids, "SELECT run_id FROM snapshots GROUP BY run_id ORDER BY run_id"); err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	return dedupeSorted(ids), nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func dedupeSorted(ids []string) []string {
	sort.Strings(ids)
	out := ids[:0]
	for i, id := range ids {
		if i > 0 && id == ids[i-1] {
			continue
		}
		out = append(out, id)
	}
	return out
}
