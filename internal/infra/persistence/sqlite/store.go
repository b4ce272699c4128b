// Package sqlite persists run snapshots to an embedded SQLite file.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"aquacore/internal/infra/persistence/codec"
	"aquacore/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.SnapshotStore = (*Store)(nil)

const defaultPath = "aquacore.db"

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	step INTEGER NOT NULL,
	operation TEXT NOT NULL,
	amount REAL NOT NULL,
	error TEXT NOT NULL DEFAULT '',
	payload TEXT NOT NULL,
	recorded_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_run_step ON snapshots(run_id, step);
`

// Store appends snapshots to a single table; the nested state is stored as JSON.
type Store struct {
	db   *sqlx.DB
	path string
}

// NewStore opens (or creates) the database at path and applies the schema.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create snapshots table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// DB exposes the underlying handle for diagnostics and tests.
func (s *Store) DB() *sqlx.DB { return s.db }

// Append inserts snap. Snapshot IDs are unique; re-appending an ID fails.
func (s *Store) Append(ctx context.Context, snap domain.Snapshot) error {
	row, err := codec.Encode(snap)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`INSERT INTO snapshots (%s) VALUES (:%s)`,
		strings.Join(codec.Columns, ", "), strings.Join(codec.Columns, ", :"))
	if _, err := s.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("insert snapshot %s: %w", snap.ID, err)
	}
	return nil
}

// List returns the run's snapshots ordered by step.
func (s *Store) List(ctx context.Context, runID string) ([]domain.Snapshot, error) {
	var rows []codec.Row
	query := fmt.Sprintf(`SELECT %s FROM snapshots WHERE run_id = ? ORDER BY step, recorded_at`, strings.Join(codec.Columns, ", "))
	if err := s.db.SelectContext(ctx, &rows, query, runID); err != nil {
		return nil, fmt.Errorf("select snapshots: %w", err)
	}
	return codec.DecodeAll(rows)
}

// Runs returns the distinct run identifiers in sorted order.
func (s *Store) Runs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := s.db.SelectContext(ctx, &ids, `SELECT DISTINCT run_id FROM snapshots ORDER BY run_id`); err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	return ids, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
