// Package memory provides an in-memory snapshot store used for tests and
// ephemeral runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"aquacore/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain interface.
var _ domain.SnapshotStore = (*Store)(nil)

// Store keeps snapshots per run in insertion order.
type Store struct {
	mu   sync.RWMutex
	runs map[string][]domain.Snapshot
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{runs: make(map[string][]domain.Snapshot)}
}

// Append records a copy of snap.
func (s *Store) Append(_ context.Context, snap domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[snap.RunID] = append(s.runs[snap.RunID], cloneSnapshot(snap))
	return nil
}

// List returns the run's snapshots ordered by step.
func (s *Store) List(_ context.Context, runID string) ([]domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.runs[runID]
	out := make([]domain.Snapshot, 0, len(src))
	for _, snap := range src {
		out = append(out, cloneSnapshot(snap))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Step < out[j].Step })
	return out, nil
}

// Runs returns the known run identifiers in sorted order.
func (s *Store) Runs(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.runs))
	for id := range s.runs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

func cloneSnapshot(in domain.Snapshot) domain.Snapshot {
	out := in
	out.Status = in.Status.Clone()
	if in.Concentrations != nil {
		out.Concentrations = make(map[string]float64, len(in.Concentrations))
		for k, v := range in.Concentrations {
			out.Concentrations[k] = v
		}
	}
	out.Violations = append([]domain.Violation(nil), in.Violations...)
	out.Alerts = append([]string(nil), in.Alerts...)
	return out
}
