package domain

import (
	"context"
	"time"
)

// Snapshot is the persisted record of one service step.
type Snapshot struct {
	ID             string             `json:"id" db:"id"`
	RunID          string             `json:"run_id" db:"run_id"`
	Step           int                `json:"step" db:"step"`
	Operation      string             `json:"operation" db:"operation"`
	Amount         float64            `json:"amount" db:"amount"`
	Error          string             `json:"error,omitempty" db:"error"`
	Status         Status             `json:"status"`
	Concentrations map[string]float64 `json:"concentrations,omitempty"`
	Violations     []Violation        `json:"violations,omitempty"`
	Alerts         []string           `json:"alerts,omitempty"`
	RecordedAt     time.Time          `json:"recorded_at" db:"recorded_at"`
}

// Failed reports whether the step's operation returned an error.
func (s Snapshot) Failed() bool { return s.Error != "" }

// SnapshotStore is the durable history of a run. Implementations must be safe
// for concurrent use.
type SnapshotStore interface {
	Append(ctx context.Context, snap Snapshot) error
	// List returns the run's snapshots ordered by step; an unknown run yields an empty list.
	List(ctx context.Context, runID string) ([]Snapshot, error)
	Runs(ctx context.Context) ([]string, error)
	Close() error
}
