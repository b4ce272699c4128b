// Package codec maps domain snapshots to the flat row shape shared by the SQL
// snapshot stores.
package codec

import (
	"encoding/json"
	"fmt"
	"time"

	"aquacore/pkg/domain"
)

// Row is the relational form of a snapshot. Payload carries the nested
// status, concentrations, violations and alerts as JSON.
type Row struct {
	ID         string    `db:"id"`
	RunID      string    `db:"run_id"`
	Step       int       `db:"step"`
	Operation  string    `db:"operation"`
	Amount     float64   `db:"amount"`
	Error      string    `db:"error"`
	Payload    string    `db:"payload"`
	RecordedAt time.Time `db:"recorded_at"`
}

type payload struct {
	Status         domain.Status      `json:"status"`
	Concentrations map[string]float64 `json:"concentrations,omitempty"`
	Violations     []domain.Violation `json:"violations,omitempty"`
	Alerts         []string           `json:"alerts,omitempty"`
}

// Columns lists the row columns in insert order.
var Columns = []string{"id", "run_id", "step", "operation", "amount", "error", "payload", "recorded_at"}

// Encode flattens snap into a Row.
func Encode(snap domain.Snapshot) (Row, error) {
	data, err := json.Marshal(payload{
		Status:         snap.Status,
		Concentrations: snap.Concentrations,
		Violations:     snap.Violations,
		Alerts:         snap.Alerts,
	})
	if err != nil {
		return Row{}, fmt.Errorf("encode snapshot %s: %w", snap.ID, err)
	}
	return Row{
		ID:         snap.ID,
		RunID:      snap.RunID,
		Step:       snap.Step,
		Operation:  snap.Operation,
		Amount:     snap.Amount,
		Error:      snap.Error,
		Payload:    string(data),
		RecordedAt: snap.RecordedAt.UTC(),
	}, nil
}

// Decode rebuilds the snapshot held in r.
func (r Row) Decode() (domain.Snapshot, error) {
	var p payload
	if err := json.Unmarshal([]byte(r.Payload), &p); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode snapshot %s: %w", r.ID, err)
	}
	return domain.Snapshot{
		ID:             r.ID,
		RunID:          r.RunID,
		Step:           r.Step,
		Operation:      r.Operation,
		Amount:         r.Amount,
		Error:          r.Error,
		Status:         p.Status,
		Concentrations: p.Concentrations,
		Violations:     p.Violations,
		Alerts:         p.Alerts,
		RecordedAt:     r.RecordedAt.UTC(),
	}, nil
}

// Args returns the row values in Columns order.
func (r Row) Args() []any {
	return []any{r.ID, r.RunID, r.Step, r.Operation, r.Amount, r.Error, r.Payload, r.RecordedAt}
}

// DecodeAll decodes rows in order.
func DecodeAll(rows []Row) ([]domain.Snapshot, error) {
	out := make([]domain.Snapshot, 0, len(rows))
	for _, r := range rows {
		snap, err := r.Decode()
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, nil
}
