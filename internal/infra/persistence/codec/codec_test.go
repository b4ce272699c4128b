package codec

import (
	"strings"
	"testing"
	"time"

	"aquacore/pkg/domain"
)

func TestEncodeDecodePreservesNestedState(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))
	snap := domain.Snapshot{
		ID:             "snap-1",
		RunID:          "run-1",
		Step:           3,
		Operation:      "evaporate",
		Amount:         1.25,
		Status:         domain.Status{"current_volume": 4000.0, "is_full": false, "tank_type": "pond"},
		Concentrations: map[string]float64{"nitrate": 7.5},
		Violations:     []domain.Violation{{Rule: "quality_range", Severity: domain.SeverityWarn, Message: "m"}},
		Alerts:         []string{"Alert! temperature: 120 out of range"},
		RecordedAt:     at,
	}
	row, err := Encode(snap)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(row.Payload, "nitrate") || row.RecordedAt.Location() != time.UTC {
		t.Fatalf("unexpected row %+v", row)
	}
	if len(row.Args()) != len(Columns) {
		t.Fatalf("args and columns disagree")
	}
	got, err := row.Decode()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Concentrations["nitrate"] != 7.5 || got.Violations[0].Rule != "quality_range" || len(got.Alerts) != 1 {
		t.Fatalf("unexpected snapshot %+v", got)
	}
	if v, ok := got.Status.Float("current_volume"); !ok || v != 4000 {
		t.Fatalf("status volume lost: %v", got.Status)
	}
	if !got.RecordedAt.Equal(at) {
		t.Fatalf("recorded_at %v, want %v", got.RecordedAt, at)
	}
}

func TestDecodeRejectsCorruptPayload(t *testing.T) {
	if _, err := DecodeAll([]Row{{ID: "bad", Payload: "{"}}); err == nil {
		t.Fatalf("expected decode error")
	}
}
