package scenario

import (
	"fmt"
	"io"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"aquacore/internal/core"
	"aquacore/pkg/domain"
)

// Summary condenses a recorded run.
type Summary struct {
	RunID              string        `json:"run_id"`
	Name               string        `json:"name,omitempty"`
	Steps              int           `json:"steps"`
	Failed             int           `json:"failed"`
	Elapsed            time.Duration `json:"elapsed,omitempty"`
	FinalVolume        float64       `json:"final_volume"`
	VolumeMean         float64       `json:"volume_mean"`
	VolumeStdDev       float64       `json:"volume_stddev"`
	VolumeMin          float64       `json:"volume_min"`
	VolumeMax          float64       `json:"volume_max"`
	TotalEvaporated    float64       `json:"total_evaporated"`
	TotalPrecipitation float64       `json:"total_precipitation"`
	Alerts             int           `json:"alerts"` // monitor alerts plus warn and block violations
	Violations         int           `json:"violations"`
	FinalStatus        domain.Status `json:"final_status,omitempty"`
}

// Summarize computes volume statistics over the snapshots of one run. The
// snapshots are expected in step order, as SnapshotStore.List returns them.
func Summarize(runID string, snaps []domain.Snapshot) Summary {
	s := Summary{RunID: runID, Steps: len(snaps)}
	if len(snaps) == 0 {
		return s
	}
	volumes := make([]float64, 0, len(snaps))
	for _, snap := range snaps {
		if v, ok := snap.Status.Float(domain.StatusCurrentVolume); ok {
			volumes = append(volumes, v)
		}
		if snap.Failed() {
			s.Failed++
		} else if snap.Operation == core.OpPrecipitate {
			s.TotalPrecipitation += snap.Amount
		}
		s.Alerts += len(snap.Alerts)
		s.Violations += len(snap.Violations)
		for _, v := range snap.Violations {
			// quality_range repeats the monitor alerts already counted above.
			if v.Severity != domain.SeverityLog && v.Rule != core.RuleQualityRange {
				s.Alerts++
			}
		}
	}
	last := snaps[len(snaps)-1]
	s.FinalStatus = last.Status
	s.TotalEvaporated, _ = last.Status.Float(domain.StatusCumulativeEvaporated)
	if len(volumes) > 0 {
		s.FinalVolume = volumes[len(volumes)-1]
		s.VolumeMin = floats.Min(volumes)
		s.VolumeMax = floats.Max(volumes)
		if len(volumes) > 1 {
			s.VolumeMean, s.VolumeStdDev = stat.MeanStdDev(volumes, nil)
		} else {
			s.VolumeMean = volumes[0]
		}
	}
	return s
}

type summaryRow struct {
	label string
	value string
}

// Write prints the summary as aligned text.
func (s Summary) Write(w io.Writer) error {
	rows := []summaryRow{
		{"run", s.RunID},
		{"steps", fmt.Sprintf("%d (%d failed)", s.Steps, s.Failed)},
		{"final volume", domain.FormatScalar(s.FinalVolume) + " L"},
		{"volume mean", fmt.Sprintf("%.3f L (stddev %.3f)", s.VolumeMean, s.VolumeStdDev)},
		{"volume range", fmt.Sprintf("%s .. %s L", domain.FormatScalar(s.VolumeMin), domain.FormatScalar(s.VolumeMax))},
		{"evaporated", fmt.Sprintf("%.3f L", s.TotalEvaporated)},
		{"precipitation", fmt.Sprintf("%.3f L", s.TotalPrecipitation)},
		{"alerts", fmt.Sprintf("%d (%d rule violations)", s.Alerts, s.Violations)},
	}
	if s.Name != "" {
		rows = append([]summaryRow{{"scenario", s.Name}}, rows...)
	}
	if s.Elapsed > 0 {
		rows = append(rows, summaryRow{"simulated", s.Elapsed.String()})
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "%-14s %s\n", row.label, row.value); err != nil {
			return err
		}
	}
	return nil
}
