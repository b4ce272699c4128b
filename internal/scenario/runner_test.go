package scenario

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"aquacore/internal/config"
	"aquacore/internal/core"
	"aquacore/pkg/domain"
)

type captureLogger struct{ warnings []string }

func (c *captureLogger) Debug(string, ...any) {}
func (c *captureLogger) Info(string, ...any)  {}
func (c *captureLogger) Warn(msg string, kv ...any) {
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i] == "error" {
			msg += ": " + kv[i+1].(error).Error()
		}
	}
	c.warnings = append(c.warnings, msg)
}
func (c *captureLogger) Error(string, ...any) {}

// pondScenario is a 1000 L pond holding 500 L. The third step overflows it.
func pondScenario() *config.Scenario {
	return &config.Scenario{
		Name:  "pond",
		RunID: "pond-run",
		Tank: config.TankSpec{
			TankConfig:    domain.TankConfig{Name: "pond", Kind: domain.KindPond, Length: 100, Width: 100, Depth: 100},
			InitialVolume: 500,
		},
		Steps: []config.Step{
			{Precipitation: &domain.Precipitation{Kind: domain.Rain, Amount: 100}},
			{},
			{Precipitation: &domain.Precipitation{Kind: domain.Rain, Amount: 500}},
			{ExtractWater: 50},
			{AirTemp: 20, RelativeHumidity: 50, Elapsed: time.Hour, Repeat: 2},
		},
	}
}

func TestRunReplaysStepsAndSkipsFailures(t *testing.T) {
	sc := pondScenario()
	svc, err := Service(sc)
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	logger := &captureLogger{}
	runner, err := NewRunner(svc, sc, WithLogger(logger))
	if err != nil {
		t.Fatalf("runner: %v", err)
	}
	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.RunID != "pond-run" || summary.Name != "pond" {
		t.Fatalf("unexpected identity %+v", summary)
	}
	if summary.Steps != 6 || summary.Failed != 1 {
		t.Fatalf("expected 6 snapshots with 1 failure, got %d/%d", summary.Steps, summary.Failed)
	}
	if len(logger.warnings) != 1 || !strings.Contains(logger.warnings[0], "precipitate") {
		t.Fatalf("expected one skipped precipitation step, got %v", logger.warnings)
	}
	if summary.TotalPrecipitation != 100 {
		t.Fatalf("expected 100 L precipitation, got %v", summary.TotalPrecipitation)
	}
	if summary.VolumeMax != 600 || !(summary.VolumeMin < 550) || summary.TotalEvaporated <= 0 {
		t.Fatalf("unexpected volume stats %+v", summary)
	}
	if math.Abs(summary.FinalVolume-(550-summary.TotalEvaporated)) > 1e-6 {
		t.Fatalf("final volume %v inconsistent with evaporation %v", summary.FinalVolume, summary.TotalEvaporated)
	}
	if summary.Alerts == 0 {
		t.Fatalf("expected the overflow to raise an alert")
	}
	if summary.Elapsed != 2*time.Hour {
		t.Fatalf("expected 2h simulated, got %s", summary.Elapsed)
	}
	history, _ := svc.History(context.Background())
	ops := make([]string, 0, len(history))
	for _, snap := range history {
		ops = append(ops, snap.Operation)
	}
	want := []string{core.OpPrecipitate, core.OpSnapshot, core.OpPrecipitate, core.OpExtractWater, core.OpEvaporate, core.OpEvaporate}
	if strings.Join(ops, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected operations %v", ops)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	sc := pondScenario()
	svc, err := Service(sc)
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	runner, _ := NewRunner(svc, sc)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	summary, err := runner.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if summary.Steps != 0 {
		t.Fatalf("expected no steps, got %d", summary.Steps)
	}
}

func TestNewRunnerValidation(t *testing.T) {
	if _, err := NewRunner(nil, pondScenario()); err == nil {
		t.Fatalf("expected service error")
	}
	svc, _ := Service(pondScenario())
	if _, err := NewRunner(svc, nil); err == nil {
		t.Fatalf("expected scenario error")
	}
}

func TestServiceAttachesTrackerAndMonitor(t *testing.T) {
	sc := pondScenario()
	sc.Elements = map[string]domain.ElementConfig{"nitrate": {Min: 0, Max: 50, Initial: 10}}
	sc.QualityRanges = map[string]config.RangeSpec{"ph": {Min: 6.5, Max: 8}}
	svc, err := Service(sc, core.WithRunID("override"))
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	if svc.Tracker() == nil || svc.Monitor() == nil {
		t.Fatalf("expected tracker and monitor")
	}
	if svc.RunID() != "override" {
		t.Fatalf("explicit option should override scenario run id, got %s", svc.RunID())
	}

	sc.Tank.InitialVolume = 5000
	if _, err := Service(sc); !errors.Is(err, domain.ErrCapacityViolation) {
		t.Fatalf("expected build error, got %v", err)
	}
}

func TestSummarizeCountsOneAlertPerBadReading(t *testing.T) {
	env := domain.DefaultEnvelopes()
	tank, err := domain.NewTank(env, domain.TankConfig{Name: "main", Kind: domain.KindFishTank, Length: 100, Width: 100, Depth: 100})
	if err != nil {
		t.Fatalf("tank: %v", err)
	}
	monitor, err := domain.NewQualityRangeMonitor(map[string]domain.PropertyRange{
		domain.StatusTemperature: domain.MustPropertyRange(env, domain.StatusTemperature, 10, 30),
	})
	if err != nil {
		t.Fatalf("monitor: %v", err)
	}
	svc, err := core.NewService(tank, core.WithRunID("hot"), core.WithMonitor(monitor))
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	ctx := context.Background()
	if _, err := svc.SetProperty(ctx, domain.StatusTemperature, 35); err != nil {
		t.Fatalf("set temperature: %v", err)
	}
	snaps, err := svc.History(ctx)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	s := Summarize("hot", snaps)
	if s.Alerts != 1 || s.Violations != 1 {
		t.Fatalf("expected one alert and one violation for one bad reading, got %+v", s)
	}
}

func TestSummarize(t *testing.T) {
	if s := Summarize("empty", nil); s.Steps != 0 || s.FinalStatus != nil {
		t.Fatalf("unexpected empty summary %+v", s)
	}
	snaps := []domain.Snapshot{
		{Step: 1, Operation: core.OpPrecipitate, Amount: 10, Status: domain.Status{domain.StatusCurrentVolume: 10.0}},
		{Step: 2, Operation: core.OpPrecipitate, Amount: 99, Error: "boom", Status: domain.Status{domain.StatusCurrentVolume: 20.0},
			Violations: []domain.Violation{{Rule: "r", Severity: domain.SeverityWarn}}, Alerts: []string{"a"}},
		{Step: 3, Operation: core.OpEvaporate, Status: domain.Status{domain.StatusCurrentVolume: 30.0, domain.StatusCumulativeEvaporated: 1.5}},
	}
	s := Summarize("r1", snaps)
	if s.Steps != 3 || s.Failed != 1 || s.TotalPrecipitation != 10 || s.Alerts != 2 || s.Violations != 1 {
		t.Fatalf("unexpected counts %+v", s)
	}
	if s.VolumeMean != 20 || s.VolumeStdDev != 10 || s.VolumeMin != 10 || s.VolumeMax != 30 || s.FinalVolume != 30 {
		t.Fatalf("unexpected volume stats %+v", s)
	}
	if s.TotalEvaporated != 1.5 {
		t.Fatalf("expected evaporated 1.5, got %v", s.TotalEvaporated)
	}

	var buf bytes.Buffer
	s.Name = "pond"
	s.Elapsed = time.Hour
	if err := s.Write(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"scenario       pond", "steps          3 (1 failed)", "final volume   30 L", "simulated      1h0m0s"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in\n%s", want, out)
		}
	}
}
