package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aquacore/internal/alerts"
	"aquacore/internal/blob"
	"aquacore/internal/core"
	"aquacore/internal/infra/persistence/memory"
	"aquacore/internal/scenario"
)

const fishTankScenario = "../../configs/fish_tank.yaml"

type harness struct {
	store *memory.Store
	sink  *alerts.MemorySink
	blobs blob.Store
	out   bytes.Buffer
	err   bytes.Buffer
}

func newHarness() *harness {
	return &harness{store: memory.NewStore(), sink: alerts.NewMemorySink(), blobs: blob.NewMemory()}
}

func (h *harness) exec(t *testing.T, args ...string) error {
	t.Helper()
	h.out.Reset()
	h.err.Reset()
	b := backends{
		store: func() (core.SnapshotStore, error) { return h.store, nil },
		sink:  func() (alerts.Sink, error) { return h.sink, nil },
		blobs: func(context.Context) (blob.Store, error) { return h.blobs, nil },
	}
	root := newRootCmd(b, &h.out, &h.err)
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func TestValidateCommand(t *testing.T) {
	h := newHarness()
	if err := h.exec(t, "validate", "--config", fishTankScenario); err != nil {
		t.Fatalf("validate: %v", err)
	}
	want := `scenario "fish tank life cycle" is valid: tank main holds 4000 of 6000 L, 10 step(s)`
	if !strings.Contains(h.out.String(), want) {
		t.Fatalf("unexpected output %q", h.out.String())
	}
}

func TestValidateExitCodes(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("tank: {kind: pond}\nsteps: []\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	var out, errb bytes.Buffer
	if code := cli(context.Background(), []string{"validate", "--config", bad}, &out, &errb); code != 2 {
		t.Fatalf("expected exit 2 for invalid scenario, got %d (%s)", code, errb.String())
	}
	if !strings.Contains(errb.String(), "at least one step") {
		t.Fatalf("expected problems on stderr, got %q", errb.String())
	}
	t.Setenv("AQUACORE_CONFIG", "")
	if code := cli(context.Background(), []string{"validate"}, &out, &errb); code != 1 {
		t.Fatalf("expected exit 1 without a scenario, got %d", code)
	}
	t.Setenv("AQUACORE_CONFIG", fishTankScenario)
	if code := cli(context.Background(), []string{"validate"}, &out, &errb); code != 0 {
		t.Fatalf("expected env scenario to validate, got %d (%s)", code, errb.String())
	}
}

func TestRunRecordsEverything(t *testing.T) {
	h := newHarness()
	dir := t.TempDir()
	metricsFile := filepath.Join(dir, "aquacore.prom")
	traceFile := filepath.Join(dir, "trace.jsonl")
	err := h.exec(t, "run", "--config", fishTankScenario, "--run-id", "r1",
		"--metrics-file", metricsFile, "--trace-file", traceFile, "--json", "--log-level", "warn")
	if err != nil {
		t.Fatalf("run: %v (stderr %s)", err, h.err.String())
	}
	var summary scenario.Summary
	if err := json.Unmarshal(h.out.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v\n%s", err, h.out.String())
	}
	if summary.RunID != "r1" || summary.Steps != 13 || summary.Failed != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.TotalPrecipitation <= 120 || summary.TotalEvaporated <= 0 {
		t.Fatalf("expected rain, snow melt and evaporation, got %+v", summary)
	}

	snaps, _ := h.store.List(context.Background(), "r1")
	if len(snaps) != 13 {
		t.Fatalf("expected 13 stored snapshots, got %d", len(snaps))
	}
	info, err := h.blobs.List(context.Background(), "runs/r1/")
	if err != nil || len(info) != 1 || info[0].Key != "runs/r1/main_status.csv" {
		t.Fatalf("expected status log artifact, got %+v %v", info, err)
	}
	prom, err := os.ReadFile(metricsFile)
	if err != nil || !strings.Contains(string(prom), `aquacore_operations_total{operation="evaporate",status="success"}`) {
		t.Fatalf("expected metrics textfile, got %v\n%s", err, prom)
	}
	trace, err := os.ReadFile(traceFile)
	if err != nil || strings.Count(string(trace), "\n") != 13 {
		t.Fatalf("expected 13 trace lines, got %v\n%s", err, trace)
	}

	if err := h.exec(t, "summary", "--run", "r1"); err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !strings.Contains(h.out.String(), "steps          13 (0 failed)") {
		t.Fatalf("unexpected summary output\n%s", h.out.String())
	}
	if err := h.exec(t, "runs"); err != nil || strings.TrimSpace(h.out.String()) != "r1" {
		t.Fatalf("runs: %v %q", err, h.out.String())
	}
}

func TestSummaryErrors(t *testing.T) {
	h := newHarness()
	if err := h.exec(t, "summary"); err == nil || !strings.Contains(err.Error(), "--run is required") {
		t.Fatalf("expected missing flag error, got %v", err)
	}
	if err := h.exec(t, "summary", "--run", "ghost"); err == nil || !strings.Contains(err.Error(), "run ghost not found") {
		t.Fatalf("expected unknown run error, got %v", err)
	}
}

func TestRunBackendFailures(t *testing.T) {
	h := newHarness()
	b := backends{
		store: func() (core.SnapshotStore, error) { return nil, errors.New("db down") },
		sink:  func() (alerts.Sink, error) { return h.sink, nil },
		blobs: func(context.Context) (blob.Store, error) { return h.blobs, nil },
	}
	root := newRootCmd(b, &h.out, &h.err)
	root.SetArgs([]string{"run", "--config", fishTankScenario})
	if err := root.Execute(); err == nil || !strings.Contains(err.Error(), "open snapshot store: db down") {
		t.Fatalf("expected store error, got %v", err)
	}
	if err := h.exec(t, "validate", "--config", fishTankScenario, "--log-level", "chatty"); err == nil || !strings.Contains(err.Error(), "log level") {
		t.Fatalf("expected log level error, got %v", err)
	}
}
