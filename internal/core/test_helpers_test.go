package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"aquacore/pkg/domain"
)

type metricsCall struct {
	op       string
	success  bool
	duration time.Duration
}

type captureMetricsRecorder struct {
	calls    []metricsCall
	statuses map[string]domain.Status
}

func (c *captureMetricsRecorder) Observe(_ context.Context, op string, success bool, duration time.Duration) {
	c.calls = append(c.calls, metricsCall{op: op, success: success, duration: duration})
}

func (c *captureMetricsRecorder) ObserveStatus(tank string, s domain.Status) {
	if c.statuses == nil {
		c.statuses = map[string]domain.Status{}
	}
	c.statuses[tank] = s
}

func (c *captureMetricsRecorder) has(op string, success bool) bool {
	for _, call := range c.calls {
		if call.op == op && call.success == success {
			return true
		}
	}
	return false
}

type spanRecord struct {
	op  string
	err error
}

type captureTracer struct {
	started []string
	ended   []spanRecord
}

func (c *captureTracer) Start(ctx context.Context, op string) (context.Context, TraceSpan) {
	c.started = append(c.started, op)
	return ctx, &captureSpan{tracer: c, op: op}
}

type captureSpan struct {
	tracer *captureTracer
	op     string
}

func (s *captureSpan) End(err error) {
	s.tracer.ended = append(s.tracer.ended, spanRecord{op: s.op, err: err})
}

type captureLogger struct{ calls []string }

func (c *captureLogger) Debug(msg string, _ ...any) { c.calls = append(c.calls, "d:"+msg) }
func (c *captureLogger) Info(msg string, _ ...any)  { c.calls = append(c.calls, "i:"+msg) }
func (c *captureLogger) Warn(msg string, _ ...any)  { c.calls = append(c.calls, "w:"+msg) }
func (c *captureLogger) Error(msg string, _ ...any) { c.calls = append(c.calls, "e:"+msg) }

func (c *captureLogger) has(entry string) bool {
	for _, call := range c.calls {
		if call == entry {
			return true
		}
	}
	return false
}

type failingStore struct{ domain.SnapshotStore }

func (failingStore) Append(context.Context, domain.Snapshot) error { return errors.New("disk full") }
func (failingStore) Close() error                                  { return nil }

// newFishTank returns a 400x150x100 cm fish tank: 6000 L capacity, 6 m² surface.
func newFishTank(t *testing.T) *domain.Tank {
	t.Helper()
	tank, err := domain.NewTank(domain.DefaultEnvelopes(), domain.TankConfig{Name: "main", Length: 400, Width: 150, Depth: 100, Kind: domain.KindFishTank})
	if err != nil {
		t.Fatalf("new tank: %v", err)
	}
	return tank
}

func newService(t *testing.T, tank *domain.Tank, opts ...ServiceOption) *Service {
	t.Helper()
	svc, err := NewService(tank, opts...)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

type ruleFunc struct {
	name string
	fn   func(domain.RuleView, []domain.Change) (domain.Result, error)
}

func (r ruleFunc) Name() string { return r.name }

func (r ruleFunc) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	return r.fn(view, changes)
}

type staticView struct {
	status         domain.Status
	concentrations map[string]float64
	elementRanges  map[string]domain.Bounds
	qualityRanges  map[string]domain.Bounds
}

func (v staticView) Status() domain.Status                   { return v.status }
func (v staticView) Concentrations() map[string]float64      { return v.concentrations }
func (v staticView) QualityRanges() map[string]domain.Bounds { return v.qualityRanges }

func (v staticView) ElementRange(name string) (domain.Bounds, bool) {
	b, ok := v.elementRanges[name]
	return b, ok
}
