package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"aquacore/internal/alerts"
	"aquacore/internal/infra/persistence/memory"
	"aquacore/pkg/domain"
)

// Operation names used in snapshots and metrics.
const (
	OpEvaporate    = "evaporate"
	OpPrecipitate  = "precipitate"
	OpAddWater     = "add_water"
	OpExtractWater = "extract_water"
	OpSetProperty  = "set_property"
	OpSnapshot     = "snapshot"
)

// Settable property names accepted by SetProperty.
const (
	PropertyUnderflowThreshold = domain.ThresholdUnderflow
	PropertyOverflowThreshold  = domain.ThresholdOverflow
)

// StepResult is the outcome of one service operation.
type StepResult struct {
	Liters   float64
	Result   Result
	Snapshot Snapshot
}

// Service drives one tank. Every operation is evaluated against the rules
// engine, snapshotted and reported, whether or not the domain call succeeded.
type Service struct {
	mu      sync.Mutex
	runID   string
	step    int
	tank    *domain.Tank
	tracker *domain.DissolvedElementsTracker
	monitor *domain.QualityRangeMonitor
	engine  *RulesEngine
	store   SnapshotStore
	sink    alerts.Sink
	clock   Clock
	logger  Logger
	metrics MetricsRecorder
	tracer  Tracer
}

// NewService wraps tank. Without options the run ID is random, the default
// rules apply and snapshots and alerts stay in memory.
func NewService(tank *domain.Tank, opts ...ServiceOption) (*Service, error) {
	if tank == nil {
		return nil, domain.ConfigurationError{Component: "service", Message: "tank is required"}
	}
	o := defaultServiceOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.tracker != nil && o.tracker.Tank() != tank {
		return nil, domain.ConfigurationError{Component: "service", Message: "tracker wraps a different tank"}
	}
	if o.runID == "" {
		o.runID = uuid.NewString()
	}
	if o.engine == nil {
		o.engine = NewDefaultRulesEngine()
	}
	if o.store == nil {
		o.store = memory.NewStore()
	}
	if o.sink == nil {
		o.sink = alerts.NewMemorySink()
	}
	return &Service{
		runID:   o.runID,
		tank:    tank,
		tracker: o.tracker,
		monitor: o.monitor,
		engine:  o.engine,
		store:   o.store,
		sink:    o.sink,
		clock:   o.clock,
		logger:  o.logger,
		metrics: o.metrics,
		tracer:  o.tracer,
	}, nil
}

// RunID identifies the snapshots written by this service.
func (s *Service) RunID() string { return s.runID }

// Tank returns the driven tank. Mutating it directly skips snapshots and rules.
func (s *Service) Tank() *domain.Tank { return s.tank }

// Tracker returns the attached tracker, or nil.
func (s *Service) Tracker() *domain.DissolvedElementsTracker { return s.tracker }

// Monitor returns the attached quality monitor, or nil.
func (s *Service) Monitor() *domain.QualityRangeMonitor { return s.monitor }

// Store returns the snapshot store.
func (s *Service) Store() SnapshotStore { return s.store }

// Steps returns the number of recorded steps.
func (s *Service) Steps() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Status returns the tank status with the tracked concentrations merged in.
// It is safe to call while operations run.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := s.tank.Status()
	if s.tracker != nil {
		for name, c := range s.tracker.Concentrations() {
			status[name] = c
		}
	}
	return status
}

// Evaporate exposes the tank surface to air for elapsed.
func (s *Service) Evaporate(ctx context.Context, airTemp, relativeHumidity float64, elapsed time.Duration) (StepResult, error) {
	in := s.tank.Exposure(airTemp, relativeHumidity, elapsed)
	return s.run(ctx, OpEvaporate, elapsed.Seconds(), func() (float64, error) {
		if s.tracker != nil {
			return s.tracker.Evaporate(in)
		}
		return s.tank.Evaporate(in)
	})
}

// Precipitate applies a rain or snow event.
func (s *Service) Precipitate(ctx context.Context, p domain.Precipitation) (StepResult, error) {
	return s.run(ctx, OpPrecipitate, p.Amount, func() (float64, error) {
		if s.tracker != nil {
			return s.tracker.ManagePrecipitation(p)
		}
		return s.tank.ManagePrecipitation(p)
	})
}

// AddWater pours amount liters into the tank.
func (s *Service) AddWater(ctx context.Context, amount float64) (StepResult, error) {
	return s.run(ctx, OpAddWater, amount, func() (float64, error) {
		if s.tracker != nil {
			return s.tracker.AddWater(amount)
		}
		return s.tank.AddWater(amount)
	})
}

// ExtractWater drains amount liters; force allows draining below the underflow threshold.
func (s *Service) ExtractWater(ctx context.Context, amount float64, force bool) (StepResult, error) {
	return s.run(ctx, OpExtractWater, amount, func() (float64, error) {
		if s.tracker != nil {
			return s.tracker.ExtractWater(amount, force)
		}
		return s.tank.ExtractWater(amount, force)
	})
}

// SetProperty assigns a water property or threshold by status name.
func (s *Service) SetProperty(ctx context.Context, name string, value float64) (StepResult, error) {
	return s.run(ctx, OpSetProperty+":"+name, value, func() (float64, error) {
		return 0, s.tank.SetProperty(name, value)
	})
}

// Snapshot records the current state without changing it.
func (s *Service) Snapshot(ctx context.Context) (StepResult, error) {
	return s.run(ctx, OpSnapshot, 0, func() (float64, error) { return 0, nil })
}

// History lists the run's snapshots in step order.
func (s *Service) History(ctx context.Context) ([]Snapshot, error) {
	return s.store.List(ctx, s.runID)
}

// Close releases the snapshot store and alert sink.
func (s *Service) Close() error {
	return errors.Join(s.store.Close(), s.sink.Close())
}

func (s *Service) view() tankView {
	return tankView{tank: s.tank, tracker: s.tracker, monitor: s.monitor}
}

// run applies fn and records the step. The returned error is the domain error
// when fn failed, otherwise a rule, blocking or infrastructure error.
func (s *Service) run(ctx context.Context, op string, amount float64, fn func() (float64, error)) (StepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.clock.Now()
	ctx, span := s.tracer.Start(ctx, op)

	before := s.tank.Status()
	liters, opErr := fn()
	after := s.tank.Status()

	change := Change{Operation: op, Amount: amount, Before: before, After: after, Err: opErr}
	res, ruleErr := s.engine.Evaluate(ctx, s.view(), []Change{change})
	if ruleErr != nil {
		ruleErr = fmt.Errorf("evaluate rules: %w", ruleErr)
	}

	s.step++
	snap := Snapshot{
		ID:         uuid.NewString(),
		RunID:      s.runID,
		Step:       s.step,
		Operation:  op,
		Amount:     amount,
		Status:     after,
		Violations: res.Violations,
		Alerts:     s.observe(after),
		RecordedAt: start.UTC(),
	}
	if s.tracker != nil {
		snap.Concentrations = s.tracker.Concentrations()
	}

	err := opErr
	if err == nil {
		err = ruleErr
	}
	if err == nil && res.HasBlocking() {
		err = RuleViolationError{Result: res}
	}
	if err != nil {
		snap.Error = err.Error()
	}

	var infraErr error
	if appendErr := s.store.Append(ctx, snap); appendErr != nil {
		infraErr = fmt.Errorf("append snapshot: %w", appendErr)
	}
	if publishErr := s.sink.Publish(ctx, s.alertsFor(snap)); publishErr != nil {
		infraErr = errors.Join(infraErr, fmt.Errorf("publish alerts: %w", publishErr))
	}
	if err == nil {
		err = infraErr
	} else if infraErr != nil {
		s.logger.Error("step bookkeeping failed", "run_id", s.runID, "step", snap.Step, "error", infraErr)
	}

	if observer, ok := s.metrics.(StatusObserver); ok {
		observer.ObserveStatus(s.tank.Name(), after)
	}
	span.End(err)
	s.metrics.Observe(ctx, op, err == nil, s.clock.Now().Sub(start))

	if err != nil {
		s.logger.Warn("step failed", "run_id", s.runID, "step", snap.Step, "operation", op, "amount", amount, "error", err)
	} else {
		s.logger.Debug("step applied", "run_id", s.runID, "step", snap.Step, "operation", op, "amount", amount, "liters", liters,
			"volume", after[domain.StatusCurrentVolume], "violations", len(res.Violations))
	}
	return StepResult{Liters: liters, Result: res, Snapshot: snap}, err
}

// observe feeds the status and concentrations to the monitor and returns the
// alerts raised by this step only.
func (s *Service) observe(status Status) []string {
	if s.monitor == nil {
		return nil
	}
	data := status.Clone()
	if s.tracker != nil {
		for name, c := range s.tracker.Concentrations() {
			data[name] = c
		}
	}
	prior := len(s.monitor.Alerts())
	if _, err := s.monitor.Observe(data); err != nil {
		s.logger.Warn("quality monitor rejected status", "run_id", s.runID, "error", err)
		return nil
	}
	raised := s.monitor.Alerts()[prior:]
	if len(raised) == 0 {
		return nil
	}
	return raised
}

func (s *Service) alertsFor(snap Snapshot) []alerts.Alert {
	var out []alerts.Alert
	for _, v := range snap.Violations {
		if v.Severity == SeverityLog {
			continue
		}
		out = append(out, alerts.Alert{
			RunID:    snap.RunID,
			Tank:     s.tank.Name(),
			Step:     snap.Step,
			Rule:     v.Rule,
			Severity: string(v.Severity),
			Property: v.Property,
			Message:  v.Message,
			RaisedAt: snap.RecordedAt,
		})
	}
	return out
}
