package core

import (
	"time"

	"aquacore/internal/alerts"
	"aquacore/pkg/domain"
)

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	runID   string
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

func defaultServiceOptions() serviceOptions {
	return serviceOptions{
		clock:   ClockFunc(func() time.Time { return time.Now().UTC() }),
		logger:  noopLogger{},
		metrics: noopMetricsRecorder{},
		tracer:  noopTracer{},
	}
}

// WithRunID fixes the run identifier; a random UUID is used otherwise.
func WithRunID(id string) ServiceOption {
	return func(o *serviceOptions) { o.runID = id }
}

// WithTracker routes volume-changing operations through tracker, which must wrap the service tank.
func WithTracker(tracker *domain.DissolvedElementsTracker) ServiceOption {
	return func(o *serviceOptions) { o.tracker = tracker }
}

// WithMonitor observes the status after every step.
func WithMonitor(monitor *domain.QualityRangeMonitor) ServiceOption {
	return func(o *serviceOptions) { o.monitor = monitor }
}

// WithRulesEngine replaces the default rule set.
func WithRulesEngine(engine *RulesEngine) ServiceOption {
	return func(o *serviceOptions) {
		if engine != nil {
			o.engine = engine
		}
	}
}

// WithSnapshotStore persists step snapshots in store instead of memory.
func WithSnapshotStore(store SnapshotStore) ServiceOption {
	return func(o *serviceOptions) {
		if store != nil {
			o.store = store
		}
	}
}

// WithAlertSink publishes warn and block violations to sink.
func WithAlertSink(sink alerts.Sink) ServiceOption {
	return func(o *serviceOptions) {
		if sink != nil {
			o.sink = sink
		}
	}
}

// WithClock overrides the time source.
func WithClock(clock Clock) ServiceOption {
	return func(o *serviceOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger Logger) ServiceOption {
	return func(o *serviceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetricsRecorder sets the metrics recorder.
func WithMetricsRecorder(recorder MetricsRecorder) ServiceOption {
	return func(o *serviceOptions) {
		if recorder != nil {
			o.metrics = recorder
		}
	}
}

// WithTracer sets the tracer.
func WithTracer(tracer Tracer) ServiceOption {
	return func(o *serviceOptions) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}
