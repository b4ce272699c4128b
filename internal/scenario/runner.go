// Package scenario replays the environmental steps of a scenario file against
// a tank service and summarises the recorded run.
package scenario

import (
	"context"
	"fmt"
	"time"

	"aquacore/internal/config"
	"aquacore/internal/core"
)

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger for skipped steps and progress.
func WithLogger(logger core.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Runner applies scenario steps in order. A failed operation is logged and
// skipped; the service has already snapshotted it.
type Runner struct {
	svc    *core.Service
	sc     *config.Scenario
	logger core.Logger
}

// NewRunner pairs a service with the scenario it should replay.
func NewRunner(svc *core.Service, sc *config.Scenario, opts ...Option) (*Runner, error) {
	if svc == nil {
		return nil, fmt.Errorf("scenario: service is required")
	}
	if sc == nil {
		return nil, fmt.Errorf("scenario: scenario is required")
	}
	r := &Runner{svc: svc, sc: sc, logger: core.NewLogrusLogger(nil)}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run applies every step and returns the summary of the run's snapshots.
// Cancelling ctx stops between steps; the partial summary is returned with
// the context error.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	r.logger.Info("scenario started", "name", r.sc.Name, "run_id", r.svc.RunID(), "steps", r.sc.TotalSteps())
	var (
		applied int
		skipped int
		elapsed time.Duration
		runErr  error
	)
loop:
	for i, st := range r.sc.Steps {
		for rep := 0; rep < st.Times(); rep++ {
			if err := ctx.Err(); err != nil {
				runErr = err
				break loop
			}
			ok, err := r.apply(ctx, st)
			if err != nil {
				skipped++
				r.logger.Warn("step skipped", "step", i, "repeat", rep, "error", err)
			}
			if ok {
				applied++
			}
			elapsed += st.Elapsed
		}
	}

	snaps, err := r.svc.History(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("load history: %w", err)
	}
	summary := Summarize(r.svc.RunID(), snaps)
	summary.Name = r.sc.Name
	summary.Elapsed = elapsed
	r.logger.Info("scenario finished", "run_id", summary.RunID, "applied", applied, "skipped", skipped,
		"final_volume", summary.FinalVolume, "alerts", summary.Alerts)
	return summary, runErr
}

// apply runs the operations one step asks for: precipitation when the step
// carries an amount, evaporation above freezing, then manual water changes.
// A step without operations records a plain snapshot. The first failure ends
// the step.
func (r *Runner) apply(ctx context.Context, st config.Step) (bool, error) {
	did := false
	if p := st.Precipitation; p != nil && p.Amount > 0 {
		event := *p
		if event.AirTemp == 0 {
			event.AirTemp = st.AirTemp
		}
		did = true
		if _, err := r.svc.Precipitate(ctx, event); err != nil {
			return false, fmt.Errorf("precipitate: %w", err)
		}
	}
	if st.AirTemp > 0 && st.Elapsed > 0 {
		did = true
		if _, err := r.svc.Evaporate(ctx, st.AirTemp, st.RelativeHumidity, st.Elapsed); err != nil {
			return false, fmt.Errorf("evaporate: %w", err)
		}
	}
	if st.AddWater > 0 {
		did = true
		if _, err := r.svc.AddWater(ctx, st.AddWater); err != nil {
			return false, fmt.Errorf("add water: %w", err)
		}
	}
	if st.ExtractWater > 0 {
		did = true
		if _, err := r.svc.ExtractWater(ctx, st.ExtractWater, st.Force); err != nil {
			return false, fmt.Errorf("extract water: %w", err)
		}
	}
	if !did {
		if _, err := r.svc.Snapshot(ctx); err != nil {
			return false, fmt.Errorf("snapshot: %w", err)
		}
	}
	return true, nil
}

// Service builds the domain state of sc and wraps it in a service with opts.
func Service(sc *config.Scenario, opts ...core.ServiceOption) (*core.Service, error) {
	setup, err := sc.Build()
	if err != nil {
		return nil, err
	}
	all := make([]core.ServiceOption, 0, len(opts)+3)
	if sc.RunID != "" {
		all = append(all, core.WithRunID(sc.RunID))
	}
	if setup.Tracker != nil {
		all = append(all, core.WithTracker(setup.Tracker))
	}
	if setup.Monitor != nil {
		all = append(all, core.WithMonitor(setup.Monitor))
	}
	all = append(all, opts...)
	return core.NewService(setup.Tank, all...)
}
