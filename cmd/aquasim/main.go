// Command aquasim replays tank scenarios and inspects recorded runs.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"aquacore/internal/alerts"
	"aquacore/internal/blob"
	"aquacore/internal/config"
	"aquacore/internal/core"
	"aquacore/internal/metrics"
	"aquacore/internal/recorder"
	"aquacore/internal/scenario"
	"aquacore/pkg/domain"
)

var exitFunc = os.Exit

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	exitFunc(code)
}

// backends opens the infrastructure a command needs. Tests swap them out.
type backends struct {
	store func() (core.SnapshotStore, error)
	sink  func() (alerts.Sink, error)
	blobs func(context.Context) (blob.Store, error)
}

func envBackends() backends {
	return backends{store: core.OpenSnapshotStore, sink: alerts.OpenFromEnv, blobs: blob.Open}
}

func cli(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(envBackends(), stdout, stderr)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		if config.IsValidation(err) {
			return 2
		}
		return 1
	}
	return 0
}

type app struct {
	backends
	stdout   io.Writer
	stderr   io.Writer
	logLevel string
	log      *logrus.Logger
}

func newRootCmd(b backends, stdout, stderr io.Writer) *cobra.Command {
	a := &app{backends: b, stdout: stdout, stderr: stderr}
	root := &cobra.Command{
		Use:           "aquasim",
		Short:         "Simulate water tanks under weather scenarios",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			l, err := core.NewStandardLogger(a.stderr, a.logLevel)
			if err != nil {
				return fmt.Errorf("log level: %w", err)
			}
			a.log = l
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", os.Getenv("AQUACORE_LOG_LEVEL"), "logrus level (default info, env AQUACORE_LOG_LEVEL)")
	root.AddCommand(a.runCmd(), a.validateCmd(), a.summaryCmd(), a.runsCmd())
	return root
}

func (a *app) runCmd() *cobra.Command {
	var (
		configPath  string
		runID       string
		metricsFile string
		traceFile   string
		asJSON      bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Replay a scenario and record its snapshots",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			sc, err := loadScenario(configPath)
			if err != nil {
				return err
			}
			if runID == "" {
				runID = sc.RunID
			}
			if runID == "" {
				runID = uuid.NewString()
			}
			logger := core.NewLogrusLogger(a.log.WithField("run_id", runID))

			store, err := a.store()
			if err != nil {
				return fmt.Errorf("open snapshot store: %w", err)
			}
			sink, err := a.sink()
			if err != nil {
				_ = store.Close()
				return fmt.Errorf("open alert sink: %w", err)
			}
			rec := metrics.NewRecorder()
			opts := []core.ServiceOption{
				core.WithRunID(runID),
				core.WithSnapshotStore(store),
				core.WithAlertSink(sink),
				core.WithLogger(logger),
				core.WithMetricsRecorder(rec),
			}
			if traceFile != "" {
				f, err := os.Create(traceFile)
				if err != nil {
					_ = store.Close()
					_ = sink.Close()
					return fmt.Errorf("create trace file: %w", err)
				}
				defer f.Close()
				opts = append(opts, core.WithTracer(core.NewJSONTracer(f, runID, nil)))
			}
			svc, err := scenario.Service(sc, opts...)
			if err != nil {
				_ = store.Close()
				_ = sink.Close()
				return err
			}
			defer func() {
				if cerr := svc.Close(); cerr != nil {
					logger.Error("close service", "error", cerr)
				}
			}()

			var statusLog *recorder.Recorder
			if sc.Recorder.Interval > 0 {
				blobs, err := a.blobs(ctx)
				if err != nil {
					return fmt.Errorf("open blob store: %w", err)
				}
				statusLog, err = recorder.New(svc, blobs, blob.StatusLogKey(runID, svc.Tank().Name()), recorder.WithLogger(logger))
				if err != nil {
					return err
				}
				if err := statusLog.Start(ctx, sc.Recorder.Interval); err != nil {
					return err
				}
			}

			runner, err := scenario.NewRunner(svc, sc, scenario.WithLogger(logger))
			if err != nil {
				return err
			}
			summary, runErr := runner.Run(ctx)
			if statusLog != nil {
				if err := statusLog.Stop(context.WithoutCancel(ctx)); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}
			if metricsFile != "" {
				if err := rec.WriteTextfile(metricsFile); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}
			if err := a.printSummary(summary, asJSON); err != nil {
				return err
			}
			return runErr
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "scenario file (env AQUACORE_CONFIG)")
	cmd.Flags().StringVar(&runID, "run-id", "", "run identifier (default from scenario or random)")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this file after the run")
	cmd.Flags().StringVar(&traceFile, "trace-file", "", "write JSON trace spans to this file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	return cmd
}

func (a *app) validateCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a scenario file and build its tank without running it",
		RunE: func(*cobra.Command, []string) error {
			sc, err := loadScenario(configPath)
			if err != nil {
				return err
			}
			setup, err := sc.Build()
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "scenario %q is valid: tank %s holds %s of %s L, %d step(s)\n",
				sc.Name, setup.Tank.Name(), domain.FormatScalar(setup.Tank.Volume()), domain.FormatScalar(setup.Tank.Capacity()), sc.TotalSteps())
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "scenario file (env AQUACORE_CONFIG)")
	return cmd
}

func (a *app) summaryCmd() *cobra.Command {
	var (
		runID  string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarise a recorded run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if runID == "" {
				return fmt.Errorf("--run is required")
			}
			store, err := a.store()
			if err != nil {
				return fmt.Errorf("open snapshot store: %w", err)
			}
			defer store.Close()
			snaps, err := store.List(cmd.Context(), runID)
			if err != nil {
				return err
			}
			if len(snaps) == 0 {
				return fmt.Errorf("run %s not found", runID)
			}
			return a.printSummary(scenario.Summarize(runID, snaps), asJSON)
		},
	}
	cmd.Flags().StringVar(&runID, "run", "", "run identifier")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	return cmd
}

func (a *app) runsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "List recorded run identifiers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.store()
			if err != nil {
				return fmt.Errorf("open snapshot store: %w", err)
			}
			defer store.Close()
			ids, err := store.Runs(cmd.Context())
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(a.stdout, id)
			}
			return nil
		},
	}
}

func (a *app) printSummary(s scenario.Summary, asJSON bool) error {
	if !asJSON {
		return s.Write(a.stdout)
	}
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

func loadScenario(path string) (*config.Scenario, error) {
	path, err := config.ResolvePath(path)
	if err != nil {
		return nil, err
	}
	return config.Load(path)
}
