// Package metrics exports service operation outcomes and tank state as
// Prometheus collectors.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"aquacore/pkg/domain"
)

const namespace = "aquacore"

// Recorder aggregates per-operation counters and durations plus the last
// observed status of each tank.
type Recorder struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	durations  *prometheus.HistogramVec
	properties *prometheus.GaugeVec
	flags      *prometheus.GaugeVec
}

// NewRecorder registers the collectors on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Service operations by outcome.",
		}, []string{"operation", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"operation"}),
		properties: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tank_property",
			Help:      "Last observed numeric tank property.",
		}, []string{"tank", "property"}),
		flags: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tank_flag",
			Help:      "Last observed tank flag (1 set, 0 clear).",
		}, []string{"tank", "flag"}),
	}
	r.registry.MustRegister(r.operations, r.durations, r.properties, r.flags)
	return r
}

// Registry exposes the underlying registry for scraping or tests.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// WriteTextfile dumps the registry to path in the text exposition format, for
// runs too short to be scraped.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}

// Observe records a service operation outcome.
func (r *Recorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.operations.WithLabelValues(operation, status).Inc()
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveStatus publishes every numeric and boolean entry of s under tank.
func (r *Recorder) ObserveStatus(tank string, s domain.Status) {
	for _, key := range s.Keys() {
		if v, ok := s.Float(key); ok {
			r.properties.WithLabelValues(tank, key).Set(v)
			continue
		}
		if b, ok := s.Bool(key); ok {
			v := 0.0
			if b {
				v = 1
			}
			r.flags.WithLabelValues(tank, key).Set(v)
		}
	}
}
