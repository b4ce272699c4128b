// Package alerts publishes quality and rule alerts raised while a run executes.
package alerts

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// Alert is one warning raised against a tank during a run step.
type Alert struct {
	RunID    string    `json:"run_id"`
	Tank     string    `json:"tank"`
	Step     int       `json:"step"`
	Rule     string    `json:"rule"`
	Severity string    `json:"severity"`
	Property string    `json:"property,omitempty"`
	Message  string    `json:"message"`
	RaisedAt time.Time `json:"raised_at"`
}

// Sink receives alerts. Implementations must be safe for concurrent use.
type Sink interface {
	Publish(ctx context.Context, alerts []Alert) error
	Close() error
}

// MemorySink retains every published alert.
type MemorySink struct {
	mu     sync.Mutex
	alerts []Alert
}

// NewMemorySink returns an empty in-process sink.
func NewMemorySink() *MemorySink { return &MemorySink{} }

// Publish appends alerts in order.
func (m *MemorySink) Publish(_ context.Context, alerts []Alert) error {
	m.mu.Lock()
	m.alerts = append(m.alerts, alerts...)
	m.mu.Unlock()
	return nil
}

// Alerts returns a copy of everything published so far.
func (m *MemorySink) Alerts() []Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Alert, len(m.alerts))
	copy(out, m.alerts)
	return out
}

// Close implements Sink.
func (m *MemorySink) Close() error { return nil }

// Driver names an alert sink implementation.
type Driver string

const (
	DriverMemory Driver = "memory"
	DriverKafka  Driver = "kafka"
)

const defaultTopic = "aquacore.alerts"

// OpenFromEnv selects a sink from environment variables.
//
//	AQUACORE_ALERTS_DRIVER: memory|kafka (default memory)
//	AQUACORE_KAFKA_BROKERS: comma separated broker addresses (kafka)
//	AQUACORE_KAFKA_TOPIC: topic name (default aquacore.alerts)
func OpenFromEnv() (Sink, error) {
	driver := Driver(strings.ToLower(strings.TrimSpace(os.Getenv("AQUACORE_ALERTS_DRIVER"))))
	switch driver {
	case "", DriverMemory:
		return NewMemorySink(), nil
	case DriverKafka:
		var brokers []string
		for _, b := range strings.Split(os.Getenv("AQUACORE_KAFKA_BROKERS"), ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
		return NewKafkaSink(brokers, os.Getenv("AQUACORE_KAFKA_TOPIC"))
	default:
		return nil, fmt.Errorf("unknown alerts driver %s", driver)
	}
}
