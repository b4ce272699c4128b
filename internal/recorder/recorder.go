// Package recorder keeps a change-only CSV log of a tank's status and stores
// it as a run artifact.
package recorder

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"aquacore/internal/blob"
	"aquacore/internal/core"
	"aquacore/pkg/domain"
)

// TimestampLayout is the layout of the timestamp column.
const TimestampLayout = "2006-01-02 15:04:05"

// Header is the first row of every log.
var Header = []string{"timestamp", "property", "value"}

// Source supplies the status to sample. core.Service satisfies it.
type Source interface {
	Status() domain.Status
}

// ErrRunning is returned by Start when the worker is already sampling.
var ErrRunning = errors.New("recorder already started")

// Option configures a Recorder.
type Option func(*Recorder)

// WithClock overrides the timestamp source of background samples.
func WithClock(clock core.Clock) Option {
	return func(r *Recorder) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithLogger sets the logger used by the background worker.
func WithLogger(logger core.Logger) Option {
	return func(r *Recorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Recorder writes a row per property whenever its formatted value differs
// from the last logged one. The first sample logs every property.
type Recorder struct {
	source Source
	store  blob.Store
	key    string
	clock  core.Clock
	logger core.Logger

	mu   sync.Mutex
	last map[string]string
	buf  bytes.Buffer
	w    *csv.Writer
	rows int

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New returns a recorder that samples source and stores the log at key.
func New(source Source, store blob.Store, key string, opts ...Option) (*Recorder, error) {
	if source == nil {
		return nil, fmt.Errorf("recorder: source is required")
	}
	if store == nil {
		return nil, fmt.Errorf("recorder: blob store is required")
	}
	if key == "" {
		return nil, fmt.Errorf("recorder: key is required")
	}
	r := &Recorder{
		source: source,
		store:  store,
		key:    key,
		clock:  core.ClockFunc(time.Now),
		logger: core.NewLogrusLogger(nil),
		last:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.w = csv.NewWriter(&r.buf)
	if err := r.w.Write(Header); err != nil {
		return nil, fmt.Errorf("recorder: write header: %w", err)
	}
	r.w.Flush()
	if err := r.w.Error(); err != nil {
		return nil, fmt.Errorf("recorder: write header: %w", err)
	}
	return r, nil
}

// Key returns the blob key the log is flushed to.
func (r *Recorder) Key() string { return r.key }

// Sample logs the properties that changed since the previous sample and
// returns the number of rows written. A property whose row could not be
// written is retried on the next sample.
func (r *Recorder) Sample(now time.Time) (int, error) {
	status := r.source.Status()
	r.mu.Lock()
	defer r.mu.Unlock()
	ts := now.Format(TimestampLayout)
	changed := make(map[string]string)
	for _, key := range status.Keys() {
		value := status.Format(key)
		if prev, seen := r.last[key]; seen && prev == value {
			continue
		}
		if err := r.w.Write([]string{ts, key, value}); err != nil {
			return 0, fmt.Errorf("write status row %s: %w", key, err)
		}
		changed[key] = value
	}
	r.w.Flush()
	if err := r.w.Error(); err != nil {
		return 0, fmt.Errorf("flush status rows: %w", err)
	}
	for key, value := range changed {
		r.last[key] = value
	}
	r.rows += len(changed)
	return len(changed), nil
}

// Rows returns the number of data rows logged so far.
func (r *Recorder) Rows() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows
}

// Bytes returns a copy of the CSV log including the header.
func (r *Recorder) Bytes() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]byte(nil), r.buf.Bytes()...)
}

// Flush writes the whole log to the blob store, replacing earlier flushes.
func (r *Recorder) Flush(ctx context.Context) (blob.Info, error) {
	r.mu.Lock()
	payload := append([]byte(nil), r.buf.Bytes()...)
	rows := r.rows
	r.mu.Unlock()
	info, err := r.store.Put(ctx, r.key, bytes.NewReader(payload), blob.PutOptions{
		ContentType: "text/csv",
		Metadata:    map[string]string{"rows": strconv.Itoa(rows)},
	})
	if err != nil {
		return blob.Info{}, fmt.Errorf("flush status log %s: %w", r.key, err)
	}
	return info, nil
}

// Start samples once immediately and then every interval until Stop.
func (r *Recorder) Start(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("recorder: interval must be positive, got %s", interval)
	}
	r.mu.Lock()
	if r.cancel != nil {
		r.mu.Unlock()
		return ErrRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.mu.Unlock()

	if _, err := r.Sample(r.clock.Now()); err != nil {
		cancel()
		r.mu.Lock()
		r.cancel = nil
		r.mu.Unlock()
		return err
	}
	r.wg.Add(1)
	go r.loop(ctx, interval)
	return nil
}

func (r *Recorder) loop(ctx context.Context, interval time.Duration) {
	defer r.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := r.Sample(r.clock.Now())
			if err != nil {
				r.logger.Warn("status sample failed", "key", r.key, "error", err)
				continue
			}
			if n > 0 {
				r.logger.Debug("status sampled", "key", r.key, "rows", n)
			}
		}
	}
}

// Stop halts the worker, takes a final sample and flushes the log. It waits
// for the worker at most until ctx is done.
func (r *Recorder) Stop(ctx context.Context) error {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()
	if cancel != nil {
		cancel()
		done := make(chan struct{})
		go func() {
			r.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	_, sampleErr := r.Sample(r.clock.Now())
	info, err := r.Flush(ctx)
	if err != nil {
		r.logger.Error("status log flush failed", "key", r.key, "error", err)
		return errors.Join(sampleErr, err)
	}
	if sampleErr != nil {
		r.logger.Warn("final status sample failed", "key", r.key, "error", sampleErr)
		return sampleErr
	}
	r.logger.Info("status log stored", "key", info.Key, "bytes", info.Size)
	return nil
}
