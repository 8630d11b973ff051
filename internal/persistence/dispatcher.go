// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package persistence

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/metrics"
	"github.com/tomtom215/waypoint/internal/models"
)

// ErrQueueFull is reported when a record is dropped because the queue is full.
var ErrQueueFull = errors.New("persistence: queue full")

const (
	DefaultQueueSize = 1024
	DefaultWorkers   = 4
)

// DispatcherConfig configures a Dispatcher.
type DispatcherConfig struct {
	QueueSize int
	Workers   int

	// RateLimit caps store writes per second across all workers.
	// Zero disables throttling.
	RateLimit float64

	// Timeout bounds each write. Zero uses DefaultTimeout.
	Timeout time.Duration
}

// DispatcherStats is a point-in-time view of the dispatcher.
type DispatcherStats struct {
	Pending   int    `json:"pending"`
	Submitted uint64 `json:"submitted"`
	Dropped   uint64 `json:"dropped"`
	Written   uint64 `json:"written"`
	Failed    uint64 `json:"failed"`
}

// Dispatcher decouples store writes from the caller. Submit never blocks;
// workers started by RunWithContext perform the writes.
type Dispatcher struct {
	writer  Writer
	queue   chan models.PositionRecord
	workers int
	timeout time.Duration
	limiter *rate.Limiter

	submitted atomic.Uint64
	dropped   atomic.Uint64
	written   atomic.Uint64
	failed    atomic.Uint64
}

// NewDispatcher creates a dispatcher writing through w.
func NewDispatcher(w Writer, cfg DispatcherConfig) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	d := &Dispatcher{
		writer:  w,
		queue:   make(chan models.PositionRecord, cfg.QueueSize),
		workers: cfg.Workers,
		timeout: cfg.Timeout,
	}
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		d.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return d
}

// Submit queues rec for writing. It returns false, and counts the drop,
// when the queue is full. It never blocks.
func (d *Dispatcher) Submit(rec models.PositionRecord) bool {
	select {
	case d.queue <- rec:
		d.submitted.Add(1)
		metrics.PersistenceSubmitted.Inc()
		metrics.PersistenceQueueDepth.Set(float64(len(d.queue)))
		return true
	default:
		d.dropped.Add(1)
		metrics.RecordPersistenceDrop("queue_full")
		logging.Warn().
			Err(ErrQueueFull).
			Str("identity", rec.Identity.String()).
			Int("capacity", cap(d.queue)).
			Msg("Dropping position record")
		return false
	}
}

// Stats returns the dispatcher counters.
func (d *Dispatcher) Stats() DispatcherStats {
	return DispatcherStats{
		Pending:   len(d.queue),
		Submitted: d.submitted.Load(),
		Dropped:   d.dropped.Load(),
		Written:   d.written.Load(),
		Failed:    d.failed.Load(),
	}
}

// RunWithContext runs the worker pool until ctx is canceled. Records still
// queued at shutdown are discarded.
func (d *Dispatcher) RunWithContext(ctx context.Context) error {
	var wg sync.WaitGroup
	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			d.worker(ctx, id)
		}(i)
	}

	log := logging.WithComponent("persistence-dispatcher")
	log.Info().Int("workers", d.workers).Int("queue_size", cap(d.queue)).Msg("Persistence dispatcher started")

	<-ctx.Done()
	wg.Wait()

	discarded := d.discardPending()
	log.Info().
		Str("reason", shutdownReason(ctx)).
		Int("discarded", discarded).
		Msg("Persistence dispatcher stopped")
	return ctx.Err()
}

func (d *Dispatcher) worker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case rec := <-d.queue:
			metrics.PersistenceQueueDepth.Set(float64(len(d.queue)))
			if d.limiter != nil {
				if err := d.limiter.Wait(ctx); err != nil {
					// Shutting down.
					d.dropped.Add(1)
					metrics.RecordPersistenceDrop("stopped")
					return
				}
			}
			d.write(ctx, id, rec)
		}
	}
}

// write performs one store write. Panics in the writer are contained here.
func (d *Dispatcher) write(ctx context.Context, worker int, rec models.PositionRecord) {
	start := time.Now()
	var err error

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in writer: %v", r)
			logging.Error().
				Int("worker", worker).
				Str("identity", rec.Identity.String()).
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("Recovered panic in persistence worker")
		}
		d.finish(rec, err, time.Since(start))
	}()

	writeCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	err = d.writer.Write(writeCtx, rec)
}

func (d *Dispatcher) finish(rec models.PositionRecord, err error, elapsed time.Duration) {
	rejected := err != nil && IsRejected(err)
	metrics.RecordPersistenceWrite(elapsed, err, rejected)

	if err == nil {
		d.written.Add(1)
		return
	}
	d.failed.Add(1)

	event := logging.Warn()
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		event = event.Int("status_code", statusErr.StatusCode)
	}
	if rejected {
		event = logging.Debug()
	}
	event.
		Err(err).
		Str("identity", rec.Identity.String()).
		Int("floor", rec.Floor).
		Dur("elapsed", elapsed).
		Msg("Failed to persist position record")
}

func (d *Dispatcher) discardPending() int {
	n := 0
	for {
		select {
		case <-d.queue:
			n++
		default:
			if n > 0 {
				d.dropped.Add(uint64(n))
				metrics.PersistenceDropped.WithLabelValues("stopped").Add(float64(n))
			}
			metrics.PersistenceQueueDepth.Set(0)
			return n
		}
	}
}

func shutdownReason(ctx context.Context) string {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "context_deadline"
	}
	return "context_canceled"
}
