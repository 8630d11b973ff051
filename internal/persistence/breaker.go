// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package persistence

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/metrics"
	"github.com/tomtom215/waypoint/internal/models"
)

// BreakerSettings configures a CircuitBreakerWriter.
type BreakerSettings struct {
	Name string

	// MinRequests is the number of requests in the measurement window
	// before the failure ratio is considered.
	MinRequests uint32

	// FailureRatio at or above which the circuit opens.
	FailureRatio float64

	// Interval is the closed-state measurement window.
	Interval time.Duration

	// OpenTimeout is how long the circuit stays open before probing.
	OpenTimeout time.Duration

	// HalfOpenRequests is the number of trial requests allowed while half-open.
	HalfOpenRequests uint32
}

// DefaultBreakerSettings opens after a 60% failure rate over at least
// 10 requests and retries after 30 seconds.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Name:             "location-store",
		MinRequests:      10,
		FailureRatio:     0.6,
		Interval:         time.Minute,
		OpenTimeout:      30 * time.Second,
		HalfOpenRequests: 3,
	}
}

// CircuitBreakerWriter wraps a Writer with a circuit breaker so an
// unreachable store stops receiving requests until it recovers.
type CircuitBreakerWriter struct {
	next Writer
	cb   *gobreaker.CircuitBreaker[struct{}]
	name string
}

// NewCircuitBreakerWriter wraps next.
func NewCircuitBreakerWriter(next Writer, s BreakerSettings) *CircuitBreakerWriter {
	name := s.Name
	if name == "" {
		name = DefaultBreakerSettings().Name
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: s.HalfOpenRequests,
		Interval:    s.Interval,
		Timeout:     s.OpenTimeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= s.FailureRatio

			if shouldTrip {
				logging.Warn().
					Str("breaker", name).
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}

			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()

			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &CircuitBreakerWriter{next: next, cb: cb, name: name}
}

// Write implements Writer. While the circuit is open it fails fast with an
// error wrapping gobreaker.ErrOpenState.
func (w *CircuitBreakerWriter) Write(ctx context.Context, rec models.PositionRecord) error {
	_, err := w.cb.Execute(func() (struct{}, error) {
		return struct{}{}, w.next.Write(ctx, rec)
	})

	if err != nil {
		if IsRejected(err) {
			metrics.CircuitBreakerRequests.WithLabelValues(w.name, "rejected").Inc()
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(w.name, "failure").Inc()
			counts := w.cb.Counts()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(w.name).Set(float64(counts.ConsecutiveFailures))
		}
		return err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(w.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(w.name).Set(0)
	return nil
}

// State returns the breaker state as "closed", "half-open" or "open".
func (w *CircuitBreakerWriter) State() string {
	return stateToString(w.cb.State())
}

// IsRejected reports whether err came from an open or saturated circuit
// rather than from the store.
func IsRejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
