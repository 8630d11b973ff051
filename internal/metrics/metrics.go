// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the presence relay:
// - HTTP API latency and throughput
// - WebSocket connection and frame counts
// - Presence registration and broadcast fanout
// - Persistence queue and writer outcomes
// - Circuit breaker state

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of requests rejected by rate limiting",
		},
		[]string{"endpoint"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSMessagesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_received_total",
			Help: "Total number of WebSocket messages received",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"}, // "send_timeout", "write", "read", "upgrade"
	)

	// Presence Metrics
	PresenceRegistered = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "presence_registered_identities",
			Help: "Current number of identities bound to a live connection",
		},
	)

	PresenceRegistrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "presence_registrations_total",
			Help: "Total number of register frames accepted",
		},
		[]string{"outcome"}, // "new", "superseded", "repeat"
	)

	PresenceFrames = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "presence_frames_total",
			Help: "Total number of inbound frames by message type",
		},
		[]string{"type"},
	)

	PresenceFramesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "presence_frames_rejected_total",
			Help: "Total number of inbound frames dropped without effect",
		},
		[]string{"reason"}, // "malformed", "unknown_type", "invalid_payload", "unregistered"
	)

	PresenceBroadcastDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "presence_broadcast_deliveries_total",
			Help: "Total number of position_update deliveries by result",
		},
		[]string{"result"}, // "delivered", "failed"
	)

	PresenceBroadcastDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "presence_broadcast_duration_seconds",
			Help:    "Time spent fanning out one position update",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5},
		},
	)

	// Persistence Metrics
	PersistenceSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "persistence_submitted_total",
			Help: "Total number of position records queued for persistence",
		},
	)

	PersistenceDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "persistence_dropped_total",
			Help: "Total number of position records dropped before a write",
		},
		[]string{"reason"}, // "queue_full", "stopped"
	)

	PersistenceWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "persistence_writes_total",
			Help: "Total number of persistence writes by result",
		},
		[]string{"result"}, // "success", "failure", "rejected"
	)

	PersistenceWriteDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "persistence_write_duration_seconds",
			Help:    "Duration of persistence writes in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	PersistenceQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "persistence_queue_depth",
			Help: "Current number of records waiting in the persistence queue",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Application Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordFrame counts an accepted inbound frame.
func RecordFrame(messageType string) {
	PresenceFrames.WithLabelValues(messageType).Inc()
}

// RecordRejectedFrame counts an inbound frame that had no effect.
func RecordRejectedFrame(reason string) {
	PresenceFramesRejected.WithLabelValues(reason).Inc()
}

// RecordBroadcast records the outcome of one fanout.
func RecordBroadcast(delivered, failed int, duration time.Duration) {
	PresenceBroadcastDeliveries.WithLabelValues("delivered").Add(float64(delivered))
	PresenceBroadcastDeliveries.WithLabelValues("failed").Add(float64(failed))
	PresenceBroadcastDuration.Observe(duration.Seconds())
}

// RecordPersistenceWrite records one writer call. Calls rejected by an open
// circuit are counted separately from failures that reached the store.
func RecordPersistenceWrite(duration time.Duration, err error, rejected bool) {
	switch {
	case rejected:
		PersistenceWrites.WithLabelValues("rejected").Inc()
		return
	case err != nil:
		PersistenceWrites.WithLabelValues("failure").Inc()
	default:
		PersistenceWrites.WithLabelValues("success").Inc()
	}
	PersistenceWriteDuration.Observe(duration.Seconds())
}

// RecordPersistenceDrop counts a record that never reached the writer.
func RecordPersistenceDrop(reason string) {
	PersistenceDropped.WithLabelValues(reason).Inc()
}
