// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered on the default registry through promauto and
exposed at /metrics by the relay's HTTP router.

# Available Metrics

HTTP Metrics:
  - api_requests_total: Requests by method, route pattern and status code
  - api_request_duration_seconds: Request latency (histogram)
  - api_active_requests: In-flight requests (gauge)
  - api_rate_limit_hits_total: Requests rejected by httprate

WebSocket Metrics:
  - websocket_connections: Open connections (gauge)
  - websocket_messages_sent_total / websocket_messages_received_total
  - websocket_errors_total: Labelled by error_type

Presence Metrics:
  - presence_registered_identities: Identities bound to a connection (gauge)
  - presence_registrations_total: Labelled new, superseded or repeat
  - presence_frames_total: Accepted inbound frames by type
  - presence_frames_rejected_total: Dropped frames by reason
  - presence_broadcast_deliveries_total / presence_broadcast_duration_seconds

Persistence Metrics:
  - persistence_submitted_total, persistence_dropped_total
  - persistence_writes_total: success, failure or rejected (open circuit)
  - persistence_write_duration_seconds, persistence_queue_depth

Circuit Breaker Metrics:
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total, circuit_breaker_state_transitions_total

# Usage

	start := time.Now()
	res := registry.BroadcastExcept(origin, frame)
	metrics.RecordBroadcast(res.Delivered, res.Failed, time.Since(start))
*/
package metrics
