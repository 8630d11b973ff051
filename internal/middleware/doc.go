// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package middleware provides the HTTP middleware in front of the relay's
router: request ids, Prometheus instrumentation and access logging.

Every middleware has the chi signature func(http.Handler) http.Handler and
passes http.Hijacker through, so the WebSocket upgrade on the relay route
works behind the full stack.

Middleware Stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.AccessLog(time.Second))

Metrics are labeled with the chi route pattern rather than the raw path, so
unknown paths cannot grow label cardinality.
*/
package middleware
