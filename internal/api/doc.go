// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package api provides the relay's HTTP surface using the Chi router.

Routes:

	GET /             WebSocket upgrade to the presence relay
	GET /ws           same endpoint, explicit path
	GET /health/live  liveness check, 200 while the process runs
	GET /health/ready readiness check, 503 until the relay service is running
	GET /stats        connection and registration counts
	GET /metrics      Prometheus exposition

JSON endpoints answer with models.APIResponse. The upgrade routes are rate
limited per client IP with go-chi/httprate; the Origin policy is enforced by
the WebSocket acceptor itself.
*/
package api
