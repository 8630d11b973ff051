// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package models

import "time"

// APIResponse is the envelope returned by the relay's HTTP endpoints.
//
//	{
//	  "status": "success",
//	  "data": {"connections": 3, "registered": 2},
//	  "metadata": {"timestamp": "2026-10-15T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
}

// APIError is a machine-readable error code plus a human-readable message.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RelayStats is a point-in-time view of the relay's connection table.
type RelayStats struct {
	Connections int `json:"connections"`
	Registered  int `json:"registered"`
}

// HealthStatus is returned by the health endpoints.
type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}
