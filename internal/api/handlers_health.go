// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/waypoint/internal/models"
)

// HealthLive handles liveness check requests.
// Returns 200 OK if the process is alive, regardless of relay state.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"alive":   true,
		"version": h.version,
		"uptime":  time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles readiness check requests.
// Returns 200 OK only while the relay service is running and accepting
// sessions, 503 during startup and shutdown.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if !h.relay.Running() {
		respondJSON(w, http.StatusServiceUnavailable, &models.APIResponse{
			Status:   "not_ready",
			Data:     models.HealthStatus{Status: "not_ready", Version: h.version},
			Metadata: models.Metadata{Timestamp: time.Now().UTC()},
			Error:    &models.APIError{Code: ErrCodeNotReady, Message: "relay is not running"},
		})
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "ready",
		Data:     models.HealthStatus{Status: "ready", Version: h.version},
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	})
}
