// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/waypoint/internal/models"
	"github.com/tomtom215/waypoint/internal/persistence"
)

// RelayStatus is the part of the relay the handlers read.
type RelayStatus interface {
	Stats() models.RelayStats
	Running() bool
}

// QueueStatus reports the persistence dispatcher's counters.
type QueueStatus interface {
	Stats() persistence.DispatcherStats
}

// Handler serves the relay's JSON endpoints.
type Handler struct {
	relay     RelayStatus
	queue     QueueStatus
	version   string
	startTime time.Time
}

// NewHandler creates a handler. queue may be nil when persistence is
// disabled.
func NewHandler(relay RelayStatus, queue QueueStatus, version string) *Handler {
	return &Handler{
		relay:     relay,
		queue:     queue,
		version:   version,
		startTime: time.Now(),
	}
}

// statsResponse flattens the relay counts and adds the persistence queue.
type statsResponse struct {
	models.RelayStats
	Persistence *persistence.DispatcherStats `json:"persistence,omitempty"`
}

// Stats returns the live connection and registration counts.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	resp := statsResponse{RelayStats: h.relay.Stats()}
	if h.queue != nil {
		qs := h.queue.Stats()
		resp.Persistence = &qs
	}
	respondSuccess(w, http.StatusOK, resp)
}

// NotFound answers unknown routes with the JSON envelope.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, ErrCodeNotFound, "Not found")
}

// MethodNotAllowed answers known routes called with the wrong method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
}
