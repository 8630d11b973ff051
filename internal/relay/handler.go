// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package relay

import "github.com/tomtom215/waypoint/internal/websocket"

// Handler adapts a Relay to websocket.Handler.
type Handler struct {
	relay *Relay
}

// NewHandler returns a websocket.Handler that feeds r.
func NewHandler(r *Relay) *Handler {
	return &Handler{relay: r}
}

// HandleOpen implements websocket.Handler.
func (h *Handler) HandleOpen(c *websocket.Conn) { h.relay.Open(c) }

// HandleMessage implements websocket.Handler.
func (h *Handler) HandleMessage(c *websocket.Conn, data []byte) { h.relay.Receive(c, data) }

// HandleClose implements websocket.Handler.
func (h *Handler) HandleClose(c *websocket.Conn) { h.relay.Close(c) }
