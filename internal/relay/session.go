// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package relay

import "github.com/tomtom215/waypoint/internal/models"

// State is the lifecycle position of one connection.
type State int

const (
	StateAnonymous State = iota
	StateRegistered
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateRegistered:
		return "registered"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// session is the relay's per-connection record. Guarded by Relay.mu.
type session struct {
	state    State
	identity models.Identity
}
