// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import "errors"

// ErrNoRelayEndpoint is returned by NewRouter without a WebSocket handler.
var ErrNoRelayEndpoint = errors.New("api: relay endpoint handler is required")
