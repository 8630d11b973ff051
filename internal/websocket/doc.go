// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package websocket adapts gorilla/websocket connections for the presence relay.

Each accepted connection runs two goroutines:
  - readPump: reads frames and hands them to the Handler in arrival order
  - writePump: drains the bounded send queue and pings the peer every 54s

The read deadline is extended on every pong; a peer silent for 60s is
dropped. Send never blocks longer than the configured send timeout: a peer
that cannot keep up is disconnected instead of stalling a broadcast.

Usage:

	acceptor := websocket.NewAcceptor(relay, cfg.Relay.AllowedOrigins, websocket.Options{
	    SendQueue:   256,
	    SendTimeout: 250 * time.Millisecond,
	})
	router.Handle("/ws", acceptor)

The package holds no presence state; registration and fanout live in the
registry and relay packages.
*/
package websocket
