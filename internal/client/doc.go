// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package client implements the presence client: a single logical connection
to the relay that survives network loss.

The client runs one connection loop. After an unexpected close it waits the
reconnect interval (fixed, or growing by ReconnectMultiplier up to
MaxReconnectInterval) and dials again; there is never more than one pending
reconnect. Every successful dial replays the remembered identity as a
register frame, so presence resumes without caller involvement.

Inbound frames are decoded and handed to a Dispatcher, a publish/subscribe
table keyed by message type. Handlers run in registration order on the
connection goroutine; a panicking handler is logged and the rest still run.
The synthetic connect and disconnect events are dispatched locally and
never sent to the relay.

Usage:

	c := client.New(client.Config{URL: "ws://localhost:8080", Name: "Alice"})
	c.OnPositionUpdate(func(u protocol.PositionUpdate) {
	    log.Printf("%s is at %v", u.Identity, u.Position)
	})
	_ = c.RegisterIdentity("alice@example.com")
	c.Connect(ctx)
	defer c.Stop()

	c.SendPositionUpdate(models.Position{X: 1, Y: 0, Z: 2}, 1)

Sends are best-effort: while disconnected they are dropped, not queued.
*/
package client
