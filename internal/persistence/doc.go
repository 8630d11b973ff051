// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package persistence writes position records to the external location store.

Writes are fire-and-forget: the relay hands a record to the Dispatcher,
which queues it and returns immediately. A fixed pool of workers drains the
queue through a Writer chain:

	Dispatcher -> CircuitBreakerWriter -> HTTPWriter -> POST <store URL>

A full queue drops the record. A failed write is logged and counted, never
retried. While the store keeps failing the circuit breaker opens and writes
are rejected locally until the open timeout elapses.

The request body is the store's node record:

	{"node_name":"alice","floor_no":1,"pos_x":1.5,"pos_y":0,"pos_z":-2,
	 "static_ids":"AR_SESSION","created_by":"alice@example.com"}
*/
package persistence
