// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package main is the entry point for the headless Waypoint presence client.

It stands in for an AR device: it registers PRESENCE_EMAIL with the relay,
walks a rectangular loop on the ground floor, reports its position every
POSITION_INTERVAL and logs the peers it hears about together with their
distance and proximity band.

	RootSupervisor ("waypoint-client")
	├── DataSupervisor ("data-layer")
	└── MessagingSupervisor ("messaging-layer")
	    ├── presence-client
	    ├── position-reporter
	    └── peer-log

# Example Usage

	export RELAY_URL=ws://localhost:8080/ws
	export PRESENCE_EMAIL=ada@example.com
	export PRESENCE_NAME="Ada"
	./waypoint-client
*/
package main
