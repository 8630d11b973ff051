// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package main is the entry point for the Waypoint presence relay.

The relay accepts WebSocket connections from AR wayfinding devices, keeps a
registry of identified connections and forwards every location update to
all other identified peers. Each update is also handed to a bounded queue
that posts it to the location store without delaying the broadcast.

# Application Architecture

	RootSupervisor ("waypoint-relay")
	├── DataSupervisor ("data-layer")
	│   └── persistence-dispatcher
	├── MessagingSupervisor ("messaging-layer")
	│   └── presence-relay
	└── APISupervisor ("api-layer")
	    └── http-server (chi router)

Startup order:

 1. .env file (optional) via godotenv
 2. Configuration: koanf v2 with defaults, config file and environment
 3. Logging: zerolog with JSON or console output
 4. Location store writer with circuit breaker, or a discarding writer
 5. Registry, relay and WebSocket acceptor
 6. Chi router: /, /ws, /health/*, /stats, /metrics
 7. Listener bound before the supervisor starts
 8. Supervisor tree until SIGINT or SIGTERM

# Example Usage

	export PORT=8080
	export PERSISTENCE_URL=http://graph:7474/nodes
	export RELAY_ALLOWED_ORIGINS=https://app.example.com
	./waypoint-relay

Without PERSISTENCE_URL updates are relayed but not stored.
*/
package main
