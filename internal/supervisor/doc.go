// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package supervisor provides process supervision for Waypoint using suture v4.

Both binaries run their long-lived components under a three-layer tree with
automatic restart, failure isolation and graceful shutdown.

# Layout

	waypoint-relay
	├── data-layer
	│   └── persistence-dispatcher
	├── messaging-layer
	│   └── presence-relay
	└── api-layer
	    └── http-server

	waypoint-client
	├── data-layer
	└── messaging-layer
	    ├── presence-client
	    └── position-reporter

A failing location store restarts only the dispatcher. Live WebSocket
sessions stay up, and /health keeps answering while the relay restarts.

# Usage

	tree, err := supervisor.NewSupervisorTree("waypoint-relay", logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}
	tree.AddDataService(services.NewPersistenceService(dispatcher))
	tree.AddMessagingService(services.NewRelayService(relay))
	tree.AddAPIService(services.NewHTTPServerService(server, ln, 10*time.Second))

	errCh := tree.ServeBackground(ctx)
	<-ctx.Done()
	<-errCh

Supervisor events (start, failure, backoff, restart) are logged through
sutureslog onto the zerolog-backed slog logger.

See the services subpackage for the suture.Service wrappers.
*/
package supervisor
