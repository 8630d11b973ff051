// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

// Package services provides suture.Service wrappers for Waypoint components.
//
// Each wrapper adapts a long-running component to the suture.Service
// interface (Serve(ctx) error) so it can be supervised with automatic
// restart on failure.
//
// # Available Services
//
//   - HTTPServerService: serves the chi router on a pre-bound listener
//   - RunnerService: wraps any component with RunWithContext(ctx) error.
//     Named constructors exist for the presence relay, the persistence
//     dispatcher, the presence client and the position reporter.
//
// # Terminal Errors
//
// A presence client that was stopped explicitly returns client.ErrStopped.
// NewPresenceClientService maps it to suture.ErrDoNotRestart so the
// supervisor leaves it down.
package services
