// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package services

import (
	"context"
	"errors"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/waypoint/internal/client"
)

// ContextRunner is any component that runs until its context is canceled.
//
// Satisfied by:
//   - *relay.Relay
//   - *persistence.Dispatcher
//   - *client.Client
//   - *client.Reporter
type ContextRunner interface {
	RunWithContext(ctx context.Context) error
}

// RunnerService wraps a ContextRunner as a supervised service.
//
// The runner's RunWithContext already follows the suture.Service pattern,
// so this wrapper delegates to it and provides a name for logging.
//
// Example usage:
//
//	r := relay.New(registry.New(), dispatcher)
//	tree.AddMessagingService(services.NewRelayService(r))
type RunnerService struct {
	runner ContextRunner
	name   string

	// terminal, when matched, tells the supervisor not to restart.
	terminal error
}

// NewRunnerService wraps runner under name.
func NewRunnerService(name string, runner ContextRunner) *RunnerService {
	return &RunnerService{runner: runner, name: name}
}

// NewRelayService supervises the presence relay.
func NewRelayService(r ContextRunner) *RunnerService {
	return NewRunnerService("presence-relay", r)
}

// NewPersistenceService supervises the location store dispatcher.
func NewPersistenceService(d ContextRunner) *RunnerService {
	return NewRunnerService("persistence-dispatcher", d)
}

// NewPresenceClientService supervises a presence client. Once the client
// has been stopped for good it is not restarted.
func NewPresenceClientService(c ContextRunner) *RunnerService {
	svc := NewRunnerService("presence-client", c)
	svc.terminal = client.ErrStopped
	return svc
}

// NewReporterService supervises the position reporter.
func NewReporterService(r ContextRunner) *RunnerService {
	return NewRunnerService("position-reporter", r)
}

// Serve implements suture.Service.
func (s *RunnerService) Serve(ctx context.Context) error {
	err := s.runner.RunWithContext(ctx)
	if s.terminal != nil && errors.Is(err, s.terminal) {
		return suture.ErrDoNotRestart
	}
	return err
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (s *RunnerService) String() string {
	return s.name
}
