// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
)

// stubService implements suture.Service for tree tests.
type stubService struct {
	name       string
	startCount atomic.Int32
	failFirst  int32
	err        error
}

func newStubService(name string) *stubService {
	return &stubService{name: name}
}

func (s *stubService) Serve(ctx context.Context) error {
	n := s.startCount.Add(1)
	if n <= s.failFirst {
		return errors.New("simulated failure")
	}
	if s.err != nil {
		return s.err
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *stubService) String() string {
	return s.name
}
