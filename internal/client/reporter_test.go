// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package client

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/waypoint/internal/models"
)

type recordingSender struct {
	mu    sync.Mutex
	sent  []models.Position
	floor []int
}

func (s *recordingSender) SendPositionUpdate(pos models.Position, floor int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, pos)
	s.floor = append(s.floor, floor)
	return true
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func TestReporter_SendsRoundedPosition(t *testing.T) {
	sender := &recordingSender{}
	source := PositionSourceFunc(func() (models.Position, int, bool) {
		return models.Position{X: 1.234567, Y: -0.00004, Z: 9.87655}, 2, true
	})
	r := NewReporter(sender, source, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.RunWithContext(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for sender.count() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if sender.count() < 2 {
		t.Fatalf("expected periodic sends, got %d", sender.count())
	}
	sender.mu.Lock()
	got, floor := sender.sent[0], sender.floor[0]
	sender.mu.Unlock()

	want := models.Position{X: 1.2346, Y: 0, Z: 9.8766}
	if math.Abs(got.X-want.X) > 1e-9 || math.Abs(got.Y-want.Y) > 1e-9 || math.Abs(got.Z-want.Z) > 1e-9 {
		t.Errorf("expected %v, got %v", want, got)
	}
	if floor != 2 {
		t.Errorf("floor = %d", floor)
	}
}

func TestReporter_SkipsWithoutFix(t *testing.T) {
	sender := &recordingSender{}
	calls := 0
	source := PositionSourceFunc(func() (models.Position, int, bool) {
		calls++
		if calls%2 == 0 {
			return models.Position{X: math.NaN()}, 1, true
		}
		return models.Position{}, 0, false
	})
	r := NewReporter(sender, source, time.Millisecond)

	for i := 0; i < 4; i++ {
		r.report()
	}
	if sender.count() != 0 {
		t.Errorf("expected no sends without a valid fix, got %d", sender.count())
	}
}

func TestNewReporter_DefaultInterval(t *testing.T) {
	r := NewReporter(&recordingSender{}, PositionSourceFunc(func() (models.Position, int, bool) {
		return models.Position{}, 0, false
	}), 0)
	if r.interval != time.Second {
		t.Errorf("expected 1s default, got %v", r.interval)
	}
}
