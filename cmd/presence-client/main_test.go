// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package main

import (
	"bytes"
	"io"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/models"
	"github.com/tomtom215/waypoint/internal/protocol"
	"github.com/tomtom215/waypoint/internal/tracker"
)

func init() {
	logging.Init(logging.Config{Level: "error", Format: "json", Output: io.Discard})
}

func TestWalker_At(t *testing.T) {
	w := newWalker(12, 8, 1)

	tests := []struct {
		name string
		s    float64
		want models.Position
	}{
		{"start", 0, models.Position{}},
		{"first leg", 5, models.Position{X: 5}},
		{"first corner", 12, models.Position{X: 12}},
		{"second leg", 15, models.Position{X: 12, Z: 3}},
		{"third leg", 24, models.Position{X: 8, Z: 8}},
		{"fourth leg", 36, models.Position{Z: 4}},
		{"wraps", 40, models.Position{}},
		{"wraps past start", 45, models.Position{X: 5}},
		{"negative", -4, models.Position{Z: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := w.at(tt.s)
			if got.DistanceTo(tt.want) > 1e-9 {
				t.Errorf("at(%v) = %+v, want %+v", tt.s, got, tt.want)
			}
		})
	}
}

func TestWalker_CurrentPositionAdvancesWithTime(t *testing.T) {
	w := newWalker(12, 8, 2)
	start := w.start
	w.now = func() time.Time { return start.Add(3 * time.Second) }

	pos, floor, ok := w.CurrentPosition()
	if !ok {
		t.Fatal("walker should always have a fix")
	}
	if floor != models.DefaultFloor {
		t.Errorf("floor = %d, want %d", floor, models.DefaultFloor)
	}
	if math.Abs(pos.X-6) > 1e-9 || pos.Y != 0 || pos.Z != 0 {
		t.Errorf("position = %+v, want X=6", pos)
	}
}

func TestWalker_DegenerateLoop(t *testing.T) {
	w := newWalker(0, 0, 1)
	if got := w.at(3); got != (models.Position{}) {
		t.Errorf("at() = %+v, want origin", got)
	}
}

func TestPeerLog_LogsDistanceAndPrunes(t *testing.T) {
	var buf bytes.Buffer
	logging.Init(logging.Config{Level: "debug", Format: "json", Output: &buf})
	defer logging.Init(logging.Config{Level: "error", Format: "json", Output: io.Discard})

	peers := tracker.New()
	peers.Observe(protocol.PositionUpdate{
		Identity:  "grace@example.com",
		Position:  models.Position{X: 1.5},
		Floor:     models.DefaultFloor,
		Timestamp: time.Now(),
	})
	peers.Observe(protocol.PositionUpdate{
		Identity:  "old@example.com",
		Position:  models.Position{X: 3},
		Floor:     models.DefaultFloor,
		Timestamp: time.Now().Add(-2 * time.Hour),
	})

	self := newWalker(12, 8, 0)
	newPeerLog(peers, self).log()

	out := buf.String()
	if !strings.Contains(out, `"peer":"grace@example.com"`) {
		t.Errorf("expected peer in log, got %s", out)
	}
	if !strings.Contains(out, `"proximity":"near"`) {
		t.Errorf("expected near proximity, got %s", out)
	}
	if strings.Contains(out, `"peer":"old@example.com"`) {
		t.Errorf("stale peer should have been pruned, got %s", out)
	}
	if _, ok := peers.Get("old@example.com"); ok {
		t.Error("stale peer still tracked")
	}
}
