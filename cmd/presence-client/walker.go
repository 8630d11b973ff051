// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package main

import (
	"math"
	"sync"
	"time"

	"github.com/tomtom215/waypoint/internal/models"
)

// walker simulates a device walking a rectangular loop at constant speed.
// Y is height above the floor and stays at zero.
type walker struct {
	width, depth float64
	speed        float64 // metres per second
	floor        int

	mu    sync.Mutex
	start time.Time
	now   func() time.Time
}

func newWalker(width, depth, speed float64) *walker {
	return &walker{
		width: width,
		depth: depth,
		speed: speed,
		floor: models.DefaultFloor,
		start: time.Now(),
		now:   time.Now,
	}
}

// CurrentPosition implements client.PositionSource.
func (w *walker) CurrentPosition() (models.Position, int, bool) {
	w.mu.Lock()
	elapsed := w.now().Sub(w.start).Seconds()
	w.mu.Unlock()
	return w.at(elapsed * w.speed), w.floor, true
}

// at returns the point s metres along the loop, starting at the origin and
// heading along +X.
func (w *walker) at(s float64) models.Position {
	perimeter := 2 * (w.width + w.depth)
	if perimeter <= 0 {
		return models.Position{}
	}
	s = math.Mod(s, perimeter)
	if s < 0 {
		s += perimeter
	}
	switch {
	case s < w.width:
		return models.Position{X: s}
	case s < w.width+w.depth:
		return models.Position{X: w.width, Z: s - w.width}
	case s < 2*w.width+w.depth:
		return models.Position{X: w.width - (s - w.width - w.depth), Z: w.depth}
	default:
		return models.Position{Z: w.depth - (s - 2*w.width - w.depth)}
	}
}
