// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package main

import (
	"context"
	"time"

	"github.com/tomtom215/waypoint/internal/client"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/tracker"
)

const (
	peerLogInterval = 5 * time.Second
	peerMaxAge      = time.Minute
)

// peerLog periodically logs known peers relative to the local position and
// forgets peers that went quiet.
type peerLog struct {
	tracker  *tracker.Tracker
	self     client.PositionSource
	interval time.Duration
	maxAge   time.Duration
}

func newPeerLog(t *tracker.Tracker, self client.PositionSource) *peerLog {
	return &peerLog{tracker: t, self: self, interval: peerLogInterval, maxAge: peerMaxAge}
}

// RunWithContext logs on every tick until ctx is canceled.
func (p *peerLog) RunWithContext(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.log()
		}
	}
}

func (p *peerLog) log() {
	if n := p.tracker.Prune(p.maxAge); n > 0 {
		logging.Debug().Int("count", n).Msg("Forgot silent peers")
	}

	here, floor, ok := p.self.CurrentPosition()
	for _, person := range p.tracker.People() {
		ev := logging.Info().
			Str("peer", person.Identity.String()).
			Int("floor", person.Floor).
			Time("last_seen", person.LastSeen)
		if ok && person.Floor == floor {
			d := here.DistanceTo(person.Position)
			ev = ev.Float64("distance_m", d).Str("proximity", tracker.Classify(d).String())
		}
		ev.Msg("Peer")
	}
}
