// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package client

import (
	"context"
	"time"

	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/models"
)

const (
	DefaultReportInterval = time.Second

	// reportPrecision is the number of decimal places sent per coordinate.
	reportPrecision = 4
)

// PositionSource supplies the device's current position. ok is false while
// no fix is available.
type PositionSource interface {
	CurrentPosition() (pos models.Position, floor int, ok bool)
}

// PositionSourceFunc adapts a function to PositionSource.
type PositionSourceFunc func() (models.Position, int, bool)

// CurrentPosition calls f.
func (f PositionSourceFunc) CurrentPosition() (models.Position, int, bool) {
	return f()
}

// PositionSender is the part of Client the Reporter needs.
type PositionSender interface {
	SendPositionUpdate(pos models.Position, floor int) bool
}

// Reporter periodically sends the device position.
type Reporter struct {
	sender   PositionSender
	source   PositionSource
	interval time.Duration
}

// NewReporter creates a reporter. A zero interval uses DefaultReportInterval.
func NewReporter(sender PositionSender, source PositionSource, interval time.Duration) *Reporter {
	if interval <= 0 {
		interval = DefaultReportInterval
	}
	return &Reporter{sender: sender, source: source, interval: interval}
}

// RunWithContext reports on every tick until ctx is canceled.
func (r *Reporter) RunWithContext(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	logging.Debug().Dur("interval", r.interval).Msg("Position reporter started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.report()
		}
	}
}

func (r *Reporter) report() {
	pos, floor, ok := r.source.CurrentPosition()
	if !ok || !pos.IsFinite() {
		return
	}
	r.sender.SendPositionUpdate(pos.Rounded(reportPrecision), floor)
}
