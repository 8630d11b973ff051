// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package models

import (
	"math"
	"strings"
	"time"
)

// DefaultFloor is used when an update_location message omits the floor.
const DefaultFloor = 1

// Identity is a normalized user email. The zero value is the anonymous identity.
type Identity string

// NormalizeIdentity trims surrounding whitespace and lower-cases s.
func NormalizeIdentity(s string) Identity {
	return Identity(strings.ToLower(strings.TrimSpace(s)))
}

// String returns the identity as a plain string.
func (i Identity) String() string {
	return string(i)
}

// IsZero reports whether the identity is empty.
func (i Identity) IsZero() bool {
	return i == ""
}

// LocalPart returns the portion before the first '@', or the whole identity if it has none.
func (i Identity) LocalPart() string {
	s := string(i)
	if at := strings.IndexByte(s, '@'); at >= 0 {
		return s[:at]
	}
	return s
}

// Position is a 3D world-space position.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// IsFinite reports whether every coordinate is a finite real number.
func (p Position) IsFinite() bool {
	return isFinite(p.X) && isFinite(p.Y) && isFinite(p.Z)
}

// DistanceTo returns the Euclidean distance between p and q.
func (p Position) DistanceTo(q Position) float64 {
	dx, dy, dz := p.X-q.X, p.Y-q.Y, p.Z-q.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Rounded returns p with each coordinate rounded to the given number of decimal places.
func (p Position) Rounded(places int) Position {
	scale := math.Pow(10, float64(places))
	round := func(v float64) float64 { return math.Round(v*scale) / scale }
	return Position{X: round(p.X), Y: round(p.Y), Z: round(p.Z)}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// PositionRecord is a single location reading attributed to an identity.
// Timestamp is assigned by the relay at receipt time; client clocks are not trusted.
type PositionRecord struct {
	Identity  Identity
	Name      string // display name supplied by the client, may be empty
	Position  Position
	Floor     int
	Timestamp time.Time
}

// DisplayName returns Name, falling back to the identity's local part.
func (r PositionRecord) DisplayName() string {
	if name := strings.TrimSpace(r.Name); name != "" {
		return name
	}
	return r.Identity.LocalPart()
}
