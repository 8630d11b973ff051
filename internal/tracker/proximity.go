// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package tracker

import "fmt"

// Proximity buckets a distance to a destination, in meters.
type Proximity int

const (
	ProximityFar Proximity = iota
	ProximityNear
	ProximityArrived
)

const (
	// ArrivalRadius is the distance at or under which the destination
	// counts as reached.
	ArrivalRadius = 0.5

	// NearRadius separates near from far.
	NearRadius = 2.0
)

// Classify buckets distance.
func Classify(distance float64) Proximity {
	switch {
	case distance <= ArrivalRadius:
		return ProximityArrived
	case distance <= NearRadius:
		return ProximityNear
	default:
		return ProximityFar
	}
}

func (p Proximity) String() string {
	switch p {
	case ProximityFar:
		return "far"
	case ProximityNear:
		return "near"
	case ProximityArrived:
		return "arrived"
	default:
		return fmt.Sprintf("Proximity(%d)", int(p))
	}
}
