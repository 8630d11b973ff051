// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package models defines the data structures shared by the presence relay,
the persistence client and the presence client.

Key Components:

  - Identity: normalized, case-insensitive user email naming a presence participant
  - Position: a 3D world position (x, y, z) in scene units
  - PositionRecord: one timestamped position + floor reading attributed to an Identity
  - APIResponse: envelope for the relay's small HTTP surface (health, stats)

Identities are normalized (trimmed and lower-cased) at every boundary before they are
used as map keys; two identities differing only in case or surrounding whitespace are
the same participant.
*/
package models
