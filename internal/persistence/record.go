// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package persistence

import (
	"github.com/tomtom215/waypoint/internal/models"
	"github.com/tomtom215/waypoint/internal/protocol"
)

// NodeRecord is the body the location store accepts.
type NodeRecord struct {
	NodeName  string  `json:"node_name"`
	FloorNo   int     `json:"floor_no"`
	PosX      float64 `json:"pos_x"`
	PosY      float64 `json:"pos_y"`
	PosZ      float64 `json:"pos_z"`
	StaticIDs string  `json:"static_ids"`
	CreatedBy string  `json:"created_by"`
}

// NewNodeRecord maps a position record onto the store's schema. The node
// name is the display name, or the identity's local part when none was given.
//
// Floor is copied as-is. A missing floor was already replaced with
// models.DefaultFloor when the update was decoded, so an explicit 0 is a
// real ground floor and is stored as floor_no 0, not coerced to 1.
func NewNodeRecord(rec models.PositionRecord) NodeRecord {
	return NodeRecord{
		NodeName:  rec.DisplayName(),
		FloorNo:   rec.Floor,
		PosX:      rec.Position.X,
		PosY:      rec.Position.Y,
		PosZ:      rec.Position.Z,
		StaticIDs: protocol.StaticSessionID,
		CreatedBy: rec.Identity.String(),
	}
}
