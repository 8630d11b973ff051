// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package protocol

import (
	"fmt"
	"time"

	"github.com/tomtom215/waypoint/internal/models"
)

// ServerMessage is a message sent by the relay to a presence client.
// It is implemented only by PositionUpdate and Pong.
type ServerMessage interface {
	Type() MessageType
	serverMessage()
}

// PositionUpdate announces another participant's position.
type PositionUpdate struct {
	Identity  models.Identity
	Position  models.Position
	Floor     int
	Timestamp time.Time
}

// Pong answers a Ping.
type Pong struct{}

func (PositionUpdate) Type() MessageType { return TypePositionUpdate }
func (Pong) Type() MessageType           { return TypePong }

func (PositionUpdate) serverMessage() {}
func (Pong) serverMessage()           {}

// positionUpdateFrame fixes the field order of position_update on the wire.
type positionUpdateFrame struct {
	Type      MessageType     `json:"type"`
	Email     string          `json:"email"`
	Position  models.Position `json:"position"`
	Floor     int             `json:"floor"`
	Timestamp string          `json:"timestamp"`
}

// EncodePositionUpdate builds the position_update frame broadcast for rec.
func EncodePositionUpdate(rec models.PositionRecord) []byte {
	return encode(positionUpdateFrame{
		Type:      TypePositionUpdate,
		Email:     rec.Identity.String(),
		Position:  rec.Position,
		Floor:     rec.Floor,
		Timestamp: formatTimestamp(rec.Timestamp),
	})
}

// EncodePong builds a pong frame.
func EncodePong() []byte {
	return encode(frame{Type: TypePong})
}

// DecodeServerMessage parses one relay frame on the client side.
func DecodeServerMessage(data []byte) (ServerMessage, error) {
	f, err := decodeFrame(data)
	if err != nil {
		return nil, err
	}

	switch f.Type {
	case TypePong:
		return Pong{}, nil

	case TypePositionUpdate:
		identity := models.NormalizeIdentity(f.Email)
		if identity.IsZero() {
			return nil, fmt.Errorf("%w: position_update without email", ErrInvalidPayload)
		}
		pos, err := f.position()
		if err != nil {
			return nil, err
		}
		var ts time.Time
		if f.Timestamp != "" {
			ts, err = time.Parse(time.RFC3339Nano, f.Timestamp)
			if err != nil {
				return nil, fmt.Errorf("%w: timestamp: %v", ErrInvalidPayload, err)
			}
		}
		return PositionUpdate{Identity: identity, Position: pos, Floor: f.floor(), Timestamp: ts}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, f.Type)
	}
}
