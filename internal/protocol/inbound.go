// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package protocol

import (
	"fmt"
	"strings"

	"github.com/tomtom215/waypoint/internal/models"
)

// Inbound is a message sent by a presence client to the relay.
// It is implemented only by Register, UpdateLocation and Ping.
type Inbound interface {
	Type() MessageType
	inbound()
}

// Register claims an identity for the sending connection.
type Register struct {
	Email string
}

// UpdateLocation reports the sender's current position. Email is informational;
// the relay attributes the update to the identity registered on the connection.
type UpdateLocation struct {
	Email    string
	Name     string
	Position models.Position
	Floor    int
}

// Ping asks the relay for a pong.
type Ping struct{}

func (Register) Type() MessageType       { return TypeRegister }
func (UpdateLocation) Type() MessageType { return TypeUpdateLocation }
func (Ping) Type() MessageType           { return TypePing }

func (Register) inbound()       {}
func (UpdateLocation) inbound() {}
func (Ping) inbound()           {}

// Identity returns the normalized identity being claimed.
func (r Register) Identity() models.Identity {
	return models.NormalizeIdentity(r.Email)
}

// DecodeInbound parses one client frame. Server-only and local types are
// rejected with ErrUnknownType.
func DecodeInbound(data []byte) (Inbound, error) {
	f, err := decodeFrame(data)
	if err != nil {
		return nil, err
	}

	switch f.Type {
	case TypeRegister:
		if strings.TrimSpace(f.Email) == "" {
			return nil, fmt.Errorf("%w: register without email", ErrInvalidPayload)
		}
		return Register{Email: f.Email}, nil

	case TypeUpdateLocation:
		pos, err := f.position()
		if err != nil {
			return nil, err
		}
		return UpdateLocation{Email: f.Email, Name: f.Name, Position: pos, Floor: f.floor()}, nil

	case TypePing:
		return Ping{}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, f.Type)
	}
}

// EncodeRegister builds a register frame.
func EncodeRegister(identity models.Identity) []byte {
	return encode(frame{Type: TypeRegister, Email: identity.String()})
}

// EncodeUpdateLocation builds an update_location frame.
func EncodeUpdateLocation(msg UpdateLocation) []byte {
	pos := msg.Position
	floor := msg.Floor
	return encode(frame{
		Type:     TypeUpdateLocation,
		Email:    msg.Email,
		Name:     msg.Name,
		Position: &pos,
		Floor:    &floor,
	})
}

// EncodePing builds a ping frame.
func EncodePing() []byte {
	return encode(frame{Type: TypePing})
}
