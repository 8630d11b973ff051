// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

// Package protocol implements the presence wire format: one JSON object per
// WebSocket text frame, discriminated by its "type" field.
//
//	→ {"type":"register","email":"<identity>"}
//	→ {"type":"update_location","email":"<identity>","name":"<display name>","position":{"x":1,"y":2,"z":3},"floor":4}
//	→ {"type":"ping"}
//	← {"type":"pong"}
//	← {"type":"position_update","email":"<identity>","position":{"x":1,"y":2,"z":3},"floor":4,"timestamp":"<ISO-8601>"}
//
// The set of message types is closed. connect and disconnect are client-local
// lifecycle notifications and never appear on the wire.
package protocol

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/waypoint/internal/models"
)

// MessageType is the "type" tag of a presence message.
type MessageType string

const (
	TypeRegister       MessageType = "register"
	TypeUpdateLocation MessageType = "update_location"
	TypePing           MessageType = "ping"
	TypePong           MessageType = "pong"
	TypePositionUpdate MessageType = "position_update"
	TypeConnect        MessageType = "connect"
	TypeDisconnect     MessageType = "disconnect"
)

// TimestampLayout is the ISO-8601 layout used for position_update timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// StaticSessionID tags every persisted position written by the relay.
const StaticSessionID = "AR_SESSION"

// Decode errors. Every decode failure wraps exactly one of these.
var (
	ErrMalformed      = errors.New("malformed frame")
	ErrUnknownType    = errors.New("unknown message type")
	ErrInvalidPayload = errors.New("invalid message payload")
)

// AllTypes lists every message type, wire and local.
func AllTypes() []MessageType {
	return []MessageType{
		TypeRegister, TypeUpdateLocation, TypePing, TypePong,
		TypePositionUpdate, TypeConnect, TypeDisconnect,
	}
}

// Known reports whether t is a member of the closed type set.
func (t MessageType) Known() bool {
	switch t {
	case TypeRegister, TypeUpdateLocation, TypePing, TypePong,
		TypePositionUpdate, TypeConnect, TypeDisconnect:
		return true
	}
	return false
}

// IsLocal reports whether t is a client-local lifecycle notification.
func (t MessageType) IsLocal() bool {
	return t == TypeConnect || t == TypeDisconnect
}

// frame is the union of every field any message may carry.
type frame struct {
	Type      MessageType      `json:"type"`
	Email     string           `json:"email,omitempty"`
	Name      string           `json:"name,omitempty"`
	Position  *models.Position `json:"position,omitempty"`
	Floor     *int             `json:"floor,omitempty"`
	Timestamp string           `json:"timestamp,omitempty"`
}

func decodeFrame(data []byte) (*frame, error) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if f.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformed)
	}
	return &f, nil
}

func (f *frame) position() (models.Position, error) {
	if f.Position == nil {
		return models.Position{}, fmt.Errorf("%w: %s without position", ErrInvalidPayload, f.Type)
	}
	if !f.Position.IsFinite() {
		return models.Position{}, fmt.Errorf("%w: non-finite position", ErrInvalidPayload)
	}
	return *f.Position, nil
}

func (f *frame) floor() int {
	if f.Floor == nil {
		return models.DefaultFloor
	}
	return *f.Floor
}

func encode(v interface{}) []byte {
	// Every encoded type is a plain struct of strings and numbers.
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("protocol: encode %T: %v", v, err))
	}
	return data
}

func formatTimestamp(ts time.Time) string {
	return ts.UTC().Format(TimestampLayout)
}
