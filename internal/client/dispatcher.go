// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package client

import (
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/protocol"
)

// Event is one dispatched message. Message is nil for the local connect and
// disconnect events.
type Event struct {
	Type    protocol.MessageType
	Message protocol.ServerMessage
}

// Handler receives events of the type it subscribed to.
type Handler func(Event)

// Subscription identifies one registered handler.
type Subscription struct {
	msgType protocol.MessageType
	id      uint64
}

// Type returns the message type the subscription listens to.
func (s Subscription) Type() protocol.MessageType {
	return s.msgType
}

type subscriber struct {
	id      uint64
	handler Handler
}

// Dispatcher routes events to handlers by message type.
type Dispatcher struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[protocol.MessageType][]subscriber
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		subs: make(map[protocol.MessageType][]subscriber),
	}
}

// Subscribe adds h for msgType. Handlers for a type run in the order they
// were subscribed. Subscribing to a type outside the protocol's set is an
// error.
func (d *Dispatcher) Subscribe(msgType protocol.MessageType, h Handler) (Subscription, error) {
	if !msgType.Known() {
		return Subscription{}, fmt.Errorf("subscribe %q: %w", msgType, protocol.ErrUnknownType)
	}
	if h == nil {
		return Subscription{}, fmt.Errorf("subscribe %q: nil handler", msgType)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	sub := Subscription{msgType: msgType, id: d.nextID}
	d.subs[msgType] = append(d.subs[msgType], subscriber{id: sub.id, handler: h})
	return sub, nil
}

// Unsubscribe removes the handler behind sub. Reports whether it was found.
func (d *Dispatcher) Unsubscribe(sub Subscription) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	list := d.subs[sub.msgType]
	for i, s := range list {
		if s.id != sub.id {
			continue
		}
		// Copy so in-flight dispatch snapshots are not mutated.
		next := make([]subscriber, 0, len(list)-1)
		next = append(next, list[:i]...)
		next = append(next, list[i+1:]...)
		if len(next) == 0 {
			delete(d.subs, sub.msgType)
		} else {
			d.subs[sub.msgType] = next
		}
		return true
	}
	return false
}

// Count returns the number of handlers subscribed to msgType.
func (d *Dispatcher) Count(msgType protocol.MessageType) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subs[msgType])
}

// Dispatch invokes every handler subscribed to ev.Type. Handlers added or
// removed during dispatch take effect on the next event.
func (d *Dispatcher) Dispatch(ev Event) {
	d.mu.RLock()
	handlers := d.subs[ev.Type]
	d.mu.RUnlock()

	for _, s := range handlers {
		d.invoke(s, ev)
	}
}

func (d *Dispatcher) invoke(s subscriber, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error().
				Str("type", string(ev.Type)).
				Uint64("subscription", s.id).
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("Recovered panic in message handler")
		}
	}()
	s.handler(ev)
}
