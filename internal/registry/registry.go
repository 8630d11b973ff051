// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package registry

import (
	"sync"

	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/models"
)

// Connection is a live bidirectional channel to one peer.
type Connection interface {
	ID() string
	Send(data []byte) error
	Close() error
}

// BroadcastResult reports the outcome of a fanout.
type BroadcastResult struct {
	Delivered int
	Failed    int
}

// Registry maps identities to connections.
type Registry struct {
	mu         sync.RWMutex
	byIdentity map[models.Identity]Connection
	byConn     map[Connection]models.Identity
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		byIdentity: make(map[models.Identity]Connection),
		byConn:     make(map[Connection]models.Identity),
	}
}

// Register binds identity to conn and returns the connection it replaced,
// if any. The identity is normalized first. A connection re-registering
// under a new identity releases its previous one.
func (r *Registry) Register(identity models.Identity, conn Connection) (previous Connection) {
	identity = models.NormalizeIdentity(identity.String())
	if identity.IsZero() || conn == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.byConn[conn]; ok && old != identity {
		if r.byIdentity[old] == conn {
			delete(r.byIdentity, old)
		}
	}

	previous = r.byIdentity[identity]
	if previous == conn {
		previous = nil
	}
	if previous != nil {
		delete(r.byConn, previous)
	}

	r.byIdentity[identity] = conn
	r.byConn[conn] = identity
	return previous
}

// Unregister removes conn. It is a no-op if conn is unknown or has been
// superseded. Reports whether an entry was removed.
func (r *Registry) Unregister(conn Connection) bool {
	if conn == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	identity, ok := r.byConn[conn]
	if !ok {
		return false
	}
	delete(r.byConn, conn)
	if r.byIdentity[identity] == conn {
		delete(r.byIdentity, identity)
	}
	return true
}

// Lookup returns the connection currently bound to identity.
func (r *Registry) Lookup(identity models.Identity) (Connection, bool) {
	identity = models.NormalizeIdentity(identity.String())

	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.byIdentity[identity]
	return conn, ok
}

// Count returns the number of registered identities.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byIdentity)
}

// BroadcastExcept sends data to every registered connection other than
// origin. origin may be nil.
func (r *Registry) BroadcastExcept(origin Connection, data []byte) BroadcastResult {
	targets := r.snapshot(origin)

	var result BroadcastResult
	for _, conn := range targets {
		if err := conn.Send(data); err != nil {
			result.Failed++
			logging.Debug().
				Err(err).
				Str("conn_id", conn.ID()).
				Msg("Broadcast delivery failed")
			continue
		}
		result.Delivered++
	}
	return result
}

func (r *Registry) snapshot(exclude Connection) []Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	targets := make([]Connection, 0, len(r.byIdentity))
	for _, conn := range r.byIdentity {
		if conn == exclude {
			continue
		}
		targets = append(targets, conn)
	}
	return targets
}
