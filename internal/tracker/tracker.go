// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

// Package tracker keeps the latest known position of every other user seen
// on a presence client, plus the one user the local operator has selected
// as a destination.
package tracker

import (
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/waypoint/internal/client"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/models"
	"github.com/tomtom215/waypoint/internal/protocol"
)

// Person is the latest known state of one remote user.
type Person struct {
	Identity models.Identity `json:"email"`
	Position models.Position `json:"position"`
	Floor    int             `json:"floor"`
	LastSeen time.Time       `json:"last_seen"`
}

// Tracker is safe for concurrent use.
type Tracker struct {
	mu        sync.RWMutex
	people    map[models.Identity]Person
	selected  models.Identity
	listeners []func(Person, bool)
	now       func() time.Time

	source *client.Client
	sub    client.Subscription
}

// New creates an empty tracker.
func New() *Tracker {
	return &Tracker{
		people: make(map[models.Identity]Person),
		now:    time.Now,
	}
}

// Attach subscribes the tracker to position updates from c. A tracker
// follows at most one client; attaching again moves it.
func (t *Tracker) Attach(c *client.Client) {
	t.Detach()
	sub := c.OnPositionUpdate(t.Observe)

	t.mu.Lock()
	t.source, t.sub = c, sub
	t.mu.Unlock()
}

// Detach stops following the attached client.
func (t *Tracker) Detach() {
	t.mu.Lock()
	source, sub := t.source, t.sub
	t.source = nil
	t.mu.Unlock()

	if source != nil {
		source.Unsubscribe(sub)
	}
}

// Observe records a position update. Updates older than what is already
// known for that user are ignored.
func (t *Tracker) Observe(u protocol.PositionUpdate) {
	if u.Identity.IsZero() {
		return
	}
	seen := u.Timestamp
	if seen.IsZero() {
		seen = t.now()
	}

	t.mu.Lock()
	if prev, ok := t.people[u.Identity]; ok && seen.Before(prev.LastSeen) {
		t.mu.Unlock()
		return
	}
	p := Person{Identity: u.Identity, Position: u.Position, Floor: u.Floor, LastSeen: seen}
	t.people[u.Identity] = p
	var listeners []func(Person, bool)
	if u.Identity == t.selected {
		listeners = t.listeners
	}
	t.mu.Unlock()

	notify(listeners, p, true)
}

// Get returns what is known about identity.
func (t *Tracker) Get(identity string) (Person, bool) {
	id := models.NormalizeIdentity(identity)

	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.people[id]
	return p, ok
}

// People returns every known user ordered by identity.
func (t *Tracker) People() []Person {
	t.mu.RLock()
	out := make([]Person, 0, len(t.people))
	for _, p := range t.people {
		out = append(out, p)
	}
	t.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Identity < out[j].Identity })
	return out
}

// Select makes identity the destination. Listeners are notified right away
// when a position for it is already known, and on every later update.
func (t *Tracker) Select(identity string) {
	id := models.NormalizeIdentity(identity)
	if id.IsZero() {
		t.ClearSelection()
		return
	}

	t.mu.Lock()
	t.selected = id
	p, known := t.people[id]
	listeners := t.listeners
	t.mu.Unlock()

	logging.Debug().Str("identity", id.String()).Bool("known", known).Msg("Selected user")
	if known {
		notify(listeners, p, true)
	}
}

// Selected returns the selected user's latest state. ok is false when
// nothing is selected or no position has been seen for the selection yet.
func (t *Tracker) Selected() (Person, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.selected.IsZero() {
		return Person{}, false
	}
	p, ok := t.people[t.selected]
	return p, ok
}

// SelectedIdentity returns the selected identity, or "" when none.
func (t *Tracker) SelectedIdentity() models.Identity {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.selected
}

// ClearSelection drops the selection and notifies listeners with
// selected=false.
func (t *Tracker) ClearSelection() {
	t.mu.Lock()
	had := !t.selected.IsZero()
	t.selected = ""
	listeners := t.listeners
	t.mu.Unlock()

	if had {
		notify(listeners, Person{}, false)
	}
}

// OnSelectedChanged registers fn to receive the selected user's state.
// selected is false when the selection is cleared.
func (t *Tracker) OnSelectedChanged(fn func(p Person, selected bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	// Copy on write so notify can iterate a snapshot without the lock.
	next := make([]func(Person, bool), 0, len(t.listeners)+1)
	next = append(next, t.listeners...)
	t.listeners = append(next, fn)
}

// DistanceTo returns the distance from `from` to identity's last known
// position.
func (t *Tracker) DistanceTo(identity string, from models.Position) (float64, bool) {
	p, ok := t.Get(identity)
	if !ok {
		return 0, false
	}
	return from.DistanceTo(p.Position), true
}

// Prune forgets users not seen for longer than maxAge. The selection itself
// is kept. Returns the number removed.
func (t *Tracker) Prune(maxAge time.Duration) int {
	cutoff := t.now().Add(-maxAge)

	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for id, p := range t.people {
		if p.LastSeen.Before(cutoff) {
			delete(t.people, id)
			removed++
		}
	}
	return removed
}

func notify(listeners []func(Person, bool), p Person, selected bool) {
	for _, fn := range listeners {
		fn(p, selected)
	}
}
