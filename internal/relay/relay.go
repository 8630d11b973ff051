// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package relay

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/metrics"
	"github.com/tomtom215/waypoint/internal/models"
	"github.com/tomtom215/waypoint/internal/protocol"
	"github.com/tomtom215/waypoint/internal/registry"
)

// Persister accepts position records for background storage. Submit must
// not block.
type Persister interface {
	Submit(rec models.PositionRecord) bool
}

type discardPersister struct{}

func (discardPersister) Submit(models.PositionRecord) bool { return true }

// Option configures a Relay.
type Option func(*Relay)

// WithClock overrides the clock used to timestamp position records.
func WithClock(now func() time.Time) Option {
	return func(r *Relay) {
		r.now = now
	}
}

// Relay routes presence frames between connections.
type Relay struct {
	registry  *registry.Registry
	persister Persister
	now       func() time.Time

	mu       sync.Mutex
	sessions map[registry.Connection]*session

	running atomic.Bool
}

// New creates a relay over reg. A nil persister discards records.
func New(reg *registry.Registry, persister Persister, opts ...Option) *Relay {
	if persister == nil {
		persister = discardPersister{}
	}
	r := &Relay{
		registry:  reg,
		persister: persister,
		now:       time.Now,
		sessions:  make(map[registry.Connection]*session),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open starts tracking conn as an anonymous session.
func (r *Relay) Open(conn registry.Connection) {
	r.mu.Lock()
	r.sessions[conn] = &session{state: StateAnonymous}
	total := len(r.sessions)
	r.mu.Unlock()

	logging.Debug().Str("conn_id", conn.ID()).Int("connections", total).Msg("Client connected")
}

// Receive processes one inbound frame from conn. Frames from one
// connection must be passed in arrival order.
func (r *Relay) Receive(conn registry.Connection, data []byte) {
	msg, err := protocol.DecodeInbound(data)
	if err != nil {
		metrics.RecordRejectedFrame(rejectReason(err))
		logging.Warn().
			Err(err).
			Str("conn_id", conn.ID()).
			Int("bytes", len(data)).
			Msg("Discarding inbound frame")
		return
	}

	state, identity := r.sessionState(conn)
	if state == StateClosed {
		return
	}
	metrics.RecordFrame(string(msg.Type()))

	switch m := msg.(type) {
	case protocol.Register:
		r.handleRegister(conn, identity, m)

	case protocol.UpdateLocation:
		if state != StateRegistered {
			metrics.RecordRejectedFrame("unregistered")
			logging.Debug().Str("conn_id", conn.ID()).Msg("Ignoring location update from unregistered connection")
			return
		}
		r.handleUpdateLocation(conn, identity, m)

	case protocol.Ping:
		if err := conn.Send(protocol.EncodePong()); err != nil {
			logging.Debug().Err(err).Str("conn_id", conn.ID()).Msg("Failed to send pong")
		}
	}
}

// Close releases conn's registration. Safe to call more than once.
func (r *Relay) Close(conn registry.Connection) {
	r.mu.Lock()
	sess, ok := r.sessions[conn]
	if ok {
		sess.state = StateClosed
		delete(r.sessions, conn)
	}
	r.mu.Unlock()
	if !ok {
		return
	}

	r.registry.Unregister(conn)
	metrics.PresenceRegistered.Set(float64(r.registry.Count()))

	event := logging.Debug().Str("conn_id", conn.ID())
	if !sess.identity.IsZero() {
		event = logging.Info().Str("conn_id", conn.ID()).Str("identity", sess.identity.String())
	}
	event.Msg("Client disconnected")
}

func (r *Relay) handleRegister(conn registry.Connection, current models.Identity, m protocol.Register) {
	identity := m.Identity()

	r.mu.Lock()
	sess, ok := r.sessions[conn]
	if !ok || sess.state == StateClosed {
		r.mu.Unlock()
		return
	}
	previous := r.registry.Register(identity, conn)
	sess.state = StateRegistered
	sess.identity = identity
	r.mu.Unlock()

	outcome := "new"
	switch {
	case previous != nil:
		outcome = "superseded"
	case current == identity:
		outcome = "repeat"
	}
	metrics.PresenceRegistrations.WithLabelValues(outcome).Inc()
	metrics.PresenceRegistered.Set(float64(r.registry.Count()))

	event := logging.Info().
		Str("conn_id", conn.ID()).
		Str("identity", identity.String()).
		Str("outcome", outcome)
	if previous != nil {
		event = event.Str("superseded_conn_id", previous.ID())
	}
	event.Msg("Registered user")
}

func (r *Relay) handleUpdateLocation(conn registry.Connection, identity models.Identity, m protocol.UpdateLocation) {
	rec := models.PositionRecord{
		Identity:  identity,
		Name:      m.Name,
		Position:  m.Position,
		Floor:     m.Floor,
		Timestamp: r.now().UTC(),
	}

	r.persister.Submit(rec)

	start := time.Now()
	result := r.registry.BroadcastExcept(conn, protocol.EncodePositionUpdate(rec))
	metrics.RecordBroadcast(result.Delivered, result.Failed, time.Since(start))
}

// sessionState returns the state and identity recorded for conn. Unknown
// connections report StateClosed.
func (r *Relay) sessionState(conn registry.Connection) (State, models.Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[conn]
	if !ok {
		return StateClosed, ""
	}
	return sess.state, sess.identity
}

// SessionState reports the lifecycle state of conn.
func (r *Relay) SessionState(conn registry.Connection) State {
	state, _ := r.sessionState(conn)
	return state
}

// Stats returns the current connection counts.
func (r *Relay) Stats() models.RelayStats {
	r.mu.Lock()
	connections := len(r.sessions)
	r.mu.Unlock()

	return models.RelayStats{
		Connections: connections,
		Registered:  r.registry.Count(),
	}
}

// Running reports whether RunWithContext is active.
func (r *Relay) Running() bool {
	return r.running.Load()
}

// RunWithContext marks the relay as serving until ctx is canceled, then
// closes every open connection.
func (r *Relay) RunWithContext(ctx context.Context) error {
	log := logging.WithComponent("presence-relay")
	r.running.Store(true)
	log.Info().Msg("Presence relay started")

	<-ctx.Done()

	r.running.Store(false)
	closed := r.closeAll()
	log.Info().
		Str("reason", shutdownReason(ctx)).
		Int("connections_closed", closed).
		Msg("Presence relay stopped")
	return ctx.Err()
}

// closeAll closes every tracked connection, anonymous ones included.
// Session cleanup happens through Close as each read loop exits.
func (r *Relay) closeAll() int {
	r.mu.Lock()
	conns := make([]registry.Connection, 0, len(r.sessions))
	for conn := range r.sessions {
		conns = append(conns, conn)
	}
	r.mu.Unlock()

	for _, conn := range conns {
		if err := conn.Close(); err != nil {
			logging.Debug().Err(err).Str("conn_id", conn.ID()).Msg("Error closing connection")
		}
	}
	return len(conns)
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, protocol.ErrUnknownType):
		return "unknown_type"
	case errors.Is(err, protocol.ErrInvalidPayload):
		return "invalid_payload"
	default:
		return "malformed"
	}
}

func shutdownReason(ctx context.Context) string {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "context_deadline"
	}
	return "context_canceled"
}
