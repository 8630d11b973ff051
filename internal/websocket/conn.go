// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package websocket

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/metrics"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// DefaultMaxMessageSize bounds a single inbound frame. Presence frames
	// are a few hundred bytes.
	DefaultMaxMessageSize = 64 * 1024

	DefaultSendQueue   = 256
	DefaultSendTimeout = 250 * time.Millisecond
)

var (
	// ErrConnClosed is returned by Send after the connection has been closed.
	ErrConnClosed = errors.New("websocket: connection closed")

	// ErrSendTimeout is returned when the outbound queue stayed full for the
	// whole send timeout. The connection is closed when this happens.
	ErrSendTimeout = errors.New("websocket: send timed out")
)

// Options tunes a connection. Zero values fall back to the defaults.
type Options struct {
	SendQueue      int
	SendTimeout    time.Duration
	MaxMessageSize int64
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		SendQueue:      DefaultSendQueue,
		SendTimeout:    DefaultSendTimeout,
		MaxMessageSize: DefaultMaxMessageSize,
	}
}

func (o Options) withDefaults() Options {
	if o.SendQueue <= 0 {
		o.SendQueue = DefaultSendQueue
	}
	if o.SendTimeout <= 0 {
		o.SendTimeout = DefaultSendTimeout
	}
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = DefaultMaxMessageSize
	}
	return o
}

// Handler receives the lifecycle and inbound frames of a connection.
//
// HandleMessage is called from the connection's read goroutine, one frame at
// a time, so frames from one peer are handled in arrival order. Different
// connections call the handler concurrently. HandleClose is called exactly
// once, after the last HandleMessage.
type Handler interface {
	HandleOpen(c *Conn)
	HandleMessage(c *Conn, data []byte)
	HandleClose(c *Conn)
}

// connSeq orders connections by creation for log correlation.
var connSeq atomic.Uint64

// Conn is one server-side WebSocket session.
type Conn struct {
	id         string
	seq        uint64
	ws         *websocket.Conn
	handler    Handler
	opts       Options
	remoteAddr string

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewConn wraps an upgraded gorilla connection. Call Start to begin pumping.
func NewConn(ws *websocket.Conn, handler Handler, opts Options) *Conn {
	opts = opts.withDefaults()
	c := &Conn{
		id:      uuid.NewString(),
		seq:     connSeq.Add(1),
		ws:      ws,
		handler: handler,
		opts:    opts,
		send:    make(chan []byte, opts.SendQueue),
		done:    make(chan struct{}),
	}
	if ws != nil {
		c.remoteAddr = ws.RemoteAddr().String()
	}
	return c
}

// ID returns the connection's unique identifier.
func (c *Conn) ID() string {
	return c.id
}

// Seq returns the connection's creation sequence number.
func (c *Conn) Seq() uint64 {
	return c.seq
}

// RemoteAddr returns the peer address observed at upgrade time.
func (c *Conn) RemoteAddr() string {
	return c.remoteAddr
}

// Done is closed once the connection has been closed.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Send queues data for delivery. It waits at most the configured send
// timeout for queue space; on timeout the connection is closed and
// ErrSendTimeout is returned.
func (c *Conn) Send(data []byte) error {
	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}

	select {
	case c.send <- data:
		return nil
	default:
	}

	timer := time.NewTimer(c.opts.SendTimeout)
	defer timer.Stop()

	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return ErrConnClosed
	case <-timer.C:
		metrics.WSErrors.WithLabelValues("send_timeout").Inc()
		logging.Warn().
			Str("conn_id", c.id).
			Str("remote_addr", c.remoteAddr).
			Dur("timeout", c.opts.SendTimeout).
			Msg("Closing slow websocket connection")
		_ = c.Close()
		return ErrSendTimeout
	}
}

// Close shuts the connection down. It is safe to call more than once.
// Queued frames that have not been written are discarded.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
	})
	return nil
}

// Start notifies the handler and launches the read and write pumps.
func (c *Conn) Start() {
	metrics.WSConnections.Inc()
	c.handler.HandleOpen(c)
	go c.writePump()
	go c.readPump()
}

// readPump delivers inbound frames to the handler until the socket fails.
func (c *Conn) readPump() {
	defer func() {
		_ = c.Close()
		c.handler.HandleClose(c)
		metrics.WSConnections.Dec()
	}()

	c.ws.SetReadLimit(c.opts.MaxMessageSize)
	if err := c.ws.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				metrics.WSErrors.WithLabelValues("read").Inc()
				logging.Debug().Err(err).Str("conn_id", c.id).Msg("unexpected websocket close error")
			}
			return
		}
		metrics.WSMessagesReceived.Inc()
		c.handler.HandleMessage(c, data)
	}
}

// writePump drains the send queue and keeps the peer alive with pings.
func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close() // unblocks readPump
	}()

	for {
		select {
		case data := <-c.send:
			if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline")
				_ = c.Close()
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				metrics.WSErrors.WithLabelValues("write").Inc()
				logging.Debug().Err(err).Str("conn_id", c.id).Msg("failed to write websocket message")
				_ = c.Close()
				return
			}
			metrics.WSMessagesSent.Inc()

		case <-ticker.C:
			if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline for ping")
				_ = c.Close()
				return
			}
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.Close()
				return
			}

		case <-c.done:
			_ = c.ws.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait),
			)
			return
		}
	}
}
