// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/models"
	"github.com/tomtom215/waypoint/internal/protocol"
)

const (
	DefaultURL                  = "ws://localhost:8080"
	DefaultReconnectInterval    = 3 * time.Second
	DefaultMaxReconnectInterval = 30 * time.Second
	DefaultHandshakeTimeout     = 10 * time.Second
	DefaultWriteTimeout         = 5 * time.Second

	// readWait must exceed the relay's ping period.
	readWait = 90 * time.Second
)

var (
	// ErrNotConnected is returned by writes while no connection is open.
	ErrNotConnected = errors.New("client: not connected")

	// ErrStopped is returned once Stop has been called.
	ErrStopped = errors.New("client: stopped")
)

// State is the client's connection state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Config configures a Client.
type Config struct {
	// URL of the relay endpoint.
	URL string

	// Name is the display name sent with location updates.
	Name string

	ReconnectInterval time.Duration

	// ReconnectMultiplier grows the interval after each failed attempt.
	// Values at or below 1 keep it fixed.
	ReconnectMultiplier float64

	MaxReconnectInterval time.Duration
	HandshakeTimeout     time.Duration
	WriteTimeout         time.Duration
}

func (c Config) withDefaults() Config {
	if c.URL == "" {
		c.URL = DefaultURL
	}
	if c.ReconnectInterval <= 0 {
		c.ReconnectInterval = DefaultReconnectInterval
	}
	if c.MaxReconnectInterval < c.ReconnectInterval {
		c.MaxReconnectInterval = DefaultMaxReconnectInterval
		if c.MaxReconnectInterval < c.ReconnectInterval {
			c.MaxReconnectInterval = c.ReconnectInterval
		}
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	return c
}

// nextDelay returns the wait before the attempt after one that waited d.
func (c Config) nextDelay(d time.Duration) time.Duration {
	if c.ReconnectMultiplier <= 1 {
		return c.ReconnectInterval
	}
	next := time.Duration(float64(d) * c.ReconnectMultiplier)
	if next > c.MaxReconnectInterval {
		next = c.MaxReconnectInterval
	}
	return next
}

// Client maintains a connection to the relay.
type Client struct {
	cfg        Config
	dialer     websocket.Dialer
	dispatcher *Dispatcher

	mu       sync.Mutex
	state    State
	conn     *websocket.Conn
	identity models.Identity
	running  bool
	cancel   context.CancelFunc
	done     chan struct{}

	// writeMu serializes writes; gorilla allows one concurrent writer.
	writeMu sync.Mutex
}

// New creates a disconnected client.
func New(cfg Config) *Client {
	cfg = cfg.withDefaults()
	return &Client{
		cfg: cfg,
		dialer: websocket.Dialer{
			HandshakeTimeout: cfg.HandshakeTimeout,
		},
		dispatcher: NewDispatcher(),
	}
}

// Dispatcher returns the client's event dispatcher.
func (c *Client) Dispatcher() *Dispatcher {
	return c.dispatcher
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Identity returns the identity replayed on every connection.
func (c *Client) Identity() models.Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity
}

// Connect starts the connection loop if it is not already running and
// returns the resulting state. Calling it again while connecting or
// connected has no effect. The loop ends when ctx is canceled or Stop is
// called.
func (c *Client) Connect(ctx context.Context) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running || c.state == StateStopped {
		return c.state
	}

	loopCtx, cancel := context.WithCancel(ctx)
	c.running = true
	c.cancel = cancel
	c.done = make(chan struct{})
	c.state = StateConnecting

	go c.run(loopCtx, c.done)
	return c.state
}

// RunWithContext connects and blocks until ctx is canceled, then closes the
// connection. Unlike Stop, the client can be run again afterwards.
func (c *Client) RunWithContext(ctx context.Context) error {
	if c.Connect(ctx) == StateStopped {
		return ErrStopped
	}
	<-ctx.Done()
	c.halt()
	return ctx.Err()
}

// Stop closes the connection and ends the loop for good. It waits for the
// loop to exit, so it must not be called from a Handler.
func (c *Client) Stop() {
	c.mu.Lock()
	if c.state == StateStopped {
		c.mu.Unlock()
		return
	}
	c.state = StateStopped
	c.mu.Unlock()

	c.halt()
	logging.Info().Msg("Presence client stopped")
}

// halt cancels the loop and waits for it.
func (c *Client) halt() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// RegisterIdentity remembers identity for every future connection and sends
// a register frame now if connected.
func (c *Client) RegisterIdentity(identity string) error {
	id := models.NormalizeIdentity(identity)
	if id.IsZero() {
		return fmt.Errorf("register identity: %w", protocol.ErrInvalidPayload)
	}

	c.mu.Lock()
	c.identity = id
	c.mu.Unlock()

	if err := c.write(protocol.EncodeRegister(id)); err != nil && !errors.Is(err, ErrNotConnected) {
		return fmt.Errorf("register identity: %w", err)
	}
	return nil
}

// SendPositionUpdate sends this device's position. While disconnected the
// update is dropped. Reports whether the frame was written.
func (c *Client) SendPositionUpdate(pos models.Position, floor int) bool {
	c.mu.Lock()
	identity := c.identity
	c.mu.Unlock()

	err := c.write(protocol.EncodeUpdateLocation(protocol.UpdateLocation{
		Email:    identity.String(),
		Name:     c.cfg.Name,
		Position: pos,
		Floor:    floor,
	}))
	if err != nil && !errors.Is(err, ErrNotConnected) {
		logging.Debug().Err(err).Msg("Failed to send position update")
	}
	return err == nil
}

// Ping sends a ping frame; the relay answers with pong. Reports whether the
// frame was written.
func (c *Client) Ping() bool {
	return c.write(protocol.EncodePing()) == nil
}

// Subscribe registers h for msgType on the client's dispatcher.
func (c *Client) Subscribe(msgType protocol.MessageType, h Handler) (Subscription, error) {
	return c.dispatcher.Subscribe(msgType, h)
}

// Unsubscribe removes a handler added with Subscribe or an On* helper.
func (c *Client) Unsubscribe(sub Subscription) bool {
	return c.dispatcher.Unsubscribe(sub)
}

// OnPositionUpdate subscribes fn to position updates from other users.
func (c *Client) OnPositionUpdate(fn func(protocol.PositionUpdate)) Subscription {
	return c.mustSubscribe(protocol.TypePositionUpdate, func(ev Event) {
		if u, ok := ev.Message.(protocol.PositionUpdate); ok {
			fn(u)
		}
	})
}

// OnPong subscribes fn to pong replies.
func (c *Client) OnPong(fn func()) Subscription {
	return c.mustSubscribe(protocol.TypePong, func(Event) { fn() })
}

// OnConnect subscribes fn to the local connect event.
func (c *Client) OnConnect(fn func()) Subscription {
	return c.mustSubscribe(protocol.TypeConnect, func(Event) { fn() })
}

// OnDisconnect subscribes fn to the local disconnect event.
func (c *Client) OnDisconnect(fn func()) Subscription {
	return c.mustSubscribe(protocol.TypeDisconnect, func(Event) { fn() })
}

func (c *Client) mustSubscribe(msgType protocol.MessageType, h Handler) Subscription {
	sub, err := c.dispatcher.Subscribe(msgType, h)
	if err != nil {
		// Only reachable with a nil handler or an unknown constant.
		panic(err)
	}
	return sub
}

// run is the single connection loop. It owns dialing, reading and the
// reconnect timer.
func (c *Client) run(ctx context.Context, done chan struct{}) {
	defer func() {
		c.mu.Lock()
		c.running = false
		c.cancel = nil
		if c.state != StateStopped {
			c.state = StateDisconnected
		}
		c.mu.Unlock()
		close(done)
	}()

	delay := c.cfg.ReconnectInterval
	for {
		conn, err := c.dial(ctx)
		if err == nil {
			delay = c.cfg.ReconnectInterval
			c.serve(ctx, conn)
		} else if ctx.Err() == nil {
			logging.Warn().Err(err).Str("url", c.cfg.URL).Msg("Relay connection failed")
		}

		if ctx.Err() != nil {
			return
		}

		c.setState(StateDisconnected)
		logging.Info().Dur("delay", delay).Msg("Connection lost, reconnecting...")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		delay = c.cfg.nextDelay(delay)
		c.setState(StateConnecting)
	}
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	conn, resp, err := c.dialer.DialContext(ctx, c.cfg.URL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket dial failed (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}
	return conn, nil
}

// serve runs one connection until it fails or ctx is canceled.
func (c *Client) serve(ctx context.Context, conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	if c.state != StateStopped {
		c.state = StateConnected
	}
	identity := c.identity
	c.mu.Unlock()

	logging.Info().Str("url", c.cfg.URL).Msg("Connected to relay")

	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()

	defer func() {
		close(stop)
		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		c.closeConn(conn)
		c.dispatcher.Dispatch(Event{Type: protocol.TypeDisconnect})
	}()

	_ = conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPingHandler(func(appData string) error {
		_ = conn.SetReadDeadline(time.Now().Add(readWait))
		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(c.cfg.WriteTimeout))
		if errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}
		return err
	})

	if !identity.IsZero() {
		if err := c.write(protocol.EncodeRegister(identity)); err != nil {
			logging.Warn().Err(err).Msg("Failed to replay registration")
			return
		}
	}
	c.dispatcher.Dispatch(Event{Type: protocol.TypeConnect})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			switch {
			case ctx.Err() != nil:
			case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
				logging.Info().Msg("Relay closed the connection")
			default:
				logging.Warn().Err(err).Msg("Relay read error")
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readWait))

		msg, err := protocol.DecodeServerMessage(data)
		if err != nil {
			logging.Warn().Err(err).Int("bytes", len(data)).Msg("Discarding relay frame")
			continue
		}
		c.dispatcher.Dispatch(Event{Type: msg.Type(), Message: msg})
	}
}

// write sends one text frame on the current connection. A failed write
// closes the connection so the loop reconnects.
func (c *Client) write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	if err := conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		_ = conn.Close()
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

func (c *Client) closeConn(conn *websocket.Conn) {
	c.writeMu.Lock()
	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	c.writeMu.Unlock()
	_ = conn.Close()
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateStopped {
		c.state = s
	}
}
