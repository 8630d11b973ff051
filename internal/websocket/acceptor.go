// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package websocket

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/metrics"
)

// RequestIDHeader is echoed on the upgrade response when set upstream.
const RequestIDHeader = "X-Request-ID"

// Acceptor upgrades HTTP requests and hands the resulting connections to a
// Handler.
type Acceptor struct {
	upgrader websocket.Upgrader
	handler  Handler
	opts     Options
}

// NewAcceptor creates an Acceptor. allowedOrigins is matched exactly
// against the Origin header; "*" or an empty list admits every origin.
func NewAcceptor(handler Handler, allowedOrigins []string, opts Options) *Acceptor {
	return &Acceptor{
		upgrader: websocket.Upgrader{
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			CheckOrigin:      CheckOrigin(allowedOrigins),
			HandshakeTimeout: 10 * time.Second,
		},
		handler: handler,
		opts:    opts.withDefaults(),
	}
}

// ServeHTTP implements http.Handler.
func (a *Acceptor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := a.upgrader.Upgrade(w, r, upgradeHeader(w))
	if err != nil {
		// Upgrade has already written the HTTP error response.
		metrics.WSErrors.WithLabelValues("upgrade").Inc()
		logging.Debug().Err(err).Str("remote_addr", r.RemoteAddr).Msg("websocket upgrade failed")
		return
	}

	NewConn(ws, a.handler, a.opts).Start()
}

// upgradeHeader carries headers set by middleware onto the 101 response,
// which the upgrader writes directly to the hijacked connection.
func upgradeHeader(w http.ResponseWriter) http.Header {
	id := w.Header().Get(RequestIDHeader)
	if id == "" {
		return nil
	}
	return http.Header{RequestIDHeader: {id}}
}

// CheckOrigin returns an origin policy for the upgrader.
//
// With a wildcard (or no list at all) every request is accepted, including
// native clients that send no Origin header. With an explicit list, the
// Origin header must be present and match one entry.
func CheckOrigin(allowedOrigins []string) func(r *http.Request) bool {
	wildcard := len(allowedOrigins) == 0
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			wildcard = true
		}
		allowed[o] = struct{}{}
	}

	return func(r *http.Request) bool {
		if wildcard {
			return true
		}

		origin := r.Header.Get("Origin")
		if origin == "" {
			logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
			return false
		}
		if _, ok := allowed[origin]; ok {
			return true
		}

		logging.Warn().Str("origin", origin).Msg("WebSocket connection rejected from unauthorized origin")
		return false
	}
}
