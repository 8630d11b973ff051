// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package middleware

import (
	"net/http"
	"time"

	"github.com/tomtom215/waypoint/internal/logging"
)

// AccessLog logs every request at debug level and any request slower than
// slow at warn. Upgraded connections log once the session ends, so their
// duration is the connection lifetime and they are never reported as slow.
func AccessLog(slow time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapper := newStatusRecorder(w)

			next.ServeHTTP(wrapper, r)

			duration := time.Since(start)
			logger := logging.Ctx(r.Context())

			if wrapper.hijacked {
				logger.Debug().
					Str("remote_addr", r.RemoteAddr).
					Str("path", r.URL.Path).
					Dur("duration", duration).
					Msg("WebSocket session ended")
				return
			}

			event := logger.Debug()
			msg := "Request completed"
			if slow > 0 && duration > slow {
				event = logger.Warn().Dur("threshold", slow)
				msg = "Slow request detected"
			}
			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", wrapper.statusCode).
				Dur("duration", duration).
				Msg(msg)
		})
	}
}
