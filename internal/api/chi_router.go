// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/waypoint/internal/middleware"
)

// slowRequestThreshold is where AccessLog starts warning.
const slowRequestThreshold = time.Second

// Router wires the relay endpoint and the JSON handlers into a Chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	relay         http.Handler
}

// NewRouter creates a router. relay is the WebSocket endpoint, normally a
// *websocket.Acceptor.
func NewRouter(handler *Handler, mw *ChiMiddleware, relay http.Handler) (*Router, error) {
	if relay == nil {
		return nil, ErrNoRelayEndpoint
	}
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: mw, relay: relay}, nil
}

// SetupChi builds the route tree.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.AccessLog(slowRequestThreshold))
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight reaches it

	r.NotFound(router.handler.NotFound)
	r.MethodNotAllowed(router.handler.MethodNotAllowed)

	// Mobile clients dial the bare host.
	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitUpgrade())
		r.Get("/", router.relay.ServeHTTP)
		r.Get("/ws", router.relay.ServeHTTP)
	})

	r.Route("/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.With(APISecurityHeaders()).Get("/stats", router.handler.Stats)

	r.Handle("/metrics", promhttp.Handler())

	return r
}
