// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package main

import (
	"context"
	"errors"
	"io/fs"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tomtom215/waypoint/internal/api"
	"github.com/tomtom215/waypoint/internal/config"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/metrics"
	"github.com/tomtom215/waypoint/internal/persistence"
	"github.com/tomtom215/waypoint/internal/registry"
	"github.com/tomtom215/waypoint/internal/relay"
	"github.com/tomtom215/waypoint/internal/supervisor"
	"github.com/tomtom215/waypoint/internal/supervisor/services"
	"github.com/tomtom215/waypoint/internal/websocket"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logging.Warn().Err(err).Msg("Failed to read .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	logging.Info().
		Str("version", version).
		Str("addr", cfg.Server.Addr()).
		Bool("persistence_enabled", cfg.Persistence.Enabled()).
		Msg("Starting Waypoint relay")

	if cfg.ShouldWarnAboutOrigins() {
		logging.Warn().Msg("RELAY_ALLOWED_ORIGINS allows any origin; set explicit origins for browser clients")
	}

	dispatcher := persistence.NewDispatcher(newStoreWriter(cfg), persistence.DispatcherConfig{
		QueueSize: cfg.Persistence.QueueSize,
		Workers:   cfg.Persistence.Workers,
		RateLimit: cfg.Persistence.RateLimit,
		Timeout:   cfg.Persistence.Timeout,
	})

	presence := relay.New(registry.New(), dispatcher)
	acceptor := websocket.NewAcceptor(relay.NewHandler(presence), cfg.Relay.AllowedOrigins, websocket.Options{
		SendQueue:      cfg.Relay.SendQueue,
		SendTimeout:    cfg.Relay.SendTimeout,
		MaxMessageSize: cfg.Relay.MaxMessageSize,
	})

	mw := api.NewChiMiddleware(&api.ChiMiddlewareConfig{
		CORSAllowedOrigins: cfg.Relay.AllowedOrigins,
		CORSMaxAge:         api.DefaultChiMiddlewareConfig().CORSMaxAge,
		RateLimitRequests:  cfg.Relay.RateLimitReqs,
		RateLimitWindow:    cfg.Relay.RateLimitWindow,
		RateLimitDisabled:  cfg.Relay.RateLimitDisabled,
	})
	router, err := api.NewRouter(api.NewHandler(presence, dispatcher, version), mw, acceptor)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create router")
	}

	server := &http.Server{
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	// Bind before supervising so a port conflict fails startup.
	ln, err := net.Listen("tcp", cfg.Server.Addr())
	if err != nil {
		logging.Fatal().Err(err).Str("addr", cfg.Server.Addr()).Msg("Failed to bind listener")
	}

	tree, err := supervisor.NewSupervisorTree("waypoint-relay", logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddDataService(services.NewPersistenceService(dispatcher))
	tree.AddMessagingService(services.NewRelayService(presence))
	tree.AddAPIService(services.NewHTTPServerService(server, ln, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", ln.Addr().String()).Msg("Relay listening")

	run(tree)
}

// newStoreWriter returns the location store writer, or a discarding writer
// when no store is configured.
func newStoreWriter(cfg *config.Config) persistence.Writer {
	if !cfg.Persistence.Enabled() {
		logging.Info().Msg("PERSISTENCE_URL not set; location updates will not be stored")
		return persistence.DiscardWriter{}
	}

	settings := persistence.DefaultBreakerSettings()
	settings.MinRequests = cfg.Persistence.BreakerMinRequests
	settings.FailureRatio = cfg.Persistence.BreakerFailureRatio
	settings.OpenTimeout = cfg.Persistence.BreakerOpenTimeout

	logging.Info().Str("url", cfg.Persistence.URL).Msg("Location store configured")
	return persistence.NewCircuitBreakerWriter(
		persistence.NewHTTPWriter(cfg.Persistence.URL, cfg.Persistence.Timeout),
		settings,
	)
}

// run serves the tree until SIGINT or SIGTERM and reports services that
// did not stop in time.
func run(tree *supervisor.SupervisorTree) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Relay stopped gracefully")
}
