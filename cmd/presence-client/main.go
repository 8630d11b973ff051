// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tomtom215/waypoint/internal/client"
	"github.com/tomtom215/waypoint/internal/config"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/metrics"
	"github.com/tomtom215/waypoint/internal/supervisor"
	"github.com/tomtom215/waypoint/internal/supervisor/services"
	"github.com/tomtom215/waypoint/internal/tracker"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// Simulated walk: a 12m x 8m loop at walking pace.
const (
	walkWidth = 12.0
	walkDepth = 8.0
	walkSpeed = 1.2
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logging.Warn().Err(err).Msg("Failed to read .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.ValidateClient(); err != nil {
		logging.Fatal().Err(err).Msg("Invalid client configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	c := client.New(client.Config{
		URL:                  cfg.Client.RelayURL,
		Name:                 cfg.Client.Name,
		ReconnectInterval:    cfg.Client.ReconnectInterval,
		ReconnectMultiplier:  cfg.Client.ReconnectMultiplier,
		MaxReconnectInterval: cfg.Client.ReconnectMaxInterval,
	})
	if err := c.RegisterIdentity(cfg.Client.Email); err != nil {
		logging.Fatal().Err(err).Msg("Failed to set identity")
	}

	c.OnConnect(func() {
		logging.Info().Str("relay", cfg.Client.RelayURL).Msg("Connected to relay")
	})
	c.OnDisconnect(func() {
		logging.Warn().Str("relay", cfg.Client.RelayURL).Msg("Disconnected from relay")
	})

	peers := tracker.New()
	peers.Attach(c)
	defer peers.Detach()

	walk := newWalker(walkWidth, walkDepth, walkSpeed)

	tree, err := supervisor.NewSupervisorTree("waypoint-client", logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}
	tree.AddMessagingService(services.NewPresenceClientService(c))
	tree.AddMessagingService(services.NewReporterService(client.NewReporter(c, walk, cfg.Client.PositionInterval)))
	tree.AddMessagingService(services.NewRunnerService("peer-log", newPeerLog(peers, walk)))

	logging.Info().
		Str("version", version).
		Str("identity", c.Identity().String()).
		Str("relay", cfg.Client.RelayURL).
		Msg("Starting Waypoint presence client")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		c.Stop()
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	logging.Info().Msg("Presence client stopped")
}
