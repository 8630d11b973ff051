// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package config loads configuration for the Waypoint relay and presence client.

Configuration is layered with Koanf v2. Built-in defaults come first, then an
optional YAML file, then environment variables. A .env file, when present, is
loaded into the environment by the binaries before Load runs.

# Environment Variables

Server:
  - PORT: Listen port (default: 8080)
  - HTTP_HOST: Bind address (default: 0.0.0.0)
  - HTTP_READ_HEADER_TIMEOUT: Upgrade request header timeout (default: 10s)
  - SHUTDOWN_TIMEOUT: Graceful shutdown budget (default: 10s)

Relay:
  - RELAY_SEND_TIMEOUT: Wait on a slow peer before dropping it (default: 250ms)
  - RELAY_SEND_QUEUE: Per-connection outbound queue (default: 256)
  - RELAY_MAX_MESSAGE_SIZE: Largest accepted frame in bytes (default: 65536)
  - RELAY_ALLOWED_ORIGINS: Comma-separated origins, or * (default: *)
  - RATE_LIMIT_REQUESTS / RATE_LIMIT_WINDOW: Upgrades per IP (default: 60 per 1m)
  - DISABLE_RATE_LIMIT: Turn off upgrade rate limiting

Persistence:
  - PERSISTENCE_URL: Location store endpoint; empty disables persistence
  - PERSISTENCE_TIMEOUT: Per-write timeout (default: 5s)
  - PERSISTENCE_QUEUE_SIZE: Pending writes before new ones are dropped (default: 1024)
  - PERSISTENCE_WORKERS: Concurrent writers (default: 4)
  - PERSISTENCE_RATE_LIMIT: Writes per second, 0 for unlimited (default: 0)
  - PERSISTENCE_BREAKER_MIN_REQUESTS, PERSISTENCE_BREAKER_FAILURE_RATIO,
    PERSISTENCE_BREAKER_OPEN_TIMEOUT: Circuit breaker tuning

Presence client:
  - RELAY_URL: Relay endpoint (default: ws://localhost:8080)
  - PRESENCE_EMAIL: Identity to register (required by the client binary)
  - PRESENCE_NAME: Display name sent with updates
  - RECONNECT_INTERVAL: Delay between dial attempts (default: 3s)
  - RECONNECT_MULTIPLIER: Backoff growth, 1 for fixed (default: 1)
  - RECONNECT_MAX_INTERVAL: Backoff ceiling (default: 30s)
  - POSITION_INTERVAL: Position report period (default: 1s)

Logging:
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json or console (default: json)
  - LOG_CALLER: Include caller file:line

# Config File

CONFIG_PATH names a YAML file. Without it, config.yaml or config.yml in the
working directory is used when present. Keys mirror the koanf tags:

	server:
	  port: 9000
	relay:
	  allowed_origins: ["https://app.example.com"]
	persistence:
	  url: https://store.example.com/api/nodes

# Validation

Load validates with go-playground/validator struct tags (see
internal/validation). An invalid value is a startup error naming the koanf
path, e.g. "server.port must be at most 65535".
*/
package config
