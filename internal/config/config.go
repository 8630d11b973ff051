// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package config

import "time"

// Config holds all configuration for the relay and presence-client binaries.
//
// Loading order (Koanf v2), later sources win:
//  1. Defaults from defaultConfig
//  2. Optional YAML file (CONFIG_PATH, else config.yaml in the working directory)
//  3. Environment variables listed in envMappings
//
// Each binary reads the sections it needs; the client section is ignored by
// the relay and vice versa.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Relay       RelayConfig       `koanf:"relay"`
	Persistence PersistenceConfig `koanf:"persistence"`
	Client      ClientConfig      `koanf:"client"`
	Logging     LoggingConfig     `koanf:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port int    `koanf:"port" validate:"min=1,max=65535"`
	Host string `koanf:"host" validate:"omitempty,ip"`

	// ReadHeaderTimeout bounds the upgrade request headers.
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout" validate:"gt=0"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// RelayConfig holds per-connection and upgrade settings.
type RelayConfig struct {
	// SendTimeout is how long a broadcast may wait on one slow peer before
	// that peer is disconnected.
	SendTimeout    time.Duration `koanf:"send_timeout" validate:"gt=0"`
	SendQueue      int           `koanf:"send_queue" validate:"min=1"`
	MaxMessageSize int64         `koanf:"max_message_size" validate:"min=512"`

	// AllowedOrigins is matched against the Origin header on upgrade.
	// "*" accepts any origin, including none.
	AllowedOrigins []string `koanf:"allowed_origins" validate:"min=1,dive,origin"`

	// Upgrade requests per client IP per window.
	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"min=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// PersistenceConfig configures the location store writer. An empty URL
// disables persistence.
type PersistenceConfig struct {
	URL       string        `koanf:"url" validate:"omitempty,http_url"`
	Timeout   time.Duration `koanf:"timeout" validate:"gt=0"`
	QueueSize int           `koanf:"queue_size" validate:"min=1"`
	Workers   int           `koanf:"workers" validate:"min=1,max=64"`

	// RateLimit caps store writes per second. Zero means unlimited.
	RateLimit float64 `koanf:"rate_limit" validate:"gte=0"`

	BreakerMinRequests  uint32        `koanf:"breaker_min_requests" validate:"min=1"`
	BreakerFailureRatio float64       `koanf:"breaker_failure_ratio" validate:"gt=0,lte=1"`
	BreakerOpenTimeout  time.Duration `koanf:"breaker_open_timeout" validate:"gt=0"`
}

// Enabled reports whether a store URL is configured.
func (p PersistenceConfig) Enabled() bool {
	return p.URL != ""
}

// ClientConfig configures the presence-client binary.
type ClientConfig struct {
	RelayURL string `koanf:"relay_url" validate:"required,ws_url"`

	// Email is the identity registered with the relay.
	Email string `koanf:"email" validate:"omitempty,identity,email"`
	Name  string `koanf:"name"`

	ReconnectInterval    time.Duration `koanf:"reconnect_interval" validate:"gt=0"`
	ReconnectMultiplier  float64       `koanf:"reconnect_multiplier" validate:"gte=1"`
	ReconnectMaxInterval time.Duration `koanf:"reconnect_max_interval" validate:"gtefield=ReconnectInterval"`

	PositionInterval time.Duration `koanf:"position_interval" validate:"gt=0"`
}

// LoggingConfig holds logging settings passed to logging.Init.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`

	// Format is json or console.
	// Default: json
	Format string `koanf:"format" validate:"oneof=json console"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return joinHostPort(s.Host, s.Port)
}
