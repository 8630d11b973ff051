// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/waypoint/config.yaml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with every default applied. Loading starts
// from here and is overridden by the config file, then the environment.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              8080,
			Host:              "0.0.0.0",
			ReadHeaderTimeout: 10 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Relay: RelayConfig{
			SendTimeout:       250 * time.Millisecond,
			SendQueue:         256,
			MaxMessageSize:    64 * 1024,
			AllowedOrigins:    []string{"*"},
			RateLimitReqs:     60,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Persistence: PersistenceConfig{
			URL:                 "", // persistence disabled until a store is configured
			Timeout:             5 * time.Second,
			QueueSize:           1024,
			Workers:             4,
			RateLimit:           0,
			BreakerMinRequests:  10,
			BreakerFailureRatio: 0.6,
			BreakerOpenTimeout:  30 * time.Second,
		},
		Client: ClientConfig{
			RelayURL:             "ws://localhost:8080",
			ReconnectInterval:    3 * time.Second,
			ReconnectMultiplier:  1, // fixed interval
			ReconnectMaxInterval: 30 * time.Second,
			PositionInterval:     time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads and validates configuration.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults
//  2. Config file (optional)
//  3. Environment variables
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configPath, err := findConfigFile()
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// PORT -> server.port, PERSISTENCE_URL -> persistence.url, ...
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the config file to load, or "" when none exists.
// An explicit CONFIG_PATH that does not exist is an error.
func findConfigFile() (string, error) {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("%s=%s: %w", ConfigPathEnvVar, envPath, err)
		}
		return envPath, nil
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

// sliceConfigPaths are parsed from comma-separated strings when they come
// from the environment.
var sliceConfigPaths = []string{
	"relay.allowed_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
// Variables not listed are ignored.
var envMappings = map[string]string{
	// Server
	"port":                     "server.port",
	"http_host":                "server.host",
	"http_read_header_timeout": "server.read_header_timeout",
	"shutdown_timeout":         "server.shutdown_timeout",

	// Relay
	"relay_send_timeout":     "relay.send_timeout",
	"relay_send_queue":       "relay.send_queue",
	"relay_max_message_size": "relay.max_message_size",
	"relay_allowed_origins":  "relay.allowed_origins",
	"rate_limit_requests":    "relay.rate_limit_reqs",
	"rate_limit_window":      "relay.rate_limit_window",
	"disable_rate_limit":     "relay.rate_limit_disabled",

	// Persistence
	"persistence_url":                   "persistence.url",
	"persistence_timeout":               "persistence.timeout",
	"persistence_queue_size":            "persistence.queue_size",
	"persistence_workers":               "persistence.workers",
	"persistence_rate_limit":            "persistence.rate_limit",
	"persistence_breaker_min_requests":  "persistence.breaker_min_requests",
	"persistence_breaker_failure_ratio": "persistence.breaker_failure_ratio",
	"persistence_breaker_open_timeout":  "persistence.breaker_open_timeout",

	// Presence client
	"relay_url":              "client.relay_url",
	"presence_email":         "client.email",
	"presence_name":          "client.name",
	"reconnect_interval":     "client.reconnect_interval",
	"reconnect_multiplier":   "client.reconnect_multiplier",
	"reconnect_max_interval": "client.reconnect_max_interval",
	"position_interval":      "client.position_interval",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable to its koanf path. Unknown
// variables return "" and are skipped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
