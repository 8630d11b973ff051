// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/waypoint/internal/validation"
)

// clearEnv unsets every mapped variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(ConfigPathEnvVar, "")
	os.Unsetenv(ConfigPathEnvVar)
	for key := range envMappings {
		name := strings.ToUpper(key)
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("Server.Addr() = %q", cfg.Server.Addr())
	}
	if cfg.Relay.SendTimeout != 250*time.Millisecond {
		t.Errorf("Relay.SendTimeout = %v", cfg.Relay.SendTimeout)
	}
	if len(cfg.Relay.AllowedOrigins) != 1 || cfg.Relay.AllowedOrigins[0] != "*" {
		t.Errorf("Relay.AllowedOrigins = %v", cfg.Relay.AllowedOrigins)
	}
	if cfg.Persistence.Enabled() {
		t.Error("persistence should be disabled by default")
	}
	if cfg.Persistence.BreakerFailureRatio != 0.6 {
		t.Errorf("BreakerFailureRatio = %v", cfg.Persistence.BreakerFailureRatio)
	}
	if cfg.Client.RelayURL != "ws://localhost:8080" {
		t.Errorf("Client.RelayURL = %q", cfg.Client.RelayURL)
	}
	if cfg.Client.ReconnectInterval != 3*time.Second {
		t.Errorf("Client.ReconnectInterval = %v", cfg.Client.ReconnectInterval)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if !cfg.ShouldWarnAboutOrigins() {
		t.Error("wildcard origin should warn")
	}
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("HTTP_HOST", "127.0.0.1")
	t.Setenv("RELAY_SEND_TIMEOUT", "500ms")
	t.Setenv("RELAY_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("DISABLE_RATE_LIMIT", "true")
	t.Setenv("PERSISTENCE_URL", "http://store:3000/api/nodes")
	t.Setenv("PERSISTENCE_RATE_LIMIT", "2.5")
	t.Setenv("PRESENCE_EMAIL", "Someone@Example.com")
	t.Setenv("RECONNECT_MULTIPLIER", "2")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("UNRELATED_VARIABLE", "ignored")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.Addr() != "127.0.0.1:9090" {
		t.Errorf("Server.Addr() = %q", cfg.Server.Addr())
	}
	if cfg.Relay.SendTimeout != 500*time.Millisecond {
		t.Errorf("Relay.SendTimeout = %v", cfg.Relay.SendTimeout)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if strings.Join(cfg.Relay.AllowedOrigins, "|") != strings.Join(want, "|") {
		t.Errorf("AllowedOrigins = %v, want %v", cfg.Relay.AllowedOrigins, want)
	}
	if cfg.ShouldWarnAboutOrigins() {
		t.Error("explicit origins should not warn")
	}
	if !cfg.Relay.RateLimitDisabled {
		t.Error("RateLimitDisabled should be true")
	}
	if !cfg.Persistence.Enabled() || cfg.Persistence.RateLimit != 2.5 {
		t.Errorf("Persistence = %+v", cfg.Persistence)
	}
	if cfg.Client.Email != "Someone@Example.com" || cfg.Client.ReconnectMultiplier != 2 {
		t.Errorf("Client = %+v", cfg.Client)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
	if err := cfg.ValidateClient(); err != nil {
		t.Errorf("ValidateClient() = %v", err)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "waypoint.yaml")
	yaml := `
server:
  port: 7000
relay:
  send_queue: 32
  allowed_origins:
    - https://app.example.com
persistence:
  url: https://store.example.com/nodes
  workers: 2
logging:
  format: console
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	// Environment beats the file.
	t.Setenv("PORT", "7001")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 7001 {
		t.Errorf("Server.Port = %d, want 7001", cfg.Server.Port)
	}
	if cfg.Relay.SendQueue != 32 {
		t.Errorf("Relay.SendQueue = %d, want 32", cfg.Relay.SendQueue)
	}
	if len(cfg.Relay.AllowedOrigins) != 1 || cfg.Relay.AllowedOrigins[0] != "https://app.example.com" {
		t.Errorf("AllowedOrigins = %v", cfg.Relay.AllowedOrigins)
	}
	if cfg.Persistence.Workers != 2 || cfg.Persistence.URL != "https://store.example.com/nodes" {
		t.Errorf("Persistence = %+v", cfg.Persistence)
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("Logging.Format = %q", cfg.Logging.Format)
	}
	// Untouched keys keep defaults.
	if cfg.Relay.SendTimeout != 250*time.Millisecond {
		t.Errorf("Relay.SendTimeout = %v", cfg.Relay.SendTimeout)
	}
}

func TestLoad_MissingConfigPath(t *testing.T) {
	clearEnv(t)
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing CONFIG_PATH")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		field string
	}{
		{"port out of range", map[string]string{"PORT": "70000"}, "server.port"},
		{"bad host", map[string]string{"HTTP_HOST": "example"}, "server.host"},
		{"zero send queue", map[string]string{"RELAY_SEND_QUEUE": "0"}, "relay.send_queue"},
		{"bad origin", map[string]string{"RELAY_ALLOWED_ORIGINS": "example.com"}, "relay.allowed_origins[0]"},
		{"store not http", map[string]string{"PERSISTENCE_URL": "store:3000"}, "persistence.url"},
		{"ratio above one", map[string]string{"PERSISTENCE_BREAKER_FAILURE_RATIO": "1.5"}, "persistence.breaker_failure_ratio"},
		{"relay url scheme", map[string]string{"RELAY_URL": "http://localhost:8080"}, "client.relay_url"},
		{"email", map[string]string{"PRESENCE_EMAIL": "not-an-email"}, "client.email"},
		{"multiplier below one", map[string]string{"RECONNECT_MULTIPLIER": "0.5"}, "client.reconnect_multiplier"},
		{"max below interval", map[string]string{"RECONNECT_INTERVAL": "1m"}, "client.reconnect_max_interval"},
		{"log level", map[string]string{"LOG_LEVEL": "verbose"}, "logging.level"},
		{"log format", map[string]string{"LOG_FORMAT": "xml"}, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			if err == nil {
				t.Fatal("expected validation error")
			}
			var verr *validation.Error
			if !errors.As(err, &verr) {
				t.Fatalf("error %v is not a validation error", err)
			}
			if !verr.Has(tt.field) {
				t.Errorf("error %q does not name %s", err, tt.field)
			}
		})
	}
}

func TestValidate_MixedWildcardOrigins(t *testing.T) {
	cfg := defaultConfig()
	cfg.Relay.AllowedOrigins = []string{"*", "https://a.example.com"}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error mixing * with explicit origins")
	}
}

func TestValidateClient_RequiresEmail(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.ValidateClient(); !errors.Is(err, ErrMissingEmail) {
		t.Errorf("ValidateClient() = %v, want ErrMissingEmail", err)
	}
	cfg.Client.Email = "a@b.io"
	if err := cfg.ValidateClient(); err != nil {
		t.Errorf("ValidateClient() = %v", err)
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	if err := defaultConfig().Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := map[string]string{
		"PORT":            "server.port",
		"port":            "server.port",
		"PERSISTENCE_URL": "persistence.url",
		"PRESENCE_EMAIL":  "client.email",
		"HOME":            "",
		"HTTP_PORT":       "",
	}
	for in, want := range tests {
		if got := envTransformFunc(in); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", in, got, want)
		}
	}
}
