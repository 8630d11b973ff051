// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/tomtom215/waypoint/internal/validation"
)

// ErrMissingEmail is returned by ValidateClient when no identity is set.
var ErrMissingEmail = errors.New("PRESENCE_EMAIL is required for the presence client")

// Validate checks every section's struct tags and the cross-field rules
// tags cannot express.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}
	return c.validateOrigins()
}

// ValidateClient adds the checks only the presence client needs.
func (c *Config) ValidateClient() error {
	if strings.TrimSpace(c.Client.Email) == "" {
		return ErrMissingEmail
	}
	return nil
}

// validateOrigins rejects "*" mixed with explicit origins, which would
// silently allow everything.
func (c *Config) validateOrigins() error {
	if len(c.Relay.AllowedOrigins) < 2 {
		return nil
	}
	for _, o := range c.Relay.AllowedOrigins {
		if o == "*" {
			return fmt.Errorf("RELAY_ALLOWED_ORIGINS: \"*\" cannot be combined with explicit origins")
		}
	}
	return nil
}

// ShouldWarnAboutOrigins reports whether any browser page may open a relay
// connection.
func (c *Config) ShouldWarnAboutOrigins() bool {
	for _, o := range c.Relay.AllowedOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
