// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package validation

import (
	"errors"
	"strings"
	"testing"
)

type listener struct {
	Port int    `koanf:"port" validate:"min=1,max=65535"`
	Host string `koanf:"host" validate:"omitempty,ip"`
}

type settings struct {
	Server  listener `koanf:"server"`
	Relay   string   `koanf:"relay_url" validate:"required,ws_url"`
	Store   string   `koanf:"store_url" validate:"omitempty,http_url"`
	Origins []string `koanf:"origins" validate:"min=1,dive,origin"`
	Email   string   `koanf:"email" validate:"omitempty,identity,email"`
	Level   string   `koanf:"level" validate:"oneof=debug info warn error"`
	Untaged string   `validate:"max=3"`
}

func validSettings() settings {
	return settings{
		Server:  listener{Port: 8080},
		Relay:   "ws://localhost:8080",
		Origins: []string{"*"},
		Level:   "info",
	}
}

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 == nil {
		t.Fatal("GetValidator() should not return nil")
	}
	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
}

func TestValidateStruct_Valid(t *testing.T) {
	s := validSettings()
	s.Store = "https://store.example.com/api/nodes"
	s.Origins = []string{"https://app.example.com", "http://localhost:3000/"}
	s.Email = "a@b.io"

	if err := ValidateStruct(&s); err != nil {
		t.Fatalf("ValidateStruct() = %v, want nil", err)
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*settings)
		field   string
		tag     string
		message string
	}{
		{
			name:    "port too high",
			mutate:  func(s *settings) { s.Server.Port = 70000 },
			field:   "server.port",
			tag:     "max",
			message: "server.port must be at most 65535",
		},
		{
			name:    "port zero",
			mutate:  func(s *settings) { s.Server.Port = 0 },
			field:   "server.port",
			tag:     "min",
			message: "server.port must be at least 1",
		},
		{
			name:    "bad host",
			mutate:  func(s *settings) { s.Server.Host = "not-an-ip" },
			field:   "server.host",
			tag:     "ip",
			message: "server.host must be a valid IP address",
		},
		{
			name:    "missing relay url",
			mutate:  func(s *settings) { s.Relay = "" },
			field:   "relay_url",
			tag:     "required",
			message: "relay_url is required",
		},
		{
			name:    "http scheme for relay",
			mutate:  func(s *settings) { s.Relay = "http://localhost:8080" },
			field:   "relay_url",
			tag:     "ws_url",
			message: "relay_url must be a ws:// or wss:// URL",
		},
		{
			name:   "relay url without host",
			mutate: func(s *settings) { s.Relay = "ws://" },
			field:  "relay_url",
			tag:    "ws_url",
		},
		{
			name:   "store url not http",
			mutate: func(s *settings) { s.Store = "ftp://store" },
			field:  "store_url",
			tag:    "http_url",
		},
		{
			name:    "no origins",
			mutate:  func(s *settings) { s.Origins = nil },
			field:   "origins",
			tag:     "min",
			message: "origins must have at least 1 entries",
		},
		{
			name:   "origin with path",
			mutate: func(s *settings) { s.Origins = []string{"https://a.example.com/app"} },
			field:  "origins[0]",
			tag:    "origin",
		},
		{
			name:   "blank email",
			mutate: func(s *settings) { s.Email = "   " },
			field:  "email",
			tag:    "identity",
		},
		{
			name:    "bad level",
			mutate:  func(s *settings) { s.Level = "loud" },
			field:   "level",
			tag:     "oneof",
			message: "level must be one of: debug info warn error",
		},
		{
			name:    "untagged field uses Go name",
			mutate:  func(s *settings) { s.Untaged = "toolong" },
			field:   "Untaged",
			tag:     "max",
			message: "Untaged must be at most 3 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.mutate(&s)

			err := ValidateStruct(&s)
			if err == nil {
				t.Fatal("expected validation error")
			}

			var verr *Error
			if !errors.As(err, &verr) {
				t.Fatalf("error type = %T, want *Error", err)
			}
			if len(verr.Errors()) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(verr.Errors()), err)
			}
			fe := verr.Errors()[0]
			if fe.Field() != tt.field {
				t.Errorf("Field() = %q, want %q", fe.Field(), tt.field)
			}
			if fe.Tag() != tt.tag {
				t.Errorf("Tag() = %q, want %q", fe.Tag(), tt.tag)
			}
			if tt.message != "" && fe.Error() != tt.message {
				t.Errorf("Error() = %q, want %q", fe.Error(), tt.message)
			}
			if !verr.Has(tt.field) {
				t.Errorf("Has(%q) = false", tt.field)
			}
		})
	}
}

func TestValidateStruct_MultipleErrors(t *testing.T) {
	s := validSettings()
	s.Server.Port = 0
	s.Level = ""

	err := ValidateStruct(&s)
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if len(verr.Errors()) != 2 {
		t.Fatalf("got %d errors, want 2", len(verr.Errors()))
	}
	if !strings.Contains(err.Error(), "; ") {
		t.Errorf("combined message should join with '; ': %q", err.Error())
	}
	if verr.Has("relay_url") {
		t.Error("Has(relay_url) should be false")
	}
}

func TestValidateStruct_NonStruct(t *testing.T) {
	err := ValidateStruct("not a struct")
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if verr.Errors()[0].Field() != "unknown" {
		t.Errorf("Field() = %q, want unknown", verr.Errors()[0].Field())
	}
}

func TestError_Empty(t *testing.T) {
	if got := (&Error{}).Error(); got != "validation failed" {
		t.Errorf("Error() = %q", got)
	}
}
