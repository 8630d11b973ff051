// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package persistence

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/waypoint/internal/models"
)

// DefaultTimeout bounds a single store write.
const DefaultTimeout = 5 * time.Second

// maxErrorBody caps how much of a rejected response is kept for logging.
const maxErrorBody = 512

// Writer stores one position record.
type Writer interface {
	Write(ctx context.Context, rec models.PositionRecord) error
}

// WriterFunc adapts a function to the Writer interface.
type WriterFunc func(ctx context.Context, rec models.PositionRecord) error

// Write calls f.
func (f WriterFunc) Write(ctx context.Context, rec models.PositionRecord) error {
	return f(ctx, rec)
}

// DiscardWriter accepts and drops every record. Used when no store URL is
// configured.
type DiscardWriter struct{}

// Write implements Writer.
func (DiscardWriter) Write(context.Context, models.PositionRecord) error { return nil }

// StatusError reports a non-2xx response from the store.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("store returned %s", e.Status)
	}
	return fmt.Sprintf("store returned %s: %s", e.Status, e.Body)
}

// HTTPWriter POSTs node records to the store's REST endpoint.
type HTTPWriter struct {
	url    string
	client *http.Client
}

// NewHTTPWriter creates a writer for url. A zero timeout uses DefaultTimeout.
func NewHTTPWriter(url string, timeout time.Duration) *HTTPWriter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPWriter{
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// URL returns the endpoint records are posted to.
func (w *HTTPWriter) URL() string {
	return w.url
}

// Write implements Writer.
func (w *HTTPWriter) Write(ctx context.Context, rec models.PositionRecord) error {
	body, err := json.Marshal(NewNodeRecord(rec))
	if err != nil {
		return fmt.Errorf("marshal node record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(bytes.TrimSpace(snippet)),
		}
	}

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
