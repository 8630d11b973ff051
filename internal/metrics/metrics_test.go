// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

// histogramCount returns the number of observations in h.
func histogramCount(t *testing.T, h prometheus.Histogram) uint64 {
	t.Helper()
	var m io_prometheus_client.Metric
	if err := h.Write(&m); err != nil {
		t.Fatalf("failed to write histogram: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestRecordAPIRequest(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		endpoint   string
		statusCode string
		duration   time.Duration
	}{
		{
			name:       "health check",
			method:     "GET",
			endpoint:   "/health/live",
			statusCode: "200",
			duration:   time.Millisecond,
		},
		{
			name:       "stats",
			method:     "GET",
			endpoint:   "/stats",
			statusCode: "200",
			duration:   2 * time.Millisecond,
		},
		{
			name:       "rate limited upgrade",
			method:     "GET",
			endpoint:   "/ws",
			statusCode: "429",
			duration:   100 * time.Microsecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues(tt.method, tt.endpoint, tt.statusCode))
			RecordAPIRequest(tt.method, tt.endpoint, tt.statusCode, tt.duration)
			after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues(tt.method, tt.endpoint, tt.statusCode))
			if after-before != 1 {
				t.Errorf("expected counter to increase by 1, got %v", after-before)
			}
		})
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests) - before; got != 2 {
		t.Errorf("expected 2 active requests, got %v", got)
	}
	TrackActiveRequest(false)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("expected gauge back at %v, got %v", before, got)
	}
}

func TestRecordFrame(t *testing.T) {
	before := testutil.ToFloat64(PresenceFrames.WithLabelValues("ping"))
	RecordFrame("ping")
	if got := testutil.ToFloat64(PresenceFrames.WithLabelValues("ping")) - before; got != 1 {
		t.Errorf("expected 1, got %v", got)
	}

	before = testutil.ToFloat64(PresenceFramesRejected.WithLabelValues("malformed"))
	RecordRejectedFrame("malformed")
	if got := testutil.ToFloat64(PresenceFramesRejected.WithLabelValues("malformed")) - before; got != 1 {
		t.Errorf("expected 1, got %v", got)
	}
}

func TestRecordBroadcast(t *testing.T) {
	delivered := testutil.ToFloat64(PresenceBroadcastDeliveries.WithLabelValues("delivered"))
	failed := testutil.ToFloat64(PresenceBroadcastDeliveries.WithLabelValues("failed"))
	observed := histogramCount(t, PresenceBroadcastDuration)

	RecordBroadcast(3, 1, time.Millisecond)

	if got := histogramCount(t, PresenceBroadcastDuration) - observed; got != 1 {
		t.Errorf("expected 1 broadcast duration sample, got %d", got)
	}

	if got := testutil.ToFloat64(PresenceBroadcastDeliveries.WithLabelValues("delivered")) - delivered; got != 3 {
		t.Errorf("expected 3 delivered, got %v", got)
	}
	if got := testutil.ToFloat64(PresenceBroadcastDeliveries.WithLabelValues("failed")) - failed; got != 1 {
		t.Errorf("expected 1 failed, got %v", got)
	}
}

func TestRecordPersistenceWrite(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		rejected bool
		label    string
		samples  uint64
	}{
		{"success", nil, false, "success", 1},
		{"failure", errors.New("status 500"), false, "failure", 1},
		{"rejected by open circuit", errors.New("circuit breaker is open"), true, "rejected", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(PersistenceWrites.WithLabelValues(tt.label))
			observed := histogramCount(t, PersistenceWriteDuration)
			RecordPersistenceWrite(10*time.Millisecond, tt.err, tt.rejected)
			if got := testutil.ToFloat64(PersistenceWrites.WithLabelValues(tt.label)) - before; got != 1 {
				t.Errorf("expected %s to increase by 1, got %v", tt.label, got)
			}
			if got := histogramCount(t, PersistenceWriteDuration) - observed; got != tt.samples {
				t.Errorf("expected %d duration samples, got %d", tt.samples, got)
			}
		})
	}
}

func TestRecordPersistenceDrop(t *testing.T) {
	before := testutil.ToFloat64(PersistenceDropped.WithLabelValues("queue_full"))
	RecordPersistenceDrop("queue_full")
	if got := testutil.ToFloat64(PersistenceDropped.WithLabelValues("queue_full")) - before; got != 1 {
		t.Errorf("expected 1, got %v", got)
	}
}

func TestCircuitBreakerMetrics(t *testing.T) {
	cbName := "persistence"

	CircuitBreakerState.WithLabelValues(cbName).Set(2)
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues(cbName)); got != 2 {
		t.Errorf("expected open state, got %v", got)
	}
	CircuitBreakerState.WithLabelValues(cbName).Set(0)

	CircuitBreakerTransitions.WithLabelValues(cbName, "closed", "open").Inc()
	CircuitBreakerTransitions.WithLabelValues(cbName, "open", "half-open").Inc()
	CircuitBreakerTransitions.WithLabelValues(cbName, "half-open", "closed").Inc()
}

func TestConcurrentMetricRecording(t *testing.T) {
	var wg sync.WaitGroup
	before := testutil.ToFloat64(PersistenceSubmitted)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				PersistenceSubmitted.Inc()
				RecordFrame("update_location")
				RecordBroadcast(1, 0, time.Microsecond)
			}
		}()
	}
	wg.Wait()

	if got := testutil.ToFloat64(PersistenceSubmitted) - before; got != 1000 {
		t.Errorf("expected 1000 submissions, got %v", got)
	}
}

func TestMetricsRegistration(t *testing.T) {
	collectors := []prometheus.Collector{
		APIRequestsTotal,
		APIRequestDuration,
		APIActiveRequests,
		APIRateLimitHits,
		WSConnections,
		WSMessagesSent,
		WSMessagesReceived,
		WSErrors,
		PresenceRegistered,
		PresenceRegistrations,
		PresenceFrames,
		PresenceFramesRejected,
		PresenceBroadcastDeliveries,
		PresenceBroadcastDuration,
		PersistenceSubmitted,
		PersistenceDropped,
		PersistenceWrites,
		PersistenceWriteDuration,
		PersistenceQueueDepth,
		CircuitBreakerState,
		CircuitBreakerRequests,
		CircuitBreakerConsecutiveFailures,
		CircuitBreakerTransitions,
		AppInfo,
	}

	for _, m := range collectors {
		ch := make(chan *prometheus.Desc, 10)
		m.Describe(ch)
		close(ch)

		count := 0
		for range ch {
			count++
		}
		if count == 0 {
			t.Errorf("Metric has no descriptors")
		}
	}
}

func TestMetricGathering(t *testing.T) {
	RecordAPIRequest("GET", "/test", "200", time.Millisecond)

	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Logf("Lint errors (may be expected): %v", err)
	}
	for _, p := range problems {
		t.Logf("Metric lint problem: %s", p.Text)
	}
}

func BenchmarkRecordBroadcast(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RecordBroadcast(10, 0, time.Microsecond)
	}
}
