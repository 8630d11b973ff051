// Waypoint - AR Wayfinding Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package tracker

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/waypoint/internal/client"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/models"
	"github.com/tomtom215/waypoint/internal/protocol"
)

func init() {
	logging.Init(logging.Config{Level: "error", Format: "json", Output: io.Discard})
}

var base = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

func update(id string, x float64, at time.Time) protocol.PositionUpdate {
	return protocol.PositionUpdate{
		Identity:  models.NormalizeIdentity(id),
		Position:  models.Position{X: x},
		Floor:     2,
		Timestamp: at,
	}
}

func TestTracker_ObserveAndGet(t *testing.T) {
	tr := New()
	tr.Observe(update("Alice@Example.com", 1, base))

	p, ok := tr.Get("alice@example.com")
	if !ok {
		t.Fatal("expected alice to be known")
	}
	if p.Position.X != 1 || p.Floor != 2 || !p.LastSeen.Equal(base) {
		t.Errorf("unexpected person: %+v", p)
	}

	if _, ok := tr.Get("bob@example.com"); ok {
		t.Error("bob should be unknown")
	}
}

func TestTracker_IgnoresZeroIdentity(t *testing.T) {
	tr := New()
	tr.Observe(update("", 1, base))
	if n := len(tr.People()); n != 0 {
		t.Errorf("People() = %d entries, want 0", n)
	}
}

func TestTracker_IgnoresStaleUpdates(t *testing.T) {
	tr := New()
	tr.Observe(update("a@x.io", 5, base))
	tr.Observe(update("a@x.io", 1, base.Add(-time.Second)))

	p, _ := tr.Get("a@x.io")
	if p.Position.X != 5 {
		t.Errorf("stale update applied: X = %v, want 5", p.Position.X)
	}

	tr.Observe(update("a@x.io", 7, base.Add(time.Second)))
	p, _ = tr.Get("a@x.io")
	if p.Position.X != 7 {
		t.Errorf("fresh update not applied: X = %v, want 7", p.Position.X)
	}
}

func TestTracker_ZeroTimestampUsesClock(t *testing.T) {
	tr := New()
	tr.now = func() time.Time { return base }
	tr.Observe(update("a@x.io", 1, time.Time{}))

	p, _ := tr.Get("a@x.io")
	if !p.LastSeen.Equal(base) {
		t.Errorf("LastSeen = %v, want %v", p.LastSeen, base)
	}
}

func TestTracker_PeopleSorted(t *testing.T) {
	tr := New()
	for _, id := range []string{"c@x.io", "a@x.io", "b@x.io"} {
		tr.Observe(update(id, 0, base))
	}

	people := tr.People()
	want := []models.Identity{"a@x.io", "b@x.io", "c@x.io"}
	if len(people) != len(want) {
		t.Fatalf("got %d people, want %d", len(people), len(want))
	}
	for i, p := range people {
		if p.Identity != want[i] {
			t.Errorf("people[%d] = %s, want %s", i, p.Identity, want[i])
		}
	}
}

func TestTracker_SelectNotifies(t *testing.T) {
	tr := New()
	var got []Person
	tr.OnSelectedChanged(func(p Person, selected bool) {
		if selected {
			got = append(got, p)
		}
	})

	tr.Observe(update("a@x.io", 1, base))
	if len(got) != 0 {
		t.Fatalf("notified before selection: %d", len(got))
	}

	tr.Select("A@X.io")
	if len(got) != 1 || got[0].Position.X != 1 {
		t.Fatalf("select of known user should notify immediately, got %+v", got)
	}

	tr.Observe(update("a@x.io", 2, base.Add(time.Second)))
	tr.Observe(update("b@x.io", 9, base.Add(time.Second)))
	if len(got) != 2 || got[1].Position.X != 2 {
		t.Errorf("expected only selected user's update, got %+v", got)
	}

	sel, ok := tr.Selected()
	if !ok || sel.Position.X != 2 {
		t.Errorf("Selected() = %+v, %v", sel, ok)
	}
	if tr.SelectedIdentity() != "a@x.io" {
		t.Errorf("SelectedIdentity() = %q", tr.SelectedIdentity())
	}
}

func TestTracker_SelectUnknownWaitsForUpdate(t *testing.T) {
	tr := New()
	calls := 0
	tr.OnSelectedChanged(func(Person, bool) { calls++ })

	tr.Select("later@x.io")
	if calls != 0 {
		t.Errorf("calls = %d, want 0 for unknown selection", calls)
	}
	if _, ok := tr.Selected(); ok {
		t.Error("Selected() should be false until a position arrives")
	}

	tr.Observe(update("later@x.io", 3, base))
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestTracker_ClearSelection(t *testing.T) {
	tr := New()
	var cleared int
	tr.OnSelectedChanged(func(_ Person, selected bool) {
		if !selected {
			cleared++
		}
	})

	tr.ClearSelection()
	if cleared != 0 {
		t.Errorf("clearing an empty selection notified %d times", cleared)
	}

	tr.Select("a@x.io")
	tr.ClearSelection()
	if cleared != 1 {
		t.Errorf("cleared = %d, want 1", cleared)
	}
	if !tr.SelectedIdentity().IsZero() {
		t.Error("selection should be empty")
	}

	tr.Select("a@x.io")
	tr.Select("  ")
	if cleared != 2 {
		t.Errorf("blank Select should clear, cleared = %d", cleared)
	}
}

func TestTracker_DistanceTo(t *testing.T) {
	tr := New()
	tr.Observe(protocol.PositionUpdate{
		Identity:  "a@x.io",
		Position:  models.Position{X: 3, Y: 0, Z: 4},
		Timestamp: base,
	})

	d, ok := tr.DistanceTo("a@x.io", models.Position{})
	if !ok || d != 5 {
		t.Errorf("DistanceTo = %v, %v; want 5, true", d, ok)
	}
	if _, ok := tr.DistanceTo("nobody@x.io", models.Position{}); ok {
		t.Error("DistanceTo unknown user should be false")
	}
}

func TestTracker_Prune(t *testing.T) {
	tr := New()
	tr.now = func() time.Time { return base }
	tr.Observe(update("old@x.io", 0, base.Add(-10*time.Minute)))
	tr.Observe(update("new@x.io", 0, base.Add(-time.Second)))

	if n := tr.Prune(time.Minute); n != 1 {
		t.Errorf("Prune() = %d, want 1", n)
	}
	if _, ok := tr.Get("old@x.io"); ok {
		t.Error("old@x.io should be pruned")
	}
	if _, ok := tr.Get("new@x.io"); !ok {
		t.Error("new@x.io should remain")
	}
}

func TestTracker_AttachDetach(t *testing.T) {
	c := client.New(client.Config{URL: "ws://127.0.0.1:1"})
	tr := New()

	tr.Attach(c)
	if n := c.Dispatcher().Count(protocol.TypePositionUpdate); n != 1 {
		t.Fatalf("subscriptions after Attach = %d, want 1", n)
	}

	c.Dispatcher().Dispatch(client.Event{
		Type:    protocol.TypePositionUpdate,
		Message: update("a@x.io", 4, base),
	})
	if _, ok := tr.Get("a@x.io"); !ok {
		t.Error("dispatched update should reach the tracker")
	}

	tr.Attach(c)
	if n := c.Dispatcher().Count(protocol.TypePositionUpdate); n != 1 {
		t.Errorf("re-Attach should replace the subscription, got %d", n)
	}

	tr.Detach()
	if n := c.Dispatcher().Count(protocol.TypePositionUpdate); n != 0 {
		t.Errorf("subscriptions after Detach = %d, want 0", n)
	}
}

func TestTracker_ConcurrentObserve(t *testing.T) {
	tr := New()
	tr.Select("a@x.io")
	tr.OnSelectedChanged(func(Person, bool) {})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.Observe(update("a@x.io", float64(j), base.Add(time.Duration(i*100+j))))
				_ = tr.People()
			}
		}(i)
	}
	wg.Wait()

	if n := len(tr.People()); n != 1 {
		t.Errorf("People() = %d, want 1", n)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		d    float64
		want Proximity
	}{
		{0, ProximityArrived},
		{0.5, ProximityArrived},
		{0.51, ProximityNear},
		{2, ProximityNear},
		{2.01, ProximityFar},
		{100, ProximityFar},
	}
	for _, tt := range tests {
		if got := Classify(tt.d); got != tt.want {
			t.Errorf("Classify(%v) = %v, want %v", tt.d, got, tt.want)
		}
	}
	if ProximityArrived.String() != "arrived" || Proximity(9).String() != "Proximity(9)" {
		t.Error("unexpected Proximity strings")
	}
}
