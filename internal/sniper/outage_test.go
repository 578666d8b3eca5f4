package sniper

import (
	"testing"
	"time"
)

func TestOutageTrackerWindow(t *testing.T) {
	type degraded struct {
		status int
		url    string
	}
	var degradedEvents []degraded
	var recoveredElapsed []time.Duration

	tracker := NewOutageTracker(
		func(status int, url string, at time.Time) {
			degradedEvents = append(degradedEvents, degraded{status, url})
		},
		func(elapsed time.Duration, at time.Time) {
			recoveredElapsed = append(recoveredElapsed, elapsed)
		},
	)

	t0 := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	tracker.Observe(503, "https://example.com/a", t0)
	tracker.Observe(503, "https://example.com/b", t0.Add(30*time.Second))
	if !tracker.Open() {
		t.Fatalf("window not open after 5xx responses")
	}
	tracker.Observe(200, "https://example.com/a", t0.Add(90*time.Second))
	if tracker.Open() {
		t.Fatalf("window still open after a healthy response")
	}

	if len(degradedEvents) != 1 {
		t.Fatalf("got %d degraded events, want 1 per outage", len(degradedEvents))
	}
	if degradedEvents[0].status != 503 || degradedEvents[0].url != "https://example.com/a" {
		t.Fatalf("degraded event = %+v, want the first failing response", degradedEvents[0])
	}
	if len(recoveredElapsed) != 1 || recoveredElapsed[0] != 90*time.Second {
		t.Fatalf("recovered elapsed = %v, want [1m30s] measured from the window start", recoveredElapsed)
	}
}

func TestOutageTrackerHealthyTrafficIsSilent(t *testing.T) {
	var events int
	tracker := NewOutageTracker(
		func(int, string, time.Time) { events++ },
		func(time.Duration, time.Time) { events++ },
	)

	at := time.Now()
	for _, status := range []int{200, 201, 404, 401} {
		tracker.Observe(status, "https://example.com", at)
	}
	if events != 0 {
		t.Fatalf("healthy and 4xx traffic produced %d events, want 0", events)
	}
}
