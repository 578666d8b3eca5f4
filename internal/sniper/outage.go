package sniper

import (
	"sync"
	"time"
)

// OutageTracker maintains a single open/closed outage window over the status
// codes observed on marketplace responses. It is advisory only: it shapes
// log cadence (one "degraded" line per outage instead of one per failure)
// and never changes retry or scheduling behavior.
type OutageTracker struct {
	mu    sync.Mutex
	start time.Time

	onDegraded  func(statusCode int, url string, at time.Time)
	onRecovered func(elapsed time.Duration, at time.Time)
}

func NewOutageTracker(onDegraded func(statusCode int, url string, at time.Time), onRecovered func(elapsed time.Duration, at time.Time)) *OutageTracker {
	return &OutageTracker{onDegraded: onDegraded, onRecovered: onRecovered}
}

// Observe records one response. A 5xx while healthy opens the window and
// emits a degraded signal; anything else while a window is open closes it
// and emits a recovered signal with the elapsed duration. Repeated failures
// inside an open window are no-ops.
func (t *OutageTracker) Observe(statusCode int, url string, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if statusCode >= 500 && statusCode < 600 {
		if t.start.IsZero() {
			t.start = at
			if t.onDegraded != nil {
				t.onDegraded(statusCode, url, at)
			}
		}
		return
	}

	if !t.start.IsZero() {
		elapsed := at.Sub(t.start)
		t.start = time.Time{}
		if t.onRecovered != nil {
			t.onRecovered(elapsed, at)
		}
	}
}

// Open reports whether an outage window is currently open.
func (t *OutageTracker) Open() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.start.IsZero()
}
