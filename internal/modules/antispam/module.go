package antispam

import (
	"sync"
	"time"
)

type record struct {
	lastEvent time.Time
	burst     int
}

// Tracker keeps one burst counter per user. A message arriving within the
// window of the previous one increments the counter, otherwise the counter
// restarts at 1. Reaching the threshold classifies the message as spam and
// zeroes the counter, so the user must produce a fresh full burst before
// being flagged again. Records are never evicted.
type Tracker struct {
	mu        sync.Mutex
	window    time.Duration
	threshold int
	records   map[string]*record
}

func New(window time.Duration, threshold int) *Tracker {
	return &Tracker{
		window:    window,
		threshold: threshold,
		records:   make(map[string]*record),
	}
}

// Classify is called once per inbound message and mutates the user's record
// in place. It never fails.
func (t *Tracker) Classify(userID string, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec := t.records[userID]
	if rec == nil {
		rec = &record{}
		t.records[userID] = rec
	}

	if !rec.lastEvent.IsZero() && now.Sub(rec.lastEvent) < t.window {
		rec.burst++
	} else {
		rec.burst = 1
	}
	rec.lastEvent = now

	if rec.burst >= t.threshold {
		rec.burst = 0
		return true
	}
	return false
}
