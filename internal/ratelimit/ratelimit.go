// Package ratelimit provides a per-phone sliding-window message limiter.
// Windows live in process memory only; consistency across restarts is not
// required.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter tracks request timestamps per phone number within a sliding
// window. It is evaluated once per inbound message, before any other
// processing, independent of conversation state.
type Limiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	history map[string][]time.Time

	now func() time.Time // test clock
}

// New creates a limiter allowing max requests per window per phone number.
func New(max int, window time.Duration) *Limiter {
	return &Limiter{
		max:     max,
		window:  window,
		history: make(map[string][]time.Time),
		now:     time.Now,
	}
}

// Allow records a request for phone if the window has room. When rejected it
// returns the time remaining until the oldest retained request leaves the
// window and another attempt could succeed.
func (l *Limiter) Allow(phone string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	kept := l.history[phone][:0]
	for _, ts := range l.history[phone] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= l.max {
		l.history[phone] = kept
		retryAfter := l.window - now.Sub(kept[0])
		return false, retryAfter
	}

	l.history[phone] = append(kept, now)
	return true, 0
}
