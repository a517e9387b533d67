package security

import (
	"sync"
	"time"
)

// RateLimiter is a sliding-window limiter keyed by caller identity
// (usually the client IP).
type RateLimiter struct {
	maxRequests int
	window      time.Duration

	mu       sync.Mutex
	requests map[string][]time.Time
	now      func() time.Time
}

// NewRateLimiter allows maxRequests per window per identifier.
func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		maxRequests: maxRequests,
		window:      window,
		requests:    make(map[string][]time.Time),
		now:         time.Now,
	}
}

// Allow records a request when permitted and returns the remaining quota.
func (rl *RateLimiter) Allow(identifier string) (bool, int) {
	now := rl.now()
	cutoff := now.Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	kept := rl.requests[identifier][:0]
	for _, t := range rl.requests[identifier] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	rl.requests[identifier] = kept

	if len(kept) >= rl.maxRequests {
		return false, 0
	}
	rl.requests[identifier] = append(kept, now)
	return true, rl.maxRequests - len(kept) - 1
}

// ResetAfter returns how long until the identifier's window frees a slot.
func (rl *RateLimiter) ResetAfter(identifier string) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	ts := rl.requests[identifier]
	if len(ts) == 0 {
		return 0
	}
	oldest := ts[0]
	for _, t := range ts[1:] {
		if t.Before(oldest) {
			oldest = t
		}
	}
	d := oldest.Add(rl.window).Sub(rl.now())
	if d < 0 {
		return 0
	}
	return d
}

// Cleanup drops identifiers whose entire window has expired.
func (rl *RateLimiter) Cleanup() {
	cutoff := rl.now().Add(-rl.window)
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for id, ts := range rl.requests {
		expired := true
		for _, t := range ts {
			if t.After(cutoff) {
				expired = false
				break
			}
		}
		if expired {
			delete(rl.requests, id)
		}
	}
}
