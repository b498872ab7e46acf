package auth

import (
	"sync"
	"time"
)

// AttemptTracker counts failed login attempts per client identity within a
// sliding window. It is an explicit dependency of the login handler rather
// than process-global state, so tests can construct and reset their own.
type AttemptTracker struct {
	mu       sync.Mutex
	window   time.Duration
	max      int
	now      func() time.Time
	attempts map[string][]time.Time
}

func NewAttemptTracker(max int, window time.Duration) *AttemptTracker {
	return &AttemptTracker{
		window:   window,
		max:      max,
		now:      time.Now,
		attempts: make(map[string][]time.Time),
	}
}

// Allowed reports whether the client may attempt a login, and if not, how
// long until the oldest counted attempt leaves the window.
func (t *AttemptTracker) Allowed(key string) (bool, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	recent := t.prune(key)
	if len(recent) < t.max {
		return true, 0
	}
	retryAfter := recent[0].Add(t.window).Sub(t.now())
	if retryAfter < time.Second {
		retryAfter = time.Second
	}
	return false, retryAfter
}

// RecordFailure counts one failed attempt for the client.
func (t *AttemptTracker) RecordFailure(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.attempts[key] = append(t.prune(key), t.now())
}

// Reset clears all recorded attempts.
func (t *AttemptTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.attempts = make(map[string][]time.Time)
}

// prune drops attempts older than the window. Caller holds the lock.
func (t *AttemptTracker) prune(key string) []time.Time {
	cutoff := t.now().Add(-t.window)
	kept := t.attempts[key][:0]
	for _, at := range t.attempts[key] {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}
	if len(kept) == 0 {
		delete(t.attempts, key)
		return nil
	}
	t.attempts[key] = kept
	return kept
}
