package state

import (
	"sync"
	"time"
)

// LockSet provides per-chat re-entrancy locks for the polling fan-out: a new
// tick must skip a chat still being processed from a previous tick.
type LockSet struct {
	mu     sync.Mutex
	active map[string]bool
}

// NewLockSet builds an empty lock set.
func NewLockSet() *LockSet {
	return &LockSet{active: make(map[string]bool)}
}

// TryLock marks chatID as in-flight and returns true, or returns false if it
// is already held.
func (l *LockSet) TryLock(chatID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active[chatID] {
		return false
	}
	l.active[chatID] = true
	return true
}

// Unlock releases the chat's lock.
func (l *LockSet) Unlock(chatID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.active, chatID)
}

// ResponseTracker records when the bot last replied to each chat, enforcing
// a minimum gap between replies to the same customer.
type ResponseTracker struct {
	mu   sync.Mutex
	last map[string]time.Time
	now  func() time.Time
}

// NewResponseTracker builds an empty tracker.
func NewResponseTracker() *ResponseTracker {
	return &ResponseTracker{
		last: make(map[string]time.Time),
		now:  time.Now,
	}
}

// WithClock overrides the tracker clock. Test hook.
func (r *ResponseTracker) WithClock(now func() time.Time) *ResponseTracker {
	r.now = now
	return r
}

// AllowedAfter reports whether at least gap has passed since the last
// recorded reply to chatID.
func (r *ResponseTracker) AllowedAfter(chatID string, gap time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	last, ok := r.last[chatID]
	if !ok {
		return true
	}
	return r.now().Sub(last) >= gap
}

// Record stamps chatID with the current time.
func (r *ResponseTracker) Record(chatID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last[chatID] = r.now()
}

// Sweep drops entries older than maxAge.
func (r *ResponseTracker) Sweep(maxAge time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-maxAge)
	for chatID, at := range r.last {
		if at.Before(cutoff) {
			delete(r.last, chatID)
		}
	}
}
