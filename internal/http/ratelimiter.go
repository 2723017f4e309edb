package httpapi

import (
	"sync"
	"time"
)

// SlidingWindowLimiter caps how many bundle exports may start inside a rolling
// time window. Exports write whole replay trees to disk, so the admin endpoint
// throttles them instead of queueing.
type SlidingWindowLimiter struct {
	window time.Duration
	limit  int
	clock  func() time.Time

	mu     sync.Mutex
	grants []time.Time
}

// NewSlidingWindowLimiter builds a limiter permitting limit grants per window.
// A nil clock uses the wall clock; a non-positive window or limit disables
// throttling.
func NewSlidingWindowLimiter(window time.Duration, limit int, clock func() time.Time) *SlidingWindowLimiter {
	if window <= 0 || limit <= 0 {
		return &SlidingWindowLimiter{window: window, limit: limit}
	}
	if clock == nil {
		clock = time.Now
	}
	return &SlidingWindowLimiter{
		window: window,
		limit:  limit,
		clock:  clock,
	}
}

// Allow reports whether another export may start now, recording the grant
// when it may.
func (l *SlidingWindowLimiter) Allow() bool {
	if l == nil || l.limit <= 0 || l.window <= 0 {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	cutoff := now.Add(-l.window)

	//1.- Grants are appended in time order, so everything at or before the
	// first one still inside the window has aged out.
	keep := 0
	for keep < len(l.grants) && !l.grants[keep].After(cutoff) {
		keep++
	}
	l.grants = append(l.grants[:0], l.grants[keep:]...)

	if len(l.grants) >= l.limit {
		return false
	}
	l.grants = append(l.grants, now)
	return true
}
