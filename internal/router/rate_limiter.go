package router

import (
	"sync"
	"time"
)

// Events allowed per session per minute. Generous enough for a student
// hammering a text widget, low enough to keep a broken client from flooding
// the broadcast fan-out.
const eventsPerMinute = 120

// RateLimiter implements per-session event rate limiting with a minute-based
// window.
type RateLimiter struct {
	mu       sync.Mutex
	sessions map[string]*sessionLimit
}

type sessionLimit struct {
	eventCount  int
	windowStart time.Time
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{sessions: make(map[string]*sessionLimit)}
}

// Allow reports whether the session may submit another event.
func (rl *RateLimiter) Allow(sessionID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()

	limit, exists := rl.sessions[sessionID]
	if !exists {
		rl.sessions[sessionID] = &sessionLimit{eventCount: 1, windowStart: now}
		return true
	}

	if now.Sub(limit.windowStart) >= time.Minute {
		limit.eventCount = 1
		limit.windowStart = now
		return true
	}

	if limit.eventCount >= eventsPerMinute {
		return false
	}

	limit.eventCount++
	return true
}

// Cleanup removes stale session entries. Called periodically by the
// application.
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for sessionID, limit := range rl.sessions {
		if now.Sub(limit.windowStart) > 5*time.Minute {
			delete(rl.sessions, sessionID)
		}
	}
}
