package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllowsUpToLimit(t *testing.T) {
	limiter := NewRateLimiter()

	for i := 0; i < eventsPerMinute; i++ {
		assert.True(t, limiter.Allow("session-1"))
	}
	assert.False(t, limiter.Allow("session-1"))

	// Other sessions are unaffected.
	assert.True(t, limiter.Allow("session-2"))
}

func TestRateLimiterCleanupKeepsRecentSessions(t *testing.T) {
	limiter := NewRateLimiter()
	limiter.Allow("session-1")

	limiter.Cleanup()
	// The window just started, so the entry survives and counting continues.
	for i := 1; i < eventsPerMinute; i++ {
		assert.True(t, limiter.Allow("session-1"))
	}
	assert.False(t, limiter.Allow("session-1"))
}
