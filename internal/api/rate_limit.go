package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type sessionRequestLimiter interface {
	Allow() bool
}

type fixedWindowLimiter struct {
	mu          sync.Mutex
	limit       int
	windowStart time.Time
	count       int
	now         func() time.Time
}

func newFixedWindowLimiter(limit int, now func() time.Time) *fixedWindowLimiter {
	if now == nil {
		now = time.Now
	}

	return &fixedWindowLimiter{
		limit: limit,
		now:   now,
	}
}

func (l *fixedWindowLimiter) Allow() bool {
	currentWindow := l.now().UTC().Truncate(time.Minute)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.windowStart.IsZero() || !l.windowStart.Equal(currentWindow) {
		l.windowStart = currentWindow
		l.count = 0
	}

	if l.count >= l.limit {
		return false
	}

	l.count++
	return true
}

// newSessionRateLimiter returns nil, meaning unlimited, for a limit <= 0.
func newSessionRateLimiter(limitPerMinute int) sessionRequestLimiter {
	if limitPerMinute <= 0 {
		return nil
	}
	return newFixedWindowLimiter(limitPerMinute, time.Now)
}

func enforceSessionRateLimit(c *gin.Context, limiter sessionRequestLimiter) bool {
	if limiter == nil {
		return true
	}

	if limiter.Allow() {
		return true
	}

	writeError(c, http.StatusTooManyRequests, "session_rate_limited", "too many new forms, try again in a minute")
	return false
}
