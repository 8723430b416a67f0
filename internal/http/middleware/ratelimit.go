package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type clientInfo struct {
	start time.Time
	count int
}

// MemoryLimiter is an in-process fixed-window limiter keyed by client IP.
// It is used when Redis is not configured.
type MemoryLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientInfo
	now     func() time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{clients: make(map[string]*clientInfo), now: time.Now}
}

// Allow counts one hit for key and reports whether it is within maxRequests
// for the current window.
func (l *MemoryLimiter) Allow(key string, maxRequests int, window time.Duration) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	ci, ok := l.clients[key]
	if !ok || now.Sub(ci.start) > window {
		ci = &clientInfo{start: now}
		l.clients[key] = ci
	}
	ci.count++

	remaining := maxRequests - ci.count
	if remaining < 0 {
		remaining = 0
	}
	return ci.count <= maxRequests, remaining
}

// Sweep drops windows that ended before now-window.
func (l *MemoryLimiter) Sweep(window time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for k, ci := range l.clients {
		if now.Sub(ci.start) > window {
			delete(l.clients, k)
		}
	}
}

// RunJanitor sweeps expired windows until ctx is done.
func (l *MemoryLimiter) RunJanitor(ctx context.Context, window time.Duration) {
	ticker := time.NewTicker(window)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep(window)
		}
	}
}

// SimpleRateLimit blocks clients that send more than maxRequests per window
func (l *MemoryLimiter) SimpleRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, remaining := l.Allow(c.ClientIP(), maxRequests, window)
		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !ok {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}
