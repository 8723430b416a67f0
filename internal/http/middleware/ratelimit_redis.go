package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"taskboard/internal/logger"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed-window limiter shared by every replica through
// Redis INCR/EXPIRE. A nil client, or any Redis error, lets requests through.
type RedisLimiter struct {
	client *redis.Client
}

func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{client: client}
}

// KeyFunc extracts the identity a request is counted against. An empty
// result skips limiting.
type KeyFunc func(c *gin.Context) string

func ByClientIP(c *gin.Context) string {
	return c.ClientIP()
}

// ByOwner counts per authenticated owner; it must run after Auth.
func ByOwner(c *gin.Context) string {
	if v, ok := c.Get("owner"); ok {
		if owner, ok := v.(string); ok {
			return owner
		}
	}
	return ""
}

// RedisRateLimit limits by client IP.
// key format: rl:<window_seconds>:<identifier>
func (l *RedisLimiter) RedisRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return l.Limit("rl", ByClientIP, maxRequests, window)
}

func (l *RedisLimiter) Limit(scope string, keyFn KeyFunc, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || l.client == nil {
			c.Next()
			return
		}

		ident := keyFn(c)
		if ident == "" {
			c.Next()
			return
		}

		key := scope + ":" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + ident
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		val, err := l.client.Incr(ctx, key).Result()
		if err != nil {
			logger.Warn("rate limiter redis error", "error", err)
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}

		if val == 1 {
			l.client.Expire(ctx, key, window)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(maxRequests)-val), 10))

		endpoint := scope + ":" + c.FullPath()
		if val > int64(maxRequests) {
			RLBlocked.WithLabelValues(endpoint).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": int(window.Seconds()),
			})
			return
		}

		RLRequests.WithLabelValues(endpoint).Inc()
		c.Next()
	}
}
