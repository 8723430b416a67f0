package middleware

import (
	"time"

	"taskboard/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// RequestLogger tags each request with an id, puts a scoped slog logger in
// the request context and logs one line when the request finishes.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(requestIDHeader, reqID)

		l := logger.With("request_id", reqID)
		c.Request = c.Request.WithContext(logger.NewContext(c.Request.Context(), l))

		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start).Round(time.Microsecond).String(),
			"ip", c.ClientIP(),
		}
		switch {
		case status >= 500:
			l.Error("request", args...)
		case status >= 400:
			l.Warn("request", args...)
		default:
			l.Info("request", args...)
		}
	}
}
