package middleware

import (
	"github.com/gin-gonic/gin"
)

// CORS grants allowedOrigin with credentials. When allowedOrigin is empty any
// origin may read responses, but never with credentials.
func CORS(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		h := c.Writer.Header()
		switch {
		case origin == "":
		case allowedOrigin == "":
			h.Set("Access-Control-Allow-Origin", "*")
		case origin == allowedOrigin:
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")
		}
		if h.Get("Access-Control-Allow-Origin") != "" {
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
