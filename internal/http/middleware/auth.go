package middleware

import (
	"net/http"
	"strings"

	"taskboard/internal/service"

	"github.com/gin-gonic/gin"
)

// Auth checks the bearer token and stores its subject under "owner". With a
// nil tokens value authentication is disabled and every request passes.
func Auth(tokens *service.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokens == nil {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		owner, err := tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("owner", owner)
		c.Next()
	}
}

// OptionalAuth sets "owner" when a valid bearer token is present and never
// rejects the request.
func OptionalAuth(tokens *service.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokens != nil {
			if token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok {
				if owner, err := tokens.Parse(strings.TrimSpace(token)); err == nil {
					c.Set("owner", owner)
				}
			}
		}
		c.Next()
	}
}
