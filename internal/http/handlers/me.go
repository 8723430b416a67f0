package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Me reports who the caller is authenticated as.
func (h *Handler) Me(c *gin.Context) {
	owner, ok := getOwner(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"owner":         owner,
	})
}
