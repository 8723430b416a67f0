package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether the task storage backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the probes. Only storage reachability decides the
// status; the process itself is alive as long as it answers.
type HealthHandler struct {
	storage Pinger
	driver  string
	version string
	started time.Time
}

func NewHealthHandler(storage Pinger, driver, version string) *HealthHandler {
	return &HealthHandler{
		storage: storage,
		driver:  driver,
		version: version,
		started: time.Now(),
	}
}

// storageStatus pings the backend within timeout and returns the HTTP status
// the probe should answer with.
func (h *HealthHandler) storageStatus(c *gin.Context, timeout time.Duration) (int, error) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	if err := h.storage.Ping(ctx); err != nil {
		return http.StatusServiceUnavailable, err
	}
	return http.StatusOK, nil
}

// Liveness answers /healthz without touching storage.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness answers /readyz with the storage check spelled out.
func (h *HealthHandler) Readiness(c *gin.Context) {
	code, err := h.storageStatus(c, 5*time.Second)

	storage := gin.H{"driver": h.driver, "ok": err == nil}
	if err != nil {
		storage["error"] = err.Error()
	}

	c.JSON(code, gin.H{
		"ready":   err == nil,
		"version": h.version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
		"storage": storage,
	})
}

// Health is the short form used by load balancers.
func (h *HealthHandler) Health(c *gin.Context) {
	code, err := h.storageStatus(c, 3*time.Second)
	if err != nil {
		c.JSON(code, gin.H{"status": "unhealthy", "error": "storage unavailable"})
		return
	}
	c.JSON(code, gin.H{"status": "ok", "version": h.version})
}
