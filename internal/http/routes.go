package http

import (
	"time"

	"taskboard/internal/config"
	"taskboard/internal/http/handlers"
	"taskboard/internal/http/middleware"
	"taskboard/internal/service"
	"taskboard/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
)

// Deps is everything the router wires together. Tokens nil disables auth;
// Redis nil switches rate limiting to the in-process limiter.
type Deps struct {
	Config  *config.Config
	Store   *service.TaskStore
	Hub     *ws.Hub
	Tokens  *service.Tokens
	Redis   *redis.Client
	Limiter *middleware.MemoryLimiter
}

func NewEngine(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics(), middleware.CORS(d.Config.AllowedOrigin))
	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	cfg := d.Config
	h := handlers.NewHandler(d.Store)
	healthHandler := handlers.NewHealthHandler(d.Store, cfg.KVDriver, cfg.Version)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiRateWindow := time.Duration(cfg.APIRateWindowSeconds) * time.Second
	var rateLimit gin.HandlerFunc
	if d.Redis != nil {
		rateLimit = middleware.NewRedisLimiter(d.Redis).RedisRateLimit(cfg.APIRateLimit, apiRateWindow)
	} else {
		limiter := d.Limiter
		if limiter == nil {
			limiter = middleware.NewMemoryLimiter()
		}
		rateLimit = limiter.SimpleRateLimit(cfg.APIRateLimit, apiRateWindow)
	}

	v1 := r.Group("/api/v1")
	v1.Use(rateLimit)
	registerAPIRoutes(v1, h, d)

	// change feed
	if d.Hub != nil {
		r.GET("/ws", ws.HandleWS(d.Hub, d.Store, d.Tokens, cfg.AllowedOrigin))
	}
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, d Deps) {
	auth := middleware.Auth(d.Tokens)

	// per-owner write limit, only meaningful with auth and Redis
	writeRL := middleware.NewRedisLimiter(d.Redis).Limit("write_rl", middleware.ByOwner,
		d.Config.WriteRateLimit, time.Duration(d.Config.APIRateWindowSeconds)*time.Second)

	api.GET("/me", middleware.OptionalAuth(d.Tokens), h.Me)

	// Tasks
	api.GET("/tasks", h.ListTasks)
	api.GET("/tasks/stats", h.TaskStats)
	api.GET("/tasks/:id", h.GetTask)
	api.POST("/tasks", auth, writeRL, h.CreateTask)
	api.PATCH("/tasks/:id/toggle", auth, writeRL, h.ToggleTask)
	api.DELETE("/tasks/:id", auth, writeRL, h.DeleteTask)

	api.GET("/export", h.Export)
}
