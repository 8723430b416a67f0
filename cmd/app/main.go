package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskboard/internal/config"
	"taskboard/internal/db"
	httpServer "taskboard/internal/http"
	"taskboard/internal/http/middleware"
	"taskboard/internal/logger"
	"taskboard/internal/service"
	"taskboard/internal/ws"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, err := db.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("open storage", "driver", cfg.KVDriver, "error", err)
	}
	defer storage.Close()

	hub := ws.NewHub()
	defer hub.Close()

	store := service.NewTaskStore(ctx, storage.KV,
		service.WithKey(cfg.TasksKey),
		service.WithNotifier(hub),
		service.WithLogger(logger.Get()),
	)

	var tokens *service.Tokens
	if cfg.AuthEnabled {
		tokens, err = service.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
		if err != nil {
			logger.Fatal("init tokens", "error", err)
		}
	}

	limiter := middleware.NewMemoryLimiter()
	go limiter.RunJanitor(ctx, time.Duration(cfg.APIRateWindowSeconds)*time.Second)

	r := httpServer.NewEngine(httpServer.Deps{
		Config:  cfg,
		Store:   store,
		Hub:     hub,
		Tokens:  tokens,
		Redis:   storage.Redis,
		Limiter: limiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "driver", cfg.KVDriver, "auth", cfg.AuthEnabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited", "tasks", store.Stats().Total)
}
