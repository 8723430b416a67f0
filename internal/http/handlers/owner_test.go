package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"taskboard/internal/http/middleware"
	"taskboard/internal/logger"
	"taskboard/internal/repository"
	"taskboard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthRouter(t *testing.T, kv *repository.MemoryKV) (*gin.Engine, *service.Tokens) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := service.NewTokens("test-secret", time.Hour)
	require.NoError(t, err)

	store := service.NewTaskStore(context.Background(), kv, service.WithLogger(logger.Discard()))
	h := NewHandler(store)

	r := gin.New()
	r.Use(middleware.RequestLogger())
	r.GET("/me", middleware.OptionalAuth(tokens), h.Me)
	r.POST("/tasks", middleware.Auth(tokens), h.CreateTask)
	return r, tokens
}

func authed(method, path, body, token string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestMeWithToken(t *testing.T) {
	r, tokens := newAuthRouter(t, repository.NewMemoryKV())
	tok, err := tokens.Generate("alice")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authed(http.MethodGet, "/me", "", tok))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"authenticated":true,"owner":"alice"}`, w.Body.String())
}

func TestPersistFailureLogsOwnerAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger.InitWriter(&buf, "debug", "text")
	t.Cleanup(func() { logger.InitWriter(io.Discard, "info", "text") })

	kv := repository.NewMemoryKV()
	kv.FailWrites = errors.New("disk full")
	r, tokens := newAuthRouter(t, kv)
	tok, err := tokens.Generate("bob")
	require.NoError(t, err)

	req := authed(http.MethodPost, "/tasks", `{"title":"unsaved"}`, tok)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var line string
	for _, l := range strings.Split(buf.String(), "\n") {
		if strings.Contains(l, "task change not saved") {
			line = l
		}
	}
	require.NotEmpty(t, line, buf.String())
	assert.Contains(t, line, "request_id=req-42")
	assert.Contains(t, line, "owner=bob")
}
