package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskboard/internal/service"

	"github.com/gin-gonic/gin"
)

func authRouter(tokens *service.Tokens) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := func(c *gin.Context) {
		owner, _ := c.Get("owner")
		c.JSON(200, gin.H{"owner": owner})
	}
	r.POST("/strict", Auth(tokens), handler)
	r.GET("/loose", OptionalAuth(tokens), handler)
	return r
}

func TestAuth(t *testing.T) {
	tokens, err := service.NewTokens("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}
	good, _ := tokens.Generate("alice")
	r := authRouter(tokens)

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + good, http.StatusOK},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/strict", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != tc.want {
			t.Fatalf("%s: expected %d got %d", tc.name, tc.want, w.Code)
		}
	}
}

func TestAuthDisabled(t *testing.T) {
	r := authRouter(nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/strict", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with auth disabled, got %d", w.Code)
	}
}

func TestOptionalAuthNeverRejects(t *testing.T) {
	tokens, _ := service.NewTokens("test-secret", time.Hour)
	r := authRouter(tokens)

	req := httptest.NewRequest(http.MethodGet, "/loose", nil)
	req.Header.Set("Authorization", "Bearer nope")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
}
