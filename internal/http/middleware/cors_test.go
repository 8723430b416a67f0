package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func corsRequest(allowed, origin, method string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS(allowed))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(method, "/x", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORS(t *testing.T) {
	cases := []struct {
		name, allowed, origin string
		wantOrigin, wantCreds string
	}{
		{"open board never grants credentials", "", "https://evil.example", "*", ""},
		{"configured origin", "https://board.example", "https://board.example", "https://board.example", "true"},
		{"other origin", "https://board.example", "https://evil.example", "", ""},
		{"no origin header", "", "", "", ""},
	}

	for _, tc := range cases {
		w := corsRequest(tc.allowed, tc.origin, http.MethodGet)
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != tc.wantOrigin {
			t.Fatalf("%s: allow-origin = %q; want %q", tc.name, got, tc.wantOrigin)
		}
		if got := w.Header().Get("Access-Control-Allow-Credentials"); got != tc.wantCreds {
			t.Fatalf("%s: allow-credentials = %q; want %q", tc.name, got, tc.wantCreds)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	w := corsRequest("", "https://any.example", http.MethodOptions)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
}
