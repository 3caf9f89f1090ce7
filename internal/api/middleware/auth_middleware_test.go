package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"careerportal/internal/auth"
)

func newGuardedRouter(t *testing.T) (*gin.Engine, *auth.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	authService, err := auth.NewAuthService("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}

	router := gin.New()
	router.GET("/guarded", AuthMiddleware(authService), func(c *gin.Context) {
		email, _ := AdminEmailFromContext(c)
		c.JSON(http.StatusOK, gin.H{"email": email})
	})
	return router, authService
}

func get(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_MissingHeaderIs401(t *testing.T) {
	router, _ := newGuardedRouter(t)

	w := get(router, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}

	// Same payload shape as every other error response.
	var resp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Message != "unauthorized" {
		t.Fatalf("expected message field, got body %s", w.Body.String())
	}
}

func TestAuthMiddleware_MalformedHeaderIs401(t *testing.T) {
	router, _ := newGuardedRouter(t)

	for _, header := range []string{"Bearer", "Token abc", "Bearer  "} {
		if w := get(router, header); w.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401 got %d", header, w.Code)
		}
	}
}

func TestAuthMiddleware_InvalidTokenIs403(t *testing.T) {
	router, _ := newGuardedRouter(t)

	w := get(router, "Bearer not-a-real-token")
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", w.Code)
	}

	var resp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Message != "invalid token" {
		t.Fatalf("expected message field, got body %s", w.Body.String())
	}
}

func TestAuthMiddleware_ValidTokenPasses(t *testing.T) {
	router, authService := newGuardedRouter(t)

	token, err := authService.GenerateToken("admin@tce.edu")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	w := get(router, "Bearer "+token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
}
