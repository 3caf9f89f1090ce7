package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"careerportal/internal/auth"
	"careerportal/internal/database"
)

// newDudRedis returns a client whose commands all fail; the login path must
// degrade to working without rate limiting.
func newDudRedis() *redis.Client {
	return redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
}

// fakeRedis implements the handful of commands the login throttle issues,
// backed by plain maps.
type fakeRedis struct {
	counts map[string]int64
	locks  map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{counts: map[string]int64{}, locks: map[string]time.Duration{}}
}

func (f *fakeRedis) Incr(ctx context.Context, key string) *redis.IntCmd {
	f.counts[key]++
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(f.counts[key])
	return cmd
}

func (f *fakeRedis) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	cmd := redis.NewBoolCmd(ctx)
	cmd.SetVal(true)
	return cmd
}

func (f *fakeRedis) TTL(ctx context.Context, key string) *redis.DurationCmd {
	cmd := redis.NewDurationCmd(ctx, time.Second)
	cmd.SetVal(f.locks[key])
	return cmd
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.locks[key] = expiration
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(f.counts, key)
		delete(f.locks, key)
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(keys)))
	return cmd
}

func newLoginRouterWith(t *testing.T, rc redisRateCounter, rateLimit, lockThreshold int) (*gin.Engine, *auth.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := newTestDB(t)
	hash, err := auth.HashPassword("StrongAdminPass123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	admin := database.Admin{Email: "admin@tce.edu", PasswordHash: hash, Name: "TCE Admin"}
	if err := db.Create(&admin).Error; err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	authService, err := auth.NewAuthService("test-secret", 8*time.Hour)
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}

	h := NewAdminHandler(db, authService, rc, nil, rateLimit, lockThreshold, 15*time.Minute)
	router := gin.New()
	router.POST("/api/admin/login", h.Login)
	return router, authService
}

func newLoginRouter(t *testing.T) (*gin.Engine, *auth.AuthService) {
	t.Helper()
	return newLoginRouterWith(t, newDudRedis(), 10, 5)
}

func postLogin(router *gin.Engine, body any) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLogin_IssuesValidToken(t *testing.T) {
	router, authService := newLoginRouter(t)

	w := postLogin(router, map[string]string{
		"email":    "admin@tce.edu",
		"password": "StrongAdminPass123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	claims, err := authService.ValidateToken(resp.Token)
	if err != nil {
		t.Fatalf("issued token must validate: %v", err)
	}
	if claims.Email != "admin@tce.edu" {
		t.Fatalf("claims email: %q", claims.Email)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	router, _ := newLoginRouter(t)

	w := postLogin(router, map[string]string{
		"email":    "admin@tce.edu",
		"password": "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}
}

func TestLogin_UnknownAdmin(t *testing.T) {
	router, _ := newLoginRouter(t)

	w := postLogin(router, map[string]string{
		"email":    "ghost@tce.edu",
		"password": "whatever",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}
}

func TestLogin_HourlyRateLimitReturns429(t *testing.T) {
	router, _ := newLoginRouterWith(t, newFakeRedis(), 3, 50)
	creds := map[string]string{
		"email":    "admin@tce.edu",
		"password": "StrongAdminPass123",
	}

	for i := 1; i <= 3; i++ {
		if w := postLogin(router, creds); w.Code != http.StatusOK {
			t.Fatalf("attempt %d: expected 200 got %d", i, w.Code)
		}
	}

	w := postLogin(router, creds)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("attempt over the hourly limit: expected 429 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestLogin_LockoutAfterRepeatedFailures(t *testing.T) {
	router, _ := newLoginRouterWith(t, newFakeRedis(), 50, 2)
	wrong := map[string]string{"email": "admin@tce.edu", "password": "wrong"}

	for i := 1; i <= 2; i++ {
		if w := postLogin(router, wrong); w.Code != http.StatusUnauthorized {
			t.Fatalf("failure %d: expected 401 got %d", i, w.Code)
		}
	}

	// The correct password no longer helps while the lock holds.
	w := postLogin(router, map[string]string{
		"email":    "admin@tce.edu",
		"password": "StrongAdminPass123",
	})
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("locked account: expected 429 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestLogin_MissingFields(t *testing.T) {
	router, _ := newLoginRouter(t)

	w := postLogin(router, map[string]string{"email": "admin@tce.edu"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
}
