package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"careerportal/internal/api/middleware"
	"careerportal/internal/auth"
	"careerportal/internal/database"
)

// AdminHandler authenticates dashboard staff against the admins table.
type AdminHandler struct {
	db                    *gorm.DB
	authService           *auth.AuthService
	redis                 redisRateCounter
	logger                *slog.Logger
	loginRateLimitPerHour int
	loginLockThreshold    int
	loginLockTTL          time.Duration
}

// NewAdminHandler wires the handler.
func NewAdminHandler(db *gorm.DB, authService *auth.AuthService, redisClient redisRateCounter, logger *slog.Logger, loginRateLimitPerHour, loginLockThreshold int, loginLockTTL time.Duration) *AdminHandler {
	return &AdminHandler{
		db:                    db,
		authService:           authService,
		redis:                 redisClient,
		logger:                logger,
		loginRateLimitPerHour: loginRateLimitPerHour,
		loginLockThreshold:    loginLockThreshold,
		loginLockTTL:          loginLockTTL,
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/admin/login: verify the bcrypt hash stored on the
// admin row and issue the session token.
func (h *AdminHandler) Login(c *gin.Context) {
	ip := c.ClientIP()
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	email := strings.ToLower(strings.TrimSpace(req.Email))
	logger := h.loggerFromContext(c).With(slog.String("email", email))

	// Rate limit: per IP+email per hour.
	rateKey := "rate:admin-login:" + ip + ":" + email + ":" + time.Now().UTC().Format("2006010215")
	count, err := incrWithTTL(ctx, h.redis, rateKey, time.Hour)
	if err != nil {
		count = 0
	}
	if h.loginRateLimitPerHour > 0 && count > int64(h.loginRateLimitPerHour) {
		c.JSON(http.StatusTooManyRequests, gin.H{"message": "rate limit exceeded"})
		return
	}

	// Lockout check.
	lockKey := "lock:admin-login:" + email
	if ttl, _ := h.redis.TTL(ctx, lockKey).Result(); ttl > 0 {
		c.JSON(http.StatusTooManyRequests, gin.H{"message": "account temporarily locked"})
		return
	}

	var admin database.Admin
	if err := h.db.WithContext(ctx).Where("email = ?", email).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Info("login failed: admin not found")
			_ = h.incrementLoginFail(ctx, email)
			Error(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		logger.Error("login query failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	if !auth.CheckPasswordHash(req.Password, admin.PasswordHash) {
		logger.Info("login failed: password mismatch")
		_ = h.incrementLoginFail(ctx, email)
		Error(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	// Successful login clears the failure counter.
	_ = h.redis.Del(ctx, "lock:admin-login:fail:"+email).Err()

	token, err := h.authService.GenerateToken(admin.Email)
	if err != nil {
		logger.Error("generate token failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	logger.Info("admin logged in")
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *AdminHandler) incrementLoginFail(ctx context.Context, email string) error {
	failKey := "lock:admin-login:fail:" + email
	count, err := h.redis.Incr(ctx, failKey).Result()
	if err != nil {
		return err
	}
	if count == 1 {
		_ = h.redis.Expire(ctx, failKey, h.loginLockTTL).Err()
	}
	if h.loginLockThreshold > 0 && count >= int64(h.loginLockThreshold) {
		_ = h.redis.Set(ctx, "lock:admin-login:"+email, "1", h.loginLockTTL).Err()
	}
	return nil
}

func (h *AdminHandler) loggerFromContext(c *gin.Context) *slog.Logger {
	if logger := middleware.LoggerFromContext(c); logger != nil {
		return logger
	}
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}
