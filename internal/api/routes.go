package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"careerportal/internal/api/middleware"
	"careerportal/internal/application"
	"careerportal/internal/auth"
	"careerportal/internal/config"
	"careerportal/internal/export"
)

// RegisterRoutes registers the portal API under /api. The intake form and the
// prefill lookup are public; every dashboard endpoint sits behind the bearer
// token.
func RegisterRoutes(
	router *gin.Engine,
	db *gorm.DB,
	authService *auth.AuthService,
	redisClient redis.UniversalClient,
	logger *slog.Logger,
	storageClient ResumeStorage,
	cfg *config.Config,
) {
	repo := application.NewRepository(db)
	packager := export.NewPackager(storageClient, resumeURLTTL, logger)

	appHandler := NewApplicationHandler(repo, storageClient, logger, cfg.Upload)
	resumeHandler := NewResumeHandler(storageClient, logger)
	exportHandler := NewExportHandler(repo, packager, logger)
	adminHandler := NewAdminHandler(
		db,
		authService,
		redisClient,
		logger,
		cfg.Auth.LoginRateLimitPerHour,
		cfg.Auth.LoginLockThreshold,
		cfg.Auth.LoginLockTTL,
	)
	authMiddleware := middleware.AuthMiddleware(authService)

	api := router.Group("/api")
	{
		api.POST("/applications", appHandler.Submit)
		api.PUT("/applications/id/:id", appHandler.Update)
		api.GET("/applications/by-email/:email", appHandler.ByEmail)
		api.POST("/admin/login", adminHandler.Login)

		admin := api.Group("")
		admin.Use(authMiddleware)
		{
			admin.GET("/applications", appHandler.List)
			admin.GET("/applications/years", appHandler.Years)
			admin.GET("/applications/export-zip", exportHandler.ExportZip)
			admin.GET("/resume/view/*key", resumeHandler.View)
		}
	}
}
