package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"careerportal/internal/api/middleware"
)

// resumeURLTTL bounds how long a view/export link stays valid.
const resumeURLTTL = 60 * time.Second

// ResumeHandler redirects dashboard users to short-lived resume URLs.
type ResumeHandler struct {
	storage ResumeStorage
	logger  *slog.Logger
}

// NewResumeHandler wires the handler.
func NewResumeHandler(storage ResumeStorage, logger *slog.Logger) *ResumeHandler {
	return &ResumeHandler{storage: storage, logger: logger}
}

// View handles GET /api/resume/view/*key: 302 to a 60-second signed URL.
// Rows without a resume surface in the dashboard as the literal strings
// "null"/"undefined", which must never reach the signer.
func (h *ResumeHandler) View(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" || key == "null" || key == "undefined" {
		BadRequest(c, "Invalid resume key")
		return
	}

	signedURL, err := h.storage.PresignedURL(c.Request.Context(), key, resumeURLTTL)
	if err != nil {
		h.loggerFromContext(c).Error("presign resume", slog.String("key", key), slog.Any("error", err))
		Internal(c, "Failed to fetch resume")
		return
	}

	c.Redirect(http.StatusFound, signedURL)
}

func (h *ResumeHandler) loggerFromContext(c *gin.Context) *slog.Logger {
	if logger := middleware.LoggerFromContext(c); logger != nil {
		return logger
	}
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}
