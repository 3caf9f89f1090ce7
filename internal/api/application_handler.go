package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/dutchcoders/go-clamd"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"careerportal/internal/api/middleware"
	"careerportal/internal/application"
	"careerportal/internal/config"
)

// ResumeStorage is the slice of the object-store gateway the handlers need.
type ResumeStorage interface {
	UploadResume(ctx context.Context, reader io.Reader, size int64, contentType, originalName string) (string, error)
	PresignedURL(ctx context.Context, objectKey string, ttl time.Duration) (string, error)
	DeleteObject(ctx context.Context, objectKey string) error
}

// ApplicationHandler serves the public intake form and the admin listing.
type ApplicationHandler struct {
	repo           *application.Repository
	storage        ResumeStorage
	logger         *slog.Logger
	clamdAddr      string
	maxUploadBytes int64
}

// NewApplicationHandler wires the handler.
func NewApplicationHandler(repo *application.Repository, storage ResumeStorage, logger *slog.Logger, uploadCfg config.UploadConfig) *ApplicationHandler {
	return &ApplicationHandler{
		repo:           repo,
		storage:        storage,
		logger:         logger,
		clamdAddr:      uploadCfg.ClamdAddr,
		maxUploadBytes: uploadCfg.MaxBytes,
	}
}

// Submit handles POST /api/applications: project the form onto the schema,
// allocate the sequential application ID, upload the resume if one was
// attached, then persist. An upload failure aborts before any row is written.
func (h *ApplicationHandler) Submit(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		BadRequest(c, "multipart form required")
		return
	}

	ctx := c.Request.Context()
	logger := h.loggerFromContext(c)
	record := application.ParseForm(form.Value).NewRecord()

	applicationID, err := h.repo.NextApplicationID(ctx, time.Now().Year())
	if err != nil {
		logger.Error("allocate application id", slog.Any("error", err))
		Internal(c, "failed to allocate application id")
		return
	}
	record.ApplicationID = applicationID

	if file := formFile(form); file != nil {
		key, name, ok := h.storeResume(c, file)
		if !ok {
			return
		}
		record.FileKey = &key
		record.FileName = &name
	}

	if err := h.repo.Create(ctx, &record); err != nil {
		logger.Error("insert application", slog.Any("error", err))
		Internal(c, "DB Error")
		return
	}

	logger.Info("application submitted", slog.String("application_id", applicationID))
	c.JSON(http.StatusOK, gin.H{"success": true, "applicationId": applicationID})
}

// Update handles PUT /api/applications/id/:id: only fields present in the
// payload are written, and the stored resume survives unless a new file is
// uploaded. A replaced resume's old object is removed once the row points at
// the new one.
func (h *ApplicationHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		BadRequest(c, "invalid application id")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		BadRequest(c, "multipart form required")
		return
	}

	ctx := c.Request.Context()
	logger := h.loggerFromContext(c)
	updates := application.ParseForm(form.Value).Updates()

	var supersededKey *string
	if file := formFile(form); file != nil {
		if existing, err := h.repo.FindByID(ctx, uint(id)); err == nil {
			supersededKey = existing.FileKey
		}
		key, name, ok := h.storeResume(c, file)
		if !ok {
			return
		}
		updates["file_key"] = key
		updates["file_name"] = name
	}

	if err := h.repo.Update(ctx, uint(id), updates); err != nil {
		logger.Error("update application", slog.Uint64("id", id), slog.Any("error", err))
		Internal(c, "DB Error")
		return
	}

	if supersededKey != nil {
		if err := h.storage.DeleteObject(ctx, *supersededKey); err != nil {
			logger.Warn("delete superseded resume", slog.String("key", *supersededKey), slog.Any("error", err))
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ByEmail handles GET /api/applications/by-email/:email, the prefill lookup
// for returning applicants.
func (h *ApplicationHandler) ByEmail(c *gin.Context) {
	app, err := h.repo.FindByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "Not Found")
			return
		}
		h.loggerFromContext(c).Error("lookup by email", slog.Any("error", err))
		Internal(c, "DB Error")
		return
	}

	c.JSON(http.StatusOK, app)
}

// List handles GET /api/applications for the dashboard: filtered, paginated
// rows plus the total count from the same predicate.
func (h *ApplicationHandler) List(c *gin.Context) {
	f := filterFromQuery(c, true)
	page := positiveIntQuery(c, "page", 1)
	pageSize := positiveIntQuery(c, "pageSize", 10)

	rows, total, err := h.repo.List(c.Request.Context(), f, page, pageSize)
	if err != nil {
		h.loggerFromContext(c).Error("list applications", slog.Any("error", err))
		Internal(c, "DB Error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"rows": rows, "total": total})
}

// Years handles GET /api/applications/years.
func (h *ApplicationHandler) Years(c *gin.Context) {
	years, err := h.repo.Years(c.Request.Context())
	if err != nil {
		h.loggerFromContext(c).Error("list years", slog.Any("error", err))
		Internal(c, "DB Error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"years": years})
}

// storeResume validates, optionally scans, and uploads the attached resume.
// On failure it writes the error response and returns ok=false; the caller
// must not persist anything.
func (h *ApplicationHandler) storeResume(c *gin.Context, file *multipart.FileHeader) (key, name string, ok bool) {
	logger := h.loggerFromContext(c)

	if h.maxUploadBytes > 0 && file.Size > h.maxUploadBytes {
		BadRequest(c, "file too large")
		return "", "", false
	}

	if h.clamdAddr != "" {
		clean, err := h.scanUpload(file)
		if err != nil {
			logger.Error("scan resume", slog.Any("error", err))
			Internal(c, "failed to scan file")
			return "", "", false
		}
		if !clean {
			BadRequest(c, "malicious file detected")
			return "", "", false
		}
	}

	reader, err := file.Open()
	if err != nil {
		logger.Error("open resume", slog.Any("error", err))
		Internal(c, "failed to read file")
		return "", "", false
	}
	defer reader.Close()

	key, err = h.storage.UploadResume(c.Request.Context(), reader, file.Size, file.Header.Get("Content-Type"), file.Filename)
	if err != nil {
		logger.Error("upload resume", slog.Any("error", err))
		Internal(c, "failed to upload file")
		return "", "", false
	}

	return key, file.Filename, true
}

func (h *ApplicationHandler) scanUpload(file *multipart.FileHeader) (bool, error) {
	reader, err := file.Open()
	if err != nil {
		return false, err
	}
	defer reader.Close()

	clamdClient := clamd.NewClamd(h.clamdAddr)
	abortChan := make(chan bool)
	defer close(abortChan)

	scanChan, err := clamdClient.ScanStream(reader, abortChan)
	if err != nil {
		return false, err
	}

	for result := range scanChan {
		if result.Status != clamd.RES_OK {
			return false, nil
		}
	}
	return true, nil
}

func (h *ApplicationHandler) loggerFromContext(c *gin.Context) *slog.Logger {
	if logger := middleware.LoggerFromContext(c); logger != nil {
		return logger
	}
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}

// formFile returns the attached resume, or nil when the submission has none.
func formFile(form *multipart.Form) *multipart.FileHeader {
	files := form.File["file"]
	if len(files) == 0 {
		return nil
	}
	return files[0]
}

// filterFromQuery parses the dashboard criteria. The export path passes
// includeRanges=false: it carries the same identity filters but no percentage
// or timestamp bounds.
func filterFromQuery(c *gin.Context, includeRanges bool) application.Filter {
	f := application.Filter{
		Search:            c.Query("search"),
		Department:        c.Query("department"),
		Specialization:    c.Query("specialization"),
		PhdStatus:         c.Query("phdStatus"),
		PlacementIncharge: c.Query("placementIncharge"),
		ApplicantType:     c.Query("applicantType"),
	}
	if includeRanges {
		f.UGMin = floatQuery(c, "ugMin")
		f.UGMax = floatQuery(c, "ugMax")
		f.PGMin = floatQuery(c, "pgMin")
		f.PGMax = floatQuery(c, "pgMax")
		f.Year = positiveIntQuery(c, "year", 0)
		f.Month = positiveIntQuery(c, "month", 0)
	}
	return f
}

func floatQuery(c *gin.Context, key string) *float64 {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

func positiveIntQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
