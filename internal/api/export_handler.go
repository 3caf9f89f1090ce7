package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"careerportal/internal/api/middleware"
	"careerportal/internal/application"
	"careerportal/internal/export"
)

// ExportHandler streams the filtered resume set as one zip attachment.
type ExportHandler struct {
	repo     *application.Repository
	packager *export.Packager
	logger   *slog.Logger
}

// NewExportHandler wires the handler.
func NewExportHandler(repo *application.Repository, packager *export.Packager, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{repo: repo, packager: packager, logger: logger}
}

// ExportZip handles GET /api/applications/export-zip. The row selection runs
// through the same filter scope as the listing, so the exported set always
// mirrors what the dashboard shows for the same criteria.
func (h *ExportHandler) ExportZip(c *gin.Context) {
	f := filterFromQuery(c, false)

	rows, err := h.repo.ExportEntries(c.Request.Context(), f)
	if err != nil {
		h.loggerFromContext(c).Error("select export entries", slog.Any("error", err))
		Internal(c, "DB Error")
		return
	}

	entries := make([]export.Entry, 0, len(rows))
	for _, row := range rows {
		if row.FileKey == nil {
			continue
		}
		entry := export.Entry{FileKey: *row.FileKey}
		if row.FileName != nil {
			entry.FileName = *row.FileName
		}
		entries = append(entries, entry)
	}

	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", `attachment; filename=TCE_Resumes.zip`)
	c.Status(http.StatusOK)

	if err := h.packager.Pack(c.Request.Context(), c.Writer, entries); err != nil {
		// Headers are already on the wire; all we can do is log.
		h.loggerFromContext(c).Error("pack export archive", slog.Any("error", err))
	}
}

func (h *ExportHandler) loggerFromContext(c *gin.Context) *slog.Logger {
	if logger := middleware.LoggerFromContext(c); logger != nil {
		return logger
	}
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}
