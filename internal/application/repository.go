package application

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"careerportal/internal/appid"
	"careerportal/internal/database"
)

// ExportEntry is the (storage key, file name) pair the bulk export packages.
type ExportEntry struct {
	FileKey  *string
	FileName *string
}

// Repository owns CRUD against the applications table.
type Repository struct {
	db *gorm.DB
}

// NewRepository wraps the given database handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// NextApplicationID allocates the sequential ID for the given calendar year.
func (r *Repository) NextApplicationID(ctx context.Context, year int) (string, error) {
	return appid.Next(ctx, r.db, year)
}

// Create persists a new application row.
func (r *Repository) Create(ctx context.Context, app *database.Application) error {
	if err := r.db.WithContext(ctx).Create(app).Error; err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

// Update applies the given column assignments to the row with the internal ID.
// An empty update map is a no-op.
func (r *Repository) Update(ctx context.Context, id uint, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).
		Model(&database.Application{}).
		Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("update application %d: %w", id, err)
	}
	return nil
}

// FindByID returns the application with the internal ID.
func (r *Repository) FindByID(ctx context.Context, id uint) (*database.Application, error) {
	var app database.Application
	if err := r.db.WithContext(ctx).First(&app, id).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

// FindByEmail returns the first application for the given email, used by the
// public form to prefill a returning applicant. gorm.ErrRecordNotFound maps to
// a 404 at the handler.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*database.Application, error) {
	var app database.Application
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&app).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

// List returns the filtered page ordered most recent first, plus the total
// count of matching rows. Count and selection share the same filter scope.
func (r *Repository) List(ctx context.Context, f Filter, page, pageSize int) ([]database.Application, int64, error) {
	if pageSize <= 0 {
		pageSize = 10
	}

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&database.Application{}).
		Scopes(f.Scope()).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}

	var rows []database.Application
	if err := r.db.WithContext(ctx).
		Model(&database.Application{}).
		Scopes(f.Scope()).
		Order("created_at DESC").
		Offset(Offset(page, pageSize)).
		Limit(pageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}

	return rows, total, nil
}

// ExportEntries returns the resume references of every row matching the
// filter, using the same scope as List so the exported set mirrors the listed
// set.
func (r *Repository) ExportEntries(ctx context.Context, f Filter) ([]ExportEntry, error) {
	var entries []ExportEntry
	if err := r.db.WithContext(ctx).
		Model(&database.Application{}).
		Scopes(f.Scope()).
		Select("file_key", "file_name").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("select export entries: %w", err)
	}
	return entries, nil
}

// Years returns the distinct submission years in ascending order.
func (r *Repository) Years(ctx context.Context) ([]int, error) {
	expr := yearExpr(r.db)
	var years []int
	if err := r.db.WithContext(ctx).
		Raw(fmt.Sprintf("SELECT DISTINCT %s AS year FROM applications ORDER BY year", expr)).
		Scan(&years).Error; err != nil {
		return nil, fmt.Errorf("select years: %w", err)
	}
	return years, nil
}
