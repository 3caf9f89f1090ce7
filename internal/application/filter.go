package application

import (
	"strings"

	"gorm.io/gorm"
)

// Filter is the optional search criteria shared by the list, count and export
// paths. A zero-valued criterion imposes no constraint; all set criteria are
// AND-combined.
type Filter struct {
	// Search is a case-insensitive substring match on name OR email.
	Search string

	Department        string
	Specialization    string
	PhdStatus         string
	PlacementIncharge string
	ApplicantType     string

	// Inclusive percentage bounds.
	UGMin *float64
	UGMax *float64
	PGMin *float64
	PGMax *float64

	// Year/month of the creation timestamp; zero means unconstrained.
	Year  int
	Month int
}

// Scope applies the filter as a single gorm scope. Every caller (paginated
// list, count, export) goes through this one scope so the listed rows and the
// exported rows are always the same filtered set.
func (f Filter) Scope() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Search != "" {
			like := "%" + strings.ToLower(f.Search) + "%"
			db = db.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)", like, like)
		}
		if f.Department != "" {
			db = db.Where("department = ?", f.Department)
		}
		if f.Specialization != "" {
			db = db.Where("specialization = ?", f.Specialization)
		}
		if f.PhdStatus != "" {
			db = db.Where("phd_status = ?", f.PhdStatus)
		}
		if f.PlacementIncharge != "" {
			db = db.Where("placement_incharge = ?", f.PlacementIncharge)
		}
		if f.ApplicantType != "" {
			db = db.Where("applicant_type = ?", f.ApplicantType)
		}
		if f.UGMin != nil {
			db = db.Where("ug_percentage >= ?", *f.UGMin)
		}
		if f.UGMax != nil {
			db = db.Where("ug_percentage <= ?", *f.UGMax)
		}
		if f.PGMin != nil {
			db = db.Where("pg_percentage >= ?", *f.PGMin)
		}
		if f.PGMax != nil {
			db = db.Where("pg_percentage <= ?", *f.PGMax)
		}
		if f.Year > 0 {
			db = db.Where(yearExpr(db)+" = ?", f.Year)
		}
		if f.Month > 0 {
			db = db.Where(monthExpr(db)+" = ?", f.Month)
		}
		return db
	}
}

// The timestamp extraction functions differ per dialect; tests run on sqlite.

func yearExpr(db *gorm.DB) string {
	if db.Dialector.Name() == "sqlite" {
		return "CAST(strftime('%Y', created_at) AS INTEGER)"
	}
	return "EXTRACT(YEAR FROM created_at)"
}

func monthExpr(db *gorm.DB) string {
	if db.Dialector.Name() == "sqlite" {
		return "CAST(strftime('%m', created_at) AS INTEGER)"
	}
	return "EXTRACT(MONTH FROM created_at)"
}

// Offset converts a 1-based page number into the row offset for the given
// page size.
func Offset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}
