package database

import "time"

// Application is one faculty-recruitment submission. The fixed field set is the
// whitelist: form fields outside this struct are never read, so they are
// dropped by construction.
type Application struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	ApplicationID string `gorm:"column:application_id;uniqueIndex;size:16" json:"applicationId"`
	Email         string `gorm:"size:255;index" json:"email"`
	Name          string `gorm:"size:255" json:"name"`
	Phone         string `gorm:"size:32" json:"phone"`
	ApplicantType string `gorm:"column:applicant_type;size:32" json:"applicantType"`
	Department    string `gorm:"size:128" json:"department"`

	UGPercentage     float64 `gorm:"column:ug_percentage" json:"ugPercentage"`
	PGPercentage     float64 `gorm:"column:pg_percentage" json:"pgPercentage"`
	MastersInstitute string  `gorm:"size:255" json:"mastersInstitute"`
	Specialization   string  `gorm:"size:255" json:"specialization"`

	// Meaningful for Experienced applicants only; stored empty otherwise.
	PhdInstitute       string  `gorm:"column:phd_institute;size:255" json:"phdInstitute"`
	PhdTopic           string  `gorm:"column:phd_topic;size:255" json:"phdTopic"`
	PhdStatus          string  `gorm:"column:phd_status;size:64" json:"phdStatus"`
	CurrentInstitution string  `gorm:"size:255" json:"currentInstitution"`
	JobTitle           string  `gorm:"size:255" json:"jobTitle"`
	ExpAcademics       float64 `gorm:"column:exp_academics" json:"expAcademics"`
	ExpIndustry        float64 `gorm:"column:exp_industry" json:"expIndustry"`
	Journals           float64 `json:"journals"`
	Projects           float64 `json:"projects"`
	PlacementIncharge  string  `gorm:"size:255" json:"placementIncharge"`

	// Resume object reference; nil until a file has been uploaded.
	FileKey  *string `gorm:"column:file_key;size:512" json:"fileKey"`
	FileName *string `gorm:"column:file_name;size:255" json:"fileName"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Admin is a dashboard account. Login verifies against PasswordHash.
type Admin struct {
	ID           uint      `gorm:"primaryKey"`
	Email        string    `gorm:"uniqueIndex;size:255"`
	PasswordHash string    `gorm:"size:255"`
	Name         string    `gorm:"size:255"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ApplicationSequence backs the per-year application ID allocator. One row per
// calendar year, incremented atomically so concurrent submissions cannot
// observe the same sequence number.
type ApplicationSequence struct {
	ID      uint `gorm:"primaryKey"`
	Year    int  `gorm:"uniqueIndex"`
	LastSeq int  `gorm:"column:last_seq"`
}
