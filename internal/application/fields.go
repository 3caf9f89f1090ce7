// Package application holds the submission schema, the filter/query builder
// and the repository for the applications table.
package application

import (
	"strconv"
	"strings"

	"careerportal/internal/database"
)

// Submission carries the whitelisted application fields parsed from a
// multipart form. A nil field was absent from the payload; create and update
// treat absence differently (create fills defaults, update leaves the column
// untouched).
type Submission struct {
	Email              *string
	Name               *string
	Phone              *string
	ApplicantType      *string
	Department         *string
	MastersInstitute   *string
	Specialization     *string
	PhdInstitute       *string
	PhdTopic           *string
	PhdStatus          *string
	CurrentInstitution *string
	JobTitle           *string
	PlacementIncharge  *string

	UGPercentage *float64
	PGPercentage *float64
	ExpAcademics *float64
	ExpIndustry  *float64
	Journals     *float64
	Projects     *float64
}

// ParseForm projects a raw form onto the fixed schema. Only the named fields
// are read; anything else in the form is dropped. Numeric fields coerce to a
// non-negative float, with unparsable or negative input treated as zero.
func ParseForm(form map[string][]string) Submission {
	str := func(key string) *string {
		vs, ok := form[key]
		if !ok || len(vs) == 0 {
			return nil
		}
		v := vs[0]
		return &v
	}
	num := func(key string) *float64 {
		vs, ok := form[key]
		if !ok || len(vs) == 0 {
			return nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(vs[0]), 64)
		if err != nil || f < 0 {
			f = 0
		}
		return &f
	}

	return Submission{
		Email:              str("email"),
		Name:               str("name"),
		Phone:              str("phone"),
		ApplicantType:      str("applicantType"),
		Department:         str("department"),
		MastersInstitute:   str("mastersInstitute"),
		Specialization:     str("specialization"),
		PhdInstitute:       str("phdInstitute"),
		PhdTopic:           str("phdTopic"),
		PhdStatus:          str("phdStatus"),
		CurrentInstitution: str("currentInstitution"),
		JobTitle:           str("jobTitle"),
		PlacementIncharge:  str("placementIncharge"),
		UGPercentage:       num("ugPercentage"),
		PGPercentage:       num("pgPercentage"),
		ExpAcademics:       num("expAcademics"),
		ExpIndustry:        num("expIndustry"),
		Journals:           num("journals"),
		Projects:           num("projects"),
	}
}

// NewRecord builds a full Application row for the insert path: absent string
// fields default to empty, absent numeric fields to zero.
func (s Submission) NewRecord() database.Application {
	return database.Application{
		Email:              strOrEmpty(s.Email),
		Name:               strOrEmpty(s.Name),
		Phone:              strOrEmpty(s.Phone),
		ApplicantType:      strOrEmpty(s.ApplicantType),
		Department:         strOrEmpty(s.Department),
		MastersInstitute:   strOrEmpty(s.MastersInstitute),
		Specialization:     strOrEmpty(s.Specialization),
		PhdInstitute:       strOrEmpty(s.PhdInstitute),
		PhdTopic:           strOrEmpty(s.PhdTopic),
		PhdStatus:          strOrEmpty(s.PhdStatus),
		CurrentInstitution: strOrEmpty(s.CurrentInstitution),
		JobTitle:           strOrEmpty(s.JobTitle),
		PlacementIncharge:  strOrEmpty(s.PlacementIncharge),
		UGPercentage:       numOrZero(s.UGPercentage),
		PGPercentage:       numOrZero(s.PGPercentage),
		ExpAcademics:       numOrZero(s.ExpAcademics),
		ExpIndustry:        numOrZero(s.ExpIndustry),
		Journals:           numOrZero(s.Journals),
		Projects:           numOrZero(s.Projects),
	}
}

// Updates returns the column assignments for the partial-update path: only
// fields present in the payload appear in the map. File columns are handled by
// the caller, so an update without a new upload never clears them.
func (s Submission) Updates() map[string]any {
	updates := map[string]any{}
	setStr := func(column string, v *string) {
		if v != nil {
			updates[column] = *v
		}
	}
	setNum := func(column string, v *float64) {
		if v != nil {
			updates[column] = *v
		}
	}

	setStr("email", s.Email)
	setStr("name", s.Name)
	setStr("phone", s.Phone)
	setStr("applicant_type", s.ApplicantType)
	setStr("department", s.Department)
	setStr("masters_institute", s.MastersInstitute)
	setStr("specialization", s.Specialization)
	setStr("phd_institute", s.PhdInstitute)
	setStr("phd_topic", s.PhdTopic)
	setStr("phd_status", s.PhdStatus)
	setStr("current_institution", s.CurrentInstitution)
	setStr("job_title", s.JobTitle)
	setStr("placement_incharge", s.PlacementIncharge)
	setNum("ug_percentage", s.UGPercentage)
	setNum("pg_percentage", s.PGPercentage)
	setNum("exp_academics", s.ExpAcademics)
	setNum("exp_industry", s.ExpIndustry)
	setNum("journals", s.Journals)
	setNum("projects", s.Projects)

	return updates
}

func strOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func numOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
