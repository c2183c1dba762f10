package db

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/cv-importer/internal/types"
)

// Import status values
const (
	ImportStatusPending = "pending"
	ImportStatusApplied = "applied"
)

// monthLayout is the YYYY-MM form dates take in a ParseResult
const monthLayout = "2006-01"

// User represents a user account
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"-" db:"password_hash"` // Never serialize to JSON
	PasswordSet  bool      `json:"password_set" db:"password_set"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Import is a stored parse of pasted profile text, pending review until applied
type Import struct {
	ID          uuid.UUID          `json:"id"`
	UserID      uuid.UUID          `json:"user_id"`
	Source      string             `json:"source,omitempty"`
	ContentHash string             `json:"content_hash"`
	Result      *types.ParseResult `json:"result"`
	Status      string             `json:"status"`
	CreatedAt   time.Time          `json:"created_at"`
	AppliedAt   *time.Time         `json:"applied_at,omitempty"`
}

// ImportSummary is a lightweight view of an import for listing
type ImportSummary struct {
	ID              uuid.UUID  `json:"id"`
	Source          string     `json:"source,omitempty"`
	Status          string     `json:"status"`
	FullName        string     `json:"full_name"`
	ExperienceCount int        `json:"experience_count"`
	EducationCount  int        `json:"education_count"`
	SkillCount      int        `json:"skill_count"`
	CreatedAt       time.Time  `json:"created_at"`
	AppliedAt       *time.Time `json:"applied_at,omitempty"`
}

// CreateImportInput holds the fields of a new import
type CreateImportInput struct {
	UserID      uuid.UUID
	Source      string
	ContentHash string
	Result      *types.ParseResult
}

// Profile is the personal block of a user's CV
type Profile struct {
	UserID     uuid.UUID `json:"user_id"`
	FullName   string    `json:"full_name"`
	Headline   string    `json:"headline,omitempty"`
	Location   string    `json:"location,omitempty"`
	Email      string    `json:"email,omitempty"`
	ProfileURL string    `json:"profile_url,omitempty"`
	Summary    string    `json:"summary,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Job represents an employment history entry
type Job struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	Company        string     `json:"company"`
	RoleTitle      string     `json:"role_title"`
	Location       string     `json:"location,omitempty"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	IsCurrent      bool       `json:"is_current"`
	Description    string     `json:"description,omitempty"`
	SourceImportID *uuid.UUID `json:"source_import_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Education represents an education entry
type Education struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	School         string     `json:"school"`
	Degree         string     `json:"degree,omitempty"`
	Field          string     `json:"field,omitempty"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	IsCurrent      bool       `json:"is_current"`
	SourceImportID *uuid.UUID `json:"source_import_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// UserSkill is a skill linked to a user
type UserSkill struct {
	SkillID  uuid.UUID `json:"skill_id"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
	Level    string    `json:"level"`
}

// CV is the full stored CV of a user
type CV struct {
	Profile   *Profile    `json:"profile,omitempty"`
	Jobs      []Job       `json:"jobs"`
	Education []Education `json:"education"`
	Skills    []UserSkill `json:"skills"`
}

// ApplyImportInput selects which parts of an import's result are merged into the CV.
// Nothing is merged unless its flag is set.
type ApplyImportInput struct {
	UserID     uuid.UUID
	ImportID   uuid.UUID
	Result     *types.ParseResult
	Personal   bool
	Experience bool
	Education  bool
	Skills     bool
}

// Any reports whether at least one part is selected.
func (in ApplyImportInput) Any() bool {
	return in.Personal || in.Experience || in.Education || in.Skills
}

// ApplyResult counts the rows written by ApplyImport
type ApplyResult struct {
	ProfileUpdated   bool `json:"profile_updated"`
	JobsCreated      int  `json:"jobs_created"`
	JobsMatched      int  `json:"jobs_matched"`
	EducationCreated int  `json:"education_created"`
	EducationMatched int  `json:"education_matched"`
	SkillsLinked     int  `json:"skills_linked"`
}

// Counts flattens the result for display.
func (r *ApplyResult) Counts() map[string]int {
	profile := 0
	if r.ProfileUpdated {
		profile = 1
	}
	return map[string]int{
		"profile_updated":   profile,
		"jobs_created":      r.JobsCreated,
		"jobs_matched":      r.JobsMatched,
		"education_created": r.EducationCreated,
		"education_matched": r.EducationMatched,
		"skills_linked":     r.SkillsLinked,
	}
}

// ParseMonth converts a YYYY-MM value to the first day of that month.
// An empty value is nil.
func ParseMonth(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return nil, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return &t, nil
}

// FormatMonth is the inverse of ParseMonth.
func FormatMonth(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(monthLayout)
}

// ToAPIUser converts a db.User to the API representation.
func (u *User) ToAPIUser() *types.User {
	if u == nil {
		return nil
	}
	return &types.User{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Phone:       u.Phone,
		PasswordSet: u.PasswordSet,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
