// Package types provides type definitions for structured data used throughout the cv-importer system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Skill categories assigned by the LinkedIn parser
const (
	SkillCategoryTechnical = "technical"
	SkillCategorySoft      = "soft"
	SkillCategoryLanguage  = "language"
	SkillCategoryOther     = "other"
)

// DefaultSkillLevel is the level given to every parsed skill; levels are not inferred.
const DefaultSkillLevel = "intermediate"

// MaxParsedSkills caps the number of skills in a ParseResult.
const MaxParsedSkills = 20

// Personal field names used as keys in ParseResult.Fields
const (
	FieldFullName   = "full_name"
	FieldHeadline   = "headline"
	FieldLocation   = "location"
	FieldEmail      = "email"
	FieldProfileURL = "profile_url"
)

// ParseResult is the structured output of parsing pasted LinkedIn profile text
type ParseResult struct {
	Personal   PersonalInfo            `json:"personal"`
	Experience []ExperienceEntry       `json:"experience"`
	Education  []EducationEntry        `json:"education"`
	Skills     []SkillEntry            `json:"skills"`
	Summary    string                  `json:"summary,omitempty"`
	Fields     map[string]FieldOutcome `json:"fields"`
}

// PersonalInfo holds the contact block of a profile. FullName is always set, possibly empty.
type PersonalInfo struct {
	FullName   string `json:"full_name"`
	Headline   string `json:"headline,omitempty"`
	Location   string `json:"location,omitempty"`
	Email      string `json:"email,omitempty"`
	ProfileURL string `json:"profile_url,omitempty"`
}

// FieldOutcome records whether a personal field was extracted and by which rule
type FieldOutcome struct {
	Found bool   `json:"found"`
	Rule  string `json:"rule,omitempty"`
}

// ExperienceEntry represents one position from the Experience section
type ExperienceEntry struct {
	Position     string   `json:"position"`
	Company      string   `json:"company"`
	Location     string   `json:"location"`
	StartDate    string   `json:"start_date"` // YYYY-MM or empty
	EndDate      string   `json:"end_date"`   // YYYY-MM or empty
	IsCurrent    bool     `json:"is_current"`
	Description  string   `json:"description"`
	Achievements []string `json:"achievements"`
}

// EducationEntry represents one school from the Education section
type EducationEntry struct {
	School       string   `json:"school"`
	Degree       string   `json:"degree"`
	FieldOfStudy string   `json:"field_of_study"`
	Location     string   `json:"location"`
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date"`
	IsCurrent    bool     `json:"is_current"`
	GPA          string   `json:"gpa"`
	Description  string   `json:"description"`
	Achievements []string `json:"achievements"`
}

// SkillEntry represents a skill with its coarse category
type SkillEntry struct {
	Name     string `json:"name"`
	Level    string `json:"level"`
	Category string `json:"category"`
}

// NewParseResult returns a result with every collection initialized.
func NewParseResult() *ParseResult {
	return &ParseResult{
		Experience: []ExperienceEntry{},
		Education:  []EducationEntry{},
		Skills:     []SkillEntry{},
		Fields:     map[string]FieldOutcome{},
	}
}

// IsEmpty reports whether nothing useful was extracted: no name, no experience and no education.
// Callers treat an empty result as a failed parse.
func (r *ParseResult) IsEmpty() bool {
	if r == nil {
		return true
	}
	return r.Personal.FullName == "" && len(r.Experience) == 0 && len(r.Education) == 0
}

// Found reports whether the named personal field was extracted.
func (r *ParseResult) Found(field string) bool {
	if r == nil {
		return false
	}
	return r.Fields[field].Found
}
