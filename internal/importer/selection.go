package importer

import (
	"strings"

	"github.com/jonathan/cv-importer/internal/db"
)

// Parts of a ParseResult that can be applied to a CV
const (
	PartPersonal   = "personal"
	PartExperience = "experience"
	PartEducation  = "education"
	PartSkills     = "skills"
)

// Selection chooses which parts of an import are merged into the CV
type Selection struct {
	Personal   bool `json:"personal"`
	Experience bool `json:"experience"`
	Education  bool `json:"education"`
	Skills     bool `json:"skills"`
}

// All selects every part.
func All() Selection {
	return Selection{Personal: true, Experience: true, Education: true, Skills: true}
}

// Any reports whether at least one part is selected.
func (s Selection) Any() bool {
	return s.Personal || s.Experience || s.Education || s.Skills
}

// ParseSelection reads a comma separated list of part names; "all" selects everything.
func ParseSelection(list string) (Selection, error) {
	var s Selection
	for _, part := range strings.Split(list, ",") {
		switch p := strings.ToLower(strings.TrimSpace(part)); p {
		case "":
		case "all":
			s = All()
		case PartPersonal:
			s.Personal = true
		case PartExperience:
			s.Experience = true
		case PartEducation:
			s.Education = true
		case PartSkills:
			s.Skills = true
		default:
			return Selection{}, &ErrInvalidSelection{Part: p}
		}
	}
	return s, nil
}

func (s Selection) toApplyInput(imp *db.Import) *db.ApplyImportInput {
	return &db.ApplyImportInput{
		UserID:     imp.UserID,
		ImportID:   imp.ID,
		Result:     imp.Result,
		Personal:   s.Personal,
		Experience: s.Experience,
		Education:  s.Education,
		Skills:     s.Skills,
	}
}
