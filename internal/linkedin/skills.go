package linkedin

import (
	"strings"
	"unicode/utf8"

	"github.com/jonathan/cv-importer/internal/types"
)

const (
	minSkillRunes = 2
	maxSkillRunes = 50
)

// ClassifySkill returns the skill category by keyword membership. Lists are checked
// in the order technical, language, soft; the first hit wins.
func (g *Grammar) ClassifySkill(name string) string {
	lower := strings.ToLower(name)
	switch {
	case containsAny(lower, g.technical):
		return types.SkillCategoryTechnical
	case containsAny(lower, g.language):
		return types.SkillCategoryLanguage
	case containsAny(lower, g.soft):
		return types.SkillCategorySoft
	default:
		return types.SkillCategoryOther
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// parseSkills extracts at most types.MaxParsedSkills distinct skills from a skills
// section body. Names are canonicalized before de-duplication; the category is
// decided on the name as written.
func (g *Grammar) parseSkills(section string) []types.SkillEntry {
	skills := []types.SkillEntry{}
	seen := make(map[string]bool)

	for _, line := range strings.Split(section, "\n") {
		tokens := strings.FieldsFunc(line, isSkillSeparator)
		// a line led by noise ("Endorsed by ...") is an annotation as a whole
		if len(tokens) > 0 && g.isSkillNoise(tokens[0]) {
			continue
		}
		for _, token := range tokens {
			if g.isSkillNoise(token) {
				continue
			}
			raw := strings.Trim(token, " \t-*–")
			n := utf8.RuneCountInString(raw)
			if n < minSkillRunes || n > maxSkillRunes || g.isHeader(raw) {
				continue
			}
			name := NormalizeSkillName(raw)
			key := strings.ToLower(name)
			if seen[key] {
				continue
			}
			seen[key] = true

			skills = append(skills, types.SkillEntry{
				Name:     name,
				Level:    types.DefaultSkillLevel,
				Category: g.ClassifySkill(raw),
			})
			if len(skills) == types.MaxParsedSkills {
				return skills
			}
		}
	}
	return skills
}

func (g *Grammar) isSkillNoise(token string) bool {
	return containsAny(strings.ToLower(token), g.noise)
}

func isSkillSeparator(r rune) bool {
	switch r {
	case ',', ';', '|', '•':
		return true
	}
	return isEntrySeparator(r)
}
