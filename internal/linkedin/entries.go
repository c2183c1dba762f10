package linkedin

import (
	"strings"

	"github.com/jonathan/cv-importer/internal/types"
)

// splitFields splits an entry header line on middle-dot separators.
func splitFields(line string) []string {
	raw := strings.FieldsFunc(line, isEntrySeparator)
	fields := make([]string, 0, len(raw))
	for _, f := range raw {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// parseExperience turns an experience section body into entries. Each entry starts
// with a "Position · Company · DateRange [· Duration] [· Location]" line; the lines
// that follow, up to the next entry line, form its description.
func (g *Grammar) parseExperience(section string) []types.ExperienceEntry {
	entries := []types.ExperienceEntry{}

	var current *types.ExperienceEntry
	var desc []string
	flush := func() {
		if current == nil {
			return
		}
		current.Description = strings.Join(desc, "\n")
		entries = append(entries, *current)
		current = nil
		desc = nil
	}

	skipping := false
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if g.entryStart.MatchString(line) {
			flush()
			entry, ok := g.experienceHeader(line)
			skipping = !ok
			if ok {
				current = &entry
			}
			continue
		}
		if current != nil && !skipping {
			desc = append(desc, line)
		}
	}
	flush()

	return entries
}

func (g *Grammar) experienceHeader(line string) (types.ExperienceEntry, bool) {
	fields := splitFields(line)
	if len(fields) < 3 || !g.year.MatchString(fields[2]) {
		return types.ExperienceEntry{}, false
	}

	start, end, current := g.parseDateRange(fields[2])
	entry := types.ExperienceEntry{
		Position:     fields[0],
		Company:      fields[1],
		StartDate:    start,
		EndDate:      end,
		IsCurrent:    current,
		Achievements: []string{},
	}
	for _, extra := range fields[3:] {
		if g.duration.MatchString(extra) || g.year.MatchString(extra) {
			continue
		}
		entry.Location = extra
		break
	}
	return entry, true
}

// parseEducation turns an education section body into entries of the shape
// "School · Degree [· DateRange]". Lines without a separator are ignored.
func (g *Grammar) parseEducation(section string) []types.EducationEntry {
	entries := []types.EducationEntry{}
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if !g.entryStart.MatchString(line) {
			continue
		}
		fields := splitFields(line)
		if len(fields) < 2 {
			continue
		}

		entry := types.EducationEntry{
			School:       fields[0],
			Degree:       fields[1],
			Achievements: []string{},
		}
		for _, f := range fields[2:] {
			if g.year.MatchString(f) {
				entry.StartDate, entry.EndDate, entry.IsCurrent = g.parseDateRange(f)
				break
			}
		}
		entries = append(entries, entry)
	}
	return entries
}
