package linkedin

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// sectionKind identifies one of the parsed profile sections
type sectionKind int

const (
	sectionExperience sectionKind = iota
	sectionEducation
	sectionSkills
	sectionOther
)

func (k sectionKind) String() string {
	switch k {
	case sectionExperience:
		return "experience"
	case sectionEducation:
		return "education"
	case sectionSkills:
		return "skills"
	default:
		return "other"
	}
}

// entrySeparators are the middle-dot variants that delimit entry fields.
const entrySeparators = "·⋅∙"

func isEntrySeparator(r rune) bool {
	return strings.ContainsRune(entrySeparators, r)
}

const (
	upperWord = `\p{Lu}\p{Ll}+(?:-\p{Lu}\p{Ll}+)?`
	placeWord = `\p{Lu}\p{Ll}+(?:[ -]\p{Lu}\p{Ll}+)*`

	headlineMinRunes = 10
	headlineMaxRunes = 150
)

// Grammar is the compiled set of rules and keyword tables for a set of locales.
// It is immutable after compilation and safe for concurrent use.
type Grammar struct {
	locales []string

	name       RuleSet
	headline   RuleSet
	location   RuleSet
	email      RuleSet
	profileURL RuleSet

	headers     map[sectionKind]*regexp.Regexp
	terminators map[sectionKind]*regexp.Regexp
	anyHeader   *regexp.Regexp

	entryStart *regexp.Regexp
	present    *regexp.Regexp
	duration   *regexp.Regexp
	year       *regexp.Regexp
	rangeSep   *regexp.Regexp

	months map[string]string

	technical []string
	language  []string
	soft      []string
	noise     []string
}

var (
	emailPattern      = regexp.MustCompile(`([A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,})`)
	fullURLPattern    = regexp.MustCompile(`(?i)(https?://(?:[a-z]{2,3}\.)?(?:www\.)?linkedin\.com/in/[\p{L}0-9_%-]+)`)
	bareURLPattern    = regexp.MustCompile(`(?i)\b((?:www\.)?linkedin\.com/in/[\p{L}0-9_%-]+)`)
	yearPattern       = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)
	rangeSepPattern   = regexp.MustCompile(`\s*[-–—]\s*`)
	entryStartPattern = regexp.MustCompile(`^[ \t]*[^\s` + entrySeparators + `][^\n` + entrySeparators + `]*[` + entrySeparators + `]`)
	emailOnlyPattern  = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
)

// Compile builds a Grammar from locales, in precedence order.
func Compile(ls ...Locale) *Grammar {
	g := &Grammar{
		headers:     make(map[sectionKind]*regexp.Regexp),
		terminators: make(map[sectionKind]*regexp.Regexp),
		entryStart:  entryStartPattern,
		year:        yearPattern,
		rangeSep:    rangeSepPattern,
		months:      make(map[string]string),
	}
	for _, l := range ls {
		g.locales = append(g.locales, l.Code)
		for prefix, month := range l.Months {
			key := strings.ToLower(prefix)
			if _, ok := g.months[key]; !ok {
				g.months[key] = month
			}
		}
	}

	byKind := map[sectionKind][]string{
		sectionExperience: merged(ls, func(l Locale) []string { return l.ExperienceHeaders }),
		sectionEducation:  merged(ls, func(l Locale) []string { return l.EducationHeaders }),
		sectionSkills:     merged(ls, func(l Locale) []string { return l.SkillsHeaders }),
		sectionOther:      merged(ls, func(l Locale) []string { return l.OtherHeaders }),
	}
	var all []string
	for _, kind := range []sectionKind{sectionExperience, sectionEducation, sectionSkills, sectionOther} {
		all = append(all, byKind[kind]...)
		g.headers[kind] = regexp.MustCompile(`(?mi)^[ \t]*` + alternation(byKind[kind]) + `[ \t]*:?[ \t]*$`)

		var others []string
		for _, other := range []sectionKind{sectionExperience, sectionEducation, sectionSkills, sectionOther} {
			if other != kind {
				others = append(others, byKind[other]...)
			}
		}
		g.terminators[kind] = regexp.MustCompile(`(?mi)^[ \t]*` + alternation(others) + `\b`)
	}
	g.anyHeader = regexp.MustCompile(`(?i)^[ \t]*` + alternation(all) + `[ \t]*:?[ \t]*$`)

	present := merged(ls, func(l Locale) []string { return l.PresentWords })
	g.present = regexp.MustCompile(`(?i)(?:^|[^\p{L}])` + alternation(present) + `(?:[^\p{L}]|$)`)

	units := merged(ls, func(l Locale) []string { return l.DurationUnits })
	g.duration = regexp.MustCompile(`(?i)^\d+\+?\s*` + alternation(units) + `(?:[^\p{L}]|$)`)

	titles := merged(ls, func(l Locale) []string { return l.TitleKeywords })
	titleRe := regexp.MustCompile(`\b` + alternation(titles))
	labels := merged(ls, func(l Locale) []string { return l.LocationLabels })

	g.technical = lowered(merged(ls, func(l Locale) []string { return l.TechnicalSkills }))
	g.language = lowered(merged(ls, func(l Locale) []string { return l.LanguageSkills }))
	g.soft = lowered(merged(ls, func(l Locale) []string { return l.SoftSkills }))
	g.noise = lowered(merged(ls, func(l Locale) []string { return l.SkillNoise }))

	g.name = RuleSet{
		{
			Name:    "capitalized-words",
			Pattern: regexp.MustCompile(`(?m)^[ \t]*(` + upperWord + `(?:[ \t]+` + upperWord + `){1,3})[ \t]*$`),
			Accept: func(v string) bool {
				return !g.isHeader(v) && !titleRe.MatchString(v)
			},
		},
		{
			Name:    "all-caps-line",
			Pattern: regexp.MustCompile(`(?m)^[ \t]*(\p{Lu}[\p{Lu} \t'-]{2,49})\n`),
			Accept: func(v string) bool {
				return !g.isHeader(v)
			},
		},
	}

	g.headline = RuleSet{
		{
			Name:    "separator-line",
			Pattern: regexp.MustCompile(`(?m)^[ \t]*([^\n]*?(?:[ \t](?:at|w)[ \t]|@|•)[^\n]*)$`),
			Accept: func(v string) bool {
				n := utf8.RuneCountInString(v)
				return n >= headlineMinRunes && n <= headlineMaxRunes &&
					!emailOnlyPattern.MatchString(v) && !bareURLPattern.MatchString(v)
			},
		},
		{
			Name:    "title-keyword",
			Pattern: regexp.MustCompile(`(?m)^[ \t]*([^\n]*\b` + alternation(titles) + `[^\n]*)$`),
			Accept: func(v string) bool {
				return utf8.RuneCountInString(v) <= headlineMaxRunes && !strings.ContainsAny(v, entrySeparators)
			},
		},
	}

	g.location = RuleSet{
		{
			Name:    "labeled",
			Pattern: regexp.MustCompile(`(?mi)^[ \t]*` + alternation(labels) + `[ \t]*:[ \t]*([^\n]+)$`),
		},
		{
			Name:    "city-region",
			Pattern: regexp.MustCompile(`(` + placeWord + `,[ \t]*` + placeWord + `)`),
		},
	}

	g.email = RuleSet{
		{Name: "email", Pattern: emailPattern},
	}

	g.profileURL = RuleSet{
		{
			Name:      "full-url",
			Pattern:   fullURLPattern,
			Normalize: func(v string) string { return strings.TrimRight(v, "/") },
		},
		{
			Name:      "bare-handle",
			Pattern:   bareURLPattern,
			Normalize: func(v string) string { return "https://" + v },
		},
	}

	return g
}

// Locales returns the codes the grammar was compiled from.
func (g *Grammar) Locales() []string {
	out := make([]string, len(g.locales))
	copy(out, g.locales)
	return out
}

// isHeader reports whether a line is exactly a known section header.
func (g *Grammar) isHeader(line string) bool {
	return g.anyHeader.MatchString(line)
}

func lowered(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = strings.ToLower(w)
	}
	return out
}
