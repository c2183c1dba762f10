package linkedin

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

var localeCodePattern = regexp.MustCompile(`^[a-z]{2}$`)

// Locale holds the keyword data for one profile-export language.
// Extraction logic never hard-codes words; it compiles them from locales.
type Locale struct {
	Code string

	ExperienceHeaders []string
	EducationHeaders  []string
	SkillsHeaders     []string
	// OtherHeaders end a section but are never parsed themselves.
	OtherHeaders []string

	PresentWords   []string
	LocationLabels []string
	TitleKeywords  []string
	DurationUnits  []string

	// Months maps a lowercase three-letter prefix to a two-digit month.
	Months map[string]string

	TechnicalSkills []string
	LanguageSkills  []string
	SoftSkills      []string
	// SkillNoise marks lines in the skills section that are not skills
	// (endorsement counters, "show all" links).
	SkillNoise []string
}

// English is the locale for English-language profile exports.
var English = Locale{
	Code:              "en",
	ExperienceHeaders: []string{"Experience", "Work Experience"},
	EducationHeaders:  []string{"Education"},
	SkillsHeaders:     []string{"Skills", "Top Skills"},
	OtherHeaders: []string{
		"Languages", "Licenses & certifications", "Certifications", "Recommendations",
		"Interests", "Honors & awards", "Volunteering", "Projects", "Publications", "Courses",
	},
	PresentWords:   []string{"Present", "Current", "Now"},
	LocationLabels: []string{"Location"},
	TitleKeywords:  []string{"Engineer", "Developer", "Manager", "Designer", "Specialist", "Analyst"},
	DurationUnits:  []string{"yr", "yrs", "year", "years", "mo", "mos", "month", "months"},
	Months: map[string]string{
		"jan": "01", "feb": "02", "mar": "03", "apr": "04", "may": "05", "jun": "06",
		"jul": "07", "aug": "08", "sep": "09", "oct": "10", "nov": "11", "dec": "12",
	},
	TechnicalSkills: []string{
		"javascript", "typescript", "python", "java", "golang", "kotlin", "swift", "php", "ruby",
		"scala", "c++", "c#", ".net", "sql", "postgres", "mongodb", "redis", "react", "angular",
		"vue.js", "node", "django", "spring", "docker", "kubernetes", "terraform", "aws", "azure",
		"gcp", "github", "gitlab", "linux", "html", "css", "graphql", "devops", "ci/cd",
		"machine learning", "tensorflow", "programming", "software",
	},
	LanguageSkills: []string{
		"english", "polish", "german", "french", "spanish", "italian", "russian", "ukrainian",
		"chinese", "japanese",
	},
	SoftSkills: []string{
		"leadership", "communication", "teamwork", "management", "problem solving", "negotiation",
		"mentoring", "presentation", "public speaking", "creativity", "critical thinking",
		"adaptability", "collaboration",
	},
	SkillNoise: []string{"endorse", "show all", "see all", "experiences across", "skill assessment"},
}

// Polish is the locale for Polish-language profile exports.
var Polish = Locale{
	Code:              "pl",
	ExperienceHeaders: []string{"Doświadczenie"},
	EducationHeaders:  []string{"Edukacja", "Wykształcenie"},
	SkillsHeaders:     []string{"Umiejętności"},
	OtherHeaders: []string{
		"Języki", "Licencje i certyfikaty", "Certyfikaty", "Rekomendacje", "Zainteresowania",
		"Wyróżnienia i nagrody", "Wolontariat", "Projekty", "Publikacje", "Kursy",
	},
	PresentWords:   []string{"Obecnie", "Teraz"},
	LocationLabels: []string{"Lokalizacja"},
	TitleKeywords:  []string{"Inżynier", "Programista", "Kierownik", "Projektant", "Specjalista", "Analityk"},
	DurationUnits:  []string{"rok", "lata", "lat", "mies", "mies."},
	Months: map[string]string{
		"sty": "01", "lut": "02", "mar": "03", "kwi": "04", "maj": "05", "cze": "06",
		"lip": "07", "sie": "08", "wrz": "09", "paź": "10", "paz": "10", "lis": "11", "gru": "12",
	},
	LanguageSkills: []string{
		"angielski", "polski", "niemiecki", "francuski", "hiszpański", "włoski", "rosyjski",
		"ukraiński",
	},
	SoftSkills: []string{
		"przywództwo", "komunikacja", "praca zespołowa", "zarządzanie", "negocjacje",
		"kreatywność", "mentoring",
	},
	SkillNoise: []string{"potwierdz", "pokaż wszystk", "zobacz wszystk", "doświadczenia w"},
}

var (
	localesMu sync.RWMutex
	locales   = map[string]Locale{
		English.Code: English,
		Polish.Code:  Polish,
	}
)

// DefaultLocales are the locales used by the package-level Parse.
var DefaultLocales = []string{English.Code, Polish.Code}

// RegisterLocale makes a locale available to New under its code.
// Codes are two lowercase letters and cannot be registered twice.
func RegisterLocale(l Locale) error {
	code := strings.ToLower(strings.TrimSpace(l.Code))
	if !localeCodePattern.MatchString(code) {
		return fmt.Errorf("invalid locale code %q: want two letters", l.Code)
	}
	if len(l.ExperienceHeaders) == 0 && len(l.EducationHeaders) == 0 && len(l.SkillsHeaders) == 0 {
		return fmt.Errorf("locale %q has no section headers", code)
	}

	localesMu.Lock()
	defer localesMu.Unlock()
	if _, exists := locales[code]; exists {
		return fmt.Errorf("locale %q is already registered", code)
	}
	l.Code = code
	locales[code] = l
	return nil
}

// LookupLocale returns the registered locale for code.
func LookupLocale(code string) (Locale, error) {
	localesMu.RLock()
	l, ok := locales[strings.ToLower(strings.TrimSpace(code))]
	localesMu.RUnlock()
	if !ok {
		return Locale{}, fmt.Errorf("unknown locale %q (available: %s)", code, strings.Join(LocaleCodes(), ", "))
	}
	return l, nil
}

// LocaleCodes lists registered locale codes in sorted order.
func LocaleCodes() []string {
	localesMu.RLock()
	defer localesMu.RUnlock()
	codes := make([]string, 0, len(locales))
	for code := range locales {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// merged concatenates the word lists of several locales in the order given,
// dropping case-insensitive duplicates.
func merged(ls []Locale, pick func(Locale) []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range ls {
		for _, w := range pick(l) {
			key := strings.ToLower(w)
			if w == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, w)
		}
	}
	return out
}
