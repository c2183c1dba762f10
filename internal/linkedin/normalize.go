package linkedin

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// skillAliases maps common skill spellings to a canonical name
var skillAliases = map[string]string{
	"golang":     "Go",
	"go lang":    "Go",
	"javascript": "JavaScript",
	"js":         "JavaScript",
	"typescript": "TypeScript",
	"ts":         "TypeScript",
	"k8s":        "Kubernetes",
	"kubernetes": "Kubernetes",
	"react.js":   "React",
	"reactjs":    "React",
	"vue.js":     "Vue",
	"vuejs":      "Vue",
	"node.js":    "Node.js",
	"nodejs":     "Node.js",
	"postgres":   "PostgreSQL",
	"postgresql": "PostgreSQL",
}

// NormalizeSkillName returns the canonical spelling of a skill name. Known aliases
// are mapped, single all-lowercase or all-caps words are capitalized, and mixed-case
// names are kept as written.
func NormalizeSkillName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	lower := strings.ToLower(name)
	if canonical, ok := skillAliases[lower]; ok {
		return canonical
	}
	if strings.ContainsRune(name, ' ') {
		return name
	}

	upper := strings.ToUpper(name)
	switch {
	case name == upper && utf8.RuneCountInString(name) > 4:
		// all-caps words of up to four letters are kept as acronyms (SQL, AWS)
		return capitalize(lower)
	case name == lower:
		return capitalize(name)
	default:
		return name
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
