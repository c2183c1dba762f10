package linkedin

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	numericDatePattern = regexp.MustCompile(`\b(0?[1-9]|1[0-2])[./]((?:19|20)\d{2})\b`)
	wordPattern        = regexp.MustCompile(`\p{L}+`)
)

// NormalizeDate converts a loose date token ("Mar 2021", "marzec 2021", "03/2021",
// "2019") into YYYY-MM. A bare year defaults to January. Tokens without a four-digit
// year return "".
func (g *Grammar) NormalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	if m := numericDatePattern.FindStringSubmatch(raw); m != nil {
		month := m[1]
		if len(month) == 1 {
			month = "0" + month
		}
		return m[2] + "-" + month
	}

	loc := g.year.FindStringSubmatchIndex(raw)
	if loc == nil {
		return ""
	}
	year := raw[loc[2]:loc[3]]

	month := "01"
	words := wordPattern.FindAllString(raw[:loc[0]], -1)
	if len(words) > 0 {
		if m, ok := g.months[monthKey(words[len(words)-1])]; ok {
			month = m
		}
	}
	return year + "-" + month
}

func monthKey(word string) string {
	word = strings.ToLower(word)
	if utf8.RuneCountInString(word) <= 3 {
		return word
	}
	return string([]rune(word)[:3])
}

// isPresent reports whether a token is a current-role sentinel such as "Present".
func (g *Grammar) isPresent(token string) bool {
	return g.present.MatchString(token)
}

// parseDateRange splits "Mar 2020 - Present" into normalized start and end dates.
// A present sentinel on the end side yields current=true with an empty end.
func (g *Grammar) parseDateRange(token string) (start, end string, current bool) {
	parts := g.rangeSep.Split(strings.TrimSpace(token), 2)
	start = g.NormalizeDate(parts[0])
	if len(parts) < 2 {
		return start, "", false
	}
	if g.isPresent(parts[1]) {
		return start, "", true
	}
	return start, g.NormalizeDate(parts[1]), false
}
