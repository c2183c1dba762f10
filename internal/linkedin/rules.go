package linkedin

import (
	"regexp"
	"strings"
)

// Rule is one named alternative of a field grammar. The first capture group of
// Pattern is the candidate value; Accept may reject a candidate, in which case the
// next match of the same rule is tried before falling through to the next rule.
type Rule struct {
	Name      string
	Pattern   *regexp.Regexp
	Accept    func(value string) bool
	Normalize func(value string) string
}

// RuleSet is an ordered list of rules. Earlier rules take precedence over
// later ones regardless of where in the text they match.
type RuleSet []Rule

// Match is the outcome of evaluating a RuleSet.
type Match struct {
	Value string
	Rule  string
	Found bool
}

// Eval applies the rules in order and returns the first accepted match.
func (rs RuleSet) Eval(text string) Match {
	for _, r := range rs {
		if v, ok := r.find(text); ok {
			return Match{Value: v, Rule: r.Name, Found: true}
		}
	}
	return Match{}
}

// Names returns the rule names in precedence order.
func (rs RuleSet) Names() []string {
	names := make([]string, len(rs))
	for i, r := range rs {
		names[i] = r.Name
	}
	return names
}

func (r Rule) find(text string) (string, bool) {
	for _, m := range r.Pattern.FindAllStringSubmatch(text, -1) {
		v := m[0]
		if len(m) > 1 {
			v = m[1]
		}
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if r.Accept != nil && !r.Accept(v) {
			continue
		}
		if r.Normalize != nil {
			v = r.Normalize(v)
		}
		return v, true
	}
	return "", false
}

// neverMatch is a pattern no input can satisfy.
const neverMatch = `[^\x00-\x{10FFFF}]`

// alternation builds a non-capturing regexp alternation of literal words,
// longest first so that "Work Experience" wins over "Experience".
func alternation(words []string) string {
	if len(words) == 0 {
		return neverMatch
	}
	sorted := make([]string, len(words))
	copy(sorted, words)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && len(sorted[j]) > len(sorted[j-1]); j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	quoted := make([]string, len(sorted))
	for i, w := range sorted {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return "(?:" + strings.Join(quoted, "|") + ")"
}
