// Package linkedin extracts structured CV data from text copied out of a
// LinkedIn profile page. Extraction is best-effort: anything that cannot be
// recognized is left empty rather than reported as an error.
package linkedin

import (
	"fmt"
	"strings"

	"github.com/jonathan/cv-importer/internal/types"
)

// Parser turns profile text into a ParseResult. It holds only a compiled
// Grammar and is safe for concurrent use.
type Parser struct {
	grammar *Grammar
}

// New creates a parser for the given locale codes, in precedence order.
// With no codes the DefaultLocales are used.
func New(localeCodes ...string) (*Parser, error) {
	if len(localeCodes) == 0 {
		localeCodes = DefaultLocales
	}
	ls := make([]Locale, 0, len(localeCodes))
	for _, code := range localeCodes {
		if strings.TrimSpace(code) == "" {
			continue
		}
		l, err := LookupLocale(code)
		if err != nil {
			return nil, err
		}
		ls = append(ls, l)
	}
	if len(ls) == 0 {
		return nil, fmt.Errorf("no locales given")
	}
	return &Parser{grammar: Compile(ls...)}, nil
}

// MustNew is like New but panics on an unknown locale.
func MustNew(localeCodes ...string) *Parser {
	p, err := New(localeCodes...)
	if err != nil {
		panic(err)
	}
	return p
}

var defaultParser = MustNew()

// Parse parses text with the default English and Polish parser.
func Parse(text string) *types.ParseResult {
	return defaultParser.Parse(text)
}

// NormalizeDate normalizes a date token with the default grammar.
func NormalizeDate(raw string) string {
	return defaultParser.grammar.NormalizeDate(raw)
}

// ClassifySkill classifies a skill name with the default grammar.
func ClassifySkill(name string) string {
	return defaultParser.grammar.ClassifySkill(name)
}

// Grammar returns the compiled grammar of the parser.
func (p *Parser) Grammar() *Grammar {
	return p.grammar
}

// Locales returns the locale codes the parser was built with.
func (p *Parser) Locales() []string {
	return p.grammar.Locales()
}

// Parse extracts personal info, experience, education and skills from text.
// It never fails; fields that could not be extracted are empty and marked
// not found in result.Fields.
func (p *Parser) Parse(text string) *types.ParseResult {
	g := p.grammar
	text = strings.ToValidUTF8(text, "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSpace(text)

	result := types.NewParseResult()

	record := func(field string, m Match) string {
		result.Fields[field] = types.FieldOutcome{Found: m.Found, Rule: m.Rule}
		return m.Value
	}
	result.Personal.FullName = record(types.FieldFullName, g.FullName(text))
	result.Personal.Headline = record(types.FieldHeadline, g.Headline(text))
	result.Personal.Location = record(types.FieldLocation, g.Location(text))
	result.Personal.Email = record(types.FieldEmail, g.Email(text))
	result.Personal.ProfileURL = record(types.FieldProfileURL, g.ProfileURL(text))
	result.Summary = result.Personal.Headline

	if body, ok := g.section(text, sectionExperience); ok {
		result.Experience = g.parseExperience(body)
	}
	if body, ok := g.section(text, sectionEducation); ok {
		result.Education = g.parseEducation(body)
	}
	if body, ok := g.section(text, sectionSkills); ok {
		result.Skills = g.parseSkills(body)
	}

	return result
}
