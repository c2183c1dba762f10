package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jonathan/cv-importer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func sampleResult() *types.ParseResult {
	r := types.NewParseResult()
	r.Personal = types.PersonalInfo{
		FullName:   "Jan Kowalski",
		Headline:   "Senior Software Engineer at Acme",
		Location:   "Warsaw, Poland",
		Email:      "jan@example.com",
		ProfileURL: "https://www.linkedin.com/in/jankowalski",
	}
	r.Experience = []types.ExperienceEntry{
		{Position: "Senior Software Engineer", Company: "Acme", StartDate: "2021-03", IsCurrent: true},
		{Position: "Developer", Company: "Beta", StartDate: "2018-01", EndDate: "2021-02"},
	}
	r.Education = []types.EducationEntry{
		{School: "Warsaw University of Technology", Degree: "MSc"},
	}
	r.Skills = []types.SkillEntry{
		{Name: "Python", Level: types.DefaultSkillLevel, Category: types.SkillCategoryTechnical},
		{Name: "Leadership", Level: types.DefaultSkillLevel, Category: types.SkillCategorySoft},
		{Name: "English", Level: types.DefaultSkillLevel, Category: types.SkillCategoryLanguage},
	}
	r.Fields[types.FieldFullName] = types.FieldOutcome{Found: true, Rule: "capitalized-words"}
	r.Fields[types.FieldLocation] = types.FieldOutcome{Found: false}
	return r
}

func TestPrintParseResult(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintParseResult(sampleResult())
	output := buf.String()

	assert.Contains(t, output, "PARSED LINKEDIN PROFILE")
	assert.Contains(t, output, "Jan Kowalski")
	assert.Contains(t, output, "Experience (2)")
	assert.Contains(t, output, "Senior Software Engineer @ Acme")
	assert.Contains(t, output, "2021-03 → present")
	assert.Contains(t, output, "2018-01 → 2021-02")
	assert.Contains(t, output, "Warsaw University of Technology, MSc")
	assert.Contains(t, output, "technical: Python")
	assert.Contains(t, output, "soft: Leadership")
	assert.Contains(t, output, "language: English")
}

func TestPrintParseResult_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintParseResult(nil)

	assert.Empty(t, buf.String())
}

func TestPrintParseResult_EmptyFieldsShowDash(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintParseResult(types.NewParseResult())
	output := buf.String()

	assert.Contains(t, output, "Name:      -")
	assert.NotContains(t, output, "Experience (")
}

func TestPrintParseResult_TruncatesExperience(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	r := types.NewParseResult()
	for i := 0; i < 8; i++ {
		r.Experience = append(r.Experience, types.ExperienceEntry{Position: "Engineer", Company: "Co"})
	}
	p.PrintParseResult(r)

	assert.Contains(t, buf.String(), "... and 3 more")
	assert.Contains(t, buf.String(), "? → ?")
}

func TestPrintFieldOutcomes(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintFieldOutcomes(sampleResult())
	output := buf.String()

	assert.Contains(t, output, "FIELD EXTRACTION")
	assert.Contains(t, output, "✓ full_name")
	assert.Contains(t, output, "capitalized-words")
	assert.Contains(t, output, "✗ location")
	// sorted keys
	assert.Less(t, strings.Index(output, "full_name"), strings.Index(output, "location"))
}

func TestPrintApplySummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintApplySummary("abc-123", map[string]int{"jobs_created": 2, "skills_linked": 5})
	output := buf.String()

	assert.Contains(t, output, "IMPORT APPLIED")
	assert.Contains(t, output, "abc-123")
	assert.Contains(t, output, "jobs_created")
	assert.Contains(t, output, "5")
}

func TestPrintBox_TruncatesOnRuneBoundary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("T", strings.Repeat("ż", 100))

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, boxWidth, len([]rune(line)), "line %q", line)
	}
	assert.Contains(t, buf.String(), "...")
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short", "abc", 5, "abc"},
		{"exact", "abcde", 5, "abcde"},
		{"long", "abcdefgh", 5, "ab..."},
		{"multibyte", "zażółćgęślą", 6, "zaż..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncate(tt.in, tt.n))
		})
	}
}

func TestNewLogger(t *testing.T) {
	for _, verbose := range []bool{true, false} {
		logger, err := NewLogger(verbose)
		require.NoError(t, err)
		require.NotNil(t, logger)
		assert.Equal(t, verbose, logger.Core().Enabled(zap.DebugLevel))
	}
}

func TestParseResultFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	logger.Info("parsed", ParseResultFields(2, 1, 7, true)...)

	require.Equal(t, 1, logs.Len())
	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, int64(2), ctx["experience"])
	assert.Equal(t, int64(1), ctx["education"])
	assert.Equal(t, int64(7), ctx["skills"])
	assert.Equal(t, true, ctx["name_found"])
}
