// Package observability provides logging and formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/cv-importer/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
// Profile text is often Polish, so cuts must land on rune boundaries.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

// PrintParseResult outputs a human-readable summary of a parsed profile.
func (p *Printer) PrintParseResult(result *types.ParseResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	personal := result.Personal
	sb.WriteString(fmt.Sprintf("Name:      %s\n", orDash(personal.FullName)))
	sb.WriteString(fmt.Sprintf("Headline:  %s\n", orDash(personal.Headline)))
	sb.WriteString(fmt.Sprintf("Location:  %s\n", orDash(personal.Location)))
	sb.WriteString(fmt.Sprintf("Email:     %s\n", orDash(personal.Email)))
	sb.WriteString(fmt.Sprintf("Profile:   %s\n", orDash(personal.ProfileURL)))
	sb.WriteString("\n")

	if len(result.Experience) > 0 {
		sb.WriteString(fmt.Sprintf("Experience (%d):\n", len(result.Experience)))
		count := min(len(result.Experience), maxItemsToShow)
		for i := 0; i < count; i++ {
			e := result.Experience[i]
			sb.WriteString(fmt.Sprintf("  • %s @ %s\n", e.Position, e.Company))
			sb.WriteString(fmt.Sprintf("    %s\n", dateRange(e.StartDate, e.EndDate, e.IsCurrent)))
		}
		if len(result.Experience) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(result.Experience)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	if len(result.Education) > 0 {
		sb.WriteString(fmt.Sprintf("Education (%d):\n", len(result.Education)))
		count := min(len(result.Education), 3)
		for i := 0; i < count; i++ {
			e := result.Education[i]
			line := "  • " + e.School
			if e.Degree != "" {
				line += ", " + e.Degree
			}
			sb.WriteString(line + "\n")
		}
		if len(result.Education) > 3 {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(result.Education)-3))
		}
		sb.WriteString("\n")
	}

	if len(result.Skills) > 0 {
		sb.WriteString(fmt.Sprintf("Skills (%d):\n", len(result.Skills)))
		for _, cat := range []string{
			types.SkillCategoryTechnical,
			types.SkillCategoryLanguage,
			types.SkillCategorySoft,
			types.SkillCategoryOther,
		} {
			var names []string
			for _, s := range result.Skills {
				if s.Category == cat {
					names = append(names, s.Name)
				}
			}
			if len(names) > 0 {
				sb.WriteString(fmt.Sprintf("  %s: %s\n", cat, strings.Join(names, ", ")))
			}
		}
	}

	p.printBox("PARSED LINKEDIN PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintFieldOutcomes lists which rule produced each personal field, and which were not found.
func (p *Printer) PrintFieldOutcomes(result *types.ParseResult) {
	if result == nil || len(result.Fields) == 0 {
		return
	}

	keys := make([]string, 0, len(result.Fields))
	for k := range result.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		outcome := result.Fields[k]
		if outcome.Found {
			sb.WriteString(fmt.Sprintf("✓ %-12s %s\n", k, outcome.Rule))
		} else {
			sb.WriteString(fmt.Sprintf("✗ %-12s not found\n", k))
		}
	}

	p.printBox("FIELD EXTRACTION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintApplySummary outputs the row counts written by applying an import.
func (p *Printer) PrintApplySummary(importID string, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Import: %s\n\n", importID))
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("  %-20s %d\n", k, counts[k]))
	}

	p.printBox("IMPORT APPLIED", strings.TrimSuffix(sb.String(), "\n"))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func dateRange(start, end string, current bool) string {
	if start == "" {
		start = "?"
	}
	switch {
	case current:
		end = "present"
	case end == "":
		end = "?"
	}
	return start + " → " + end
}
