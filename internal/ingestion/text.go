package ingestion

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultMaxBytes bounds the text handed to the parser.
const DefaultMaxBytes = 256 * 1024

var (
	multiSpace    = regexp.MustCompile(`[ \t]+`)
	excessBlanks  = regexp.MustCompile(`\n\n\n+`)
	dotSeparators = strings.NewReplacer("\u22c5", "·", "\u2219", "·", "\u00a0", " ", "\u2009", " ", "\u202f", " ")
	invisible     = strings.NewReplacer("\u200b", "", "\u200c", "", "\u200d", "", "\ufeff", "", "\u2060", "")
)

// CleanProfileText normalizes pasted profile text while preserving its line structure.
// Middle-dot variants become "·" so entry lines split consistently.
func CleanProfileText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ToValidUTF8(content, "")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = invisible.Replace(content)
	content = dotSeparators.Replace(content)

	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		cleaned = append(cleaned, cleanLine(line))
	}

	result := strings.Join(cleaned, "\n")
	result = removeExcessiveBlankLines(result)
	return strings.TrimSpace(result)
}

// cleanLine trims a line and collapses runs of spaces inside it
func cleanLine(line string) string {
	line = strings.TrimSpace(line)
	if line == "" {
		return ""
	}
	return multiSpace.ReplaceAllString(line, " ")
}

// removeExcessiveBlankLines reduces consecutive blank lines to max 1
func removeExcessiveBlankLines(content string) string {
	return excessBlanks.ReplaceAllString(content, "\n\n")
}

// Bound truncates s to at most maxBytes without splitting a UTF-8 sequence.
// It reports whether anything was cut. A non-positive maxBytes means DefaultMaxBytes.
func Bound(s string, maxBytes int) (string, bool) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if len(s) <= maxBytes {
		return s, false
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut], true
}

// IngestFromFile reads a saved profile (plain text or an HTML page), cleans and
// bounds it, and returns the text with its metadata.
func IngestFromFile(path string, maxBytes int) (string, *Metadata, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("file not found: %w", err)
		}
		return "", nil, fmt.Errorf("failed to read file: %w", err)
	}

	format := DetectFormat(path, content)
	text := string(content)
	if format == FormatHTML {
		text, err = TextFromHTML(text)
		if err != nil {
			return "", nil, err
		}
	}

	text, truncated := Bound(CleanProfileText(text), maxBytes)
	metadata := NewMetadata(text, path, format)
	metadata.Truncated = truncated

	return text, metadata, nil
}

// WriteOutput writes the cleaned text and its metadata next to each other in outDir
func WriteOutput(outDir string, baseName string, cleanedText string, metadata *Metadata) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	cleanedPath := filepath.Join(outDir, baseName+".cleaned.txt")
	if err := os.WriteFile(cleanedPath, []byte(cleanedText), 0644); err != nil {
		return fmt.Errorf("failed to write cleaned text file: %w", err)
	}

	metaPath := filepath.Join(outDir, baseName+".meta.json")
	metaJSON, err := metadata.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(metaPath, metaJSON, 0644); err != nil {
		return fmt.Errorf("failed to write metadata file: %w", err)
	}

	return nil
}
