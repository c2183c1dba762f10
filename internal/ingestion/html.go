package ingestion

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Input formats recognized by IngestFromFile
const (
	FormatText = "text"
	FormatHTML = "html"
)

const blockSelectors = "p, div, li, ul, ol, section, article, header, h1, h2, h3, h4, h5, h6, tr, dt, dd"

// noiseSelectors are removed from saved profile pages before text extraction.
// LinkedIn renders every label twice, once for screen readers.
const noiseSelectors = "script, style, noscript, svg, nav, footer, button, .visually-hidden, .artdeco-button, .global-nav"

// profileSelectors locate the profile content on a saved page, first match wins
var profileSelectors = []string{
	"main.scaffold-layout__main",
	"main",
	"#profile-content",
	"body",
}

// TextFromHTML turns a saved profile page into plain text with one block per line.
func TextFromHTML(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find(noiseSelectors).Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find(blockSelectors).Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	var content *goquery.Selection
	for _, selector := range profileSelectors {
		if selection := doc.Find(selector); selection.Length() > 0 {
			content = selection.First()
			break
		}
	}
	if content == nil {
		content = doc.Selection
	}

	return CleanProfileText(content.Text()), nil
}

// DetectFormat decides whether a file holds HTML, by extension first and then by content.
func DetectFormat(path string, content []byte) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return FormatHTML
	case ".txt":
		return FormatText
	}
	head := bytes.ToLower(bytes.TrimSpace(content))
	if len(head) > 512 {
		head = head[:512]
	}
	if bytes.HasPrefix(head, []byte("<!doctype html")) || bytes.HasPrefix(head, []byte("<html")) {
		return FormatHTML
	}
	return FormatText
}
