// Package jobdesc constructs JobDescriptions from raw posting text and
// derives the weighted keyword set the scorer and evaluator work against.
// Fetching postings from the network is out of scope; loaders here accept
// already-downloaded text or HTML files.
package jobdesc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/martin/tailorproof/internal/types"
)

// noiseSelectors are stripped from HTML before text extraction.
const noiseSelectors = "nav, footer, header, script, style, noscript, .ad, .ads, .cookie-banner, .sidebar"

// New builds a JobDescription from raw posting text.
func New(text, title, company string, maxTerms int) (*types.JobDescription, error) {
	cleaned := CleanText(text)
	if cleaned == "" {
		return nil, fmt.Errorf("job description text is empty")
	}

	return &types.JobDescription{
		Title:    title,
		Company:  company,
		Text:     cleaned,
		Keywords: ExtractKeywords(cleaned, maxTerms),
	}, nil
}

// LoadFile builds a JobDescription from a local .txt/.md/.html file.
func LoadFile(path string, maxTerms int) (*types.JobDescription, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job description %s: %w", path, err)
	}

	text := string(content)
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".html" || ext == ".htm" {
		text, err = extractHTMLText(text)
		if err != nil {
			return nil, fmt.Errorf("failed to extract text from %s: %w", path, err)
		}
	}

	return New(text, "", "", maxTerms)
}

// extractHTMLText pulls the visible text out of an HTML document, preferring
// the main content node when one exists.
func extractHTMLText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find(noiseSelectors).Remove()

	content := doc.Find("main, article, [role=main]")
	if content.Length() == 0 {
		content = doc.Find("body")
	}

	return content.Text(), nil
}

// CleanText normalizes posting text: CRLF to LF, per-line whitespace
// collapse, and at most one consecutive blank line.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	blanks := 0
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			blanks++
			if blanks > 1 {
				continue
			}
		} else {
			blanks = 0
		}
		cleaned = append(cleaned, line)
	}

	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}
