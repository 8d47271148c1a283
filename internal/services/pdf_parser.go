package services

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DocumentParser turns an uploaded job description into plain text.
type DocumentParser interface {
	ExtractText(path, ext string) (*DocumentContent, error)
}

type DocumentContent struct {
	Text      string
	PageCount int
}

type documentParser struct{}

func NewDocumentParser() DocumentParser {
	return &documentParser{}
}

func (p *documentParser) ExtractText(path, ext string) (*DocumentContent, error) {
	var (
		content *DocumentContent
		err     error
	)
	switch ext {
	case ".pdf":
		content, err = extractPDF(path)
	default:
		content, err = extractPlain(path)
	}
	if err != nil {
		return nil, err
	}

	content.Text = CleanText(content.Text)
	if content.Text == "" {
		return nil, newValidationError("file", "no text content found")
	}
	return content, nil
}

func extractPDF(path string) (*DocumentContent, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, newValidationError("file", "not a readable PDF: %v", err)
	}
	defer f.Close()

	var sb strings.Builder
	pages := r.NumPage()
	for i := 1; i <= pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// a broken page should not lose the rest of the document
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}

	return &DocumentContent{Text: sb.String(), PageCount: pages}, nil
}

func extractPlain(path string) (*DocumentContent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return &DocumentContent{Text: string(data), PageCount: 1}, nil
}

// CleanText trims every line and drops blank ones.
func CleanText(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
