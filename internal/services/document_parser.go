package services

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"alfredoptarigan/candidate-scorer/internal/models"
)

type DocumentParser interface {
	ExtractText(doc models.RawDocument) (string, error)
}

type documentParser struct{}

func NewDocumentParser() DocumentParser {
	return &documentParser{}
}

// ExtractText implements DocumentParser. The result is normalized with
// CleanText; empty output is ErrEmptyDocument.
func (p *documentParser) ExtractText(doc models.RawDocument) (string, error) {
	var (
		raw string
		err error
	)

	switch doc.Type {
	case models.DocumentPDF:
		raw, err = extractPDFText(doc.Content)
	case models.DocumentDOCX:
		raw, err = extractDocxText(doc.Content)
	case models.DocumentTXT:
		if !utf8.Valid(doc.Content) {
			return "", fmt.Errorf("%w: text file is not valid UTF-8", ErrUnsupportedDocument)
		}
		raw = string(doc.Content)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDocument, doc.Type)
	}
	if err != nil {
		return "", err
	}

	text := CleanText(raw)
	if text == "" {
		return "", ErrEmptyDocument
	}
	return text, nil
}

func extractPDFText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages, keep the rest
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	return textBuilder.String(), nil
}

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	// GetContent returns document.xml; paragraph ends become line breaks.
	content := strings.ReplaceAll(doc.Editable().GetContent(), "</w:p>", "</w:p>\n")
	parsed, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("failed to read docx content: %w", err)
	}
	return parsed.Text(), nil
}

// CleanText collapses whitespace and replaces characters outside a
// conservative set with spaces. URL punctuation is kept.
func CleanText(text string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		if strings.ContainsRune("_-.,()@:;/+#&'?=%~", r) {
			return r
		}
		return ' '
	}, text)
	return strings.Join(strings.Fields(mapped), " ")
}
