// Package ingest extracts plain text from uploaded study material so it
// can be fed to the operation gateway.
package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/net/html"
)

// Extraction failure sentinels.
var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrNoText          = errors.New("no text extracted")
)

// Extract returns the plain text of an uploaded file, dispatching on
// the filename extension. Supported: .txt, .md, .pdf, .html/.htm.
func Extract(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt", ".md":
		return normalizeText(string(data))
	case ".pdf":
		return extractPDF(data)
	case ".html", ".htm":
		return extractHTML(data)
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
}

// MIMEType maps a filename to the informational fileType stored on the
// record. It is not validated anywhere.
func MIMEType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		return "text/plain"
	case ".md":
		return "text/markdown"
	case ".pdf":
		return "application/pdf"
	case ".html", ".htm":
		return "text/html"
	}
	return "application/octet-stream"
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip problematic pages instead of failing entirely.
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return normalizeText(b.String())
}

func extractHTML(data []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return normalizeText(b.String())
}

// normalizeText collapses runs of whitespace into single spaces.
func normalizeText(text string) (string, error) {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}
