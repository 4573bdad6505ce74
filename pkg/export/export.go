// Package export serializes the full record set to a portable JSON
// document and parses such documents back for restoration.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"edumate/pkg/domain"
)

// Version identifies the current document format.
const Version = "1.0"

// Parse failure sentinels.
var (
	ErrInvalidDocument   = errors.New("invalid export document")
	ErrItemCountMismatch = errors.New("export document totalItems does not match content length")
)

// Document is the portable export format. Record IDs are included for
// round-trip fidelity; importers may reassign them to avoid collisions.
type Document struct {
	ExportDate string                 `json:"exportDate"`
	Version    string                 `json:"version"`
	TotalItems int                    `json:"totalItems"`
	Content    []domain.ContentRecord `json:"content"`
}

// Build assembles a document from the current record set. It never
// mutates the records.
func Build(records []domain.ContentRecord, now time.Time) Document {
	content := make([]domain.ContentRecord, len(records))
	copy(content, records)
	return Document{
		ExportDate: now.UTC().Format(time.RFC3339),
		Version:    Version,
		TotalItems: len(content),
		Content:    content,
	}
}

// Marshal renders the document as indented JSON suitable for download.
func Marshal(doc Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}
	return data, nil
}

// Parse decodes and validates an export document. The version field is
// tolerated when absent for forward compatibility, but a present
// totalItems must agree with the content length.
func Parse(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if doc.Content == nil {
		return Document{}, fmt.Errorf("%w: missing content", ErrInvalidDocument)
	}
	if doc.TotalItems != len(doc.Content) {
		return Document{}, fmt.Errorf("%w: declared %d, found %d", ErrItemCountMismatch, doc.TotalItems, len(doc.Content))
	}
	return doc, nil
}
