// Package extractor converts uploaded documents into plain text or markdown
// suitable for chunking and indexing.
package extractor

import (
	"context"
	"io"
)

// ExtractionResult contains the text extracted from a document.
type ExtractionResult struct {
	// Text is the extracted content.
	Text string

	// PageCount is the number of pages (estimated for formats without
	// page metadata).
	PageCount int

	// Metadata contains format and source information.
	Metadata map[string]any
}

// Extractor converts a document into text.
type Extractor interface {
	// Extract reads a document and returns its text content.
	Extract(ctx context.Context, file io.Reader, filename string, mimeType string) (*ExtractionResult, error)

	// IsSupported checks if a file format is supported for extraction.
	IsSupported(filename string) bool
}
