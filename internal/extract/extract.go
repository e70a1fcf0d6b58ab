package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned when no reader is registered for a
// document's file extension.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// PageReader extracts the ordered page texts of one source document.
type PageReader interface {
	// ReadPages returns one string per page, in page order. An empty slice
	// means the document contained no extractable text.
	ReadPages(ctx context.Context, path string) ([]string, error)
}

// Registry dispatches extraction to a PageReader by file extension.
type Registry struct {
	byExt map[string]PageReader
}

// NewRegistry returns a registry with the default readers: plaintext for
// .txt and .md, pdftotext for .pdf.
func NewRegistry() *Registry {
	r := &Registry{byExt: make(map[string]PageReader)}
	plain := NewPlaintextReader()
	r.Register(".txt", plain)
	r.Register(".md", plain)
	r.Register(".pdf", NewPDFReader())
	return r
}

// Register binds a reader to a file extension (with leading dot).
func (r *Registry) Register(ext string, reader PageReader) {
	r.byExt[strings.ToLower(ext)] = reader
}

// ReadPages extracts page texts using the reader registered for the file's
// extension.
func (r *Registry) ReadPages(ctx context.Context, path string) ([]string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	reader, ok := r.byExt[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	return reader.ReadPages(ctx, path)
}
