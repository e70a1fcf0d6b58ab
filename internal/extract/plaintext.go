package extract

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// PlaintextReader reads .txt and .md documents. Form feed characters are
// treated as page breaks, matching the convention used by pdftotext output;
// a file without form feeds is a single page.
type PlaintextReader struct{}

// NewPlaintextReader creates a plaintext page reader.
func NewPlaintextReader() *PlaintextReader {
	return &PlaintextReader{}
}

// ReadPages implements PageReader.
func (p *PlaintextReader) ReadPages(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return splitPages(string(data)), nil
}

// splitPages splits text on form feeds and drops trailing empty pages so a
// terminating \f does not produce a phantom page.
func splitPages(text string) []string {
	pages := strings.Split(text, "\f")
	for len(pages) > 0 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}
	return pages
}
