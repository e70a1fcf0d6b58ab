package extract

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// CommandRunner executes an external command and returns its stdout.
// It exists so PDF extraction can be tested without a pdftotext binary.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands with os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// PDFReader extracts page text from PDF documents by shelling out to the
// pdftotext utility (poppler-utils). pdftotext separates pages with form
// feeds on stdout, which maps directly onto the page model.
type PDFReader struct {
	runner CommandRunner
}

// NewPDFReader creates a PDF page reader using the system pdftotext binary.
func NewPDFReader() *PDFReader {
	return &PDFReader{runner: execRunner{}}
}

// NewPDFReaderWithRunner creates a PDF reader with a custom command runner.
func NewPDFReaderWithRunner(runner CommandRunner) *PDFReader {
	return &PDFReader{runner: runner}
}

// ReadPages implements PageReader.
func (p *PDFReader) ReadPages(ctx context.Context, path string) ([]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat pdf: %w", err)
	}

	// "-" writes extracted text to stdout.
	out, err := p.runner.Run(ctx, "pdftotext", "-layout", "-enc", "UTF-8", path, "-")
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}

	return splitPages(string(out)), nil
}
