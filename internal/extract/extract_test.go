package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error
}

func (m *mockRunner) Run(_ context.Context, _ string, _ ...string) ([]byte, error) {
	return m.output, m.err
}

func TestPlaintextReader_SinglePage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0644))

	pages, err := NewPlaintextReader().ReadPages(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "hello world", pages[0])
}

func TestPlaintextReader_FormFeedPageBreaks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("page one\fpage two\fpage three"), 0644))

	pages, err := NewPlaintextReader().ReadPages(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, pages, 3)
	assert.Equal(t, "page two", pages[1])
}

func TestPlaintextReader_TrailingFormFeed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("page one\fpage two\f"), 0644))

	pages, err := NewPlaintextReader().ReadPages(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, pages, 2)
}

func TestPlaintextReader_MissingFile(t *testing.T) {
	_, err := NewPlaintextReader().ReadPages(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestPDFReader_SplitsPagesOnFormFeed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "book.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0644))

	runner := &mockRunner{output: []byte("first page text\fsecond page text\f")}
	pages, err := NewPDFReaderWithRunner(runner).ReadPages(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "first page text", pages[0])
	assert.Equal(t, "second page text", pages[1])
}

func TestPDFReader_CommandFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "book.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0644))

	runner := &mockRunner{err: errors.New("exit status 1")}
	_, err := NewPDFReaderWithRunner(runner).ReadPages(context.Background(), path)
	assert.Error(t, err)
}

func TestRegistry_DispatchByExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("# heading"), 0644))

	r := NewRegistry()
	pages, err := r.ReadPages(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, pages, 1)
}

func TestRegistry_UnsupportedExtension(t *testing.T) {
	r := NewRegistry()
	_, err := r.ReadPages(context.Background(), "slides.pptx")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
