package chunker

import (
	"sort"
	"strings"

	"github.com/dshills/studyrag-mcp/pkg/types"
)

// DefaultWindowSize is the default chunk window length in runes.
const DefaultWindowSize = 1000

// DefaultOverlap is the default overlap between consecutive windows in runes.
const DefaultOverlap = 200

// Chunker splits per-page document text into overlapping windows.
type Chunker struct {
	window  int
	overlap int
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithWindowSize sets the window length in runes.
func WithWindowSize(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.window = n
		}
	}
}

// WithOverlap sets the overlap between consecutive windows in runes.
func WithOverlap(n int) Option {
	return func(c *Chunker) {
		if n >= 0 {
			c.overlap = n
		}
	}
}

// New creates a Chunker. An overlap >= window is clamped to window/4 so the
// cursor always advances.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		window:  DefaultWindowSize,
		overlap: DefaultOverlap,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.overlap >= c.window {
		c.overlap = c.window / 4
	}
	return c
}

// ChunkPages splits the document's page texts into chunks carrying the
// entry's provenance metadata. Embeddings are left unset; the pipeline fills
// them in. Pages are joined with a newline before windowing so chunks may
// span page boundaries, and each chunk's PageIndex is the page containing
// its first rune.
func (c *Chunker) ChunkPages(entry types.DocumentEntry, pages []string) []types.Chunk {
	text, pageStarts := joinPages(pages)
	if len(text) == 0 {
		return nil
	}

	step := c.window - c.overlap
	chunks := make([]types.Chunk, 0, len(text)/step+1)
	ordinal := 0

	for start := 0; start < len(text); start += step {
		end := start + c.window
		if end > len(text) {
			end = len(text)
		}

		window := string(text[start:end])
		if strings.TrimSpace(window) == "" {
			continue
		}

		chunks = append(chunks, types.Chunk{
			Term:         entry.Term,
			Topic:        entry.Topic,
			Title:        entry.Title,
			RelativePath: entry.RelativePath,
			Text:         window,
			PageIndex:    pageAt(pageStarts, start),
			Ordinal:      ordinal,
		})
		ordinal++

		if end == len(text) {
			break
		}
	}

	return chunks
}

// joinPages concatenates page texts with a newline separator and records the
// starting rune offset of each page.
func joinPages(pages []string) ([]rune, []int) {
	var text []rune
	pageStarts := make([]int, len(pages))
	for i, page := range pages {
		if i > 0 {
			text = append(text, '\n')
		}
		pageStarts[i] = len(text)
		text = append(text, []rune(page)...)
	}
	return text, pageStarts
}

// pageAt returns the index of the page containing the given rune offset.
func pageAt(pageStarts []int, offset int) int {
	if len(pageStarts) == 0 {
		return 0
	}
	// First page whose start is past the offset; the one before it holds it.
	i := sort.SearchInts(pageStarts, offset+1)
	return i - 1
}
