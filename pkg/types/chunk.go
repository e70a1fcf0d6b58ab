package types

import "errors"

// Chunk is one embeddable unit of document text. Chunks are owned by the
// vector index once inserted and are immutable except via a full
// delete-and-reinsert of their document.
type Chunk struct {
	ID int64

	// Provenance
	Term         string
	Topic        string
	Title        string
	RelativePath string

	// Content
	Text      string
	PageIndex int // Page where the chunk's first character originates (0-based)
	Ordinal   int // Position within the document, deterministic across runs
}

// Validate checks the chunk invariants enforced at insertion time.
func (c *Chunk) Validate() error {
	if c.Text == "" {
		return errors.New("chunk text cannot be empty")
	}
	if c.PageIndex < 0 {
		return errors.New("page index must be non-negative")
	}
	if c.Ordinal < 0 {
		return errors.New("ordinal must be non-negative")
	}
	if c.RelativePath == "" {
		return errors.New("chunk missing relative path")
	}
	return nil
}
