package types

import "errors"

// RetrievedChunk is a single retrieval result: a stored chunk with its
// similarity score and 1-based rank within the response.
type RetrievedChunk struct {
	Chunk Chunk
	Score float64
	Rank  int
}

// Validate checks if the retrieved chunk is well formed.
func (r *RetrievedChunk) Validate() error {
	if r.Rank < 1 {
		return errors.New("rank must be >= 1")
	}
	if r.Chunk.Text == "" {
		return errors.New("retrieved chunk has no text")
	}
	return nil
}
