package types

import "fmt"

// HierarchyError indicates the library root is missing or unreadable.
// It is fatal to the scan that produced it; nothing else in the batch runs.
type HierarchyError struct {
	Root string
	Err  error
}

func (e *HierarchyError) Error() string {
	return fmt.Sprintf("library root %q: %v", e.Root, e.Err)
}

func (e *HierarchyError) Unwrap() error { return e.Err }

// ExtractionError indicates a single source document could not be read or
// its page text could not be extracted. Per-document, non-fatal to a batch.
type ExtractionError struct {
	RelativePath string
	Err          error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %q: %v", e.RelativePath, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// EmbeddingError indicates the embedding gateway failed after its bounded
// retries were exhausted. Per-document during ingestion; surfaced directly
// to the caller when the failing text is a query.
type EmbeddingError struct {
	Provider string
	Err      error
}

func (e *EmbeddingError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("embedding (%s): %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("embedding: %v", e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// IndexWriteError indicates the vector index rejected a write. Per-document,
// non-fatal; the pipeline cleans up any partial writes for the document.
type IndexWriteError struct {
	RelativePath string
	Err          error
}

func (e *IndexWriteError) Error() string {
	return fmt.Sprintf("index write %q: %v", e.RelativePath, e.Err)
}

func (e *IndexWriteError) Unwrap() error { return e.Err }

// IndexQueryError indicates a retrieval-time index failure. It is surfaced
// synchronously to the caller with no partial results, so an empty result
// from an unmatched filter is always distinguishable from a failed query.
type IndexQueryError struct {
	Err error
}

func (e *IndexQueryError) Error() string {
	return fmt.Sprintf("index query: %v", e.Err)
}

func (e *IndexQueryError) Unwrap() error { return e.Err }
