// Package chunker splits extracted page text into overlapping fixed-size
// windows for embedding.
//
// Chunking is deterministic: the same page text with the same window and
// overlap parameters always produces byte-identical chunk boundaries and the
// same ordinal sequence. This is what makes re-ingestion idempotent - an
// unchanged document re-chunks to exactly the same rows.
//
// Each chunk is attributed to the page where its first character originates,
// so retrieval results can cite a page number. Whitespace-only windows are
// dropped and never consume an ordinal.
package chunker
