// Package types defines the shared domain types for the StudyRAG system.
//
// The library is organized as a three-level hierarchy: term (e.g. an academic
// period), topic (a subject within a term), and title (one source work). A
// scanned source file becomes a DocumentEntry, ingestion turns it into Chunks
// stored in the vector index, and retrieval is narrowed by a caller-held
// ScopeState.
//
// The package also defines the error taxonomy shared by the ingestion and
// retrieval paths. All error types support errors.Is/errors.As unwrapping.
package types
