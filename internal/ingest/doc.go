// Package ingest runs the ingestion pipeline: it scans the library root,
// fingerprints each document, and extracts, chunks, embeds, and stores the
// ones that are new or changed. Each document succeeds or fails on its own;
// one bad file never aborts the run.
package ingest
