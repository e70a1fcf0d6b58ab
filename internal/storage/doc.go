// Package storage persists the ingestion ledger and the vector index in a
// single SQLite database.
//
// Three tables carry the state: documents (one ledger row per source file,
// keyed by relative path, tracking fingerprint and ingestion status), chunks
// (the embeddable text windows with page and ordinal provenance), and
// embeddings (one vector blob per chunk). Both survive process restarts; the
// database is the system of record for everything the ingestion pipeline
// produces.
//
// Two build modes select the SQLite driver:
//
//	CGO_ENABLED=0 go build -tags "purego" ./...   // modernc.org/sqlite, Go-side cosine scan
//	CGO_ENABLED=1 go build -tags "sqlite_vec" ./... // mattn/go-sqlite3 + sqlite-vec in SQL
//
// Scope filters (term, topic, title set) are pushed into the SQL WHERE clause
// in both modes, so a filtered search never ranks chunks outside the scope.
package storage
