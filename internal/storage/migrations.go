package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

const (
	// CurrentSchemaVersion tracks the database schema version.
	CurrentSchemaVersion = "1.0.0"
)

// Migration represents a database schema migration.
type Migration struct {
	Version string
	Up      string
	Down    string
}

// AllMigrations contains all database migrations in order.
var AllMigrations = []Migration{
	{
		Version: "1.0.0",
		Up:      migrationV1Up,
		Down:    migrationV1Down,
	},
}

const migrationV1Up = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
    version TEXT PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Ingestion ledger: one row per source document, keyed by relative path
CREATE TABLE IF NOT EXISTS documents (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    relative_path TEXT NOT NULL UNIQUE,
    term TEXT NOT NULL,
    topic TEXT NOT NULL,
    title TEXT NOT NULL,
    display_name TEXT,
    fingerprint BLOB NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending',
    chunk_count INTEGER DEFAULT 0,
    last_error TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_documents_term ON documents(term);
CREATE INDEX IF NOT EXISTS idx_documents_term_topic ON documents(term, topic);
CREATE INDEX IF NOT EXISTS idx_documents_title ON documents(title);
CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);

-- Chunks: embeddable text windows with page/ordinal provenance
CREATE TABLE IF NOT EXISTS chunks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    document_id INTEGER NOT NULL,
    content TEXT NOT NULL,
    page_index INTEGER NOT NULL,
    ordinal INTEGER NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE,
    UNIQUE(document_id, ordinal)
);

CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(document_id);

-- Embeddings: one vector blob per chunk
CREATE TABLE IF NOT EXISTS embeddings (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    chunk_id INTEGER NOT NULL UNIQUE,
    vector BLOB NOT NULL,
    dimension INTEGER NOT NULL,
    provider TEXT,
    model TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (chunk_id) REFERENCES chunks(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_embeddings_chunk ON embeddings(chunk_id);

INSERT OR IGNORE INTO schema_version (version) VALUES ('1.0.0');
`

const migrationV1Down = `
DROP TABLE IF EXISTS embeddings;
DROP TABLE IF EXISTS chunks;
DROP TABLE IF EXISTS documents;
DROP TABLE IF EXISTS schema_version;
`

// ApplyMigrations brings the database schema up to CurrentSchemaVersion.
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	applied, err := appliedVersion(ctx, db)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for _, m := range AllMigrations {
		if applied != nil {
			mv, err := semver.NewVersion(m.Version)
			if err != nil {
				return fmt.Errorf("invalid migration version %q: %w", m.Version, err)
			}
			if !mv.GreaterThan(applied) {
				continue
			}
		}
		if _, err := db.ExecContext(ctx, m.Up); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.Version, err)
		}
	}

	return nil
}

// appliedVersion returns the highest applied schema version, or nil when the
// database is fresh.
func appliedVersion(ctx context.Context, db *sql.DB) (*semver.Version, error) {
	var exists int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'`,
	).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, nil
	}

	rows, err := db.QueryContext(ctx, `SELECT version FROM schema_version`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var highest *semver.Version
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		v, err := semver.NewVersion(raw)
		if err != nil {
			continue // Unknown rows don't block migration
		}
		if highest == nil || v.GreaterThan(highest) {
			highest = v
		}
	}
	return highest, rows.Err()
}
