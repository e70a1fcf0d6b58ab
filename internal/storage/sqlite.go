package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings.
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode so retrieval reads don't block ingestion writes
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStore creates a new SQLite store instance and applies migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ledger operations

// UpsertDocument creates a ledger row for a document or refreshes its
// metadata, fingerprint, and status on re-observation.
func (s *SQLiteStore) UpsertDocument(ctx context.Context, doc *DocumentRecord) error {
	if doc.Status == "" {
		doc.Status = StatusPending
	}
	now := time.Now().UTC()

	query := `
		INSERT INTO documents (relative_path, term, topic, title, display_name,
		                       fingerprint, status, chunk_count, last_error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(relative_path) DO UPDATE SET
			term = excluded.term,
			topic = excluded.topic,
			title = excluded.title,
			display_name = excluded.display_name,
			fingerprint = excluded.fingerprint,
			status = excluded.status,
			last_error = excluded.last_error,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		doc.RelativePath, doc.Term, doc.Topic, doc.Title, doc.DisplayName,
		doc.Fingerprint[:], string(doc.Status), doc.ChunkCount, nullIfEmpty(doc.LastError), now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}

	// AUTOINCREMENT id is not reported for the conflict path; read it back.
	var id int64
	err = s.db.QueryRowContext(ctx,
		`SELECT id FROM documents WHERE relative_path = ?`, doc.RelativePath).Scan(&id)
	if err != nil {
		return fmt.Errorf("failed to read document id: %w", err)
	}
	doc.ID = id
	doc.UpdatedAt = now
	return nil
}

// GetDocument fetches a ledger row by relative path.
func (s *SQLiteStore) GetDocument(ctx context.Context, relativePath string) (*DocumentRecord, error) {
	query := `
		SELECT id, relative_path, term, topic, title, display_name,
		       fingerprint, status, chunk_count, last_error, created_at, updated_at
		FROM documents
		WHERE relative_path = ?
	`
	return scanDocument(s.db.QueryRowContext(ctx, query, relativePath))
}

// ListDocuments returns all ledger rows in relative-path order.
func (s *SQLiteStore) ListDocuments(ctx context.Context) ([]*DocumentRecord, error) {
	query := `
		SELECT id, relative_path, term, topic, title, display_name,
		       fingerprint, status, chunk_count, last_error, created_at, updated_at
		FROM documents
		ORDER BY relative_path
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var docs []*DocumentRecord
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// MarkDocument atomically updates a document's ledger state.
func (s *SQLiteStore) MarkDocument(ctx context.Context, relativePath string, mark Mark) error {
	query := `
		UPDATE documents
		SET status = ?, fingerprint = ?, chunk_count = ?, last_error = ?, updated_at = ?
		WHERE relative_path = ?
	`
	result, err := s.db.ExecContext(ctx, query,
		string(mark.Status), mark.Fingerprint[:], mark.ChunkCount,
		nullIfEmpty(mark.LastError), time.Now().UTC(), relativePath)
	if err != nil {
		return fmt.Errorf("failed to mark document: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteDocument removes a document's ledger row; its chunks and embeddings
// cascade.
func (s *SQLiteStore) DeleteDocument(ctx context.Context, relativePath string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE relative_path = ?`, relativePath)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Index operations

// ReplaceChunks swaps a document's chunk set in a single transaction: old
// chunks are deleted and new ones inserted atomically, so a concurrent
// reader sees either the old set or the new set, never a mix.
func (s *SQLiteStore) ReplaceChunks(ctx context.Context, relativePath string, chunks []ChunkWithVector) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var docID int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM documents WHERE relative_path = ?`, relativePath).Scan(&docID)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to resolve document: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM chunks WHERE document_id = ?`, docID); err != nil {
		return fmt.Errorf("failed to delete prior chunks: %w", err)
	}

	insertChunk := `INSERT INTO chunks (document_id, content, page_index, ordinal) VALUES (?, ?, ?, ?)`
	insertEmbedding := `INSERT INTO embeddings (chunk_id, vector, dimension, provider, model) VALUES (?, ?, ?, ?, ?)`

	for i := range chunks {
		c := &chunks[i]
		result, err := tx.ExecContext(ctx, insertChunk, docID, c.Text, c.PageIndex, c.Ordinal)
		if err != nil {
			return fmt.Errorf("failed to insert chunk %d: %w", c.Ordinal, err)
		}
		chunkID, err := result.LastInsertId()
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, insertEmbedding,
			chunkID, serializeVector(c.Vector), len(c.Vector), c.Provider, c.Model)
		if err != nil {
			return fmt.Errorf("failed to insert embedding %d: %w", c.Ordinal, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chunk replacement: %w", err)
	}
	return nil
}

// DeleteChunks removes all chunks for a document without touching its
// ledger row. Used to clean up partial writes after a failed ingestion.
func (s *SQLiteStore) DeleteChunks(ctx context.Context, relativePath string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM chunks
		WHERE document_id IN (SELECT id FROM documents WHERE relative_path = ?)
	`, relativePath)
	if err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	return nil
}

// GetChunk fetches a chunk with its document's hierarchy metadata.
func (s *SQLiteStore) GetChunk(ctx context.Context, chunkID int64) (*ChunkRecord, error) {
	query := `
		SELECT c.id, c.document_id, d.relative_path, d.term, d.topic, d.title,
		       c.content, c.page_index, c.ordinal
		FROM chunks c
		INNER JOIN documents d ON c.document_id = d.id
		WHERE c.id = ?
	`
	var chunk ChunkRecord
	err := s.db.QueryRowContext(ctx, query, chunkID).Scan(
		&chunk.ID, &chunk.DocumentID, &chunk.RelativePath, &chunk.Term,
		&chunk.Topic, &chunk.Title, &chunk.Text, &chunk.PageIndex, &chunk.Ordinal,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &chunk, nil
}

// ListChunks returns a document's chunks in ordinal order.
func (s *SQLiteStore) ListChunks(ctx context.Context, relativePath string) ([]*ChunkRecord, error) {
	query := `
		SELECT c.id, c.document_id, d.relative_path, d.term, d.topic, d.title,
		       c.content, c.page_index, c.ordinal
		FROM chunks c
		INNER JOIN documents d ON c.document_id = d.id
		WHERE d.relative_path = ?
		ORDER BY c.ordinal
	`
	rows, err := s.db.QueryContext(ctx, query, relativePath)
	if err != nil {
		return nil, fmt.Errorf("failed to list chunks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var chunks []*ChunkRecord
	for rows.Next() {
		var chunk ChunkRecord
		if err := rows.Scan(
			&chunk.ID, &chunk.DocumentID, &chunk.RelativePath, &chunk.Term,
			&chunk.Topic, &chunk.Title, &chunk.Text, &chunk.PageIndex, &chunk.Ordinal,
		); err != nil {
			return nil, err
		}
		chunks = append(chunks, &chunk)
	}
	return chunks, rows.Err()
}

// SearchVector performs filtered similarity search over stored embeddings.
func (s *SQLiteStore) SearchVector(ctx context.Context, vector []float32, limit int, filters *SearchFilters) ([]VectorResult, error) {
	return searchVector(ctx, s.db, vector, limit, filters)
}

// Catalog operations

// ListTerms returns the distinct terms present in the index.
func (s *SQLiteStore) ListTerms(ctx context.Context) ([]string, error) {
	return s.listDistinct(ctx, `SELECT DISTINCT term FROM documents ORDER BY term`)
}

// ListTopics returns the distinct topics, optionally narrowed to a term.
func (s *SQLiteStore) ListTopics(ctx context.Context, term string) ([]string, error) {
	if term == "" {
		return s.listDistinct(ctx, `SELECT DISTINCT topic FROM documents ORDER BY topic`)
	}
	return s.listDistinct(ctx,
		`SELECT DISTINCT topic FROM documents WHERE term = ? ORDER BY topic`, term)
}

// ListTitles returns the distinct titles, optionally narrowed to a term
// and/or topic.
func (s *SQLiteStore) ListTitles(ctx context.Context, term, topic string) ([]TitleEntry, error) {
	query := `SELECT DISTINCT term, topic, title FROM documents`
	var args []interface{}
	var conds []string
	if term != "" {
		conds = append(conds, "term = ?")
		args = append(args, term)
	}
	if topic != "" {
		conds = append(conds, "topic = ?")
		args = append(args, topic)
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY term, topic, title"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list titles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var titles []TitleEntry
	for rows.Next() {
		var t TitleEntry
		if err := rows.Scan(&t.Term, &t.Topic, &t.Title); err != nil {
			return nil, err
		}
		titles = append(titles, t)
	}
	return titles, rows.Err()
}

// Stats summarizes the ledger and index contents.
func (s *SQLiteStore) Stats(ctx context.Context) (*IndexStats, error) {
	stats := &IndexStats{ByStatus: make(map[Status]int)}

	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM documents GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.ByStatus[Status(status)] = count
		stats.Documents += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&stats.Chunks); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM embeddings`).Scan(&stats.Embeddings); err != nil {
		return nil, err
	}
	return stats, nil
}

// Helpers

func (s *SQLiteStore) listDistinct(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanDocument.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner) (*DocumentRecord, error) {
	var doc DocumentRecord
	var fingerprint []byte
	var lastError sql.NullString
	err := row.Scan(
		&doc.ID, &doc.RelativePath, &doc.Term, &doc.Topic, &doc.Title,
		&doc.DisplayName, &fingerprint, (*string)(&doc.Status), &doc.ChunkCount,
		&lastError, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	copy(doc.Fingerprint[:], fingerprint)
	if lastError.Valid {
		doc.LastError = lastError.String
	}
	return &doc, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
