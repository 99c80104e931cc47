package docstore

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"ragserve/internal/domain"
)

const createDocsTable = `
CREATE TABLE IF NOT EXISTS docs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	path TEXT NOT NULL UNIQUE,
	doc_type TEXT NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`

// SQLiteStore records ingested-document metadata in a local SQLite
// database.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(createDocsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create docs table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Save records one ingested document.
func (s *SQLiteStore) Save(ctx context.Context, path, docType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO docs (path, doc_type) VALUES (?, ?);", path, docType)
	if err != nil {
		return fmt.Errorf("failed to record document: %w", err)
	}
	return nil
}

// List returns all recorded documents, most recent first.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.DocumentRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, path, doc_type, created_at FROM docs ORDER BY created_at DESC, id DESC;")
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.DocumentRecord
	for rows.Next() {
		var d domain.DocumentRecord
		if err := rows.Scan(&d.ID, &d.Path, &d.DocType, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return docs, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
