package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mediasweep/internal/application"
	"mediasweep/internal/domain"
	"mediasweep/internal/ports"
)

// DocumentStore implements ports.DocumentStore on the documents table
type DocumentStore struct {
	db *DB
}

// Ensure DocumentStore implements ports.DocumentStore
var _ ports.DocumentStore = (*DocumentStore)(nil)

// NewDocumentStore creates a document store backed by db
func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// ListDocumentIDs returns every document id in ascending order
func (s *DocumentStore) ListDocumentIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.db.QueryContext(ctx, `SELECT id FROM documents ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// LoadDocument returns a document with its decoded tree
func (s *DocumentStore) LoadDocument(ctx context.Context, id int64) (*domain.Document, error) {
	var title string
	var data []byte

	err := s.db.db.QueryRowContext(ctx, `SELECT title, tree FROM documents WHERE id = ?`, id).Scan(&title, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &application.NotFoundError{Kind: "document", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document %d: %w", id, err)
	}

	tree, err := domain.DecodeTree(data)
	if err != nil {
		return nil, fmt.Errorf("document %d: %w", id, err)
	}

	return &domain.Document{ID: id, Title: title, Tree: tree}, nil
}

// SaveDocument creates or replaces a document
func (s *DocumentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	data, err := domain.EncodeTree(doc.Tree)
	if err != nil {
		return err
	}

	_, err = s.db.db.ExecContext(ctx, `
		INSERT INTO documents (id, title, tree, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title, tree = excluded.tree, updated_at = excluded.updated_at
	`, doc.ID, doc.Title, data, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save document %d: %w", doc.ID, err)
	}
	return nil
}
