package ports

import (
	"context"

	"mediasweep/internal/domain"
)

// DocumentStore provides access to the content documents whose widget trees
// embed media references
type DocumentStore interface {
	// ListDocumentIDs returns every document id in ascending order
	ListDocumentIDs(ctx context.Context) ([]int64, error)

	// LoadDocument returns the document with its decoded tree.
	// Returns an error wrapping application.ErrNotFound when it does not exist.
	LoadDocument(ctx context.Context, id int64) (*domain.Document, error)

	// SaveDocument creates or replaces a document
	SaveDocument(ctx context.Context, doc *domain.Document) error
}
