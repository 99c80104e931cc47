package port

import (
	"context"

	"ragserve/internal/domain"
)

// DocStore records metadata for successfully ingested documents.
type DocStore interface {
	// Save records one ingested document.
	Save(ctx context.Context, path, docType string) error

	// List returns all recorded documents, most recent first.
	List(ctx context.Context) ([]domain.DocumentRecord, error)

	Close() error
}
