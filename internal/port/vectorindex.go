package port

import (
	"context"

	"ragserve/internal/domain"
)

// VectorIndex is the search and ingestion surface of a vector store.
// Records live under a named index; the caller owns the index name.
type VectorIndex interface {
	// Search returns the top-k chunks most similar to the embedding.
	Search(ctx context.Context, index string, embedding []float32, topK int) ([]domain.RetrievedChunk, error)

	// Ingest stores rawText under the given label, computing its
	// embedding with embed.
	Ingest(ctx context.Context, index string, embed EmbedFunc, label, rawText string) error
}
