package port

import "context"

// Embedder maps text to a fixed-length vector for similarity search.
type Embedder interface {
	// Embed generates the embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}

// EmbedFunc adapts a bare embedding function to the shape the vector
// index ingestion call expects.
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)
