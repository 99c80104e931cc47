package usecase

import (
	"fmt"
	"strings"

	"ragserve/internal/domain"
)

const chunkSeparator = "\n---\n"

// AssembleContext renders the original query and the ranked chunks
// into the single text payload handed to the answering model. Each
// chunk is a block of its label, score and raw text. No length cap is
// enforced here; an oversized context surfaces as a model-call failure.
func AssembleContext(query string, ranked []domain.RetrievedChunk) string {
	blocks := make([]string, 0, len(ranked))
	for _, c := range ranked {
		blocks = append(blocks, fmt.Sprintf("Chunk: %s (score: %g)\n%s", c.Label, c.Score, c.Text))
	}

	return fmt.Sprintf("original_query: %s\nretrieved_context: %s",
		query, strings.Join(blocks, chunkSeparator))
}
