package vectorindex

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"go.etcd.io/bbolt"

	"ragserve/internal/domain"
	"ragserve/internal/port"
)

// BoltIndex is a single-file vector index for local deployments and
// tests. Records live in one bucket per index name; search is
// brute-force cosine similarity.
type BoltIndex struct {
	db *bbolt.DB
}

type storedRecord struct {
	RawText   string    `json:"raw_text"`
	Embedding []float32 `json:"embedding"`
}

// NewBoltIndex opens (or creates) the index database at path.
func NewBoltIndex(path string) (*BoltIndex, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open index database: %w", err)
	}
	return &BoltIndex{db: db}, nil
}

func (x *BoltIndex) Close() error {
	return x.db.Close()
}

// Ingest stores rawText under label, overwriting any previous record
// with the same label in the same index.
func (x *BoltIndex) Ingest(ctx context.Context, index string, embed port.EmbedFunc, label, rawText string) error {
	vec, err := embed(ctx, rawText)
	if err != nil {
		return fmt.Errorf("failed to embed chunk %s: %w", label, err)
	}

	data, err := json.Marshal(storedRecord{RawText: rawText, Embedding: vec})
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	return x.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(index))
		if err != nil {
			return fmt.Errorf("failed to create index bucket: %w", err)
		}
		return b.Put([]byte(label), data)
	})
}

// Search scores every record in the index against the embedding and
// returns the top-k by cosine similarity.
func (x *BoltIndex) Search(ctx context.Context, index string, embedding []float32, topK int) ([]domain.RetrievedChunk, error) {
	var chunks []domain.RetrievedChunk

	err := x.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(index))
		if b == nil {
			return nil
		}

		return b.ForEach(func(k, v []byte) error {
			if err := ctx.Err(); err != nil {
				return err
			}

			var rec storedRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return nil // skip corrupted entries
			}
			chunks = append(chunks, domain.RetrievedChunk{
				Label: string(k),
				Text:  rec.RawText,
				Score: cosineSimilarity(embedding, rec.Embedding),
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].Score > chunks[j].Score
	})
	if topK >= 0 && len(chunks) > topK {
		chunks = chunks[:topK]
	}

	return chunks, nil
}

// cosineSimilarity calculates the cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
