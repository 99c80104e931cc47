package usecase

import (
	"sort"

	"ragserve/internal/domain"
)

// Rank merges retrieved chunks into a ranked context: a stable sort by
// score descending (ties keep arrival order) truncated to topK.
// topK < 0 disables truncation.
func Rank(chunks []domain.RetrievedChunk, topK int) []domain.RetrievedChunk {
	out := make([]domain.RetrievedChunk, len(chunks))
	copy(out, chunks)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	if topK >= 0 && len(out) > topK {
		out = out[:topK]
	}
	return out
}

// DedupByLabel keeps the first occurrence of each label, preserving
// order. Applied after sorting, the kept occurrence is the
// highest-scoring one.
func DedupByLabel(chunks []domain.RetrievedChunk) []domain.RetrievedChunk {
	seen := make(map[string]struct{}, len(chunks))
	out := make([]domain.RetrievedChunk, 0, len(chunks))
	for _, c := range chunks {
		if _, ok := seen[c.Label]; ok {
			continue
		}
		seen[c.Label] = struct{}{}
		out = append(out, c)
	}
	return out
}
