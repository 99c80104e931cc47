package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"go.uber.org/zap"

	"ragserve/internal/domain"
	"ragserve/internal/port"
)

// PipelineOptions carries the read-only configuration shared by all
// invocations of one Pipeline.
type PipelineOptions struct {
	IndexName      string
	MaxConcurrency int  // cap on concurrent sub-query searches
	DedupByLabel   bool // collapse chunks sharing a label before truncation
}

// Pipeline orchestrates the chat path: query expansion, retrieval
// fan-out, rank-merge, context assembly and answer streaming. A
// Pipeline is safe for concurrent use; invocations share nothing but
// this read-only configuration.
type Pipeline struct {
	llm      port.LLM
	embedder port.Embedder
	index    port.VectorIndex
	opts     PipelineOptions
	logger   *zap.Logger
}

// NewPipeline creates a chat pipeline.
func NewPipeline(llm port.LLM, embedder port.Embedder, index port.VectorIndex, opts PipelineOptions, logger *zap.Logger) *Pipeline {
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		llm:      llm,
		embedder: embedder,
		index:    index,
		opts:     opts,
		logger:   logger,
	}
}

type expansionResult struct {
	OriginalQuery    string   `json:"original_query"`
	OptimizedQueries []string `json:"optimized_queries"`
}

// ExpandQuery turns one user query into 3-5 optimized retrieval
// queries. Expansion fails open: any model or parse failure is logged
// and yields an empty slice, which downstream stages treat as "no
// retrieval performed".
func (p *Pipeline) ExpandQuery(ctx context.Context, query string) []string {
	raw, err := p.llm.Complete(ctx, expandSystemPrompt, query)
	if err != nil {
		p.logger.Warn("query expansion failed", zap.Error(err))
		return nil
	}

	var result expansionResult
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &result); err != nil {
		p.logger.Warn("query expansion returned unparseable output",
			zap.Error(err), zap.String("output", truncateForLog(raw)))
		return nil
	}

	queries := make([]string, 0, len(result.OptimizedQueries))
	for _, q := range result.OptimizedQueries {
		if q = strings.TrimSpace(q); q != "" {
			queries = append(queries, q)
		}
	}
	return queries
}

// Retrieve fans out one similarity search per optimized query and
// returns the unordered union of all result sets. Fan-out concurrency
// is capped; a failed embed or search contributes an empty set instead
// of aborting the other queries.
func (p *Pipeline) Retrieve(ctx context.Context, queries []string, topK int) []domain.RetrievedChunk {
	if len(queries) == 0 {
		return nil
	}

	var (
		mu  sync.Mutex
		all []domain.RetrievedChunk
		wg  sync.WaitGroup
		sem = make(chan struct{}, p.opts.MaxConcurrency)
	)

	for _, q := range queries {
		wg.Add(1)
		go func(q string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			emb, err := p.embedder.Embed(ctx, q)
			if err != nil {
				p.logger.Warn("failed to embed optimized query",
					zap.String("query", q), zap.Error(err))
				return
			}

			chunks, err := p.index.Search(ctx, p.opts.IndexName, emb, topK)
			if err != nil {
				p.logger.Warn("similarity search failed",
					zap.String("query", q), zap.Error(err))
				return
			}

			mu.Lock()
			all = append(all, chunks...)
			mu.Unlock()
		}(q)
	}
	wg.Wait()

	return all
}

// RankedContext runs expansion, retrieval and rank-merge, returning at
// most topK chunks sorted by score descending.
func (p *Pipeline) RankedContext(ctx context.Context, query string, topK int) []domain.RetrievedChunk {
	queries := p.ExpandQuery(ctx, query)
	chunks := p.Retrieve(ctx, queries, topK)

	ranked := Rank(chunks, -1)
	if p.opts.DedupByLabel {
		ranked = DedupByLabel(ranked)
	}
	if topK >= 0 && len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked
}

// Answer runs the full chat path and streams the grounded answer into
// sink, one fragment at a time in emission order. A sink error or a
// cancelled context abandons the model stream. The sink receives no
// explicit end marker; stream closure is completion.
func (p *Pipeline) Answer(ctx context.Context, query string, topK int, sink func(delta string) error) error {
	ranked := p.RankedContext(ctx, query, topK)
	blob := AssembleContext(query, ranked)

	if err := p.llm.Stream(ctx, answerSystemPrompt, blob, sink); err != nil {
		return &domain.ServiceError{Service: "llm", Err: err}
	}
	return nil
}

// stripCodeFence unwraps a JSON payload the model wrapped in a
// markdown code fence.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truncateForLog(s string) string {
	if len(s) > 200 {
		return s[:200]
	}
	return s
}
