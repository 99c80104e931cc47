package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"ragserve/config"
	"ragserve/internal/adapter/docstore"
	"ragserve/internal/adapter/embedding"
	"ragserve/internal/adapter/llm"
	"ragserve/internal/adapter/vectorindex"
	"ragserve/internal/port"
	"ragserve/internal/usecase"
)

// buildEmbedder constructs the embedder selected by config.
func buildEmbedder(cfg *config.Config) (port.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "openai":
		return embedding.NewOpenAIEmbedder(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model, cfg.Embedding.BaseURL)
	case "mock":
		return embedding.NewMockEmbedder(cfg.Embedding.Dimension), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}
}

// buildIndex constructs the vector index selected by config. The
// returned closer releases the backing store; for the http provider
// it is a no-op.
func buildIndex(cfg *config.Config) (port.VectorIndex, func() error, error) {
	switch cfg.Index.Provider {
	case "http":
		return vectorindex.NewHTTPIndex(cfg.Index.Host, cfg.Index.APIKeyEnv), func() error { return nil }, nil
	case "bolt":
		if err := os.MkdirAll(filepath.Dir(cfg.Index.Path), 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create index directory: %w", err)
		}
		idx, err := vectorindex.NewBoltIndex(cfg.Index.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open index: %w", err)
		}
		return idx, idx.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported index provider: %s", cfg.Index.Provider)
	}
}

func buildLLM(cfg *config.Config) (port.LLM, error) {
	return llm.NewOpenAIClient(cfg.LLM.APIKeyEnv, cfg.LLM.Model, cfg.LLM.BaseURL)
}

// buildPipeline wires the chat pipeline from config.
func buildPipeline(cfg *config.Config) (*usecase.Pipeline, func() error, error) {
	chat, err := buildLLM(cfg)
	if err != nil {
		return nil, nil, err
	}

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return nil, nil, err
	}

	index, closeIndex, err := buildIndex(cfg)
	if err != nil {
		return nil, nil, err
	}

	pipeline := usecase.NewPipeline(chat, embedder, index, usecase.PipelineOptions{
		IndexName:      cfg.Index.Name,
		MaxConcurrency: cfg.Retrieve.MaxConcurrency,
		DedupByLabel:   cfg.Retrieve.DedupByLabel,
	}, logger)

	return pipeline, closeIndex, nil
}

// buildIndexer wires the ingestion pipeline from config.
func buildIndexer(cfg *config.Config) (*usecase.Indexer, func() error, error) {
	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return nil, nil, err
	}

	index, closeIndex, err := buildIndex(cfg)
	if err != nil {
		return nil, nil, err
	}

	indexer := usecase.NewIndexer(embedder, index, cfg.Index.Name, cfg.Ingest.PerUnit, logger)
	return indexer, closeIndex, nil
}

// openDocStore opens the document metadata store under the data dir.
func openDocStore(cfg *config.Config) (*docstore.SQLiteStore, error) {
	if err := os.MkdirAll(cfg.Server.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return docstore.Open(filepath.Join(cfg.Server.DataDir, "docs.db"))
}
