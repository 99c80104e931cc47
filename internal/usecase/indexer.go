package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"ragserve/internal/adapter/extractor"
	"ragserve/internal/domain"
	"ragserve/internal/port"
)

// unitSeparator joins a document's content units into the single
// combined index record.
const unitSeparator = "\n\n"

// Indexer is the ingestion pipeline: validate, extract, embed, submit.
// It is linear with no retries; failures after validation surface as
// IngestionError.
type Indexer struct {
	embedder   port.Embedder
	index      port.VectorIndex
	indexName  string
	perUnit    bool
	extractors map[string]port.Extractor
	logger     *zap.Logger
}

// NewIndexer creates an ingestion pipeline targeting the named index.
// perUnit submits one record per content unit instead of the default
// single combined record per document.
func NewIndexer(embedder port.Embedder, index port.VectorIndex, indexName string, perUnit bool, logger *zap.Logger) *Indexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Indexer{
		embedder:  embedder,
		index:     index,
		indexName: indexName,
		perUnit:   perUnit,
		logger:    logger,
	}
}

// IngestFile extracts the document at path according to docType and
// submits its content to the vector index under the file's base name.
func (ix *Indexer) IngestFile(ctx context.Context, path, docType string) error {
	if path == "" || docType == "" {
		return &domain.ValidationError{Reason: "indexing a document requires both path and doc type"}
	}

	ext, err := ix.extractorFor(docType)
	if err != nil {
		return err
	}

	ix.logger.Info("extracting document",
		zap.String("path", path), zap.String("doc_type", docType))

	units, err := ext.Extract(path)
	if err != nil {
		return &domain.IngestionError{Stage: "extract", Err: err}
	}
	if len(units) == 0 {
		return &domain.IngestionError{Stage: "extract", Err: fmt.Errorf("document produced no text: %s", path)}
	}

	return ix.submit(ctx, filepath.Base(path), units)
}

// IngestText submits raw text as a single content unit under the
// inline label.
func (ix *Indexer) IngestText(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return &domain.ValidationError{Reason: "indexing raw text requires a non-empty text"}
	}
	return ix.submit(ctx, domain.InlineLabel, []string{text})
}

// submit hands the content units to the vector index. The default
// contract stores the whole collection as one record under a single
// label; per-unit mode gives each unit its own addressable record.
func (ix *Indexer) submit(ctx context.Context, label string, units []string) error {
	ix.logger.Info("indexing document",
		zap.String("label", label), zap.Int("units", len(units)))

	embed := port.EmbedFunc(ix.embedder.Embed)

	if ix.perUnit {
		for i, unit := range units {
			unitLabel := fmt.Sprintf("%s#%03d", label, i)
			if err := ix.index.Ingest(ctx, ix.indexName, embed, unitLabel, unit); err != nil {
				return &domain.IngestionError{Stage: "submit", Err: err}
			}
		}
		return nil
	}

	combined := strings.Join(units, unitSeparator)
	if err := ix.index.Ingest(ctx, ix.indexName, embed, label, combined); err != nil {
		return &domain.IngestionError{Stage: "submit", Err: err}
	}
	return nil
}

func (ix *Indexer) extractorFor(docType string) (port.Extractor, error) {
	if ix.extractors != nil {
		if ext, ok := ix.extractors[docType]; ok {
			return ext, nil
		}
		return nil, &domain.ValidationError{Reason: "unsupported document type: " + docType}
	}
	return extractor.ForType(docType)
}
