package vectorindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"ragserve/internal/domain"
	"ragserve/internal/port"
)

// HTTPIndex is a client for a remote vector-search service. The service
// keys records under named indexes and returns scored chunks for a
// query embedding.
type HTTPIndex struct {
	host   string
	apiKey string
	client *http.Client
}

type searchRequest struct {
	Index     string    `json:"index"`
	Embedding []float32 `json:"embedding"`
	TopK      int       `json:"top_k"`
}

type searchResponse struct {
	Results []domain.RetrievedChunk `json:"results"`
}

type ingestRequest struct {
	Index     string    `json:"index"`
	NameChunk string    `json:"name_chunk"`
	RawText   string    `json:"raw_text"`
	Embedding []float32 `json:"embedding"`
}

type ingestResponse struct {
	State string `json:"state"`
	Error string `json:"error,omitempty"`
}

// NewHTTPIndex builds a client for the index service at host, reading
// its API key from the named environment variable. An empty key is
// allowed for unauthenticated deployments.
func NewHTTPIndex(host, apiKeyEnv string) *HTTPIndex {
	return &HTTPIndex{
		host:   host,
		apiKey: os.Getenv(apiKeyEnv),
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Search returns the top-k chunks most similar to the embedding.
func (x *HTTPIndex) Search(ctx context.Context, index string, embedding []float32, topK int) ([]domain.RetrievedChunk, error) {
	var out searchResponse
	err := x.post(ctx, "/v1/query", searchRequest{
		Index:     index,
		Embedding: embedding,
		TopK:      topK,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Results, nil
}

// Ingest stores rawText under label, computing its embedding first.
func (x *HTTPIndex) Ingest(ctx context.Context, index string, embed port.EmbedFunc, label, rawText string) error {
	vec, err := embed(ctx, rawText)
	if err != nil {
		return fmt.Errorf("failed to embed chunk %s: %w", label, err)
	}

	var out ingestResponse
	err = x.post(ctx, "/v1/ingest", ingestRequest{
		Index:     index,
		NameChunk: label,
		RawText:   rawText,
		Embedding: vec,
	}, &out)
	if err != nil {
		return err
	}
	if out.State != "success" {
		return fmt.Errorf("index service rejected chunk %s: %s", label, out.Error)
	}
	return nil
}

func (x *HTTPIndex) post(ctx context.Context, path string, in, out any) error {
	jsonData, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, x.host+path, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if x.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+x.apiKey)
	}

	resp, err := x.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("index service returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
