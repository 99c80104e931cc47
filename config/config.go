package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the RAG service.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	LLM       LLMConfig       `yaml:"llm"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Index     IndexConfig     `yaml:"index"`
	Retrieve  RetrieveConfig  `yaml:"retrieve"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds HTTP/WebSocket server configuration.
type ServerConfig struct {
	Addr    string `yaml:"addr"`
	DataDir string `yaml:"data_dir"` // where uploaded documents are stored
}

// LLMConfig holds chat-model configuration.
type LLMConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"` // environment variable holding the API key
	Model     string `yaml:"model"`
}

// EmbeddingConfig holds embedding-model configuration.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"` // "openai" or "mock"
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"` // e.g. "text-embedding-3-small"
	Dimension int    `yaml:"dimension"`
}

// IndexConfig selects and configures the vector index backing retrieval.
type IndexConfig struct {
	Provider  string `yaml:"provider"` // "http" or "bolt"
	Host      string `yaml:"host"`     // http provider: base URL of the index service
	APIKeyEnv string `yaml:"api_key_env"`
	Name      string `yaml:"name"` // index name records are keyed under
	Path      string `yaml:"path"` // bolt provider: database file
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	TopK           int  `yaml:"top_k"`
	MaxConcurrency int  `yaml:"max_concurrency"` // cap on concurrent sub-query searches
	DedupByLabel   bool `yaml:"dedup_by_label"`  // collapse chunks sharing a label before truncation
}

// IngestConfig holds ingestion configuration.
type IngestConfig struct {
	// PerUnit submits one index record per extracted content unit
	// instead of a single combined record per document.
	PerUnit bool `yaml:"per_unit"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:    ":5600",
			DataDir: "data",
		},
		LLM: LLMConfig{
			BaseURL:   "https://api.openai.com/v1",
			APIKeyEnv: "OPENAI_API_KEY",
			Model:     "gpt-4.1",
		},
		Embedding: EmbeddingConfig{
			Provider:  "openai",
			BaseURL:   "https://api.openai.com/v1",
			APIKeyEnv: "OPENAI_API_KEY",
			Model:     "text-embedding-3-small",
			Dimension: 1536,
		},
		Index: IndexConfig{
			Provider:  "http",
			Host:      "http://localhost:5500",
			APIKeyEnv: "RAG_INDEX_API_KEY",
			Name:      "docs",
			Path:      filepath.Join("data", "index.db"),
		},
		Retrieve: RetrieveConfig{
			TopK:           5,
			MaxConcurrency: 4,
			DedupByLabel:   false,
		},
		Ingest: IngestConfig{
			PerUnit: false,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults
// when the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads ragserve.yaml from the given directory.
func LoadFromDir(dir string) (*Config, error) {
	return Load(filepath.Join(dir, "ragserve.yaml"))
}
