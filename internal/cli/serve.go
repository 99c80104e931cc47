package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"ragserve/internal/server"
	"ragserve/internal/usecase"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP/WebSocket server",
	Long: `Run the document service: POST /add-rag uploads and indexes a document,
GET /getdocs lists indexed documents, and the /chat WebSocket streams
grounded answers.

Examples:
  ragserve serve
  ragserve serve --addr :8080`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	chat, err := buildLLM(cfg)
	if err != nil {
		return fmt.Errorf("failed to create chat client: %w", err)
	}

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	index, closeIndex, err := buildIndex(cfg)
	if err != nil {
		return err
	}
	defer closeIndex()

	docs, err := openDocStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open document store: %w", err)
	}
	defer docs.Close()

	pipeline := usecase.NewPipeline(chat, embedder, index, usecase.PipelineOptions{
		IndexName:      cfg.Index.Name,
		MaxConcurrency: cfg.Retrieve.MaxConcurrency,
		DedupByLabel:   cfg.Retrieve.DedupByLabel,
	}, logger)

	indexer := usecase.NewIndexer(embedder, index, cfg.Index.Name, cfg.Ingest.PerUnit, logger)

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	srv := server.New(pipeline, indexer, docs, cfg.Server.DataDir, cfg.Retrieve.TopK, logger)
	return srv.ListenAndServe(addr)
}
