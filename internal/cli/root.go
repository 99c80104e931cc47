package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ragserve/config"
	"ragserve/internal/logging"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "ragserve",
	Short: "RAG document service - ingest documents and answer questions over them",
	Long: `ragserve indexes PDF, Excel and Word documents into a vector index and
answers questions over them: each query is expanded into several
optimized retrieval queries, searched concurrently, rank-merged, and
answered by a chat model grounded in the retrieved context.

Example usage:
  ragserve serve                          # Run the HTTP/WebSocket server
  ragserve ingest --file report.pdf       # Index one document
  ragserve ingest --dir ./docs            # Index a directory tree
  ragserve query -q "refund policy"       # One-shot retrieval from the terminal`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			wd, werr := os.Getwd()
			if werr != nil {
				return fmt.Errorf("failed to get working directory: %w", werr)
			}
			cfg, err = config.LoadFromDir(wd)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger, err = logging.New(cfg.Logging.Level)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Sync()
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./ragserve.yaml)")
}
