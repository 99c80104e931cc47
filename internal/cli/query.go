package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	queryText string
	queryTopK int
	queryJSON bool
	queryRaw  bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Ask a question from the terminal",
	Long: `Run the chat pipeline once: expand the query, search the index, and
stream the grounded answer to stdout. With --retrieve-only the ranked
chunks are printed instead of an answer.

Examples:
  ragserve query -q "what is the refund policy"
  ragserve query -q "quarterly revenue" --top-k 10 --retrieve-only --json`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "question to ask (required)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of context chunks (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output retrieved chunks as JSON (implies --retrieve-only)")
	queryCmd.Flags().BoolVar(&queryRaw, "retrieve-only", false, "print ranked chunks instead of generating an answer")
	queryCmd.MarkFlagRequired("query")
}

func runQuery(cmd *cobra.Command, args []string) error {
	pipeline, closeIndex, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	defer closeIndex()

	topK := cfg.Retrieve.TopK
	if queryTopK > 0 {
		topK = queryTopK
	}

	ctx := context.Background()

	if queryJSON || queryRaw {
		chunks := pipeline.RankedContext(ctx, queryText, topK)

		if queryJSON {
			output, _ := json.MarshalIndent(chunks, "", "  ")
			fmt.Println(string(output))
			return nil
		}

		if len(chunks) == 0 {
			fmt.Println("No results found.")
			return nil
		}
		fmt.Printf("Found %d chunks for: %s\n\n", len(chunks), queryText)
		for i, c := range chunks {
			fmt.Printf("--- [%d] %s (score: %.4f) ---\n", i+1, c.Label, c.Score)
			text := c.Text
			if len(text) > 500 {
				text = text[:500] + "..."
			}
			fmt.Println(text)
			fmt.Println()
		}
		return nil
	}

	err = pipeline.Answer(ctx, queryText, topK, func(delta string) error {
		_, werr := os.Stdout.WriteString(delta)
		return werr
	})
	if err != nil {
		return fmt.Errorf("failed to generate answer: %w", err)
	}
	fmt.Println()
	return nil
}
