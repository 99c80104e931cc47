package cli

import (
	"context"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"ragserve/internal/adapter/fs"
)

var (
	ingestFile     string
	ingestType     string
	ingestText     string
	ingestDir      string
	ingestIncludes []string
	ingestExcludes []string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index documents into the vector index",
	Long: `Index documents so they become retrievable. Accepts a single file, raw
text, or a directory tree of supported documents (.pdf, .xlsx, .xls,
.docx).

Examples:
  ragserve ingest --file report.pdf
  ragserve ingest --file sheet.xlsx --type excel
  ragserve ingest --text "The refund window is 30 days."
  ragserve ingest --dir ./docs --exclude "**/drafts/**"`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringVar(&ingestFile, "file", "", "document to index")
	ingestCmd.Flags().StringVar(&ingestType, "type", "", "document type: pdf, excel or word (default inferred from extension)")
	ingestCmd.Flags().StringVar(&ingestText, "text", "", "raw text to index instead of a file")
	ingestCmd.Flags().StringVar(&ingestDir, "dir", "", "directory tree to index")
	ingestCmd.Flags().StringSliceVar(&ingestIncludes, "include", nil, "glob patterns to include (default all supported documents)")
	ingestCmd.Flags().StringSliceVar(&ingestExcludes, "exclude", nil, "glob patterns to exclude")
}

func runIngest(cmd *cobra.Command, args []string) error {
	selected := 0
	for _, flag := range []string{ingestFile, ingestText, ingestDir} {
		if flag != "" {
			selected++
		}
	}
	if selected != 1 {
		return fmt.Errorf("exactly one of --file, --text or --dir is required")
	}

	indexer, closeIndex, err := buildIndexer(cfg)
	if err != nil {
		return err
	}
	defer closeIndex()

	ctx := context.Background()

	if ingestText != "" {
		if err := indexer.IngestText(ctx, ingestText); err != nil {
			return fmt.Errorf("ingestion failed: %w", err)
		}
		fmt.Println("Text indexed.")
		return nil
	}

	if ingestFile != "" {
		docType := ingestType
		if docType == "" {
			if docType = fs.DocTypeForPath(ingestFile); docType == "" {
				return fmt.Errorf("cannot infer document type for %s; pass --type", ingestFile)
			}
		}
		if err := indexer.IngestFile(ctx, ingestFile, docType); err != nil {
			return fmt.Errorf("ingestion failed: %w", err)
		}
		fmt.Printf("Indexed %s as %s.\n", ingestFile, docType)
		return nil
	}

	walker := fs.NewWalker(ingestIncludes, ingestExcludes)
	files, err := walker.Walk(ingestDir)
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", ingestDir, err)
	}
	if len(files) == 0 {
		fmt.Println("No documents found.")
		return nil
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Indexing[reset]"),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)

	indexed := 0
	var failures []string
	for _, path := range files {
		docType := fs.DocTypeForPath(path)
		if docType == "" {
			bar.Add(1)
			continue
		}
		if err := indexer.IngestFile(ctx, path, docType); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", path, err))
		} else {
			indexed++
		}
		bar.Add(1)
	}

	fmt.Printf("\nIndexed %d of %d documents.\n", indexed, len(files))
	if len(failures) > 0 {
		fmt.Println("\nFailures:")
		for _, f := range failures {
			fmt.Printf("  - %s\n", f)
		}
	}
	return nil
}
