package extractor

import (
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor produces one content unit per page with extractable
// text; empty pages are dropped.
type PDFExtractor struct{}

func (e *PDFExtractor) Extract(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat PDF: %w", err)
	}

	reader, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Pages with unextractable text contribute nothing.
			continue
		}
		pages = append(pages, text)
	}

	return dropEmpty(pages), nil
}
