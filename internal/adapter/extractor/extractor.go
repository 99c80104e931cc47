package extractor

import (
	"strings"

	"ragserve/internal/domain"
	"ragserve/internal/port"
)

// ForType returns the extractor for a document type. Unsupported types
// fail with a ValidationError so callers reject the request before any
// file work happens.
func ForType(docType string) (port.Extractor, error) {
	switch docType {
	case domain.DocTypePDF:
		return &PDFExtractor{}, nil
	case domain.DocTypeExcel:
		return &ExcelExtractor{}, nil
	case domain.DocTypeWord:
		return &DocxExtractor{}, nil
	}
	return nil, &domain.ValidationError{Reason: "unsupported document type: " + docType}
}

// dropEmpty removes units containing no text after trimming.
func dropEmpty(units []string) []string {
	out := make([]string, 0, len(units))
	for _, u := range units {
		if trimmed := strings.TrimSpace(u); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
