package domain

import "time"

// Supported document types for ingestion.
const (
	DocTypePDF   = "pdf"
	DocTypeExcel = "excel"
	DocTypeWord  = "word"
)

// InlineLabel is the chunk label used when raw text is ingested without
// a backing file.
const InlineLabel = "inline"

// RetrievedChunk is one indexed content unit returned by a similarity
// search. Higher score means more relevant; the index guarantees no
// fixed score range.
type RetrievedChunk struct {
	Label string  `json:"name_chunk"`
	Text  string  `json:"raw_text"`
	Score float64 `json:"score"`
}

// DocumentRecord is the persisted metadata of one ingested document.
type DocumentRecord struct {
	ID        int64     `json:"id"`
	Path      string    `json:"path"`
	DocType   string    `json:"doc_type"`
	CreatedAt time.Time `json:"created_at"`
}

// SupportedDocType reports whether t names a known extractor kind.
func SupportedDocType(t string) bool {
	switch t {
	case DocTypePDF, DocTypeExcel, DocTypeWord:
		return true
	}
	return false
}
