package usecase

import (
	"strings"
	"testing"

	"ragserve/internal/domain"
)

func TestAssembleContext(t *testing.T) {
	ranked := []domain.RetrievedChunk{
		{Label: "paper.pdf", Text: "ChatGPT affects memory.", Score: 0.95},
		{Label: "notes.docx", Text: "Cognitive offloading.", Score: 0.7},
	}

	got := AssembleContext("What are the side effects?", ranked)

	if !strings.HasPrefix(got, "original_query: What are the side effects?\nretrieved_context: ") {
		t.Errorf("unexpected prefix: %q", got)
	}
	if !strings.Contains(got, "Chunk: paper.pdf (score: 0.95)\nChatGPT affects memory.") {
		t.Errorf("first chunk block missing: %q", got)
	}
	if !strings.Contains(got, "\n---\nChunk: notes.docx (score: 0.7)\nCognitive offloading.") {
		t.Errorf("second chunk block missing or separator wrong: %q", got)
	}
}

func TestAssembleContext_PreservesOrder(t *testing.T) {
	ranked := []domain.RetrievedChunk{
		{Label: "first", Score: 0.9},
		{Label: "second", Score: 0.8},
	}

	got := AssembleContext("q", ranked)
	if strings.Index(got, "first") > strings.Index(got, "second") {
		t.Error("expected chunks rendered in ranked order")
	}
}

func TestAssembleContext_NoChunks(t *testing.T) {
	got := AssembleContext("q", nil)
	if got != "original_query: q\nretrieved_context: " {
		t.Errorf("unexpected empty-context payload: %q", got)
	}
}
