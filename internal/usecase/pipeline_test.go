package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ragserve/internal/domain"
	"ragserve/internal/port"
)

type fakeLLM struct {
	completeResp string
	completeErr  error
	streamDeltas []string
	streamErr    error
}

func (f *fakeLLM) Complete(_ context.Context, _, _ string) (string, error) {
	return f.completeResp, f.completeErr
}

func (f *fakeLLM) Stream(ctx context.Context, _, _ string, emit func(string) error) error {
	if f.streamErr != nil {
		return f.streamErr
	}
	for _, d := range f.streamDeltas {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := emit(d); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeLLM) ModelName() string { return "fake" }

type fakeEmbedder struct {
	failFor map[string]bool
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.failFor[text] {
		return nil, errors.New("embedding unavailable")
	}
	return []float32{float32(len(text))}, nil
}

func (f *fakeEmbedder) Dimension() int    { return 1 }
func (f *fakeEmbedder) ModelName() string { return "fake" }

// fakeIndex returns canned chunks keyed by the embedding's first
// component, which fakeEmbedder derives from the query length.
type fakeIndex struct {
	byQueryLen map[int][]domain.RetrievedChunk
	failFor    map[int]bool
	ingested   []ingested
}

type ingested struct {
	index, label, rawText string
}

func (f *fakeIndex) Search(_ context.Context, _ string, embedding []float32, topK int) ([]domain.RetrievedChunk, error) {
	key := int(embedding[0])
	if f.failFor[key] {
		return nil, errors.New("index unreachable")
	}
	chunks := f.byQueryLen[key]
	if len(chunks) > topK {
		chunks = chunks[:topK]
	}
	return chunks, nil
}

func (f *fakeIndex) Ingest(ctx context.Context, index string, embed port.EmbedFunc, label, rawText string) error {
	if _, err := embed(ctx, rawText); err != nil {
		return err
	}
	f.ingested = append(f.ingested, ingested{index, label, rawText})
	return nil
}

func newTestPipeline(llm *fakeLLM, emb *fakeEmbedder, idx *fakeIndex, opts PipelineOptions) *Pipeline {
	if opts.IndexName == "" {
		opts.IndexName = "docs"
	}
	return NewPipeline(llm, emb, idx, opts, nil)
}

func TestExpandQuery(t *testing.T) {
	llm := &fakeLLM{completeResp: `{"original_query":"q","optimized_queries":["one two","tres cuatro","five"]}`}
	p := newTestPipeline(llm, &fakeEmbedder{}, &fakeIndex{}, PipelineOptions{})

	got := p.ExpandQuery(context.Background(), "q")
	if len(got) != 3 {
		t.Fatalf("expected 3 queries, got %d", len(got))
	}
	if got[0] != "one two" {
		t.Errorf("unexpected first query %q", got[0])
	}
}

func TestExpandQuery_FencedJSON(t *testing.T) {
	llm := &fakeLLM{completeResp: "```json\n{\"original_query\":\"q\",\"optimized_queries\":[\"a\",\"b\",\"c\"]}\n```"}
	p := newTestPipeline(llm, &fakeEmbedder{}, &fakeIndex{}, PipelineOptions{})

	got := p.ExpandQuery(context.Background(), "q")
	if len(got) != 3 {
		t.Errorf("expected fenced JSON parsed, got %v", got)
	}
}

func TestExpandQuery_FailsOpenOnServiceError(t *testing.T) {
	llm := &fakeLLM{completeErr: errors.New("model down")}
	p := newTestPipeline(llm, &fakeEmbedder{}, &fakeIndex{}, PipelineOptions{})

	if got := p.ExpandQuery(context.Background(), "q"); len(got) != 0 {
		t.Errorf("expected empty expansion on service error, got %v", got)
	}
}

func TestExpandQuery_FailsOpenOnParseError(t *testing.T) {
	llm := &fakeLLM{completeResp: "sorry, I cannot help with that"}
	p := newTestPipeline(llm, &fakeEmbedder{}, &fakeIndex{}, PipelineOptions{})

	if got := p.ExpandQuery(context.Background(), "q"); len(got) != 0 {
		t.Errorf("expected empty expansion on parse error, got %v", got)
	}
}

func TestExpandQuery_DropsBlankEntries(t *testing.T) {
	llm := &fakeLLM{completeResp: `{"optimized_queries":["a","  ","b"]}`}
	p := newTestPipeline(llm, &fakeEmbedder{}, &fakeIndex{}, PipelineOptions{})

	got := p.ExpandQuery(context.Background(), "q")
	if len(got) != 2 {
		t.Errorf("expected blank entries dropped, got %v", got)
	}
}

func TestRetrieve_UnionAcrossQueries(t *testing.T) {
	idx := &fakeIndex{byQueryLen: map[int][]domain.RetrievedChunk{
		1: {chunk("a", 0.9), chunk("b", 0.7)},
		2: {chunk("c", 0.95), chunk("d", 0.3)},
	}}
	p := newTestPipeline(&fakeLLM{}, &fakeEmbedder{}, idx, PipelineOptions{})

	got := p.Retrieve(context.Background(), []string{"x", "yy"}, 5)
	if len(got) != 4 {
		t.Fatalf("expected union of 4 chunks, got %d", len(got))
	}
}

func TestRetrieve_IsolatesFailedQueries(t *testing.T) {
	idx := &fakeIndex{
		byQueryLen: map[int][]domain.RetrievedChunk{
			1: {chunk("a", 0.9)},
		},
		failFor: map[int]bool{2: true},
	}
	p := newTestPipeline(&fakeLLM{}, &fakeEmbedder{}, idx, PipelineOptions{})

	got := p.Retrieve(context.Background(), []string{"x", "yy"}, 5)
	if len(got) != 1 || got[0].Label != "a" {
		t.Errorf("expected surviving query's chunks, got %v", got)
	}
}

func TestRetrieve_IsolatesEmbeddingFailure(t *testing.T) {
	idx := &fakeIndex{byQueryLen: map[int][]domain.RetrievedChunk{
		1: {chunk("a", 0.9)},
	}}
	emb := &fakeEmbedder{failFor: map[string]bool{"yy": true}}
	p := newTestPipeline(&fakeLLM{}, emb, idx, PipelineOptions{})

	got := p.Retrieve(context.Background(), []string{"x", "yy"}, 5)
	if len(got) != 1 {
		t.Errorf("expected one query isolated, got %v", got)
	}
}

func TestRetrieve_NoQueries(t *testing.T) {
	p := newTestPipeline(&fakeLLM{}, &fakeEmbedder{}, &fakeIndex{}, PipelineOptions{})
	if got := p.Retrieve(context.Background(), nil, 5); got != nil {
		t.Errorf("expected nil for zero queries, got %v", got)
	}
}

func TestRankedContext_EndToEnd(t *testing.T) {
	// Two optimized queries returning scores [0.9 0.7] and [0.95 0.3];
	// top_k=3 keeps the three highest in order.
	llm := &fakeLLM{completeResp: `{"optimized_queries":["x","yy"]}`}
	idx := &fakeIndex{byQueryLen: map[int][]domain.RetrievedChunk{
		1: {chunk("a", 0.9), chunk("b", 0.7)},
		2: {chunk("c", 0.95), chunk("d", 0.3)},
	}}
	p := newTestPipeline(llm, &fakeEmbedder{}, idx, PipelineOptions{})

	got := p.RankedContext(context.Background(), "What are ChatGPT's side effects on the brain?", 3)

	if len(got) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(got))
	}
	for i, want := range []float64{0.95, 0.9, 0.7} {
		if got[i].Score != want {
			t.Errorf("position %d: expected score %g, got %g", i, want, got[i].Score)
		}
	}
}

func TestRankedContext_DedupByLabel(t *testing.T) {
	llm := &fakeLLM{completeResp: `{"optimized_queries":["x","yy"]}`}
	idx := &fakeIndex{byQueryLen: map[int][]domain.RetrievedChunk{
		1: {chunk("same", 0.9), chunk("other", 0.5)},
		2: {chunk("same", 0.8), chunk("third", 0.4)},
	}}
	p := newTestPipeline(llm, &fakeEmbedder{}, idx, PipelineOptions{DedupByLabel: true})

	got := p.RankedContext(context.Background(), "q", 3)

	if len(got) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(got))
	}
	if got[0].Label != "same" || got[0].Score != 0.9 {
		t.Errorf("expected highest-scoring duplicate kept, got %+v", got[0])
	}
	for _, c := range got[1:] {
		if c.Label == "same" {
			t.Error("expected duplicate label removed")
		}
	}
}

func TestRankedContext_DuplicatesKeptByDefault(t *testing.T) {
	llm := &fakeLLM{completeResp: `{"optimized_queries":["x","yy"]}`}
	idx := &fakeIndex{byQueryLen: map[int][]domain.RetrievedChunk{
		1: {chunk("same", 0.9)},
		2: {chunk("same", 0.8)},
	}}
	p := newTestPipeline(llm, &fakeEmbedder{}, idx, PipelineOptions{})

	got := p.RankedContext(context.Background(), "q", 3)
	if len(got) != 2 {
		t.Errorf("expected duplicate to occupy two slots, got %d", len(got))
	}
}

func TestAnswer_StreamsDeltasInOrder(t *testing.T) {
	llm := &fakeLLM{
		completeResp: `{"optimized_queries":["x"]}`,
		streamDeltas: []string{"The ", "answer", "."},
	}
	idx := &fakeIndex{byQueryLen: map[int][]domain.RetrievedChunk{
		1: {chunk("a", 0.9)},
	}}
	p := newTestPipeline(llm, &fakeEmbedder{}, idx, PipelineOptions{})

	var got []string
	err := p.Answer(context.Background(), "q", 3, func(d string) error {
		got = append(got, d)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Join(got, "") != "The answer." {
		t.Errorf("expected full answer reassembled, got %q", strings.Join(got, ""))
	}
}

func TestAnswer_SinkErrorPropagates(t *testing.T) {
	llm := &fakeLLM{
		completeResp: `{"optimized_queries":["x"]}`,
		streamDeltas: []string{"a", "b", "c"},
	}
	p := newTestPipeline(llm, &fakeEmbedder{}, &fakeIndex{}, PipelineOptions{})

	sinkErr := errors.New("connection closed")
	calls := 0
	err := p.Answer(context.Background(), "q", 3, func(string) error {
		calls++
		return sinkErr
	})

	if err == nil {
		t.Fatal("expected error when sink fails")
	}
	if calls != 1 {
		t.Errorf("expected stream abandoned after first sink failure, got %d calls", calls)
	}
}

func TestAnswer_StreamFailureIsServiceError(t *testing.T) {
	llm := &fakeLLM{
		completeResp: `{"optimized_queries":["x"]}`,
		streamErr:    errors.New("cannot connect"),
	}
	p := newTestPipeline(llm, &fakeEmbedder{}, &fakeIndex{}, PipelineOptions{})

	err := p.Answer(context.Background(), "q", 3, func(string) error { return nil })

	var serr *domain.ServiceError
	if !errors.As(err, &serr) {
		t.Errorf("expected ServiceError, got %v", err)
	}
}

func TestAnswer_ProceedsUngroundedOnExpansionFailure(t *testing.T) {
	// Expansion failure degrades to zero retrieval, not an abort.
	llm := &fakeLLM{
		completeErr:  errors.New("expansion model down"),
		streamDeltas: []string{"ungrounded answer"},
	}
	p := newTestPipeline(llm, &fakeEmbedder{}, &fakeIndex{}, PipelineOptions{})

	var got []string
	err := p.Answer(context.Background(), "q", 3, func(d string) error {
		got = append(got, d)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != "ungrounded answer" {
		t.Errorf("expected answer without retrieval, got %v", got)
	}
}
