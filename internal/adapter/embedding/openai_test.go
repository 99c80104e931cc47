package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAIEmbedder_Embed(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if len(req.Input) != 1 || req.Input[0] != "hello" {
			t.Errorf("unexpected input %v", req.Input)
		}

		json.NewEncoder(w).Encode(embeddingResponse{
			Data: []embeddingData{{Embedding: []float32{0.1, 0.2, 0.3}, Index: 0}},
		})
	}))
	defer srv.Close()

	t.Setenv("TEST_EMB_KEY", "secret")
	e, err := NewOpenAIEmbedder("TEST_EMB_KEY", "text-embedding-3-small", srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	vec, err := e.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 3 || vec[0] != 0.1 {
		t.Errorf("unexpected embedding %v", vec)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("unexpected auth header %q", gotAuth)
	}
}

func TestOpenAIEmbedder_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"boom"}}`))
	}))
	defer srv.Close()

	t.Setenv("TEST_EMB_KEY", "secret")
	e, err := NewOpenAIEmbedder("TEST_EMB_KEY", "text-embedding-3-small", srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := e.Embed(context.Background(), "hello"); err == nil {
		t.Error("expected error for 500 response")
	}
}

func TestNewOpenAIEmbedder_MissingKey(t *testing.T) {
	t.Setenv("TEST_EMB_EMPTY", "")
	if _, err := NewOpenAIEmbedder("TEST_EMB_EMPTY", "text-embedding-3-small", "http://unused"); err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestMockEmbedder(t *testing.T) {
	e := NewMockEmbedder(8)
	a, err := e.Embed(context.Background(), "abc")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := e.Embed(context.Background(), "abc")
	if len(a) != 8 {
		t.Errorf("expected dimension 8, got %d", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("expected deterministic embeddings")
		}
	}
}
