package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"qrscanner/internal/indexer"
	"qrscanner/internal/llm"
	"qrscanner/internal/storage"
)

type embeddingItem struct {
	Index     *int      `json:"index,omitempty"`
	Embedding []float32 `json:"embedding"`
}

func intPtr(i int) *int { return &i }

// vectorFor marks a vector with the position of the document it belongs to.
func vectorFor(pos, size int) []float32 {
	vec := make([]float32, size)
	vec[0] = float32(pos)
	return vec
}

func scanDocuments() []string {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	recs := []storage.ScanRecord{
		{ID: 1, Content: "012345678905", Type: "UPC-A", Description: "A can of soup.", ProductInfo: "Tomato Soup by Acme", Timestamp: ts},
		{ID: 2, Content: "https://example.com", Type: "QR Code", Description: "A website.", Timestamp: ts},
		{ID: 3, Content: "WIFI:S:home;T:WPA;P:secret;;", Type: "QR Code", Timestamp: ts},
	}
	docs := make([]string, len(recs))
	for i, rec := range recs {
		docs[i] = indexer.Document(rec)
	}
	return docs
}

func TestEmbeddingsClient_EmbedTexts_ScanBatch(t *testing.T) {
	docs := scanDocuments()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/embeddings" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}

		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "embed-model" {
			t.Errorf("model = %q, want embed-model", req.Model)
		}
		if len(req.Input) != len(docs) {
			t.Fatalf("input has %d documents, want %d", len(req.Input), len(docs))
		}
		for i := range docs {
			if req.Input[i] != docs[i] {
				t.Errorf("input[%d] = %q, want %q", i, req.Input[i], docs[i])
			}
		}

		// Answer out of order; the client must place vectors by index.
		items := make([]embeddingItem, 0, len(req.Input))
		for i := len(req.Input) - 1; i >= 0; i-- {
			items = append(items, embeddingItem{Index: intPtr(i), Embedding: vectorFor(i, 4)})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": items})
	}))
	defer server.Close()

	client := llm.NewEmbeddingsClient(server.URL, "test-key", "embed-model", 4, 5*time.Second)
	vectors, err := client.EmbedTexts(context.Background(), docs)
	if err != nil {
		t.Fatalf("EmbedTexts() error = %v", err)
	}
	if len(vectors) != len(docs) {
		t.Fatalf("EmbedTexts() returned %d vectors, want %d", len(vectors), len(docs))
	}
	for i, vec := range vectors {
		if len(vec) != 4 || vec[0] != float32(i) {
			t.Errorf("vector %d = %v, want marker %d", i, vec, i)
		}
	}
}

func TestEmbeddingsClient_EmbedTexts_PositionalWithoutIndex(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		items := []embeddingItem{
			{Embedding: vectorFor(0, 3)},
			{Embedding: vectorFor(1, 3)},
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": items})
	}))
	defer server.Close()

	client := llm.NewEmbeddingsClient(server.URL, "k", "m", 3, 5*time.Second)
	vectors, err := client.EmbedTexts(context.Background(), []string{"Content: a", "Content: b"})
	if err != nil {
		t.Fatalf("EmbedTexts() error = %v", err)
	}
	if vectors[0][0] != 0 || vectors[1][0] != 1 {
		t.Errorf("EmbedTexts() = %v, want positional order", vectors)
	}
}

func TestEmbeddingsClient_EmbedTexts_Errors(t *testing.T) {
	docs := scanDocuments()[:2]

	tests := []struct {
		name       string
		docs       []string
		serverResp func(w http.ResponseWriter, r *http.Request)
		wantCalls  int32
		wantStatus int
		wantErr    error
	}{
		{
			name:      "no documents",
			docs:      nil,
			wantCalls: 0,
		},
		{
			name:      "blank document is rejected before sending",
			docs:      []string{docs[0], "  "},
			wantCalls: 0,
			wantErr:   llm.ErrEmptyDocument,
		},
		{
			name: "count mismatch",
			docs: docs,
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{"data": []embeddingItem{
					{Index: intPtr(0), Embedding: vectorFor(0, 4)},
				}})
			},
			wantCalls: 1,
		},
		{
			name: "repeated index",
			docs: docs,
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{"data": []embeddingItem{
					{Index: intPtr(1), Embedding: vectorFor(1, 4)},
					{Index: intPtr(1), Embedding: vectorFor(1, 4)},
				}})
			},
			wantCalls: 1,
		},
		{
			name: "wrong vector size",
			docs: docs[:1],
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{"data": []embeddingItem{
					{Index: intPtr(0), Embedding: make([]float32, 8)},
				}})
			},
			wantCalls: 1,
		},
		{
			name: "rate limited",
			docs: docs,
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"slow down"}`))
			},
			wantCalls:  1,
			wantStatus: http.StatusTooManyRequests,
		},
		{
			name: "invalid JSON",
			docs: docs,
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("{not json"))
			},
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				if tt.serverResp != nil {
					tt.serverResp(w, r)
				}
			}))
			defer server.Close()

			client := llm.NewEmbeddingsClient(server.URL, "k", "m", 4, 5*time.Second)
			vectors, err := client.EmbedTexts(context.Background(), tt.docs)
			if err == nil {
				t.Fatalf("EmbedTexts() = %v, want error", vectors)
			}
			if got := calls.Load(); got != tt.wantCalls {
				t.Errorf("server called %d times, want %d", got, tt.wantCalls)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("EmbedTexts() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantStatus != 0 {
				var se *llm.StatusError
				if !errors.As(err, &se) || se.Code != tt.wantStatus {
					t.Errorf("EmbedTexts() error = %v, want status %d", err, tt.wantStatus)
				}
			}
		})
	}
}

// The indexer consumes the client through its Embedder interface.
var _ indexer.Embedder = (*llm.EmbeddingsClient)(nil)
