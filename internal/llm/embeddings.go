package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const embeddingsPath = "/v1/embeddings"

// ErrEmptyDocument is returned when a document to embed has no text.
var ErrEmptyDocument = errors.New("empty document")

// EmbeddingsClient turns scan documents into vectors through an
// OpenAI-compatible embeddings API.
type EmbeddingsClient struct {
	BaseURL    string
	APIKey     string
	Model      string
	Dimensions int
	client     *http.Client
}

// NewEmbeddingsClient creates an embeddings client. dimensions must match the
// vector size of the index collection; every returned vector is checked
// against it.
func NewEmbeddingsClient(baseURL, apiKey, model string, dimensions int, timeout time.Duration) *EmbeddingsClient {
	return &EmbeddingsClient{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		Model:      model,
		Dimensions: dimensions,
		client:     &http.Client{Timeout: timeout},
	}
}

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingItem struct {
	// Index is absent on some compatible servers; items are then positional.
	Index     *int      `json:"index"`
	Embedding []float32 `json:"embedding"`
}

type embeddingsResponse struct {
	Data []embeddingItem `json:"data"`
}

// EmbedTexts embeds a batch of documents in one request and returns the
// vectors in document order.
func (c *EmbeddingsClient) EmbedTexts(ctx context.Context, docs []string) ([][]float32, error) {
	if len(docs) == 0 {
		return nil, errors.New("no documents to embed")
	}
	for i, doc := range docs {
		if strings.TrimSpace(doc) == "" {
			return nil, fmt.Errorf("document %d: %w", i, ErrEmptyDocument)
		}
	}

	var resp embeddingsResponse
	req := embeddingsRequest{Model: c.Model, Input: docs}
	if err := postJSON(ctx, c.client, c.BaseURL, c.APIKey, embeddingsPath, req, &resp); err != nil {
		return nil, err
	}

	if len(resp.Data) != len(docs) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(docs), len(resp.Data))
	}

	vectors := make([][]float32, len(docs))
	for pos, item := range resp.Data {
		i := pos
		if item.Index != nil {
			i = *item.Index
		}
		if i < 0 || i >= len(docs) || vectors[i] != nil {
			return nil, fmt.Errorf("embedding index %d is out of range or repeated", i)
		}
		if len(item.Embedding) != c.Dimensions {
			return nil, fmt.Errorf("embedding %d has size %d, expected %d", i, len(item.Embedding), c.Dimensions)
		}
		vectors[i] = item.Embedding
	}
	return vectors, nil
}
