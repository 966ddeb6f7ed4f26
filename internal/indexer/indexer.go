// Package indexer keeps the related-scan vector index in step with history.
package indexer

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"qrscanner/internal/contextutil"
	"qrscanner/internal/storage"
	"qrscanner/internal/vectorstore"
)

// pointNamespace seeds the deterministic point ids.
var pointNamespace = uuid.MustParse("6f1c2a3e-8d4b-4c7a-9e2f-5b0d1a7c3e91")

// Embedder generates embeddings for texts.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ScanSource lists every stored scan for a backfill.
type ScanSource interface {
	ListAll(ctx context.Context) ([]storage.ScanRecord, error)
}

// Neighbor is a scan close to a query scan.
type Neighbor struct {
	ScanID int64
	Score  float32
}

// Indexer embeds scans and stores them in a vector collection.
type Indexer struct {
	store      vectorstore.VectorStore
	embedder   Embedder
	collection string
	vectorSize int
	modelName  string
}

// New creates an Indexer. modelName only feeds the index version.
func New(store vectorstore.VectorStore, embedder Embedder, collection string, vectorSize int, modelName string) *Indexer {
	return &Indexer{
		store:      store,
		embedder:   embedder,
		collection: collection,
		vectorSize: vectorSize,
		modelName:  modelName,
	}
}

// PointID returns the vector point id of a scan. The same scan always maps
// to the same id so re-indexing overwrites.
func PointID(scanID int64) string {
	return uuid.NewSHA1(pointNamespace, []byte(fmt.Sprintf("scan:%d", scanID))).String()
}

// Document is the text embedded for a scan.
func Document(rec storage.ScanRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Content: %s\n", rec.Content)
	fmt.Fprintf(&sb, "Type: %s\n", rec.Type)
	if rec.Description != "" {
		fmt.Fprintf(&sb, "Description: %s\n", rec.Description)
	}
	if rec.ProductInfo != "" {
		fmt.Fprintf(&sb, "Product: %s\n", rec.ProductInfo)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Ensure creates the collection or validates its vector size.
func (ix *Indexer) Ensure(ctx context.Context) error {
	return ix.store.EnsureCollection(ctx, ix.collection, ix.vectorSize)
}

// IndexScan embeds one scan and upserts its point.
func (ix *Indexer) IndexScan(ctx context.Context, rec storage.ScanRecord) error {
	return ix.indexBatch(ctx, []storage.ScanRecord{rec})
}

func (ix *Indexer) indexBatch(ctx context.Context, recs []storage.ScanRecord) error {
	if len(recs) == 0 {
		return nil
	}

	docs := make([]string, len(recs))
	for i, rec := range recs {
		docs[i] = Document(rec)
	}

	embeddings, err := ix.embedder.EmbedTexts(ctx, docs)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(embeddings) != len(recs) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(recs), len(embeddings))
	}

	points := make([]vectorstore.Point, len(recs))
	for i, rec := range recs {
		points[i] = vectorstore.Point{
			ID:  PointID(rec.ID),
			Vec: embeddings[i],
			Meta: map[string]any{
				"scan_id": rec.ID,
				"type":    rec.Type,
			},
		}
	}

	if err := ix.store.Upsert(ctx, ix.collection, points); err != nil {
		return fmt.Errorf("failed to upsert vectors: %w", err)
	}
	return nil
}

// RemoveScan deletes the point of a scan.
func (ix *Indexer) RemoveScan(ctx context.Context, scanID int64) error {
	return ix.store.Delete(ctx, ix.collection, []string{PointID(scanID)})
}

// Clear drops every point.
func (ix *Indexer) Clear(ctx context.Context) error {
	return ix.store.ResetCollection(ctx, ix.collection, ix.vectorSize)
}

// Related returns up to k scans nearest to rec, excluding rec itself. A
// non-empty scanType keeps only scans of that type.
func (ix *Indexer) Related(ctx context.Context, rec storage.ScanRecord, k int, scanType string) ([]Neighbor, error) {
	embeddings, err := ix.embedder.EmbedTexts(ctx, []string{Document(rec)})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(embeddings) != 1 {
		return nil, fmt.Errorf("embedding count mismatch: expected 1, got %d", len(embeddings))
	}

	results, err := ix.store.Search(ctx, ix.collection, embeddings[0], k, vectorstore.Filter{Type: scanType, ExcludeScanID: rec.ID})
	if err != nil {
		return nil, err
	}

	neighbors := make([]Neighbor, 0, len(results))
	for _, r := range results {
		id, ok := scanIDFromMeta(r.Meta)
		if !ok || id == rec.ID {
			continue
		}
		neighbors = append(neighbors, Neighbor{ScanID: id, Score: r.Score})
	}
	return neighbors, nil
}

// BatchSize is how many scans are embedded per request during IndexAll.
const BatchSize = 32

// IndexAll backfills every stored scan. Failed batches are logged and counted
// but do not stop the run.
func (ix *Indexer) IndexAll(ctx context.Context, src ScanSource) (*IndexStats, error) {
	logger := contextutil.LoggerFromContext(ctx)

	recs, err := src.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}

	logger.InfoContext(ctx, "starting indexing", "total_scans", len(recs))

	stats := newIndexStats(recs, ix.modelName, ix.vectorSize)
	for start := 0; start < len(recs); start += BatchSize {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		end := min(start+BatchSize, len(recs))
		batch := recs[start:end]
		if err := ix.indexBatch(ctx, batch); err != nil {
			stats.ScansFailed += len(batch)
			logger.ErrorContext(ctx, "failed to index batch", "from", start, "to", end, "error", err)
			continue
		}
		stats.ScansIndexed += len(batch)
	}

	logger.InfoContext(ctx, "indexing completed", "total_scans", len(recs), "indexed", stats.ScansIndexed, "failed", stats.ScansFailed)

	if stats.ScansFailed > 0 {
		return stats, fmt.Errorf("indexing completed with %d failed scans", stats.ScansFailed)
	}
	return stats, nil
}

func scanIDFromMeta(meta map[string]any) (int64, bool) {
	switch v := meta["scan_id"].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
