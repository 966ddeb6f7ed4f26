package indexer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"unicode/utf8"

	"qrscanner/internal/storage"
)

const (
	// DocumentVersion identifies the layout produced by Document.
	// Update this when the embedded text changes.
	DocumentVersion = "v1"
	// TokensPerRune is an approximation for token counting (4 chars per token).
	TokensPerRune = 4.0
)

// IndexStats describes one IndexAll run.
type IndexStats struct {
	ScansProcessed int `json:"scans_processed"`
	ScansIndexed   int `json:"scans_indexed"`
	ScansFailed    int `json:"scans_failed"`
	// DocumentTokenStats are estimated from the embedded documents.
	DocumentTokenStats TokenStats `json:"document_token_stats"`
	// IndexVersion is a hash of document layout, embedding model and vector size.
	IndexVersion string `json:"index_version"`
}

// TokenStats contains statistics about token counts.
type TokenStats struct {
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Mean float64 `json:"mean"`
	P95  int     `json:"p95"`
}

func newIndexStats(recs []storage.ScanRecord, modelName string, vectorSize int) *IndexStats {
	counts := make([]int, 0, len(recs))
	for _, rec := range recs {
		counts = append(counts, estimateTokens(Document(rec)))
	}
	return &IndexStats{
		ScansProcessed:     len(recs),
		DocumentTokenStats: computeTokenStats(counts),
		IndexVersion:       IndexVersion(modelName, vectorSize),
	}
}

// IndexVersion returns a short hash identifying an index build.
func IndexVersion(modelName string, vectorSize int) string {
	input := fmt.Sprintf("%s|%s|size=%d", DocumentVersion, modelName, vectorSize)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])[:16]
}

func estimateTokens(s string) int {
	n := int(math.Round(float64(utf8.RuneCountInString(s)) / TokensPerRune))
	if n < 1 {
		return 1
	}
	return n
}

// computeTokenStats computes min, max, mean, and p95 from token counts.
func computeTokenStats(tokenCounts []int) TokenStats {
	if len(tokenCounts) == 0 {
		return TokenStats{}
	}

	sorted := make([]int, len(tokenCounts))
	copy(sorted, tokenCounts)
	sort.Ints(sorted)

	sum := 0
	for _, count := range tokenCounts {
		sum += count
	}
	mean := float64(sum) / float64(len(tokenCounts))

	p95Index := int(math.Ceil(float64(len(sorted)) * 0.95))
	if p95Index >= len(sorted) {
		p95Index = len(sorted) - 1
	}

	return TokenStats{
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: math.Round(mean*100) / 100, // Round to 2 decimal places
		P95:  sorted[p95Index],
	}
}
