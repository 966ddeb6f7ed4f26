package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_deps.go -package=mocks qrscanner/internal/service Describer,ProductLookup,URLInfo,HistoryStore,PreferenceStore,ScanIndex

import (
	"context"

	"qrscanner/internal/barcode"
	"qrscanner/internal/indexer"
	"qrscanner/internal/prefs"
	"qrscanner/internal/storage"
)

// The interfaces below are defined from the service layer's perspective
// (consumer-first); concrete clients live in their own packages.

// Describer produces a short description of scanned content.
type Describer interface {
	Describe(ctx context.Context, content string) (string, error)
}

// ProductLookup resolves a code to product information.
type ProductLookup interface {
	Lookup(ctx context.Context, content string, format barcode.Format) (string, error)
}

// URLInfo fetches page metadata for scanned links.
type URLInfo interface {
	Title(ctx context.Context, rawURL string) (string, error)
}

// HistoryStore persists scan records.
type HistoryStore interface {
	Insert(ctx context.Context, rec *storage.ScanRecord) error
	Update(ctx context.Context, rec *storage.ScanRecord) error
	GetByID(ctx context.Context, id int64) (*storage.ScanRecord, error)
	GetByContent(ctx context.Context, content string) (*storage.ScanRecord, error)
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
	ListAll(ctx context.Context) ([]storage.ScanRecord, error)
	Search(ctx context.Context, query string) ([]storage.ScanRecord, error)
	CountByType(ctx context.Context) ([]storage.TypeCount, error)
}

// PreferenceStore reads and writes the preference flags.
type PreferenceStore interface {
	Get(ctx context.Context) (prefs.Preferences, error)
	Update(ctx context.Context, patch prefs.Patch) (prefs.Preferences, error)
}

// ScanIndex is the optional related-scan index.
type ScanIndex interface {
	IndexScan(ctx context.Context, rec storage.ScanRecord) error
	RemoveScan(ctx context.Context, scanID int64) error
	Clear(ctx context.Context) error
	Related(ctx context.Context, rec storage.ScanRecord, k int, scanType string) ([]indexer.Neighbor, error)
}
