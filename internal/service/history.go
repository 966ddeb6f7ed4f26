package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"qrscanner/internal/barcode"
	"qrscanner/internal/contextutil"
	"qrscanner/internal/storage"
)

const (
	// DefaultRelatedK is the neighbour count when the caller gives none.
	DefaultRelatedK = 5
	// MaxRelatedK caps the neighbour count.
	MaxRelatedK = 50
)

// RelatedScan is a stored scan close to another one.
type RelatedScan struct {
	Record storage.ScanRecord
	Score  float32
}

// HistoryStats summarizes stored history.
type HistoryStats struct {
	Total  int
	ByType []storage.TypeCount
}

// HistoryService browses and prunes scan history.
type HistoryService interface {
	// List returns all records, or those matching query, newest first.
	List(ctx context.Context, query string) ([]storage.ScanRecord, error)
	Get(ctx context.Context, id int64) (storage.ScanRecord, error)
	Delete(ctx context.Context, id int64) error
	Clear(ctx context.Context) error
	// Related returns the k scans most similar to the scan with id. A non-empty
	// scanType restricts the result to that barcode type.
	Related(ctx context.Context, id int64, k int, scanType string) ([]RelatedScan, error)
	Stats(ctx context.Context) (HistoryStats, error)
}

// historyService implements HistoryService.
type historyService struct {
	store HistoryStore
	index ScanIndex
}

// NewHistoryService creates a new HistoryService. index may be nil.
func NewHistoryService(store HistoryStore, index ScanIndex) HistoryService {
	return &historyService{store: store, index: index}
}

func (s *historyService) List(ctx context.Context, query string) ([]storage.ScanRecord, error) {
	query = strings.TrimSpace(query)

	var (
		recs []storage.ScanRecord
		err  error
	)
	if query == "" {
		recs, err = s.store.ListAll(ctx)
	} else {
		recs, err = s.store.Search(ctx, query)
	}
	if err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to list history", "query", query, "error", err)
		return nil, WrapError(err, "failed to list history")
	}
	return recs, nil
}

func (s *historyService) Get(ctx context.Context, id int64) (storage.ScanRecord, error) {
	if err := validateID(id); err != nil {
		return storage.ScanRecord{}, err
	}

	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		return storage.ScanRecord{}, mapStoreError(err, "failed to get scan")
	}
	return *rec, nil
}

func (s *historyService) Delete(ctx context.Context, id int64) error {
	logger := contextutil.LoggerFromContext(ctx)

	if err := validateID(id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return mapStoreError(err, "failed to delete scan")
	}

	if s.index != nil {
		if err := s.index.RemoveScan(ctx, id); err != nil {
			logger.WarnContext(ctx, "failed to remove scan from index", "id", id, "error", err)
		}
	}
	logger.InfoContext(ctx, "scan deleted", "id", id)
	return nil
}

func (s *historyService) Clear(ctx context.Context) error {
	logger := contextutil.LoggerFromContext(ctx)

	if err := s.store.DeleteAll(ctx); err != nil {
		logger.ErrorContext(ctx, "failed to clear history", "error", err)
		return WrapError(err, "failed to clear history")
	}

	if s.index != nil {
		if err := s.index.Clear(ctx); err != nil {
			logger.WarnContext(ctx, "failed to clear index", "error", err)
		}
	}
	logger.InfoContext(ctx, "history cleared")
	return nil
}

func (s *historyService) Related(ctx context.Context, id int64, k int, scanType string) ([]RelatedScan, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if s.index == nil {
		return nil, WrapError(ErrFeatureDisabled, "related scans")
	}
	if err := validateID(id); err != nil {
		return nil, err
	}
	switch {
	case k < 0:
		return nil, &ValidationError{Field: "k", Message: "must not be negative"}
	case k == 0:
		k = DefaultRelatedK
	case k > MaxRelatedK:
		k = MaxRelatedK
	}
	if scanType != "" {
		f, err := barcode.ParseFormat(scanType)
		if err != nil {
			return nil, &ValidationError{Field: "type", Message: err.Error()}
		}
		scanType = f.String()
	}

	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "failed to get scan")
	}

	neighbors, err := s.index.Related(ctx, *rec, k, scanType)
	if err != nil {
		logger.ErrorContext(ctx, "related search failed", "id", id, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrExternalService, err)
	}

	related := make([]RelatedScan, 0, len(neighbors))
	for _, n := range neighbors {
		other, err := s.store.GetByID(ctx, n.ScanID)
		if errors.Is(err, storage.ErrNotFound) {
			// Index lags behind a delete.
			continue
		}
		if err != nil {
			return nil, WrapError(err, "failed to load related scan")
		}
		related = append(related, RelatedScan{Record: *other, Score: n.Score})
	}
	return related, nil
}

func (s *historyService) Stats(ctx context.Context) (HistoryStats, error) {
	counts, err := s.store.CountByType(ctx)
	if err != nil {
		return HistoryStats{}, WrapError(err, "failed to count history")
	}

	stats := HistoryStats{ByType: counts}
	for _, c := range counts {
		stats.Total += c.Count
	}
	return stats, nil
}

func validateID(id int64) error {
	if id <= 0 {
		return &ValidationError{Field: "id", Message: "must be a positive integer"}
	}
	return nil
}

func mapStoreError(err error, msg string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return WrapError(ErrNotFound, msg)
	}
	return WrapError(err, msg)
}
