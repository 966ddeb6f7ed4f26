package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// ScanStore defines the interface for scan history storage operations.
type ScanStore interface {
	Insert(ctx context.Context, rec *ScanRecord) error
	Update(ctx context.Context, rec *ScanRecord) error
	GetByID(ctx context.Context, id int64) (*ScanRecord, error)
	// GetByContent returns the most recent record with exactly this content.
	GetByContent(ctx context.Context, content string) (*ScanRecord, error)
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
	ListAll(ctx context.Context) ([]ScanRecord, error)
	Search(ctx context.Context, query string) ([]ScanRecord, error)
	CountByType(ctx context.Context) ([]TypeCount, error)
}

// ScanRepo provides methods for scan history operations.
// It implements the ScanStore interface.
type ScanRepo struct {
	db *sql.DB
}

// NewScanRepo creates a new ScanRepo.
func NewScanRepo(db *sql.DB) *ScanRepo {
	return &ScanRepo{db: db}
}

const scanColumns = "id, content, type, description, product_info, timestamp"

// Insert stores a new record and sets rec.ID. A zero Timestamp is set to now.
func (r *ScanRepo) Insert(ctx context.Context, rec *ScanRecord) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	res, err := r.db.ExecContext(ctx,
		"INSERT INTO barcodes (content, type, description, product_info, timestamp) VALUES (?, ?, ?, ?, ?)",
		rec.Content, rec.Type, rec.Description, rec.ProductInfo, rec.Timestamp.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert scan: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted scan id: %w", err)
	}
	rec.ID = id
	return nil
}

// Update overwrites every field of the record with rec.ID.
func (r *ScanRepo) Update(ctx context.Context, rec *ScanRecord) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	res, err := r.db.ExecContext(ctx,
		"UPDATE barcodes SET content = ?, type = ?, description = ?, product_info = ?, timestamp = ? WHERE id = ?",
		rec.Content, rec.Type, rec.Description, rec.ProductInfo, rec.Timestamp.UnixMilli(), rec.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update scan: %w", err)
	}
	return expectAffected(res)
}

// GetByID returns the record with id or ErrNotFound.
func (r *ScanRepo) GetByID(ctx context.Context, id int64) (*ScanRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+scanColumns+" FROM barcodes WHERE id = ?", id)
	return scanOne(row)
}

// GetByContent returns the newest record with content or ErrNotFound.
func (r *ScanRepo) GetByContent(ctx context.Context, content string) (*ScanRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+scanColumns+" FROM barcodes WHERE content = ? ORDER BY timestamp DESC, id DESC LIMIT 1",
		content,
	)
	return scanOne(row)
}

// Delete removes the record with id. Returns ErrNotFound if nothing was removed.
func (r *ScanRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM barcodes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete scan: %w", err)
	}
	return expectAffected(res)
}

// DeleteAll removes every record.
func (r *ScanRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM barcodes"); err != nil {
		return fmt.Errorf("failed to delete scans: %w", err)
	}
	return nil
}

// ListAll returns all records, newest first.
func (r *ScanRepo) ListAll(ctx context.Context) ([]ScanRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+scanColumns+" FROM barcodes ORDER BY timestamp DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query scans: %w", err)
	}
	return scanAll(rows)
}

// Search returns records whose content, type or description contains query
// (case-insensitive for ASCII), newest first.
func (r *ScanRepo) Search(ctx context.Context, query string) ([]ScanRecord, error) {
	pattern := "%" + escapeLike(query) + "%"
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+scanColumns+` FROM barcodes
		WHERE content LIKE ? ESCAPE '\' OR type LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\'
		ORDER BY timestamp DESC, id DESC`,
		pattern, pattern, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search scans: %w", err)
	}
	return scanAll(rows)
}

// CountByType returns per-type record counts, largest first.
func (r *ScanRepo) CountByType(ctx context.Context) ([]TypeCount, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT type, COUNT(*) FROM barcodes GROUP BY type ORDER BY COUNT(*) DESC, type")
	if err != nil {
		return nil, fmt.Errorf("failed to count scans: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var counts []TypeCount
	for rows.Next() {
		var tc TypeCount
		if err := rows.Scan(&tc.Type, &tc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts = append(counts, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate counts: %w", err)
	}
	return counts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(s rowScanner) (*ScanRecord, error) {
	var rec ScanRecord
	var ts int64
	if err := s.Scan(&rec.ID, &rec.Content, &rec.Type, &rec.Description, &rec.ProductInfo, &ts); err != nil {
		return nil, err
	}
	rec.Timestamp = time.UnixMilli(ts)
	return &rec, nil
}

func scanOne(row *sql.Row) (*ScanRecord, error) {
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query scan: %w", err)
	}
	return rec, nil
}

func scanAll(rows *sql.Rows) ([]ScanRecord, error) {
	defer func() {
		_ = rows.Close()
	}()

	records := []ScanRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scans: %w", err)
	}
	return records, nil
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
