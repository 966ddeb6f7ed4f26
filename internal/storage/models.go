package storage

import "time"

// ScanRecord is one row of scan history.
type ScanRecord struct {
	ID          int64
	Content     string
	Type        string // display name of the symbol format
	Description string
	ProductInfo string
	Timestamp   time.Time // persisted as Unix milliseconds
}

// TypeCount is the number of stored scans of one symbol type.
type TypeCount struct {
	Type  string
	Count int
}
