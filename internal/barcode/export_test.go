package barcode

import "time"

// SetAnalyzerClock replaces the analyzer's time source.
func SetAnalyzerClock(a *Analyzer, now func() time.Time) {
	a.now = now
}
