package barcode

import (
	"context"
	"image"
	"sync"
	"time"

	"qrscanner/internal/contextutil"
)

// Analyzer forwards camera frames to a Decoder at a bounded rate.
//
// At most one frame is decoded per interval. Frames arriving sooner, or while
// a previous frame is still being decoded, are dropped rather than queued so
// the newest frame always wins once the interval has elapsed.
type Analyzer struct {
	decoder  Decoder
	interval time.Duration
	onSymbol func(context.Context, Symbol)
	now      func() time.Time

	mu   sync.Mutex
	last time.Time
	busy bool
}

// NewAnalyzer creates an Analyzer. onSymbol is called once per decoded
// symbol, in decoder order, on the submitting goroutine.
func NewAnalyzer(decoder Decoder, interval time.Duration, onSymbol func(context.Context, Symbol)) *Analyzer {
	return &Analyzer{
		decoder:  decoder,
		interval: interval,
		onSymbol: onSymbol,
		now:      time.Now,
	}
}

// Submit offers a frame. It reports whether the frame was analyzed and the
// symbols that were dispatched.
func (a *Analyzer) Submit(ctx context.Context, frame image.Image) (bool, []Symbol, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if !a.acquire() {
		logger.DebugContext(ctx, "frame dropped")
		return false, nil, nil
	}
	defer a.release()

	symbols, err := a.decoder.Decode(frame)
	if err != nil {
		logger.WarnContext(ctx, "frame analysis failed", "error", err)
		return true, nil, err
	}

	logger.DebugContext(ctx, "frame analyzed", "symbols", len(symbols))
	for _, sym := range symbols {
		logger.InfoContext(ctx, "barcode detected", "content", sym.Content, "type", sym.Format.String())
		if a.onSymbol != nil {
			a.onSymbol(ctx, sym)
		}
	}
	return true, symbols, nil
}

func (a *Analyzer) acquire() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	if a.busy {
		return false
	}
	if !a.last.IsZero() && now.Sub(a.last) < a.interval {
		return false
	}
	a.busy = true
	a.last = now
	return true
}

func (a *Analyzer) release() {
	a.mu.Lock()
	a.busy = false
	a.mu.Unlock()
}
