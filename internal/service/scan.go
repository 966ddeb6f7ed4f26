package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_services.go -package=mocks qrscanner/internal/service ScanService,HistoryService,SettingsService

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/url"
	"strings"
	"sync"
	"time"

	"qrscanner/internal/barcode"
	"qrscanner/internal/contextutil"
	"qrscanner/internal/prefs"
	"qrscanner/internal/storage"
	"qrscanner/internal/urlinfo"
)

// Display texts shown in place of a description or product line.
const (
	NoBarcodeFound      = "No barcode found in the image"
	scanImageErrPrefix  = "Error scanning image: "
	lookupErrPrefix     = "Error looking up product: "
	describeErrPrefix   = "Error fetching description: "
	webSearchURLPattern = "https://www.google.com/search?q="
)

// ScanState is the latest scan as shown to the client.
type ScanState struct {
	ID          int64
	Content     string
	Type        barcode.Format
	Description string
	ProductInfo string
	URLTitle    string
	Pending     bool
	Timestamp   time.Time

	Saved     bool
	SaveError string

	// Client directives derived from preferences.
	IsURL            bool
	CopyToClipboard  bool
	OpenInAppBrowser bool
	SearchURL        string
}

// FrameResult reports what happened to one submitted camera frame.
type FrameResult struct {
	Analyzed bool
	Symbols  []barcode.Symbol
}

// ScanService runs the scan pipeline: lookup, description, history.
type ScanService interface {
	// ProcessSymbol enriches one decoded symbol and saves it per preferences.
	ProcessSymbol(ctx context.Context, sym barcode.Symbol) (ScanState, error)
	// ScanImage decodes a still image and processes its first symbol.
	ScanImage(ctx context.Context, img image.Image) (ScanState, error)
	// HandleFrame submits a camera frame; found symbols are processed in the background.
	HandleFrame(ctx context.Context, frame image.Image) (FrameResult, error)
	// Latest returns the most recent scan state, if any.
	Latest() (ScanState, bool)
	// Wait blocks until background work has finished. When ctx ends first the
	// remaining work is cancelled.
	Wait(ctx context.Context) error
}

// ScanDeps are the collaborators of the scan service. URLInfo and Index are optional.
type ScanDeps struct {
	Decoder       barcode.Decoder
	Products      ProductLookup
	Describer     Describer
	URLInfo       URLInfo
	History       HistoryStore
	Prefs         PreferenceStore
	Index         ScanIndex
	FrameInterval time.Duration
}

// scanService implements ScanService.
type scanService struct {
	deps     ScanDeps
	analyzer *barcode.Analyzer

	mu       sync.Mutex
	latest   *ScanState
	inFlight map[string]struct{}

	// base outlives requests; it is cancelled when Wait gives up.
	base   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScanService creates a new ScanService.
func NewScanService(deps ScanDeps) ScanService {
	base, cancel := context.WithCancel(context.Background())
	s := &scanService{
		deps:     deps,
		inFlight: make(map[string]struct{}),
		base:     base,
		cancel:   cancel,
	}
	s.analyzer = barcode.NewAnalyzer(deps.Decoder, deps.FrameInterval, func(ctx context.Context, sym barcode.Symbol) {
		s.dispatch(s.detach(ctx), sym)
	})
	return s
}

// ProcessSymbol processes a symbol synchronously.
func (s *scanService) ProcessSymbol(ctx context.Context, sym barcode.Symbol) (ScanState, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(sym.Content) == "" {
		logger.WarnContext(ctx, "empty content in scan request")
		return ScanState{}, &ValidationError{
			Field:   "content",
			Message: "cannot be empty",
		}
	}

	return s.process(ctx, sym), nil
}

func (s *scanService) process(ctx context.Context, sym barcode.Symbol) ScanState {
	logger := contextutil.LoggerFromContext(ctx).With("content", sym.Content, "type", sym.Format.String())

	p := s.preferences(ctx)
	state := ScanState{
		Content:   sym.Content,
		Type:      sym.Format,
		Pending:   true,
		Timestamp: time.Now(),
	}
	applyDirectives(&state, p)
	s.publish(state)

	info, err := s.deps.Products.Lookup(ctx, sym.Content, sym.Format)
	if err != nil {
		logger.WarnContext(ctx, "product lookup failed", "error", err)
		info = lookupErrPrefix + err.Error()
	}
	state.ProductInfo = info

	if p.RetrieveURLInfo && state.IsURL && s.deps.URLInfo != nil {
		title, err := s.deps.URLInfo.Title(ctx, sym.Content)
		if err != nil {
			logger.InfoContext(ctx, "url info unavailable", "error", err)
		} else {
			state.URLTitle = title
		}
	}

	desc, err := s.deps.Describer.Describe(ctx, sym.Content)
	if err != nil {
		logger.WarnContext(ctx, "description failed", "error", err)
		desc = describeErrPrefix + err.Error()
	}
	state.Description = desc
	state.Pending = false
	state.Timestamp = time.Now()

	if p.AddScansToHistory {
		rec, err := s.save(ctx, state, p.KeepDuplicates)
		if err != nil {
			logger.ErrorContext(ctx, "failed to save scan", "error", err)
			state.SaveError = err.Error()
		} else {
			state.ID = rec.ID
			state.Saved = true
			s.index(ctx, *rec)
		}
	}

	s.publish(state)
	logger.InfoContext(ctx, "scan processed", "saved", state.Saved, "id", state.ID)
	return state
}

// save inserts the record, or with duplicates suppressed overwrites the
// newest record with the same content.
func (s *scanService) save(ctx context.Context, state ScanState, keepDuplicates bool) (*storage.ScanRecord, error) {
	rec := &storage.ScanRecord{
		Content:     state.Content,
		Type:        state.Type.String(),
		Description: state.Description,
		ProductInfo: state.ProductInfo,
		Timestamp:   state.Timestamp,
	}

	if !keepDuplicates {
		existing, err := s.deps.History.GetByContent(ctx, state.Content)
		switch {
		case err == nil:
			rec.ID = existing.ID
			if err := s.deps.History.Update(ctx, rec); err != nil {
				return nil, WrapError(err, "failed to update scan")
			}
			return rec, nil
		case !errors.Is(err, storage.ErrNotFound):
			return nil, WrapError(err, "failed to check existing scan")
		}
	}

	if err := s.deps.History.Insert(ctx, rec); err != nil {
		return nil, WrapError(err, "failed to insert scan")
	}
	return rec, nil
}

func (s *scanService) index(ctx context.Context, rec storage.ScanRecord) {
	if s.deps.Index == nil {
		return
	}
	bg := s.detach(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.deps.Index.IndexScan(bg, rec); err != nil {
			contextutil.LoggerFromContext(bg).WarnContext(bg, "failed to index scan", "id", rec.ID, "error", err)
		}
	}()
}

// ScanImage decodes img and processes only its first symbol.
func (s *scanService) ScanImage(ctx context.Context, img image.Image) (ScanState, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if img == nil {
		return ScanState{}, &ValidationError{Field: "image", Message: "is required"}
	}

	symbols, err := s.deps.Decoder.Decode(img)
	if err != nil {
		logger.WarnContext(ctx, "image decode failed", "error", err)
		state := ScanState{Description: scanImageErrPrefix + err.Error(), Timestamp: time.Now()}
		s.publish(state)
		return state, nil
	}
	if len(symbols) == 0 {
		logger.InfoContext(ctx, "no barcode in image")
		state := ScanState{Description: NoBarcodeFound, Timestamp: time.Now()}
		s.publish(state)
		return state, nil
	}

	return s.process(ctx, symbols[0]), nil
}

// HandleFrame submits frame to the analyzer. Symbols already being processed
// are skipped rather than queued again.
func (s *scanService) HandleFrame(ctx context.Context, frame image.Image) (FrameResult, error) {
	if frame == nil {
		return FrameResult{}, &ValidationError{Field: "frame", Message: "is required"}
	}

	analyzed, symbols, err := s.analyzer.Submit(ctx, frame)
	if err != nil {
		return FrameResult{Analyzed: analyzed}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return FrameResult{Analyzed: analyzed, Symbols: symbols}, nil
}

func (s *scanService) dispatch(ctx context.Context, sym barcode.Symbol) {
	s.mu.Lock()
	if _, busy := s.inFlight[sym.Content]; busy {
		s.mu.Unlock()
		contextutil.LoggerFromContext(ctx).DebugContext(ctx, "symbol already in flight", "content", sym.Content)
		return
	}
	s.inFlight[sym.Content] = struct{}{}
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.inFlight, sym.Content)
			s.mu.Unlock()
		}()
		s.process(ctx, sym)
	}()
}

// Latest returns a copy of the latest scan state.
func (s *scanService) Latest() (ScanState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		return ScanState{}, false
	}
	return *s.latest, true
}

// detach returns a context for background work that keeps the request logger
// but is bound to the service lifetime instead of the request.
func (s *scanService) detach(ctx context.Context) context.Context {
	return contextutil.WithLogger(s.base, contextutil.LoggerFromContext(ctx))
}

// Wait blocks until in-flight background work completes. If ctx ends first,
// the remaining work is cancelled before Wait returns.
func (s *scanService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.cancel()
		return ctx.Err()
	}
}

func (s *scanService) publish(state ScanState) {
	s.mu.Lock()
	s.latest = &state
	s.mu.Unlock()
}

func (s *scanService) preferences(ctx context.Context) prefs.Preferences {
	p, err := s.deps.Prefs.Get(ctx)
	if err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to read preferences, using defaults", "error", err)
		return prefs.Defaults()
	}
	return p
}

func applyDirectives(state *ScanState, p prefs.Preferences) {
	state.IsURL = urlinfo.IsWebURL(state.Content)
	state.CopyToClipboard = p.CopyToClipboard
	state.OpenInAppBrowser = state.IsURL && p.UseInAppBrowser
	state.SearchURL = webSearchURLPattern + url.QueryEscape(state.Content)
}
