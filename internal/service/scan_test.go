package service_test

import (
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"qrscanner/internal/barcode"
	barcodemocks "qrscanner/internal/barcode/mocks"
	"qrscanner/internal/prefs"
	"qrscanner/internal/service"
	"qrscanner/internal/service/mocks"
	"qrscanner/internal/storage"

	"go.uber.org/mock/gomock"
)

func init() {
	// Set default logger to discard output for cleaner test output
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testContext() context.Context {
	return context.Background()
}

type scanMocks struct {
	decoder   *barcodemocks.MockDecoder
	products  *mocks.MockProductLookup
	describer *mocks.MockDescriber
	urlInfo   *mocks.MockURLInfo
	history   *mocks.MockHistoryStore
	prefs     *mocks.MockPreferenceStore
	index     *mocks.MockScanIndex
}

func newScanService(t *testing.T, withIndex bool) (service.ScanService, scanMocks) {
	t.Helper()
	return newScanServiceWithInterval(t, withIndex, time.Hour)
}

func newScanServiceWithInterval(t *testing.T, withIndex bool, interval time.Duration) (service.ScanService, scanMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := scanMocks{
		decoder:   barcodemocks.NewMockDecoder(ctrl),
		products:  mocks.NewMockProductLookup(ctrl),
		describer: mocks.NewMockDescriber(ctrl),
		urlInfo:   mocks.NewMockURLInfo(ctrl),
		history:   mocks.NewMockHistoryStore(ctrl),
		prefs:     mocks.NewMockPreferenceStore(ctrl),
		index:     mocks.NewMockScanIndex(ctrl),
	}
	deps := service.ScanDeps{
		Decoder:       m.decoder,
		Products:      m.products,
		Describer:     m.describer,
		URLInfo:       m.urlInfo,
		History:       m.history,
		Prefs:         m.prefs,
		FrameInterval: interval,
	}
	if withIndex {
		deps.Index = m.index
	}
	return service.NewScanService(deps), m
}

func assignID(id int64) func(context.Context, *storage.ScanRecord) error {
	return func(_ context.Context, rec *storage.ScanRecord) error {
		rec.ID = id
		return nil
	}
}

func TestScanService_ProcessSymbol(t *testing.T) {
	qr := barcode.Symbol{Content: "hello", Format: barcode.FormatQRCode}
	upc := barcode.Symbol{Content: "012345678905", Format: barcode.FormatUPCA}

	tests := []struct {
		name      string
		sym       barcode.Symbol
		prefs     prefs.Preferences
		setup     func(m scanMocks)
		wantErr   bool
		checkErr  func(error) bool
		wantState func(t *testing.T, st service.ScanState)
	}{
		{
			name: "empty content",
			sym:  barcode.Symbol{Content: "  "},
			setup:   func(m scanMocks) {},
			wantErr: true,
			checkErr: func(err error) bool {
				var ve *service.ValidationError
				return errors.As(err, &ve) && ve.Field == "content"
			},
		},
		{
			name:  "new scan is inserted",
			sym:   upc,
			prefs: prefs.Defaults(),
			setup: func(m scanMocks) {
				m.products.EXPECT().Lookup(gomock.Any(), upc.Content, barcode.FormatUPCA).Return("Widget by Acme", nil)
				m.describer.EXPECT().Describe(gomock.Any(), upc.Content).Return("A widget.", nil)
				m.history.EXPECT().GetByContent(gomock.Any(), upc.Content).Return(nil, storage.ErrNotFound)
				m.history.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(assignID(7))
			},
			wantState: func(t *testing.T, st service.ScanState) {
				if st.ID != 7 || !st.Saved || st.Pending {
					t.Errorf("state = %+v, want saved id 7", st)
				}
				if st.ProductInfo != "Widget by Acme" || st.Description != "A widget." {
					t.Errorf("state = %+v", st)
				}
				if st.Type != barcode.FormatUPCA || st.IsURL {
					t.Errorf("state = %+v", st)
				}
				if st.SearchURL != "https://www.google.com/search?q=012345678905" {
					t.Errorf("SearchURL = %q", st.SearchURL)
				}
			},
		},
		{
			name:  "duplicate overwrites newest record",
			sym:   qr,
			prefs: prefs.Defaults(),
			setup: func(m scanMocks) {
				m.products.EXPECT().Lookup(gomock.Any(), qr.Content, barcode.FormatQRCode).Return("Not a UPC barcode. Content: hello", nil)
				m.describer.EXPECT().Describe(gomock.Any(), qr.Content).Return("Greeting.", nil)
				m.history.EXPECT().GetByContent(gomock.Any(), qr.Content).Return(&storage.ScanRecord{ID: 3, Content: qr.Content}, nil)
				m.history.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, rec *storage.ScanRecord) error {
					if rec.ID != 3 || rec.Description != "Greeting." || rec.Type != "QR Code" {
						t.Errorf("Update() rec = %+v", rec)
					}
					return nil
				})
				m.history.EXPECT().Insert(gomock.Any(), gomock.Any()).Times(0)
			},
			wantState: func(t *testing.T, st service.ScanState) {
				if st.ID != 3 || !st.Saved {
					t.Errorf("state = %+v, want saved id 3", st)
				}
			},
		},
		{
			name:  "keep duplicates always inserts",
			sym:   qr,
			prefs: prefs.Preferences{KeepDuplicates: true, AddScansToHistory: true},
			setup: func(m scanMocks) {
				m.products.EXPECT().Lookup(gomock.Any(), gomock.Any(), gomock.Any()).Return("info", nil)
				m.describer.EXPECT().Describe(gomock.Any(), gomock.Any()).Return("desc", nil)
				m.history.EXPECT().GetByContent(gomock.Any(), gomock.Any()).Times(0)
				m.history.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(assignID(11))
			},
			wantState: func(t *testing.T, st service.ScanState) {
				if st.ID != 11 {
					t.Errorf("ID = %d, want 11", st.ID)
				}
			},
		},
		{
			name:  "history disabled skips save",
			sym:   qr,
			prefs: prefs.Preferences{},
			setup: func(m scanMocks) {
				m.products.EXPECT().Lookup(gomock.Any(), gomock.Any(), gomock.Any()).Return("info", nil)
				m.describer.EXPECT().Describe(gomock.Any(), gomock.Any()).Return("desc", nil)
			},
			wantState: func(t *testing.T, st service.ScanState) {
				if st.Saved || st.ID != 0 {
					t.Errorf("state = %+v, want unsaved", st)
				}
			},
		},
		{
			name:  "failures become display text and are still saved",
			sym:   upc,
			prefs: prefs.Defaults(),
			setup: func(m scanMocks) {
				m.products.EXPECT().Lookup(gomock.Any(), gomock.Any(), gomock.Any()).Return("", errors.New("HTTP 500"))
				m.describer.EXPECT().Describe(gomock.Any(), gomock.Any()).Return("", errors.New("timeout"))
				m.history.EXPECT().GetByContent(gomock.Any(), gomock.Any()).Return(nil, storage.ErrNotFound)
				m.history.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, rec *storage.ScanRecord) error {
					if rec.Description != "Error fetching description: timeout" {
						t.Errorf("Insert() description = %q", rec.Description)
					}
					rec.ID = 1
					return nil
				})
			},
			wantState: func(t *testing.T, st service.ScanState) {
				if st.ProductInfo != "Error looking up product: HTTP 500" {
					t.Errorf("ProductInfo = %q", st.ProductInfo)
				}
				if !st.Saved {
					t.Error("state should be saved")
				}
			},
		},
		{
			name:  "save failure is reported in state",
			sym:   qr,
			prefs: prefs.Defaults(),
			setup: func(m scanMocks) {
				m.products.EXPECT().Lookup(gomock.Any(), gomock.Any(), gomock.Any()).Return("info", nil)
				m.describer.EXPECT().Describe(gomock.Any(), gomock.Any()).Return("desc", nil)
				m.history.EXPECT().GetByContent(gomock.Any(), gomock.Any()).Return(nil, errors.New("disk I/O error"))
			},
			wantState: func(t *testing.T, st service.ScanState) {
				if st.Saved || !strings.Contains(st.SaveError, "disk I/O error") {
					t.Errorf("state = %+v, want save error", st)
				}
			},
		},
		{
			name:  "url title fetched when enabled",
			sym:   barcode.Symbol{Content: "https://example.com", Format: barcode.FormatQRCode},
			prefs: prefs.Preferences{RetrieveURLInfo: true, UseInAppBrowser: true, CopyToClipboard: true},
			setup: func(m scanMocks) {
				m.products.EXPECT().Lookup(gomock.Any(), gomock.Any(), gomock.Any()).Return("info", nil)
				m.urlInfo.EXPECT().Title(gomock.Any(), "https://example.com").Return("Example Domain", nil)
				m.describer.EXPECT().Describe(gomock.Any(), gomock.Any()).Return("A site.", nil)
			},
			wantState: func(t *testing.T, st service.ScanState) {
				if st.URLTitle != "Example Domain" {
					t.Errorf("URLTitle = %q", st.URLTitle)
				}
				if !st.IsURL || !st.OpenInAppBrowser || !st.CopyToClipboard {
					t.Errorf("directives = %+v", st)
				}
			},
		},
		{
			name:  "url title failure is ignored",
			sym:   barcode.Symbol{Content: "https://example.com", Format: barcode.FormatQRCode},
			prefs: prefs.Preferences{RetrieveURLInfo: true},
			setup: func(m scanMocks) {
				m.products.EXPECT().Lookup(gomock.Any(), gomock.Any(), gomock.Any()).Return("info", nil)
				m.urlInfo.EXPECT().Title(gomock.Any(), gomock.Any()).Return("", errors.New("no title"))
				m.describer.EXPECT().Describe(gomock.Any(), gomock.Any()).Return("A site.", nil)
			},
			wantState: func(t *testing.T, st service.ScanState) {
				if st.URLTitle != "" || st.OpenInAppBrowser {
					t.Errorf("state = %+v", st)
				}
			},
		},
		{
			name:  "preference read failure falls back to defaults",
			sym:   qr,
			prefs: prefs.Preferences{},
			setup: func(m scanMocks) {
				m.prefs.EXPECT().Get(gomock.Any()).Return(prefs.Preferences{}, errors.New("corrupt yaml"))
				m.products.EXPECT().Lookup(gomock.Any(), gomock.Any(), gomock.Any()).Return("info", nil)
				m.describer.EXPECT().Describe(gomock.Any(), gomock.Any()).Return("desc", nil)
				m.history.EXPECT().GetByContent(gomock.Any(), gomock.Any()).Return(nil, storage.ErrNotFound)
				m.history.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(assignID(2))
			},
			wantState: func(t *testing.T, st service.ScanState) {
				if !st.Saved {
					t.Error("defaults add scans to history")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newScanService(t, false)
			tt.setup(m)
			m.prefs.EXPECT().Get(gomock.Any()).Return(tt.prefs, nil).AnyTimes()

			st, err := svc.ProcessSymbol(testContext(), tt.sym)
			if tt.wantErr {
				if err == nil {
					t.Fatal("ProcessSymbol() expected error, got nil")
				}
				if tt.checkErr != nil && !tt.checkErr(err) {
					t.Errorf("ProcessSymbol() error = %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ProcessSymbol() unexpected error: %v", err)
			}
			tt.wantState(t, st)

			latest, ok := svc.Latest()
			if !ok || latest.Content != st.Content || latest.Pending {
				t.Errorf("Latest() = %+v, %v", latest, ok)
			}
		})
	}
}

func TestScanService_ProcessSymbol_IndexesSavedScan(t *testing.T) {
	svc, m := newScanService(t, true)
	sym := barcode.Symbol{Content: "hello", Format: barcode.FormatQRCode}

	m.prefs.EXPECT().Get(gomock.Any()).Return(prefs.Preferences{AddScansToHistory: true, KeepDuplicates: true}, nil)
	m.products.EXPECT().Lookup(gomock.Any(), gomock.Any(), gomock.Any()).Return("info", nil)
	m.describer.EXPECT().Describe(gomock.Any(), gomock.Any()).Return("desc", nil)
	m.history.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(assignID(5))
	m.index.EXPECT().IndexScan(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, rec storage.ScanRecord) error {
		if rec.ID != 5 || rec.Content != "hello" {
			t.Errorf("IndexScan() rec = %+v", rec)
		}
		return errors.New("qdrant down")
	})

	if _, err := svc.ProcessSymbol(testContext(), sym); err != nil {
		t.Fatalf("ProcessSymbol() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(testContext(), 5*time.Second)
	defer cancel()
	if err := svc.Wait(ctx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
}

func TestScanService_ScanImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 10, 10))

	t.Run("nil image", func(t *testing.T) {
		svc, _ := newScanService(t, false)
		_, err := svc.ScanImage(testContext(), nil)
		var ve *service.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("ScanImage() error = %v, want ValidationError", err)
		}
	})

	t.Run("no barcode", func(t *testing.T) {
		svc, m := newScanService(t, false)
		m.decoder.EXPECT().Decode(img).Return(nil, nil)

		st, err := svc.ScanImage(testContext(), img)
		if err != nil {
			t.Fatalf("ScanImage() error = %v", err)
		}
		if st.Description != service.NoBarcodeFound || st.Saved {
			t.Errorf("ScanImage() = %+v", st)
		}
	})

	t.Run("decode error", func(t *testing.T) {
		svc, m := newScanService(t, false)
		m.decoder.EXPECT().Decode(img).Return(nil, errors.New("bad bitmap"))

		st, err := svc.ScanImage(testContext(), img)
		if err != nil {
			t.Fatalf("ScanImage() error = %v", err)
		}
		if st.Description != "Error scanning image: bad bitmap" {
			t.Errorf("Description = %q", st.Description)
		}
		if latest, ok := svc.Latest(); !ok || latest.Description != st.Description {
			t.Errorf("Latest() = %+v, %v", latest, ok)
		}
	})

	t.Run("first symbol only", func(t *testing.T) {
		svc, m := newScanService(t, false)
		m.decoder.EXPECT().Decode(img).Return([]barcode.Symbol{
			{Content: "first", Format: barcode.FormatQRCode},
			{Content: "second", Format: barcode.FormatQRCode},
		}, nil)
		m.prefs.EXPECT().Get(gomock.Any()).Return(prefs.Preferences{}, nil)
		m.products.EXPECT().Lookup(gomock.Any(), "first", barcode.FormatQRCode).Return("info", nil)
		m.describer.EXPECT().Describe(gomock.Any(), "first").Return("desc", nil)

		st, err := svc.ScanImage(testContext(), img)
		if err != nil {
			t.Fatalf("ScanImage() error = %v", err)
		}
		if st.Content != "first" {
			t.Errorf("Content = %q, want first", st.Content)
		}
	})
}

func TestScanService_HandleFrame(t *testing.T) {
	frame := image.NewGray(image.Rect(0, 0, 10, 10))

	t.Run("nil frame", func(t *testing.T) {
		svc, _ := newScanService(t, false)
		if _, err := svc.HandleFrame(testContext(), nil); err == nil {
			t.Error("HandleFrame() expected error for nil frame")
		}
	})

	t.Run("symbols processed in background and later frames dropped", func(t *testing.T) {
		svc, m := newScanService(t, false)
		sym := barcode.Symbol{Content: "frame-code", Format: barcode.FormatQRCode}

		m.decoder.EXPECT().Decode(frame).Return([]barcode.Symbol{sym}, nil).Times(1)
		m.prefs.EXPECT().Get(gomock.Any()).Return(prefs.Preferences{}, nil)
		m.products.EXPECT().Lookup(gomock.Any(), "frame-code", barcode.FormatQRCode).Return("info", nil)
		m.describer.EXPECT().Describe(gomock.Any(), "frame-code").Return("desc", nil)

		res, err := svc.HandleFrame(testContext(), frame)
		if err != nil {
			t.Fatalf("HandleFrame() error = %v", err)
		}
		if !res.Analyzed || len(res.Symbols) != 1 {
			t.Errorf("HandleFrame() = %+v", res)
		}

		res, err = svc.HandleFrame(testContext(), frame)
		if err != nil {
			t.Fatalf("HandleFrame() second call error = %v", err)
		}
		if res.Analyzed {
			t.Error("second frame inside the interval should be dropped")
		}

		ctx, cancel := context.WithTimeout(testContext(), 5*time.Second)
		defer cancel()
		if err := svc.Wait(ctx); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
		latest, ok := svc.Latest()
		if !ok || latest.Content != "frame-code" || latest.Pending {
			t.Errorf("Latest() = %+v, %v", latest, ok)
		}
	})

	t.Run("content in flight is not processed twice", func(t *testing.T) {
		svc, m := newScanServiceWithInterval(t, false, 0)
		sym := barcode.Symbol{Content: "busy-code", Format: barcode.FormatQRCode}
		release := make(chan struct{})

		m.decoder.EXPECT().Decode(frame).Return([]barcode.Symbol{sym}, nil).Times(3)
		m.prefs.EXPECT().Get(gomock.Any()).Return(prefs.Preferences{}, nil).Times(1)
		m.products.EXPECT().Lookup(gomock.Any(), "busy-code", barcode.FormatQRCode).DoAndReturn(
			func(context.Context, string, barcode.Format) (string, error) {
				<-release
				return "info", nil
			}).Times(1)
		m.describer.EXPECT().Describe(gomock.Any(), "busy-code").Return("desc", nil).Times(1)

		for i := 0; i < 3; i++ {
			res, err := svc.HandleFrame(testContext(), frame)
			if err != nil {
				t.Fatalf("HandleFrame() frame %d error = %v", i, err)
			}
			if !res.Analyzed || len(res.Symbols) != 1 {
				t.Errorf("HandleFrame() frame %d = %+v, want analyzed with one symbol", i, res)
			}
		}

		close(release)
		ctx, cancel := context.WithTimeout(testContext(), 5*time.Second)
		defer cancel()
		if err := svc.Wait(ctx); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
	})

	t.Run("decode error", func(t *testing.T) {
		svc, m := newScanService(t, false)
		m.decoder.EXPECT().Decode(frame).Return(nil, errors.New("bad frame"))

		res, err := svc.HandleFrame(testContext(), frame)
		if !errors.Is(err, service.ErrInvalidInput) {
			t.Errorf("HandleFrame() error = %v, want ErrInvalidInput", err)
		}
		if !res.Analyzed {
			t.Error("failed frame still counts as analyzed")
		}
	})
}

func TestScanService_LatestEmpty(t *testing.T) {
	svc, _ := newScanService(t, false)
	if _, ok := svc.Latest(); ok {
		t.Error("Latest() should report no state before any scan")
	}
}

func TestScanService_WaitHonorsContext(t *testing.T) {
	svc, m := newScanService(t, false)
	release := make(chan struct{})
	frame := image.NewGray(image.Rect(0, 0, 1, 1))

	m.decoder.EXPECT().Decode(frame).Return([]barcode.Symbol{{Content: "slow", Format: barcode.FormatQRCode}}, nil)
	m.prefs.EXPECT().Get(gomock.Any()).Return(prefs.Preferences{}, nil)
	m.products.EXPECT().Lookup(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, string, barcode.Format) (string, error) {
			<-release
			return "info", nil
		})
	m.describer.EXPECT().Describe(gomock.Any(), gomock.Any()).Return("desc", nil)

	if _, err := svc.HandleFrame(testContext(), frame); err != nil {
		t.Fatalf("HandleFrame() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(testContext(), 20*time.Millisecond)
	defer cancel()
	if err := svc.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want deadline exceeded", err)
	}

	close(release)
	if err := svc.Wait(testContext()); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
}

func TestScanService_WaitCancelsBackgroundWork(t *testing.T) {
	svc, m := newScanService(t, false)
	frame := image.NewGray(image.Rect(0, 0, 1, 1))
	lookupErr := make(chan error, 1)

	m.decoder.EXPECT().Decode(frame).Return([]barcode.Symbol{{Content: "stuck", Format: barcode.FormatQRCode}}, nil)
	m.prefs.EXPECT().Get(gomock.Any()).Return(prefs.Preferences{}, nil)
	m.products.EXPECT().Lookup(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string, _ barcode.Format) (string, error) {
			<-ctx.Done()
			lookupErr <- ctx.Err()
			return "", ctx.Err()
		})
	m.describer.EXPECT().Describe(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string) (string, error) {
			return "", ctx.Err()
		})

	// The request context ends right away; background work must not depend on it.
	reqCtx, reqCancel := context.WithCancel(testContext())
	if _, err := svc.HandleFrame(reqCtx, frame); err != nil {
		t.Fatalf("HandleFrame() error = %v", err)
	}
	reqCancel()

	ctx, cancel := context.WithTimeout(testContext(), 20*time.Millisecond)
	defer cancel()
	if err := svc.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want deadline exceeded", err)
	}

	select {
	case err := <-lookupErr:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("lookup context error = %v, want canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("background lookup was not cancelled")
	}

	if err := svc.Wait(testContext()); err != nil {
		t.Fatalf("Wait() after cancel error = %v", err)
	}
	latest, ok := svc.Latest()
	if !ok || !strings.HasPrefix(latest.ProductInfo, "Error looking up product: ") {
		t.Errorf("Latest() = %+v, %v", latest, ok)
	}
}
