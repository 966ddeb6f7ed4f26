package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"qrscanner/internal/barcode"
	"qrscanner/internal/service"
	"qrscanner/internal/service/mocks"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	img.SetGray(1, 1, color.Gray{Y: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func TestScanHandler_Process(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		body          string
		mockSetup     func(*mocks.MockScanService)
		wantStatus    int
		checkResponse func(t *testing.T, w *httptest.ResponseRecorder)
	}{
		{
			name: "successful scan",
			body: `{"content":"012345678905","type":"UPC-A"}`,
			mockSetup: func(m *mocks.MockScanService) {
				m.EXPECT().
					ProcessSymbol(gomock.Any(), barcode.Symbol{Content: "012345678905", Format: barcode.FormatUPCA}).
					Return(service.ScanState{
						ID:              4,
						Content:         "012345678905",
						Type:            barcode.FormatUPCA,
						Description:     "A widget.",
						ProductInfo:     "Widget by Acme",
						Timestamp:       ts,
						Saved:           true,
						CopyToClipboard: true,
						SearchURL:       "https://www.google.com/search?q=012345678905",
					}, nil)
			},
			wantStatus: http.StatusOK,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]any
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("decode response: %v", err)
				}
				if resp["type"] != "UPC-A" || resp["product_info"] != "Widget by Acme" || resp["saved"] != true {
					t.Errorf("response = %v", resp)
				}
				directives, _ := resp["directives"].(map[string]any)
				if directives["copy_to_clipboard"] != true {
					t.Errorf("directives = %v", directives)
				}
			},
		},
		{
			name: "missing type is unknown",
			body: `{"content":"hello"}`,
			mockSetup: func(m *mocks.MockScanService) {
				m.EXPECT().
					ProcessSymbol(gomock.Any(), barcode.Symbol{Content: "hello", Format: barcode.FormatUnknown}).
					Return(service.ScanState{Content: "hello"}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown type",
			body:       `{"content":"hello","type":"hologram"}`,
			mockSetup:  func(m *mocks.MockScanService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid JSON body",
			body:       "invalid json",
			mockSetup:  func(m *mocks.MockScanService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "validation error",
			body: `{"content":""}`,
			mockSetup: func(m *mocks.MockScanService) {
				m.EXPECT().
					ProcessSymbol(gomock.Any(), gomock.Any()).
					Return(service.ScanState{}, &service.ValidationError{Field: "content", Message: "cannot be empty"})
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "internal error",
			body: `{"content":"x"}`,
			mockSetup: func(m *mocks.MockScanService) {
				m.EXPECT().
					ProcessSymbol(gomock.Any(), gomock.Any()).
					Return(service.ScanState{}, errors.New("boom"))
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := mocks.NewMockScanService(ctrl)
			tt.mockSetup(svc)
			handler := NewScanHandler(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/scan", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			handler.Process(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Process() status = %v, want %v, body %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.checkResponse != nil {
				tt.checkResponse(t, w)
			}
		})
	}
}

func TestScanHandler_ScanImage(t *testing.T) {
	t.Run("raw body", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockScanService(ctrl)
		svc.EXPECT().ScanImage(gomock.Any(), gomock.Not(gomock.Nil())).
			Return(service.ScanState{Description: service.NoBarcodeFound}, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/scan/image", bytes.NewReader(pngBytes(t)))
		req.Header.Set("Content-Type", "image/png")
		w := httptest.NewRecorder()
		NewScanHandler(svc).ScanImage(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("ScanImage() status = %v, body %s", w.Code, w.Body.String())
		}
		var resp ScanResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Description != service.NoBarcodeFound {
			t.Errorf("Description = %q", resp.Description)
		}
	})

	t.Run("multipart form", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockScanService(ctrl)
		svc.EXPECT().ScanImage(gomock.Any(), gomock.Any()).Return(service.ScanState{Content: "hi"}, nil)

		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		part, err := mw.CreateFormFile("image", "code.png")
		if err != nil {
			t.Fatalf("CreateFormFile() error = %v", err)
		}
		_, _ = part.Write(pngBytes(t))
		_ = mw.Close()

		req := httptest.NewRequest(http.MethodPost, "/api/scan/image", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		NewScanHandler(svc).ScanImage(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("ScanImage() status = %v, body %s", w.Code, w.Body.String())
		}
	})

	t.Run("not an image", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockScanService(ctrl)

		req := httptest.NewRequest(http.MethodPost, "/api/scan/image", bytes.NewBufferString("plain text"))
		w := httptest.NewRecorder()
		NewScanHandler(svc).ScanImage(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("ScanImage() status = %v, want 400", w.Code)
		}
	})
}

func TestScanHandler_Frame(t *testing.T) {
	tests := []struct {
		name       string
		mockSetup  func(*mocks.MockScanService)
		wantStatus int
		wantBody   string
	}{
		{
			name: "dropped frame",
			mockSetup: func(m *mocks.MockScanService) {
				m.EXPECT().HandleFrame(gomock.Any(), gomock.Any()).Return(service.FrameResult{}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"analyzed":false,"symbols":[]}`,
		},
		{
			name: "analyzed frame",
			mockSetup: func(m *mocks.MockScanService) {
				m.EXPECT().HandleFrame(gomock.Any(), gomock.Any()).Return(service.FrameResult{
					Analyzed: true,
					Symbols:  []barcode.Symbol{{Content: "abc", Format: barcode.FormatQRCode}},
				}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"analyzed":true,"symbols":[{"content":"abc","type":"QR Code"}]}`,
		},
		{
			name: "decoder failure",
			mockSetup: func(m *mocks.MockScanService) {
				m.EXPECT().HandleFrame(gomock.Any(), gomock.Any()).
					Return(service.FrameResult{Analyzed: true}, service.ErrInvalidInput)
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := mocks.NewMockScanService(ctrl)
			tt.mockSetup(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/frames", bytes.NewReader(pngBytes(t)))
			w := httptest.NewRecorder()
			NewScanHandler(svc).Frame(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("Frame() status = %v, want %v", w.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && !bytes.Equal(bytes.TrimSpace(w.Body.Bytes()), []byte(tt.wantBody)) {
				t.Errorf("Frame() body = %s, want %s", w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestScanHandler_Latest(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockScanService(ctrl)
	handler := NewScanHandler(svc)

	svc.EXPECT().Latest().Return(service.ScanState{}, false)
	w := httptest.NewRecorder()
	handler.Latest(w, httptest.NewRequest(http.MethodGet, "/api/scan/latest", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Latest() status = %v, want 404", w.Code)
	}

	svc.EXPECT().Latest().Return(service.ScanState{Content: "abc", Pending: true}, true)
	w = httptest.NewRecorder()
	handler.Latest(w, httptest.NewRequest(http.MethodGet, "/api/scan/latest", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Latest() status = %v, want 200", w.Code)
	}
	var resp ScanResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Content != "abc" || !resp.Pending {
		t.Errorf("Latest() = %+v", resp)
	}
}
