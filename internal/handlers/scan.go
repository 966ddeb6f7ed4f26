package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"
	"time"

	"qrscanner/internal/barcode"
	"qrscanner/internal/contextutil"
	"qrscanner/internal/service"
)

// MaxImageBytes bounds uploaded images and frames.
const MaxImageBytes = 10 << 20

// ScanHandler handles HTTP requests for scanning.
type ScanHandler struct {
	scanService service.ScanService
}

// NewScanHandler creates a new ScanHandler.
func NewScanHandler(scanService service.ScanService) *ScanHandler {
	return &ScanHandler{scanService: scanService}
}

// ScanRequest is a symbol decoded on the client.
type ScanRequest struct {
	Content string `json:"content"`
	Type    string `json:"type"`
}

// Directives tell the client what to do with a scan.
type Directives struct {
	CopyToClipboard  bool   `json:"copy_to_clipboard"`
	OpenInAppBrowser bool   `json:"open_in_app_browser"`
	IsURL            bool   `json:"is_url"`
	SearchURL        string `json:"search_url,omitempty"`
}

// ScanResponse is the scan state as sent to the client.
type ScanResponse struct {
	ID          int64          `json:"id,omitempty"`
	Content     string         `json:"content"`
	Type        barcode.Format `json:"type"`
	Description string         `json:"description"`
	ProductInfo string         `json:"product_info"`
	URLTitle    string         `json:"url_title,omitempty"`
	Pending     bool           `json:"pending"`
	Timestamp   time.Time      `json:"timestamp"`
	Saved       bool           `json:"saved"`
	SaveError   string         `json:"save_error,omitempty"`
	Directives  Directives     `json:"directives"`
}

// FrameResponse reports whether a submitted frame was analyzed.
type FrameResponse struct {
	Analyzed bool             `json:"analyzed"`
	Symbols  []barcode.Symbol `json:"symbols"`
}

func toScanResponse(st service.ScanState) ScanResponse {
	return ScanResponse{
		ID:          st.ID,
		Content:     st.Content,
		Type:        st.Type,
		Description: st.Description,
		ProductInfo: st.ProductInfo,
		URLTitle:    st.URLTitle,
		Pending:     st.Pending,
		Timestamp:   st.Timestamp,
		Saved:       st.Saved,
		SaveError:   st.SaveError,
		Directives: Directives{
			CopyToClipboard:  st.CopyToClipboard,
			OpenInAppBrowser: st.OpenInAppBrowser,
			IsURL:            st.IsURL,
			SearchURL:        st.SearchURL,
		},
	}
}

// Process handles POST /api/scan.
func (h *ScanHandler) Process(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	format := barcode.FormatUnknown
	if strings.TrimSpace(req.Type) != "" {
		f, err := barcode.ParseFormat(req.Type)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid type: %s", req.Type))
			return
		}
		format = f
	}

	st, err := h.scanService.ProcessSymbol(ctx, barcode.Symbol{Content: req.Content, Format: format})
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to process scan")
		return
	}
	writeJSON(ctx, w, http.StatusOK, toScanResponse(st))
}

// ScanImage handles POST /api/scan/image. The image is either the raw body
// or the "image" part of a multipart form.
func (h *ScanHandler) ScanImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	img, err := readImage(w, r, "image")
	if err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "unreadable image", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid image")
		return
	}

	st, err := h.scanService.ScanImage(ctx, img)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to scan image")
		return
	}
	writeJSON(ctx, w, http.StatusOK, toScanResponse(st))
}

// Frame handles POST /api/frames.
func (h *ScanHandler) Frame(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	img, err := readImage(w, r, "frame")
	if err != nil {
		contextutil.LoggerFromContext(ctx).DebugContext(ctx, "unreadable frame", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid frame")
		return
	}

	res, err := h.scanService.HandleFrame(ctx, img)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to analyze frame")
		return
	}

	resp := FrameResponse{Analyzed: res.Analyzed, Symbols: res.Symbols}
	if resp.Symbols == nil {
		resp.Symbols = []barcode.Symbol{}
	}
	writeJSON(ctx, w, http.StatusOK, resp)
}

// Latest handles GET /api/scan/latest.
func (h *ScanHandler) Latest(w http.ResponseWriter, r *http.Request) {
	st, ok := h.scanService.Latest()
	if !ok {
		writeError(w, http.StatusNotFound, "No scan yet")
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toScanResponse(st))
}

func readImage(w http.ResponseWriter, r *http.Request, field string) (image.Image, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxImageBytes)

	var src io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile(field)
		if err != nil {
			return nil, fmt.Errorf("missing %q form file: %w", field, err)
		}
		defer func() {
			_ = file.Close()
		}()
		src = file
	}

	img, _, err := image.Decode(src)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("unsupported image format")
		}
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}
