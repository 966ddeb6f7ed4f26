package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"qrscanner/internal/barcode"
	"qrscanner/internal/contextutil"
	"qrscanner/internal/vcard"
)

const (
	minQRSize = 64
	maxQRSize = 2048
)

// MyQRHandler renders the user's contact card as a QR code.
type MyQRHandler struct{}

// NewMyQRHandler creates a new MyQRHandler.
func NewMyQRHandler() *MyQRHandler {
	return &MyQRHandler{}
}

// ServeHTTP handles POST /api/myqr?size=. The body is a vcard.Card and the
// response is a PNG image.
func (h *MyQRHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var card vcard.Card
	if err := json.NewDecoder(r.Body).Decode(&card); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if card.Empty() {
		writeError(w, http.StatusBadRequest, "Contact card is empty")
		return
	}

	size := barcode.DefaultQRSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < minQRSize || v > maxQRSize {
			writeError(w, http.StatusBadRequest, "size must be an integer between 64 and 2048")
			return
		}
		size = v
	}

	png, err := barcode.EncodeQR(card.String(), size)
	if err != nil {
		logger.ErrorContext(ctx, "failed to encode contact QR", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		logger.WarnContext(ctx, "failed to write QR image", "error", err)
	}
}
