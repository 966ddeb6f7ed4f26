package barcode

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// DefaultQRSize is the edge length in pixels of generated QR images.
const DefaultQRSize = 512

// EncodeQR renders content as a square QR code PNG of size pixels.
func EncodeQR(content string, size int) ([]byte, error) {
	if content == "" {
		return nil, fmt.Errorf("empty QR content")
	}
	if size <= 0 {
		size = DefaultQRSize
	}

	matrix, err := qrcode.NewQRCodeWriter().Encode(content, gozxing.BarcodeFormat_QR_CODE, size, size, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, matrix); err != nil {
		return nil, fmt.Errorf("failed to write PNG: %w", err)
	}
	return buf.Bytes(), nil
}
