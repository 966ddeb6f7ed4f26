package barcode

import (
	"fmt"
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/aztec"
	"github.com/makiuchi-d/gozxing/datamatrix"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"
)

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_decoder.go -package=mocks qrscanner/internal/barcode Decoder

// Decoder turns an image into the symbols it contains.
type Decoder interface {
	Decode(img image.Image) ([]Symbol, error)
}

// ZXingDecoder decodes images with the gozxing readers.
type ZXingDecoder struct {
	readers []gozxing.Reader
	hints   map[gozxing.DecodeHintType]interface{}
}

// NewZXingDecoder creates a decoder that tries QR, Data Matrix, Aztec and
// the supported 1D formats on each image.
func NewZXingDecoder() *ZXingDecoder {
	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	return &ZXingDecoder{
		readers: []gozxing.Reader{
			qrcode.NewQRCodeReader(),
			datamatrix.NewDataMatrixReader(),
			aztec.NewAztecReader(),
			oned.NewMultiFormatUPCEANReader(hints),
			oned.NewCode128Reader(),
			oned.NewCode39Reader(),
			oned.NewCode93Reader(),
			oned.NewCodaBarReader(),
			oned.NewITFReader(),
		},
		hints: hints,
	}
}

// Decode runs every reader over img. Each reader contributes at most one
// symbol; identical symbols are reported once. An image with no code is not
// an error, it yields an empty slice.
func (d *ZXingDecoder) Decode(img image.Image) ([]Symbol, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare image: %w", err)
	}

	var symbols []Symbol
	seen := make(map[Symbol]bool)
	for _, reader := range d.readers {
		result, err := reader.Decode(bmp, d.hints)
		reader.Reset()
		if err != nil {
			// NotFound, Checksum and Format exceptions all mean this reader saw
			// nothing usable.
			continue
		}
		sym := Symbol{
			Content: result.GetText(),
			Format:  fromZXing(result.GetBarcodeFormat()),
		}
		if sym.Content == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		symbols = append(symbols, sym)
	}
	return symbols, nil
}

func fromZXing(f gozxing.BarcodeFormat) Format {
	switch f {
	case gozxing.BarcodeFormat_CODE_128:
		return FormatCode128
	case gozxing.BarcodeFormat_CODE_39:
		return FormatCode39
	case gozxing.BarcodeFormat_CODE_93:
		return FormatCode93
	case gozxing.BarcodeFormat_CODABAR:
		return FormatCodabar
	case gozxing.BarcodeFormat_DATA_MATRIX:
		return FormatDataMatrix
	case gozxing.BarcodeFormat_EAN_13:
		return FormatEAN13
	case gozxing.BarcodeFormat_EAN_8:
		return FormatEAN8
	case gozxing.BarcodeFormat_ITF:
		return FormatITF
	case gozxing.BarcodeFormat_QR_CODE:
		return FormatQRCode
	case gozxing.BarcodeFormat_UPC_A:
		return FormatUPCA
	case gozxing.BarcodeFormat_UPC_E:
		return FormatUPCE
	case gozxing.BarcodeFormat_PDF_417:
		return FormatPDF417
	case gozxing.BarcodeFormat_AZTEC:
		return FormatAztec
	default:
		return FormatUnknown
	}
}
