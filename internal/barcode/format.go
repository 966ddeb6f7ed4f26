package barcode

import (
	"fmt"
	"strings"
)

// Format classifies a decoded optical code.
type Format int

const (
	FormatUnknown Format = iota
	FormatAll
	FormatCode128
	FormatCode39
	FormatCode93
	FormatCodabar
	FormatDataMatrix
	FormatEAN13
	FormatEAN8
	FormatITF
	FormatQRCode
	FormatUPCA
	FormatUPCE
	FormatPDF417
	FormatAztec
)

var formatNames = map[Format]string{
	FormatUnknown:    "Unknown",
	FormatAll:        "All Formats",
	FormatCode128:    "Code 128",
	FormatCode39:     "Code 39",
	FormatCode93:     "Code 93",
	FormatCodabar:    "Codabar",
	FormatDataMatrix: "Data Matrix",
	FormatEAN13:      "EAN-13",
	FormatEAN8:       "EAN-8",
	FormatITF:        "ITF",
	FormatQRCode:     "QR Code",
	FormatUPCA:       "UPC-A",
	FormatUPCE:       "UPC-E",
	FormatPDF417:     "PDF417",
	FormatAztec:      "Aztec",
}

// String returns the human-readable name stored in history.
func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return formatNames[FormatUnknown]
}

// IsRetail reports whether the format carries a retail product number
// that the product database can resolve.
func (f Format) IsRetail() bool {
	switch f {
	case FormatUPCA, FormatUPCE, FormatEAN13, FormatEAN8:
		return true
	}
	return false
}

// MarshalText encodes the format as its display name.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText accepts anything ParseFormat accepts.
func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// ParseFormat resolves a format name. Matching ignores case, spaces,
// hyphens and underscores, so "EAN-13", "ean13" and "EAN_13" are equal.
func ParseFormat(s string) (Format, error) {
	key := normalize(s)
	if key == "" {
		return FormatUnknown, fmt.Errorf("empty barcode format")
	}
	for f, name := range formatNames {
		if normalize(name) == key {
			return f, nil
		}
	}
	return FormatUnknown, fmt.Errorf("unknown barcode format %q", s)
}

func normalize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, strings.ToUpper(strings.TrimSpace(s)))
}

// Symbol is one decoded code.
type Symbol struct {
	Content string `json:"content"`
	Format  Format `json:"type"`
}
