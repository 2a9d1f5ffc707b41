package parser

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// decodeText returns UTF-8 text. BOM-marked UTF-8/UTF-16 is decoded by its BOM;
// unmarked invalid UTF-8 is read as Windows-1252, which attendance device exports commonly use.
func decodeText(b []byte) ([]byte, error) {
	if bytes.HasPrefix(b, bomUTF8) || bytes.HasPrefix(b, bomUTF16LE) || bytes.HasPrefix(b, bomUTF16BE) {
		out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), b)
		return out, err
	}
	if utf8.Valid(b) {
		return b, nil
	}
	out, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), b)
	return out, err
}
