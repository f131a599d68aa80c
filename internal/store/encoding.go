package store

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding is the text encoding a file was read in.
type Encoding int

const (
	UTF8 Encoding = iota
	UTF8BOM
	UTF16LE
	UTF16BE
)

func (e Encoding) String() string {
	switch e {
	case UTF8:
		return "utf-8"
	case UTF8BOM:
		return "utf-8 with bom"
	case UTF16LE:
		return "utf-16le"
	case UTF16BE:
		return "utf-16be"
	default:
		return "unknown"
	}
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// ErrInvalidUTF8 is returned when text to be written is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("text is not valid UTF-8")

// DecodeText detects the encoding of data by its byte-order mark and
// returns the text without the mark. Data without a mark must be UTF-8.
func DecodeText(data []byte) (string, Encoding, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		data = data[len(bomUTF8):]
		if !utf8.Valid(data) {
			return "", UTF8BOM, ErrInvalidUTF8
		}
		return string(data), UTF8BOM, nil
	case bytes.HasPrefix(data, bomUTF16LE):
		s, err := decodeUTF16(data, unicode.LittleEndian)
		return s, UTF16LE, err
	case bytes.HasPrefix(data, bomUTF16BE):
		s, err := decodeUTF16(data, unicode.BigEndian)
		return s, UTF16BE, err
	}
	if !utf8.Valid(data) {
		return "", UTF8, ErrInvalidUTF8
	}
	return string(data), UTF8, nil
}

func decodeUTF16(data []byte, order unicode.Endianness) (string, error) {
	dec := unicode.UTF16(order, unicode.ExpectBOM).NewDecoder()
	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return "", fmt.Errorf("failed to decode utf-16 text: %w", err)
	}
	return string(out), nil
}

// EncodeText returns s as plain UTF-8 bytes. Steam rejects files with a
// byte-order mark or in UTF-16, so neither is ever produced.
func EncodeText(s string) ([]byte, error) {
	if !utf8.ValidString(s) {
		return nil, ErrInvalidUTF8
	}
	data := []byte(s)
	if bytes.HasPrefix(data, bomUTF8) {
		data = data[len(bomUTF8):]
	}
	return data, nil
}
