// Package encoding detects the text encoding of a raw GEDCOM byte buffer
// from its byte-order mark and decodes it to a UTF-8 string.
//
// Detection is a sequence of fixed-length prefix checks:
//
//	EF BB BF    strip 3 bytes, decode the remainder as UTF-8
//	FF FE       strip 2 bytes, decode the remainder as UTF-16 little-endian
//	FE FF       strip 2 bytes, decode the remainder as UTF-16 little-endian
//	(no mark)   decode the whole buffer as UTF-8
//
// Both UTF-16 marks route to the little-endian decode; byte order is not
// actually respected for the big-endian mark. Existing consumers depend
// on this exact behavior, so it must not change without a data migration
// for previously decoded sources.
//
// The character-set *tag* reported in parse metadata does not come from
// here; it is read from the HEAD/CHAR record during normalization.
package encoding

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"

	"github.com/lindenrow/rootline/core/errors"
)

// Byte-order marks, longest first.
var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Decode converts a raw byte buffer to a UTF-8 string according to its
// byte-order mark. A buffer that cannot be interpreted under the detected
// scheme yields a DecodeError; there is no fallback to another scheme.
func Decode(data []byte) (string, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return decodeUTF8(data[len(bomUTF8):])
	case bytes.HasPrefix(data, bomUTF16LE), bytes.HasPrefix(data, bomUTF16BE):
		return decodeUTF16LE(data[2:])
	default:
		return decodeUTF8(data)
	}
}

// HasBOM reports whether the buffer starts with a recognized byte-order
// mark.
func HasBOM(data []byte) bool {
	return bytes.HasPrefix(data, bomUTF8) ||
		bytes.HasPrefix(data, bomUTF16LE) ||
		bytes.HasPrefix(data, bomUTF16BE)
}

func decodeUTF8(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errors.NewDecode("UTF-8", errors.ErrDecode)
	}
	return string(data), nil
}

func decodeUTF16LE(data []byte) (string, error) {
	dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	out, err := dec.Bytes(data)
	if err != nil {
		return "", errors.NewDecode("UTF-16", err)
	}
	return string(out), nil
}
