// Package textenc converts between PDF text-string bytes (7.9.2) and Go
// strings, for the two encodings the format defines: UTF-16BE with a
// byte-order mark, and a single-byte encoding (PDFDocEncoding or
// WinAnsiEncoding, context-dependent).
package textenc

import (
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// DecodeUTF16BE decodes a text string's raw bytes, which are expected to
// start with the 0xFE 0xFF byte-order mark (7.9.2.2).
func DecodeUTF16BE(raw []byte) (string, error) {
	dec := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
	out, err := dec.Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// EncodeUTF16BE renders s as a text string with a leading byte-order
// mark, the form the writer uses for any string outside ASCII.
func EncodeUTF16BE(s string) ([]byte, error) {
	enc := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder()
	return enc.Bytes([]byte(s))
}

// DecodePDFDocOrWinAnsi decodes a single-byte PDF text string. The full
// PDFDocEncoding glyph table (Annex D) diverges from Windows-1252 only in
// its control-code range (0x18-0x1F) and a handful of typographic
// symbols in 0x80-0x9F; golang.org/x/text ships no PDFDocEncoding codec,
// so this decodes via Windows-1252, which is exact for WinAnsiEncoding
// and a close, practical approximation for PDFDocEncoding — good enough
// for the metadata and annotation strings this engine surfaces as text
// rather than re-rendering.
func DecodePDFDocOrWinAnsi(raw []byte) (string, error) {
	return charmap.Windows1252.NewDecoder().String(string(raw))
}

// EncodeWinAnsi renders s back to single-byte Windows-1252/WinAnsi bytes,
// for writer output of strings that fit entirely in that repertoire.
func EncodeWinAnsi(s string) ([]byte, error) {
	return charmap.Windows1252.NewEncoder().Bytes([]byte(s))
}

// CanEncodeWinAnsi reports whether s round-trips through WinAnsi without
// substitution, which the writer uses to decide between the single-byte
// and UTF-16BE text-string forms.
func CanEncodeWinAnsi(s string) bool {
	_, err := EncodeWinAnsi(s)
	return err == nil
}
