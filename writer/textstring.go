package writer

import "github.com/jgpdf/pdfcore/internal/textenc"

// textStringBytes returns s encoded as PDF text-string bytes (7.9.2): the
// compact single-byte form when s survives the round trip, otherwise
// UTF-16BE with a leading byte-order mark. The caller wraps the result in
// a model.ObjString, whose own PDFString method handles the literal-string
// escaping and parenthesising.
func textStringBytes(s string) []byte {
	if textenc.CanEncodeWinAnsi(s) {
		if raw, err := textenc.EncodeWinAnsi(s); err == nil {
			return raw
		}
	}
	if raw, err := textenc.EncodeUTF16BE(s); err == nil {
		return raw
	}
	return []byte(s)
}
