package reader

import (
	"bytes"

	"github.com/jgpdf/pdfcore/internal/textenc"
	"github.com/jgpdf/pdfcore/model"
)

var utf16beBOM = []byte{0xFE, 0xFF}

// decodeTextString renders a PDF text string's bytes as Go UTF-8 (7.9.2):
// the presence of the UTF-16BE byte-order mark decides the encoding, since
// in practice that is what producers rely on rather than the Encoding hint
// (parsing does not know, at lex time, whether a given string is a text
// string or an opaque byte string).
func decodeTextString(s model.ObjString) string {
	if bytes.HasPrefix(s.Raw, utf16beBOM) {
		if out, err := textenc.DecodeUTF16BE(s.Raw); err == nil {
			return out
		}
	}
	if out, err := textenc.DecodePDFDocOrWinAnsi(s.Raw); err == nil {
		return out
	}
	return string(s.Raw)
}

func infoString(dict model.ObjDict, s *objectStore, key model.ObjName) string {
	v, ok := dict.Get(key)
	if !ok {
		return ""
	}
	resolved, err := s.Resolve(v)
	if err != nil {
		return ""
	}
	str, ok := resolved.(model.ObjString)
	if !ok {
		return ""
	}
	return decodeTextString(str)
}
