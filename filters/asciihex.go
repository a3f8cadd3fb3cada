package filters

import (
	"fmt"

	"github.com/jgpdf/pdfcore/model"
)

func init() {
	Register(model.FilterASCIIHex, asciiHexCodec{})
}

type asciiHexCodec struct{}

func (asciiHexCodec) Decode(data []byte, _ model.DecodeParms) ([]byte, error) {
	out := make([]byte, 0, len(data)/2)
	var hi byte
	haveHi := false
	for _, c := range data {
		if c == '>' {
			break
		}
		if isASCIIHexWhitespace(c) {
			continue
		}
		v, ok := hexNibble(c)
		if !ok {
			return nil, fmt.Errorf("ASCIIHexDecode: invalid character %q", c)
		}
		if !haveHi {
			hi = v
			haveHi = true
			continue
		}
		out = append(out, hi<<4|v)
		haveHi = false
	}
	if haveHi {
		out = append(out, hi<<4)
	}
	return out, nil
}

func (asciiHexCodec) Encode(data []byte, _ model.DecodeParms) ([]byte, error) {
	const hexDigits = "0123456789abcdef"
	out := make([]byte, 0, len(data)*2+1)
	for _, b := range data {
		out = append(out, hexDigits[b>>4], hexDigits[b&0xf])
	}
	out = append(out, '>')
	return out, nil
}

func isASCIIHexWhitespace(c byte) bool {
	switch c {
	case 0, 9, 10, 12, 13, 32:
		return true
	}
	return false
}

func hexNibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
