package filters

import (
	"bytes"
	"io"

	"github.com/hhrutter/lzw"
	"github.com/jgpdf/pdfcore/model"
)

func init() {
	Register(model.FilterLZW, lzwCodec{})
}

// lzwCodec uses hhrutter/lzw rather than the standard library's
// compress/lzw: PDF's variant toggles the "early change" bit, which the
// stdlib codec does not expose.
type lzwCodec struct{}

func (lzwCodec) Decode(data []byte, parms model.DecodeParms) ([]byte, error) {
	earlyChange := parms.EarlyChange != 0
	r := lzw.NewReader(bytes.NewReader(data), earlyChange)
	defer r.Close()
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return applyPredictor(raw, parms)
}

func (lzwCodec) Encode(data []byte, parms model.DecodeParms) ([]byte, error) {
	earlyChange := parms.EarlyChange != 0
	var buf bytes.Buffer
	w := lzw.NewWriter(&buf, earlyChange)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
