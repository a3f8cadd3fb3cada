package filters

import (
	"bytes"
	"encoding/ascii85"
	"fmt"

	"github.com/jgpdf/pdfcore/model"
)

func init() {
	Register(model.FilterASCII85, ascii85Codec{})
}

type ascii85Codec struct{}

func (ascii85Codec) Decode(data []byte, _ model.DecodeParms) ([]byte, error) {
	src := data
	if i := bytes.Index(src, []byte("~>")); i >= 0 {
		src = src[:i]
	}
	out := make([]byte, len(src))
	n, _, err := ascii85.Decode(out, src, true)
	if err != nil {
		return nil, fmt.Errorf("ASCII85Decode: %w", err)
	}
	return out[:n], nil
}

func (ascii85Codec) Encode(data []byte, _ model.DecodeParms) ([]byte, error) {
	var buf bytes.Buffer
	w := ascii85.NewEncoder(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	buf.WriteString("~>")
	return buf.Bytes(), nil
}
