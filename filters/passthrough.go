package filters

import "github.com/jgpdf/pdfcore/model"

func init() {
	Register(model.FilterDCT, passthroughCodec{})
	Register(model.FilterJBIG2, passthroughCodec{})
}

// passthroughCodec hands compressed image payloads through unchanged: this
// engine decodes PDF structure, not JPEG or JBIG2 pixel data, which is
// explicitly an external-collaborator concern.
type passthroughCodec struct{}

func (passthroughCodec) Decode(data []byte, _ model.DecodeParms) ([]byte, error) {
	return data, nil
}

func (passthroughCodec) Encode(data []byte, _ model.DecodeParms) ([]byte, error) {
	return data, nil
}
