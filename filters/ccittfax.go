package filters

import (
	"github.com/jgpdf/pdfcore/internal/ccitt"
	"github.com/jgpdf/pdfcore/model"
	"github.com/pdfcpu/pdfcpu/pkg/log"
)

func init() {
	Register(model.FilterCCITTFax, ccittCodec{})
}

// ccittCodec validates and normalises CCITTFax parameters but, like
// DCTDecode/JBIG2Decode, passes the compressed payload through rather than
// decoding G3/G4 runs to pixels — see internal/ccitt's package doc for why.
type ccittCodec struct{}

func paramsFromDecodeParms(parms model.DecodeParms) ccitt.Params {
	return ccitt.Params{
		K:                int32(parms.K),
		Columns:          int32(parms.Columns),
		Rows:             int32(parms.Rows),
		EndOfBlock:       true,
		EncodedByteAlign: parms.EncodedByteAlign,
		BlackIs1:         parms.BlackIs1,
	}
}

func (ccittCodec) Decode(data []byte, parms model.DecodeParms) ([]byte, error) {
	p, err := paramsFromDecodeParms(parms).Normalize()
	if err != nil {
		return nil, err
	}
	log.Parse.Printf("filters: CCITTFaxDecode K=%d Columns=%d Rows=%d: passing payload through\n", p.K, p.Columns, p.Rows)
	return data, nil
}

func (ccittCodec) Encode(data []byte, _ model.DecodeParms) ([]byte, error) {
	return data, nil
}
