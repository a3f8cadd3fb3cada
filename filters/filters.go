// Package filters implements the PDF stream filter chain: decoders (and,
// for the writer, encoders) for the filters named in 7.4, registered by
// name so that adding one is a registration call rather than a change to a
// switch statement in the parser or reader.
package filters

import (
	"fmt"

	"github.com/jgpdf/pdfcore/errs"
	"github.com/jgpdf/pdfcore/model"
	"github.com/pdfcpu/pdfcpu/pkg/log"
)

// Codec decodes (and, where meaningful, encodes) one filter's payload.
// DCTDecode and JBIG2Decode implement Codec as a pass-through: Decode and
// Encode both return the input unchanged, since this engine hands the
// compressed image payload to external consumers rather than decoding
// pixels itself.
type Codec interface {
	Decode(data []byte, parms model.DecodeParms) ([]byte, error)
	Encode(data []byte, parms model.DecodeParms) ([]byte, error)
}

var registry = map[model.Filter]Codec{}

// Register installs codec under name, overwriting any previous
// registration. Called from each codec file's init, and usable by callers
// wanting to override or add a filter.
func Register(name model.Filter, codec Codec) {
	registry[name] = codec
}

// Lookup returns the codec registered for name, if any.
func Lookup(name model.Filter) (Codec, bool) {
	c, ok := registry[name]
	return c, ok
}

// Chain decodes data through filters in order, applying parms[i] (or the
// zero value, defaulted, if parms is shorter than filters) to filters[i].
func Chain(filters []model.Filter, parms []model.DecodeParms, data []byte) ([]byte, error) {
	out := data
	for i, f := range filters {
		codec, ok := registry[f]
		if !ok {
			return nil, &errs.FilterError{Filter: string(f), Err: fmt.Errorf("unknown filter")}
		}
		p := model.DefaultDecodeParms()
		if i < len(parms) {
			p = parms[i]
		}
		log.Parse.Printf("filters: decoding stage %d/%d: %s\n", i+1, len(filters), f)
		decoded, err := codec.Decode(out, p)
		if err != nil {
			return nil, &errs.FilterError{Filter: string(f), Err: err}
		}
		out = decoded
	}
	return out, nil
}

// EncodeChain applies filters in order for serialisation, the reverse
// direction of Chain.
func EncodeChain(filters []model.Filter, parms []model.DecodeParms, data []byte) ([]byte, error) {
	out := data
	for i, f := range filters {
		codec, ok := registry[f]
		if !ok {
			return nil, &errs.FilterError{Filter: string(f), Err: fmt.Errorf("unknown filter")}
		}
		p := model.DefaultDecodeParms()
		if i < len(parms) {
			p = parms[i]
		}
		encoded, err := codec.Encode(out, p)
		if err != nil {
			return nil, &errs.FilterError{Filter: string(f), Err: err}
		}
		out = encoded
	}
	return out, nil
}
