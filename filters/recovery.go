package filters

import (
	"github.com/jgpdf/pdfcore/errs"
	"github.com/jgpdf/pdfcore/model"
	"github.com/pdfcpu/pdfcpu/pkg/log"
)

// RecoveryOptions controls the lenient fallback strategies a codec may try
// when its primary decode fails. The reader package maps its ParseOptions
// onto this narrower struct when calling ChainLenient, keeping filters free
// of any dependency on the reader's configuration type.
type RecoveryOptions struct {
	// MaxAttempts bounds how many fallback strategies a single filter
	// stage will try before giving up (first success wins).
	MaxAttempts int
	// PartialContentAllowed accepts truncated output from a fallback
	// strategy instead of requiring it to consume the whole input.
	PartialContentAllowed bool
}

// lenientCodec is implemented by codecs that know fallback strategies
// beyond their strict Decode, e.g. FlateDecode's raw-deflate and
// skip-header-bytes recovery paths.
type lenientCodec interface {
	DecodeLenient(data []byte, parms model.DecodeParms, opts RecoveryOptions) (out []byte, warning string, err error)
}

// ChainLenient behaves like Chain, but on a stage failure consults the
// codec's DecodeLenient (if it implements lenientCodec) before giving up.
// The returned warnings slice has one entry per stage that needed a
// fallback strategy to succeed.
func ChainLenient(filterNames []model.Filter, parms []model.DecodeParms, data []byte, opts RecoveryOptions) (out []byte, warnings []string, err error) {
	out = data
	for i, f := range filterNames {
		codec, ok := registry[f]
		if !ok {
			return nil, warnings, &errs.FilterError{Filter: string(f), Err: errUnknownFilter(f)}
		}
		p := model.DefaultDecodeParms()
		if i < len(parms) {
			p = parms[i]
		}

		decoded, err1 := codec.Decode(out, p)
		if err1 == nil {
			out = decoded
			continue
		}

		lc, ok := codec.(lenientCodec)
		if !ok {
			return nil, warnings, &errs.FilterError{Filter: string(f), Err: err1}
		}
		log.Parse.Printf("filters: %s strict decode failed (%v), attempting recovery\n", f, err1)
		decoded, warning, err2 := lc.DecodeLenient(out, p, opts)
		if err2 != nil {
			return nil, warnings, &errs.FilterError{Filter: string(f), Err: err2}
		}
		warnings = append(warnings, warning)
		out = decoded
	}
	return out, warnings, nil
}

func errUnknownFilter(f model.Filter) error {
	return &unknownFilterError{name: string(f)}
}

type unknownFilterError struct{ name string }

func (e *unknownFilterError) Error() string { return "unknown filter: " + e.name }
