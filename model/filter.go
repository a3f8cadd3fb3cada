package model

// Filter names one of the standard PDF stream filters, as found in a
// /Filter entry.
type Filter string

const (
	FilterASCII85   Filter = "ASCII85Decode"
	FilterASCIIHex  Filter = "ASCIIHexDecode"
	FilterRunLength Filter = "RunLengthDecode"
	FilterLZW       Filter = "LZWDecode"
	FilterFlate     Filter = "FlateDecode"
	FilterCCITTFax  Filter = "CCITTFaxDecode"
	FilterJBIG2     Filter = "JBIG2Decode"
	FilterDCT       Filter = "DCTDecode"
)

// NewFilter validates s against the known filter names, returning "" if it
// is not one of them.
func NewFilter(s string) Filter {
	f := Filter(s)
	switch f {
	case FilterASCII85, FilterASCIIHex, FilterRunLength, FilterLZW,
		FilterFlate, FilterCCITTFax, FilterJBIG2, FilterDCT:
		return f
	default:
		return ""
	}
}

// DecodeParms carries a single stream filter's parameters, read from a
// /DecodeParms dictionary entry. Only the keys relevant to the filters this
// engine implements are modelled explicitly; everything else is ignored.
type DecodeParms struct {
	Predictor        int // 1 (no prediction) by default
	Colors           int // default 1
	BitsPerComponent int // default 8
	Columns          int // default 1
	EarlyChange      int // LZW only, default 1

	// CCITTFax-specific.
	K                int // default 0
	Rows             int
	BlackIs1         bool
	EncodedByteAlign bool
}

// DefaultDecodeParms returns the parameter defaults mandated by the spec
// for a filter that declares no /DecodeParms entry, or whose entry omits a
// given key.
func DefaultDecodeParms() DecodeParms {
	return DecodeParms{
		Predictor:        1,
		Colors:           1,
		BitsPerComponent: 8,
		Columns:          1,
		EarlyChange:      1,
	}
}
