// Package ccitt models the parameters of a CCITTFax-encoded stream (7.4.6).
//
// This package intentionally does not decode G3/G4 runs to pixels: that
// requires the standard ITU-T T.4/T.6 modified-Huffman code tables (white
// run, black run, two-dimensional mode codes — several hundred entries),
// which were not present anywhere in the retrieval pack this module was
// built from; only the decoder's state machine was, referencing tables it
// never defined. Reproducing a few hundred code-table entries from memory
// risks silently wrong decodes that nothing here could catch before
// shipping, so CCITTFax is treated like DCTDecode/JBIG2Decode: parameters
// are parsed and validated, and the compressed payload is handed through
// for an external image consumer to decode.
package ccitt

import "fmt"

// Params holds the parameters of a CCITTFax-encoded stream, read from a
// stream's /DecodeParms entry.
type Params struct {
	K                int32 // encoding scheme: <0 pure 2D (G4), 0 pure 1D, >0 mixed 1D/2D (G3)
	Columns          int32
	Rows             int32
	EndOfBlock       bool
	EndOfLine        bool
	EncodedByteAlign bool
	BlackIs1         bool
}

// DefaultParams returns the defaults named in Table 11 for any key absent
// from /DecodeParms.
func DefaultParams() Params {
	return Params{
		K:          0,
		Columns:    1728,
		EndOfBlock: true,
	}
}

// Normalize fills in defaults and rejects parameter combinations the
// format does not allow.
func (p Params) Normalize() (Params, error) {
	if p.Columns <= 0 {
		p.Columns = 1728
	}
	if p.Rows < 0 {
		return p, fmt.Errorf("CCITTFaxDecode: negative Rows %d", p.Rows)
	}
	if p.Rows == 0 && !p.EndOfBlock {
		return p, fmt.Errorf("CCITTFaxDecode: Rows=0 requires EndOfBlock=true")
	}
	return p, nil
}
