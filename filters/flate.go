package filters

// Predictor postprocessing is adapted from the teacher's
// reader/parser/filters/flateDecode.go, which itself credits pdfcpu/filters.

import (
	"bytes"
	"compress/flate"
	"compress/zlib"
	"fmt"
	"io"

	"github.com/jgpdf/pdfcore/model"
)

func init() {
	Register(model.FilterFlate, flateCodec{})
}

type flateCodec struct{}

func (flateCodec) Decode(data []byte, parms model.DecodeParms) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return applyPredictor(raw, parms)
}

func (flateCodec) Encode(data []byte, parms model.DecodeParms) ([]byte, error) {
	// Predictors are a decode-side concession to producers that chose to
	// apply one; this engine never predictor-encodes its own output.
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeLenient implements lenientCodec: tries, in order, (a) raw DEFLATE
// without the zlib wrapper, (b) tolerating an Adler-32 checksum mismatch,
// (c) skipping 1..N leading bytes before the zlib stream starts. The first
// strategy to produce output wins; MaxAttempts bounds how many of (a)/(b)/(c)
// combined are tried.
func (flateCodec) DecodeLenient(data []byte, parms model.DecodeParms, opts RecoveryOptions) ([]byte, string, error) {
	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	tried := 0

	// (a) raw DEFLATE, no zlib header/trailer.
	if tried < attempts {
		tried++
		if raw, err := tryInflate(data); err == nil {
			out, err := applyPredictor(raw, parms)
			if err == nil {
				return out, "FlateDecode: recovered via raw deflate (no zlib wrapper)", nil
			}
		}
	}

	// (b) zlib header present, ignore Adler-32 mismatch / truncated
	// trailer by reading until the underlying flate stream is exhausted.
	if tried < attempts {
		tried++
		if raw, err := tryInflateIgnoringChecksum(data); err == nil {
			out, perr := applyPredictor(raw, parms)
			if perr == nil {
				return out, "FlateDecode: recovered ignoring Adler-32 mismatch", nil
			}
		}
	}

	// (c) skip leading garbage bytes before the zlib stream.
	maxSkip := attempts - tried
	if maxSkip > 16 {
		maxSkip = 16
	}
	for skip := 1; skip <= maxSkip && skip < len(data); skip++ {
		tried++
		r, err := zlib.NewReader(bytes.NewReader(data[skip:]))
		if err != nil {
			continue
		}
		raw, err := io.ReadAll(r)
		if err != nil {
			if !opts.PartialContentAllowed || len(raw) == 0 {
				continue
			}
		}
		out, perr := applyPredictor(raw, parms)
		if perr == nil {
			return out, fmt.Sprintf("FlateDecode: recovered by skipping %d header byte(s)", skip), nil
		}
	}

	return nil, "", fmt.Errorf("FlateDecode: all %d recovery attempt(s) exhausted", tried)
}

func tryInflate(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()
	return io.ReadAll(r)
}

func tryInflateIgnoringChecksum(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(r)
	if err != nil && err != io.ErrUnexpectedEOF && err != zlib.ErrChecksum {
		// zlib.Reader reports an Adler-32 mismatch as zlib.ErrChecksum
		// from Read once the deflate data is exhausted, and a missing
		// trailer as io.ErrUnexpectedEOF; any other Read-time error is
		// still fatal.
		return nil, err
	}
	return raw, nil
}

// applyPredictor reverses PNG (10-15) or TIFF (2) prediction applied
// before FlateDecode compression, per 7.4.4.4.
func applyPredictor(r []byte, parms model.DecodeParms) ([]byte, error) {
	switch parms.Predictor {
	case 0, 1:
		return r, nil
	case 2, 10, 11, 12, 13, 14, 15:
	default:
		return nil, fmt.Errorf("unsupported Predictor: %d", parms.Predictor)
	}

	colors, bpc, columns := parms.Colors, parms.BitsPerComponent, parms.Columns
	if colors <= 0 {
		colors = 1
	}
	if bpc <= 0 {
		bpc = 8
	}
	if columns <= 0 {
		columns = 1
	}

	bytesPerPixel := (bpc*colors + 7) / 8
	rowSize := bpc * colors * columns / 8
	if parms.Predictor != 2 {
		rowSize++ // PNG rows are prefixed by a filter-type byte.
	}
	if rowSize <= 0 {
		return nil, fmt.Errorf("invalid row size for predictor %d", parms.Predictor)
	}

	src := bytes.NewReader(r)
	cr := make([]byte, rowSize)
	pr := make([]byte, rowSize)
	var out []byte

	for {
		_, err := io.ReadFull(src, cr)
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		d, err := predictorRow(pr, cr, int(parms.Predictor), colors, bytesPerPixel)
		if err != nil {
			return nil, err
		}
		out = append(out, d...)
		pr, cr = cr, pr
	}
	return out, nil
}

func predictorRow(pr, cr []byte, predictor, colors, bpp int) ([]byte, error) {
	if predictor == 2 {
		return tiffHorizontalDiff(cr, colors), nil
	}

	cdat := cr[1:]
	pdat := pr[1:]
	filterType := int(cr[0])

	switch filterType {
	case 0:
	case 1:
		for i := bpp; i < len(cdat); i++ {
			cdat[i] += cdat[i-bpp]
		}
	case 2:
		for i, p := range pdat {
			cdat[i] += p
		}
	case 3:
		for i := 0; i < bpp; i++ {
			cdat[i] += pdat[i] / 2
		}
		for i := bpp; i < len(cdat); i++ {
			cdat[i] += byte((int(cdat[i-bpp]) + int(pdat[i])) / 2)
		}
	case 4:
		paethRow(cdat, pdat, bpp)
	default:
		return nil, fmt.Errorf("unknown PNG predictor row filter %d", filterType)
	}
	return cdat, nil
}

func tiffHorizontalDiff(row []byte, colors int) []byte {
	for i := 1; i < len(row)/colors; i++ {
		for j := 0; j < colors; j++ {
			row[i*colors+j] += row[(i-1)*colors+j]
		}
	}
	return row
}

func paethRow(cdat, pdat []byte, bpp int) {
	var a, b, c, pa, pb, pc int32
	for i := 0; i < bpp; i++ {
		a, c = 0, 0
		for j := i; j < len(cdat); j += bpp {
			b = int32(pdat[j])
			pa, pb = b-c, a-c
			pc = absInt32(pa + pb)
			pa, pb = absInt32(pa), absInt32(pb)
			switch {
			case pa <= pb && pa <= pc:
			case pb <= pc:
				a = b
			default:
				a = c
			}
			a += int32(cdat[j])
			a &= 0xff
			cdat[j] = byte(a)
			c = b
		}
	}
}

func absInt32(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}
