package reader

import (
	"github.com/jgpdf/pdfcore/errs"
	"github.com/jgpdf/pdfcore/filters"
	"github.com/jgpdf/pdfcore/internal/diag"
	"github.com/jgpdf/pdfcore/model"
	"github.com/jgpdf/pdfcore/parser"
	"github.com/jgpdf/pdfcore/tokenizer"
)

// xrefStreamLayout is the parsed /W, /Index, /Size triple describing how
// to decode a cross-reference stream's payload (7.5.8).
type xrefStreamLayout struct {
	w     [3]int
	index [][2]int // pairs of (first object number, count)
}

func (x xrefStreamLayout) entrySize() int { return x.w[0] + x.w[1] + x.w[2] }

func (x xrefStreamLayout) count() int {
	n := 0
	for _, sub := range x.index {
		n += sub[1]
	}
	return n
}

// loadXrefStream reads the indirect stream object at offset, decodes its
// payload (applying /DecodeParms predictors the way any other stream
// would), and populates r.entries from its fixed-width records. It
// returns the /Prev offset to continue the chain, if any.
func (r *xrefResolver) loadXrefStream(tk *tokenizer.Tokenizer, offset int64) (int64, error) {
	tk.SetPosition(int(offset))

	resolveLength := func(dict model.ObjDict) (int, bool) {
		// /Length must be a direct integer on a cross-reference stream
		// (7.5.8): resolving an indirect /Length here would require the
		// very table this call is building.
		v, ok := dict.Get(model.ObjName("Length"))
		if !ok {
			return 0, false
		}
		n, ok := v.(model.ObjInt)
		return int(n), ok
	}

	_, obj, warning, err := parser.ParseIndirectObject(tk, resolveLength, !r.opts.StrictMode && r.opts.LenientStreams, r.opts.MaxRecoveryBytes)
	if err != nil {
		return 0, err
	}
	if warning != "" {
		r.warn.Add(diag.KindXref, int(offset), warning)
	}

	stream, ok := obj.(model.ObjStream)
	if !ok {
		return 0, &errs.XrefError{Reason: "xref entry does not point at a stream"}
	}
	dict := stream.Dict

	if t, ok := dict.Get(model.ObjName("Type")); ok {
		if name, ok := t.(model.ObjName); ok && name != "XRef" {
			return 0, &errs.XrefError{Reason: "object at xref offset is not of /Type /XRef"}
		}
	}

	layout, err := parseXrefStreamLayout(dict)
	if err != nil {
		return 0, err
	}

	filterNames, parms, err := filtersFromStreamDict(dict)
	if err != nil {
		return 0, err
	}
	decoded, err := filters.Chain(filterNames, parms, stream.Raw)
	if err != nil {
		return 0, &errs.XrefError{Reason: "cannot decode xref stream payload", Err: err}
	}

	if err := r.extractEntriesFromXrefStream(decoded, layout); err != nil {
		return 0, err
	}

	return r.mergeTrailer(dict)
}

func parseXrefStreamLayout(dict model.ObjDict) (xrefStreamLayout, error) {
	var layout xrefStreamLayout

	wObj, ok := dict.Get(model.ObjName("W"))
	if !ok {
		return layout, &errs.XrefError{Reason: "xref stream missing /W"}
	}
	wArr, ok := wObj.(model.ObjArray)
	if !ok || len(wArr) < 3 {
		return layout, &errs.XrefError{Reason: "xref stream /W must be an array of 3 integers"}
	}
	for i := 0; i < 3; i++ {
		n, ok := wArr[i].(model.ObjInt)
		if !ok || n < 0 {
			return layout, &errs.XrefError{Reason: "xref stream /W entry is not a non-negative integer"}
		}
		layout.w[i] = int(n)
	}

	size := 0
	if s, ok := dict.Get(model.ObjName("Size")); ok {
		if n, ok := s.(model.ObjInt); ok {
			size = int(n)
		}
	}

	if idxObj, ok := dict.Get(model.ObjName("Index")); ok {
		if arr, ok := idxObj.(model.ObjArray); ok && len(arr)%2 == 0 {
			for i := 0; i+1 < len(arr); i += 2 {
				first, ok1 := arr[i].(model.ObjInt)
				count, ok2 := arr[i+1].(model.ObjInt)
				if ok1 && ok2 {
					layout.index = append(layout.index, [2]int{int(first), int(count)})
				}
			}
		}
	}
	if layout.index == nil {
		layout.index = [][2]int{{0, size}}
	}
	return layout, nil
}

// extractEntriesFromXrefStream walks the decoded, fixed-width records
// and records one Entry per (subsection, slot), skipping any entry whose
// (number, generation) a newer section already populated.
func (r *xrefResolver) extractEntriesFromXrefStream(buf []byte, layout xrefStreamLayout) error {
	entrySize, count := layout.entrySize(), layout.count()
	total := entrySize * count
	if entrySize == 0 || len(buf) < total {
		return &errs.XrefError{Reason: "xref stream payload shorter than /W * entry count"}
	}
	buf = buf[:total]

	i1, i2, i3 := layout.w[0], layout.w[1], layout.w[2]
	j := 0
	for _, sub := range layout.index {
		first, n := sub[0], sub[1]
		for i := 0; i < n; i++ {
			objNum := first + i
			rec := buf[j*entrySize : (j+1)*entrySize]
			j++

			typeField := 1 // a zero-width type field defaults to 1 (in use)
			field := rec
			if i1 > 0 {
				typeField = int(bufToInt(rec[:i1]))
				field = rec[i1:]
			}
			f2 := bufToInt(field[:i2])
			f3 := bufToInt(field[i2 : i2+i3])

			ref := model.ObjRef{Num: objNum, Gen: int(f3)}
			var entry Entry
			switch typeField {
			case 0:
				entry = Entry{Kind: Free, Offset: f2, Generation: int(f3)}
			case 1:
				entry = Entry{Kind: InUse, Offset: f2, Generation: int(f3)}
			case 2:
				entry = Entry{Kind: Compressed, StreamNum: int(f2), StreamIndex: int(f3)}
				ref.Gen = 0 // compressed objects always have generation 0
			default:
				if r.opts.StrictMode {
					return &errs.XrefError{Reason: "unknown xref stream entry type"}
				}
				r.warn.Add(diag.KindXref, 0, "unknown xref stream entry type treated as in-use")
				entry = Entry{Kind: InUse, Offset: f2, Generation: int(f3)}
			}

			if _, exists := r.entries[ref]; !exists {
				r.entries[ref] = entry
			}
		}
	}
	return nil
}

func bufToInt(b []byte) int64 {
	var v int64
	for _, c := range b {
		v = v<<8 | int64(c)
	}
	return v
}
