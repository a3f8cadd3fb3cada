package reader

import (
	"strconv"

	"github.com/jgpdf/pdfcore/errs"
	"github.com/jgpdf/pdfcore/internal/diag"
	objscan "github.com/jgpdf/pdfcore/internal/recover"
	"github.com/jgpdf/pdfcore/model"
	"github.com/jgpdf/pdfcore/parser"
	"github.com/jgpdf/pdfcore/tokenizer"
	"github.com/pdfcpu/pdfcpu/pkg/log"
)

// EntryKind is the tag of a cross-reference table entry (7.5.4/7.5.8).
type EntryKind uint8

const (
	// Free marks an object number that is not in use; it chains to the
	// next free number via Offset and carries a generation for reuse.
	Free EntryKind = iota
	// InUse marks a regular object at a byte offset.
	InUse
	// Compressed marks an object stored inside an object stream.
	Compressed
)

// Entry is one resolved (number, generation) -> location mapping.
type Entry struct {
	Kind EntryKind

	// Offset is valid for InUse; Generation for Free and InUse.
	Offset     int64
	Generation int

	// StreamNum/StreamIndex are valid for Compressed: the object number
	// of the containing /ObjStm and this object's index within it.
	StreamNum   int
	StreamIndex int
}

// Trailer is the merged trailer dictionary across every xref section
// visited, newest entry winning per key (7.5.6).
type Trailer struct {
	Size       int
	Root       *model.ObjRef
	Info       *model.ObjRef
	ID         [2]string
	Encrypt    model.Object
	HasEncrypt bool
}

// table is the full cross-reference index: (number,generation) -> Entry.
type table map[model.ObjRef]Entry

// xrefResolver builds a table plus merged trailer by walking the
// /Prev (and hybrid /XRefStm) chain starting at the offset named by
// startxref, per §4.4's state machine: INITIAL -> find startxref ->
// LOAD_SECTION -> MERGE -> follow /Prev/XRefStm -> ... until the visited
// set closes the loop.
type xrefResolver struct {
	data    []byte
	opts    ParseOptions
	warn    *diag.Collector
	entries table
	trailer Trailer
}

func newXrefResolver(data []byte, opts ParseOptions, warn *diag.Collector) *xrefResolver {
	return &xrefResolver{data: data, opts: opts, warn: warn, entries: table{}}
}

// Resolve locates startxref and walks the chain. On a missing or
// unreadable startxref, it falls back to a full-file recovery scan when
// lenient mode allows it.
func (r *xrefResolver) Resolve() (table, Trailer, error) {
	offset, err := findStartXref(r.data)
	if err != nil {
		if r.opts.StrictMode {
			return nil, Trailer{}, &errs.XrefError{Reason: "cannot locate startxref", Err: err}
		}
		return r.recover()
	}

	visited := map[int64]bool{}
	for offset != 0 {
		if visited[offset] {
			break // closes the /Prev cycle; stop instead of looping forever
		}
		visited[offset] = true

		next, err := r.loadSection(offset)
		if err != nil {
			if r.opts.StrictMode {
				return nil, Trailer{}, &errs.XrefError{Reason: "cannot parse xref section", Err: err}
			}
			r.warn.Add(diag.KindXref, int(offset), "xref section unreadable, falling back to full-file recovery: "+err.Error())
			return r.recover()
		}
		offset = next
	}

	if r.trailer.Root == nil {
		if r.opts.StrictMode {
			return nil, Trailer{}, &errs.XrefError{Reason: "trailer has no /Root"}
		}
		return r.recover()
	}
	return r.entries, r.trailer, nil
}

// recover rebuilds a synthetic InUse-only table from a full-file scan,
// per §4.4's recovery clause and Design Notes §9's open question on
// unknown entry types — here applied to the coarser case of a wholly
// missing xref chain.
func (r *xrefResolver) recover() (table, Trailer, error) {
	res := objscan.ScanObjects(r.data)
	if len(res.Entries) == 0 {
		return nil, Trailer{}, &errs.XrefError{Reason: "no object declarations found in full-file recovery scan"}
	}
	for _, e := range res.Entries {
		ref := model.ObjRef{Num: e.Num, Gen: e.Gen}
		r.entries[ref] = Entry{Kind: InUse, Offset: int64(e.Offset), Generation: e.Gen}
	}
	r.warn.Add(diag.KindXref, 0, "xref table rebuilt from full-file recovery scan")

	if res.HasTrailer {
		tk := tokenizer.NewTokenizer(r.data[res.TrailerOffset:])
		if _, err := r.processTrailer(tk); err != nil {
			r.warn.Add(diag.KindXref, res.TrailerOffset, "recovered trailer dictionary unreadable: "+err.Error())
		}
	}
	if r.trailer.Root == nil {
		if root, ok := r.guessRoot(); ok {
			r.trailer.Root = &root
			r.trailer.Size = r.maxObjectNumber() + 1
			r.warn.Add(diag.KindXref, 0, "no usable trailer found; /Root inferred from recovered /Catalog object")
		} else {
			return nil, Trailer{}, &errs.XrefError{Reason: "recovery scan found no usable trailer or /Catalog object"}
		}
	}
	return r.entries, r.trailer, nil
}

// guessRoot scans recovered objects for one whose dictionary has
// /Type /Catalog, for files where even the trailer was lost.
func (r *xrefResolver) guessRoot() (model.ObjRef, bool) {
	for ref, entry := range r.entries {
		if entry.Kind != InUse {
			continue
		}
		tk := tokenizer.NewTokenizer(r.data)
		tk.SetPosition(int(entry.Offset))
		decl, err := parser.ParseObjectDeclaration(tk)
		if err != nil || decl.Num != ref.Num {
			continue
		}
		obj, err := parser.NewParserFromTokenizer(tk).ParseObject()
		if err != nil {
			continue
		}
		dict, ok := obj.(model.ObjDict)
		if !ok {
			continue
		}
		if t, ok := dict.Get(model.ObjName("Type")); ok {
			if name, ok := t.(model.ObjName); ok && name == "Catalog" {
				return ref, true
			}
		}
	}
	return model.ObjRef{}, false
}

func (r *xrefResolver) maxObjectNumber() int {
	max := 0
	for ref := range r.entries {
		if ref.Num > max {
			max = ref.Num
		}
	}
	return max
}

// loadSection reads one xref section (classical table or xref stream)
// at offset and returns the next offset to follow (0 if none).
func (r *xrefResolver) loadSection(offset int64) (int64, error) {
	tk := tokenizer.NewTokenizer(r.data)
	tk.SetPosition(int(offset))

	first, err := tk.PeekToken()
	if err != nil {
		return 0, err
	}
	if first.IsOther("xref") {
		_, _ = tk.NextToken()
		return r.loadClassicalSection(tk)
	}
	return r.loadXrefStream(tk, offset)
}

func (r *xrefResolver) loadClassicalSection(tk *tokenizer.Tokenizer) (int64, error) {
	for {
		next, err := tk.PeekToken()
		if err != nil {
			return 0, err
		}
		if next.IsOther("trailer") {
			_, _ = tk.NextToken()
			break
		}
		if err := r.parseSubsection(tk); err != nil {
			return 0, err
		}
	}
	return r.processTrailer(tk)
}

func (r *xrefResolver) parseSubsection(tk *tokenizer.Tokenizer) error {
	startTok, err := tk.NextToken()
	if err != nil {
		return err
	}
	start, err := startTok.Int()
	if err != nil {
		return &errs.XrefError{Reason: "invalid subsection start object number", Err: err}
	}
	countTok, err := tk.NextToken()
	if err != nil {
		return err
	}
	count, err := countTok.Int()
	if err != nil {
		return &errs.XrefError{Reason: "invalid subsection count", Err: err}
	}

	for i := 0; i < count; i++ {
		if err := r.parseEntry(tk, start+i); err != nil {
			return err
		}
	}
	return nil
}

func (r *xrefResolver) parseEntry(tk *tokenizer.Tokenizer, objNum int) error {
	offsetTok, err := tk.NextToken()
	if err != nil {
		return err
	}
	offset, err := strconv.ParseInt(offsetTok.Value, 10, 64)
	if err != nil {
		return &errs.XrefError{Reason: "invalid xref entry offset", Err: err}
	}
	genTok, err := tk.NextToken()
	if err != nil {
		return err
	}
	gen, err := genTok.Int()
	if err != nil {
		return &errs.XrefError{Reason: "invalid xref entry generation", Err: err}
	}
	kindTok, err := tk.NextToken()
	if err != nil {
		return err
	}
	var kind EntryKind
	switch kindTok.Value {
	case "n":
		kind = InUse
	case "f":
		kind = Free
	default:
		// §9 open question: unknown entry types are corruption under
		// strict, a synthesised InUse entry with a warning under lenient.
		if r.opts.StrictMode {
			return &errs.XrefError{Reason: "unknown xref entry type " + kindTok.Value}
		}
		r.warn.Add(diag.KindXref, kindTok.Pos, "unknown xref entry type "+kindTok.Value+" treated as in-use")
		kind = InUse
	}

	ref := model.ObjRef{Num: objNum, Gen: gen}
	if _, exists := r.entries[ref]; exists {
		return nil // earlier (newer) section already won
	}
	if kind == InUse && offset == 0 {
		return nil
	}
	r.entries[ref] = Entry{Kind: kind, Offset: offset, Generation: gen}
	return nil
}

func (r *xrefResolver) processTrailer(tk *tokenizer.Tokenizer) (int64, error) {
	obj, err := parser.NewParserFromTokenizer(tk).ParseObject()
	if err != nil {
		return 0, err
	}
	dict, ok := obj.(model.ObjDict)
	if !ok {
		return 0, &errs.SyntaxError{Reason: "trailer is not a dictionary"}
	}
	return r.mergeTrailer(dict)
}

func (r *xrefResolver) mergeTrailer(dict model.ObjDict) (int64, error) {
	if r.trailer.Size == 0 {
		if size, ok := dict.Get(model.ObjName("Size")); ok {
			if n, ok := size.(model.ObjInt); ok {
				r.trailer.Size = int(n)
			}
		}
	}
	if r.trailer.Root == nil {
		if root, ok := dict.Get(model.ObjName("Root")); ok {
			if ref, ok := root.(model.ObjRef); ok {
				r.trailer.Root = &ref
			}
		}
	}
	if r.trailer.Info == nil {
		if info, ok := dict.Get(model.ObjName("Info")); ok {
			if ref, ok := info.(model.ObjRef); ok {
				r.trailer.Info = &ref
			}
		}
	}
	if !r.trailer.HasEncrypt {
		if enc, ok := dict.Get(model.ObjName("Encrypt")); ok {
			r.trailer.Encrypt = enc
			r.trailer.HasEncrypt = true
		}
	}
	if r.trailer.ID == [2]string{} {
		if id, ok := dict.Get(model.ObjName("ID")); ok {
			if arr, ok := id.(model.ObjArray); ok && len(arr) == 2 {
				if a, ok := arr[0].(model.ObjString); ok {
					r.trailer.ID[0] = string(a.Raw)
				}
				if b, ok := arr[1].(model.ObjString); ok {
					r.trailer.ID[1] = string(b.Raw)
				}
			}
		}
	}

	var prev int64
	if p, ok := dict.Get(model.ObjName("Prev")); ok {
		if n, ok := p.(model.ObjInt); ok {
			prev = int64(n)
		}
	}

	// Hybrid files: a classical section may point at an xref stream via
	// /XRefStm; 1.5-conformant readers process it before the /Prev chain.
	if stm, ok := dict.Get(model.ObjName("XRefStm")); ok {
		if n, ok := stm.(model.ObjInt); ok {
			if _, err := r.loadSection(int64(n)); err != nil {
				log.Parse.Printf("xref: hybrid XRefStm at %d unreadable: %v\n", n, err)
			}
		}
	}
	return prev, nil
}

// findStartXref scans the trailing region of the file for the last
// "startxref <offset> %%EOF", mirroring the teacher's backward buffered
// search but bounded by a fixed, generous window rather than growing
// unboundedly.
func findStartXref(data []byte) (int64, error) {
	const window = 2048
	start := len(data) - window
	if start < 0 {
		start = 0
	}
	tail := data[start:]

	idx := lastIndex(tail, "startxref")
	if idx < 0 {
		return 0, &errs.XrefError{Reason: "no startxref keyword found"}
	}
	tk := tokenizer.NewTokenizer(tail[idx+len("startxref"):])
	tok, err := tk.NextToken()
	if err != nil {
		return 0, &errs.XrefError{Reason: "unreadable startxref offset", Err: err}
	}
	offset, err := tok.Int()
	if err != nil || offset < 0 || int64(offset) >= int64(len(data)) {
		return 0, &errs.XrefError{Reason: "startxref offset out of range"}
	}
	return int64(offset), nil
}

func lastIndex(data []byte, needle string) int {
	for i := len(data) - len(needle); i >= 0; i-- {
		if string(data[i:i+len(needle)]) == needle {
			return i
		}
	}
	return -1
}
