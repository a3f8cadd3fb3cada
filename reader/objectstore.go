package reader

import (
	"bytes"
	"strconv"

	"github.com/jgpdf/pdfcore/errs"
	"github.com/jgpdf/pdfcore/filters"
	"github.com/jgpdf/pdfcore/internal/diag"
	"github.com/jgpdf/pdfcore/model"
	"github.com/jgpdf/pdfcore/parser"
	"github.com/jgpdf/pdfcore/tokenizer"
	"github.com/pdfcpu/pdfcpu/pkg/log"
)

// objectStore is the on-demand materialisation layer (§4.5): it owns
// every parsed object for the reader's lifetime, decoding streams lazily
// and resolving indirect references without recursion.
type objectStore struct {
	data    []byte
	opts    ParseOptions
	warn    *diag.Collector
	entries table

	resolved  map[model.ObjRef]model.Object
	resolving map[model.ObjRef]bool // per-traversal guard: active resolutions only

	objStreams map[int][]model.Object
}

func newObjectStore(data []byte, opts ParseOptions, warn *diag.Collector, entries table) *objectStore {
	return &objectStore{
		data:       data,
		opts:       opts,
		warn:       warn,
		entries:    entries,
		resolved:   map[model.ObjRef]model.Object{},
		resolving:  map[model.ObjRef]bool{},
		objStreams: map[int][]model.Object{},
	}
}

// Get materialises the object named by ref. An undefined or cyclic
// reference resolves to ObjNull rather than an error (7.3.10): the
// resolving set only ever holds the references on the current call
// stack, so revisiting one mid-resolution is always a cycle, never a
// legitimate diamond (those are served from resolved once the first
// resolution completes).
func (s *objectStore) Get(ref model.ObjRef) (model.Object, error) {
	if obj, ok := s.resolved[ref]; ok {
		return obj, nil
	}
	if s.resolving[ref] {
		s.warn.Add(diag.KindReference, 0, "cyclic reference to object "+strconv.Itoa(ref.Num)+" "+strconv.Itoa(ref.Gen)+" resolved as null")
		return model.ObjNull{}, nil
	}

	entry, ok := s.entries[ref]
	if !ok {
		return model.ObjNull{}, nil
	}

	s.resolving[ref] = true
	obj, err := s.resolveEntry(ref, entry)
	delete(s.resolving, ref)
	if err != nil {
		return nil, err
	}

	s.resolved[ref] = obj
	return obj, nil
}

// Resolve follows o if it is an indirect reference, otherwise returns it
// unchanged; used throughout the reader wherever a dictionary value may
// legally be direct or indirect (e.g. /Length, /Root).
func (s *objectStore) Resolve(o model.Object) (model.Object, error) {
	ref, ok := o.(model.ObjRef)
	if !ok {
		return o, nil
	}
	return s.Get(ref)
}

func (s *objectStore) resolveEntry(ref model.ObjRef, entry Entry) (model.Object, error) {
	switch entry.Kind {
	case Free:
		return model.ObjNull{}, nil
	case Compressed:
		return s.resolveCompressed(entry)
	default:
		return s.resolveInUse(ref, entry)
	}
}

func (s *objectStore) resolveInUse(ref model.ObjRef, entry Entry) (model.Object, error) {
	if entry.Offset < 0 || int(entry.Offset) >= len(s.data) {
		return nil, &errs.ReferenceError{Num: ref.Num, Gen: ref.Gen, Reason: "xref offset out of range"}
	}

	tk := tokenizer.NewTokenizer(s.data)
	tk.SetPosition(int(entry.Offset))

	resolveLength := func(dict model.ObjDict) (int, bool) {
		v, ok := dict.Get(model.ObjName("Length"))
		if !ok {
			return 0, false
		}
		resolved, err := s.Resolve(v)
		if err != nil {
			return 0, false
		}
		n, ok := resolved.(model.ObjInt)
		return int(n), ok
	}

	decl, obj, warning, err := parser.ParseIndirectObject(tk, resolveLength, !s.opts.StrictMode && s.opts.LenientStreams, s.opts.MaxRecoveryBytes)
	if err != nil {
		if s.opts.IgnoreCorruptStreams {
			s.warn.Add(diag.KindReference, int(entry.Offset), "object unreadable, substituting null: "+err.Error())
			return model.ObjNull{}, nil
		}
		return nil, &errs.ReferenceError{Num: ref.Num, Gen: ref.Gen, Reason: err.Error()}
	}
	if warning != "" {
		s.warn.Add(diag.KindFilter, int(entry.Offset), warning)
	}
	if decl.Num != ref.Num {
		s.warn.Add(diag.KindReference, int(entry.Offset), "object at offset declares a different number than the xref table expects")
	}

	stream, isStream := obj.(model.ObjStream)
	if !isStream {
		return obj, nil
	}
	return s.decodeStream(stream)
}

// decodeStream applies the dictionary's filter chain to a stream's raw
// payload, falling back to the lenient chain (and, if configured, an
// empty payload) when strict decoding fails.
func (s *objectStore) decodeStream(stream model.ObjStream) (model.Object, error) {
	names, parms, err := filtersFromStreamDict(stream.Dict)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return stream, nil
	}

	if s.opts.StrictMode {
		decoded, err := filters.Chain(names, parms, stream.Raw)
		if err != nil {
			return nil, err
		}
		return model.ObjStream{Dict: stream.Dict, Raw: decoded}, nil
	}

	opts := filters.RecoveryOptions{MaxAttempts: s.opts.MaxRecoveryAttempts, PartialContentAllowed: s.opts.PartialContentAllowed}
	decoded, warnings, err := filters.ChainLenient(names, parms, stream.Raw, opts)
	for _, w := range warnings {
		s.warn.Add(diag.KindFilter, 0, w)
	}
	if err != nil {
		if s.opts.IgnoreCorruptStreams {
			s.warn.Add(diag.KindFilter, 0, "stream filter failed irrecoverably, substituting empty payload: "+err.Error())
			return model.ObjStream{Dict: stream.Dict, Raw: nil}, nil
		}
		return nil, err
	}
	return model.ObjStream{Dict: stream.Dict, Raw: decoded}, nil
}

func (s *objectStore) resolveCompressed(entry Entry) (model.Object, error) {
	objs, err := s.processObjectStream(entry.StreamNum)
	if err != nil {
		return nil, err
	}
	if entry.StreamIndex < 0 || entry.StreamIndex >= len(objs) {
		return nil, &errs.ReferenceError{Reason: "object index out of range within object stream " + strconv.Itoa(entry.StreamNum)}
	}
	return objs[entry.StreamIndex], nil
}

// processObjectStream decodes and parses every object embedded in the
// /ObjStm numbered on, caching the result since objects are typically
// looked up one at a time but the whole stream must be parsed to reach
// any single one (7.5.7).
func (s *objectStore) processObjectStream(on int) ([]model.Object, error) {
	if objs, ok := s.objStreams[on]; ok {
		return objs, nil
	}

	entry, ok := s.entries[model.ObjRef{Num: on, Gen: 0}]
	if !ok || entry.Kind != InUse {
		return nil, &errs.ReferenceError{Num: on, Reason: "missing object stream"}
	}

	obj, err := s.resolveInUse(model.ObjRef{Num: on, Gen: 0}, entry)
	if err != nil {
		return nil, err
	}
	stream, ok := obj.(model.ObjStream)
	if !ok {
		return nil, &errs.ReferenceError{Num: on, Reason: "object stream entry does not point at a stream"}
	}

	first, ok := intEntry(stream.Dict, "First")
	if !ok {
		return nil, &errs.InvalidStructureError{Reason: "object stream missing /First"}
	}
	if first > len(stream.Raw) {
		return nil, &errs.InvalidStructureError{Reason: "object stream /First beyond decoded payload"}
	}
	prolog := bytes.ReplaceAll(stream.Raw[:first], []byte{0}, []byte{' '})
	fields := bytes.Fields(prolog)
	if len(fields)%2 != 0 {
		log.Parse.Printf("object stream %d: odd number of prolog fields, truncating\n", on)
		fields = fields[:len(fields)-1]
	}

	offsets := make([]int, len(fields)/2)
	for i := range offsets {
		n, err := strconv.Atoi(string(fields[2*i+1]))
		if err != nil {
			return nil, &errs.InvalidStructureError{Reason: "object stream prolog has a non-numeric offset"}
		}
		offsets[i] = first + n
		if offsets[i] > len(stream.Raw) {
			return nil, &errs.InvalidStructureError{Reason: "object stream prolog offset out of range"}
		}
	}

	objs := make([]model.Object, len(offsets))
	for i := range offsets {
		start, end := offsets[i], len(stream.Raw)
		if i+1 < len(offsets) {
			end = offsets[i+1]
		}
		objs[i], err = parser.NewParser(stream.Raw[start:end]).ParseObject()
		if err != nil {
			return nil, &errs.InvalidStructureError{Reason: "invalid object in object stream: " + err.Error()}
		}
	}

	s.objStreams[on] = objs
	return objs, nil
}
