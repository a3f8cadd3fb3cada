package reader

import (
	"bytes"
	"time"

	"github.com/jgpdf/pdfcore/errs"
	"github.com/jgpdf/pdfcore/internal/diag"
	"github.com/jgpdf/pdfcore/model"
)

// Reader is a fully parsed PDF document together with the warnings
// accumulated while lenient recovery was in effect.
type Reader struct {
	Document model.Document
	warn     *diag.Collector
}

// Warnings returns every diagnostic collected while opening the document,
// in the order encountered. Empty (never nil) when CollectWarnings is off.
func (r *Reader) Warnings() []diag.Warning {
	if w := r.warn.All(); w != nil {
		return w
	}
	return []diag.Warning{}
}

var headerMarker = []byte("%PDF-")

// Open parses data into a Reader per opts. It never mutates data.
func Open(data []byte, opts ParseOptions) (*Reader, error) {
	if len(data) == 0 {
		return nil, &errs.SyntaxError{Pos: 0, Reason: "empty file"}
	}
	if _, err := findHeaderVersion(data); err != nil && opts.StrictMode {
		return nil, err
	}
	// A missing/garbled header never stops a lenient open: the xref chain
	// (or full-file recovery) is what actually locates objects.

	warn := diag.NewCollector(opts.CollectWarnings)

	xr := newXrefResolver(data, opts, warn)
	entries, trailer, err := xr.Resolve()
	if err != nil {
		return nil, err
	}

	store := newObjectStore(data, opts, warn, entries)

	if trailer.HasEncrypt {
		encrypt, _ := store.Resolve(trailer.Encrypt)
		return nil, &errs.EncryptionNotSupportedError{Filter: encryptFilterName(encrypt)}
	}

	if trailer.Root == nil {
		return nil, &errs.InvalidStructureError{Reason: "trailer has no /Root"}
	}
	rootObj, err := store.Get(*trailer.Root)
	if err != nil {
		return nil, err
	}
	rootDict, ok := rootObj.(model.ObjDict)
	if !ok {
		return nil, &errs.InvalidStructureError{Reason: "/Root does not resolve to a dictionary"}
	}

	pagesVal, ok := rootDict.Get(model.ObjName("Pages"))
	if !ok {
		return nil, &errs.InvalidStructureError{Reason: "catalog has no /Pages"}
	}
	pagesRef, ok := pagesVal.(model.ObjRef)
	if !ok {
		return nil, &errs.InvalidStructureError{Reason: "/Pages is not an indirect reference"}
	}
	pageTree, err := store.buildPageTree(pagesRef)
	if err != nil {
		return nil, err
	}

	catalog := model.Catalog{Pages: *pageTree}
	if md, ok := rootDict.Get(model.ObjName("Metadata")); ok {
		if resolved, err := store.Resolve(md); err == nil {
			if st, ok := resolved.(model.ObjStream); ok {
				catalog.Metadata = &st
			}
		}
	}

	info := model.Info{}
	if trailer.Info != nil {
		if obj, err := store.Get(*trailer.Info); err == nil {
			if dict, ok := obj.(model.ObjDict); ok {
				info = buildInfo(dict, store, warn)
			}
		}
	}

	doc := model.Document{
		Catalog: catalog,
		Trailer: model.Trailer{Info: info, ID: trailer.ID},
	}
	return &Reader{Document: doc, warn: warn}, nil
}

func buildInfo(dict model.ObjDict, s *objectStore, warn *diag.Collector) model.Info {
	info := model.Info{
		Title:    infoString(dict, s, "Title"),
		Author:   infoString(dict, s, "Author"),
		Subject:  infoString(dict, s, "Subject"),
		Keywords: infoString(dict, s, "Keywords"),
		Creator:  infoString(dict, s, "Creator"),
		Producer: infoString(dict, s, "Producer"),
	}
	info.CreationDate = parseInfoDate(dict, s, "CreationDate", warn)
	info.ModDate = parseInfoDate(dict, s, "ModDate", warn)
	return info
}

func parseInfoDate(dict model.ObjDict, s *objectStore, key model.ObjName, warn *diag.Collector) time.Time {
	v, ok := dict.Get(key)
	if !ok {
		return time.Time{}
	}
	resolved, err := s.Resolve(v)
	if err != nil {
		return time.Time{}
	}
	str, ok := resolved.(model.ObjString)
	if !ok {
		return time.Time{}
	}
	raw := string(str.Raw)
	t, err := time.Parse(model.DateLayout, normalizeDate(raw))
	if err != nil {
		warn.Add(diag.KindStructure, 0, "info dictionary "+string(key)+" is not a valid date string: "+raw)
		return time.Time{}
	}
	return t
}

// normalizeDate pads a date string missing its optional trailing
// timezone/apostrophe fields so time.Parse's fixed layout still matches,
// per 7.9.4's allowance for every field after the year to be omitted.
func normalizeDate(s string) string {
	// Omitted fields take 7.9.4's defaults: month and day 01, time
	// 00:00:00, UT.
	const defaults = "D:00000101000000+00'00'"
	if len(s) >= len(defaults) {
		return s
	}
	pad := defaults[len(s):]
	return s + pad
}

func encryptFilterName(o model.Object) string {
	dict, ok := o.(model.ObjDict)
	if !ok {
		return ""
	}
	f, ok := dict.Get(model.ObjName("Filter"))
	if !ok {
		return ""
	}
	name, ok := f.(model.ObjName)
	if !ok {
		return ""
	}
	return string(name)
}

// findHeaderVersion locates the "%PDF-M.N" header, which per Annex H may
// be preceded by a small amount of junk but must appear within the first
// kilobyte for a conforming reader to accept the file.
func findHeaderVersion(data []byte) (string, error) {
	const window = 1024
	end := window
	if end > len(data) {
		end = len(data)
	}
	idx := bytes.Index(data[:end], headerMarker)
	if idx < 0 {
		return "", &errs.SyntaxError{Pos: 0, Reason: "no %PDF- header found in first 1024 bytes"}
	}
	start := idx + len(headerMarker)
	end2 := start
	for end2 < len(data) && (isDigitOrDot(data[end2])) {
		end2++
	}
	if end2 == start {
		return "", &errs.SyntaxError{Pos: idx, Reason: "malformed %PDF- header"}
	}
	return string(data[start:end2]), nil
}

func isDigitOrDot(b byte) bool {
	return (b >= '0' && b <= '9') || b == '.'
}
