// Package writer serialises a model.Document back into PDF bytes: a
// single deterministic object allocator, pre-flight validation of any
// reference the document cannot actually satisfy, then a byte-exact
// classical cross-reference table and trailer.
package writer

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/jgpdf/pdfcore/filters"
	"github.com/jgpdf/pdfcore/model"
)

type pendingObject struct {
	ref    model.ObjRef
	body   string
	stream []byte
}

// docWriter accumulates the object graph for one document before any
// bytes are written, so a dangling reference anywhere aborts the whole
// write rather than leaving a truncated file on dst.
type docWriter struct {
	alloc    *allocator
	emitted  map[any]bool
	pending  []pendingObject
	rawDicts []model.ObjDict // carried-over dicts needing a dangling-reference check
}

// Write renders doc to dst as a complete, single-revision PDF file.
func Write(doc *model.Document, dst io.Writer) error {
	dw := &docWriter{alloc: newAllocator(), emitted: map[any]bool{}}

	pagesRef := dw.buildPageTree(&doc.Catalog.Pages, nil)
	catalogRef := dw.buildCatalog(doc, pagesRef)
	infoRef := dw.buildInfo(&doc.Trailer.Info)

	for _, d := range dw.rawDicts {
		if err := checkDangling(d, dw.alloc); err != nil {
			return err
		}
	}

	out := newOutput(dst)
	out.writeHeader()
	for _, p := range dw.pending {
		out.writeObject(p.ref.Num, p.body, p.stream)
	}

	trailer := [][2]string{
		{"Size", strconv.Itoa(dw.alloc.maxNum() + 1)},
		{"Root", catalogRef.PDFString()},
		{"Info", infoRef.PDFString()},
	}
	if doc.Trailer.ID != [2]string{} {
		trailer = append(trailer, [2]string{"ID", idArray(doc.Trailer.ID)})
	}
	out.writeXrefAndTrailer(dw.alloc.maxNum(), trailer)

	return out.err
}

func idArray(id [2]string) string {
	return fmt.Sprintf("[<%x><%x>]", id[0], id[1])
}

func (dw *docWriter) buildPageTree(node *model.PageTree, parent *model.ObjRef) model.ObjRef {
	ref := dw.alloc.refFor(node)
	if dw.emitted[node] {
		return ref
	}
	dw.emitted[node] = true

	dict := model.NewDict()
	dict.Set("Type", model.ObjName("Pages"))
	if parent != nil {
		dict.Set("Parent", *parent)
	}
	dict.Set("Count", model.ObjInt(node.Count()))

	kids := make(model.ObjArray, 0, len(node.Kids))
	for _, kid := range node.Kids {
		switch k := kid.(type) {
		case *model.PageTree:
			kids = append(kids, dw.buildPageTree(k, &ref))
		case *model.PageObject:
			kids = append(kids, dw.buildPageObject(k, ref))
		}
	}
	dict.Set("Kids", kids)

	dw.applyInheritable(&dict, node.Resources, node.MediaBox, node.CropBox, node.Rotate)

	dw.pending = append(dw.pending, pendingObject{ref: ref, body: dict.PDFString()})
	return ref
}

func (dw *docWriter) buildPageObject(page *model.PageObject, parent model.ObjRef) model.ObjRef {
	ref := dw.alloc.refFor(page)
	if dw.emitted[page] {
		return ref
	}
	dw.emitted[page] = true

	dict := model.NewDict()
	dict.Set("Type", model.ObjName("Page"))
	dict.Set("Parent", parent)
	dw.applyInheritable(&dict, page.Resources, page.MediaBox, page.CropBox, page.Rotate)

	if len(page.Contents) == 1 {
		dict.Set("Contents", dw.buildContentStream(page.Contents[0]))
	} else if len(page.Contents) > 1 {
		arr := make(model.ObjArray, len(page.Contents))
		for i, c := range page.Contents {
			arr[i] = dw.buildContentStream(c)
		}
		dict.Set("Contents", arr)
	}

	if len(page.Annots) > 0 {
		arr := make(model.ObjArray, len(page.Annots))
		for i, a := range page.Annots {
			arr[i] = dw.buildAnnotation(a)
		}
		dict.Set("Annots", arr)
	}

	dw.pending = append(dw.pending, pendingObject{ref: ref, body: dict.PDFString()})
	return ref
}

func (dw *docWriter) applyInheritable(dict *model.ObjDict, res *model.ResourcesDict, mediaBox, cropBox *model.Rectangle, rotate *model.Rotation) {
	if res != nil {
		dict.Set("Resources", dw.buildResources(res))
	}
	if mediaBox != nil {
		dict.Set("MediaBox", rectObj(mediaBox))
	}
	if cropBox != nil {
		dict.Set("CropBox", rectObj(cropBox))
	}
	if rotate != nil {
		dict.Set("Rotate", model.ObjInt(rotate.Degrees()))
	}
}

func rectObj(r *model.Rectangle) model.ObjArray {
	return model.ObjArray{model.ObjReal(r.Llx), model.ObjReal(r.Lly), model.ObjReal(r.Urx), model.ObjReal(r.Ury)}
}

func (dw *docWriter) buildResources(res *model.ResourcesDict) model.ObjRef {
	ref := dw.alloc.refFor(res)
	if dw.emitted[res] {
		return ref
	}
	dw.emitted[res] = true

	dict := model.NewDict()

	if len(res.Font) > 0 {
		fonts := model.NewDict()
		for _, name := range sortedNames(res.Font) {
			fonts.Set(model.ObjName(name), dw.buildFont(res.Font[name]))
		}
		dict.Set("Font", fonts)
	}
	if len(res.XObject) > 0 {
		xobjs := model.NewDict()
		for _, name := range sortedNames(res.XObject) {
			xobjs.Set(model.ObjName(name), dw.buildImage(res.XObject[name]))
		}
		dict.Set("XObject", xobjs)
	}
	if len(res.ExtGState) > 0 {
		gs := model.NewDict()
		for _, name := range sortedNames(res.ExtGState) {
			d := res.ExtGState[name]
			dw.rawDicts = append(dw.rawDicts, d)
			gs.Set(model.ObjName(name), d)
		}
		dict.Set("ExtGState", gs)
	}
	for _, k := range res.Other.Order {
		dict.Set(k, res.Other.Keys[k])
	}
	dw.rawDicts = append(dw.rawDicts, res.Other)

	dw.pending = append(dw.pending, pendingObject{ref: ref, body: dict.PDFString()})
	return ref
}

// sortedNames returns m's keys in ascending order, so resources are
// numbered and written in the same order on every run.
func sortedNames[V any](m map[model.Name]V) []model.Name {
	names := make([]model.Name, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

func (dw *docWriter) buildFont(f *model.Font) model.ObjRef {
	ref := dw.alloc.refFor(f)
	if dw.emitted[f] {
		return ref
	}
	dw.emitted[f] = true

	dw.rawDicts = append(dw.rawDicts, f.Dict)
	dw.pending = append(dw.pending, pendingObject{ref: ref, body: f.Dict.PDFString()})
	return ref
}

// buildImage writes the image's samples back out exactly as held: DCT
// (JPEG) payloads are already in their final encoded form and are
// emitted verbatim; anything else is written uncompressed, since once an
// image has passed through the reader's predictor/Flate decode its
// original encoding is no longer recoverable from the model alone.
func (dw *docWriter) buildImage(img *model.Image) model.ObjRef {
	ref := dw.alloc.refFor(img)
	if dw.emitted[img] {
		return ref
	}
	dw.emitted[img] = true

	dict := cloneDictWithout(img.Stream.Dict, "Filter", "DecodeParms", "Length")
	dict.Set("Length", model.ObjInt(len(img.Stream.Raw)))
	if img.Format == model.FormatJPEG {
		dict.Set("Filter", model.ObjName(model.FilterDCT))
	}
	dw.rawDicts = append(dw.rawDicts, dict)

	dw.pending = append(dw.pending, pendingObject{ref: ref, body: dict.PDFString(), stream: img.Stream.Raw})
	return ref
}

// buildContentStream always re-compresses with FlateDecode: a page's
// content operators are plain text, and byte-for-byte preservation of
// whatever filter produced them originally is not a goal.
func (dw *docWriter) buildContentStream(st *model.ObjStream) model.ObjRef {
	ref := dw.alloc.refFor(st)
	if dw.emitted[st] {
		return ref
	}
	dw.emitted[st] = true

	dict := model.NewDict()
	encoded, err := filters.EncodeChain([]model.Filter{model.FilterFlate}, nil, st.Raw)
	if err != nil {
		encoded = st.Raw // last resort: write uncompressed rather than fail the document
	} else {
		dict.Set("Filter", model.ObjName(model.FilterFlate))
	}
	dict.Set("Length", model.ObjInt(len(encoded)))

	dw.pending = append(dw.pending, pendingObject{ref: ref, body: dict.PDFString(), stream: encoded})
	return ref
}

func (dw *docWriter) buildAnnotation(a *model.Annotation) model.ObjRef {
	ref := dw.alloc.refFor(a)
	if dw.emitted[a] {
		return ref
	}
	dw.emitted[a] = true

	dict := cloneDictWithout(a.Dict)
	dict.Set("Subtype", model.ObjName(a.Subtype))
	dict.Set("Rect", rectObj(&a.Rect))
	dw.rawDicts = append(dw.rawDicts, dict)

	dw.pending = append(dw.pending, pendingObject{ref: ref, body: dict.PDFString()})
	return ref
}

func (dw *docWriter) buildInfo(info *model.Info) model.ObjRef {
	ref := dw.alloc.refFor(info)
	dict := model.NewDict()
	setInfoString(&dict, "Title", info.Title)
	setInfoString(&dict, "Author", info.Author)
	setInfoString(&dict, "Subject", info.Subject)
	setInfoString(&dict, "Keywords", info.Keywords)
	setInfoString(&dict, "Creator", info.Creator)
	setInfoString(&dict, "Producer", info.Producer)
	if s := model.FormatDate(info.CreationDate); s != "" {
		dict.Set("CreationDate", model.ObjString{Raw: []byte(s)})
	}
	if s := model.FormatDate(info.ModDate); s != "" {
		dict.Set("ModDate", model.ObjString{Raw: []byte(s)})
	}
	dw.pending = append(dw.pending, pendingObject{ref: ref, body: dict.PDFString()})
	return ref
}

func setInfoString(dict *model.ObjDict, key model.ObjName, s string) {
	if s == "" {
		return
	}
	dict.Set(key, model.ObjString{Raw: textStringBytes(s)})
}

func (dw *docWriter) buildCatalog(doc *model.Document, pagesRef model.ObjRef) model.ObjRef {
	ref := dw.alloc.refFor(&doc.Catalog)
	dict := model.NewDict()
	dict.Set("Type", model.ObjName("Catalog"))
	dict.Set("Pages", pagesRef)
	if doc.Catalog.Metadata != nil {
		dw.rawDicts = append(dw.rawDicts, doc.Catalog.Metadata.Dict)
		mdRef := dw.alloc.refFor(doc.Catalog.Metadata)
		dw.emitted[doc.Catalog.Metadata] = true
		dw.pending = append(dw.pending, pendingObject{ref: mdRef, body: doc.Catalog.Metadata.Dict.PDFString(), stream: doc.Catalog.Metadata.Raw})
		dict.Set("Metadata", mdRef)
	}
	dw.pending = append(dw.pending, pendingObject{ref: ref, body: dict.PDFString()})
	return ref
}

func cloneDictWithout(d model.ObjDict, without ...model.ObjName) model.ObjDict {
	skip := map[model.ObjName]bool{}
	for _, k := range without {
		skip[k] = true
	}
	out := model.NewDict()
	for _, k := range d.Order {
		if skip[k] {
			continue
		}
		out.Set(k, d.Keys[k])
	}
	return out
}
