package writer

import (
	"bytes"
	"testing"

	"github.com/jgpdf/pdfcore/errs"
	"github.com/jgpdf/pdfcore/model"
	"github.com/jgpdf/pdfcore/reader"
)

func twoPageDocumentWithSharedResources() *model.Document {
	font := &model.Font{Dict: model.NewDict()}
	font.Dict.Set("Type", model.ObjName("Font"))
	font.Dict.Set("Subtype", model.ObjName("Type1"))
	font.Dict.Set("BaseFont", model.ObjName("Helvetica"))

	res := &model.ResourcesDict{
		Font:  map[model.Name]*model.Font{"F1": font},
		Other: model.NewDict(),
	}
	box := &model.Rectangle{Llx: 0, Lly: 0, Urx: 612, Ury: 792}

	content1 := &model.ObjStream{Raw: []byte("BT /F1 12 Tf (Page One) Tj ET")}
	content2 := &model.ObjStream{Raw: []byte("BT /F1 12 Tf (Page Two) Tj ET")}

	p1 := &model.PageObject{Resources: res, MediaBox: box, Contents: []*model.ObjStream{content1}}
	p2 := &model.PageObject{Resources: res, MediaBox: box, Contents: []*model.ObjStream{content2}}

	root := model.PageTree{Kids: []model.PageNode{p1, p2}}
	return &model.Document{Catalog: model.Catalog{Pages: root}}
}

func TestWriteRoundTrip(t *testing.T) {
	doc := twoPageDocumentWithSharedResources()

	var buf bytes.Buffer
	if err := Write(doc, &buf); err != nil {
		t.Fatalf("Write: %v", err)
	}

	r, err := reader.Open(buf.Bytes(), reader.StrictOptions())
	if err != nil {
		t.Fatalf("round-trip Open: %v", err)
	}
	pages := r.Document.Catalog.Pages.Flatten()
	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}
	for i, p := range pages {
		if len(p.Contents) != 1 {
			t.Fatalf("page %d: got %d content streams, want 1", i, len(p.Contents))
		}
		box := p.EffectiveMediaBox()
		if box == nil || box.Urx != 612 || box.Ury != 792 {
			t.Fatalf("page %d: got MediaBox %+v", i, box)
		}
		res := p.EffectiveResources()
		if res == nil || res.Font["F1"] == nil {
			t.Fatalf("page %d: expected shared /F1 font resource, got %+v", i, res)
		}
	}
}

// TestWriteDeduplicatesSharedResources confirms a *model.ResourcesDict
// referenced by two pages is written once and simply referenced twice,
// rather than duplicated, by checking the two pages' /Resources object
// number is identical once round-tripped through allocation.
func TestWriteDeduplicatesSharedResources(t *testing.T) {
	doc := twoPageDocumentWithSharedResources()

	dw := &docWriter{alloc: newAllocator(), emitted: map[any]bool{}}
	pagesRef := dw.buildPageTree(&doc.Catalog.Pages, nil)
	_ = pagesRef

	root := doc.Catalog.Pages
	p1 := root.Kids[0].(*model.PageObject)
	p2 := root.Kids[1].(*model.PageObject)

	resRef1 := dw.alloc.refFor(p1.Resources)
	resRef2 := dw.alloc.refFor(p2.Resources)
	if resRef1 != resRef2 {
		t.Fatalf("shared resources allocated distinct refs: %v vs %v", resRef1, resRef2)
	}

	// Exactly one pending object should carry the resources dictionary's
	// object number; a duplicate emission would produce two.
	count := 0
	for _, p := range dw.pending {
		if p.ref == resRef1 {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("resources object emitted %d times, want 1", count)
	}
}

func TestWriteRejectsDanglingReference(t *testing.T) {
	doc := twoPageDocumentWithSharedResources()
	gs := model.NewDict()
	gs.Set("Dangling", model.ObjRef{Num: 9999, Gen: 0})
	doc.Catalog.Pages.Kids[0].(*model.PageObject).Resources.ExtGState = map[model.Name]model.ObjDict{"GS1": gs}

	var buf bytes.Buffer
	err := Write(doc, &buf)
	if err == nil {
		t.Fatal("expected an error for a dangling reference")
	}
	if _, ok := err.(*errs.WriterError); !ok {
		t.Fatalf("got error %v (%T), want *errs.WriterError", err, err)
	}
}
