package writer

import (
	"github.com/jgpdf/pdfcore/errs"
	"github.com/jgpdf/pdfcore/model"
)

func danglingErr(ref model.ObjRef) error {
	return errs.DanglingReference(ref.Num, ref.Gen)
}

// checkDangling walks every Object a carried-over raw dictionary holds
// (Font.Dict, Annotation.Dict, a resources dictionary's Other entries, an
// ExtGState dict) and confirms that any embedded indirect reference names
// an object the allocator actually has scheduled for output. This engine
// does not preserve a source document's full object graph (see DESIGN.md:
// AcroForm, structure trees and appearance streams are out of scope), so
// a reference surviving from a read is only ever valid here if it happens
// to target something the writer independently allocated; anything else
// is dangling and rejected before a single byte reaches dst.
func checkDangling(o model.Object, a *allocator) error {
	switch v := o.(type) {
	case model.ObjRef:
		if !a.knows(v) {
			return danglingErr(v)
		}
	case model.ObjArray:
		for _, el := range v {
			if err := checkDangling(el, a); err != nil {
				return err
			}
		}
	case model.ObjDict:
		for _, k := range v.Order {
			if err := checkDangling(v.Keys[k], a); err != nil {
				return err
			}
		}
	case model.ObjStream:
		if err := checkDangling(v.Dict, a); err != nil {
			return err
		}
	}
	return nil
}
