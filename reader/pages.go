package reader

import (
	"strconv"

	"github.com/jgpdf/pdfcore/errs"
	"github.com/jgpdf/pdfcore/internal/diag"
	"github.com/jgpdf/pdfcore/model"
)

// inherited carries the page-tree attributes that propagate from a
// /Pages node to its descendants (7.7.3.4) along the current path.
type inherited struct {
	resources *model.ResourcesDict
	mediaBox  *model.Rectangle
	cropBox   *model.Rectangle
	rotate    *model.Rotation
}

func (in inherited) merge(dict model.ObjDict, s *objectStore) inherited {
	out := in
	if v, ok := dict.Get(model.ObjName("Resources")); ok {
		if r, err := s.resourcesFromObject(v); err == nil && r != nil {
			out.resources = r
		}
	}
	if v, ok := dict.Get(model.ObjName("MediaBox")); ok {
		if rect, ok := rectangleFromObject(v); ok {
			out.mediaBox = rect
		}
	}
	if v, ok := dict.Get(model.ObjName("CropBox")); ok {
		if rect, ok := rectangleFromObject(v); ok {
			out.cropBox = rect
		}
	}
	if v, ok := dict.Get(model.ObjName("Rotate")); ok {
		if n, ok := v.(model.ObjInt); ok {
			out.rotate = model.NewRotation(int(n))
		}
	}
	return out
}

// buildPageTree walks the /Pages hierarchy reachable from rootRef with an
// explicit work stack (§4.6/Design Notes §9: no recursion, cycle-safe).
// Kids that are malformed, dangling, or already on the current path are
// skipped with a warning rather than aborting the whole walk.
func (s *objectStore) buildPageTree(rootRef model.ObjRef) (*model.PageTree, error) {
	rootObj, err := s.Get(rootRef)
	if err != nil {
		return nil, err
	}
	rootDict, ok := rootObj.(model.ObjDict)
	if !ok {
		return nil, &errs.InvalidStructureError{Reason: "/Pages root is not a dictionary"}
	}

	root := &model.PageTree{}
	rootInh := inherited{}.merge(rootDict, s)
	applyTreeAttrs(root, rootInh)

	type frame struct {
		ref   model.ObjRef
		node  *model.PageTree
		kids  model.ObjArray
		index int
		inh   inherited
	}

	visiting := map[model.ObjRef]bool{rootRef: true}
	stack := []frame{{ref: rootRef, node: root, kids: kidsOf(rootDict), inh: rootInh}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.index >= len(top.kids) {
			visiting[top.ref] = false
			stack = stack[:len(stack)-1]
			continue
		}
		kidObj := top.kids[top.index]
		top.index++

		ref, isRef := kidObj.(model.ObjRef)
		if !isRef {
			s.warn.Add(diag.KindPageTree, 0, "page tree kid entry is not an indirect reference, skipped")
			continue
		}
		if visiting[ref] {
			s.warn.Add(diag.KindPageTree, 0, "cycle detected at page tree object "+strconv.Itoa(ref.Num)+", subtree skipped")
			continue
		}

		obj, err := s.Get(ref)
		if err != nil {
			s.warn.Add(diag.KindPageTree, 0, "page tree kid unreadable, skipped: "+err.Error())
			continue
		}
		dict, ok := obj.(model.ObjDict)
		if !ok {
			s.warn.Add(diag.KindPageTree, 0, "page tree kid is not a dictionary, skipped")
			continue
		}

		childInh := top.inh.merge(dict, s)
		if isInternalNode(dict) {
			child := &model.PageTree{Parent: top.node}
			applyTreeAttrs(child, childInh)
			top.node.Kids = append(top.node.Kids, child)
			visiting[ref] = true
			stack = append(stack, frame{ref: ref, node: child, kids: kidsOf(dict), inh: childInh})
			continue
		}

		page := &model.PageObject{Parent: top.node}
		applyPageAttrs(page, dict, childInh)
		page.Annots = s.annotsFromDict(dict)
		contents, err := s.contentsFromDict(dict)
		if err != nil {
			return nil, err
		}
		page.Contents = contents
		top.node.Kids = append(top.node.Kids, page)
	}

	return root, nil
}

// isInternalNode implements §4.6's /Type inference: an explicit /Type of
// /Pages or /Page decides; when /Type is missing or any other value,
// presence of /Kids means /Pages.
func isInternalNode(dict model.ObjDict) bool {
	if t, ok := dict.Get(model.ObjName("Type")); ok {
		if name, ok := t.(model.ObjName); ok {
			if name == "Pages" {
				return true
			}
			if name == "Page" {
				return false
			}
		}
	}
	_, hasKids := dict.Get(model.ObjName("Kids"))
	return hasKids
}

func kidsOf(dict model.ObjDict) model.ObjArray {
	v, ok := dict.Get(model.ObjName("Kids"))
	if !ok {
		return nil
	}
	arr, _ := v.(model.ObjArray)
	return arr
}

func applyTreeAttrs(node *model.PageTree, inh inherited) {
	node.Resources = inh.resources
	node.MediaBox = inh.mediaBox
	node.CropBox = inh.cropBox
	node.Rotate = inh.rotate
}

func applyPageAttrs(page *model.PageObject, dict model.ObjDict, inh inherited) {
	page.Resources = inh.resources
	page.MediaBox = inh.mediaBox
	page.CropBox = inh.cropBox
	page.Rotate = inh.rotate
	_ = dict
}

func rectangleFromObject(o model.Object) (*model.Rectangle, bool) {
	arr, ok := o.(model.ObjArray)
	if !ok || len(arr) != 4 {
		return nil, false
	}
	vals := make([]float64, 4)
	for i, el := range arr {
		switch n := el.(type) {
		case model.ObjInt:
			vals[i] = float64(n)
		case model.ObjReal:
			vals[i] = float64(n)
		default:
			return nil, false
		}
	}
	return &model.Rectangle{Llx: vals[0], Lly: vals[1], Urx: vals[2], Ury: vals[3]}, true
}

func (s *objectStore) annotsFromDict(dict model.ObjDict) []*model.Annotation {
	v, ok := dict.Get(model.ObjName("Annots"))
	if !ok {
		return nil
	}
	arr, ok := v.(model.ObjArray)
	if !ok {
		return nil
	}
	var out []*model.Annotation
	for _, el := range arr {
		resolved, err := s.Resolve(el)
		if err != nil {
			continue
		}
		d, ok := resolved.(model.ObjDict)
		if !ok {
			continue
		}
		subtype, _ := d.Get(model.ObjName("Subtype"))
		name, _ := subtype.(model.ObjName)
		rect, _ := rectangleFromObject(d.Keys[model.ObjName("Rect")])
		if rect == nil {
			rect = &model.Rectangle{}
		}
		out = append(out, &model.Annotation{Subtype: model.AnnotationSubtype(name), Rect: *rect, Dict: d})
	}
	return out
}

func (s *objectStore) contentsFromDict(dict model.ObjDict) ([]*model.ObjStream, error) {
	v, ok := dict.Get(model.ObjName("Contents"))
	if !ok {
		return nil, nil
	}
	var refs []model.Object
	switch c := v.(type) {
	case model.ObjArray:
		refs = c
	default:
		refs = []model.Object{c}
	}
	var out []*model.ObjStream
	for _, r := range refs {
		resolved, err := s.Resolve(r)
		if err != nil {
			if s.opts.StrictMode {
				return nil, err
			}
			continue
		}
		if st, ok := resolved.(model.ObjStream); ok {
			st := st
			out = append(out, &st)
		}
	}
	return out, nil
}
