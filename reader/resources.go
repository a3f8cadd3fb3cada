package reader

import "github.com/jgpdf/pdfcore/model"

// resourcesFromObject resolves a /Resources entry (direct or indirect)
// into a model.ResourcesDict, splitting /Font and /XObject entries into
// their typed forms and keeping everything else under Other so no
// information is silently dropped.
func (s *objectStore) resourcesFromObject(o model.Object) (*model.ResourcesDict, error) {
	resolved, err := s.Resolve(o)
	if err != nil {
		return nil, err
	}
	dict, ok := resolved.(model.ObjDict)
	if !ok {
		return nil, nil
	}

	out := &model.ResourcesDict{
		Font:      map[model.Name]*model.Font{},
		XObject:   map[model.Name]*model.Image{},
		ExtGState: map[model.Name]model.ObjDict{},
		Other:     model.NewDict(),
	}

	if fonts, ok := dict.Get(model.ObjName("Font")); ok {
		if fontDict, ok := s.mustDict(fonts); ok {
			for _, k := range fontDict.Order {
				resolved, err := s.Resolve(fontDict.Keys[k])
				if err != nil {
					continue
				}
				if fd, ok := resolved.(model.ObjDict); ok {
					out.Font[model.Name(k)] = &model.Font{Dict: fd}
				}
			}
		}
	}

	if xobjs, ok := dict.Get(model.ObjName("XObject")); ok {
		if xDict, ok := s.mustDict(xobjs); ok {
			for _, k := range xDict.Order {
				resolved, err := s.Resolve(xDict.Keys[k])
				if err != nil {
					continue
				}
				if img, ok := s.imageFromXObject(resolved); ok {
					out.XObject[model.Name(k)] = img
				}
			}
		}
	}

	if gs, ok := dict.Get(model.ObjName("ExtGState")); ok {
		if gsDict, ok := s.mustDict(gs); ok {
			for _, k := range gsDict.Order {
				resolved, err := s.Resolve(gsDict.Keys[k])
				if err != nil {
					continue
				}
				if d, ok := resolved.(model.ObjDict); ok {
					out.ExtGState[model.Name(k)] = d
				}
			}
		}
	}

	for _, k := range dict.Order {
		switch k {
		case "Font", "XObject", "ExtGState":
			continue
		default:
			out.Other.Set(k, dict.Keys[k])
		}
	}

	return out, nil
}

func (s *objectStore) mustDict(o model.Object) (model.ObjDict, bool) {
	resolved, err := s.Resolve(o)
	if err != nil {
		return model.ObjDict{}, false
	}
	d, ok := resolved.(model.ObjDict)
	return d, ok
}

// imageFromXObject reports whether obj is a /Subtype /Image XObject
// stream and, if so, builds its model.Image; Form XObjects and anything
// else return ok=false so the caller leaves them to Other.
func (s *objectStore) imageFromXObject(obj model.Object) (*model.Image, bool) {
	stream, ok := obj.(model.ObjStream)
	if !ok {
		return nil, false
	}
	subtype, ok := stream.Dict.Get(model.ObjName("Subtype"))
	if !ok {
		return nil, false
	}
	name, ok := subtype.(model.ObjName)
	if !ok || name != "Image" {
		return nil, false
	}

	width, _ := intEntry(stream.Dict, "Width")
	height, _ := intEntry(stream.Dict, "Height")

	format := model.FormatRaw
	if filterNames, parms, err := filtersFromStreamDict(stream.Dict); err == nil && len(filterNames) > 0 {
		last := filterNames[len(filterNames)-1]
		switch last {
		case model.FilterDCT:
			format = model.FormatJPEG
		case model.FilterFlate:
			if len(parms) > 0 && parms[len(parms)-1].Predictor > 1 {
				format = model.FormatPNGPredicted
			}
		}
	}

	st := stream
	return &model.Image{Width: width, Height: height, Format: format, Stream: &st}, true
}
