package reader

import "github.com/jgpdf/pdfcore/model"

// filtersFromStreamDict reads a stream dictionary's /Filter and
// /DecodeParms entries (7.4: a single name/dict, or a matching-length
// array of each) into parallel slices ready for filters.Chain. A
// /DecodeParms array shorter than /Filter means the remaining filters
// get default parameters (7.4, "missing array entries mean default
// parameters").
func filtersFromStreamDict(dict model.ObjDict) ([]model.Filter, []model.DecodeParms, error) {
	filterObj, hasFilter := dict.Get(model.ObjName("Filter"))
	if !hasFilter {
		return nil, nil, nil
	}

	var names []model.ObjName
	switch f := filterObj.(type) {
	case model.ObjName:
		names = []model.ObjName{f}
	case model.ObjArray:
		for _, el := range f {
			if n, ok := el.(model.ObjName); ok {
				names = append(names, n)
			}
		}
	}

	var parmDicts []model.ObjDict
	if parmObj, ok := dict.Get(model.ObjName("DecodeParms")); ok {
		switch p := parmObj.(type) {
		case model.ObjDict:
			parmDicts = []model.ObjDict{p}
		case model.ObjArray:
			for _, el := range p {
				d, _ := el.(model.ObjDict) // zero value (empty dict) if absent/null
				parmDicts = append(parmDicts, d)
			}
		}
	}

	filters := make([]model.Filter, len(names))
	parms := make([]model.DecodeParms, len(names))
	for i, n := range names {
		filters[i] = model.NewFilter(string(n))
		if i < len(parmDicts) {
			parms[i] = decodeParmsFromDict(parmDicts[i])
		} else {
			parms[i] = model.DefaultDecodeParms()
		}
	}
	return filters, parms, nil
}

func decodeParmsFromDict(d model.ObjDict) model.DecodeParms {
	p := model.DefaultDecodeParms()
	if v, ok := intEntry(d, "Predictor"); ok {
		p.Predictor = v
	}
	if v, ok := intEntry(d, "Colors"); ok {
		p.Colors = v
	}
	if v, ok := intEntry(d, "BitsPerComponent"); ok {
		p.BitsPerComponent = v
	}
	if v, ok := intEntry(d, "Columns"); ok {
		p.Columns = v
	}
	if v, ok := intEntry(d, "EarlyChange"); ok {
		p.EarlyChange = v
	}
	if v, ok := intEntry(d, "K"); ok {
		p.K = v
	}
	if v, ok := intEntry(d, "Rows"); ok {
		p.Rows = v
	}
	if v, ok := boolEntry(d, "BlackIs1"); ok {
		p.BlackIs1 = v
	}
	if v, ok := boolEntry(d, "EncodedByteAlign"); ok {
		p.EncodedByteAlign = v
	}
	return p
}

func intEntry(d model.ObjDict, key string) (int, bool) {
	v, ok := d.Get(model.ObjName(key))
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case model.ObjInt:
		return int(n), true
	case model.ObjReal:
		return int(n), true
	}
	return 0, false
}

func boolEntry(d model.ObjDict, key string) (bool, bool) {
	v, ok := d.Get(model.ObjName(key))
	if !ok {
		return false, false
	}
	b, ok := v.(model.ObjBool)
	return bool(b), ok
}
