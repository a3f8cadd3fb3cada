/*
Copyright 2018 The pdfcpu Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package model defines the PDF object variant types (the tagged-union
// layer parsed directly off the token stream) together with the
// higher-level document model built on top of them (Catalog, PageTree,
// Resources, Annotations, metadata).
package model

import (
	"fmt"
	"strconv"
)

// Object is the PDF object variant: every value the parser can produce is
// one of Null, Boolean, Integer, Real, Name, String, Array, Dictionary,
// Stream or IndirectRef.
type Object interface {
	fmt.Stringer
	// PDFString renders the value exactly as it should appear in a
	// serialised PDF file body.
	PDFString() string
}

// ObjNull represents the PDF null object.
type ObjNull struct{}

func (ObjNull) String() string    { return "null" }
func (ObjNull) PDFString() string { return "null" }

// ObjBool represents a PDF boolean object.
type ObjBool bool

func (b ObjBool) String() string    { return strconv.FormatBool(bool(b)) }
func (b ObjBool) PDFString() string { return b.String() }

// ObjInt represents a PDF integer object.
type ObjInt int64

func (i ObjInt) String() string    { return strconv.FormatInt(int64(i), 10) }
func (i ObjInt) PDFString() string { return i.String() }

// ObjReal represents a PDF real (floating point) object.
type ObjReal float64

func (f ObjReal) String() string    { return strconv.FormatFloat(float64(f), 'f', -1, 64) }
func (f ObjReal) PDFString() string { return strconv.FormatFloat(float64(f), 'f', -1, 64) }

// ObjName represents a PDF name object, already decoded (no #xx escapes).
type ObjName string

func (n ObjName) String() string { return "/" + string(n) }

// PDFString re-encodes reserved and non-printable bytes as #xx escapes.
func (n ObjName) PDFString() string {
	out := make([]byte, 0, len(n)+1)
	out = append(out, '/')
	for i := 0; i < len(n); i++ {
		c := n[i]
		if c <= 0x20 || c >= 0x7f || isNameDelimiter(c) || c == '#' {
			out = append(out, '#')
			out = append(out, hexDigit(c>>4), hexDigit(c&0xf))
			continue
		}
		out = append(out, c)
	}
	return string(out)
}

func isNameDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func hexDigit(v byte) byte {
	if v < 10 {
		return '0' + v
	}
	return 'a' + v - 10
}

// StringEncoding hints how an ObjString's raw bytes should be interpreted
// as text, when that is needed (e.g. metadata fields).
type StringEncoding uint8

const (
	// RawBytes: interpretation unknown or irrelevant (e.g. binary IDs).
	RawBytes StringEncoding = iota
	// PDFDocOrWinAnsi: single-byte text encoding (PDFDocEncoding / WinAnsiEncoding).
	PDFDocOrWinAnsi
	// UTF16BE: text string per 7.9.2.2, with the 0xFE 0xFF BOM.
	UTF16BE
)

// ObjString represents a PDF string object, literal or hex. Raw holds the
// decoded bytes (not the PDF source syntax); Hex records which source
// syntax produced it, purely so the writer can pick a matching form.
type ObjString struct {
	Raw      []byte
	Hex      bool
	Encoding StringEncoding
}

func (s ObjString) String() string { return string(s.Raw) }

// PDFString emits the hex form <...> when Hex is set; otherwise the
// literal-string form, escaping the three reserved characters and writing
// LF and CR as \n and \r. Every other byte, printable or not, is written
// as-is.
func (s ObjString) PDFString() string {
	if s.Hex {
		return "<" + fmt.Sprintf("%x", s.Raw) + ">"
	}
	out := make([]byte, 0, len(s.Raw)+2)
	out = append(out, '(')
	for _, c := range s.Raw {
		switch c {
		case '(', ')', '\\':
			out = append(out, '\\', c)
		case '\n':
			out = append(out, '\\', 'n')
		case '\r':
			out = append(out, '\\', 'r')
		default:
			out = append(out, c)
		}
	}
	out = append(out, ')')
	return string(out)
}

// ObjArray represents a PDF array object: an ordered sequence of objects.
type ObjArray []Object

func (a ObjArray) String() string { return a.PDFString() }

func (a ObjArray) PDFString() string {
	s := "["
	for i, o := range a {
		if i > 0 {
			s += " "
		}
		s += o.PDFString()
	}
	return s + "]"
}

// ObjDict represents a PDF dictionary: a mapping from Name to Object.
// Keys and Order are kept in lock-step so insertion order is preserved for
// stable, deterministic output; Order holds the keys as they were first
// inserted and Keys maps each name to its value for O(1) lookup.
type ObjDict struct {
	Keys  map[ObjName]Object
	Order []ObjName
}

// NewDict returns an empty, ready-to-use dictionary.
func NewDict() ObjDict {
	return ObjDict{Keys: map[ObjName]Object{}}
}

// Set inserts or overwrites key. First insertion determines Order position;
// a later write to an existing key keeps its original position, matching
// the parser's "later occurrence wins" duplicate-key rule without
// reordering output.
func (d *ObjDict) Set(key ObjName, val Object) {
	if d.Keys == nil {
		d.Keys = map[ObjName]Object{}
	}
	if _, ok := d.Keys[key]; !ok {
		d.Order = append(d.Order, key)
	}
	d.Keys[key] = val
}

// Get returns the value for key and whether it was present.
func (d ObjDict) Get(key ObjName) (Object, bool) {
	v, ok := d.Keys[key]
	return v, ok
}

func (d ObjDict) String() string { return d.PDFString() }

func (d ObjDict) PDFString() string {
	s := "<<"
	for _, k := range d.Order {
		s += " " + k.PDFString() + " " + d.Keys[k].PDFString()
	}
	return s + " >>"
}

// ObjStream represents a PDF stream object: a dictionary plus a raw (still
// filter-encoded) byte payload. Decoding happens on demand in the reader.
type ObjStream struct {
	Dict ObjDict
	// Raw holds the encoded bytes exactly as read from the file, between
	// "stream" and "endstream".
	Raw []byte
}

func (s ObjStream) String() string { return s.PDFString() }

func (s ObjStream) PDFString() string {
	return s.Dict.PDFString() + "\nstream\n...\nendstream"
}

// ObjRef represents an indirect reference "N G R".
type ObjRef struct {
	Num, Gen int
}

func (r ObjRef) String() string { return r.PDFString() }

func (r ObjRef) PDFString() string {
	return strconv.Itoa(r.Num) + " " + strconv.Itoa(r.Gen) + " R"
}
