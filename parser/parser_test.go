package parser

import (
	"strconv"
	"testing"

	"github.com/jgpdf/pdfcore/model"
	"github.com/jgpdf/pdfcore/tokenizer"
)

func parseOne(t *testing.T, src string) model.Object {
	t.Helper()
	p := NewParser([]byte(src))
	obj, err := p.ParseObject()
	if err != nil {
		t.Fatalf("ParseObject(%q): %v", src, err)
	}
	return obj
}

func TestParseScalarObjects(t *testing.T) {
	if got := parseOne(t, "true"); got != model.ObjBool(true) {
		t.Errorf("got %v want true", got)
	}
	if got := parseOne(t, "null"); got != (model.ObjNull{}) {
		t.Errorf("got %v want null", got)
	}
	if got := parseOne(t, "3.14"); got != model.ObjReal(3.14) {
		t.Errorf("got %v want 3.14", got)
	}
	if got := parseOne(t, "/Type"); got != model.ObjName("Type") {
		t.Errorf("got %v want /Type", got)
	}
}

func TestParseIndirectReference(t *testing.T) {
	got := parseOne(t, "12 0 R")
	ref, ok := got.(model.ObjRef)
	if !ok || ref.Num != 12 || ref.Gen != 0 {
		t.Fatalf("got %#v, want ObjRef{12,0}", got)
	}
}

func TestParseBareIntegerNotMistakenForRef(t *testing.T) {
	got := parseOne(t, "12 0 obj")
	if got != model.ObjInt(12) {
		t.Fatalf("got %#v, want ObjInt(12) (lookahead must not consume 'obj' as 'R')", got)
	}
}

func TestParseArrayAndDict(t *testing.T) {
	got := parseOne(t, "[1 2 /Foo (bar)]")
	arr, ok := got.(model.ObjArray)
	if !ok || len(arr) != 4 {
		t.Fatalf("got %#v", got)
	}

	got = parseOne(t, "<< /Type /Page /Count 3 >>")
	dict, ok := got.(model.ObjDict)
	if !ok {
		t.Fatalf("got %#v, want ObjDict", got)
	}
	if v, _ := dict.Get("Type"); v != model.ObjName("Page") {
		t.Errorf("Type = %v", v)
	}
	if v, _ := dict.Get("Count"); v != model.ObjInt(3) {
		t.Errorf("Count = %v", v)
	}
}

func TestParseDictDuplicateKeyLaterWins(t *testing.T) {
	var warned []model.ObjName
	p := NewParser([]byte(`<< /A 1 /A 2 >>`))
	p.DuplicateKeyWarning = func(k model.ObjName) { warned = append(warned, k) }
	obj, err := p.ParseObject()
	if err != nil {
		t.Fatalf("ParseObject: %v", err)
	}
	dict := obj.(model.ObjDict)
	if v, _ := dict.Get("A"); v != model.ObjInt(2) {
		t.Fatalf("A = %v, want 2 (later duplicate wins)", v)
	}
	if len(warned) != 1 || warned[0] != "A" {
		t.Fatalf("DuplicateKeyWarning calls = %v", warned)
	}
}

func TestParseDictNullValueOmitted(t *testing.T) {
	obj := parseOne(t, "<< /A null /B 1 >>")
	dict := obj.(model.ObjDict)
	if _, ok := dict.Get("A"); ok {
		t.Fatal("expected /A null to be omitted per 7.3.7")
	}
	if v, _ := dict.Get("B"); v != model.ObjInt(1) {
		t.Errorf("B = %v", v)
	}
}

func TestParseUnterminatedArrayErrors(t *testing.T) {
	p := NewParser([]byte(`[1 2 3`))
	if _, err := p.ParseObject(); err == nil {
		t.Fatal("expected error for unterminated array")
	}
}

func TestParseObjectDeclaration(t *testing.T) {
	tk := tokenizer.NewTokenizer([]byte("7 0 obj"))
	decl, err := ParseObjectDeclaration(tk)
	if err != nil {
		t.Fatalf("ParseObjectDeclaration: %v", err)
	}
	if decl.Num != 7 || decl.Gen != 0 {
		t.Fatalf("got %+v", decl)
	}
}

func TestParseIndirectObjectWithCorrectLength(t *testing.T) {
	body := "hello stream body"
	src := "5 0 obj\n<< /Length " + strconv.Itoa(len(body)) + " >>\nstream\n" + body + "\nendstream\nendobj"
	tk := tokenizer.NewTokenizer([]byte(src))

	resolve := func(dict model.ObjDict) (int, bool) {
		v, ok := dict.Get("Length")
		if !ok {
			return 0, false
		}
		n, ok := v.(model.ObjInt)
		return int(n), ok
	}

	decl, obj, warning, err := ParseIndirectObject(tk, resolve, true, 1<<20)
	if err != nil {
		t.Fatalf("ParseIndirectObject: %v", err)
	}
	if decl.Num != 5 {
		t.Fatalf("decl = %+v", decl)
	}
	if warning != "" {
		t.Fatalf("unexpected warning: %q", warning)
	}
	st, ok := obj.(model.ObjStream)
	if !ok || string(st.Raw) != body {
		t.Fatalf("got %#v, want stream body %q", obj, body)
	}
}

func TestParseIndirectObjectRecoversFromWrongLength(t *testing.T) {
	body := "recovered body"
	// /Length deliberately wrong (too short): lenient recovery must scan
	// forward for "endstream" and recover the real body.
	src := "1 0 obj\n<< /Length 1 >>\nstream\n" + body + "\nendstream\nendobj"
	tk := tokenizer.NewTokenizer([]byte(src))

	resolve := func(dict model.ObjDict) (int, bool) {
		v, ok := dict.Get("Length")
		if !ok {
			return 0, false
		}
		n, ok := v.(model.ObjInt)
		return int(n), ok
	}

	_, obj, warning, err := ParseIndirectObject(tk, resolve, true, 1<<20)
	if err != nil {
		t.Fatalf("ParseIndirectObject: %v", err)
	}
	if warning == "" {
		t.Fatal("expected a recovery warning")
	}
	st, ok := obj.(model.ObjStream)
	if !ok || string(st.Raw) != body {
		t.Fatalf("got %#v, want recovered body %q", obj, body)
	}
}

func TestParseIndirectObjectWrongLengthStrictFails(t *testing.T) {
	src := "1 0 obj\n<< /Length 1 >>\nstream\nrecovered body\nendstream\nendobj"
	tk := tokenizer.NewTokenizer([]byte(src))
	resolve := func(dict model.ObjDict) (int, bool) {
		v, _ := dict.Get("Length")
		n, ok := v.(model.ObjInt)
		return int(n), ok
	}
	_, _, _, err := ParseIndirectObject(tk, resolve, false, 1<<20)
	if err == nil {
		t.Fatal("expected error under non-lenient mode with a wrong /Length")
	}
}
