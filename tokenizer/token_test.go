package tokenizer

import "testing"

func TestNextTokenKinds(t *testing.T) {
	tk := NewTokenizer([]byte(`12 3.5 /Name (lit) <4869> [ ] << >> obj`))

	want := []struct {
		kind  Kind
		value string
	}{
		{Integer, "12"},
		{Float, "3.5"},
		{Name, "Name"},
		{String, "lit"},
		{StringHex, "Hi"},
		{StartArray, ""},
		{EndArray, ""},
		{StartDic, ""},
		{EndDic, ""},
		{Other, "obj"},
	}

	for i, w := range want {
		tok, err := tk.NextToken()
		if err != nil {
			t.Fatalf("token %d: unexpected error: %v", i, err)
		}
		if tok.Kind != w.kind {
			t.Fatalf("token %d: Kind = %v, want %v", i, tok.Kind, w.kind)
		}
		if w.value != "" && tok.Value != w.value {
			t.Fatalf("token %d: Value = %q, want %q", i, tok.Value, w.value)
		}
	}
	if !tk.IsEOF() {
		t.Fatal("expected EOF after consuming all tokens")
	}
}

func TestNameHashEscape(t *testing.T) {
	tk := NewTokenizer([]byte(`/A#20B`))
	tok, err := tk.NextToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.Kind != Name || tok.Value != "A B" {
		t.Fatalf("got %v %q, want Name %q", tok.Kind, tok.Value, "A B")
	}
}

func TestLiteralStringEscapesAndNesting(t *testing.T) {
	tk := NewTokenizer([]byte(`(a \(nested\) b\n\101)`))
	tok, err := tk.NextToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "a (nested) b\nA"
	if tok.Value != want {
		t.Fatalf("got %q want %q", tok.Value, want)
	}
}

func TestPeekDoesNotAdvance(t *testing.T) {
	tk := NewTokenizer([]byte(`1 2 3`))
	p1, _ := tk.PeekToken()
	p2, _ := tk.PeekToken()
	if p1 != p2 {
		t.Fatalf("PeekToken not idempotent: %v != %v", p1, p2)
	}
	n, _ := tk.NextToken()
	if n.Value != "1" {
		t.Fatalf("NextToken after peek = %q, want %q", n.Value, "1")
	}
}

func TestStreamKeywordStopsLookahead(t *testing.T) {
	tk := NewTokenizer([]byte("stream\nBINARYDATA\x00\x01\x02endstream"))
	tok, _ := tk.NextToken()
	if !tok.IsOther("stream") {
		t.Fatalf("expected 'stream' keyword token, got %v", tok)
	}
	skip := tk.StreamPosition()
	payload := tk.SkipBytes(skip + len("BINARYDATA\x00\x01\x02"))
	if string(payload[skip:]) != "BINARYDATA\x00\x01\x02" {
		t.Fatalf("unexpected payload: %q", payload[skip:])
	}
	next, err := tk.NextToken()
	if err != nil || !next.IsOther("endstream") {
		t.Fatalf("expected endstream next, got %v, %v", next, err)
	}
}

func TestSetPositionRewinds(t *testing.T) {
	tk := NewTokenizer([]byte(`1 2 3`))
	tk.NextToken()
	tk.NextToken()
	tk.SetPosition(0)
	tok, _ := tk.NextToken()
	if tok.Value != "1" {
		t.Fatalf("after rewind got %q, want %q", tok.Value, "1")
	}
}
