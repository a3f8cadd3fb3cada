package filters

import (
	"bytes"
	"compress/flate"
	"testing"

	"github.com/jgpdf/pdfcore/model"
)

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		name  string
		f     model.Filter
		parms model.DecodeParms
	}{
		{"flate", model.FilterFlate, model.DefaultDecodeParms()},
		{"lzw", model.FilterLZW, model.DefaultDecodeParms()},
		{"ascii85", model.FilterASCII85, model.DefaultDecodeParms()},
		{"asciihex", model.FilterASCIIHex, model.DefaultDecodeParms()},
		{"runlength", model.FilterRunLength, model.DefaultDecodeParms()},
		{"dct-passthrough", model.FilterDCT, model.DefaultDecodeParms()},
	}
	payload := []byte("BT /F1 12 Tf (Hello, World!) Tj ET ")
	payload = append(payload, bytes.Repeat([]byte("abcxyz123"), 20)...)

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			codec, ok := Lookup(c.f)
			if !ok {
				t.Fatalf("filter %s not registered", c.f)
			}
			encoded, err := codec.Encode(payload, c.parms)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			decoded, err := codec.Decode(encoded, c.parms)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if !bytes.Equal(decoded, payload) {
				t.Fatalf("round trip mismatch: got %q want %q", decoded, payload)
			}
		})
	}
}

func TestChainMultiStage(t *testing.T) {
	payload := []byte("some content stream operators BT ET")
	encoded, err := EncodeChain([]model.Filter{model.FilterLZW, model.FilterASCII85}, nil, payload)
	if err != nil {
		t.Fatalf("EncodeChain: %v", err)
	}
	decoded, err := Chain([]model.Filter{model.FilterASCII85, model.FilterLZW}, nil, encoded)
	if err != nil {
		t.Fatalf("Chain: %v", err)
	}
	if !bytes.Equal(decoded, payload) {
		t.Fatalf("chain round trip mismatch: got %q want %q", decoded, payload)
	}
}

func TestChainUnknownFilter(t *testing.T) {
	_, err := Chain([]model.Filter{model.Filter("BogusDecode")}, nil, []byte("x"))
	if err == nil {
		t.Fatal("expected error for unknown filter")
	}
}

func TestFlatePredictorPNGUp(t *testing.T) {
	// Two 3-byte rows, predictor tag 2 ("Up") on the second row.
	raw := []byte{0, 10, 20, 30, 2, 5, 5, 5}
	codec := flateCodec{}
	encoded, err := codec.Encode(raw, model.DefaultDecodeParms())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	parms := model.DecodeParms{Predictor: 12, Colors: 3, BitsPerComponent: 8, Columns: 1}
	out, err := codec.Decode(encoded, parms)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := []byte{10, 20, 30, 15, 25, 35}
	if !bytes.Equal(out, want) {
		t.Fatalf("predictor mismatch: got %v want %v", out, want)
	}
}

func TestASCIIHexWhitespaceTolerant(t *testing.T) {
	codec, _ := Lookup(model.FilterASCIIHex)
	out, err := codec.Decode([]byte("48 65 6C 6C 6F>"), model.DefaultDecodeParms())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if string(out) != "Hello" {
		t.Fatalf("got %q want %q", out, "Hello")
	}
}

func TestRunLengthMissingEOD(t *testing.T) {
	codec, _ := Lookup(model.FilterRunLength)
	_, err := codec.Decode([]byte{0x03, 'a', 'b', 'c', 'd'}, model.DefaultDecodeParms())
	if err == nil {
		t.Fatal("expected error for missing EOD marker")
	}
}

func TestChainLenientRecoversRawDeflate(t *testing.T) {
	payload := []byte("recoverable content stream payload")

	var rawBuf bytes.Buffer
	w, err := flate.NewWriter(&rawBuf, flate.DefaultCompression)
	if err != nil {
		t.Fatalf("flate.NewWriter: %v", err)
	}
	if _, err := w.Write(payload); err != nil {
		t.Fatalf("write: %v", err)
	}
	w.Close()

	out, warnings, err := ChainLenient([]model.Filter{model.FilterFlate}, nil, rawBuf.Bytes(), RecoveryOptions{MaxAttempts: 4})
	if err != nil {
		t.Fatalf("ChainLenient: %v", err)
	}
	if !bytes.Equal(out, payload) {
		t.Fatalf("got %q want %q", out, payload)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected one recovery warning, got %v", warnings)
	}
}
