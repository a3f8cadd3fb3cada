package textenc

import (
	"bytes"
	"testing"
)

func TestUTF16BERoundTrip(t *testing.T) {
	want := "Héllo, 世界"
	encoded, err := EncodeUTF16BE(want)
	if err != nil {
		t.Fatalf("EncodeUTF16BE: %v", err)
	}
	if !bytes.HasPrefix(encoded, []byte{0xFE, 0xFF}) {
		t.Fatalf("missing BOM: % x", encoded)
	}
	got, err := DecodeUTF16BE(encoded)
	if err != nil {
		t.Fatalf("DecodeUTF16BE: %v", err)
	}
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestWinAnsiRoundTrip(t *testing.T) {
	want := "Plain ASCII text"
	if !CanEncodeWinAnsi(want) {
		t.Fatal("expected plain ASCII to be WinAnsi-encodable")
	}
	encoded, err := EncodeWinAnsi(want)
	if err != nil {
		t.Fatalf("EncodeWinAnsi: %v", err)
	}
	got, err := DecodePDFDocOrWinAnsi(encoded)
	if err != nil {
		t.Fatalf("DecodePDFDocOrWinAnsi: %v", err)
	}
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestCanEncodeWinAnsiRejectsOutOfRepertoire(t *testing.T) {
	if CanEncodeWinAnsi("漢字") {
		t.Fatal("CJK text should not be WinAnsi-encodable")
	}
}
