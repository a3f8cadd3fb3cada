package errs

import (
	"errors"
	"testing"
)

func TestXrefErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &XrefError{Reason: "cannot parse xref section", Err: cause}
	if !errors.Is(err, cause) {
		t.Fatal("expected errors.Is to see through Unwrap")
	}
}

func TestFilterErrorMessage(t *testing.T) {
	err := &FilterError{Filter: "FlateDecode", Pos: 42, Err: errors.New("bad zlib header")}
	want := "filter FlateDecode failed at byte 42: bad zlib header"
	if got := err.Error(); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestEncryptionNotSupportedErrorWithAndWithoutFilter(t *testing.T) {
	withFilter := &EncryptionNotSupportedError{Filter: "Standard"}
	if got := withFilter.Error(); got == "" {
		t.Fatal("expected non-empty message")
	}
	bare := &EncryptionNotSupportedError{}
	if got := bare.Error(); got == "" {
		t.Fatal("expected non-empty message even without a filter name")
	}
}

func TestDanglingReference(t *testing.T) {
	err := DanglingReference(7, 0)
	want := "dangling reference to object 7 0: never allocated"
	if got := err.Error(); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
