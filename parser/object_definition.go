package parser

import (
	"bytes"
	"fmt"

	"github.com/jgpdf/pdfcore/errs"
	"github.com/jgpdf/pdfcore/model"
	"github.com/jgpdf/pdfcore/tokenizer"
)

func errBadStreamLength(declared int) error {
	return fmt.Errorf("declared /Length %d does not reach 'endstream'", declared)
}

func warnLengthMismatch(declared, recovered int) string {
	return fmt.Sprintf("stream /Length %d did not reach 'endstream'; recovered %d bytes by scanning", declared, recovered)
}

func warnRecoveredLength(recovered int) string {
	return fmt.Sprintf("stream had no usable /Length; recovered %d bytes by scanning for 'endstream'", recovered)
}

// StreamLengthResolver resolves a stream dictionary's /Length entry to a
// byte count. /Length may itself be an indirect reference, which only the
// caller (the reader, with the xref table in hand) can follow; ok is false
// when the length could not be determined at all.
type StreamLengthResolver func(dict model.ObjDict) (length int, ok bool)

// ParseIndirectObject reads one "N G obj ... endobj" definition starting at
// the tokenizer's current position. When the object is a stream, resolve is
// used to determine how many bytes to read for its payload; if resolve
// reports no usable length (or the bytes it names are not immediately
// followed by "endstream"), and lenient is true, the parser scans forward
// up to maxRecoveryBytes for the literal "endstream" and adopts the
// distance actually found, returning a non-empty warning describing the
// recovery.
func ParseIndirectObject(tk *tokenizer.Tokenizer, resolve StreamLengthResolver, lenient bool, maxRecoveryBytes int) (decl ObjectDeclaration, obj model.Object, warning string, err error) {
	decl, err = ParseObjectDeclaration(tk)
	if err != nil {
		return decl, nil, "", err
	}

	p := NewParserFromTokenizer(tk)
	obj, err = p.ParseObject()
	if err != nil {
		return decl, nil, "", err
	}

	dict, isDict := obj.(model.ObjDict)
	next, peekErr := tk.PeekToken()
	if peekErr != nil {
		return decl, nil, "", &errs.IoError{Op: "tokenize", Err: peekErr}
	}
	if !isDict || !next.IsOther("stream") {
		return decl, obj, "", nil
	}

	_, _ = tk.NextToken() // consume "stream"
	tk.SkipBytes(tk.StreamPosition())
	start := tk.CurrentPosition()

	length, haveLength := resolve(dict)
	if haveLength {
		candidate := tk.SkipBytes(length)
		if endsWithEndstream(tk) {
			return decl, model.ObjStream{Dict: dict, Raw: candidate}, "", nil
		}
		// Declared length did not land on "endstream": rewind and, if
		// lenient, fall through to the recovery scan below.
		tk.SetPosition(start)
		if !lenient {
			return decl, nil, "", &errs.FilterError{Filter: "stream", Pos: start, Err: errBadStreamLength(length)}
		}
	} else if !lenient {
		return decl, nil, "", &errs.SyntaxError{Pos: start, Reason: "stream has no usable /Length"}
	}

	raw, found := scanForEndstream(tk.Bytes(), maxRecoveryBytes)
	if !found {
		return decl, nil, "", &errs.SyntaxError{Pos: start, Reason: "no endstream found within recovery window"}
	}
	tk.SetPosition(start + len(raw))
	if haveLength {
		warning = warnLengthMismatch(length, len(raw))
	} else {
		warning = warnRecoveredLength(len(raw))
	}
	return decl, model.ObjStream{Dict: dict, Raw: raw}, warning, nil
}

func endsWithEndstream(tk *tokenizer.Tokenizer) bool {
	save := tk.CurrentPosition()
	defer tk.SetPosition(save)
	tok, err := tk.NextToken()
	return err == nil && tok.IsOther("endstream")
}

var endstreamMarker = []byte("endstream")

func scanForEndstream(tail []byte, maxBytes int) ([]byte, bool) {
	window := tail
	if maxBytes > 0 && maxBytes < len(window) {
		window = window[:maxBytes]
	}
	idx := bytes.Index(window, endstreamMarker)
	if idx < 0 {
		return nil, false
	}
	content := window[:idx]
	content = bytes.TrimRight(content, "\r\n")
	return content, true
}
