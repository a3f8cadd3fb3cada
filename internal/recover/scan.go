// Package recover implements the last-resort recovery path used when a
// file's cross-reference table is missing, unreadable, or points at
// garbage: a full-file scan for "N G obj" declarations and the trailer
// keyword, from which the reader package can rebuild a synthetic
// cross-reference table.
package recover

import (
	"bytes"

	"github.com/jgpdf/pdfcore/parser"
	"github.com/jgpdf/pdfcore/tokenizer"
)

// Entry is one object declaration found by the scan.
type Entry struct {
	Num, Gen int
	Offset   int
}

// Result is the outcome of a full-file scan.
type Result struct {
	Entries []Entry

	// TrailerOffset is the byte offset just after the last "trailer"
	// keyword found, if any; HasTrailer reports whether one was found
	// at all (files rebuilt purely from xref streams have none).
	TrailerOffset int
	HasTrailer    bool
}

// ScanObjects walks the whole file line by line looking for "N G obj"
// declarations and the "trailer" keyword. It works line by line rather
// than through a single tokenizer pass because stream payloads are
// arbitrary binary data that would desynchronise token-level scanning;
// "stream"/"endstream" pairs are tracked just well enough to skip over
// their contents without misreading binary bytes as object headers.
//
// Later entries for an already-seen object number are kept, not the
// first: a fully scanned file behaves like one long incremental update,
// and later definitions shall win (7.5.6).
func ScanObjects(data []byte) Result {
	var res Result
	seen := map[[2]int]int{} // (num,gen) -> index into res.Entries
	inStream := false
	pos := 0

	for pos < len(data) {
		line, next := nextLine(data, pos)

		if inStream {
			if bytes.Contains(line, []byte("endstream")) {
				inStream = false
			}
			pos = next
			continue
		}

		trimmed := bytes.TrimSpace(line)
		if bytes.HasPrefix(trimmed, []byte("trailer")) {
			res.TrailerOffset = pos + bytes.Index(line, []byte("trailer")) + len("trailer")
			res.HasTrailer = true
			pos = next
			continue
		}

		if decl, ok := tryObjectDeclaration(trimmed); ok {
			key := [2]int{decl.Num, decl.Gen}
			entry := Entry{Num: decl.Num, Gen: decl.Gen, Offset: pos}
			if idx, dup := seen[key]; dup {
				res.Entries[idx] = entry
			} else {
				seen[key] = len(res.Entries)
				res.Entries = append(res.Entries, entry)
			}
		}

		if bytes.Contains(line, []byte("stream")) && !bytes.Contains(line, []byte("endstream")) {
			inStream = true
		}
		pos = next
	}
	return res
}

func nextLine(data []byte, pos int) (line []byte, next int) {
	nl := bytes.IndexByte(data[pos:], '\n')
	if nl < 0 {
		return data[pos:], len(data)
	}
	return data[pos : pos+nl], pos + nl + 1
}

func tryObjectDeclaration(line []byte) (parser.ObjectDeclaration, bool) {
	tk := tokenizer.NewTokenizer(line)
	decl, err := parser.ParseObjectDeclaration(tk)
	if err != nil {
		return parser.ObjectDeclaration{}, false
	}
	return decl, true
}
