package writer

import (
	"bytes"
	"fmt"
	"io"
)

// output is the byte sink: it tracks the running write offset so the
// cross-reference table can be built from real byte positions, and defers
// error checking the way the teacher's writer does (every write after the
// first failure becomes a no-op, and the error surfaces once at Write's
// return).
type output struct {
	dst     io.Writer
	err     error
	written int

	offsets map[int]int // object number -> byte offset of "N 0 obj"
}

func newOutput(dst io.Writer) *output {
	return &output{dst: dst, offsets: map[int]int{}}
}

func (o *output) bytes(b []byte) {
	if o.err != nil {
		return
	}
	n, err := o.dst.Write(b)
	o.written += n
	if err != nil {
		o.err = err
	}
}

// writeObject emits "N 0 obj ... endobj", recording num's byte offset for
// the xref table. stream, if non-nil, is the already filter-encoded
// payload.
func (o *output) writeObject(num int, body string, stream []byte) {
	o.offsets[num] = o.written
	o.bytes([]byte(fmt.Sprintf("%d 0 obj\n", num)))
	o.bytes([]byte(body))
	if stream != nil {
		o.bytes([]byte("\nstream\n"))
		o.bytes(stream)
		o.bytes([]byte("\nendstream"))
	}
	o.bytes([]byte("\nendobj\n"))
}

func (o *output) writeHeader() {
	o.bytes([]byte("%PDF-1.7\n"))
	// A comment line of four-plus high-bit-set bytes signals binary
	// content to transfer tools (7.5.2).
	o.bytes([]byte("%"))
	o.bytes([]byte{0xE2, 0xE3, 0xCF, 0xD3})
	o.bytes([]byte("\n"))
}

// writeXrefAndTrailer emits a classical cross-reference table covering
// object numbers 1..maxNum (every object must have been written by this
// point, which the pre-flight validation pass guarantees), followed by
// the trailer dictionary built from trailerEntries, in the given order.
func (o *output) writeXrefAndTrailer(maxNum int, trailerEntries [][2]string) {
	var b bytes.Buffer
	xrefOffset := o.written

	b.WriteString("xref\n")
	fmt.Fprintf(&b, "0 %d\n", maxNum+1)
	b.WriteString("0000000000 65535 f \n")
	for n := 1; n <= maxNum; n++ {
		fmt.Fprintf(&b, "%010d 00000 n \n", o.offsets[n])
	}

	b.WriteString("trailer\n<<\n")
	for _, kv := range trailerEntries {
		fmt.Fprintf(&b, "/%s %s\n", kv[0], kv[1])
	}
	b.WriteString(">>\n")
	b.WriteString("startxref\n")
	fmt.Fprintf(&b, "%d\n", xrefOffset)
	b.WriteString("%%EOF")

	o.bytes(b.Bytes())
}
