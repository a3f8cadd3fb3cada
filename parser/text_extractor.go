package parser

import "strings"

// TextExtractor is a Visitor that concatenates the text shown by Tj, TJ, '
// and " operators. While word spacing (Tw) is positive, a space follows
// each shown string; a TJ adjustment below -100 also becomes a space, and
// line moves become newlines. Character spacing (Tc) and horizontal
// scaling (Tz) are tracked but do not change the extracted text.
type TextExtractor struct {
	NullVisitor

	Tc, Tw float64 // character, word spacing
	Tz     float64 // horizontal scaling, percent; 100 is identity

	sb strings.Builder
}

// NewTextExtractor returns an extractor with the text-state defaults of
// 9.3: no extra spacing, 100% horizontal scaling.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{Tz: 100}
}

func (t *TextExtractor) VisitOperation(op Operation) {
	switch o := op.(type) {
	case OpSetCharSpacing:
		t.Tc = o.Tc
	case OpSetWordSpacing:
		t.Tw = o.Tw
	case OpSetHorizScaling:
		t.Tz = o.Tz
	case OpShowText:
		t.emit(o.Text)
	case OpMoveShowText:
		t.sb.WriteByte('\n')
		t.emit(o.Text)
	case OpMoveSetShowText:
		t.Tw, t.Tc = o.Aw, o.Ac
		t.sb.WriteByte('\n')
		t.emit(o.Text)
	case OpShowTextArray:
		for _, item := range o.Items {
			switch v := item.(type) {
			case []byte:
				t.emit(v)
			case float64:
				// A negative adjustment (glyph-space units, 1/1000 em)
				// moves right-to-left text forward; treat any large
				// adjustment as a word break, mirroring how a visual
				// reader perceives the gap.
				if v < -100 {
					t.sb.WriteByte(' ')
				}
			}
		}
	case OpTextNextLine, OpTextMove, OpTextMoveSet, OpSetTextMatrix:
		t.sb.WriteByte('\n')
	}
}

func (t *TextExtractor) emit(raw []byte) {
	t.sb.Write(raw)
	if t.Tw > 0 {
		t.sb.WriteByte(' ')
	}
}

// String returns the accumulated text.
func (t *TextExtractor) String() string {
	return t.sb.String()
}
