package parser

import (
	"github.com/jgpdf/pdfcore/model"
	"github.com/pdfcpu/pdfcpu/pkg/log"
)

// Matrix is a PDF transformation matrix [a b c d e f].
type Matrix [6]float64

// Operation is one decoded content-stream instruction: an operator plus
// its already-typed operands. The full ISO operator set parses (so an
// unrecognised operator never breaks the stream), but only the subset
// named in the component design is given a dedicated type; anything else
// becomes OpUnknown.
type Operation interface {
	isOperation()
}

type (
	// Text showing.
	OpShowText      struct{ Text []byte }             // Tj
	OpShowTextArray struct{ Items []interface{} }      // TJ: string or number (glyph-space adjustment) entries
	OpMoveShowText  struct{ Text []byte }              // '
	OpMoveSetShowText struct {                          // "
		Aw, Ac float64
		Text   []byte
	}

	// Text state.
	OpSetFont          struct {
		Font model.Name
		Size float64
	}
	OpSetCharSpacing   struct{ Tc float64 }
	OpSetWordSpacing   struct{ Tw float64 }
	OpSetHorizScaling  struct{ Tz float64 }
	OpSetTextLeading   struct{ TL float64 }
	OpSetTextRise      struct{ Ts float64 }
	OpSetTextRender    struct{ Tr int }

	// Text positioning.
	OpTextMove      struct{ X, Y float64 } // Td
	OpTextMoveSet   struct{ X, Y float64 } // TD
	OpSetTextMatrix struct{ Matrix Matrix } // Tm
	OpTextNextLine  struct{}                // T*
	OpBeginText     struct{}                // BT
	OpEndText       struct{}                // ET

	// Graphics state.
	OpSave    struct{}          // q
	OpRestore struct{}          // Q
	OpConcat  struct{ Matrix Matrix } // cm

	// Path construction and painting (subset).
	OpMoveTo    struct{ X, Y float64 }
	OpLineTo    struct{ X, Y float64 }
	OpRectangle struct{ X, Y, W, H float64 }
	OpClosePath struct{}
	OpFill      struct{}
	OpStroke    struct{}
	OpEndPath   struct{}
	OpClip      struct{}

	// OpUnknown carries any operator this engine does not interpret
	// semantically, e.g. colour-space or shading operators; it still
	// dispatches to the visitor so tools built on top can inspect it.
	OpUnknown struct {
		Name     string
		Operands []model.Object
	}
)

func (OpShowText) isOperation()        {}
func (OpShowTextArray) isOperation()   {}
func (OpMoveShowText) isOperation()    {}
func (OpMoveSetShowText) isOperation() {}
func (OpSetFont) isOperation()         {}
func (OpSetCharSpacing) isOperation()  {}
func (OpSetWordSpacing) isOperation()  {}
func (OpSetHorizScaling) isOperation() {}
func (OpSetTextLeading) isOperation()  {}
func (OpSetTextRise) isOperation()     {}
func (OpSetTextRender) isOperation()   {}
func (OpTextMove) isOperation()        {}
func (OpTextMoveSet) isOperation()     {}
func (OpSetTextMatrix) isOperation()   {}
func (OpTextNextLine) isOperation()    {}
func (OpBeginText) isOperation()       {}
func (OpEndText) isOperation()         {}
func (OpSave) isOperation()            {}
func (OpRestore) isOperation()         {}
func (OpConcat) isOperation()          {}
func (OpMoveTo) isOperation()          {}
func (OpLineTo) isOperation()          {}
func (OpRectangle) isOperation()       {}
func (OpClosePath) isOperation()       {}
func (OpFill) isOperation()            {}
func (OpStroke) isOperation()          {}
func (OpEndPath) isOperation()         {}
func (OpClip) isOperation()            {}
func (OpUnknown) isOperation()         {}

// Visitor receives one call per Operation, in exactly the stream's byte
// order. Implementations that only care about a subset of events embed
// NullVisitor to get no-op defaults for the rest.
type Visitor interface {
	VisitOperation(op Operation)
}

// NullVisitor implements Visitor with every method a no-op; useful as a
// base to embed, and on its own to exercise dispatch correctness without
// any side effect.
type NullVisitor struct{}

func (NullVisitor) VisitOperation(Operation) {}

// ParseContentElement parses one operation starting at the parser's
// current position. ContentStreamMode must already be set.
func (p *Parser) ParseContentElement() (Operation, error) {
	var stack []model.Object
	for {
		if p.tokens.IsEOF() {
			return nil, errUnexpectedEOFInContent()
		}
		obj, err := p.ParseObject()
		if err != nil {
			return nil, err
		}
		cmd, ok := obj.(Command)
		if !ok {
			stack = append(stack, obj)
			continue
		}
		return buildOperation(string(cmd), stack)
	}
}

// InterpretContent decodes every operation in content, in order, calling
// visitor.VisitOperation for each. Operators that cannot be parsed into a
// known form from their operand stack are dispatched as OpUnknown rather
// than aborting the whole stream.
func InterpretContent(content []byte, visitor Visitor) error {
	p := NewParser(content)
	p.ContentStreamMode = true
	for !p.tokens.IsEOF() {
		op, err := p.ParseContentElement()
		if err != nil {
			log.Parse.Printf("content stream: skipping malformed operation: %v\n", err)
			continue
		}
		visitor.VisitOperation(op)
	}
	return nil
}
