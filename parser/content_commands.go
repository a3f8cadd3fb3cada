package parser

import (
	"fmt"

	"github.com/jgpdf/pdfcore/errs"
	"github.com/jgpdf/pdfcore/model"
)

func errUnexpectedEOFInContent() error {
	return &errs.SyntaxError{Reason: "unexpected end of content stream"}
}

func assertLen(stack []model.Object, n int) error {
	if len(stack) != n {
		return fmt.Errorf("expected %d operand(s), got %d", n, len(stack))
	}
	return nil
}

func number(o model.Object) (float64, error) {
	switch v := o.(type) {
	case model.ObjInt:
		return float64(v), nil
	case model.ObjReal:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", o)
	}
}

func numbers(stack []model.Object) ([]float64, error) {
	out := make([]float64, len(stack))
	for i, o := range stack {
		n, err := number(o)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func oneName(stack []model.Object) (model.Name, error) {
	if err := assertLen(stack, 1); err != nil {
		return "", err
	}
	n, ok := stack[0].(model.ObjName)
	if !ok {
		return "", fmt.Errorf("expected a name, got %T", stack[0])
	}
	return model.Name(n), nil
}

func oneString(stack []model.Object) ([]byte, error) {
	if err := assertLen(stack, 1); err != nil {
		return nil, err
	}
	s, ok := stack[0].(model.ObjString)
	if !ok {
		return nil, fmt.Errorf("expected a string, got %T", stack[0])
	}
	return s.Raw, nil
}

func matrixFrom(nbs []float64) Matrix {
	var m Matrix
	copy(m[:], nbs)
	return m
}

// buildOperation maps an operator keyword and its accumulated operand
// stack to a typed Operation. Operators outside the supported subset (full
// colour, shading, marked-content, XObject painting, ...) still parse —
// they fall through to OpUnknown, preserving stream order for any visitor
// that wants to see them — but are not given a dedicated semantic type
// per the component design's named subset.
func buildOperation(op string, stack []model.Object) (Operation, error) {
	switch op {
	case "Tj":
		txt, err := oneString(stack)
		return OpShowText{Text: txt}, err
	case "TJ":
		if err := assertLen(stack, 1); err != nil {
			return nil, err
		}
		arr, ok := stack[0].(model.ObjArray)
		if !ok {
			return nil, fmt.Errorf("TJ: expected an array, got %T", stack[0])
		}
		items := make([]interface{}, len(arr))
		for i, el := range arr {
			switch v := el.(type) {
			case model.ObjString:
				items[i] = v.Raw
			case model.ObjInt:
				items[i] = float64(v)
			case model.ObjReal:
				items[i] = float64(v)
			default:
				return nil, fmt.Errorf("TJ: unexpected array element %T", el)
			}
		}
		return OpShowTextArray{Items: items}, nil
	case "'":
		txt, err := oneString(stack)
		return OpMoveShowText{Text: txt}, err
	case "\"":
		if err := assertLen(stack, 3); err != nil {
			return nil, err
		}
		aw, err := number(stack[0])
		if err != nil {
			return nil, err
		}
		ac, err := number(stack[1])
		if err != nil {
			return nil, err
		}
		s, ok := stack[2].(model.ObjString)
		if !ok {
			return nil, fmt.Errorf(`": expected a string operand`)
		}
		return OpMoveSetShowText{Aw: aw, Ac: ac, Text: s.Raw}, nil

	case "Tf":
		if err := assertLen(stack, 2); err != nil {
			return nil, err
		}
		name, err := oneName(stack[:1])
		if err != nil {
			return nil, err
		}
		size, err := number(stack[1])
		return OpSetFont{Font: name, Size: size}, err
	case "Tc":
		nbs, err := numbers(stack)
		if err != nil || len(nbs) != 1 {
			return nil, fmt.Errorf("Tc: expected one operand")
		}
		return OpSetCharSpacing{Tc: nbs[0]}, nil
	case "Tw":
		nbs, err := numbers(stack)
		if err != nil || len(nbs) != 1 {
			return nil, fmt.Errorf("Tw: expected one operand")
		}
		return OpSetWordSpacing{Tw: nbs[0]}, nil
	case "Tz":
		nbs, err := numbers(stack)
		if err != nil || len(nbs) != 1 {
			return nil, fmt.Errorf("Tz: expected one operand")
		}
		return OpSetHorizScaling{Tz: nbs[0]}, nil
	case "TL":
		nbs, err := numbers(stack)
		if err != nil || len(nbs) != 1 {
			return nil, fmt.Errorf("TL: expected one operand")
		}
		return OpSetTextLeading{TL: nbs[0]}, nil
	case "Ts":
		nbs, err := numbers(stack)
		if err != nil || len(nbs) != 1 {
			return nil, fmt.Errorf("Ts: expected one operand")
		}
		return OpSetTextRise{Ts: nbs[0]}, nil
	case "Tr":
		nbs, err := numbers(stack)
		if err != nil || len(nbs) != 1 {
			return nil, fmt.Errorf("Tr: expected one operand")
		}
		return OpSetTextRender{Tr: int(nbs[0])}, nil

	case "Td":
		nbs, err := numbers(stack)
		if err != nil || len(nbs) != 2 {
			return nil, fmt.Errorf("Td: expected two operands")
		}
		return OpTextMove{X: nbs[0], Y: nbs[1]}, nil
	case "TD":
		nbs, err := numbers(stack)
		if err != nil || len(nbs) != 2 {
			return nil, fmt.Errorf("TD: expected two operands")
		}
		return OpTextMoveSet{X: nbs[0], Y: nbs[1]}, nil
	case "Tm":
		nbs, err := numbers(stack)
		if err != nil || len(nbs) != 6 {
			return nil, fmt.Errorf("Tm: expected six operands")
		}
		return OpSetTextMatrix{Matrix: matrixFrom(nbs)}, nil
	case "T*":
		return OpTextNextLine{}, assertLen(stack, 0)
	case "BT":
		return OpBeginText{}, assertLen(stack, 0)
	case "ET":
		return OpEndText{}, assertLen(stack, 0)

	case "q":
		return OpSave{}, assertLen(stack, 0)
	case "Q":
		return OpRestore{}, assertLen(stack, 0)
	case "cm":
		nbs, err := numbers(stack)
		if err != nil || len(nbs) != 6 {
			return nil, fmt.Errorf("cm: expected six operands")
		}
		return OpConcat{Matrix: matrixFrom(nbs)}, nil

	case "m":
		nbs, err := numbers(stack)
		if err != nil || len(nbs) != 2 {
			return nil, fmt.Errorf("m: expected two operands")
		}
		return OpMoveTo{X: nbs[0], Y: nbs[1]}, nil
	case "l":
		nbs, err := numbers(stack)
		if err != nil || len(nbs) != 2 {
			return nil, fmt.Errorf("l: expected two operands")
		}
		return OpLineTo{X: nbs[0], Y: nbs[1]}, nil
	case "re":
		nbs, err := numbers(stack)
		if err != nil || len(nbs) != 4 {
			return nil, fmt.Errorf("re: expected four operands")
		}
		return OpRectangle{X: nbs[0], Y: nbs[1], W: nbs[2], H: nbs[3]}, nil
	case "h":
		return OpClosePath{}, assertLen(stack, 0)
	case "f", "F":
		return OpFill{}, nil
	case "S":
		return OpStroke{}, assertLen(stack, 0)
	case "n":
		return OpEndPath{}, assertLen(stack, 0)
	case "W", "W*":
		return OpClip{}, nil

	default:
		return OpUnknown{Name: op, Operands: stack}, nil
	}
}
