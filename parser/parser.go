// Package parser drives the tokenizer to build PDF objects (Boolean,
// Integer, Real, Name, String, Array, Dictionary, Stream, Null,
// IndirectRef, and N G obj definitions) and, in content-stream mode, the
// operator/operand pairs of a content stream.
package parser

import (
	"fmt"

	"github.com/jgpdf/pdfcore/errs"
	"github.com/jgpdf/pdfcore/model"
	"github.com/jgpdf/pdfcore/tokenizer"
)

// Parser turns tokens into model.Object values. It only handles a single
// self-contained chunk of a PDF file (an object definition or a content
// stream); it knows nothing about xref, filters or encryption — see the
// reader package for that.
type Parser struct {
	tokens *tokenizer.Tokenizer

	// ContentStreamMode disallows "N G R" indirect references (content
	// streams never contain them) and instead accepts bare keywords as
	// Command operators.
	ContentStreamMode bool

	// DuplicateKeyWarning, when non-nil, is called whenever a dictionary
	// redefines a key; the later value wins per 7.3.7.
	DuplicateKeyWarning func(key model.ObjName)
}

// NewParser builds a parser reading from data.
func NewParser(data []byte) *Parser {
	return NewParserFromTokenizer(tokenizer.NewTokenizer(data))
}

// NewParserFromTokenizer builds a parser continuing from an
// already-positioned tokenizer, letting callers share lookahead state
// across object boundaries.
func NewParserFromTokenizer(tk *tokenizer.Tokenizer) *Parser {
	return &Parser{tokens: tk}
}

// Command is a content-stream operator keyword, e.g. "Tj", "re", "q".
type Command string

func (c Command) String() string    { return string(c) }
func (c Command) PDFString() string { return string(c) }

// ParseObject parses exactly one object from the current position.
func (p *Parser) ParseObject() (model.Object, error) {
	tk, err := p.tokens.NextToken()
	if err != nil {
		return nil, &errs.IoError{Op: "tokenize", Err: err}
	}

	switch tk.Kind {
	case tokenizer.EOF:
		return nil, &errs.SyntaxError{Pos: tk.Pos, Reason: "unexpected end of input"}
	case tokenizer.Name:
		return model.ObjName(tk.Value), nil
	case tokenizer.String:
		return model.ObjString{Raw: []byte(tk.Value), Hex: false}, nil
	case tokenizer.StringHex:
		return model.ObjString{Raw: []byte(tk.Value), Hex: true}, nil
	case tokenizer.StartArray:
		return p.parseArray()
	case tokenizer.StartDic:
		return p.parseDict()
	case tokenizer.Float:
		f, err := tk.Float()
		if err != nil {
			return nil, &errs.LexError{Pos: tk.Pos, Reason: err.Error()}
		}
		return model.ObjReal(f), nil
	case tokenizer.Other:
		return p.parseOther(tk)
	default:
		return p.parseNumericOrIndirectRef(tk)
	}
}

func (p *Parser) parseArray() (model.ObjArray, error) {
	var a model.ObjArray
	for {
		tk, err := p.tokens.PeekToken()
		if err != nil {
			return nil, &errs.IoError{Op: "tokenize", Err: err}
		}
		switch tk.Kind {
		case tokenizer.EndArray:
			_, _ = p.tokens.NextToken()
			return a, nil
		case tokenizer.EOF:
			return nil, &errs.SyntaxError{Pos: tk.Pos, Reason: "unterminated array"}
		default:
			obj, err := p.ParseObject()
			if err != nil {
				return nil, err
			}
			a = append(a, obj)
		}
	}
}

func (p *Parser) parseDict() (model.ObjDict, error) {
	d := model.NewDict()
	for {
		tk, err := p.tokens.PeekToken()
		if err != nil {
			return d, &errs.IoError{Op: "tokenize", Err: err}
		}
		switch tk.Kind {
		case tokenizer.EndDic:
			_, _ = p.tokens.NextToken()
			return d, nil
		case tokenizer.EOF:
			return d, &errs.SyntaxError{Pos: tk.Pos, Reason: "unterminated dictionary"}
		case tokenizer.Name:
			key := model.ObjName(tk.Value)
			_, _ = p.tokens.NextToken()

			val, err := p.ParseObject()
			if err != nil {
				return d, err
			}

			// A null value is equivalent to omitting the entry (7.3.7).
			if _, isNull := val.(model.ObjNull); isNull {
				continue
			}
			if _, dup := d.Get(key); dup && p.DuplicateKeyWarning != nil {
				p.DuplicateKeyWarning(key)
			}
			d.Set(key, val)
		default:
			return d, &errs.SyntaxError{Pos: tk.Pos, Reason: "expected a name or '>>' in dictionary"}
		}
	}
}

func (p *Parser) parseOther(tk tokenizer.Token) (model.Object, error) {
	switch tk.Value {
	case "null":
		return model.ObjNull{}, nil
	case "true":
		return model.ObjBool(true), nil
	case "false":
		return model.ObjBool(false), nil
	default:
		if p.ContentStreamMode {
			return Command(tk.Value), nil
		}
		return nil, &errs.SyntaxError{Pos: tk.Pos, Reason: fmt.Sprintf("unexpected keyword %q", tk.Value)}
	}
}

// parseNumericOrIndirectRef disambiguates "N", "N.N" and "N G R" by
// peeking up to two tokens ahead, per 7.3.10.
func (p *Parser) parseNumericOrIndirectRef(tk tokenizer.Token) (model.Object, error) {
	if tk.Kind != tokenizer.Integer {
		return nil, &errs.SyntaxError{Pos: tk.Pos, Reason: fmt.Sprintf("expected a number, got %q", tk.Value)}
	}
	n, err := tk.Int()
	if err != nil {
		return nil, &errs.LexError{Pos: tk.Pos, Reason: err.Error()}
	}

	if p.ContentStreamMode {
		return model.ObjInt(n), nil
	}

	next, err := p.tokens.PeekToken()
	if err != nil || next.Kind != tokenizer.Integer {
		return model.ObjInt(n), nil
	}
	gen, err := next.Int()
	if err != nil {
		return model.ObjInt(n), nil
	}
	nextNext, err := p.tokens.PeekPeekToken()
	if err != nil || !nextNext.IsOther("R") {
		return model.ObjInt(n), nil
	}

	_, _ = p.tokens.NextToken() // consume generation
	_, _ = p.tokens.NextToken() // consume "R"
	return model.ObjRef{Num: n, Gen: gen}, nil
}

// ObjectDeclaration is the parsed header of "N G obj".
type ObjectDeclaration struct {
	Num, Gen int
}

// ParseObjectDeclaration reads the "N G obj" header at the tokenizer's
// current position without consuming the object body.
func ParseObjectDeclaration(tk *tokenizer.Tokenizer) (ObjectDeclaration, error) {
	numTok, err := tk.NextToken()
	if err != nil {
		return ObjectDeclaration{}, &errs.IoError{Op: "tokenize", Err: err}
	}
	num, err := numTok.Int()
	if numTok.Kind != tokenizer.Integer || err != nil {
		return ObjectDeclaration{}, &errs.SyntaxError{Pos: numTok.Pos, Reason: "expected object number"}
	}

	genTok, err := tk.NextToken()
	if err != nil {
		return ObjectDeclaration{}, &errs.IoError{Op: "tokenize", Err: err}
	}
	gen, err := genTok.Int()
	if genTok.Kind != tokenizer.Integer || err != nil {
		return ObjectDeclaration{}, &errs.SyntaxError{Pos: genTok.Pos, Reason: "expected generation number"}
	}

	kw, err := tk.NextToken()
	if err != nil {
		return ObjectDeclaration{}, &errs.IoError{Op: "tokenize", Err: err}
	}
	if !kw.IsOther("obj") {
		return ObjectDeclaration{}, &errs.SyntaxError{Pos: kw.Pos, Reason: "expected 'obj' keyword"}
	}
	return ObjectDeclaration{Num: num, Gen: gen}, nil
}
