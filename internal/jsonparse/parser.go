package jsonparse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lefeck/exjson/document"
)

// SyntaxError reports a strict-JSON parse failure with the line and
// column of the offending token in the original source text.
type SyntaxError struct {
	Line    int
	Column  int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("json: %s at line %d, column %d", e.Message, e.Line, e.Column)
}

// Parse parses src as strict JSON (plus the bare-$-expression value
// extension, see lexer.go) into a Document tree, tagging every Value
// with origin for later error/diagnostic reporting.
func Parse(src []byte, origin document.Origin) (*document.Value, error) {
	p := &parser{lex: newLexer(src), origin: origin}
	if err := p.advance(); err != nil {
		return nil, err
	}
	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, &SyntaxError{Line: p.tok.line, Column: p.tok.column, Message: "unexpected trailing content"}
	}
	return v, nil
}

type parser struct {
	lex    *lexer
	tok    token
	origin document.Origin
	depth  int // containers opened and not yet closed, up to and including tok
}

func (p *parser) advance() error {
	switch p.tok.kind {
	case tokLBrace, tokLBracket:
		p.depth++
	case tokRBrace, tokRBracket:
		p.depth--
	}
	// Consuming a token that leaves no container open completes the
	// top-level value, so anything the lexer rejects after it is trailing.
	topDone := p.depth == 0 && p.tok.kind != tokEOF
	t, err := p.lex.next()
	if err != nil {
		if se, ok := err.(*SyntaxError); ok && topDone {
			return &SyntaxError{Line: se.Line, Column: se.Column, Message: "unexpected trailing content"}
		}
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) parseValue() (*document.Value, error) {
	line, col := p.tok.line, p.tok.column
	switch p.tok.kind {
	case tokLBrace:
		return p.parseObject()
	case tokLBracket:
		return p.parseArray()
	case tokString:
		v := document.Str(p.tok.text)
		v.Line, v.Column, v.Origin = line, col, p.origin
		return v, p.advance()
	case tokNumber:
		v, err := numberValue(p.tok.text)
		if err != nil {
			return nil, &SyntaxError{Line: line, Column: col, Message: err.Error()}
		}
		v.Line, v.Column, v.Origin = line, col, p.origin
		return v, p.advance()
	case tokTrue:
		v := document.Bool(true)
		v.Line, v.Column, v.Origin = line, col, p.origin
		return v, p.advance()
	case tokFalse:
		v := document.Bool(false)
		v.Line, v.Column, v.Origin = line, col, p.origin
		return v, p.advance()
	case tokNull:
		v := document.Null()
		v.Line, v.Column, v.Origin = line, col, p.origin
		return v, p.advance()
	case tokRawExpr:
		v := &document.Value{Kind: document.KindRawExpr, Str: p.tok.text, Line: line, Column: col, Origin: p.origin}
		return v, p.advance()
	default:
		return nil, &SyntaxError{Line: line, Column: col, Message: "expected a value"}
	}
}

func numberValue(lit string) (*document.Value, error) {
	if !strings.ContainsAny(lit, ".eE") {
		if n, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return document.Int(n), nil
		}
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number literal %q", lit)
	}
	return document.Float(f), nil
}

func (p *parser) parseObject() (*document.Value, error) {
	line, col := p.tok.line, p.tok.column
	if err := p.advance(); err != nil { // consume '{'
		return nil, err
	}
	obj := document.NewEmptyObject()
	if p.tok.kind == tokRBrace {
		if err := p.advance(); err != nil {
			return nil, err
		}
		v := document.NewObject(obj)
		v.Line, v.Column, v.Origin = line, col, p.origin
		return v, nil
	}
	for {
		if p.tok.kind != tokString {
			return nil, &SyntaxError{Line: p.tok.line, Column: p.tok.column, Message: "expected a property name in double quotes"}
		}
		key := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.kind != tokColon {
			return nil, &SyntaxError{Line: p.tok.line, Column: p.tok.column, Message: "expected ':' after property name"}
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		obj.Set(key, val)

		switch p.tok.kind {
		case tokComma:
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		case tokRBrace:
			if err := p.advance(); err != nil {
				return nil, err
			}
			v := document.NewObject(obj)
			v.Line, v.Column, v.Origin = line, col, p.origin
			return v, nil
		default:
			return nil, &SyntaxError{Line: p.tok.line, Column: p.tok.column, Message: "expected ',' or '}'"}
		}
	}
}

func (p *parser) parseArray() (*document.Value, error) {
	line, col := p.tok.line, p.tok.column
	if err := p.advance(); err != nil { // consume '['
		return nil, err
	}
	var elems []*document.Value
	if p.tok.kind == tokRBracket {
		if err := p.advance(); err != nil {
			return nil, err
		}
		v := document.NewArray(elems)
		v.Line, v.Column, v.Origin = line, col, p.origin
		return v, nil
	}
	for {
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		elems = append(elems, val)

		switch p.tok.kind {
		case tokComma:
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		case tokRBracket:
			if err := p.advance(); err != nil {
				return nil, err
			}
			v := document.NewArray(elems)
			v.Line, v.Column, v.Origin = line, col, p.origin
			return v, nil
		default:
			return nil, &SyntaxError{Line: p.tok.line, Column: p.tok.column, Message: "expected ',' or ']'"}
		}
	}
}
