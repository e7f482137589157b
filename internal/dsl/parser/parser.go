// Package parser turns KYC DSL text into an ast.Expr.
//
// The grammar is a plain S-expression syntax:
//
//	expr   = atom | string | call
//	atom   = (letter | digit | "_" | "-" | "%" | ".")+
//	string = '"' { any rune except '"' } '"'
//	call   = "(" ws? head { ws? expr } ws? ")"
//	head   = atom | string
//
// The whole input must reduce to exactly one expression.
package parser

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"kycdsl/internal/dsl/ast"
)

// MaxDepth bounds form nesting so deeply nested input fails with a
// SyntaxError instead of exhausting the goroutine stack.
const MaxDepth = 10000

// SyntaxError reports input that cannot be reduced to a single expression.
// Line and Column are 1-based and point at the offending rune.
type SyntaxError struct {
	Msg    string
	Line   int
	Column int
	Offset int
	// Incomplete is set when the input ended before the expression was
	// closed. Interactive callers use it to keep reading lines.
	Incomplete bool
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at line %d, column %d: %s", e.Line, e.Column, e.Msg)
}

// IsIncomplete reports whether err is a SyntaxError caused by premature end of input.
func IsIncomplete(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se) && se.Incomplete
}

type position struct {
	offset int
	line   int
	col    int
}

type parser struct {
	src   []rune
	pos   position
	depth int
}

// Parse parses text into exactly one expression. Leading and trailing
// whitespace is ignored; anything else after the root expression is an error.
func Parse(text string) (ast.Expr, error) {
	p := &parser{src: []rune(text), pos: position{line: 1, col: 1}}

	p.skipSpace()
	if p.eof() {
		return nil, p.errAt(p.pos, true, "empty input")
	}

	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	p.skipSpace()
	if !p.eof() {
		return nil, p.errAt(p.pos, false, fmt.Sprintf("unexpected %q after expression", p.peek()))
	}
	return expr, nil
}

// IsBareAtom reports whether s can be written without quotes and still parse
// back as the same atom.
func IsBareAtom(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !isAtomRune(r) {
			return false
		}
	}
	return true
}

func (p *parser) parseExpr() (ast.Expr, error) {
	switch r := p.peek(); {
	case r == '(':
		return p.parseCall()
	case r == '"':
		return p.parseString()
	case isAtomRune(r):
		return p.parseAtom(), nil
	case r == ')':
		return nil, p.errAt(p.pos, false, "unexpected ')'")
	default:
		return nil, p.errAt(p.pos, false, fmt.Sprintf("unexpected character %q", r))
	}
}

func (p *parser) parseCall() (ast.Expr, error) {
	open := p.pos
	p.advance() // '('

	p.depth++
	defer func() { p.depth-- }()
	if p.depth > MaxDepth {
		return nil, p.errAt(open, false, fmt.Sprintf("forms nested deeper than %d levels", MaxDepth))
	}

	p.skipSpace()
	if p.eof() {
		return nil, p.unclosed(open)
	}

	var name string
	switch r := p.peek(); {
	case r == '"':
		head, err := p.parseString()
		if err != nil {
			return nil, err
		}
		name = head.(ast.Atom).Value
	case isAtomRune(r):
		name = p.parseAtom().(ast.Atom).Value
	case r == '(':
		return nil, p.errAt(p.pos, false, "form head must be an atom or string, got a nested form")
	case r == ')':
		return nil, p.errAt(p.pos, false, "empty form")
	default:
		return nil, p.errAt(p.pos, false, fmt.Sprintf("unexpected character %q in form head", r))
	}

	args := []ast.Expr{}
	for {
		p.skipSpace()
		if p.eof() {
			return nil, p.unclosed(open)
		}
		if p.peek() == ')' {
			p.advance()
			return ast.Call{Name: name, Args: args}, nil
		}
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
}

func (p *parser) parseString() (ast.Expr, error) {
	open := p.pos
	p.advance() // opening quote

	var b strings.Builder
	for !p.eof() {
		r := p.advance()
		if r == '"' {
			return ast.Atom{Value: b.String()}, nil
		}
		b.WriteRune(r)
	}
	return nil, p.errAt(open, true, "unterminated string")
}

func (p *parser) parseAtom() ast.Expr {
	start := p.pos.offset
	for !p.eof() && isAtomRune(p.peek()) {
		p.advance()
	}
	return ast.Atom{Value: string(p.src[start:p.pos.offset])}
}

func (p *parser) unclosed(open position) error {
	return p.errAt(p.pos, true, fmt.Sprintf("unclosed '(' opened at line %d, column %d", open.line, open.col))
}

func (p *parser) errAt(at position, incomplete bool, msg string) error {
	return &SyntaxError{
		Msg:        msg,
		Line:       at.line,
		Column:     at.col,
		Offset:     at.offset,
		Incomplete: incomplete,
	}
}

func (p *parser) eof() bool {
	return p.pos.offset >= len(p.src)
}

func (p *parser) peek() rune {
	return p.src[p.pos.offset]
}

func (p *parser) advance() rune {
	r := p.src[p.pos.offset]
	p.pos.offset++
	if r == '\n' {
		p.pos.line++
		p.pos.col = 1
	} else {
		p.pos.col++
	}
	return r
}

func (p *parser) skipSpace() {
	for !p.eof() && isSpace(p.peek()) {
		p.advance()
	}
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func isAtomRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || strings.ContainsRune("_-%.", r)
}
