package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tos-network/tvmabi/abi/ast"
	"github.com/tos-network/tvmabi/abi/diag"
	"github.com/tos-network/tvmabi/abi/lexer"
	"github.com/tos-network/tvmabi/abi/sema"
)

// MaxDepth bounds the number of nested parenthesised types.
const MaxDepth = 16

type token struct {
	kind lexer.Kind
	off  int
	end  int
	text string
}

type frameKind int

const (
	frameRoot frameKind = iota
	frameTuple
	frameOptional
	frameRef
	frameMap
)

// frame accumulates the items of one open parenthesis.
type frame struct {
	kind  frameKind
	open  int
	items []ast.ParamType
	offs  []int
}

type Parser struct {
	filename   string
	src        string
	toks       []token
	pos        int
	components []ast.Param
}

func newParser(filename, src string) *Parser {
	p := &Parser{filename: filename, src: src}
	off := 0
	for _, tok := range lexer.Tokenize(src) {
		if tok.Kind != lexer.Whitespace {
			p.toks = append(p.toks, token{kind: tok.Kind, off: off, end: off + tok.Len, text: src[off : off+tok.Len]})
		}
		off += tok.Len
	}
	return p
}

// Parse parses a signature text: a type list, a function declaration or
// nothing at all.
func Parse(src string) (ast.Entity, error) {
	return ParseFile("", src)
}

// ParseFile is Parse with a file name recorded in diagnostic spans.
func ParseFile(filename, src string) (ast.Entity, error) {
	p := newParser(filename, src)
	return p.parseEntity()
}

// ParseType parses one type string from a structured interface document.
// A bare 'tuple' takes its fields from components.
func ParseType(src string, components []ast.Param) (ast.ParamType, error) {
	p := newParser("", src)
	p.components = components
	items, err := p.parseTypes(false)
	if err != nil {
		return ast.ParamType{}, err
	}
	if len(items) != 1 {
		if len(items) == 0 {
			return ast.ParamType{}, p.eofErr()
		}
		return ast.ParamType{}, p.errAt(diag.CodeParseUnexpected, "expected a single type", p.toks[0])
	}
	return items[0], nil
}

func (p *Parser) parseEntity() (ast.Entity, error) {
	first, ok := p.peek()
	if !ok {
		return ast.Entity{Kind: ast.EntityEmpty}, nil
	}

	if first.kind == lexer.Ident {
		kw, err := ResolveIdent(first.text, first.off)
		if err != nil {
			return ast.Entity{}, p.withFile(err)
		}
		if kw == nil {
			fn, err := p.parseFunction()
			if err != nil {
				return ast.Entity{}, err
			}
			return ast.Entity{Kind: ast.EntityFunction, Function: fn}, nil
		}
	}

	var items []ast.ParamType
	var err error
	if p.delimited() {
		p.pos++
		items, err = p.parseTypes(true)
		if err == nil {
			err = p.expectEOF()
		}
	} else {
		items, err = p.parseTypes(false)
	}
	if err != nil {
		return ast.Entity{}, err
	}
	if len(items) == 0 {
		return ast.Entity{Kind: ast.EntityEmpty}, nil
	}
	return ast.Entity{Kind: ast.EntityCell, Params: nameParams(items)}, nil
}

// delimited reports whether the whole input is wrapped in one pair of
// parentheses, in which case they delimit the list instead of forming a
// tuple.
func (p *Parser) delimited() bool {
	if len(p.toks) < 2 || p.toks[0].kind != lexer.OpenParen {
		return false
	}
	depth := 0
	for i, tok := range p.toks {
		switch tok.kind {
		case lexer.OpenParen:
			depth++
		case lexer.CloseParen:
			depth--
			if depth == 0 {
				return i == len(p.toks)-1
			}
		}
	}
	return false
}

// parseFunction parses name ['#' hex] '(' types ')' '(' types ')' [version].
func (p *Parser) parseFunction() (*ast.Function, error) {
	name := p.toks[p.pos]
	p.pos++
	fn := &ast.Function{Name: name.text, Version: ast.DefaultVersion}

	var explicit *uint32
	if tok, ok := p.peek(); ok && tok.kind == lexer.Hash {
		p.pos++
		id, err := p.parseHexID(tok)
		if err != nil {
			return nil, err
		}
		explicit = &id
	}

	if err := p.expect(lexer.OpenParen); err != nil {
		return nil, err
	}
	inputs, err := p.parseTypes(true)
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.OpenParen); err != nil {
		return nil, err
	}
	outputs, err := p.parseTypes(true)
	if err != nil {
		return nil, err
	}
	fn.Inputs = nameParams(inputs)
	fn.Outputs = nameParams(outputs)

	if tok, ok := p.peek(); ok {
		v, err := p.parseVersion(tok)
		if err != nil {
			return nil, err
		}
		fn.Version = v
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}

	sema.AssignFunctionIDs(fn, explicit)
	return fn, nil
}

// parseHexID reads the identifier literal following '#'. The literal may
// span several adjacent number and identifier tokens, e.g. "1a2b".
func (p *Parser) parseHexID(hash token) (uint32, error) {
	var b strings.Builder
	end := hash.end
	for {
		tok, ok := p.peek()
		if !ok || tok.off != end || (tok.kind != lexer.Number && tok.kind != lexer.Ident) {
			break
		}
		b.WriteString(tok.text)
		end = tok.end
		p.pos++
	}
	lit := b.String()
	if lit == "" {
		if tok, ok := p.peek(); ok {
			return 0, p.unexpected(tok)
		}
		return 0, p.eofErr()
	}
	digits := strings.TrimPrefix(strings.TrimPrefix(lit, "0x"), "0X")
	id, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return 0, p.withFile(diag.Diagnostic{
			Code:    diag.CodeParseInvalidNumber,
			Message: fmt.Sprintf("invalid function id '%s'", lit),
			Token:   lit,
			Span:    diag.Span{Offset: hash.end, End: end},
		})
	}
	return uint32(id), nil
}

var versionTags = map[string]ast.Version{
	"v1":   {Major: 1, Minor: 0},
	"v1.0": {Major: 1, Minor: 0},
	"v2":   {Major: 2, Minor: 2},
	"v2.0": {Major: 2, Minor: 0},
	"v2.1": {Major: 2, Minor: 1},
	"v2.2": {Major: 2, Minor: 2},
	"v2.3": {Major: 2, Minor: 3},
}

func (p *Parser) parseVersion(first token) (ast.Version, error) {
	if first.kind != lexer.Ident {
		return ast.Version{}, p.unexpected(first)
	}
	p.pos++
	tag := first.text
	end := first.end
	if dot, ok := p.peek(); ok && dot.kind == lexer.Dot && dot.off == end {
		p.pos++
		minor, ok := p.peek()
		if !ok || minor.kind != lexer.Number || minor.off != dot.end {
			return ast.Version{}, p.invalidVersion(tag+".", first.off, dot.end)
		}
		p.pos++
		tag += "." + minor.text
		end = minor.end
	}
	v, ok := versionTags[tag]
	if !ok {
		return ast.Version{}, p.invalidVersion(tag, first.off, end)
	}
	return v, nil
}

func (p *Parser) invalidVersion(tag string, off, end int) error {
	return p.withFile(diag.Diagnostic{
		Code:    diag.CodeParseInvalidVersion,
		Message: fmt.Sprintf("invalid version tag '%s'", tag),
		Token:   tag,
		Span:    diag.Span{Offset: off, End: end},
	})
}

// parseTypes runs the frame machine over a type list. When closed is set
// the list ends at the ')' matching an already consumed '(' and may be
// empty; otherwise it runs to the end of input.
func (p *Parser) parseTypes(closed bool) ([]ast.ParamType, error) {
	stack := []*frame{{kind: frameRoot}}
	wantType := true

	for {
		top := stack[len(stack)-1]
		tok, ok := p.peek()
		if !ok {
			if len(stack) > 1 || closed || (wantType && len(top.items) > 0) {
				return nil, p.eofErr()
			}
			return top.items, nil
		}

		if wantType {
			switch tok.kind {
			case lexer.Ident:
				p.pos++
				kw, err := ResolveIdent(tok.text, tok.off)
				if err != nil {
					return nil, p.withFile(err)
				}
				if kw == nil {
					return nil, p.withFile(diag.Diagnostic{
						Code:    diag.CodeParseUnknownIdent,
						Message: fmt.Sprintf("unknown type '%s'", tok.text),
						Token:   tok.text,
						Span:    p.span(tok),
					})
				}
				switch kw.Kind {
				case KeywordScalar:
					top.push(kw.Type, tok.off)
					wantType = false
				case KeywordTuple:
					next, ok := p.peek()
					if ok && next.kind == lexer.OpenParen {
						p.pos++
						f, err := p.open(stack, frameTuple, next)
						if err != nil {
							return nil, err
						}
						stack = append(stack, f)
						continue
					}
					if p.components == nil {
						if !ok {
							return nil, p.eofErr()
						}
						return nil, p.unexpected(next)
					}
					top.push(ast.Tuple(ast.CloneParams(p.components)...), tok.off)
					wantType = false
				default:
					next, ok := p.peek()
					if !ok {
						return nil, p.eofErr()
					}
					if next.kind != lexer.OpenParen {
						return nil, p.unexpected(next)
					}
					p.pos++
					f, err := p.open(stack, kw.frameKind(), next)
					if err != nil {
						return nil, err
					}
					stack = append(stack, f)
				}
			case lexer.OpenParen:
				p.pos++
				f, err := p.open(stack, frameTuple, tok)
				if err != nil {
					return nil, err
				}
				stack = append(stack, f)
			case lexer.CloseParen:
				if closed && len(stack) == 1 && len(top.items) == 0 {
					p.pos++
					return nil, nil
				}
				return nil, p.unexpected(tok)
			default:
				return nil, p.unexpected(tok)
			}
			continue
		}

		switch tok.kind {
		case lexer.OpenBracket:
			p.pos++
			if err := p.wrapArray(top); err != nil {
				return nil, err
			}
		case lexer.Comma:
			if top.kind == frameOptional || top.kind == frameRef || (top.kind == frameMap && len(top.items) != 1) {
				return nil, p.unexpected(tok)
			}
			p.pos++
			wantType = true
		case lexer.CloseParen:
			if top.kind == frameRoot {
				if !closed {
					return nil, p.unexpected(tok)
				}
				p.pos++
				return top.items, nil
			}
			p.pos++
			typ, err := p.close(top, tok)
			if err != nil {
				return nil, err
			}
			stack = stack[:len(stack)-1]
			stack[len(stack)-1].push(typ, top.open)
		default:
			return nil, p.unexpected(tok)
		}
	}
}

func (k *Keyword) frameKind() frameKind {
	switch k.Kind {
	case KeywordOptional:
		return frameOptional
	case KeywordRef:
		return frameRef
	case KeywordMap:
		return frameMap
	default:
		return frameTuple
	}
}

func (f *frame) push(t ast.ParamType, off int) {
	f.items = append(f.items, t)
	f.offs = append(f.offs, off)
}

// open checks the depth limit before a new frame is pushed for '('.
func (p *Parser) open(stack []*frame, kind frameKind, paren token) (*frame, error) {
	depth := len(stack)
	if depth > MaxDepth {
		return nil, p.withFile(diag.Diagnostic{
			Code:    diag.CodeParseTooDeep,
			Message: fmt.Sprintf("nesting depth %d exceeds the limit of %d", depth, MaxDepth),
			Token:   paren.text,
			Value:   depth,
			Span:    p.span(paren),
		})
	}
	return &frame{kind: kind, open: paren.off}, nil
}

// close folds a finished frame into the type it denotes.
func (p *Parser) close(f *frame, paren token) (ast.ParamType, error) {
	switch f.kind {
	case frameTuple:
		return ast.Tuple(nameParams(f.items)...), nil
	case frameOptional, frameRef:
		if len(f.items) != 1 {
			return ast.ParamType{}, p.unexpected(paren)
		}
		if f.kind == frameOptional {
			return ast.Optional(f.items[0]), nil
		}
		return ast.Ref(f.items[0]), nil
	case frameMap:
		if len(f.items) != 2 {
			return ast.ParamType{}, p.unexpected(paren)
		}
		m, err := ast.NewMap(f.items[0], f.items[1])
		if err != nil {
			return ast.ParamType{}, p.withFile(diag.Diagnostic{
				Code:    diag.CodeParseInvalidMapKey,
				Message: err.Error(),
				Token:   f.items[0].Signature(),
				Span:    diag.Span{Offset: f.offs[0], End: paren.off},
			})
		}
		return m, nil
	}
	return ast.ParamType{}, p.withFile(diag.Diagnostic{
		Code:    diag.CodeParseUnexpected,
		Message: "unbalanced ')'",
		Token:   paren.text,
		Span:    p.span(paren),
	})
}

// wrapArray handles '[]' and '[n]' after a completed type. The '[' has
// already been consumed.
func (p *Parser) wrapArray(f *frame) error {
	last := len(f.items) - 1
	tok, ok := p.peek()
	if !ok {
		return p.eofErr()
	}
	switch tok.kind {
	case lexer.CloseBracket:
		p.pos++
		f.items[last] = ast.Array(f.items[last])
		return nil
	case lexer.Number:
		p.pos++
		n, err := strconv.Atoi(tok.text)
		if err != nil {
			return p.withFile(diag.Diagnostic{
				Code:    diag.CodeParseInvalidNumber,
				Message: fmt.Sprintf("invalid array length '%s'", tok.text),
				Token:   tok.text,
				Span:    p.span(tok),
			})
		}
		if n < 1 {
			return p.withFile(diag.Diagnostic{
				Code:    diag.CodeParseOutOfRange,
				Message: fmt.Sprintf("array length %d is out of range (expected at least 1)", n),
				Token:   tok.text,
				Value:   n,
				Span:    p.span(tok),
			})
		}
		if err := p.expect(lexer.CloseBracket); err != nil {
			return err
		}
		f.items[last] = ast.FixedArray(f.items[last], n)
		return nil
	}
	return p.unexpected(tok)
}

func nameParams(types []ast.ParamType) []ast.Param {
	out := make([]ast.Param, len(types))
	for i, t := range types {
		out[i] = ast.Param{Name: ast.PlaceholderName(i), Type: t}
	}
	return out
}

func (p *Parser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *Parser) expect(kind lexer.Kind) error {
	tok, ok := p.peek()
	if !ok {
		return p.eofErr()
	}
	if tok.kind != kind {
		return p.unexpected(tok)
	}
	p.pos++
	return nil
}

func (p *Parser) expectEOF() error {
	if tok, ok := p.peek(); ok {
		return p.unexpected(tok)
	}
	return nil
}

func (p *Parser) span(tok token) diag.Span {
	return diag.Span{File: p.filename, Offset: tok.off, End: tok.end}
}

func (p *Parser) unexpected(tok token) error {
	return diag.Diagnostic{
		Code:    diag.CodeParseUnexpected,
		Message: fmt.Sprintf("unexpected token '%s'", tok.text),
		Token:   tok.text,
		Span:    p.span(tok),
	}
}

func (p *Parser) eofErr() error {
	return diag.Diagnostic{
		Code:    diag.CodeParseEOF,
		Message: "unexpected end of input",
		Span:    diag.Span{File: p.filename, Offset: len(p.src), End: len(p.src)},
	}
}

func (p *Parser) errAt(code, msg string, tok token) error {
	return diag.Diagnostic{Code: code, Message: msg, Token: tok.text, Span: p.span(tok)}
}

// withFile stamps the parser's file name on a diagnostic built elsewhere.
func (p *Parser) withFile(err error) error {
	if d, ok := err.(diag.Diagnostic); ok {
		d.Span.File = p.filename
		return d
	}
	return err
}
