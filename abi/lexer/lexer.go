package lexer

import "unicode/utf8"

// Lexer splits a signature into tokens. It never fails: every byte of the
// input ends up in exactly one token.
type Lexer struct {
	src string
	idx int
}

func New(src string) *Lexer {
	return &Lexer{src: src}
}

// Next returns the next token, or false once the input is exhausted.
func (l *Lexer) Next() (Token, bool) {
	if l.eof() {
		return Token{}, false
	}
	start := l.idx
	r, size := utf8.DecodeRuneInString(l.src[l.idx:])
	l.idx += size

	var kind Kind
	switch {
	case isWhitespace(r):
		l.eatWhile(isWhitespace)
		kind = Whitespace
	case isIdentStart(r):
		l.eatWhile(isIdentContinue)
		kind = Ident
	case isDigit(r):
		l.eatWhile(isDigit)
		kind = Number
	case r == ',':
		kind = Comma
	case r == '(':
		kind = OpenParen
	case r == ')':
		kind = CloseParen
	case r == '[':
		kind = OpenBracket
	case r == ']':
		kind = CloseBracket
	case r == '#':
		kind = Hash
	case r == '.':
		kind = Dot
	default:
		kind = Unknown
	}
	return Token{Kind: kind, Len: l.idx - start}, true
}

// Tokenize lexes src from the beginning and returns all tokens.
func Tokenize(src string) []Token {
	var out []Token
	l := New(src)
	for {
		tok, ok := l.Next()
		if !ok {
			return out
		}
		out = append(out, tok)
	}
}

func (l *Lexer) eatWhile(pred func(rune) bool) {
	for !l.eof() {
		r, size := utf8.DecodeRuneInString(l.src[l.idx:])
		if !pred(r) {
			return
		}
		l.idx += size
	}
}

func (l *Lexer) eof() bool {
	return l.idx >= len(l.src)
}

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r',
		'\u000B', // vertical tab
		'\u000C', // form feed
		'\u0085', // next line
		'\u200E', // left-to-right mark
		'\u200F', // right-to-left mark
		'\u2028', // line separator
		'\u2029': // paragraph separator
		return true
	}
	return false
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}

func isIdentContinue(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}
