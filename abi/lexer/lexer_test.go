package lexer

import (
	"strings"
	"testing"
)

func kinds(src string) []Kind {
	var out []Kind
	for _, tok := range Tokenize(src) {
		out = append(out, tok.Kind)
	}
	return out
}

func TestTokenizeSignature(t *testing.T) {
	got := kinds("map(uint256, addr)[]")
	want := []Kind{Ident, OpenParen, Ident, Comma, Whitespace, Ident, CloseParen, OpenBracket, CloseBracket}
	if len(got) != len(want) {
		t.Fatalf("unexpected token count: got=%v want=%v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got=%s want=%s", i, got[i], want[i])
		}
	}
}

func TestTokenizeFunctionPieces(t *testing.T) {
	got := kinds("foo#1a2b(uint8[4])()v2.1")
	want := []Kind{Ident, Hash, Number, Ident, OpenParen, Ident, OpenBracket, Number, CloseBracket, CloseParen, OpenParen, CloseParen, Ident, Dot, Number}
	if len(got) != len(want) {
		t.Fatalf("unexpected token count: got=%v want=%v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got=%s want=%s", i, got[i], want[i])
		}
	}
}

func TestTokenLengthsCoverInput(t *testing.T) {
	inputs := []string{
		"",
		"uint256",
		"  (uint256,\taddr) \n",
		"bool , cell\u0085",
		"a$b%c",
		"\xff\xfeuint8",
		"ŝtring",
	}
	for _, in := range inputs {
		total := 0
		for _, tok := range Tokenize(in) {
			if tok.Len <= 0 {
				t.Fatalf("%q: zero-length token %v", in, tok)
			}
			total += tok.Len
		}
		if total != len(in) {
			t.Fatalf("%q: token lengths sum to %d, want %d", in, total, len(in))
		}
	}
}

func TestUnicodeWhitespace(t *testing.T) {
	toks := Tokenize("\u200E\u200F\u2028\u2029 \u000B\u000C\t")
	if len(toks) != 1 || toks[0].Kind != Whitespace {
		t.Fatalf("expected one whitespace token, got %v", toks)
	}
}

func TestUnknownIsSingleCharacter(t *testing.T) {
	toks := Tokenize("$$")
	if len(toks) != 2 {
		t.Fatalf("expected two unknown tokens, got %v", toks)
	}
	for _, tok := range toks {
		if tok.Kind != Unknown || tok.Len != 1 {
			t.Fatalf("unexpected token %v", tok)
		}
	}

	toks = Tokenize("é")
	if len(toks) != 1 || toks[0].Kind != Unknown || toks[0].Len != len("é") {
		t.Fatalf("multi-byte rune should be one unknown token, got %v", toks)
	}
}

func TestNextIsLazyAndRestartable(t *testing.T) {
	src := strings.Repeat("uint8,", 3)
	l := New(src)
	first, ok := l.Next()
	if !ok || first.Kind != Ident || first.Len != len("uint8") {
		t.Fatalf("unexpected first token %v", first)
	}
	again := Tokenize(src)
	if again[0] != first {
		t.Fatalf("restarted lexer disagrees: %v vs %v", again[0], first)
	}
	n := 1
	for {
		if _, ok := l.Next(); !ok {
			break
		}
		n++
	}
	if n != len(again) {
		t.Fatalf("lazy lexing produced %d tokens, Tokenize produced %d", n, len(again))
	}
}
