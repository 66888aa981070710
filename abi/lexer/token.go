package lexer

type Kind int

const (
	Unknown Kind = iota
	Whitespace
	Ident
	Number
	Comma
	OpenParen
	CloseParen
	OpenBracket
	CloseBracket
	Hash
	Dot
)

func (k Kind) String() string {
	switch k {
	case Whitespace:
		return "WHITESPACE"
	case Ident:
		return "IDENT"
	case Number:
		return "NUMBER"
	case Comma:
		return ","
	case OpenParen:
		return "("
	case CloseParen:
		return ")"
	case OpenBracket:
		return "["
	case CloseBracket:
		return "]"
	case Hash:
		return "#"
	case Dot:
		return "."
	default:
		return "UNKNOWN"
	}
}

// Token is a classified slice of the input. Tokens carry only their
// length; the consumer tracks the running offset.
type Token struct {
	Kind Kind
	Len  int
}
