package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tos-network/tvmabi/abi/ast"
	"github.com/tos-network/tvmabi/abi/diag"
)

type KeywordKind int

const (
	KeywordScalar KeywordKind = iota
	KeywordOptional
	KeywordRef
	KeywordMap
	KeywordTuple
)

// Keyword is a resolved type identifier. Type is set for scalars only.
type Keyword struct {
	Kind KeywordKind
	Type ast.ParamType
}

// Opens reports whether the keyword must be followed by '('.
func (k *Keyword) Opens() bool {
	return k.Kind == KeywordOptional || k.Kind == KeywordRef || k.Kind == KeywordMap
}

var scalarKeywords = map[string]ast.ParamType{
	"bool":    ast.Bool(),
	"address": ast.Address(),
	"addr":    ast.Address(),
	"cell":    ast.Cell(),
	"bytes":   ast.Bytes(),
	"string":  ast.String(),
	"gram":    ast.Token(),
	"token":   ast.Token(),
}

var containerKeywords = map[string]KeywordKind{
	"optional": KeywordOptional,
	"ref":      KeywordRef,
	"map":      KeywordMap,
	"tuple":    KeywordTuple,
}

// ResolveIdent maps an identifier to a type keyword. It returns (nil, nil)
// when ident is not a type keyword at all, and an error when it looks like
// a sized type whose size is out of range. offset is the identifier's
// position, used for diagnostics.
func ResolveIdent(ident string, offset int) (*Keyword, error) {
	if t, ok := scalarKeywords[ident]; ok {
		return &Keyword{Kind: KeywordScalar, Type: t}, nil
	}
	if k, ok := containerKeywords[ident]; ok {
		return &Keyword{Kind: k}, nil
	}

	span := diag.Span{Offset: offset, End: offset + len(ident)}
	switch {
	case strings.HasPrefix(ident, "varuint"), strings.HasPrefix(ident, "varint"):
		unsigned := strings.HasPrefix(ident, "varuint")
		rest := strings.TrimPrefix(ident, "varint")
		if unsigned {
			rest = strings.TrimPrefix(ident, "varuint")
		}
		n, ok, err := sizeSuffix(ident, rest, span)
		if err != nil || !ok {
			return nil, err
		}
		if n != 16 && n != 32 {
			return nil, outOfRange(ident, n, "16 or 32", span)
		}
		if unsigned {
			return &Keyword{Kind: KeywordScalar, Type: ast.VarUint(n)}, nil
		}
		return &Keyword{Kind: KeywordScalar, Type: ast.VarInt(n)}, nil

	case strings.HasPrefix(ident, "fixedbytes"):
		n, ok, err := sizeSuffix(ident, strings.TrimPrefix(ident, "fixedbytes"), span)
		if err != nil || !ok {
			return nil, err
		}
		if n < 1 || n > 32 {
			return nil, outOfRange(ident, n, "1..32", span)
		}
		return &Keyword{Kind: KeywordScalar, Type: ast.FixedBytes(n)}, nil

	// A lone "u" or "i" stays a name so it can declare a function.
	case len(ident) >= 2 && (ident[0] == 'i' || ident[0] == 'u'):
		signed := ident[0] == 'i'
		rest := strings.TrimPrefix(ident[1:], "nt")
		if !signed {
			rest = strings.TrimPrefix(ident[1:], "int")
		}
		n := 256
		if rest != "" {
			var ok bool
			var err error
			n, ok, err = sizeSuffix(ident, rest, span)
			if err != nil || !ok {
				return nil, err
			}
		}
		if n < 1 || n > 256 {
			return nil, outOfRange(ident, n, "1..256", span)
		}
		if signed {
			return &Keyword{Kind: KeywordScalar, Type: ast.Int(n)}, nil
		}
		return &Keyword{Kind: KeywordScalar, Type: ast.Uint(n)}, nil
	}
	return nil, nil
}

// sizeSuffix parses the decimal suffix of a sized keyword. ok is false when
// the suffix is not a number, which means ident is not a keyword.
func sizeSuffix(ident, rest string, span diag.Span) (int, bool, error) {
	if rest == "" || !isDecimal(rest) {
		return 0, false, nil
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false, diag.Diagnostic{
			Code:    diag.CodeParseInvalidNumber,
			Message: fmt.Sprintf("invalid size %q in '%s'", rest, ident),
			Token:   ident,
			Span:    span,
		}
	}
	return n, true, nil
}

func outOfRange(ident string, n int, want string, span diag.Span) error {
	return diag.Diagnostic{
		Code:    diag.CodeParseOutOfRange,
		Message: fmt.Sprintf("size %d of '%s' is out of range (expected %s)", n, ident, want),
		Token:   ident,
		Value:   n,
		Span:    span,
	}
}

func isDecimal(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
