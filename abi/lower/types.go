package lower

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/tos-network/tvmabi/abi/ast"
)

const (
	ImportBig     = "math/big"
	ImportUint256 = "github.com/holiman/uint256"
	ImportTVM     = "github.com/tos-network/tvmabi/tvm"
)

// GoType is a Go type expression together with the import it needs.
type GoType struct {
	Expr   string
	Import string
}

// Override replaces the default mapping of one scalar type. Hint is written
// into the field's abi tag so decoders can pick the matching unpacker.
type Override struct {
	GoType
	Hint string
}

// TypeTable maps scalar types to Go types. It is immutable once built.
type TypeTable struct {
	overrides map[string]Override
}

// NewTypeTable builds a table from overrides keyed by canonical type
// signature, e.g. "uint160".
func NewTypeTable(overrides map[string]Override) TypeTable {
	return TypeTable{overrides: maps.Clone(overrides)}
}

// DefaultTypeTable maps 160-bit unsigned values to raw bytes. Arrays of
// them get their own unpacker hint; array entries carry only a hint since
// the Go type is built from the element.
func DefaultTypeTable() TypeTable {
	return NewTypeTable(map[string]Override{
		"uint160":   {GoType: GoType{Expr: "[20]byte"}, Hint: "uint160_bytes"},
		"uint160[]": {Hint: "array_uint160_bytes"},
	})
}

// With returns a copy of t with extra overrides applied on top. Replacing
// a scalar drops the array hint inherited for it unless overrides sets one.
func (t TypeTable) With(overrides map[string]Override) TypeTable {
	merged := maps.Clone(t.overrides)
	if merged == nil {
		merged = map[string]Override{}
	}
	for k := range overrides {
		delete(merged, k+"[]")
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return TypeTable{overrides: merged}
}

// Lookup returns the override registered for a type signature.
func (t TypeTable) Lookup(sig string) (Override, bool) {
	o, ok := t.overrides[sig]
	return o, ok
}

// Keys lists the overridden signatures in sorted order.
func (t TypeTable) Keys() []string {
	keys := maps.Keys(t.overrides)
	slices.Sort(keys)
	return keys
}

// knownHints are the scalar names decoders understand without help.
var knownHints = []string{
	"array", "int8", "uint8", "uint16", "uint32", "uint64", "uint128", "uint256", "gram", "grams",
	"token", "tokens", "bool", "cell", "address", "string", "bytes",
}

// GoTypeOf maps a scalar type. Composite kinds are handled by the lowering
// itself and are not valid here.
func (t TypeTable) GoTypeOf(pt ast.ParamType) GoType {
	if o, ok := t.overrides[pt.Signature()]; ok {
		return o.GoType
	}
	switch pt.Kind {
	case ast.KindUint:
		switch pt.Size {
		case 8, 16, 32, 64:
			return GoType{Expr: pt.Signature()}
		case 128:
			return GoType{Expr: "tvm.Uint128", Import: ImportTVM}
		case 256:
			return GoType{Expr: "uint256.Int", Import: ImportUint256}
		}
		return GoType{Expr: "*big.Int", Import: ImportBig}
	case ast.KindInt:
		switch pt.Size {
		case 8, 16, 32, 64:
			return GoType{Expr: pt.Signature()}
		case 128:
			return GoType{Expr: "tvm.Int128", Import: ImportTVM}
		}
		return GoType{Expr: "*big.Int", Import: ImportBig}
	case ast.KindVarInt, ast.KindVarUint:
		return GoType{Expr: "*big.Int", Import: ImportBig}
	case ast.KindBool:
		return GoType{Expr: "bool"}
	case ast.KindBytes, ast.KindFixedBytes:
		return GoType{Expr: "[]byte"}
	case ast.KindString:
		return GoType{Expr: "string"}
	case ast.KindAddress:
		return GoType{Expr: "tvm.Address", Import: ImportTVM}
	case ast.KindCell:
		return GoType{Expr: "tvm.Cell", Import: ImportTVM}
	case ast.KindToken:
		return GoType{Expr: "tvm.Tokens", Import: ImportTVM}
	}
	return GoType{}
}

// arrayHint returns the hint registered for an array type, or "".
func (t TypeTable) arrayHint(pt ast.ParamType) string {
	return t.overrides[pt.Signature()].Hint
}

// hintOf returns the tag hint for a scalar type, or "".
func (t TypeTable) hintOf(pt ast.ParamType) string {
	sig := pt.Signature()
	if o, ok := t.overrides[sig]; ok {
		return o.Hint
	}
	if slices.Contains(knownHints, sig) {
		return sig
	}
	return ""
}
