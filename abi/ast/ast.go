package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind enumerates the closed set of value types.
type Kind int

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindUint
	KindVarInt
	KindVarUint
	KindAddress
	KindBytes
	KindFixedBytes
	KindString
	KindCell
	KindToken
	KindOptional
	KindRef
	KindTuple
	KindArray
	KindFixedArray
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindVarInt:
		return "varint"
	case KindVarUint:
		return "varuint"
	case KindAddress:
		return "address"
	case KindBytes:
		return "bytes"
	case KindFixedBytes:
		return "fixedbytes"
	case KindString:
		return "string"
	case KindCell:
		return "cell"
	case KindToken:
		return "gram"
	case KindOptional:
		return "optional"
	case KindRef:
		return "ref"
	case KindTuple:
		return "tuple"
	case KindArray:
		return "array"
	case KindFixedArray:
		return "fixedarray"
	case KindMap:
		return "map"
	default:
		return "invalid"
	}
}

// ParamType is one node of the type tree.
//
// Size holds the bit width for Int/Uint, the byte length for
// VarInt/VarUint and FixedBytes, and the length of a FixedArray. Elem is
// the inner type of Optional, Ref, Array and FixedArray and the value type
// of Map. Key is the Map key type. Components lists the fields of a Tuple.
type ParamType struct {
	Kind       Kind
	Size       int
	Elem       *ParamType
	Key        *ParamType
	Components []Param
}

// Param is a named value type.
type Param struct {
	Name string
	Type ParamType
}

func Bool() ParamType    { return ParamType{Kind: KindBool} }
func Address() ParamType { return ParamType{Kind: KindAddress} }
func Bytes() ParamType   { return ParamType{Kind: KindBytes} }
func String() ParamType  { return ParamType{Kind: KindString} }
func Cell() ParamType    { return ParamType{Kind: KindCell} }
func Token() ParamType   { return ParamType{Kind: KindToken} }

func Int(bits int) ParamType        { return ParamType{Kind: KindInt, Size: bits} }
func Uint(bits int) ParamType       { return ParamType{Kind: KindUint, Size: bits} }
func VarInt(size int) ParamType     { return ParamType{Kind: KindVarInt, Size: size} }
func VarUint(size int) ParamType    { return ParamType{Kind: KindVarUint, Size: size} }
func FixedBytes(size int) ParamType { return ParamType{Kind: KindFixedBytes, Size: size} }

func Optional(t ParamType) ParamType { return ParamType{Kind: KindOptional, Elem: &t} }
func Ref(t ParamType) ParamType      { return ParamType{Kind: KindRef, Elem: &t} }
func Array(t ParamType) ParamType    { return ParamType{Kind: KindArray, Elem: &t} }

func FixedArray(t ParamType, n int) ParamType {
	return ParamType{Kind: KindFixedArray, Size: n, Elem: &t}
}

func Tuple(params ...Param) ParamType {
	return ParamType{Kind: KindTuple, Components: params}
}

// NewMap builds a Map type. Keys must be integers or addresses.
func NewMap(key, value ParamType) (ParamType, error) {
	if !key.IsMapKey() {
		return ParamType{}, fmt.Errorf("map key must be an integer or address, got %s", key.Signature())
	}
	return ParamType{Kind: KindMap, Key: &key, Elem: &value}, nil
}

// MustMap is NewMap for statically known key types.
func MustMap(key, value ParamType) ParamType {
	t, err := NewMap(key, value)
	if err != nil {
		panic(err)
	}
	return t
}

// IsMapKey reports whether t may be used as a map key.
func (t ParamType) IsMapKey() bool {
	switch t.Kind {
	case KindInt, KindUint, KindAddress:
		return true
	}
	return false
}

// IsScalar reports whether t has no inner types.
func (t ParamType) IsScalar() bool {
	switch t.Kind {
	case KindOptional, KindRef, KindTuple, KindArray, KindFixedArray, KindMap, KindInvalid:
		return false
	}
	return true
}

// Signature renders t in canonical grammar form. Equal types always
// render identically.
func (t ParamType) Signature() string {
	var b strings.Builder
	t.writeSignature(&b)
	return b.String()
}

func (t ParamType) writeSignature(b *strings.Builder) {
	switch t.Kind {
	case KindInt, KindUint, KindVarInt, KindVarUint, KindFixedBytes:
		b.WriteString(t.Kind.String())
		b.WriteString(strconv.Itoa(t.Size))
	case KindOptional, KindRef:
		b.WriteString(t.Kind.String())
		b.WriteByte('(')
		t.Elem.writeSignature(b)
		b.WriteByte(')')
	case KindTuple:
		b.WriteByte('(')
		for i, p := range t.Components {
			if i > 0 {
				b.WriteByte(',')
			}
			p.Type.writeSignature(b)
		}
		b.WriteByte(')')
	case KindArray:
		t.Elem.writeSignature(b)
		b.WriteString("[]")
	case KindFixedArray:
		t.Elem.writeSignature(b)
		b.WriteByte('[')
		b.WriteString(strconv.Itoa(t.Size))
		b.WriteByte(']')
	case KindMap:
		b.WriteString("map(")
		t.Key.writeSignature(b)
		b.WriteByte(',')
		t.Elem.writeSignature(b)
		b.WriteByte(')')
	default:
		b.WriteString(t.Kind.String())
	}
}

func (t ParamType) String() string { return t.Signature() }

// Equal reports structural equality, including tuple field names.
func (t ParamType) Equal(o ParamType) bool {
	if t.Kind != o.Kind || t.Size != o.Size {
		return false
	}
	if !equalPtr(t.Elem, o.Elem) || !equalPtr(t.Key, o.Key) {
		return false
	}
	return ParamsEqual(t.Components, o.Components)
}

func equalPtr(a, b *ParamType) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// ParamsEqual compares two parameter lists by name and type.
func ParamsEqual(a, b []Param) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || !a[i].Type.Equal(b[i].Type) {
			return false
		}
	}
	return true
}

// Depth is the number of nested parenthesised levels in t: tuples, maps,
// optionals and refs each open one.
func (t ParamType) Depth() int {
	switch t.Kind {
	case KindTuple:
		max := 0
		for _, p := range t.Components {
			if d := p.Type.Depth(); d > max {
				max = d
			}
		}
		return max + 1
	case KindMap:
		d := t.Key.Depth()
		if v := t.Elem.Depth(); v > d {
			d = v
		}
		return d + 1
	case KindOptional, KindRef:
		return t.Elem.Depth() + 1
	case KindArray, KindFixedArray:
		return t.Elem.Depth()
	default:
		return 0
	}
}

// Clone returns a deep copy of t.
func (t ParamType) Clone() ParamType {
	out := ParamType{Kind: t.Kind, Size: t.Size}
	if t.Elem != nil {
		e := t.Elem.Clone()
		out.Elem = &e
	}
	if t.Key != nil {
		k := t.Key.Clone()
		out.Key = &k
	}
	if t.Components != nil {
		out.Components = CloneParams(t.Components)
	}
	return out
}

func CloneParams(in []Param) []Param {
	if in == nil {
		return nil
	}
	out := make([]Param, len(in))
	for i, p := range in {
		out[i] = Param{Name: p.Name, Type: p.Type.Clone()}
	}
	return out
}

// SignatureList renders params as a comma separated list of canonical
// type signatures.
func SignatureList(params []Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.Type.Signature()
	}
	return strings.Join(parts, ",")
}

// PlaceholderName is the synthesized name of the i-th unnamed value.
func PlaceholderName(i int) string {
	return "value" + strconv.Itoa(i)
}
