package lower

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/exp/slices"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tos-network/tvmabi/abi/ast"
	"github.com/tos-network/tvmabi/abi/diag"
)

// Program is the generator-facing form of a parameter list or contract.
type Program struct {
	Structs   []Struct
	Functions []*ast.Function
	Events    []*ast.Event
}

type Role int

const (
	RoleCommon Role = iota
	RoleFunctionInput
	RoleFunctionOutput
	RoleEventOutput
)

func (r Role) suffix() string {
	switch r {
	case RoleFunctionInput:
		return "FunctionInput"
	case RoleFunctionOutput:
		return "FunctionOutput"
	case RoleEventOutput:
		return "EventOutput"
	}
	return ""
}

// Struct is a top-level struct to generate.
type Struct struct {
	Name       string
	Role       Role
	Source     string
	Properties []Property
}

type PropertyKind int

const (
	PropSimple PropertyKind = iota
	PropArray
	PropFixedArray
	PropOption
	PropTuple
	PropMap
)

// Property is one field to generate. Type is the field's value type with
// any ref wrapper removed; it feeds the structural key used to merge
// identical tuples.
type Property struct {
	Kind    PropertyKind
	ABIName string
	Type    ast.ParamType

	// Simple, and Array when the array type has its own unpacker
	GoType GoType
	Hint   string

	// Array, FixedArray and Option wrap Elem; Map stores its value in Elem.
	Elem *Property
	Key  *Property
	Len  int

	// Tuple
	Fields []Property
}

// TypeStr is the canonical signature of the property's type.
func (p Property) TypeStr() string {
	return p.Type.Signature()
}

// TagHint returns the abi tag hint for the property, or "".
func (p Property) TagHint() string {
	switch p.Kind {
	case PropSimple:
		return p.Hint
	case PropArray:
		if p.Hint != "" {
			return p.Hint
		}
		return "array"
	case PropFixedArray:
		return "array"
	case PropOption:
		return "optional"
	}
	return ""
}

// StructKey is the structural key of a field list: every field's name
// followed by its type signature.
func StructKey(props []Property) string {
	var b strings.Builder
	for _, p := range props {
		b.WriteString(p.ABIName)
		b.WriteString(p.TypeStr())
	}
	return b.String()
}

// FromParams lowers a bare type list into a single CommonStruct. Params are
// renamed value0, value1, ... as the list carries no names of its own.
func FromParams(params []ast.Param, types TypeTable) (*Program, error) {
	props := make([]Property, 0, len(params))
	for i, p := range params {
		prop, err := lowerParam(ast.PlaceholderName(i), p.Type, types)
		if err != nil {
			return nil, err
		}
		props = append(props, prop)
	}
	return &Program{Structs: []Struct{{Name: "CommonStruct", Role: RoleCommon, Properties: props}}}, nil
}

// FromContract lowers every function and event of c. Functions and events
// are visited in name order so struct numbering is stable between runs.
// Function inputs and outputs only produce a struct when non-empty; events
// always do.
func FromContract(c *ast.Contract, types TypeTable) (*Program, error) {
	if c == nil {
		return nil, diag.Diagnostic{Code: diag.CodeCodegenInternal, Message: "nil contract", Span: diag.NoSpan}
	}
	funcs := slices.Clone(c.Functions)
	slices.SortStableFunc(funcs, func(a, b *ast.Function) int { return strings.Compare(a.Name, b.Name) })
	events := slices.Clone(c.Events)
	slices.SortStableFunc(events, func(a, b *ast.Event) int { return strings.Compare(a.Name, b.Name) })

	out := &Program{Functions: funcs, Events: events}
	add := func(name string, role Role, params []ast.Param) error {
		props, err := lowerParams(params, types)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		out.Structs = append(out.Structs, Struct{
			Name:       StructName(name, role),
			Role:       role,
			Source:     name,
			Properties: props,
		})
		return nil
	}

	for _, fn := range funcs {
		if len(fn.Inputs) == 0 {
			continue
		}
		if err := add(fn.Name, RoleFunctionInput, fn.Inputs); err != nil {
			return nil, err
		}
	}
	for _, fn := range funcs {
		if len(fn.Outputs) == 0 {
			continue
		}
		if err := add(fn.Name, RoleFunctionOutput, fn.Outputs); err != nil {
			return nil, err
		}
	}
	for _, ev := range events {
		if err := add(ev.Name, RoleEventOutput, ev.Inputs); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func lowerParams(params []ast.Param, types TypeTable) ([]Property, error) {
	props := make([]Property, 0, len(params))
	for _, p := range params {
		prop, err := lowerParam(p.Name, p.Type, types)
		if err != nil {
			return nil, err
		}
		props = append(props, prop)
	}
	return props, nil
}

// lowerParam builds the property for one value. Inner properties of
// containers carry an empty name.
func lowerParam(name string, t ast.ParamType, types TypeTable) (Property, error) {
	switch t.Kind {
	case ast.KindRef:
		return lowerParam(name, *t.Elem, types)
	case ast.KindTuple:
		fields, err := lowerParams(t.Components, types)
		if err != nil {
			return Property{}, err
		}
		return Property{Kind: PropTuple, ABIName: name, Type: t, Fields: fields}, nil
	case ast.KindArray, ast.KindFixedArray, ast.KindOptional:
		elem, err := lowerParam("", *t.Elem, types)
		if err != nil {
			return Property{}, wrapParam(name, err)
		}
		kind := PropArray
		if t.Kind == ast.KindFixedArray {
			kind = PropFixedArray
		} else if t.Kind == ast.KindOptional {
			kind = PropOption
		}
		prop := Property{Kind: kind, ABIName: name, Type: t, Elem: &elem, Len: t.Size}
		if kind == PropArray {
			prop.Hint = types.arrayHint(t)
		}
		return prop, nil
	case ast.KindMap:
		if !t.Key.IsMapKey() {
			return Property{}, diag.Diagnostic{
				Code:    diag.CodeCodegenMapKey,
				Message: fmt.Sprintf("parameter '%s': map key type %s is not supported", name, t.Key.Signature()),
				Token:   t.Key.Signature(),
				Param:   name,
				Span:    diag.NoSpan,
			}
		}
		key, err := lowerParam("", *t.Key, types)
		if err != nil {
			return Property{}, wrapParam(name, err)
		}
		value, err := lowerParam("", *t.Elem, types)
		if err != nil {
			return Property{}, wrapParam(name, err)
		}
		return Property{Kind: PropMap, ABIName: name, Type: t, Key: &key, Elem: &value}, nil
	case ast.KindInvalid:
		return Property{}, diag.Diagnostic{
			Code:    diag.CodeCodegenInternal,
			Message: fmt.Sprintf("parameter '%s' has no type", name),
			Param:   name,
			Span:    diag.NoSpan,
		}
	}
	return Property{
		Kind:    PropSimple,
		ABIName: name,
		Type:    t,
		GoType:  types.GoTypeOf(t),
		Hint:    types.hintOf(t),
	}, nil
}

// wrapParam names the outer parameter on errors raised for unnamed inner
// properties.
func wrapParam(name string, err error) error {
	if d, ok := err.(diag.Diagnostic); ok && d.Param == "" {
		d.Param = name
		d.Message = fmt.Sprintf("parameter '%s': %s", name, d.Message)
		return d
	}
	return err
}

// StructName builds the exported struct name for a function or event role.
func StructName(name string, role Role) string {
	return GoName(name + role.suffix())
}

// GoName converts an ABI identifier into an exported Go identifier:
// "get_balance" and "getBalance" both become "GetBalance". It returns ""
// when nothing usable is left.
func GoName(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	caser := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	for _, w := range words {
		b.WriteString(caser.String(w))
	}
	out := b.String()
	for _, r := range out {
		if !unicode.IsLetter(r) {
			return ""
		}
		break
	}
	return out
}
