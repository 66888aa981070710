package codegen

import (
	"fmt"
	"strings"

	"github.com/tos-network/tvmabi/abi/ast"
	"github.com/tos-network/tvmabi/abi/lower"
)

func (g *Generator) functionDescriptor(fn *ast.Function) (string, error) {
	name := lower.GoName(fn.Name)
	if name == "" {
		return "", internal(fmt.Sprintf("cannot derive a Go name for function %q", fn.Name))
	}
	g.use(importAST)

	var b strings.Builder
	fmt.Fprintf(&b, "// %sFunction describes function %s.\n", name, fn.Name)
	fmt.Fprintf(&b, "func %sFunction() *ast.Function {\n", name)
	b.WriteString("\treturn &ast.Function{\n")
	fmt.Fprintf(&b, "\t\tName: %q,\n", fn.Name)
	fmt.Fprintf(&b, "\t\tInputID: 0x%08x,\n", fn.InputID)
	fmt.Fprintf(&b, "\t\tOutputID: 0x%08x,\n", fn.OutputID)
	if fn.ExplicitID {
		b.WriteString("\t\tExplicitID: true,\n")
	}
	writeParamsField(&b, "Inputs", fn.Inputs)
	writeParamsField(&b, "Outputs", fn.Outputs)
	fmt.Fprintf(&b, "\t\tVersion: ast.Version{Major: %d, Minor: %d},\n", fn.Version.Major, fn.Version.Minor)
	b.WriteString("\t}\n}\n")
	return b.String(), nil
}

func (g *Generator) eventDescriptor(ev *ast.Event) (string, error) {
	name := lower.GoName(ev.Name)
	if name == "" {
		return "", internal(fmt.Sprintf("cannot derive a Go name for event %q", ev.Name))
	}
	g.use(importAST)

	var b strings.Builder
	fmt.Fprintf(&b, "// %sEvent describes event %s.\n", name, ev.Name)
	fmt.Fprintf(&b, "func %sEvent() *ast.Event {\n", name)
	b.WriteString("\treturn &ast.Event{\n")
	fmt.Fprintf(&b, "\t\tName: %q,\n", ev.Name)
	fmt.Fprintf(&b, "\t\tID: 0x%08x,\n", ev.ID)
	if ev.ExplicitID {
		b.WriteString("\t\tExplicitID: true,\n")
	}
	writeParamsField(&b, "Inputs", ev.Inputs)
	fmt.Fprintf(&b, "\t\tVersion: ast.Version{Major: %d, Minor: %d},\n", ev.Version.Major, ev.Version.Minor)
	b.WriteString("\t}\n}\n")
	return b.String(), nil
}

func writeParamsField(b *strings.Builder, field string, params []ast.Param) {
	if len(params) == 0 {
		return
	}
	fmt.Fprintf(b, "\t\t%s: []ast.Param{\n", field)
	for _, p := range params {
		fmt.Fprintf(b, "\t\t\t{Name: %q, Type: %s},\n", p.Name, typeLiteral(p.Type))
	}
	b.WriteString("\t\t},\n")
}

// typeLiteral renders t as a Go expression built from the ast constructors.
func typeLiteral(t ast.ParamType) string {
	switch t.Kind {
	case ast.KindBool:
		return "ast.Bool()"
	case ast.KindAddress:
		return "ast.Address()"
	case ast.KindBytes:
		return "ast.Bytes()"
	case ast.KindString:
		return "ast.String()"
	case ast.KindCell:
		return "ast.Cell()"
	case ast.KindToken:
		return "ast.Token()"
	case ast.KindInt:
		return fmt.Sprintf("ast.Int(%d)", t.Size)
	case ast.KindUint:
		return fmt.Sprintf("ast.Uint(%d)", t.Size)
	case ast.KindVarInt:
		return fmt.Sprintf("ast.VarInt(%d)", t.Size)
	case ast.KindVarUint:
		return fmt.Sprintf("ast.VarUint(%d)", t.Size)
	case ast.KindFixedBytes:
		return fmt.Sprintf("ast.FixedBytes(%d)", t.Size)
	case ast.KindOptional:
		return fmt.Sprintf("ast.Optional(%s)", typeLiteral(*t.Elem))
	case ast.KindRef:
		return fmt.Sprintf("ast.Ref(%s)", typeLiteral(*t.Elem))
	case ast.KindArray:
		return fmt.Sprintf("ast.Array(%s)", typeLiteral(*t.Elem))
	case ast.KindFixedArray:
		return fmt.Sprintf("ast.FixedArray(%s, %d)", typeLiteral(*t.Elem), t.Size)
	case ast.KindMap:
		return fmt.Sprintf("ast.MustMap(%s, %s)", typeLiteral(*t.Key), typeLiteral(*t.Elem))
	case ast.KindTuple:
		parts := make([]string, len(t.Components))
		for i, c := range t.Components {
			parts[i] = fmt.Sprintf("ast.Param{Name: %q, Type: %s}", c.Name, typeLiteral(c.Type))
		}
		return "ast.Tuple(" + strings.Join(parts, ", ") + ")"
	}
	return "ast.ParamType{}"
}
