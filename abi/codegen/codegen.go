package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/tos-network/tvmabi/abi/ast"
	"github.com/tos-network/tvmabi/abi/diag"
	"github.com/tos-network/tvmabi/abi/lower"
)

const importAST = "github.com/tos-network/tvmabi/abi/ast"

// Config controls one generator.
type Config struct {
	// Package is the package clause of the generated file.
	Package string
	// Descriptors adds a constructor per function and event that returns
	// its parsed description.
	Descriptors bool
	// Types maps scalar types to Go types.
	Types lower.TypeTable
	// SourceHash, when set, is recorded in the file header.
	SourceHash string
	Log        *zap.SugaredLogger
}

func DefaultConfig() Config {
	return Config{
		Package: "abi",
		Types:   lower.DefaultTypeTable(),
	}
}

type auxStruct struct {
	name string
	body string
}

// Generator turns lowered programs into Go source. Each Generate call owns
// a fresh struct registry; a Generator must not be used concurrently.
type Generator struct {
	cfg Config
	log *zap.SugaredLogger

	registry map[string]string
	aux      []auxStruct
	imports  map[string]struct{}
}

func New(cfg Config) *Generator {
	if cfg.Package == "" {
		cfg.Package = "abi"
	}
	log := cfg.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Generator{cfg: cfg, log: log}
}

// GenerateParams emits CommonStruct for a bare type list.
func (g *Generator) GenerateParams(params []ast.Param) ([]byte, error) {
	p, err := lower.FromParams(params, g.cfg.Types)
	if err != nil {
		return nil, err
	}
	return g.Generate(p)
}

// GenerateContract emits the input, output and event structs of c.
func (g *Generator) GenerateContract(c *ast.Contract) ([]byte, error) {
	p, err := lower.FromContract(c, g.cfg.Types)
	if err != nil {
		return nil, err
	}
	return g.Generate(p)
}

// AuxStructs lists the tuple structs emitted by the last run, in order.
func (g *Generator) AuxStructs() []string {
	out := make([]string, len(g.aux))
	for i, a := range g.aux {
		out[i] = a.name
	}
	return out
}

func (g *Generator) Generate(p *lower.Program) ([]byte, error) {
	if p == nil {
		return nil, internal("invalid lowered program")
	}
	g.registry = map[string]string{}
	g.aux = nil
	g.imports = map[string]struct{}{}

	var top []string
	names := make(map[string]string, len(p.Structs))
	for _, st := range p.Structs {
		if st.Name == "" {
			return nil, internal(fmt.Sprintf("cannot derive a Go name for %q", st.Source))
		}
		if prev, ok := names[st.Name]; ok {
			return nil, internal(fmt.Sprintf("%q and %q both generate struct %s", prev, st.Source, st.Name))
		}
		names[st.Name] = st.Source
		body, err := g.renderStruct(st.Name, st.Properties)
		if err != nil {
			return nil, err
		}
		top = append(top, structDoc(st)+body)
		g.log.Debugw("generated struct", "name", st.Name, "fields", len(st.Properties))
	}

	var descriptors []string
	if g.cfg.Descriptors {
		for _, fn := range p.Functions {
			d, err := g.functionDescriptor(fn)
			if err != nil {
				return nil, err
			}
			descriptors = append(descriptors, d)
		}
		for _, ev := range p.Events {
			d, err := g.eventDescriptor(ev)
			if err != nil {
				return nil, err
			}
			descriptors = append(descriptors, d)
		}
	}

	var b bytes.Buffer
	b.WriteString("// Code generated by tvmabi. DO NOT EDIT.\n")
	if g.cfg.SourceHash != "" {
		fmt.Fprintf(&b, "// %s%s\n", SourceHashPrefix, g.cfg.SourceHash)
	}
	fmt.Fprintf(&b, "\npackage %s\n", g.cfg.Package)
	g.writeImports(&b)
	for _, s := range top {
		b.WriteString("\n")
		b.WriteString(s)
	}
	for _, a := range g.aux {
		b.WriteString("\n")
		b.WriteString(a.body)
	}
	for _, d := range descriptors {
		b.WriteString("\n")
		b.WriteString(d)
	}

	out, err := format.Source(b.Bytes())
	if err != nil {
		return nil, internal(fmt.Sprintf("generated source does not format: %v", err))
	}
	return out, nil
}

// SourceHashPrefix starts the header line that records the source hash.
const SourceHashPrefix = "source-hash: "

func structDoc(st lower.Struct) string {
	switch st.Role {
	case lower.RoleFunctionInput:
		return fmt.Sprintf("// %s holds the inputs of function %s.\n", st.Name, st.Source)
	case lower.RoleFunctionOutput:
		return fmt.Sprintf("// %s holds the outputs of function %s.\n", st.Name, st.Source)
	case lower.RoleEventOutput:
		return fmt.Sprintf("// %s holds the values of event %s.\n", st.Name, st.Source)
	}
	return ""
}

func (g *Generator) writeImports(b *bytes.Buffer) {
	if len(g.imports) == 0 {
		return
	}
	paths := maps.Keys(g.imports)
	slices.Sort(paths)
	var std, ext []string
	for _, p := range paths {
		if strings.Contains(strings.SplitN(p, "/", 2)[0], ".") {
			ext = append(ext, p)
		} else {
			std = append(std, p)
		}
	}
	b.WriteString("\nimport (\n")
	for _, p := range std {
		fmt.Fprintf(b, "\t%q\n", p)
	}
	if len(std) > 0 && len(ext) > 0 {
		b.WriteString("\n")
	}
	for _, p := range ext {
		fmt.Fprintf(b, "\t%q\n", p)
	}
	b.WriteString(")\n")
}

func (g *Generator) use(path string) {
	if path != "" {
		g.imports[path] = struct{}{}
	}
}

func (g *Generator) renderStruct(name string, props []lower.Property) (string, error) {
	names := fieldNames(props)
	var b strings.Builder
	fmt.Fprintf(&b, "type %s struct {\n", name)
	for i, p := range props {
		typ, err := g.fieldType(p)
		if err != nil {
			return "", err
		}
		tag, err := fieldTag(p)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "\t%s %s %s\n", names[i], typ, tag)
	}
	b.WriteString("}\n")
	return b.String(), nil
}

func (g *Generator) fieldType(p lower.Property) (string, error) {
	switch p.Kind {
	case lower.PropSimple:
		if p.GoType.Expr == "" {
			return "", internal(fmt.Sprintf("no Go type for parameter '%s' of type %s", p.ABIName, p.TypeStr()))
		}
		g.use(p.GoType.Import)
		return p.GoType.Expr, nil
	case lower.PropArray, lower.PropFixedArray, lower.PropOption:
		inner, err := g.fieldType(*p.Elem)
		if err != nil {
			return "", err
		}
		switch p.Kind {
		case lower.PropArray:
			return "[]" + inner, nil
		case lower.PropFixedArray:
			return fmt.Sprintf("[%d]%s", p.Len, inner), nil
		}
		if strings.HasPrefix(inner, "*") {
			return inner, nil
		}
		return "*" + inner, nil
	case lower.PropTuple:
		return g.innerStruct(p.Fields)
	case lower.PropMap:
		if p.Key == nil || p.Key.Kind != lower.PropSimple {
			return "", diag.Diagnostic{
				Code:    diag.CodeCodegenMapKey,
				Message: fmt.Sprintf("parameter '%s': map key must be a scalar", p.ABIName),
				Param:   p.ABIName,
				Span:    diag.NoSpan,
			}
		}
		key := p.Key.GoType.Expr
		if key == "*big.Int" {
			key = "string"
		} else {
			g.use(p.Key.GoType.Import)
		}
		value, err := g.fieldType(*p.Elem)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("map[%s]%s", key, value), nil
	}
	return "", internal(fmt.Sprintf("unknown property kind %d", p.Kind))
}

// innerStruct returns the name of the struct for a tuple's fields,
// emitting it on first sight. Tuples with the same field names and types
// share one struct.
func (g *Generator) innerStruct(fields []lower.Property) (string, error) {
	key := lower.StructKey(fields)
	if name, ok := g.registry[key]; ok {
		g.log.Debugw("reusing struct", "name", name, "key", key)
		return name, nil
	}
	name := "InternalStruct" + strconv.Itoa(len(g.aux)+1)
	g.registry[key] = name
	idx := len(g.aux)
	g.aux = append(g.aux, auxStruct{name: name})
	body, err := g.renderStruct(name, fields)
	if err != nil {
		return "", err
	}
	g.aux[idx].body = body
	g.log.Debugw("generated struct", "name", name, "fields", len(fields))
	return name, nil
}

func fieldNames(props []lower.Property) []string {
	out := make([]string, len(props))
	seen := map[string]struct{}{}
	for i, p := range props {
		name := lower.GoName(p.ABIName)
		if name == "" {
			name = "Field" + strconv.Itoa(i)
		}
		base := name
		for n := i; ; n++ {
			if _, dup := seen[name]; !dup {
				break
			}
			name = base + strconv.Itoa(n)
		}
		seen[name] = struct{}{}
		out[i] = name
	}
	return out
}

func fieldTag(p lower.Property) (string, error) {
	if strings.ContainsAny(p.ABIName, "\"`,\\") {
		return "", internal(fmt.Sprintf("parameter name %q cannot be used in a struct tag", p.ABIName))
	}
	abi := p.ABIName
	if hint := p.TagHint(); hint != "" {
		abi += "," + hint
	}
	return fmt.Sprintf("`json:\"%s\" abi:\"%s\"`", p.ABIName, abi), nil
}

func internal(msg string) error {
	return diag.Diagnostic{Code: diag.CodeCodegenInternal, Message: msg, Span: diag.NoSpan}
}
