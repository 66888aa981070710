// Package abijson reads and writes structured interface descriptions: full
// contract documents, single function documents and the projection of a
// parsed entity handed to callers.
package abijson

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tos-network/tvmabi/abi/ast"
	"github.com/tos-network/tvmabi/abi/diag"
	"github.com/tos-network/tvmabi/abi/parser"
	"github.com/tos-network/tvmabi/abi/sema"
)

// Param is a parameter as written in interface documents. Composite types
// keep their fields in Components and spell the type as "tuple", "tuple[]",
// "map(uint32,tuple)" and so on.
type Param struct {
	Name       string  `json:"name" yaml:"name"`
	Type       string  `json:"type" yaml:"type"`
	Components []Param `json:"components,omitempty" yaml:"components,omitempty"`
}

// ID is a function or event id. Documents spell it as a "0x" prefixed hex
// string, a decimal string or a plain number.
type ID uint32

func (id *ID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(str)
	}
	var (
		v   uint64
		err error
	)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err = strconv.ParseUint(s[2:], 16, 32)
	} else {
		v, err = strconv.ParseUint(s, 10, 32)
	}
	if err != nil {
		return fmt.Errorf("invalid id %s: %w", string(b), err)
	}
	*id = ID(v)
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

func (id ID) String() string {
	return fmt.Sprintf("0x%08x", uint32(id))
}

type Function struct {
	Name    string  `json:"name"`
	ID      *ID     `json:"id,omitempty"`
	Inputs  []Param `json:"inputs"`
	Outputs []Param `json:"outputs"`
}

type Event struct {
	Name   string  `json:"name"`
	ID     *ID     `json:"id,omitempty"`
	Inputs []Param `json:"inputs"`
}

type DataItem struct {
	Key uint64 `json:"key"`
	Param
}

// HeaderItem is either a short builtin header name ("time", "expire",
// "pubkey") or a full parameter.
type HeaderItem struct {
	Param
	Short bool
}

var headerTypes = map[string]ast.ParamType{
	"time":   ast.Uint(64),
	"expire": ast.Uint(32),
	"pubkey": ast.Optional(ast.Uint(256)),
}

func (h *HeaderItem) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if strings.HasPrefix(s, `"`) {
		h.Short = true
		return json.Unmarshal(b, &h.Name)
	}
	return json.Unmarshal(b, &h.Param)
}

func (h HeaderItem) MarshalJSON() ([]byte, error) {
	if h.Short {
		return json.Marshal(h.Name)
	}
	return json.Marshal(h.Param)
}

// Document is a contract interface document.
type Document struct {
	ABIVersion int          `json:"ABI version"`
	Version    string       `json:"version,omitempty"`
	Header     []HeaderItem `json:"header,omitempty"`
	Functions  []Function   `json:"functions"`
	Events     []Event      `json:"events"`
	Data       []DataItem   `json:"data,omitempty"`
	Fields     []Param      `json:"fields,omitempty"`
}

// ParseContract decodes a contract document and checks it. Check problems
// are returned as diag.Diagnostics.
func ParseContract(filename string, data []byte) (*ast.Contract, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, invalidDocument(filename, "contract", err)
	}
	c, err := doc.Contract()
	if err != nil {
		return nil, err
	}
	if diags := sema.Check(filename, c); diags.HasErrors() {
		return nil, diags
	}
	return c, nil
}

// ParseFunction decodes a single function document. Functions without an
// id get one derived from their signature under the default version.
func ParseFunction(data []byte) (*ast.Function, error) {
	var raw Function
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, invalidDocument("", "function", err)
	}
	if strings.TrimSpace(raw.Name) == "" {
		return nil, diag.Diagnostic{
			Code:    diag.CodeParseInvalidDoc,
			Message: "function document has no name",
			Span:    diag.NoSpan,
		}
	}
	return raw.function(ast.DefaultVersion)
}

func invalidDocument(filename, what string, err error) error {
	span := diag.NoSpan
	if filename != "" {
		span = diag.Span{File: filename}
	}
	return diag.Diagnostic{
		Code:    diag.CodeParseInvalidDoc,
		Message: fmt.Sprintf("invalid %s document: %v", what, err),
		Span:    span,
	}
}

// Contract converts the document into the type model and assigns ids.
func (d *Document) Contract() (*ast.Contract, error) {
	version, err := d.version()
	if err != nil {
		return nil, err
	}
	c := &ast.Contract{Version: version}

	for _, h := range d.Header {
		if h.Short {
			t, ok := headerTypes[h.Name]
			if !ok {
				return nil, diag.Diagnostic{
					Code:    diag.CodeParseInvalidDoc,
					Message: fmt.Sprintf("unknown header '%s'", h.Name),
					Token:   h.Name,
					Span:    diag.NoSpan,
				}
			}
			c.Header = append(c.Header, ast.Param{Name: h.Name, Type: t.Clone()})
			continue
		}
		p, err := ToParam(h.Param)
		if err != nil {
			return nil, fmt.Errorf("header: %w", err)
		}
		c.Header = append(c.Header, p)
	}

	for _, f := range d.Functions {
		fn, err := f.function(version)
		if err != nil {
			return nil, err
		}
		c.Functions = append(c.Functions, fn)
	}
	for _, e := range d.Events {
		inputs, err := ToParams(e.Inputs)
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", e.Name, err)
		}
		ev := &ast.Event{Name: e.Name, Inputs: inputs, Version: version}
		sema.AssignEventID(ev, (*uint32)(e.ID))
		c.Events = append(c.Events, ev)
	}
	for _, item := range d.Data {
		p, err := ToParam(item.Param)
		if err != nil {
			return nil, fmt.Errorf("data: %w", err)
		}
		c.Data = append(c.Data, ast.DataItem{Key: item.Key, Param: p})
	}
	if c.Fields, err = ToParams(d.Fields); err != nil {
		return nil, fmt.Errorf("fields: %w", err)
	}
	return c, nil
}

func (f Function) function(version ast.Version) (*ast.Function, error) {
	inputs, err := ToParams(f.Inputs)
	if err != nil {
		return nil, fmt.Errorf("function %s inputs: %w", f.Name, err)
	}
	outputs, err := ToParams(f.Outputs)
	if err != nil {
		return nil, fmt.Errorf("function %s outputs: %w", f.Name, err)
	}
	fn := &ast.Function{Name: f.Name, Inputs: inputs, Outputs: outputs, Version: version}
	sema.AssignFunctionIDs(fn, (*uint32)(f.ID))
	return fn, nil
}

func (d *Document) version() (ast.Version, error) {
	if d.Version == "" {
		switch d.ABIVersion {
		case 0:
			return ast.DefaultVersion, nil
		case 1, 2:
			return ast.Version{Major: uint8(d.ABIVersion)}, nil
		}
		return ast.Version{}, badVersion(strconv.Itoa(d.ABIVersion))
	}
	major, minor, ok := strings.Cut(d.Version, ".")
	if !ok {
		return ast.Version{}, badVersion(d.Version)
	}
	ma, err1 := strconv.ParseUint(major, 10, 8)
	mi, err2 := strconv.ParseUint(minor, 10, 8)
	if err1 != nil || err2 != nil || ma < 1 || ma > 2 {
		return ast.Version{}, badVersion(d.Version)
	}
	return ast.Version{Major: uint8(ma), Minor: uint8(mi)}, nil
}

func badVersion(v string) error {
	return diag.Diagnostic{
		Code:    diag.CodeParseInvalidVersion,
		Message: fmt.Sprintf("unsupported ABI version '%s'", v),
		Token:   v,
		Span:    diag.NoSpan,
	}
}

// ToParam converts a document parameter into the type model.
func ToParam(p Param) (ast.Param, error) {
	var comps []ast.Param
	if len(p.Components) > 0 {
		var err error
		if comps, err = ToParams(p.Components); err != nil {
			return ast.Param{}, fmt.Errorf("%s: %w", p.Name, err)
		}
	}
	t, err := parser.ParseType(p.Type, comps)
	if err != nil {
		return ast.Param{}, fmt.Errorf("%s: %w", p.Name, err)
	}
	return ast.Param{Name: p.Name, Type: t}, nil
}

func ToParams(ps []Param) ([]ast.Param, error) {
	if len(ps) == 0 {
		return nil, nil
	}
	out := make([]ast.Param, 0, len(ps))
	for _, p := range ps {
		ap, err := ToParam(p)
		if err != nil {
			return nil, err
		}
		out = append(out, ap)
	}
	return out, nil
}

// FromParam renders a typed parameter in document form. The innermost
// tuple of an array, optional, ref or map value carries the components.
func FromParam(p ast.Param) Param {
	typ, comps := typeString(p.Type)
	return Param{Name: p.Name, Type: typ, Components: comps}
}

func FromParams(ps []ast.Param) []Param {
	out := make([]Param, len(ps))
	for i, p := range ps {
		out[i] = FromParam(p)
	}
	return out
}

func typeString(t ast.ParamType) (string, []Param) {
	switch t.Kind {
	case ast.KindTuple:
		return "tuple", FromParams(t.Components)
	case ast.KindArray:
		inner, comps := typeString(*t.Elem)
		return inner + "[]", comps
	case ast.KindFixedArray:
		inner, comps := typeString(*t.Elem)
		return fmt.Sprintf("%s[%d]", inner, t.Size), comps
	case ast.KindOptional, ast.KindRef:
		inner, comps := typeString(*t.Elem)
		return fmt.Sprintf("%s(%s)", t.Kind, inner), comps
	case ast.KindMap:
		key, _ := typeString(*t.Key)
		value, comps := typeString(*t.Elem)
		return fmt.Sprintf("map(%s,%s)", key, value), comps
	default:
		return t.Signature(), nil
	}
}

// FromContract renders c as a document.
func FromContract(c *ast.Contract) Document {
	doc := Document{
		ABIVersion: int(c.Version.Major),
		Version:    c.Version.String(),
		Functions:  []Function{},
		Events:     []Event{},
	}
	for _, h := range c.Header {
		if t, ok := headerTypes[h.Name]; ok && t.Equal(h.Type) {
			doc.Header = append(doc.Header, HeaderItem{Param: Param{Name: h.Name}, Short: true})
			continue
		}
		doc.Header = append(doc.Header, HeaderItem{Param: FromParam(h)})
	}
	for _, fn := range c.Functions {
		f := Function{Name: fn.Name, Inputs: FromParams(fn.Inputs), Outputs: FromParams(fn.Outputs)}
		if fn.ExplicitID {
			id := ID(fn.InputID)
			f.ID = &id
		}
		doc.Functions = append(doc.Functions, f)
	}
	for _, ev := range c.Events {
		e := Event{Name: ev.Name, Inputs: FromParams(ev.Inputs)}
		if ev.ExplicitID {
			id := ID(ev.ID)
			e.ID = &id
		}
		doc.Events = append(doc.Events, e)
	}
	for _, item := range c.Data {
		doc.Data = append(doc.Data, DataItem{Key: item.Key, Param: FromParam(item.Param)})
	}
	if len(c.Fields) > 0 {
		doc.Fields = FromParams(c.Fields)
	}
	return doc
}

// MarshalContract renders c as an indented document.
func MarshalContract(c *ast.Contract) ([]byte, error) {
	return json.MarshalIndent(FromContract(c), "", "  ")
}
