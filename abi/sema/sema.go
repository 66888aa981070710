package sema

import (
	"fmt"
	"strings"

	"github.com/tos-network/tvmabi/abi/ast"
	"github.com/tos-network/tvmabi/abi/diag"
)

// MaxDepth mirrors the parser's nesting limit for contracts built from
// structured documents.
const MaxDepth = 16

// Check validates a contract built from a structured document: unique
// function and event names, unique function input ids, non-empty names,
// valid map keys and bounded nesting.
func Check(filename string, c *ast.Contract) diag.Diagnostics {
	var diags diag.Diagnostics
	if c == nil {
		return diags
	}

	funcs := map[string]struct{}{}
	ids := map[uint32]string{}
	for _, fn := range c.Functions {
		name := strings.TrimSpace(fn.Name)
		if name == "" {
			diags = append(diags, diag.Diagnostic{
				Code:    diag.CodeSemaEmptyName,
				Message: "function with empty name",
				Span:    defaultSpan(filename),
			})
			continue
		}
		if _, ok := funcs[name]; ok {
			diags = append(diags, diag.Diagnostic{
				Code:    diag.CodeSemaDuplicateFunction,
				Message: fmt.Sprintf("duplicate function '%s'", name),
				Token:   name,
				Span:    defaultSpan(filename),
			})
		}
		funcs[name] = struct{}{}
		if prev, ok := ids[fn.InputID]; ok && prev != name {
			diags = append(diags, diag.Diagnostic{
				Code:    diag.CodeSemaDuplicateID,
				Message: fmt.Sprintf("function '%s' reuses id 0x%08x of function '%s'", name, fn.InputID, prev),
				Token:   name,
				Span:    defaultSpan(filename),
			})
		} else {
			ids[fn.InputID] = name
		}
		diags = append(diags, checkParams(filename, "function '"+name+"'", fn.Inputs)...)
		diags = append(diags, checkParams(filename, "return list of function '"+name+"'", fn.Outputs)...)
	}

	events := map[string]struct{}{}
	for _, ev := range c.Events {
		name := strings.TrimSpace(ev.Name)
		if name == "" {
			diags = append(diags, diag.Diagnostic{
				Code:    diag.CodeSemaEmptyName,
				Message: "event with empty name",
				Span:    defaultSpan(filename),
			})
			continue
		}
		if _, ok := events[name]; ok {
			diags = append(diags, diag.Diagnostic{
				Code:    diag.CodeSemaDuplicateEvent,
				Message: fmt.Sprintf("duplicate event '%s'", name),
				Token:   name,
				Span:    defaultSpan(filename),
			})
		}
		events[name] = struct{}{}
		diags = append(diags, checkParams(filename, "event '"+name+"'", ev.Inputs)...)
	}

	diags = append(diags, checkParams(filename, "header", c.Header)...)
	diags = append(diags, checkParams(filename, "fields", c.Fields)...)
	return diags
}

func checkParams(filename, owner string, params []ast.Param) diag.Diagnostics {
	var out diag.Diagnostics
	seen := map[string]struct{}{}
	for _, p := range params {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			out = append(out, diag.Diagnostic{
				Code:    diag.CodeSemaEmptyName,
				Message: fmt.Sprintf("unnamed parameter in %s", owner),
				Span:    defaultSpan(filename),
			})
		} else if _, ok := seen[name]; ok {
			out = append(out, diag.Diagnostic{
				Code:    diag.CodeSemaDuplicateParam,
				Message: fmt.Sprintf("duplicate parameter '%s' in %s", name, owner),
				Token:   name,
				Param:   name,
				Span:    defaultSpan(filename),
			})
		}
		seen[name] = struct{}{}

		if d := p.Type.Depth(); d > MaxDepth {
			out = append(out, diag.Diagnostic{
				Code:    diag.CodeSemaTooDeep,
				Message: fmt.Sprintf("parameter '%s' in %s nests %d levels (limit %d)", name, owner, d, MaxDepth),
				Value:   d,
				Param:   name,
				Span:    defaultSpan(filename),
			})
		}
		if key, ok := badMapKey(p.Type); ok {
			out = append(out, diag.Diagnostic{
				Code:    diag.CodeSemaInvalidMapKey,
				Message: fmt.Sprintf("parameter '%s' in %s uses map key type %s", name, owner, key.Signature()),
				Token:   key.Signature(),
				Param:   name,
				Span:    defaultSpan(filename),
			})
		}
	}
	return out
}

// badMapKey finds the first map in t whose key is not an integer or
// address. Maps built with ast.NewMap never fail this, but contracts can
// also be assembled by hand.
func badMapKey(t ast.ParamType) (ast.ParamType, bool) {
	if t.Kind == ast.KindMap && t.Key != nil && !t.Key.IsMapKey() {
		return *t.Key, true
	}
	if t.Key != nil {
		if k, ok := badMapKey(*t.Key); ok {
			return k, true
		}
	}
	if t.Elem != nil {
		if k, ok := badMapKey(*t.Elem); ok {
			return k, true
		}
	}
	for _, c := range t.Components {
		if k, ok := badMapKey(c.Type); ok {
			return k, true
		}
	}
	return ast.ParamType{}, false
}

func defaultSpan(filename string) diag.Span {
	if filename == "" {
		return diag.NoSpan
	}
	return diag.Span{File: filename}
}
