// Package tvmabi parses contract interface signatures and documents and
// generates Go structs for them.
package tvmabi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tos-network/tvmabi/abi/abijson"
	"github.com/tos-network/tvmabi/abi/ast"
	"github.com/tos-network/tvmabi/abi/codegen"
	"github.com/tos-network/tvmabi/abi/parser"
)

// Strategy turns one input text into an entity.
type Strategy interface {
	Name() string
	Parse(text string) (ast.Entity, error)
}

// TextStrategy reads the compact signature notation. Diagnostic offsets
// point into text as given.
type TextStrategy struct{}

func (TextStrategy) Name() string { return "text" }

func (TextStrategy) Parse(text string) (ast.Entity, error) {
	return parser.Parse(text)
}

// JSONFunctionStrategy reads a single function document.
type JSONFunctionStrategy struct{}

func (JSONFunctionStrategy) Name() string { return "json-function" }

func (JSONFunctionStrategy) Parse(text string) (ast.Entity, error) {
	fn, err := abijson.ParseFunction([]byte(text))
	if err != nil {
		return ast.Entity{}, err
	}
	return ast.Entity{Kind: ast.EntityFunction, Function: fn}, nil
}

// DefaultStrategies tries the text notation first, then a function document.
func DefaultStrategies() []Strategy {
	return []Strategy{TextStrategy{}, JSONFunctionStrategy{}}
}

// StrategyError is returned when no strategy accepted the input. The first
// strategy's error leads the message.
type StrategyError struct {
	Names  []string
	Errors []error
}

func (e *StrategyError) Error() string {
	if len(e.Errors) == 0 {
		return "no parse strategy configured"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %v", e.Names[0], e.Errors[0])
	for i := 1; i < len(e.Errors); i++ {
		fmt.Fprintf(&b, "; %s: %v", e.Names[i], e.Errors[i])
	}
	return b.String()
}

func (e *StrategyError) Unwrap() []error { return e.Errors }

// ParseEntity runs strategies in order and returns the first success.
// With no strategies given it uses DefaultStrategies.
func ParseEntity(text string, strategies ...Strategy) (ast.Entity, error) {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	serr := &StrategyError{}
	for _, s := range strategies {
		ent, err := s.Parse(text)
		if err == nil {
			return ent, nil
		}
		serr.Names = append(serr.Names, s.Name())
		serr.Errors = append(serr.Errors, err)
	}
	return ast.Entity{}, serr
}

// GenerateFromParams parses text and emits CommonStruct for a type list.
// Function declarations and empty input produce no output.
func GenerateFromParams(text string, cfg codegen.Config) ([]byte, error) {
	ent, err := ParseEntity(text)
	if err != nil {
		return nil, err
	}
	if ent.Kind != ast.EntityCell {
		return nil, nil
	}
	return codegen.New(cfg).GenerateParams(ent.Params)
}

// GenerateFromFunction parses text and emits the input and output structs
// of a single function.
func GenerateFromFunction(text string, cfg codegen.Config) ([]byte, error) {
	ent, err := ParseEntity(text)
	if err != nil {
		return nil, err
	}
	if ent.Kind != ast.EntityFunction {
		return nil, errors.New("input is not a function declaration")
	}
	c := &ast.Contract{Version: ent.Function.Version, Functions: []*ast.Function{ent.Function}}
	return codegen.New(cfg).GenerateContract(c)
}

// LoadContract decodes and checks a contract document.
func LoadContract(filename string, data []byte) (*ast.Contract, error) {
	return abijson.ParseContract(filename, data)
}

// GenerateFromContract emits structs for every function and event of a
// contract document and records the document's fingerprint in the header.
func GenerateFromContract(filename string, data []byte, cfg codegen.Config) ([]byte, error) {
	c, err := LoadContract(filename, data)
	if err != nil {
		return nil, err
	}
	if cfg.SourceHash == "" {
		cfg.SourceHash = SourceHash(data)
	}
	return codegen.New(cfg).GenerateContract(c)
}
