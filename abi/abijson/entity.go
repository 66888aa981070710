package abijson

import (
	"github.com/goccy/go-json"

	"github.com/tos-network/tvmabi/abi/ast"
)

// Entity is the projection of a parse result handed to callers.
type Entity struct {
	Kind      string  `json:"kind" yaml:"kind"`
	Structure []Param `json:"structure,omitempty" yaml:"structure,omitempty"`
	Name      string  `json:"name,omitempty" yaml:"name,omitempty"`
	Inputs    []Param `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Outputs   []Param `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	InputID   *uint32 `json:"inputId,omitempty" yaml:"inputId,omitempty"`
	OutputID  *uint32 `json:"outputId,omitempty" yaml:"outputId,omitempty"`
	Version   string  `json:"version,omitempty" yaml:"version,omitempty"`
}

func FromEntity(ent ast.Entity) Entity {
	out := Entity{Kind: ent.Kind.String()}
	switch ent.Kind {
	case ast.EntityCell:
		out.Structure = FromParams(ent.Params)
	case ast.EntityFunction:
		fn := ent.Function
		in, outID := fn.InputID, fn.OutputID
		out.Name = fn.Name
		out.Inputs = FromParams(fn.Inputs)
		out.Outputs = FromParams(fn.Outputs)
		out.InputID = &in
		out.OutputID = &outID
		out.Version = fn.Version.String()
	}
	return out
}

// MarshalEntity renders the projection of ent as indented JSON.
func MarshalEntity(ent ast.Entity) ([]byte, error) {
	return json.MarshalIndent(FromEntity(ent), "", "  ")
}
