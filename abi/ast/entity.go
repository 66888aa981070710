package ast

import "fmt"

// Version is a contract interface version.
type Version struct {
	Major uint8
	Minor uint8
}

// DefaultVersion applies when a declaration carries no version tag.
var DefaultVersion = Version{Major: 2, Minor: 2}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Tag renders the version the way it appears after a function declaration.
func (v Version) Tag() string {
	return fmt.Sprintf("v%d.%d", v.Major, v.Minor)
}

type EntityKind int

const (
	EntityEmpty EntityKind = iota
	EntityCell
	EntityFunction
)

func (k EntityKind) String() string {
	switch k {
	case EntityCell:
		return "cell"
	case EntityFunction:
		return "function"
	default:
		return "empty"
	}
}

// Entity is the result of parsing one signature text.
type Entity struct {
	Kind     EntityKind
	Params   []Param
	Function *Function
}

// Function is a parsed function declaration.
type Function struct {
	Name       string
	InputID    uint32
	OutputID   uint32
	ExplicitID bool
	Inputs     []Param
	Outputs    []Param
	Version    Version
}

// Event is a contract event. Events only carry inputs.
type Event struct {
	Name       string
	ID         uint32
	ExplicitID bool
	Inputs     []Param
	Version    Version
}

// DataItem is a persistent data slot declared by a contract.
type DataItem struct {
	Key   uint64
	Param Param
}

// Contract is a full interface description.
type Contract struct {
	Version   Version
	Header    []Param
	Functions []*Function
	Events    []*Event
	Data      []DataItem
	Fields    []Param
}

// Function returns the function named name, or nil.
func (c *Contract) Function(name string) *Function {
	for _, fn := range c.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// Event returns the event named name, or nil.
func (c *Contract) Event(name string) *Event {
	for _, ev := range c.Events {
		if ev.Name == name {
			return ev
		}
	}
	return nil
}
