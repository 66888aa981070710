package diag

import (
	"errors"
	"fmt"
)

const (
	CodeParseUnexpected     = "ABI1001"
	CodeParseEOF            = "ABI1002"
	CodeParseInvalidNumber  = "ABI1003"
	CodeParseOutOfRange     = "ABI1004"
	CodeParseTooDeep        = "ABI1005"
	CodeParseUnknownIdent   = "ABI1006"
	CodeParseInvalidVersion = "ABI1007"
	CodeParseInvalidMapKey  = "ABI1008"
	CodeParseInvalidDoc     = "ABI1009"

	CodeSemaDuplicateFunction = "ABI2001"
	CodeSemaDuplicateEvent    = "ABI2002"
	CodeSemaDuplicateID       = "ABI2003"
	CodeSemaInvalidMapKey     = "ABI2004"
	CodeSemaTooDeep           = "ABI2005"
	CodeSemaEmptyName         = "ABI2006"
	CodeSemaDuplicateParam    = "ABI2007"

	CodeCodegenMapKey   = "ABI4001"
	CodeCodegenInternal = "ABI4002"
)

// Span is a byte range in the source text. End is exclusive.
type Span struct {
	File   string
	Offset int
	End    int
}

// Diagnostic is a structured error produced by the parser, the
// consistency checks or the struct generator.
type Diagnostic struct {
	Code    string
	Message string
	// Token is the offending token text, empty at end of input.
	Token string
	// Value is the offending numeric value (sizes, depths), if any.
	Value int
	// Param names the offending parameter for generation errors.
	Param string
	Span  Span
}

func (d Diagnostic) Error() string {
	if d.Span.File == "" && d.Span.Offset < 0 {
		return fmt.Sprintf("[%s] %s", d.Code, d.Message)
	}
	if d.Span.File == "" {
		return fmt.Sprintf("[%s] %s at %d", d.Code, d.Message, d.Span.Offset)
	}
	return fmt.Sprintf("%s:%d: [%s] %s", d.Span.File, d.Span.Offset, d.Code, d.Message)
}

// NoSpan is used for diagnostics that are not tied to source text.
var NoSpan = Span{Offset: -1, End: -1}

// Diagnostics is an ordered diagnostic list.
type Diagnostics []Diagnostic

func (ds Diagnostics) Error() string {
	if len(ds) == 0 {
		return ""
	}
	if len(ds) == 1 {
		return ds[0].Error()
	}
	return fmt.Sprintf("%s (and %d more error(s))", ds[0].Error(), len(ds)-1)
}

func (ds Diagnostics) HasErrors() bool { return len(ds) > 0 }

// Err returns ds as an error, or nil when the list is empty.
func (ds Diagnostics) Err() error {
	if len(ds) == 0 {
		return nil
	}
	return ds
}

// Is reports whether err is (or wraps) a diagnostic with the given code.
// For a Diagnostics list the first entry decides.
func Is(err error, code string) bool {
	d, ok := As(err)
	return ok && d.Code == code
}

// As extracts the first diagnostic carried by err.
func As(err error) (Diagnostic, bool) {
	var d Diagnostic
	if errors.As(err, &d) {
		return d, true
	}
	var ds Diagnostics
	if errors.As(err, &ds) && len(ds) > 0 {
		return ds[0], true
	}
	return Diagnostic{}, false
}
