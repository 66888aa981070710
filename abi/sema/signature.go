package sema

import (
	"encoding/binary"
	"fmt"

	"github.com/minio/sha256-simd"

	"github.com/tos-network/tvmabi/abi/ast"
)

const (
	inputMask  = 0x7FFFFFFF
	outputFlag = 0x80000000
)

// FunctionSignature renders the canonical signature that function ids are
// derived from: name(inputs)(outputs)v<major>.
func FunctionSignature(fn *ast.Function) string {
	return fmt.Sprintf("%s(%s)(%s)v%d", fn.Name, ast.SignatureList(fn.Inputs), ast.SignatureList(fn.Outputs), fn.Version.Major)
}

// EventSignature renders name(inputs)v<major>.
func EventSignature(ev *ast.Event) string {
	return fmt.Sprintf("%s(%s)v%d", ev.Name, ast.SignatureList(ev.Inputs), ev.Version.Major)
}

// CalcID returns the first four bytes of the SHA-256 digest of sig as a
// big-endian integer.
func CalcID(sig string) uint32 {
	sum := sha256.Sum256([]byte(sig))
	return binary.BigEndian.Uint32(sum[:4])
}

// AssignFunctionIDs fills fn's input and output ids. An explicit id is
// used unchanged for both; otherwise the id derived from the signature is
// split by its top bit.
func AssignFunctionIDs(fn *ast.Function, explicit *uint32) {
	if explicit != nil {
		fn.InputID = *explicit
		fn.OutputID = *explicit
		fn.ExplicitID = true
		return
	}
	base := CalcID(FunctionSignature(fn))
	fn.InputID = base & inputMask
	fn.OutputID = base | outputFlag
	fn.ExplicitID = false
}

// AssignEventID fills ev.ID the same way as a function input id.
func AssignEventID(ev *ast.Event, explicit *uint32) {
	if explicit != nil {
		ev.ID = *explicit
		ev.ExplicitID = true
		return
	}
	ev.ID = CalcID(EventSignature(ev)) & inputMask
	ev.ExplicitID = false
}
