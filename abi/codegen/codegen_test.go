package codegen

import (
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tos-network/tvmabi/abi/ast"
	"github.com/tos-network/tvmabi/abi/diag"
	abiparser "github.com/tos-network/tvmabi/abi/parser"
	"github.com/tos-network/tvmabi/abi/sema"
)

func squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func requireValidGo(t *testing.T, src []byte) {
	t.Helper()
	_, err := parser.ParseFile(token.NewFileSet(), "gen.go", src, parser.AllErrors)
	require.NoError(t, err, string(src))
}

func sharedTupleContract() *ast.Contract {
	pair := ast.Tuple(ast.Param{Name: "a", Type: ast.Uint(256)}, ast.Param{Name: "b", Type: ast.Bool()})
	c := &ast.Contract{
		Version: ast.DefaultVersion,
		Functions: []*ast.Function{
			{Name: "submit", Inputs: []ast.Param{{Name: "entry", Type: pair}}, Version: ast.DefaultVersion},
			{Name: "replace", Inputs: []ast.Param{{Name: "entry", Type: pair}, {Name: "prev", Type: ast.Optional(pair)}}, Version: ast.DefaultVersion},
			{Name: "get_entries", Outputs: []ast.Param{{Name: "entries", Type: ast.Array(pair)}}, Version: ast.DefaultVersion},
		},
		Events: []*ast.Event{
			{Name: "Submitted", Inputs: []ast.Param{{Name: "entry", Type: pair}}, Version: ast.DefaultVersion},
		},
	}
	for _, fn := range c.Functions {
		sema.AssignFunctionIDs(fn, nil)
	}
	for _, ev := range c.Events {
		sema.AssignEventID(ev, nil)
	}
	return c
}

func TestSharedTupleGeneratesOneStruct(t *testing.T) {
	g := New(DefaultConfig())
	out, err := g.GenerateContract(sharedTupleContract())
	require.NoError(t, err)
	requireValidGo(t, out)

	src := squash(string(out))
	require.Equal(t, []string{"InternalStruct1"}, g.AuxStructs())
	require.Equal(t, 1, strings.Count(src, "type InternalStruct1 struct"))
	require.NotContains(t, src, "InternalStruct2")

	require.Contains(t, src, "type SubmitFunctionInput struct { Entry InternalStruct1 `json:\"entry\" abi:\"entry\"` }")
	require.Contains(t, src, "Prev *InternalStruct1 `json:\"prev\" abi:\"prev,optional\"`")
	require.Contains(t, src, "type GetEntriesFunctionOutput struct { Entries []InternalStruct1 `json:\"entries\" abi:\"entries,array\"` }")
	require.Contains(t, src, "type SubmittedEventOutput struct { Entry InternalStruct1")
	require.Contains(t, src, "A uint256.Int `json:\"a\" abi:\"a,uint256\"`")
	require.Contains(t, src, "B bool `json:\"b\" abi:\"b,bool\"`")
	require.NotContains(t, src, "GetEntriesFunctionInput")
}

func TestGenerationIsIdempotent(t *testing.T) {
	c := sharedTupleContract()
	first, err := New(DefaultConfig()).GenerateContract(c)
	require.NoError(t, err)
	second, err := New(DefaultConfig()).GenerateContract(c)
	require.NoError(t, err)
	require.Equal(t, string(first), string(second))

	g := New(DefaultConfig())
	a, err := g.GenerateContract(c)
	require.NoError(t, err)
	b, err := g.GenerateContract(c)
	require.NoError(t, err)
	require.Equal(t, string(a), string(b))
	require.Equal(t, string(first), string(a))

	reversed := *c
	reversed.Functions = []*ast.Function{c.Functions[2], c.Functions[1], c.Functions[0]}
	third, err := New(DefaultConfig()).GenerateContract(&reversed)
	require.NoError(t, err)
	require.Equal(t, string(first), string(third), "declaration order must not change the output")
}

func TestCommonStructFromText(t *testing.T) {
	ent, err := abiparser.Parse("uint256, map(uint24, bool), optional(varuint16), ref(uint160), int128[2]")
	require.NoError(t, err)

	out, err := New(DefaultConfig()).GenerateParams(ent.Params)
	require.NoError(t, err)
	requireValidGo(t, out)

	src := squash(string(out))
	require.True(t, strings.HasPrefix(src, "// Code generated by tvmabi. DO NOT EDIT. package abi"), src)
	require.Contains(t, src, "Value0 uint256.Int `json:\"value0\" abi:\"value0,uint256\"`")
	require.Contains(t, src, "Value1 map[string]bool `json:\"value1\" abi:\"value1\"`")
	require.Contains(t, src, "Value2 *big.Int `json:\"value2\" abi:\"value2,optional\"`")
	require.Contains(t, src, "Value3 [20]byte `json:\"value3\" abi:\"value3,uint160_bytes\"`")
	require.Contains(t, src, "Value4 [2]tvm.Int128 `json:\"value4\" abi:\"value4,array\"`")
	require.Contains(t, src, "\"math/big\"")
	require.Contains(t, src, "\"github.com/holiman/uint256\"")
	require.Contains(t, src, "\"github.com/tos-network/tvmabi/tvm\"")
}

func TestNestedTuplesAreNumberedOuterFirst(t *testing.T) {
	ent, err := abiparser.Parse("((uint8, (bool)))[], map(address, (uint8, (bool)))")
	require.NoError(t, err)

	g := New(Config{Package: "wallet", Types: DefaultConfig().Types})
	out, err := g.GenerateParams(ent.Params)
	require.NoError(t, err)
	requireValidGo(t, out)

	src := squash(string(out))
	require.Contains(t, src, "package wallet")
	require.Equal(t, []string{"InternalStruct1", "InternalStruct2", "InternalStruct3"}, g.AuxStructs())
	require.Contains(t, src, "Value0 []InternalStruct1")
	require.Contains(t, src, "type InternalStruct1 struct { Value0 InternalStruct2 `json:\"value0\" abi:\"value0\"` }")
	require.Contains(t, src, "type InternalStruct2 struct { Value0 uint8 `json:\"value0\" abi:\"value0,uint8\"` Value1 InternalStruct3")
	require.Contains(t, src, "Value1 map[tvm.Address]InternalStruct2")
}

func TestDescriptors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Descriptors = true
	cfg.SourceHash = "0xabc"
	c := sharedTupleContract()
	out, err := New(cfg).GenerateContract(c)
	require.NoError(t, err)
	requireValidGo(t, out)

	src := squash(string(out))
	require.Contains(t, src, "// source-hash: 0xabc")
	require.Contains(t, src, "\"github.com/tos-network/tvmabi/abi/ast\"")
	require.Contains(t, src, "func SubmitFunction() *ast.Function {")
	require.Contains(t, src, "func GetEntriesFunction() *ast.Function {")
	require.Contains(t, src, "func SubmittedEvent() *ast.Event {")
	require.Contains(t, src, `{Name: "entry", Type: ast.Tuple(ast.Param{Name: "a", Type: ast.Uint(256)}, ast.Param{Name: "b", Type: ast.Bool()})}`)
	require.Contains(t, src, `{Name: "prev", Type: ast.Optional(ast.Tuple(`)

	submit := c.Function("submit")
	require.Contains(t, src, "InputID: "+hex32(submit.InputID))
	require.Contains(t, src, "OutputID: "+hex32(submit.OutputID))
}

func hex32(v uint32) string {
	const digits = "0123456789abcdef"
	b := []byte("0x00000000")
	for i := 9; i >= 2; i-- {
		b[i] = digits[v&0xf]
		v >>= 4
	}
	return string(b)
}

func TestMapKeyErrorNamesParam(t *testing.T) {
	bad := ast.ParamType{Kind: ast.KindMap, Key: &ast.ParamType{Kind: ast.KindString}, Elem: &ast.ParamType{Kind: ast.KindBool}}
	c := &ast.Contract{Functions: []*ast.Function{{Name: "f", Inputs: []ast.Param{{Name: "byName", Type: bad}}}}}
	_, err := New(DefaultConfig()).GenerateContract(c)
	require.Error(t, err)
	d, ok := diag.As(err)
	require.True(t, ok)
	require.Equal(t, diag.CodeCodegenMapKey, d.Code)
	require.Equal(t, "byName", d.Param)
}

func TestFieldNameFallbacks(t *testing.T) {
	params := []ast.Param{
		{Name: "x", Type: ast.Bool()},
	}
	c := &ast.Contract{Functions: []*ast.Function{{
		Name: "f",
		Inputs: []ast.Param{
			{Name: "_owner", Type: ast.Address()},
			{Name: "owner", Type: ast.Address()},
			{Name: "1st", Type: ast.Tuple(params...)},
		},
	}}}
	out, err := New(DefaultConfig()).GenerateContract(c)
	require.NoError(t, err)
	requireValidGo(t, out)
	src := squash(string(out))
	require.Contains(t, src, "Owner tvm.Address `json:\"_owner\" abi:\"_owner,address\"`")
	require.Contains(t, src, "Owner1 tvm.Address `json:\"owner\" abi:\"owner,address\"`")
	require.Contains(t, src, "Field2 InternalStruct1 `json:\"1st\" abi:\"1st\"`")

	bad := &ast.Contract{Functions: []*ast.Function{{Name: "f", Inputs: []ast.Param{{Name: "a\"b", Type: ast.Bool()}}}}}
	_, err = New(DefaultConfig()).GenerateContract(bad)
	require.True(t, diag.Is(err, diag.CodeCodegenInternal))
}

func TestGeneratorLogsReuse(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	cfg := DefaultConfig()
	cfg.Log = zap.New(core).Sugar()
	_, err := New(cfg).GenerateContract(sharedTupleContract())
	require.NoError(t, err)
	require.Equal(t, 1, logs.FilterMessage("generated struct").FilterField(zap.String("name", "InternalStruct1")).Len())
	require.GreaterOrEqual(t, logs.FilterMessage("reusing struct").Len(), 3)
}

func TestCollidingStructNamesFail(t *testing.T) {
	c := &ast.Contract{
		Version: ast.DefaultVersion,
		Functions: []*ast.Function{
			{Name: "get_balance", Inputs: []ast.Param{{Name: "owner", Type: ast.Address()}}, Version: ast.DefaultVersion},
			{Name: "getBalance", Inputs: []ast.Param{{Name: "owner", Type: ast.Address()}}, Version: ast.DefaultVersion},
		},
	}
	for _, fn := range c.Functions {
		sema.AssignFunctionIDs(fn, nil)
	}
	out, err := New(DefaultConfig()).GenerateContract(c)
	require.Nil(t, out)
	require.True(t, diag.Is(err, diag.CodeCodegenInternal), "unexpected error: %v", err)
	require.Contains(t, err.Error(), "get_balance")
	require.Contains(t, err.Error(), "getBalance")
	require.Contains(t, err.Error(), "GetBalanceFunctionInput")
}
