package lower

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tos-network/tvmabi/abi/ast"
	"github.com/tos-network/tvmabi/abi/diag"
)

func TestFromParamsBuildsCommonStruct(t *testing.T) {
	params := []ast.Param{
		{Name: "ignored", Type: ast.Uint(256)},
		{Name: "ignored", Type: ast.Array(ast.Address())},
		{Name: "ignored", Type: ast.Ref(ast.Uint(160))},
	}
	prog, err := FromParams(params, DefaultTypeTable())
	require.NoError(t, err)
	require.Len(t, prog.Structs, 1)

	st := prog.Structs[0]
	require.Equal(t, "CommonStruct", st.Name)
	require.Len(t, st.Properties, 3)
	require.Equal(t, "value0", st.Properties[0].ABIName)
	require.Equal(t, "uint256.Int", st.Properties[0].GoType.Expr)
	require.Equal(t, "uint256", st.Properties[0].TagHint())

	arr := st.Properties[1]
	require.Equal(t, PropArray, arr.Kind)
	require.Equal(t, "array", arr.TagHint())
	require.Equal(t, "tvm.Address", arr.Elem.GoType.Expr)
	require.Equal(t, "address[]", arr.TypeStr())

	ref := st.Properties[2]
	require.Equal(t, PropSimple, ref.Kind)
	require.Equal(t, "[20]byte", ref.GoType.Expr)
	require.Equal(t, "uint160_bytes", ref.TagHint())
	require.Equal(t, "uint160", ref.TypeStr())
}

func TestTypeMapping(t *testing.T) {
	tt := DefaultTypeTable()
	cases := []struct {
		typ  ast.ParamType
		want string
	}{
		{ast.Uint(8), "uint8"},
		{ast.Uint(64), "uint64"},
		{ast.Int(32), "int32"},
		{ast.Uint(128), "tvm.Uint128"},
		{ast.Int(128), "tvm.Int128"},
		{ast.Uint(256), "uint256.Int"},
		{ast.Int(256), "*big.Int"},
		{ast.Uint(24), "*big.Int"},
		{ast.VarUint(16), "*big.Int"},
		{ast.VarInt(32), "*big.Int"},
		{ast.Uint(160), "[20]byte"},
		{ast.Bool(), "bool"},
		{ast.Bytes(), "[]byte"},
		{ast.FixedBytes(32), "[]byte"},
		{ast.String(), "string"},
		{ast.Address(), "tvm.Address"},
		{ast.Cell(), "tvm.Cell"},
		{ast.Token(), "tvm.Tokens"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, tt.GoTypeOf(tc.typ).Expr, tc.typ.Signature())
	}

	custom := tt.With(map[string]Override{"uint160": {GoType: GoType{Expr: "*big.Int", Import: ImportBig}}})
	require.Equal(t, "*big.Int", custom.GoTypeOf(ast.Uint(160)).Expr)
	require.Equal(t, "[20]byte", tt.GoTypeOf(ast.Uint(160)).Expr, "With must not mutate the receiver")
	require.Equal(t, []string{"uint160"}, custom.Keys())
}

func TestUint160ArrayHint(t *testing.T) {
	params := []ast.Param{
		{Type: ast.Array(ast.Uint(160))},
		{Type: ast.FixedArray(ast.Uint(160), 2)},
		{Type: ast.Array(ast.Uint(64))},
	}
	prog, err := FromParams(params, DefaultTypeTable())
	require.NoError(t, err)
	props := prog.Structs[0].Properties
	require.Equal(t, "array_uint160_bytes", props[0].TagHint())
	require.Equal(t, "[20]byte", props[0].Elem.GoType.Expr)
	require.Equal(t, "uint160_bytes", props[0].Elem.TagHint())
	require.Equal(t, "array", props[1].TagHint())
	require.Equal(t, "array", props[2].TagHint())

	custom := DefaultTypeTable().With(map[string]Override{"uint160": {GoType: GoType{Expr: "*big.Int", Import: ImportBig}}})
	prog, err = FromParams(params[:1], custom)
	require.NoError(t, err)
	require.Equal(t, "array", prog.Structs[0].Properties[0].TagHint())
}

func TestFromContractOrderAndRoles(t *testing.T) {
	c := &ast.Contract{
		Functions: []*ast.Function{
			{Name: "transfer", Inputs: []ast.Param{{Name: "to", Type: ast.Address()}}},
			{Name: "get_balance", Outputs: []ast.Param{{Name: "value", Type: ast.Token()}}},
			{Name: "noop"},
		},
		Events: []*ast.Event{{Name: "Pinged"}},
	}
	prog, err := FromContract(c, DefaultTypeTable())
	require.NoError(t, err)

	var names []string
	for _, st := range prog.Structs {
		names = append(names, st.Name)
	}
	require.Equal(t, []string{"TransferFunctionInput", "GetBalanceFunctionOutput", "PingedEventOutput"}, names)
	require.Equal(t, RoleEventOutput, prog.Structs[2].Role)
	require.Equal(t, "get_balance", prog.Functions[0].Name)
	require.Equal(t, "transfer", c.Functions[0].Name, "input contract must not be reordered")
}

func TestMapKeyMustBeScalar(t *testing.T) {
	bad := ast.ParamType{Kind: ast.KindMap, Key: &ast.ParamType{Kind: ast.KindBool}, Elem: &ast.ParamType{Kind: ast.KindCell}}
	_, err := FromParams([]ast.Param{{Type: ast.Array(bad)}}, DefaultTypeTable())
	require.Error(t, err)
	d, ok := diag.As(err)
	require.True(t, ok)
	require.Equal(t, diag.CodeCodegenMapKey, d.Code)
	require.Equal(t, "value0", d.Param)

	c := &ast.Contract{Functions: []*ast.Function{{Name: "f", Inputs: []ast.Param{{Name: "owners", Type: bad}}}}}
	_, err = FromContract(c, DefaultTypeTable())
	require.True(t, diag.Is(err, diag.CodeCodegenMapKey))
	d, _ = diag.As(err)
	require.Equal(t, "owners", d.Param)
}

func TestStructKey(t *testing.T) {
	tuple := ast.Tuple(ast.Param{Name: "a", Type: ast.Uint(256)}, ast.Param{Name: "b", Type: ast.Bool()})
	prop, err := lowerParam("x", tuple, DefaultTypeTable())
	require.NoError(t, err)
	require.Equal(t, "auint256bbool", StructKey(prop.Fields))
}

func TestGoName(t *testing.T) {
	cases := map[string]string{
		"get_balance":           "GetBalance",
		"getBalance":            "GetBalance",
		"_pubkey":               "Pubkey",
		"value0":                "Value0",
		"transferFunctionInput": "TransferFunctionInput",
		"on-bounce":             "OnBounce",
		"0abc":                  "",
		"__":                    "",
	}
	for in, want := range cases {
		require.Equal(t, want, GoName(in), in)
	}
}
