package lang_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tetra/internal/lang"
)

func TestOpcodeCategories(t *testing.T) {
	tests := []struct {
		op         lang.Opcode
		numeric    bool
		logical    bool
		equality   bool
		ordering   bool
		str        string
	}{
		{lang.Add, true, false, false, false, "+"},
		{lang.Sub, true, false, false, false, "-"},
		{lang.Mul, true, false, false, false, "*"},
		{lang.Div, true, false, false, false, "/"},
		{lang.And, false, true, false, false, "&&"},
		{lang.Or, false, true, false, false, "||"},
		{lang.Eq, false, false, true, false, "=="},
		{lang.Neq, false, false, true, false, "!="},
		{lang.Gt, false, false, false, true, ">"},
		{lang.Lt, false, false, false, true, "<"},
		{lang.Leq, false, false, false, true, "<="},
		{lang.Geq, false, false, false, true, ">="},
		{lang.Neg, false, false, false, false, "-"},
	}
	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			assert.Equal(t, tt.numeric, tt.op.IsNumeric())
			assert.Equal(t, tt.logical, tt.op.IsLogical())
			assert.Equal(t, tt.equality, tt.op.IsEquality())
			assert.Equal(t, tt.ordering, tt.op.IsOrdering())
			assert.Equal(t, tt.str, tt.op.String())
		})
	}
}

func TestLiteralTypeString(t *testing.T) {
	assert.Equal(t, "i32", lang.I32.String())
	assert.Equal(t, "bool", lang.Bool.String())
	assert.Equal(t, "string", lang.String.String())
	assert.Equal(t, "void", lang.Void.String())
	assert.Equal(t, "<unknown>", lang.Unknown.String())
}

func TestAppendNextChainsStatements(t *testing.T) {
	a := &lang.LetNode{Binding: &lang.VarBindingNode{Var: &lang.VarNode{Name: "a"}, Type: lang.I32}}
	b := &lang.ReturnNode{}

	lang.AppendNext(a, b)

	assert.Same(t, lang.Node(b), a.Next())
}

func TestAppendNextPanicsOnNonStmtTarget(t *testing.T) {
	leaf := &lang.NumberNode{Value: 1}
	assert.Panics(t, func() {
		lang.AppendNext(leaf, &lang.ReturnNode{})
	})
}

func TestValueTypeAndString(t *testing.T) {
	tests := []struct {
		name  string
		value lang.Value
		typ   lang.LiteralType
		str   string
	}{
		{"none", lang.None, lang.Void, "()"},
		{"number", lang.NumberValue(42), lang.I32, "42"},
		{"negative number", lang.NumberValue(-7), lang.I32, "-7"},
		{"bool true", lang.BoolValue(true), lang.Bool, "true"},
		{"bool false", lang.BoolValue(false), lang.Bool, "false"},
		{"string", lang.StringValue("hi"), lang.String, "hi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.typ, tt.value.Type())
			assert.Equal(t, tt.str, tt.value.String())
		})
	}
}

func TestVariableMutabilityAndUpdate(t *testing.T) {
	v := lang.NewVariable(lang.NumberValue(1), true, lang.I32)
	assert.True(t, v.Mutable())
	assert.Equal(t, lang.I32, v.Type())
	assert.Equal(t, int32(1), v.Value().Num)

	v.Update(lang.NumberValue(2))
	assert.Equal(t, int32(2), v.Value().Num)

	immut := lang.NewVariable(lang.BoolValue(true), false, lang.Bool)
	assert.False(t, immut.Mutable())
}

func TestScopeInsertAndGet(t *testing.T) {
	s := lang.NewScope()
	_, ok := s.Get("a")
	assert.False(t, ok)

	s.Insert("a", false, lang.I32, lang.NumberValue(10))
	v, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, int32(10), v.Value().Num)

	// Re-inserting the same name overwrites, it does not shadow within
	// the same scope.
	s.Insert("a", true, lang.I32, lang.NumberValue(20))
	v, ok = s.Get("a")
	require.True(t, ok)
	assert.True(t, v.Mutable())
	assert.Equal(t, int32(20), v.Value().Num)
}

func TestContextShadowingAndPopRestoresOuterBinding(t *testing.T) {
	ctx := lang.NewContext()
	ctx.Push(lang.NewScope())
	ctx.InsertVar("a", false, lang.I32, lang.NumberValue(1))

	ctx.Push(lang.NewScope())
	ctx.InsertVar("a", false, lang.I32, lang.NumberValue(2))

	v, ok := ctx.GetVar("a")
	require.True(t, ok)
	assert.Equal(t, int32(2), v.Value().Num, "inner scope shadows outer")

	ctx.Pop()

	v, ok = ctx.GetVar("a")
	require.True(t, ok)
	assert.Equal(t, int32(1), v.Value().Num, "popping the inner scope restores the outer binding unchanged")
}

func TestContextGetVarNotFound(t *testing.T) {
	ctx := lang.NewContext()
	ctx.Push(lang.NewScope())
	_, ok := ctx.GetVar("nope")
	assert.False(t, ok)
}

func TestContextPopOnEmptyPanics(t *testing.T) {
	ctx := lang.NewContext()
	assert.Panics(t, func() { ctx.Pop() })
}

func TestContextUpdateVar(t *testing.T) {
	ctx := lang.NewContext()
	ctx.Push(lang.NewScope())
	ctx.InsertVar("mut_a", true, lang.I32, lang.NumberValue(1))
	ctx.InsertVar("imm_a", false, lang.I32, lang.NumberValue(1))

	assert.Equal(t, lang.UpdateOK, ctx.UpdateVar("mut_a", lang.NumberValue(2)))
	v, _ := ctx.GetVar("mut_a")
	assert.Equal(t, int32(2), v.Value().Num)

	assert.Equal(t, lang.UpdateImmutable, ctx.UpdateVar("imm_a", lang.NumberValue(2)))
	assert.Equal(t, lang.UpdateNotFound, ctx.UpdateVar("ghost", lang.NumberValue(2)))
}

func TestFuncDeclCallBindsParamsAndPopsScope(t *testing.T) {
	decl := &lang.FuncDecl{
		Name: "add",
		Params: []*lang.FuncParamNode{
			{Var: &lang.VarNode{Name: "a"}, Type: lang.I32},
			{Var: &lang.VarNode{Name: "b"}, Type: lang.I32},
		},
		ReturnType: lang.I32,
		HasReturn:  true,
		Body:       &lang.ReturnNode{},
	}

	ctx := lang.NewContext()
	ctx.Push(lang.NewScope())

	var sawA, sawB lang.Value
	visit := func(n lang.Node, c *lang.Context, funcs lang.Funcs) lang.Value {
		a, _ := c.GetVar("a")
		b, _ := c.GetVar("b")
		sawA, sawB = a.Value(), b.Value()
		return lang.NumberValue(sawA.Num + sawB.Num)
	}

	result := decl.Call([]lang.Value{lang.NumberValue(3), lang.NumberValue(4)}, ctx, lang.Funcs{"add": decl}, visit)

	assert.Equal(t, int32(3), sawA.Num)
	assert.Equal(t, int32(4), sawB.Num)
	assert.Equal(t, int32(7), result.Num)

	// The call's own scope must have been popped: "a"/"b" are no
	// longer visible in the caller's context.
	_, ok := ctx.GetVar("a")
	assert.False(t, ok)
}

func TestFuncDeclCallArityMismatchPanics(t *testing.T) {
	decl := &lang.FuncDecl{Name: "one", Params: []*lang.FuncParamNode{{Var: &lang.VarNode{Name: "a"}, Type: lang.I32}}}
	ctx := lang.NewContext()
	ctx.Push(lang.NewScope())

	assert.Panics(t, func() {
		decl.Call(nil, ctx, lang.Funcs{}, func(lang.Node, *lang.Context, lang.Funcs) lang.Value { return lang.None })
	})
}

func TestFuncDeclCallWithNilBodyReturnsNone(t *testing.T) {
	decl := &lang.FuncDecl{Name: "empty"}
	ctx := lang.NewContext()
	ctx.Push(lang.NewScope())

	called := false
	result := decl.Call(nil, ctx, lang.Funcs{}, func(lang.Node, *lang.Context, lang.Funcs) lang.Value {
		called = true
		return lang.None
	})

	assert.False(t, called, "visit must not be invoked for a nil body")
	assert.Equal(t, lang.KindNone, result.Kind)
}
