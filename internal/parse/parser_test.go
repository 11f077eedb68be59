package parse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tetra/internal/lang"
	"tetra/internal/parse"
)

func TestParseSeedScenarios(t *testing.T) {
	sources := []string{
		`fn main() -> i32 { return 2 * 10 - 3 + 2 * 5; }`,
		`fn main() -> i32 { let a: i32 = 20; if (a == 20) { let a: i32 = 1000; } return a; }`,
		`fn main() -> i32 { let mut n: i32 = 0; while (n < 10) { n = n + 1; } return n; }`,
		`
			fn fib(n: i32) -> i32 {
				if (n < 2) { return n; }
				return fib(n - 1) + fib(n - 2);
			}
			fn main() -> i32 { return fib(20); }
		`,
		`
			fn main() -> i32 {
				let a: bool = false;
				if (a && true) { return 1; } else if (a == true) { return 2; } else { return 3; }
				return 4;
			}
		`,
	}
	for _, src := range sources {
		funcs, err := parse.Parse(src)
		require.NoError(t, err)
		assert.NotEmpty(t, funcs)
	}
}

func TestParseFunctionSignature(t *testing.T) {
	funcs, err := parse.Parse(`fn add(a: i32, mut b: i32) -> i32 { return a + b; }`)
	require.NoError(t, err)
	require.Len(t, funcs, 1)

	fn := funcs[0]
	assert.Equal(t, "add", fn.Name)
	assert.True(t, fn.HasReturn)
	assert.Equal(t, lang.I32, fn.ReturnType)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "a", fn.Params[0].Var.Name)
	assert.False(t, fn.Params[0].Mutable)
	assert.Equal(t, "b", fn.Params[1].Var.Name)
	assert.True(t, fn.Params[1].Mutable)
}

func TestParseVoidFunctionHasNoReturnType(t *testing.T) {
	funcs, err := parse.Parse(`fn noop() { print 1; }`)
	require.NoError(t, err)
	require.Len(t, funcs, 1)
	assert.False(t, funcs[0].HasReturn)
	assert.Equal(t, lang.Void, funcs[0].ReturnType)
}

func TestParseOperatorPrecedence(t *testing.T) {
	// 2 * 10 - 3 + 2 * 5 must parse as ((2*10) - 3) + (2*5), i.e. the
	// top-level node is the rightmost "+".
	funcs, err := parse.Parse(`fn main() -> i32 { return 2 * 10 - 3 + 2 * 5; }`)
	require.NoError(t, err)

	ret, ok := funcs[0].Body.(*lang.ReturnNode)
	require.True(t, ok)
	top, ok := ret.Expr.(*lang.ExprNode)
	require.True(t, ok)
	assert.Equal(t, lang.Add, top.Op)

	left, ok := top.Left.(*lang.ExprNode)
	require.True(t, ok)
	assert.Equal(t, lang.Sub, left.Op)
}

func TestParseElseIfChainDesugarsToNestedIfElse(t *testing.T) {
	funcs, err := parse.Parse(`
		fn main() -> i32 {
			let a: bool = false;
			if (a && true) { return 1; } else if (a == true) { return 2; } else { return 3; }
			return 4;
		}
	`)
	require.NoError(t, err)

	let, ok := funcs[0].Body.(*lang.LetNode)
	require.True(t, ok)
	outer, ok := let.Next().(*lang.IfElseNode)
	require.True(t, ok)
	inner, ok := outer.Else.(*lang.IfElseNode)
	require.True(t, ok, "an else-if must desugar to a nested IfElseNode in the Else branch")
	_ = inner
}

func TestParseRejectsMalformedSource(t *testing.T) {
	_, err := parse.Parse(`fn main() -> i32 { return }`)
	assert.Error(t, err)
}

func TestParseUnaryMinus(t *testing.T) {
	funcs, err := parse.Parse(`fn main() -> i32 { return -5; }`)
	require.NoError(t, err)
	ret := funcs[0].Body.(*lang.ReturnNode)
	un, ok := ret.Expr.(*lang.UnaryOpNode)
	require.True(t, ok)
	assert.Equal(t, lang.Neg, un.Op)
	num, ok := un.Expr.(*lang.NumberNode)
	require.True(t, ok)
	assert.Equal(t, int32(5), num.Value)
}
