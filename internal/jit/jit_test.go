package jit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tetra/internal/jit"
	"tetra/internal/lang"
	"tetra/internal/parse"
	"tetra/internal/typecheck"
)

// compileAndRun parses, type-checks, and JIT-compiles+runs source,
// mirroring internal/interp's test helper so the two backends can be
// exercised against identical seed programs (back-end equivalence,
// the third universal property).
func compileAndRun(t *testing.T, source string) lang.Value {
	t.Helper()
	program, err := parse.Parse(source)
	require.NoError(t, err)

	funcs, errs, err := typecheck.Check(program)
	require.NoError(t, err)
	require.Equal(t, 0, errs.Len(), "unexpected type errors: %v", errs)

	result, err := jit.Run(funcs)
	require.NoError(t, err)
	return result
}

func TestSeedScenariosViaJIT(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   int32
	}{
		{
			name:   "E1 precedence",
			source: `fn main() -> i32 { return 2 * 10 - 3 + 2 * 5; }`,
			want:   27,
		},
		{
			name:   "E2 shadowing",
			source: `fn main() -> i32 { let a: i32 = 20; if (a == 20) { let a: i32 = 1000; } return a; }`,
			want:   20,
		},
		{
			name:   "E3 while loop",
			source: `fn main() -> i32 { let mut n: i32 = 0; while (n < 10) { n = n + 1; } return n; }`,
			want:   10,
		},
		{
			name: "E4 recursion fibonacci",
			source: `
				fn fib(n: i32) -> i32 {
					if (n < 2) {
						return n;
					}
					return fib(n - 1) + fib(n - 2);
				}
				fn main() -> i32 { return fib(20); }
			`,
			want: 6765,
		},
		{
			name: "E7 else-if chain",
			source: `
				fn main() -> i32 {
					let a: bool = false;
					if (a && true) {
						return 1;
					} else if (a == true) {
						return 2;
					} else {
						return 3;
					}
					return 4;
				}
			`,
			want: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := compileAndRun(t, tt.source)
			require.Equal(t, lang.KindNumber, result.Kind)
			assert.Equal(t, tt.want, result.Num)
		})
	}
}

func TestBothBranchesReturnErasesDeadMergeBlock(t *testing.T) {
	// Both arms of the if/else terminate via return, so the compiler's
	// merge basic block is unreachable and must be erased rather than
	// left as dead, predecessor-less IR.
	source := `
		fn main() -> i32 {
			if (true) {
				return 1;
			} else {
				return 2;
			}
		}
	`
	result := compileAndRun(t, source)
	assert.Equal(t, int32(1), result.Num)
}

func TestBoolResultViaJIT(t *testing.T) {
	result := compileAndRun(t, `fn main() -> bool { return 3 < 4; }`)
	require.Equal(t, lang.KindBool, result.Kind)
	assert.True(t, result.B)
}
