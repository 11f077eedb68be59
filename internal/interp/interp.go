// Package interp is the tree-walking evaluator: the AST's Node.Next
// links form a statement chain, and a Return causes its value to
// bubble straight up through the rest of the chain and any enclosing
// if/while without visiting further siblings. Whether a Return was hit
// is tracked by an explicit flag, not by the value being non-None, so
// the value of a function call used as a statement is discarded.
package interp

import (
	"fmt"

	"tetra/internal/lang"
)

// Interp runs a whole program: the function registry plus the context
// stack live for the duration of one "run" call.
type Interp struct {
	Funcs lang.Funcs
}

func New(funcs lang.Funcs) *Interp {
	return &Interp{Funcs: funcs}
}

// PrintFunc receives each value produced by a print statement. main
// wires this to fmt.Println; tests can substitute a buffer.
type PrintFunc func(string)

// Run looks up "main" and calls it with no arguments in a fresh
// top-level scope.
func (ip *Interp) Run(out PrintFunc) (lang.Value, error) {
	main, ok := ip.Funcs["main"]
	if !ok {
		return lang.None, fmt.Errorf("interp: no main function declared")
	}
	ctx := lang.NewContext()
	ctx.Push(lang.NewScope())
	defer ctx.Pop()
	return ip.evalCall(main, nil, ctx, out), nil
}

// visit walks a statement chain and returns the value produced by the
// first Return it hits — directly, or bubbled up through an enclosing
// If/IfElse/While — together with whether a Return was hit at all. A
// chain that runs off the end without one reports returned=false, and
// the caller (a function call, ultimately) treats that as the
// implicit '()' result.
func (ip *Interp) visit(n lang.Node, ctx *lang.Context, out PrintFunc) (lang.Value, bool) {
	for n != nil {
		v, returned, next := ip.step(n, ctx, out)
		if returned {
			return v, true
		}
		n = next
	}
	return lang.None, false
}

// step evaluates exactly one statement, reporting whether it (or a
// nested construct within it) hit a Return, the value in that case,
// and otherwise the next node to visit in the chain.
func (ip *Interp) step(n lang.Node, ctx *lang.Context, out PrintFunc) (lang.Value, bool, lang.Node) {
	switch s := n.(type) {
	case *lang.LetNode:
		v := ip.eval(s.Expr, ctx, out)
		ctx.InsertVar(s.Binding.Var.Name, s.Binding.Mutable, s.Binding.Type, v)
		return lang.None, false, s.Next()

	case *lang.VarValueNode:
		v := ip.eval(s.Expr, ctx, out)
		switch ctx.UpdateVar(s.Var.Name, v) {
		case lang.UpdateNotFound:
			panic(fmt.Sprintf("interp: variable %q not in scope; try: let %s: <type> = <expr>;", s.Var.Name, s.Var.Name))
		case lang.UpdateImmutable:
			panic(fmt.Sprintf("interp: cannot assign twice to immutable variable %q", s.Var.Name))
		}
		return lang.None, false, s.Next()

	case *lang.IfNode:
		cond := ip.eval(s.Cond, ctx, out)
		if cond.Kind != lang.KindBool {
			panic("interp: if condition did not evaluate to bool")
		}
		if cond.B {
			ctx.Push(lang.NewScope())
			v, returned := ip.visit(s.Body, ctx, out)
			ctx.Pop()
			if returned {
				return v, true, nil
			}
		}
		return lang.None, false, s.Next()

	case *lang.IfElseNode:
		cond := ip.eval(s.Cond, ctx, out)
		if cond.Kind != lang.KindBool {
			panic("interp: if condition did not evaluate to bool")
		}
		branch := s.Else
		if cond.B {
			branch = s.Then
		}
		ctx.Push(lang.NewScope())
		v, returned := ip.visit(branch, ctx, out)
		ctx.Pop()
		if returned {
			return v, true, nil
		}
		return lang.None, false, s.Next()

	case *lang.WhileNode:
		for {
			cond := ip.eval(s.Cond, ctx, out)
			if cond.Kind != lang.KindBool {
				panic("interp: while condition did not evaluate to bool")
			}
			if !cond.B {
				break
			}
			ctx.Push(lang.NewScope())
			v, returned := ip.visit(s.Body, ctx, out)
			ctx.Pop()
			if returned {
				return v, true, nil
			}
		}
		return lang.None, false, s.Next()

	case *lang.ReturnNode:
		if s.Expr == nil {
			return lang.None, true, nil
		}
		return ip.eval(s.Expr, ctx, out), true, nil

	case *lang.PrintNode:
		v := ip.eval(s.Expr, ctx, out)
		out(v.String())
		return lang.None, false, s.Next()

	case *lang.FuncCallNode:
		ip.evalFuncCall(s, ctx, out)
		return lang.None, false, s.Next()

	case *lang.BreakNode, *lang.ContinueNode:
		panic("interp: break/continue are reserved and not implemented")

	default:
		panic(fmt.Sprintf("interp: unsupported statement node %T", n))
	}
}

// eval evaluates an expression node to a value. Unlike step, eval
// never produces "no value": every expression node yields something.
func (ip *Interp) eval(n lang.Node, ctx *lang.Context, out PrintFunc) lang.Value {
	switch e := n.(type) {
	case *lang.NumberNode:
		return lang.NumberValue(e.Value)
	case *lang.BoolNode:
		return lang.BoolValue(e.Value)
	case *lang.StringNode:
		return lang.StringValue(e.Value)

	case *lang.VarNode:
		v, ok := ctx.GetVar(e.Name)
		if !ok {
			panic(fmt.Sprintf("interp: variable %q not in scope", e.Name))
		}
		return v.Value()

	case *lang.UnaryOpNode:
		v := ip.eval(e.Expr, ctx, out)
		if v.Kind != lang.KindNumber {
			panic("interp: unary '-' applied to non-numeric value")
		}
		return lang.NumberValue(-v.Num)

	case *lang.ExprNode:
		return ip.evalBinary(e, ctx, out)

	case *lang.FuncCallNode:
		return ip.evalFuncCall(e, ctx, out)

	default:
		panic(fmt.Sprintf("interp: unsupported expression node %T", n))
	}
}

func (ip *Interp) evalBinary(e *lang.ExprNode, ctx *lang.Context, out PrintFunc) lang.Value {
	l := ip.eval(e.Left, ctx, out)
	r := ip.eval(e.Right, ctx, out)

	switch {
	case e.Op.IsNumeric():
		if l.Kind != lang.KindNumber || r.Kind != lang.KindNumber {
			panic(fmt.Sprintf("interp: operator %q requires numeric operands", e.Op))
		}
		switch e.Op {
		case lang.Add:
			return lang.NumberValue(l.Num + r.Num)
		case lang.Sub:
			return lang.NumberValue(l.Num - r.Num)
		case lang.Mul:
			return lang.NumberValue(l.Num * r.Num)
		case lang.Div:
			if r.Num == 0 {
				panic("interp: division by zero")
			}
			return lang.NumberValue(l.Num / r.Num)
		}

	case e.Op.IsLogical():
		if l.Kind != lang.KindBool || r.Kind != lang.KindBool {
			panic(fmt.Sprintf("interp: operator %q requires boolean operands", e.Op))
		}
		if e.Op == lang.And {
			return lang.BoolValue(l.B && r.B)
		}
		return lang.BoolValue(l.B || r.B)

	case e.Op.IsOrdering():
		if l.Kind != lang.KindNumber || r.Kind != lang.KindNumber {
			panic(fmt.Sprintf("interp: operator %q requires numeric operands", e.Op))
		}
		switch e.Op {
		case lang.Gt:
			return lang.BoolValue(l.Num > r.Num)
		case lang.Lt:
			return lang.BoolValue(l.Num < r.Num)
		case lang.Leq:
			return lang.BoolValue(l.Num <= r.Num)
		case lang.Geq:
			return lang.BoolValue(l.Num >= r.Num)
		}

	case e.Op.IsEquality():
		eq := valuesEqual(l, r)
		if e.Op == lang.Eq {
			return lang.BoolValue(eq)
		}
		return lang.BoolValue(!eq)
	}
	panic(fmt.Sprintf("interp: unsupported operator %v", e.Op))
}

func valuesEqual(l, r lang.Value) bool {
	if l.Kind != r.Kind {
		panic("interp: comparing values of different dynamic kinds")
	}
	switch l.Kind {
	case lang.KindNumber:
		return l.Num == r.Num
	case lang.KindBool:
		return l.B == r.B
	case lang.KindString:
		return l.Str == r.Str
	default:
		return true
	}
}

func (ip *Interp) evalFuncCall(call *lang.FuncCallNode, ctx *lang.Context, out PrintFunc) lang.Value {
	decl, ok := ip.Funcs[call.Name]
	if !ok {
		panic(fmt.Sprintf("interp: function %q not in scope", call.Name))
	}
	args := make([]lang.Value, len(call.Args))
	for i, a := range call.Args {
		args[i] = ip.eval(a, ctx, out)
	}
	visit := func(n lang.Node, c *lang.Context, funcs lang.Funcs) lang.Value {
		v, _ := ip.visit(n, c, out)
		return v
	}
	return decl.Call(args, ctx, ip.Funcs, visit)
}

func (ip *Interp) evalCall(decl *lang.FuncDecl, args []lang.Value, ctx *lang.Context, out PrintFunc) lang.Value {
	visit := func(n lang.Node, c *lang.Context, funcs lang.Funcs) lang.Value {
		v, _ := ip.visit(n, c, out)
		return v
	}
	return decl.Call(args, ctx, ip.Funcs, visit)
}
