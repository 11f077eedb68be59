package typecheck

import (
	"fmt"

	"tetra/internal/lang"
)

// Checker runs the two-pass algorithm over a whole program (a set of
// top-level function declarations). It does not require a function
// named "main"; a missing main is reported by the backends at run time.
type Checker struct {
	funcs lang.Funcs
	errs  *Errors
}

// Check registers every function (pass 1) and then type-checks every
// body against the registry (pass 2), returning the resolved registry
// together with every accumulated error. A duplicate function name is
// not accumulated as a CheckError — the taxonomy has no slot for it —
// it aborts checking immediately, matching the hard-panic behavior of
// duplicate registration in the original interpreter (see DESIGN.md).
func Check(program []*lang.FuncNode) (lang.Funcs, *Errors, error) {
	c := &Checker{funcs: make(lang.Funcs), errs: &Errors{}}

	for _, fn := range program {
		if _, dup := c.funcs[fn.Name]; dup {
			return nil, nil, fmt.Errorf("typecheck: function %q declared more than once", fn.Name)
		}
		c.funcs[fn.Name] = &lang.FuncDecl{
			Name:       fn.Name,
			Params:     fn.Params,
			ReturnType: fn.ReturnType,
			HasReturn:  fn.HasReturn,
			Body:       fn.Body,
		}
	}

	for _, fn := range program {
		if fn.HasReturn && !tailReturns(fn.Body) {
			c.errs.Add(&CheckError{Kind: FnMissingReturn, FuncName: fn.Name, Expected: fn.ReturnType})
		}
	}

	for _, fn := range program {
		c.checkFunc(fn)
	}

	return c.funcs, c.errs, nil
}

// tailReturns reports whether the last statement in n's next-chain is
// a Return — the only recognized way a function body satisfies a
// declared return type. If/IfElse/While bodies are not inspected: only
// the chain's own tail matters, matching the original's purely
// syntactic check.
func tailReturns(n lang.Node) bool {
	if n == nil {
		return false
	}
	s, ok := n.(lang.Stmt)
	if !ok {
		return false
	}
	if next := s.Next(); next != nil {
		return tailReturns(next)
	}
	_, isReturn := n.(*lang.ReturnNode)
	return isReturn
}

func (c *Checker) checkFunc(fn *lang.FuncNode) {
	ctx := lang.NewContext()
	scope := lang.NewScope()
	for _, p := range fn.Params {
		scope.Insert(p.Var.Name, p.Mutable, p.Type, lang.None)
	}
	ctx.Push(scope)
	defer ctx.Pop()

	decl := c.funcs[fn.Name]
	c.checkChain(fn.Body, ctx, decl)
}

// checkChain walks a statement chain, checking each node and
// recursing into its Next link. Returns nothing: Return-type
// compatibility is checked node-locally against curFunc, not bubbled.
func (c *Checker) checkChain(n lang.Node, ctx *lang.Context, curFunc *lang.FuncDecl) {
	for n != nil {
		next := c.checkStmt(n, ctx, curFunc)
		n = next
	}
}

// checkStmt type-checks a single statement and returns its Next link
// so checkChain can continue the walk.
func (c *Checker) checkStmt(n lang.Node, ctx *lang.Context, curFunc *lang.FuncDecl) lang.Node {
	switch s := n.(type) {
	case *lang.LetNode:
		initType, _ := c.checkExpr(s.Expr, ctx)
		declared := s.Binding.Type
		if initType != declared {
			c.errs.Add(&CheckError{Kind: MismatchedTypesVar, Var: s.Binding.Var.Name, Expected: declared, Found: initType})
		}
		ctx.InsertVar(s.Binding.Var.Name, s.Binding.Mutable, declared, lang.None)
		return s.Next()

	case *lang.VarValueNode:
		exprType, _ := c.checkExpr(s.Expr, ctx)
		variable, ok := ctx.GetVar(s.Var.Name)
		if !ok {
			c.errs.Add(&CheckError{Kind: VarNotInScope, Var: s.Var.Name})
			return s.Next()
		}
		if !variable.Mutable() {
			c.errs.Add(&CheckError{Kind: VarImmut, Var: s.Var.Name})
			return s.Next()
		}
		if variable.Type() != exprType {
			c.errs.Add(&CheckError{Kind: MismatchedTypesVar, Var: s.Var.Name, Expected: variable.Type(), Found: exprType})
		}
		return s.Next()

	case *lang.IfNode:
		condType, _ := c.checkExpr(s.Cond, ctx)
		if condType != lang.Bool {
			c.errs.Add(&CheckError{Kind: Cond, Found: condType})
		}
		ctx.Push(lang.NewScope())
		c.checkChain(s.Body, ctx, curFunc)
		ctx.Pop()
		return s.Next()

	case *lang.IfElseNode:
		condType, _ := c.checkExpr(s.Cond, ctx)
		if condType != lang.Bool {
			c.errs.Add(&CheckError{Kind: Cond, Found: condType})
		}
		ctx.Push(lang.NewScope())
		c.checkChain(s.Then, ctx, curFunc)
		ctx.Pop()
		ctx.Push(lang.NewScope())
		c.checkChain(s.Else, ctx, curFunc)
		ctx.Pop()
		return s.Next()

	case *lang.WhileNode:
		condType, _ := c.checkExpr(s.Cond, ctx)
		if condType != lang.Bool {
			c.errs.Add(&CheckError{Kind: Cond, Found: condType})
		}
		ctx.Push(lang.NewScope())
		c.checkChain(s.Body, ctx, curFunc)
		ctx.Pop()
		return s.Next()

	case *lang.ReturnNode:
		var retType lang.LiteralType = lang.Void
		if s.Expr != nil {
			retType, _ = c.checkExpr(s.Expr, ctx)
		}
		want := lang.Void
		if curFunc.HasReturn {
			want = curFunc.ReturnType
		}
		if retType != want {
			c.errs.Add(&CheckError{Kind: FnReturnMismatch, FuncName: curFunc.Name, Expected: want, Found: retType})
		}
		return s.Next()

	case *lang.PrintNode:
		c.checkExpr(s.Expr, ctx)
		return s.Next()

	case *lang.FuncCallNode:
		c.checkCall(s, ctx)
		return s.Next()

	case *lang.BreakNode, *lang.ContinueNode:
		// Reserved node kinds: internal/parse never constructs them, so
		// reaching one here means a caller built an AST by hand. Neither
		// backend implements loop control, so this is a hard error
		// rather than a silently-accepted no-op.
		panic("typecheck: break/continue are reserved and not implemented")

	default:
		panic(fmt.Sprintf("typecheck: unsupported statement node %T", n))
	}
}

// checkCall checks argument arity and types against the registry,
// returning the function's declared return type (or Unknown if the
// function itself could not be found).
func (c *Checker) checkCall(call *lang.FuncCallNode, ctx *lang.Context) lang.LiteralType {
	decl, ok := c.funcs[call.Name]
	if !ok {
		c.errs.Add(&CheckError{Kind: FnNotInScope, FuncName: call.Name})
		for _, a := range call.Args {
			c.checkExpr(a, ctx)
		}
		return lang.Unknown
	}
	if len(call.Args) != len(decl.Params) {
		c.errs.Add(&CheckError{Kind: FnNumParamMismatch, FuncName: call.Name, Takes: len(decl.Params), Supplied: len(call.Args)})
	}
	n := len(call.Args)
	if len(decl.Params) < n {
		n = len(decl.Params)
	}
	for i := 0; i < n; i++ {
		argType, _ := c.checkExpr(call.Args[i], ctx)
		paramType := decl.Params[i].Type
		if argType != paramType {
			c.errs.Add(&CheckError{
				Kind: FnParamTypeMismatch, FuncName: call.Name, Param: decl.Params[i].Var.Name,
				Expected: paramType, Found: argType,
			})
		}
	}
	for i := n; i < len(call.Args); i++ {
		c.checkExpr(call.Args[i], ctx)
	}
	if decl.HasReturn {
		return decl.ReturnType
	}
	return lang.Void
}

// checkExpr type-checks an expression, returning its resolved type and
// whether that type is a firm assumption (true) or stands in for "no
// recoverable type" (false) — the Go rendering of Option<LiteralType>.
// Every error case still returns a best-effort type so that outer
// expressions can keep being checked rather than aborting; only an
// undeclared variable reference has no assumption at all, and that
// lack of an assumption is allowed to cascade into additional errors
// at each enclosing operator, matching the original checker exactly.
func (c *Checker) checkExpr(n lang.Node, ctx *lang.Context) (lang.LiteralType, bool) {
	switch e := n.(type) {
	case *lang.NumberNode:
		return lang.I32, true
	case *lang.BoolNode:
		return lang.Bool, true
	case *lang.StringNode:
		return lang.String, true

	case *lang.VarNode:
		variable, ok := ctx.GetVar(e.Name)
		if !ok {
			c.errs.Add(&CheckError{Kind: VarNotInScope, Var: e.Name})
			return lang.Unknown, false
		}
		return variable.Type(), true

	case *lang.UnaryOpNode:
		t, ok := c.checkExpr(e.Expr, ctx)
		if !ok || t != lang.I32 {
			c.errs.Add(&CheckError{Kind: UnaryOpWrongType, Typ: t})
			return lang.I32, true
		}
		return lang.I32, true

	case *lang.ExprNode:
		lt, lok := c.checkExpr(e.Left, ctx)
		rt, rok := c.checkExpr(e.Right, ctx)
		switch {
		case e.Op.IsNumeric():
			if lok && rok && lt == lang.I32 && rt == lang.I32 {
				return lang.I32, true
			}
			c.errs.Add(&CheckError{Kind: OpWrongType, Op: e.Op, Typ: lang.Bool})
			return lang.I32, true

		case e.Op.IsLogical():
			if lok && rok && lt == lang.Bool && rt == lang.Bool {
				return lang.Bool, true
			}
			c.errs.Add(&CheckError{Kind: OpWrongType, Op: e.Op, Typ: lang.I32})
			return lang.Bool, true

		case e.Op.IsOrdering():
			if lok && rok && lt == lang.I32 && rt == lang.I32 {
				return lang.Bool, true
			}
			c.errs.Add(&CheckError{Kind: OpWrongType, Op: e.Op, Typ: lang.Bool})
			return lang.Bool, true

		case e.Op.IsEquality():
			if lok && rok && lt == rt {
				return lang.Bool, true
			}
			c.errs.Add(&CheckError{Kind: MismatchedTypesOp, Op: e.Op, Expected: lt, Found: rt})
			return lang.Bool, true

		default:
			panic(fmt.Sprintf("typecheck: unsupported operator %v", e.Op))
		}

	case *lang.FuncCallNode:
		return c.checkCall(e, ctx), true

	default:
		panic(fmt.Sprintf("typecheck: unsupported expression node %T", n))
	}
}
