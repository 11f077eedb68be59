// Package jit lowers a type-checked program straight to LLVM IR and
// executes it through MCJIT, grounded on the same tinygo.org/x/go-llvm
// API the pack's go-vslc compiler uses for its own basic-block/branch
// codegen, and on original_source/src/llvm.rs's inkwell-based
// Compiler for the overall shape (alloca-per-variable, scope stack of
// symbol tables, parameter slots allocated in the entry block).
package jit

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"tetra/internal/lang"
)

// symTab is one lexical scope's variable-name -> stack-slot table,
// mirroring go-vslc's scope-stack symTab but without its mutex: a JIT
// compilation runs on a single goroutine, one module at a time.
type symTab map[string]llvm.Value

// Compiler lowers a single program (one lang.Funcs registry) into one
// LLVM module. Functions are declared in a first pass so mutually
// recursive calls resolve regardless of declaration order, then
// defined in a second pass — the same two-pass shape genFuncHeader/
// genFuncBody split into in go-vslc.
type Compiler struct {
	ctx     llvm.Context
	mod     llvm.Module
	builder llvm.Builder

	funcs   lang.Funcs
	llvmFns map[string]llvm.Value

	i32  llvm.Type
	i1   llvm.Type
	void llvm.Type

	scopes []symTab
	curFn  llvm.Value
	curRetType lang.LiteralType
}

// NewCompiler allocates a fresh LLVM context and module named
// "tetra_module".
func NewCompiler(funcs lang.Funcs) *Compiler {
	ctx := llvm.NewContext()
	return &Compiler{
		ctx:     ctx,
		mod:     ctx.NewModule("tetra_module"),
		builder: ctx.NewBuilder(),
		funcs:   funcs,
		llvmFns: make(map[string]llvm.Value),
		i32:     ctx.Int32Type(),
		i1:      ctx.Int1Type(),
		void:    ctx.VoidType(),
	}
}

// Dispose releases the LLVM module, builder, and context. Callers
// must call it once they're done with the Compiler (and with any
// ExecutionEngine built over its module, which takes ownership of the
// module on creation).
func (c *Compiler) Dispose() {
	c.builder.Dispose()
	c.mod.Dispose()
	c.ctx.Dispose()
}

func (c *Compiler) llvmType(t lang.LiteralType) llvm.Type {
	switch t {
	case lang.I32:
		return c.i32
	case lang.Bool:
		return c.i1
	case lang.Void:
		return c.void
	default:
		panic(fmt.Sprintf("jit: type %s has no JIT representation", t))
	}
}

// declarePrintf declares the external C printf(i8*, ...) -> i32 used
// to lower the print statement, the same external-function-declaration
// pattern go-vslc uses for its own printf/atoi/atof imports.
func (c *Compiler) declarePrintf() llvm.Value {
	if fn := c.mod.NamedFunction("printf"); !fn.IsNil() {
		return fn
	}
	i8ptr := llvm.PointerType(c.ctx.Int8Type(), 0)
	ftyp := llvm.FunctionType(c.i32, []llvm.Type{i8ptr}, true)
	return llvm.AddFunction(c.mod, "printf", ftyp)
}

// Compile lowers every declared function into the module, declaring
// all signatures up front (pass 1) before emitting any bodies (pass 2).
func (c *Compiler) Compile() (llvm.Module, error) {
	c.declarePrintf()

	for name, fn := range c.funcs {
		retType := c.void
		if fn.HasReturn {
			retType = c.llvmType(fn.ReturnType)
		}
		params := make([]llvm.Type, len(fn.Params))
		for i, p := range fn.Params {
			params[i] = c.llvmType(p.Type)
		}
		ftyp := llvm.FunctionType(retType, params, false)
		llvmFn := llvm.AddFunction(c.mod, name, ftyp)
		for i, p := range fn.Params {
			llvmFn.Param(i).SetName(p.Var.Name)
		}
		c.llvmFns[name] = llvmFn
	}

	for name, fn := range c.funcs {
		if err := c.genFuncBody(name, fn); err != nil {
			return llvm.Module{}, err
		}
	}
	return c.mod, nil
}

func (c *Compiler) genFuncBody(name string, fn *lang.FuncDecl) error {
	llvmFn := c.llvmFns[name]
	c.curFn = llvmFn
	c.curRetType = lang.Void
	if fn.HasReturn {
		c.curRetType = fn.ReturnType
	}

	entry := c.ctx.AddBasicBlock(llvmFn, "entry")
	c.builder.SetInsertPointAtEnd(entry)

	scope := symTab{}
	for i, p := range fn.Params {
		slot := c.builder.CreateAlloca(c.llvmType(p.Type), p.Var.Name)
		c.builder.CreateStore(llvmFn.Param(i), slot)
		scope[p.Var.Name] = slot
	}
	c.scopes = append(c.scopes, scope)
	defer c.popScope()

	if err := c.genChain(fn.Body); err != nil {
		return err
	}

	// A body whose last emitted block has no terminator fell off the
	// end without a Return — only possible for a Void function, since
	// the type checker rejects a missing Return for any other type.
	if !blockTerminated(c.builder.GetInsertBlock()) {
		if fn.HasReturn {
			return fmt.Errorf("jit: function %q fell through without returning", name)
		}
		c.builder.CreateRetVoid()
	}
	return nil
}

func blockTerminated(bb llvm.BasicBlock) bool {
	last := bb.LastInstruction()
	return !last.IsNil() && !last.IsATerminatorInst().IsNil()
}

func (c *Compiler) pushScope() { c.scopes = append(c.scopes, symTab{}) }
func (c *Compiler) popScope()  { c.scopes = c.scopes[:len(c.scopes)-1] }

func (c *Compiler) lookup(name string) (llvm.Value, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if v, ok := c.scopes[i][name]; ok {
			return v, true
		}
	}
	return llvm.Value{}, false
}

func (c *Compiler) declare(name string, slot llvm.Value) {
	c.scopes[len(c.scopes)-1][name] = slot
}

// genChain lowers a statement chain in the current basic block,
// following Next() links exactly like the tree-walking interpreter's
// visit/step pair, except control here is basic blocks rather than
// bubbled-up values.
func (c *Compiler) genChain(n lang.Node) error {
	for n != nil {
		next, err := c.genStmt(n)
		if err != nil {
			return err
		}
		if blockTerminated(c.builder.GetInsertBlock()) {
			return nil
		}
		n = next
	}
	return nil
}

func (c *Compiler) genStmt(n lang.Node) (lang.Node, error) {
	switch s := n.(type) {
	case *lang.LetNode:
		v, err := c.genExpr(s.Expr)
		if err != nil {
			return nil, err
		}
		slot := c.builder.CreateAlloca(c.llvmType(s.Binding.Type), s.Binding.Var.Name)
		c.builder.CreateStore(v, slot)
		c.declare(s.Binding.Var.Name, slot)
		return s.Next(), nil

	case *lang.VarValueNode:
		v, err := c.genExpr(s.Expr)
		if err != nil {
			return nil, err
		}
		slot, ok := c.lookup(s.Var.Name)
		if !ok {
			return nil, fmt.Errorf("jit: variable %q not in scope", s.Var.Name)
		}
		c.builder.CreateStore(v, slot)
		return s.Next(), nil

	case *lang.IfNode:
		cond, err := c.genExpr(s.Cond)
		if err != nil {
			return nil, err
		}
		thenBB := c.ctx.AddBasicBlock(c.curFn, "if.then")
		mergeBB := c.ctx.AddBasicBlock(c.curFn, "if.merge")
		c.builder.CreateCondBr(cond, thenBB, mergeBB)

		c.builder.SetInsertPointAtEnd(thenBB)
		c.pushScope()
		if err := c.genChain(s.Body); err != nil {
			return nil, err
		}
		c.popScope()
		if !blockTerminated(c.builder.GetInsertBlock()) {
			c.builder.CreateBr(mergeBB)
		}

		c.builder.SetInsertPointAtEnd(mergeBB)
		return s.Next(), nil

	case *lang.IfElseNode:
		cond, err := c.genExpr(s.Cond)
		if err != nil {
			return nil, err
		}
		thenBB := c.ctx.AddBasicBlock(c.curFn, "if.then")
		elseBB := c.ctx.AddBasicBlock(c.curFn, "if.else")
		mergeBB := c.ctx.AddBasicBlock(c.curFn, "if.merge")
		c.builder.CreateCondBr(cond, thenBB, elseBB)

		c.builder.SetInsertPointAtEnd(thenBB)
		c.pushScope()
		if err := c.genChain(s.Then); err != nil {
			return nil, err
		}
		c.popScope()
		thenTerminated := blockTerminated(c.builder.GetInsertBlock())
		if !thenTerminated {
			c.builder.CreateBr(mergeBB)
		}

		c.builder.SetInsertPointAtEnd(elseBB)
		c.pushScope()
		if err := c.genChain(s.Else); err != nil {
			return nil, err
		}
		c.popScope()
		elseTerminated := blockTerminated(c.builder.GetInsertBlock())
		if !elseTerminated {
			c.builder.CreateBr(mergeBB)
		}

		// Every predecessor that didn't already terminate (via Return)
		// must reach the merge block with an explicit unconditional
		// branch before the insertion point moves there, so the merge
		// block's eventual phi — if one is ever read — sees one
		// incoming edge per live predecessor.
		if thenTerminated && elseTerminated {
			mergeBB.EraseFromParent()
			return nil, nil
		}
		c.builder.SetInsertPointAtEnd(mergeBB)
		return s.Next(), nil

	case *lang.WhileNode:
		headBB := c.ctx.AddBasicBlock(c.curFn, "while.head")
		bodyBB := c.ctx.AddBasicBlock(c.curFn, "while.body")
		exitBB := c.ctx.AddBasicBlock(c.curFn, "while.exit")

		c.builder.CreateBr(headBB)
		c.builder.SetInsertPointAtEnd(headBB)
		cond, err := c.genExpr(s.Cond)
		if err != nil {
			return nil, err
		}
		c.builder.CreateCondBr(cond, bodyBB, exitBB)

		c.builder.SetInsertPointAtEnd(bodyBB)
		c.pushScope()
		if err := c.genChain(s.Body); err != nil {
			return nil, err
		}
		c.popScope()
		if !blockTerminated(c.builder.GetInsertBlock()) {
			c.builder.CreateBr(headBB)
		}

		c.builder.SetInsertPointAtEnd(exitBB)
		return s.Next(), nil

	case *lang.ReturnNode:
		if s.Expr == nil {
			c.builder.CreateRetVoid()
			return nil, nil
		}
		v, err := c.genExpr(s.Expr)
		if err != nil {
			return nil, err
		}
		c.builder.CreateRet(v)
		return nil, nil

	case *lang.PrintNode:
		v, err := c.genExpr(s.Expr)
		if err != nil {
			return nil, err
		}
		return s.Next(), c.genPrint(v, c.exprLiteralType(s.Expr))

	case *lang.FuncCallNode:
		if _, err := c.genCall(s); err != nil {
			return nil, err
		}
		return s.Next(), nil

	case *lang.BreakNode, *lang.ContinueNode:
		return nil, fmt.Errorf("jit: break/continue are reserved and not implemented")

	default:
		return nil, fmt.Errorf("jit: unsupported statement node %T", n)
	}
}

// genPrint lowers a print statement to a printf call with the format
// string matching the value's static type; strings print with %s, i32
// with %d, and bool as "true"/"false" literals selected at compile
// time isn't possible for a dynamic condition, so bools print via %d
// with the boolean coerced to 0/1 — acceptable since print exists only
// as a debug aid (see DESIGN.md).
func (c *Compiler) genPrint(v llvm.Value, t lang.LiteralType) error {
	printf := c.declarePrintf()
	var format string
	switch t {
	case lang.I32:
		format = "%d\n"
	case lang.Bool:
		format = "%d\n"
		v = c.builder.CreateZExt(v, c.i32, "")
	case lang.String:
		format = "%s\n"
	default:
		return fmt.Errorf("jit: cannot print value of type %s", t)
	}
	fstr := c.builder.CreateGlobalStringPtr(format, "")
	c.builder.CreateCall(printf.GlobalValueType(), printf, []llvm.Value{fstr, v}, "")
	return nil
}

func (c *Compiler) genExpr(n lang.Node) (llvm.Value, error) {
	switch e := n.(type) {
	case *lang.NumberNode:
		return llvm.ConstInt(c.i32, uint64(e.Value), true), nil
	case *lang.BoolNode:
		val := uint64(0)
		if e.Value {
			val = 1
		}
		return llvm.ConstInt(c.i1, val, false), nil
	case *lang.StringNode:
		return c.builder.CreateGlobalStringPtr(e.Value, ""), nil

	case *lang.VarNode:
		slot, ok := c.lookup(e.Name)
		if !ok {
			return llvm.Value{}, fmt.Errorf("jit: variable %q not in scope", e.Name)
		}
		return c.builder.CreateLoad(slot.AllocatedType(), slot, e.Name), nil

	case *lang.UnaryOpNode:
		v, err := c.genExpr(e.Expr)
		if err != nil {
			return llvm.Value{}, err
		}
		return c.builder.CreateNeg(v, ""), nil

	case *lang.ExprNode:
		return c.genBinary(e)

	case *lang.FuncCallNode:
		return c.genCall(e)

	default:
		return llvm.Value{}, fmt.Errorf("jit: unsupported expression node %T", n)
	}
}

func (c *Compiler) genBinary(e *lang.ExprNode) (llvm.Value, error) {
	l, err := c.genExpr(e.Left)
	if err != nil {
		return llvm.Value{}, err
	}
	r, err := c.genExpr(e.Right)
	if err != nil {
		return llvm.Value{}, err
	}

	switch e.Op {
	case lang.Add:
		return c.builder.CreateAdd(l, r, ""), nil
	case lang.Sub:
		return c.builder.CreateSub(l, r, ""), nil
	case lang.Mul:
		return c.builder.CreateMul(l, r, ""), nil
	case lang.Div:
		return c.builder.CreateSDiv(l, r, ""), nil
	case lang.And:
		return c.builder.CreateAnd(l, r, ""), nil
	case lang.Or:
		return c.builder.CreateOr(l, r, ""), nil
	case lang.Eq:
		return c.builder.CreateICmp(llvm.IntEQ, l, r, ""), nil
	case lang.Neq:
		return c.builder.CreateICmp(llvm.IntNE, l, r, ""), nil
	case lang.Gt:
		return c.builder.CreateICmp(llvm.IntSGT, l, r, ""), nil
	case lang.Lt:
		return c.builder.CreateICmp(llvm.IntSLT, l, r, ""), nil
	case lang.Leq:
		return c.builder.CreateICmp(llvm.IntSLE, l, r, ""), nil
	case lang.Geq:
		return c.builder.CreateICmp(llvm.IntSGE, l, r, ""), nil
	default:
		return llvm.Value{}, fmt.Errorf("jit: unsupported operator %v", e.Op)
	}
}

func (c *Compiler) genCall(call *lang.FuncCallNode) (llvm.Value, error) {
	fn, ok := c.llvmFns[call.Name]
	if !ok {
		return llvm.Value{}, fmt.Errorf("jit: function %q not in scope", call.Name)
	}
	args := make([]llvm.Value, len(call.Args))
	for i, a := range call.Args {
		v, err := c.genExpr(a)
		if err != nil {
			return llvm.Value{}, err
		}
		args[i] = v
	}
	return c.builder.CreateCall(fn.GlobalValueType(), fn, args, ""), nil
}

// exprLiteralType recovers an expression's static type for print
// lowering; it re-derives the same judgment internal/typecheck already
// made rather than threading type annotations through the AST.
func (c *Compiler) exprLiteralType(n lang.Node) lang.LiteralType {
	switch e := n.(type) {
	case *lang.NumberNode:
		return lang.I32
	case *lang.BoolNode:
		return lang.Bool
	case *lang.StringNode:
		return lang.String
	case *lang.VarNode:
		if slot, ok := c.lookup(e.Name); ok && slot.AllocatedType() == c.i1 {
			return lang.Bool
		}
		return lang.I32
	case *lang.UnaryOpNode:
		return lang.I32
	case *lang.ExprNode:
		if e.Op.IsNumeric() {
			return lang.I32
		}
		return lang.Bool
	case *lang.FuncCallNode:
		if fn, ok := c.funcs[e.Name]; ok && fn.HasReturn {
			return fn.ReturnType
		}
		return lang.Void
	default:
		return lang.Void
	}
}

// Run compiles the program and executes "main" through an MCJIT
// execution engine, the Go equivalent of original_source/src/llvm.rs's
// execution_engine.get_function("main") / JitFunction::call().
func Run(funcs lang.Funcs) (lang.Value, error) {
	c := NewCompiler(funcs)
	mod, err := c.Compile()
	if err != nil {
		c.Dispose()
		return lang.None, err
	}

	if err := llvm.InitializeNativeTarget(); err != nil {
		c.Dispose()
		return lang.None, err
	}
	if err := llvm.InitializeNativeAsmPrinter(); err != nil {
		c.Dispose()
		return lang.None, err
	}

	engine, err := llvm.NewMCJITCompiler(mod, llvm.NewMCJITCompilerOptions())
	if err != nil {
		c.Dispose()
		return lang.None, fmt.Errorf("jit: failed to create execution engine: %w", err)
	}
	defer engine.Dispose()

	mainFn, ok := funcs["main"]
	if !ok {
		return lang.None, fmt.Errorf("jit: no main function declared")
	}

	result := engine.RunFunction(c.llvmFns["main"], nil)
	if !mainFn.HasReturn {
		return lang.None, nil
	}
	switch mainFn.ReturnType {
	case lang.I32:
		return lang.NumberValue(int32(result.Int(true))), nil
	case lang.Bool:
		return lang.BoolValue(result.Int(false) != 0), nil
	default:
		return lang.None, fmt.Errorf("jit: main cannot return type %s", mainFn.ReturnType)
	}
}
