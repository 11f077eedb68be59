package lang

import "fmt"

// FuncDecl is a registered function: its signature plus the head of
// its body's statement chain.
type FuncDecl struct {
	Name       string
	Params     []*FuncParamNode
	ReturnType LiteralType
	HasReturn  bool
	Body       Node
}

// ParamTypes returns the declared type of each parameter in order.
func (f *FuncDecl) ParamTypes() []LiteralType {
	ts := make([]LiteralType, len(f.Params))
	for i, p := range f.Params {
		ts[i] = p.Type
	}
	return ts
}

// Funcs is the whole-program function registry, keyed by name.
type Funcs map[string]*FuncDecl

// Visit evaluates a single node within ctx against the full function
// registry, returning the value it produces (None for statements that
// don't themselves produce one). internal/interp supplies the concrete
// implementation; internal/lang only needs the shape of it to
// implement the call protocol below without importing internal/interp
// (which itself needs Funcs and Context) — the same dependency
// inversion the teacher avoids by co-locating evaluator and registry,
// spelled out explicitly here as a function type instead.
type Visit func(n Node, ctx *Context, funcs Funcs) Value

// Call implements the function-call protocol (§4.4): check arity,
// bind each argument (evaluated by the caller beforehand, in the
// caller's scope) to its parameter in a fresh innermost scope, run the
// body, and pop that scope before returning — every Push here is
// matched by a Pop before Call returns, regardless of how the body
// exits.
func (f *FuncDecl) Call(args []Value, ctx *Context, funcs Funcs, visit Visit) Value {
	if len(args) != len(f.Params) {
		panic(fmt.Sprintf("lang: %s takes %d argument(s), got %d", f.Name, len(f.Params), len(args)))
	}
	scope := NewScope()
	for i, p := range f.Params {
		scope.Insert(p.Var.Name, p.Mutable, p.Type, args[i])
	}
	ctx.Push(scope)
	defer ctx.Pop()
	if f.Body == nil {
		return None
	}
	return visit(f.Body, ctx, funcs)
}
