package lang

// Context is the LIFO stack of Scopes active at a given point in
// execution (or type checking). Lookups walk from the innermost scope
// outward, so an inner Let shadows an outer one of the same name.
type Context struct {
	scopes []*Scope
}

func NewContext() *Context {
	return &Context{}
}

// Push introduces a new innermost scope. Every Push must be matched by
// a Pop before control returns to the caller that pushed it — the
// function-call protocol and every branch/loop construct in
// internal/interp and internal/typecheck rely on this discipline.
func (c *Context) Push(s *Scope) {
	c.scopes = append(c.scopes, s)
}

// Pop discards the innermost scope. Popping an empty context is a
// programming error and panics.
func (c *Context) Pop() *Scope {
	n := len(c.scopes)
	if n == 0 {
		panic("lang: pop on empty context")
	}
	s := c.scopes[n-1]
	c.scopes = c.scopes[:n-1]
	return s
}

// InsertVar binds name in the innermost scope.
func (c *Context) InsertVar(name string, mutable bool, t LiteralType, v Value) {
	n := len(c.scopes)
	if n == 0 {
		panic("lang: insert_var on empty context")
	}
	c.scopes[n-1].Insert(name, mutable, t, v)
}

// GetVar searches from the innermost scope outward.
func (c *Context) GetVar(name string) (*Variable, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if v, ok := c.scopes[i].Get(name); ok {
			return v, true
		}
	}
	return nil, false
}

// VarUpdateResult distinguishes the three outcomes of UpdateVar: the
// standard library has no three-state result type that reads cleanly
// here, so the result is spelled out rather than overloading an error.
type VarUpdateResult int

const (
	UpdateOK VarUpdateResult = iota
	UpdateNotFound
	UpdateImmutable
)

// UpdateVar walks the scope stack looking for name, updating its value
// in place if it is mutable. It does not insert a new binding: an
// update targets an existing variable declared (possibly in an outer
// scope) via Let.
func (c *Context) UpdateVar(name string, v Value) VarUpdateResult {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if variable, ok := c.scopes[i].Get(name); ok {
			if !variable.Mutable() {
				return UpdateImmutable
			}
			variable.Update(v)
			return UpdateOK
		}
	}
	return UpdateNotFound
}
