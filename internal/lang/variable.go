package lang

// Variable is a named binding inside a Scope: its declared type, its
// mutability, and its current value.
type Variable struct {
	value    Value
	mutable  bool
	declType LiteralType
}

func NewVariable(v Value, mutable bool, t LiteralType) *Variable {
	return &Variable{value: v, mutable: mutable, declType: t}
}

func (v *Variable) Value() Value { return v.value }

func (v *Variable) Type() LiteralType { return v.declType }

func (v *Variable) Mutable() bool { return v.mutable }

// Update overwrites the stored value. Callers are responsible for
// checking Mutable() first — Update itself does not enforce it.
// Context.UpdateVar does that check and reports UpdateImmutable; the
// type checker turns that into a VarImmut error and the interpreter
// panics on it.
func (v *Variable) Update(nv Value) {
	v.value = nv
}
