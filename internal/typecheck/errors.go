// Package typecheck implements the two-pass static type checker: a
// declaration pass that registers every function and verifies that its
// body's statement chain ends in a Return when a return type is
// declared, and a
// body-checking pass that walks each function's statement chain
// accumulating every type error it finds rather than stopping at the
// first one.
package typecheck

import (
	"fmt"
	"strings"

	"tetra/internal/lang"
)

// ErrorKind tags the twelve static error shapes a program can produce.
// This is the complete taxonomy — nothing outside this list is ever
// raised by Check.
type ErrorKind int

const (
	OpWrongType ErrorKind = iota
	UnaryOpWrongType
	MismatchedTypesVar
	MismatchedTypesOp
	VarNotInScope
	VarImmut
	FnNotInScope
	FnNumParamMismatch
	FnParamTypeMismatch
	FnReturnMismatch
	FnMissingReturn
	Cond
)

// CheckError is a single accumulated diagnostic. Only the fields
// relevant to Kind are populated. Check never sets Line/Col, since the
// AST carries no source positions, so they are always zero for errors
// it produces.
type CheckError struct {
	Kind ErrorKind

	Op   lang.Opcode
	Typ  lang.LiteralType
	Var  string
	Expected lang.LiteralType
	Found    lang.LiteralType

	FuncName string
	Param    string
	Takes    int
	Supplied int

	Line, Col int
}

func (e *CheckError) Error() string {
	switch e.Kind {
	case OpWrongType:
		return fmt.Sprintf("binary operation '%s' cannot be applied to type '%s'", e.Op, e.Typ)
	case UnaryOpWrongType:
		return fmt.Sprintf("unary operation cannot be applied to type '%s'", e.Typ)
	case MismatchedTypesVar:
		return fmt.Sprintf("mismatched types for variable '%s': expected '%s', found '%s'", e.Var, e.Expected, e.Found)
	case MismatchedTypesOp:
		return fmt.Sprintf("mismatched types for operator '%s': expected '%s', found '%s'", e.Op, e.Expected, e.Found)
	case VarNotInScope:
		return fmt.Sprintf("cannot find variable '%s' in this scope", e.Var)
	case VarImmut:
		return fmt.Sprintf("cannot assign twice to immutable variable '%s'", e.Var)
	case FnNotInScope:
		return fmt.Sprintf("cannot find function '%s' in this scope", e.FuncName)
	case FnNumParamMismatch:
		return fmt.Sprintf("function '%s' takes %d argument(s) but %d were supplied", e.FuncName, e.Takes, e.Supplied)
	case FnParamTypeMismatch:
		return fmt.Sprintf("function '%s' expected parameter '%s' of type '%s' but found '%s'", e.FuncName, e.Param, e.Expected, e.Found)
	case FnReturnMismatch:
		return fmt.Sprintf("function '%s' expected return type '%s' but found '%s'", e.FuncName, e.Expected, e.Found)
	case FnMissingReturn:
		return fmt.Sprintf("function '%s' implicitly returns '()' as its body has no tail or 'return' expression\n note: expected type '%s' but found '()'", e.FuncName, e.ReturnTypeOrVoid())
	case Cond:
		return fmt.Sprintf("expected a condition of type 'bool', found '%s'", e.Found)
	default:
		return "unknown type error"
	}
}

// ReturnTypeOrVoid is read by FnMissingReturn's message; Expected
// holds the function's declared return type in that case.
func (e *CheckError) ReturnTypeOrVoid() lang.LiteralType {
	return e.Expected
}

// Errors accumulates every CheckError found while checking a program,
// in the order they were discovered. It implements error so the
// driver can treat "no errors" and "some errors" uniformly.
type Errors struct {
	list []*CheckError
}

func (e *Errors) Add(err *CheckError) {
	e.list = append(e.list, err)
}

func (e *Errors) Len() int { return len(e.list) }

func (e *Errors) List() []*CheckError { return e.list }

func (e *Errors) Error() string {
	msgs := make([]string, len(e.list))
	for i, err := range e.list {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n")
}
