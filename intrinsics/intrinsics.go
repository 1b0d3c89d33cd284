// Package intrinsics holds the fixed table of built-in stack operators:
// their lexeme, their generic-aware arg/ret signature, and the
// symbolic-execution rule (validateStack from spec §4.3) that both the
// parser and its tests drive.
package intrinsics

import (
	"fmt"

	"github.com/tack-lang/tack/types"
)

// Kind identifies a built-in operator by its source lexeme.
type Kind string

const (
	Add Kind = "+"
	Sub Kind = "-"
	Mul Kind = "*"
	Div Kind = "/"

	Lt  Kind = "<"
	Gt  Kind = ">"
	Lte Kind = "<="
	Gte Kind = ">="

	Eq  Kind = "="
	Neq Kind = "!="

	BwAnd Kind = "&"
	BwOr  Kind = "|"
	Lsh   Kind = "<<"
	Rsh   Kind = ">>"

	Not  Kind = "not"
	Neg  Kind = "neg"
	Dup  Kind = "dup"
	Drop Kind = "drop"
	Swap Kind = "swap"
	Rot  Kind = "rot"
	Over Kind = "over"

	CastInt  Kind = "int"
	CastBool Kind = "bool"
	CastPtr  Kind = "ptr"
	CastLong Kind = "long"
	CastStr  Kind = "str"
)

// placeholder generic type variables, as they appear in the signature
// table. These are never real types.Type values on an actual stack -
// IsPlaceholder distinguishes them from the four primitives.
const (
	phA types.Type = "a"
	phB types.Type = "b"
	phC types.Type = "c"
)

// IsPlaceholder reports whether t is a generic type variable rather than
// a concrete primitive type.
func IsPlaceholder(t types.Type) bool {
	switch t {
	case phA, phB, phC:
		return true
	default:
		return false
	}
}

// Signature is an intrinsic's arg/ret shape. Args and Rets are listed in
// the table's declared order (top of stack = last element), exactly
// like types.Stack.
type Signature struct {
	Args types.Stack
	Rets types.Stack
}

// Table is the fixed, authoritative intrinsic table from spec §3.
var Table = map[Kind]Signature{
	Add: {Args: types.Stack{types.Int, types.Int}, Rets: types.Stack{types.Int}},
	Sub: {Args: types.Stack{types.Int, types.Int}, Rets: types.Stack{types.Int}},
	Mul: {Args: types.Stack{types.Int, types.Int}, Rets: types.Stack{types.Int}},
	Div: {Args: types.Stack{types.Int, types.Int}, Rets: types.Stack{types.Int}},

	Lt:  {Args: types.Stack{types.Int, types.Int}, Rets: types.Stack{types.Bool}},
	Gt:  {Args: types.Stack{types.Int, types.Int}, Rets: types.Stack{types.Bool}},
	Lte: {Args: types.Stack{types.Int, types.Int}, Rets: types.Stack{types.Bool}},
	Gte: {Args: types.Stack{types.Int, types.Int}, Rets: types.Stack{types.Bool}},

	Eq:  {Args: types.Stack{types.Int, types.Int}, Rets: types.Stack{types.Bool}},
	Neq: {Args: types.Stack{types.Int, types.Int}, Rets: types.Stack{types.Bool}},

	BwAnd: {Args: types.Stack{types.Int, types.Int}, Rets: types.Stack{types.Int}},
	BwOr:  {Args: types.Stack{types.Int, types.Int}, Rets: types.Stack{types.Int}},
	Lsh:   {Args: types.Stack{types.Int, types.Int}, Rets: types.Stack{types.Int}},
	Rsh:   {Args: types.Stack{types.Int, types.Int}, Rets: types.Stack{types.Int}},

	Not: {Args: types.Stack{phA}, Rets: types.Stack{phA}},
	Neg: {Args: types.Stack{types.Int}, Rets: types.Stack{types.Int}},

	Dup:  {Args: types.Stack{phA}, Rets: types.Stack{phA, phA}},
	Drop: {Args: types.Stack{phA}, Rets: types.Stack{}},
	Swap: {Args: types.Stack{phA, phB}, Rets: types.Stack{phB, phA}},
	Rot:  {Args: types.Stack{phA, phB, phC}, Rets: types.Stack{phB, phC, phA}},
	Over: {Args: types.Stack{phA, phB}, Rets: types.Stack{phA, phB, phA}},

	CastInt:  {Args: types.Stack{phA}, Rets: types.Stack{types.Int}},
	CastBool: {Args: types.Stack{phA}, Rets: types.Stack{types.Bool}},
	CastPtr:  {Args: types.Stack{phA}, Rets: types.Stack{types.Ptr}},
	CastLong: {Args: types.Stack{phA}, Rets: types.Stack{types.Long}},
	CastStr:  {Args: types.Stack{phA}, Rets: types.Stack{types.Ptr}},
}

// Lookup reports whether lexeme names a known intrinsic, and its kind.
func Lookup(lexeme string) (Kind, bool) {
	k := Kind(lexeme)
	_, ok := Table[k]
	return k, ok
}

// IsCast reports whether k is one of the five type-conversion intrinsics,
// which the backend lowers to a free retype rather than an instruction.
func IsCast(k Kind) bool {
	switch k {
	case CastInt, CastBool, CastPtr, CastLong, CastStr:
		return true
	default:
		return false
	}
}

// Validate implements spec §4.3's validate_stack: it pops len(Args)
// values off stack (top first), binding each generic placeholder to the
// first type it is matched against and requiring every subsequent match
// of that placeholder to agree, then pushes Rets (substituting bound
// placeholders) and returns the resulting stack.
//
// Per the args table listing the declared argument order with the top
// of the stack last, popping proceeds in *reverse* table order: the
// stack top is popped first and bound against the *last*-listed arg.
// This is the one convention under which Swap's signature actually
// swaps (see SPEC_FULL.md §4.3); Rot and Over were checked against it
// too and match conventional Forth semantics.
func Validate(stack types.Stack, sig Signature) (types.Stack, error) {
	if len(stack) < len(sig.Args) {
		return stack, fmt.Errorf(
			"not enough values on the stack: expected %d, got %d", len(sig.Args), len(stack))
	}

	bound := map[types.Type]types.Type{}
	s := stack

	for i := len(sig.Args) - 1; i >= 0; i-- {
		argSpec := sig.Args[i]

		var actual types.Type
		var ok bool
		s, actual, ok = s.Pop()
		if !ok {
			// unreachable given the length check above
			return stack, fmt.Errorf("not enough values on the stack")
		}

		if IsPlaceholder(argSpec) {
			if prior, seen := bound[argSpec]; seen {
				if prior != actual {
					return stack, fmt.Errorf(
						"generic placeholder %q already bound to %s, but got %s", argSpec, prior, actual)
				}
			} else {
				bound[argSpec] = actual
			}
			continue
		}

		if argSpec != actual {
			return stack, fmt.Errorf("expected %s, got %s", argSpec, actual)
		}
	}

	for _, retSpec := range sig.Rets {
		push := retSpec
		if IsPlaceholder(retSpec) {
			bound, ok := bound[retSpec]
			if !ok {
				// unreachable: every ret placeholder also appears in args
				// for every entry in Table.
				return stack, fmt.Errorf("unbound generic placeholder %q in return position", retSpec)
			}
			push = bound
		}
		s = s.Push(push)
	}

	return s, nil
}
