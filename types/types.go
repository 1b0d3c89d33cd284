// Package types holds tack's closed set of primitive value types and the
// compile-time type stack that the parser symbolically executes.
package types

// Type is one of the four primitive value types tack's type-checker
// reasons about. "str" is a syntactic alias for Ptr at conversion time
// and is never itself a Type value on the stack.
type Type string

const (
	Int  Type = "int"
	Bool Type = "bool"
	Long Type = "long"
	Ptr  Type = "ptr"
)

// Width is the QBE base type a primitive lowers to: "w" (word, 32-bit)
// or "l" (long, 64-bit).
type Width string

const (
	Word Width = "w"
	Long64 Width = "l"
)

// WidthOf returns the fixed IR width mapping for a primitive type.
func WidthOf(t Type) Width {
	switch t {
	case Int, Bool:
		return Word
	case Long, Ptr:
		return Long64
	default:
		return Word
	}
}

// Stack is an ordered sequence of primitive types; the last element is
// the top of the stack, mirroring the runtime value stack it models.
type Stack []Type

// Push returns a new stack with t pushed on top. Stack is treated as an
// immutable value by callers that need to snapshot it (branch checking),
// so Push/Pop return new slices rather than mutating in place.
func (s Stack) Push(t Type) Stack {
	return append(append(Stack{}, s...), t)
}

// Pop returns the stack with its top element removed, the popped type,
// and whether the stack was non-empty.
func (s Stack) Pop() (Stack, Type, bool) {
	if len(s) == 0 {
		return s, "", false
	}
	top := s[len(s)-1]
	return s[:len(s)-1], top, true
}

// Clone makes an independent copy, so that mutating the copy (e.g. while
// symbolically executing one branch of an `if`) never touches the
// original snapshot the other branch is compared against.
func (s Stack) Clone() Stack {
	c := make(Stack, len(s))
	copy(c, s)
	return c
}

// Equal reports whether two stacks have the same length and the same
// types in the same order (I4/I5's branch-merge equality test).
func Equal(a, b Stack) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// FromNames converts a list of type names (as they appear, textually, in
// source - between "func NAME" and "->", or between "->" and "do"/
// "extern") into a Stack. The parser accepts any identifier as a type
// name at parse time per spec §4.3; only these four primitives actually
// lower, so callers validate with IsPrimitive before trusting the result.
// The alias "str" is converted to Ptr.
func FromNames(names []string) Stack {
	s := make(Stack, len(names))
	for i, n := range names {
		if n == "str" {
			s[i] = Ptr
			continue
		}
		s[i] = Type(n)
	}
	return s
}

// IsPrimitive reports whether t is one of the four primitives the
// backend knows how to lower.
func IsPrimitive(t Type) bool {
	switch t {
	case Int, Bool, Long, Ptr:
		return true
	default:
		return false
	}
}
