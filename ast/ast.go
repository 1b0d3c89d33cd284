// Package ast holds the tagged-union Op family a function body is
// parsed into, and the top-level declarations a translation unit is
// made of.
//
// The Op family is closed (five variants), so a visitor/switch on the
// Kind suffices - there is no need for an interface with one
// implementation per variant.
package ast

import (
	"github.com/tack-lang/tack/token"
	"github.com/tack-lang/tack/types"
)

// OpKind tags which variant an Op value holds.
type OpKind byte

const (
	OpPushInt OpKind = iota
	OpPushStr
	OpIntrinsic
	OpCall
	OpConditional
)

// Signature is the argument/return shape of a function, in declared
// order (top of stack = last element, matching types.Stack).
type Signature struct {
	Args types.Stack
	Rets types.Stack
}

// Op is one instruction inside a function body. Exactly one group of
// fields is meaningful, selected by Kind - it plays the role a tagged
// sum/enum-with-payload would in a language with one.
type Op struct {
	Kind OpKind
	Pos  token.Position

	// OpPushInt
	IntValue int64

	// OpPushStr
	StrValue string

	// OpIntrinsic - kind is one of intrinsics.Kind's lexemes (kept as a
	// string here so the ast package has no dependency on intrinsics,
	// avoiding an import cycle since intrinsics does not need ast).
	IntrinsicKind string

	// OpCall
	CallName string
	CallSig  Signature

	// OpConditional
	Then []Op
	Else []Op // empty/nil => no else branch
}

// ConstDef is a top-level `const NAME <expr>` declaration.
type ConstDef struct {
	Name  string
	Value int64
	Pos   token.Position
}

// FuncDef is a top-level `func NAME TYPE* -> TYPE* (do OP* end | extern)`
// declaration.
type FuncDef struct {
	Name      string
	Signature Signature
	Body      []Op // nil when Extern is true
	Extern    bool
	Pos       token.Position
}
