// Package qbe lowers a parsed, type-checked program into QBE's textual
// SSA intermediate language (spec §4.4). Apart from rejecting signature
// type names that have no lowering (requirePrimitives), this stage does
// no validation of its own: its stack operations rely on the parser
// having already symbolically executed the same program.
package qbe

import (
	"fmt"
	"strings"

	"github.com/tack-lang/tack/ast"
	"github.com/tack-lang/tack/errs"
	"github.com/tack-lang/tack/types"
)

// value is one live entry on a funcEmitter's SSA value stack: the IR
// operand text (a temp name, an immediate, or a global symbol) paired
// with the base type it lowers as.
type value struct {
	name  string
	width types.Width
}

// Emitter renders an entire translation unit. String literals collected
// from every function share one pool, so that `Emit` can be called once
// per translation unit and still de-duplicate identical literals across
// function bodies.
type Emitter struct {
	strings  []string
	strIndex map[string]int
}

// New creates an Emitter with an empty string pool.
func New() *Emitter {
	return &Emitter{strIndex: make(map[string]int)}
}

// Emit renders every non-extern function in funcs, in order, followed by
// the data definitions for any string literals collected along the way.
// extern functions contribute nothing: they describe a C symbol the
// driver's linker resolves, not a function this package defines.
func (e *Emitter) Emit(funcs []ast.FuncDef) (string, error) {
	var body strings.Builder
	for _, fn := range funcs {
		if fn.Extern {
			continue
		}
		text, err := e.emitFunc(fn)
		if err != nil {
			return "", err
		}
		body.WriteString(text)
		body.WriteByte('\n')
	}
	body.WriteString(e.emitStringPool())
	return body.String(), nil
}

// emitFunc lowers one function to a single `export function ... { ... }`
// block. Parameters become the initial contents of the SSA value stack,
// under the names QBE requires for function arguments.
func (e *Emitter) emitFunc(fn ast.FuncDef) (string, error) {
	if err := requirePrimitives(fn); err != nil {
		return "", err
	}

	fe := &funcEmitter{e: e}

	var params []string
	for i, t := range fn.Signature.Args {
		w := types.WidthOf(t)
		name := fmt.Sprintf("%%s%d", i)
		params = append(params, fmt.Sprintf("%s %s", w, name))
		fe.push(value{name: name, width: w})
	}

	header := "export function "
	if len(fn.Signature.Rets) == 1 {
		header += string(types.WidthOf(fn.Signature.Rets[0])) + " "
	}
	header += fmt.Sprintf("$%s(%s) {\n", fn.Name, strings.Join(params, ", "))

	fe.emitLabel("@start")
	if err := fe.emitOps(fn.Body); err != nil {
		return "", err
	}

	// I7 already guarantees len(Rets) <= 1 by the time the parser hands
	// us a FuncDef, so there is never more than one value to return.
	if len(fn.Signature.Rets) == 1 {
		v := fe.pop()
		fmt.Fprintf(&fe.buf, "\tret %s\n", v.name)
	} else {
		fe.buf.WriteString("\tret\n")
	}

	return header + fe.buf.String() + "}\n", nil
}

// requirePrimitives rejects a signature naming a type that isn't one of
// the four primitives this backend knows how to lower. The parser
// accepts any identifier as a type name textually (spec §4.3), so a
// program like `func f widget -> widget do end` reaches this stage
// without ever being rejected; this is where it finally is.
func requirePrimitives(fn ast.FuncDef) error {
	for _, t := range fn.Signature.Args {
		if !types.IsPrimitive(t) {
			return errs.Backendf(fn.Pos, "function %q: type %q has no lowering", fn.Name, t)
		}
	}
	for _, t := range fn.Signature.Rets {
		if !types.IsPrimitive(t) {
			return errs.Backendf(fn.Pos, "function %q: type %q has no lowering", fn.Name, t)
		}
	}
	return nil
}

// intern returns the string pool index for s, assigning it a fresh one
// the first time it is seen.
func (e *Emitter) intern(s string) int {
	if idx, ok := e.strIndex[s]; ok {
		return idx
	}
	idx := len(e.strings)
	e.strings = append(e.strings, s)
	e.strIndex[s] = idx
	return idx
}

func (e *Emitter) emitStringPool() string {
	var b strings.Builder
	for i, s := range e.strings {
		fmt.Fprintf(&b, "data $s%d = { b %s, b 0 }\n", i, qbeEscape(s))
	}
	return b.String()
}

// qbeEscape renders s as a QBE string-literal operand, escaping the
// characters QBE's own lexer treats specially inside one.
func qbeEscape(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
