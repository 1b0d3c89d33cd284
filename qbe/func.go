package qbe

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tack-lang/tack/ast"
	"github.com/tack-lang/tack/errs"
	"github.com/tack-lang/tack/intrinsics"
	"github.com/tack-lang/tack/types"
)

// funcEmitter holds the state needed to lower one function body: the
// growing instruction text, the SSA value stack the ops push and pop
// (tack's runtime stack, reified at compile time), and the counters
// that keep temp and block names unique within the function.
type funcEmitter struct {
	e   *Emitter
	buf strings.Builder

	tmp   int
	block int

	stack    []value
	curLabel string
}

func (fe *funcEmitter) newTemp() string {
	fe.tmp++
	return fmt.Sprintf("%%t%d", fe.tmp)
}

func (fe *funcEmitter) newLabel() string {
	fe.block++
	return fmt.Sprintf("@b%d", fe.block)
}

func (fe *funcEmitter) emitLabel(l string) {
	fe.buf.WriteString(l)
	fe.buf.WriteByte('\n')
	fe.curLabel = l
}

func (fe *funcEmitter) push(v value) {
	fe.stack = append(fe.stack, v)
}

func (fe *funcEmitter) pop() value {
	v := fe.stack[len(fe.stack)-1]
	fe.stack = fe.stack[:len(fe.stack)-1]
	return v
}

func (fe *funcEmitter) emitOps(ops []ast.Op) error {
	for _, op := range ops {
		if err := fe.emitOp(op); err != nil {
			return err
		}
	}
	return nil
}

func (fe *funcEmitter) emitOp(op ast.Op) error {
	switch op.Kind {
	case ast.OpPushInt:
		fe.push(value{name: strconv.FormatInt(op.IntValue, 10), width: types.Word})
		return nil

	case ast.OpPushStr:
		idx := fe.e.intern(op.StrValue)
		fe.push(value{name: fmt.Sprintf("$s%d", idx), width: types.Long64})
		return nil

	case ast.OpIntrinsic:
		return fe.emitIntrinsic(op.Pos, intrinsics.Kind(op.IntrinsicKind))

	case ast.OpCall:
		return fe.emitCall(op)

	case ast.OpConditional:
		return fe.emitConditional(op)

	default:
		return errs.Backendf(op.Pos, "unhandled op kind %v", op.Kind)
	}
}

// emitCall lowers a call to a previously declared (possibly extern)
// function. Arguments are popped in the same reverse order Validate used
// to check the call, so the pops land back in the function's declared
// argument order.
func (fe *funcEmitter) emitCall(op ast.Op) error {
	n := len(op.CallSig.Args)
	args := make([]value, n)
	for i := n - 1; i >= 0; i-- {
		args[i] = fe.pop()
	}

	var argStrs []string
	for _, a := range args {
		argStrs = append(argStrs, fmt.Sprintf("%s %s", a.width, a.name))
	}
	call := fmt.Sprintf("$%s(%s)", op.CallName, strings.Join(argStrs, ", "))

	if len(op.CallSig.Rets) == 1 {
		retWidth := types.WidthOf(op.CallSig.Rets[0])
		t := fe.newTemp()
		fmt.Fprintf(&fe.buf, "\t%s =%s call %s\n", t, retWidth, call)
		fe.push(value{name: t, width: retWidth})
		return nil
	}

	fmt.Fprintf(&fe.buf, "\tcall %s\n", call)
	return nil
}

// emitConditional lowers an `if`/`else` by symbolically re-running the
// same branch-shape reasoning the parser already verified, this time to
// produce real blocks and insert the phi nodes SSA form requires
// wherever the two arms leave different values in the same stack slot
// (spec §4.4's "diff the two post-branch stacks, slot by slot").
func (fe *funcEmitter) emitConditional(op ast.Op) error {
	cond := fe.pop()
	baseStack := append([]value{}, fe.stack...)
	entryLabel := fe.curLabel
	hasElse := len(op.Else) > 0

	thenLabel := fe.newLabel()
	var elseLabel string
	if hasElse {
		elseLabel = fe.newLabel()
	}
	joinLabel := fe.newLabel()

	falseTarget := joinLabel
	if hasElse {
		falseTarget = elseLabel
	}
	fmt.Fprintf(&fe.buf, "\tjnz %s, %s, %s\n", cond.name, thenLabel, falseTarget)

	fe.emitLabel(thenLabel)
	fe.stack = append([]value{}, baseStack...)
	if err := fe.emitOps(op.Then); err != nil {
		return err
	}
	thenStack := fe.stack
	thenExit := fe.curLabel
	fmt.Fprintf(&fe.buf, "\tjmp %s\n", joinLabel)

	elseStack := baseStack
	elseExit := entryLabel
	if hasElse {
		fe.emitLabel(elseLabel)
		fe.stack = append([]value{}, baseStack...)
		if err := fe.emitOps(op.Else); err != nil {
			return err
		}
		elseStack = fe.stack
		elseExit = fe.curLabel
		fmt.Fprintf(&fe.buf, "\tjmp %s\n", joinLabel)
	}

	fe.emitLabel(joinLabel)

	merged := make([]value, len(thenStack))
	for i := range thenStack {
		tv := thenStack[i]
		ev := elseStack[i]
		if tv.name == ev.name {
			merged[i] = tv
			continue
		}
		t := fe.newTemp()
		fmt.Fprintf(&fe.buf, "\t%s =%s phi %s %s, %s %s\n", t, tv.width, thenExit, tv.name, elseExit, ev.name)
		merged[i] = value{name: t, width: tv.width}
	}
	fe.stack = merged
	return nil
}
