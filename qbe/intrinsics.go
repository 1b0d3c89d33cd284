package qbe

import (
	"fmt"

	"github.com/tack-lang/tack/errs"
	"github.com/tack-lang/tack/intrinsics"
	"github.com/tack-lang/tack/token"
	"github.com/tack-lang/tack/types"
)

// emitIntrinsic lowers one built-in operator. Dup/Drop/Swap/Rot/Over and
// the five casts are pure stack reshuffling - like the teacher's genDup
// and genSwap, they touch no registers - so they emit no instructions at
// all; everything else emits exactly one QBE instruction.
func (fe *funcEmitter) emitIntrinsic(pos token.Position, k intrinsics.Kind) error {
	switch k {
	case intrinsics.Add:
		fe.binOp("add", types.Word)
	case intrinsics.Sub:
		fe.binOp("sub", types.Word)
	case intrinsics.Mul:
		fe.binOp("mul", types.Word)
	case intrinsics.Div:
		fe.binOp("div", types.Word)

	case intrinsics.Lt:
		fe.binOp("csltw", types.Word)
	case intrinsics.Gt:
		fe.binOp("csgtw", types.Word)
	case intrinsics.Lte:
		fe.binOp("cslew", types.Word)
	case intrinsics.Gte:
		fe.binOp("csgew", types.Word)
	case intrinsics.Eq:
		fe.binOp("ceqw", types.Word)
	case intrinsics.Neq:
		fe.binOp("cnew", types.Word)

	case intrinsics.BwAnd:
		fe.binOp("and", types.Word)
	case intrinsics.BwOr:
		fe.binOp("or", types.Word)
	case intrinsics.Lsh:
		fe.binOp("shl", types.Word)
	case intrinsics.Rsh:
		fe.binOp("shr", types.Word)

	case intrinsics.Not:
		fe.emitNot()
	case intrinsics.Neg:
		fe.emitNeg()

	case intrinsics.Dup:
		v := fe.pop()
		fe.push(v)
		fe.push(v)
	case intrinsics.Drop:
		fe.pop()
	case intrinsics.Swap:
		b := fe.pop()
		a := fe.pop()
		fe.push(b)
		fe.push(a)
	case intrinsics.Rot:
		c := fe.pop()
		b := fe.pop()
		a := fe.pop()
		fe.push(b)
		fe.push(c)
		fe.push(a)
	case intrinsics.Over:
		b := fe.pop()
		a := fe.pop()
		fe.push(a)
		fe.push(b)
		fe.push(a)

	case intrinsics.CastInt, intrinsics.CastBool, intrinsics.CastPtr, intrinsics.CastLong, intrinsics.CastStr:
		fe.emitCast(k)

	default:
		return errs.Backendf(pos, "no lowering for intrinsic %q", k)
	}
	return nil
}

// binOp lowers a two-operand intrinsic. The stack's top is the rhs: the
// same reverse-of-declared-order convention intrinsics.Validate checks
// signatures against, so `a b -` computes a minus b, matching every
// other Forth-descended stack language.
func (fe *funcEmitter) binOp(qbeOp string, resWidth types.Width) {
	rhs := fe.pop()
	lhs := fe.pop()
	t := fe.newTemp()
	fmt.Fprintf(&fe.buf, "\t%s =%s %s %s, %s\n", t, resWidth, qbeOp, lhs.name, rhs.name)
	fe.push(value{name: t, width: resWidth})
}

// emitNot lowers the generic `not` intrinsic as a logical negation:
// zero becomes one, anything else becomes zero. Its signature is
// `a -> a` (spec §3/§4.4: result type = operand type), so the compare
// result is produced and pushed at the operand's own width, not
// hardcoded to word - otherwise a `long`-typed `not` would leave the
// emitted value's width out of sync with what the parser's type stack
// already proved it to be.
func (fe *funcEmitter) emitNot() {
	v := fe.pop()
	op := "ceqw"
	if v.width == types.Long64 {
		op = "ceql"
	}
	t := fe.newTemp()
	fmt.Fprintf(&fe.buf, "\t%s =%s %s %s, 0\n", t, v.width, op, v.name)
	fe.push(value{name: t, width: v.width})
}

func (fe *funcEmitter) emitNeg() {
	v := fe.pop()
	t := fe.newTemp()
	fmt.Fprintf(&fe.buf, "\t%s =w sub 0, %s\n", t, v.name)
	fe.push(value{name: t, width: types.Word})
}

// emitCast lowers tack's five conversion intrinsics. They are a free
// retype: the underlying SSA value is reused as-is and only the tracked
// width changes, matching spec §4.4's "casts cost nothing at emission
// time". No extension or truncation instruction is emitted, even when
// the cast changes width (int/bool are words, long/ptr are longs).
func (fe *funcEmitter) emitCast(k intrinsics.Kind) {
	v := fe.pop()
	sig := intrinsics.Table[k]
	fe.push(value{name: v.name, width: types.WidthOf(sig.Rets[0])})
}
