package intrinsics

import (
	"testing"

	"github.com/tack-lang/tack/types"
)

func TestAddRequiresTwoInts(t *testing.T) {
	sig := Table[Add]
	out, err := Validate(types.Stack{types.Int, types.Int}, sig)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !types.Equal(out, types.Stack{types.Int}) {
		t.Fatalf("expected [int], got %v", out)
	}
}

func TestAddUnderflow(t *testing.T) {
	_, err := Validate(types.Stack{types.Int}, Table[Add])
	if err == nil {
		t.Fatalf("expected underflow error")
	}
}

func TestComparisonProducesBool(t *testing.T) {
	out, err := Validate(types.Stack{types.Int, types.Int}, Table[Lt])
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !types.Equal(out, types.Stack{types.Bool}) {
		t.Fatalf("expected [bool], got %v", out)
	}
}

// TestSwapActuallySwaps pins down the popping-order convention chosen in
// SPEC_FULL.md: swap must exchange the top two stack entries.
func TestSwapActuallySwaps(t *testing.T) {
	out, err := Validate(types.Stack{types.Int, types.Ptr}, Table[Swap])
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !types.Equal(out, types.Stack{types.Ptr, types.Int}) {
		t.Fatalf("expected swap([int,ptr]) = [ptr,int], got %v", out)
	}
}

func TestDupDuplicatesGeneric(t *testing.T) {
	out, err := Validate(types.Stack{types.Bool}, Table[Dup])
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !types.Equal(out, types.Stack{types.Bool, types.Bool}) {
		t.Fatalf("expected [bool, bool], got %v", out)
	}
}

func TestDropRemovesGeneric(t *testing.T) {
	out, err := Validate(types.Stack{types.Long}, Table[Drop])
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty stack, got %v", out)
	}
}

// TestRotLeftRotatesTopThree matches conventional Forth `rot`: (a b c -- b c a).
func TestRotLeftRotatesTopThree(t *testing.T) {
	out, err := Validate(types.Stack{types.Int, types.Bool, types.Ptr}, Table[Rot])
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !types.Equal(out, types.Stack{types.Bool, types.Ptr, types.Int}) {
		t.Fatalf("expected [bool, ptr, int], got %v", out)
	}
}

func TestOverCopiesSecondToTop(t *testing.T) {
	out, err := Validate(types.Stack{types.Int, types.Ptr}, Table[Over])
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !types.Equal(out, types.Stack{types.Int, types.Ptr, types.Int}) {
		t.Fatalf("expected [int, ptr, int], got %v", out)
	}
}

func TestGenericPlaceholderConflict(t *testing.T) {
	// No entry in Table repeats a placeholder across two arg positions,
	// so the conflict is manufactured with a hand-built signature `a a`:
	// the top (ptr) binds a, and the next value (int) then disagrees.
	sig := Signature{Args: types.Stack{phA, phA}, Rets: types.Stack{phA}}
	_, err := Validate(types.Stack{types.Int, types.Ptr}, sig)
	if err == nil {
		t.Fatalf("expected a placeholder conflict error")
	}
}

func TestCastIsIdentityOnTypeOnly(t *testing.T) {
	out, err := Validate(types.Stack{types.Int}, Table[CastPtr])
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !types.Equal(out, types.Stack{types.Ptr}) {
		t.Fatalf("expected [ptr], got %v", out)
	}
}

func TestLookup(t *testing.T) {
	k, ok := Lookup("+")
	if !ok || k != Add {
		t.Fatalf("expected + to resolve to Add, got %v ok=%v", k, ok)
	}
	_, ok = Lookup("nope")
	if ok {
		t.Fatalf("expected unknown lexeme to not resolve")
	}
}

func TestIsCast(t *testing.T) {
	if !IsCast(CastLong) {
		t.Errorf("expected long cast to be a cast")
	}
	if IsCast(Add) {
		t.Errorf("expected + to not be a cast")
	}
}
