package parser

import (
	"strconv"

	"github.com/tack-lang/tack/ast"
	"github.com/tack-lang/tack/errs"
	"github.com/tack-lang/tack/intrinsics"
	"github.com/tack-lang/tack/token"
	"github.com/tack-lang/tack/types"
)

// parseOps is the body-parsing loop: it calls parseOp for each token
// until the next token matches one of the given terminators, at which
// point the terminator is consumed and returned alongside the ops and
// the resulting type stack. Used both for a function body (terminator
// END) and for the two arms of a conditional (terminators END and ELSE,
// or just END for the else-arm).
func (p *Parser) parseOps(stack types.Stack, terminators ...token.Type) ([]ast.Op, token.Type, types.Stack, error) {
	var ops []ast.Op

	for {
		tok, err := p.lex.Peek(0)
		if err != nil {
			return nil, "", stack, err
		}

		for _, term := range terminators {
			if tok.Type == term {
				if _, err := p.lex.NextToken(); err != nil {
					return nil, "", stack, err
				}
				return ops, tok.Type, stack, nil
			}
		}

		op, newStack, err := p.parseOp(stack)
		if err != nil {
			return nil, "", stack, err
		}
		ops = append(ops, op)
		stack = newStack
	}
}

// parseOp consumes exactly one token and turns it into an Op, validating
// and updating the type stack per spec §4.3's parse_op.
func (p *Parser) parseOp(stack types.Stack) (ast.Op, types.Stack, error) {
	tok, err := p.lex.NextToken()
	if err != nil {
		return ast.Op{}, stack, err
	}

	switch tok.Type {
	case token.NUMBER:
		return p.parsePushInt(tok, stack)

	case token.STRING:
		newStack, err := intrinsics.Validate(stack, intrinsics.Signature{Rets: types.Stack{types.Ptr}})
		if err != nil {
			return ast.Op{}, stack, errs.Typef(tok.Pos, "%s", err)
		}
		return ast.Op{Kind: ast.OpPushStr, Pos: tok.Pos, StrValue: tok.Literal}, newStack, nil

	case token.IF:
		return p.parseConditional(tok, stack)

	case token.IDENT:
		return p.parseIdentifierUse(tok, stack)

	default:
		if k, ok := intrinsics.Lookup(string(tok.Type)); ok {
			newStack, err := intrinsics.Validate(stack, intrinsics.Table[k])
			if err != nil {
				return ast.Op{}, stack, errs.Typef(tok.Pos, "%s: %s", tok.Type, err)
			}
			return ast.Op{Kind: ast.OpIntrinsic, Pos: tok.Pos, IntrinsicKind: string(k)}, newStack, nil
		}
		return ast.Op{}, stack, errs.Parsef(tok.Pos, "unexpected token %s inside function body", tok.Type)
	}
}

func (p *Parser) parsePushInt(tok token.Token, stack types.Stack) (ast.Op, types.Stack, error) {
	v, convErr := strconv.ParseInt(tok.Literal, 10, 64)
	if convErr != nil {
		return ast.Op{}, stack, errs.Parsef(tok.Pos, "invalid integer literal %q", tok.Literal)
	}
	newStack, err := intrinsics.Validate(stack, intrinsics.Signature{Rets: types.Stack{types.Int}})
	if err != nil {
		return ast.Op{}, stack, errs.Typef(tok.Pos, "%s", err)
	}
	return ast.Op{Kind: ast.OpPushInt, Pos: tok.Pos, IntValue: v}, newStack, nil
}

// parseIdentifierUse resolves an identifier against constants (I1: push
// the constant's value as an int), then functions (emit a call), and
// otherwise fails - every identifier must resolve to exactly one of
// {intrinsic kind, constant name, function name}.
func (p *Parser) parseIdentifierUse(tok token.Token, stack types.Stack) (ast.Op, types.Stack, error) {
	if v, ok := p.constants[tok.Literal]; ok {
		newStack, err := intrinsics.Validate(stack, intrinsics.Signature{Rets: types.Stack{types.Int}})
		if err != nil {
			return ast.Op{}, stack, errs.Typef(tok.Pos, "%s", err)
		}
		return ast.Op{Kind: ast.OpPushInt, Pos: tok.Pos, IntValue: v}, newStack, nil
	}

	if sig, ok := p.funcs[tok.Literal]; ok {
		newStack, err := intrinsics.Validate(stack, intrinsics.Signature{Args: sig.Args, Rets: sig.Rets})
		if err != nil {
			return ast.Op{}, stack, errs.Typef(tok.Pos, "call to %q: %s", tok.Literal, err)
		}
		return ast.Op{
			Kind:     ast.OpCall,
			Pos:      tok.Pos,
			CallName: tok.Literal,
			CallSig:  sig,
		}, newStack, nil
	}

	return ast.Op{}, stack, errs.Parsef(tok.Pos, "undefined identifier %q", tok.Literal)
}

// parseConditional implements spec §4.3's `if` handling, including the
// branch-merge checks (I4/I5).
func (p *Parser) parseConditional(ifTok token.Token, stack types.Stack) (ast.Op, types.Stack, error) {
	afterCond, err := intrinsics.Validate(stack, intrinsics.Signature{Args: types.Stack{types.Bool}})
	if err != nil {
		return ast.Op{}, stack, errs.Typef(ifTok.Pos, "if: %s", err)
	}

	s0 := afterCond.Clone()

	thenOps, term, stThen, err := p.parseOps(s0.Clone(), token.END, token.ELSE)
	if err != nil {
		return ast.Op{}, stack, err
	}

	if term == token.END {
		if !types.Equal(stThen, s0) {
			return ast.Op{}, stack, errs.Typef(ifTok.Pos,
				"if without else must leave the stack unchanged: before %v, after %v", s0, stThen)
		}
		return ast.Op{Kind: ast.OpConditional, Pos: ifTok.Pos, Then: thenOps}, stThen, nil
	}

	elseOps, _, stElse, err := p.parseOps(s0.Clone(), token.END)
	if err != nil {
		return ast.Op{}, stack, err
	}

	if !types.Equal(stElse, stThen) {
		return ast.Op{}, stack, errs.Typef(ifTok.Pos,
			"if/else branches must leave the same stack shape: then %v, else %v", stThen, stElse)
	}

	return ast.Op{Kind: ast.OpConditional, Pos: ifTok.Pos, Then: thenOps, Else: elseOps}, stThen, nil
}
