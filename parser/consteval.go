package parser

import (
	"strconv"

	"github.com/tack-lang/tack/errs"
	"github.com/tack-lang/tack/token"
)

// isArithOp reports whether t is one of the four operators the
// constant evaluator accepts.
func isArithOp(t token.Type) bool {
	switch t {
	case token.PLUS, token.MINUS, token.STAR, token.SLASH:
		return true
	default:
		return false
	}
}

// parseConstExpr is the miniature RPN evaluator from spec §4.2: it
// consumes tokens for as long as the next one is a number or an
// arithmetic operator, evaluating as it goes, and requires exactly one
// value remain on its own (separate) evaluation stack.
func (p *Parser) parseConstExpr(pos token.Position) (int64, error) {
	var stack []int64
	consumed := 0

	for {
		next, err := p.lex.Peek(0)
		if err != nil {
			return 0, err
		}
		if next.Type != token.NUMBER && !isArithOp(next.Type) {
			break
		}

		tok, err := p.lex.NextToken()
		if err != nil {
			return 0, err
		}
		consumed++

		if tok.Type == token.NUMBER {
			v, convErr := strconv.ParseInt(tok.Literal, 10, 64)
			if convErr != nil {
				return 0, errs.Parsef(tok.Pos, "invalid integer literal %q", tok.Literal)
			}
			stack = append(stack, v)
			continue
		}

		if len(stack) < 2 {
			return 0, errs.Parsef(tok.Pos, "not enough operands for %q in constant expression", tok.Type)
		}
		b := stack[len(stack)-1]
		a := stack[len(stack)-2]
		stack = stack[:len(stack)-2]

		var result int64
		switch tok.Type {
		case token.PLUS:
			result = a + b
		case token.MINUS:
			result = a - b
		case token.STAR:
			result = a * b
		case token.SLASH:
			if b == 0 {
				return 0, errs.Parsef(tok.Pos, "division by zero in constant expression")
			}
			result = a / b // Go's integer division already truncates toward zero.
		}
		stack = append(stack, result)
	}

	if consumed == 0 {
		return 0, errs.Parsef(pos, "empty constant expression")
	}
	if len(stack) != 1 {
		return 0, errs.Parsef(pos, "constant expression left %d values on the stack, expected exactly 1", len(stack))
	}
	return stack[0], nil
}
