package parser

import (
	"github.com/tack-lang/tack/ast"
	"github.com/tack-lang/tack/errs"
	"github.com/tack-lang/tack/token"
	"github.com/tack-lang/tack/types"
)

// isTypeNameToken reports whether t can appear as a type name between
// `func NAME` and `->`, or between `->` and `do`/`extern`. Per spec
// §4.3 any identifier is accepted textually as a type name at parse
// time; the four primitive keywords (plus `str`, an alias of `ptr`)
// also lex as their own reserved token kinds, so both must be accepted.
func isTypeNameToken(t token.Type) bool {
	switch t {
	case token.IDENT, token.INT, token.BOOL, token.PTR, token.LONG, token.STR:
		return true
	default:
		return false
	}
}

// parseFunc handles the grammar
//
//	func NAME TYPE* -> TYPE* (do OP* end | extern)
func (p *Parser) parseFunc() error {
	kw, err := p.lex.NextToken() // FUNC
	if err != nil {
		return err
	}

	nameTok, err := p.lex.NextToken()
	if err != nil {
		return err
	}
	if nameTok.Type != token.IDENT {
		return errs.Parsef(nameTok.Pos, "expected a function name after 'func', got %s", nameTok.Type)
	}

	argNames, err := p.parseTypeNameList(token.ARROW)
	if err != nil {
		return err
	}
	if _, err := p.lex.NextToken(); err != nil { // consume '->'
		return err
	}

	retNames, err := p.parseTypeNameList(token.DO, token.EXTERN)
	if err != nil {
		return err
	}

	term, err := p.lex.NextToken() // DO or EXTERN
	if err != nil {
		return err
	}

	sig := ast.Signature{Args: types.FromNames(argNames), Rets: types.FromNames(retNames)}
	fn := ast.FuncDef{Name: nameTok.Literal, Signature: sig, Pos: kw.Pos}

	if term.Type == token.EXTERN {
		fn.Extern = true
		p.funcs[nameTok.Literal] = sig
		p.funcDefs = append(p.funcDefs, fn)
		return nil
	}

	if len(sig.Rets) > 1 {
		// I7: a function exported to C has at most one return type. The
		// inputs needed to check this (the declared signature) are
		// already fully known, so there is no reason to defer the
		// check to lowering time.
		return errs.Typef(kw.Pos, "function %q: cannot export more than one return type", nameTok.Literal)
	}

	body, _, finalStack, err := p.parseOps(sig.Args.Clone(), token.END)
	if err != nil {
		return err
	}

	if !types.Equal(finalStack, sig.Rets) {
		return errs.Typef(kw.Pos,
			"function %q: residual stack %v does not match declared return types %v",
			nameTok.Literal, finalStack, sig.Rets)
	}

	fn.Body = body
	p.funcs[nameTok.Literal] = sig
	p.funcDefs = append(p.funcDefs, fn)
	return nil
}

// parseTypeNameList consumes a run of type-name tokens up to (but not
// including) one of the stop tokens.
func (p *Parser) parseTypeNameList(stop ...token.Type) ([]string, error) {
	var names []string
	for {
		tok, err := p.lex.Peek(0)
		if err != nil {
			return nil, err
		}
		for _, s := range stop {
			if tok.Type == s {
				return names, nil
			}
		}
		if !isTypeNameToken(tok.Type) {
			return nil, errs.Parsef(tok.Pos, "expected a type name, got %s", tok.Type)
		}
		t, err := p.lex.NextToken()
		if err != nil {
			return nil, err
		}
		names = append(names, t.Literal)
	}
}
