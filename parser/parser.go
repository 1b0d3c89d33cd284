// Package parser fuses tack's grammar with its static type-checker: the
// parser performs symbolic execution of a compile-time type stack as it
// walks each function body, per spec §4.3. This is the core of the
// compiler - everything else (lexing, IR emission) is comparatively
// mechanical.
package parser

import (
	"os"

	"github.com/tack-lang/tack/ast"
	"github.com/tack-lang/tack/errs"
	"github.com/tack-lang/tack/lexer"
	"github.com/tack-lang/tack/token"
)

// Config carries the parts of the driver's configuration the parser
// needs: where to look for included files.
type Config struct {
	IncludeDirs []string
}

// Program is a fully parsed and type-checked translation unit, already
// flattened with every file reachable via `include` (spec §3's
// "Translation unit").
type Program struct {
	Funcs  []ast.FuncDef
	Consts []ast.ConstDef
}

// Parser holds one parse activation's state (spec §3's "Parser state").
// A nested Parser is created per included file; its tables are merged
// into the parent's once it is exhausted (spec §4.3, §9).
type Parser struct {
	lex *lexer.Lexer
	cfg Config

	constants      map[string]int64
	funcs          map[string]ast.Signature
	includeHistory map[string]bool

	funcDefs  []ast.FuncDef
	constDefs []ast.ConstDef
}

// New creates a Parser over already-read source text attributed to
// file. Callers resolving `include` directives construct a nested
// Parser the same way, over the included file's contents.
func New(file, src string, cfg Config) *Parser {
	return &Parser{
		lex:            lexer.New(file, src),
		cfg:            cfg,
		constants:      make(map[string]int64),
		funcs:          make(map[string]ast.Signature),
		includeHistory: make(map[string]bool),
	}
}

// ParseFile reads path from disk and parses it (and everything it
// transitively includes) into a Program.
func ParseFile(path string, cfg Config) (Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Program{}, errs.Parsef(token.Position{File: path}, "reading %q: %s", path, err)
	}
	p := New(path, string(src), cfg)
	return p.Parse()
}

// Parse drives the top-level loop from spec §4.3: repeatedly consume
// one of `const`, `func`, `include`, until EOF; anything else is a fatal
// "unexpected token" parse error.
func (p *Parser) Parse() (Program, error) {
	for {
		tok, err := p.lex.Peek(0)
		if err != nil {
			return Program{}, err
		}

		switch tok.Type {
		case token.EOF:
			return Program{Funcs: p.funcDefs, Consts: p.constDefs}, nil

		case token.CONST:
			if err := p.parseConst(); err != nil {
				return Program{}, err
			}

		case token.FUNC:
			if err := p.parseFunc(); err != nil {
				return Program{}, err
			}

		case token.INCLUDE:
			if err := p.parseInclude(); err != nil {
				return Program{}, err
			}

		default:
			return Program{}, errs.Parsef(tok.Pos, "unexpected token %s", tok.Type)
		}
	}
}

// parseConst handles `const NAME <const-expr>`.
func (p *Parser) parseConst() error {
	kw, err := p.lex.NextToken() // CONST
	if err != nil {
		return err
	}

	nameTok, err := p.lex.NextToken()
	if err != nil {
		return err
	}
	if nameTok.Type != token.IDENT {
		return errs.Parsef(nameTok.Pos, "expected an identifier after 'const', got %s", nameTok.Type)
	}

	value, err := p.parseConstExpr(kw.Pos)
	if err != nil {
		return err
	}

	p.constants[nameTok.Literal] = value
	p.constDefs = append(p.constDefs, ast.ConstDef{Name: nameTok.Literal, Value: value, Pos: kw.Pos})
	return nil
}
