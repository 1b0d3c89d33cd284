// Package lexer turns tack source text into a stream of tokens.
package lexer

import (
	"github.com/tack-lang/tack/errs"
	"github.com/tack-lang/tack/token"
)

// Lexer holds our scanning state over a single source file.
type Lexer struct {
	file string // name used for positions and diagnostics

	characters []rune // rune slice of the whole input

	position     int // current character position
	readPosition int // next character position
	ch           rune

	line   int // current 1-indexed line
	column int // current 1-indexed column of `ch`

	// buffered lookahead: tokens already scanned but not yet consumed
	// by NextToken, to support Peek(n) of arbitrary depth.
	buffer []token.Token
}

// New creates a Lexer over the given input, attributing positions to
// `file` (used only for diagnostics - the lexer never opens it itself).
func New(file, input string) *Lexer {
	l := &Lexer{
		file:       file,
		characters: []rune(input),
		line:       1,
		column:     0,
	}
	l.readChar()
	return l
}

// readChar advances one rune, tracking line/column.
func (l *Lexer) readChar() {
	if l.ch == rune('\n') {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.characters) {
		l.ch = rune(0)
	} else {
		l.ch = l.characters[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.characters) {
		return rune(0)
	}
	return l.characters[l.readPosition]
}

// pos returns the position of the character currently under `ch`.
func (l *Lexer) pos() token.Position {
	return token.Position{File: l.file, Line: l.line, Column: l.column}
}

// NextToken consumes and returns the next token, honoring anything
// already sitting in the lookahead buffer.
func (l *Lexer) NextToken() (token.Token, error) {
	if len(l.buffer) > 0 {
		tok := l.buffer[0]
		l.buffer = l.buffer[1:]
		return tok, nil
	}
	return l.scan()
}

// Peek returns the n-th upcoming token (0 = the next one) without
// consuming it, scanning ahead and buffering as many tokens as needed.
func (l *Lexer) Peek(n int) (token.Token, error) {
	for len(l.buffer) <= n {
		tok, err := l.scan()
		if err != nil {
			return token.Token{}, err
		}
		l.buffer = append(l.buffer, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	if n >= len(l.buffer) {
		return l.buffer[len(l.buffer)-1], nil
	}
	return l.buffer[n], nil
}

// scan performs the actual recognition of the next token from the
// underlying character stream, per the rules in order.
func (l *Lexer) scan() (token.Token, error) {
	l.skipWhitespaceAndComments()

	p := l.pos()

	var tok token.Token
	tok.Pos = p

	switch l.ch {
	case rune(0):
		tok.Type = token.EOF
		return tok, nil

	case rune('"'):
		lit, err := l.readString()
		if err != nil {
			return token.Token{}, err
		}
		tok.Type = token.STRING
		tok.Literal = lit
		return tok, nil

	case rune('-'):
		if l.peekChar() == rune('>') {
			l.readChar()
			tok.Type = token.ARROW
			tok.Literal = "->"
		} else {
			tok.Type = token.MINUS
			tok.Literal = "-"
		}

	case rune('+'):
		tok.Type = token.PLUS
		tok.Literal = "+"

	case rune('*'):
		tok.Type = token.STAR
		tok.Literal = "*"

	case rune('/'):
		tok.Type = token.SLASH
		tok.Literal = "/"

	case rune('='):
		tok.Type = token.EQ
		tok.Literal = "="

	case rune('&'):
		tok.Type = token.BWAND
		tok.Literal = "&"

	case rune('|'):
		tok.Type = token.BWOR
		tok.Literal = "|"

	case rune('!'):
		if l.peekChar() == rune('=') {
			l.readChar()
			tok.Type = token.NEQ
			tok.Literal = "!="
		} else {
			return token.Token{}, errs.Lexf(p, "unexpected character '!'")
		}

	case rune('<'):
		switch l.peekChar() {
		case rune('='):
			l.readChar()
			tok.Type = token.LTE
			tok.Literal = "<="
		case rune('<'):
			l.readChar()
			tok.Type = token.LSH
			tok.Literal = "<<"
		default:
			tok.Type = token.LT
			tok.Literal = "<"
		}

	case rune('>'):
		switch l.peekChar() {
		case rune('='):
			l.readChar()
			tok.Type = token.GTE
			tok.Literal = ">="
		case rune('>'):
			l.readChar()
			tok.Type = token.RSH
			tok.Literal = ">>"
		default:
			tok.Type = token.GT
			tok.Literal = ">"
		}

	default:
		if isDigit(l.ch) {
			tok.Type = token.NUMBER
			tok.Literal = l.readNumber()
			return tok, nil
		}
		if isIdentifierStart(l.ch) {
			lit := l.readIdentifier()
			tok.Type = token.LookupIdentifier(lit)
			tok.Literal = lit
			return tok, nil
		}
		return token.Token{}, errs.Lexf(p, "unexpected character %q", l.ch)
	}

	l.readChar()
	return tok, nil
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for isWhitespace(l.ch) {
			l.readChar()
		}
		if l.ch == rune('#') {
			for l.ch != rune('\n') && l.ch != rune(0) {
				l.readChar()
			}
			continue
		}
		break
	}
}

// readNumber handles reading a base-10 integer literal.
func (l *Lexer) readNumber() string {
	start := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	return string(l.characters[start:l.position])
}

// readString reads the bytes between a pair of double quotes, verbatim
// - no escape processing is performed. The closing quote is mandatory.
func (l *Lexer) readString() (string, error) {
	p := l.pos()
	l.readChar() // consume opening quote

	start := l.position
	for l.ch != rune('"') {
		if l.ch == rune(0) {
			return "", errs.Lexf(p, "unterminated string literal")
		}
		l.readChar()
	}
	lit := string(l.characters[start:l.position])
	l.readChar() // consume closing quote
	return lit, nil
}

// readIdentifier reads `[A-Za-z_][A-Za-z0-9_.]*`.
func (l *Lexer) readIdentifier() string {
	start := l.position
	for isIdentifierPart(l.ch) {
		l.readChar()
	}
	return string(l.characters[start:l.position])
}

func isWhitespace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentifierStart(ch rune) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentifierPart(ch rune) bool {
	return isIdentifierStart(ch) || isDigit(ch) || ch == '.'
}
