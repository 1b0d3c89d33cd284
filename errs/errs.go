// Package errs defines the error taxonomy from the compiler's error
// handling design: lex, parse, type, backend and driver errors. All but
// the driver error carry the source position they were raised at; a
// driver error carries the underlying cause instead.
package errs

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/tack-lang/tack/token"
)

// positional is embedded by every error kind below so they all share
// the same rendering and can all be matched with errors.As.
type positional struct {
	Pos token.Position
	Msg string
}

func (p positional) Error() string {
	return fmt.Sprintf("%s: %s", p.Pos, p.Msg)
}

// LexError reports an unexpected character or an unterminated string.
type LexError struct{ positional }

// ParseError reports an unexpected token, a missing grammar element, or
// an unresolvable/invalid include.
type ParseError struct{ positional }

// TypeError reports a stack-underflow, a signature mismatch, a generic
// placeholder conflict, a branch-merge mismatch, or a bad residual stack.
type TypeError struct{ positional }

// BackendError reports a condition the type-checker should already have
// ruled out; spec §7 calls these "internal errors" because they should
// be unreachable once parsing has succeeded.
type BackendError struct{ positional }

func (b BackendError) Error() string {
	return fmt.Sprintf("%s: internal error: %s", b.Pos, b.Msg)
}

// DriverError reports file I/O failure or a non-zero exit from an
// external tool (qbe, as, cc).
type DriverError struct {
	Msg   string
	Cause error
}

func (d DriverError) Error() string {
	if d.Cause != nil {
		return fmt.Sprintf("%s: %s", d.Msg, d.Cause)
	}
	return d.Msg
}

func (d DriverError) Unwrap() error { return d.Cause }

// Lexf builds a positional LexError, wrapped so a -v run can print a
// stack trace back to the call site that raised it.
func Lexf(pos token.Position, format string, args ...interface{}) error {
	return errors.WithStack(LexError{positional{pos, fmt.Sprintf(format, args...)}})
}

// Parsef builds a positional ParseError.
func Parsef(pos token.Position, format string, args ...interface{}) error {
	return errors.WithStack(ParseError{positional{pos, fmt.Sprintf(format, args...)}})
}

// Typef builds a positional TypeError.
func Typef(pos token.Position, format string, args ...interface{}) error {
	return errors.WithStack(TypeError{positional{pos, fmt.Sprintf(format, args...)}})
}

// Backendf builds a positional BackendError.
func Backendf(pos token.Position, format string, args ...interface{}) error {
	return errors.WithStack(BackendError{positional{pos, fmt.Sprintf(format, args...)}})
}

// Driverf builds a DriverError wrapping cause (which may be nil for a
// plain message, e.g. "no input file").
func Driverf(cause error, format string, args ...interface{}) error {
	return errors.WithStack(DriverError{Msg: fmt.Sprintf(format, args...), Cause: cause})
}
