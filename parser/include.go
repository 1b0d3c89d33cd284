package parser

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tack-lang/tack/errs"
	"github.com/tack-lang/tack/token"
)

// parseInclude handles `include "PATH"`. Already-included canonical
// paths are silently skipped (I2/§4.3/§9's cycle + redundancy
// protection); otherwise the file is parsed with a nested Parser whose
// symbol tables are merged into this one once it is exhausted.
func (p *Parser) parseInclude() error {
	if _, err := p.lex.NextToken(); err != nil { // INCLUDE
		return err
	}

	pathTok, err := p.lex.NextToken()
	if err != nil {
		return err
	}
	if pathTok.Type != token.STRING {
		return errs.Parsef(pathTok.Pos, "expected a string path after 'include', got %s", pathTok.Type)
	}

	resolved, err := resolveIncludePath(pathTok.Literal, p.cfg.IncludeDirs)
	if err != nil {
		return errs.Parsef(pathTok.Pos, "include %q: %s", pathTok.Literal, err)
	}

	canon, err := canonicalize(resolved)
	if err != nil {
		return errs.Parsef(pathTok.Pos, "include %q: %s", pathTok.Literal, err)
	}

	if p.includeHistory[canon] {
		// Already included: a no-op, not an error, per spec §4.3/§9.
		return nil
	}
	p.includeHistory[canon] = true

	src, err := os.ReadFile(resolved)
	if err != nil {
		return errs.Parsef(pathTok.Pos, "include %q: %s", pathTok.Literal, err)
	}

	nested := New(resolved, string(src), p.cfg)
	for k := range p.includeHistory {
		nested.includeHistory[k] = true
	}
	for k, v := range p.constants {
		nested.constants[k] = v
	}
	for k, v := range p.funcs {
		nested.funcs[k] = v
	}

	program, err := nested.Parse()
	if err != nil {
		return err
	}

	// Merge the nested parser's tables into the parent, per spec §4.3:
	// "its funcs, constants, and include_history are merged into the
	// enclosing parser." I6: later definitions win on name collision.
	for k, v := range nested.constants {
		p.constants[k] = v
	}
	for k, v := range nested.funcs {
		p.funcs[k] = v
	}
	for k := range nested.includeHistory {
		p.includeHistory[k] = true
	}

	p.funcDefs = append(p.funcDefs, program.Funcs...)
	p.constDefs = append(p.constDefs, program.Consts...)
	return nil
}

// resolveIncludePath tries the literal path first, then each configured
// include directory in order (spec §4.3).
func resolveIncludePath(path string, includeDirs []string) (string, error) {
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	for _, dir := range includeDirs {
		candidate := filepath.Join(dir, path)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("cannot resolve include path")
}

// canonicalize produces the key used for cycle/redundancy detection:
// an absolute, symlink-resolved path (spec §9: "canonicalize paths
// (resolve symlinks, make absolute) before insertion").
func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real, nil
	}
	return abs, nil
}
