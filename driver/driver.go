// Package driver wires the parser and the QBE emitter to the external
// toolchain (`qbe`, `as`, `cc`) spec §4.5 describes, the same way the
// teacher's main.go shells out to gcc - generalized from one fixed
// assembler invocation to a four-stage pipeline a CLI flag can stop
// early.
package driver

import (
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/tack-lang/tack/errs"
	"github.com/tack-lang/tack/parser"
	"github.com/tack-lang/tack/qbe"
)

// Stage marks how far the pipeline should run before stopping.
type Stage int

const (
	StageLink Stage = iota // run every stage through linking (default)
	StageObject
	StageAsm
	StageSSA
)

// Options carries one invocation's configuration, assembled by the CLI
// from the flags in spec §6.
type Options struct {
	Input       string
	Output      string
	Stop        Stage
	LinkInputs  []string
	IncludeDirs []string
	NoStdlib    bool
	Verbose     bool
}

// Run executes the pipeline: parse and type-check the input, emit QBE
// IR, then shell out to qbe, as, and cc as far as opts.Stop requires.
func Run(opts Options) (err error) {
	logger := newLogger(opts.Verbose)

	if opts.Input == "" {
		return errs.Driverf(nil, "no input file given")
	}
	if _, statErr := os.Stat(opts.Input); statErr != nil {
		return errs.Driverf(statErr, "input file not found: %s", opts.Input)
	}

	includeDirs := append([]string{}, opts.IncludeDirs...)
	if !opts.NoStdlib {
		includeDirs = append(includeDirs, stdlibIncludeDirs()...)
	}

	logger.Debug("parsing translation unit", "file", opts.Input)
	prog, err := parser.ParseFile(opts.Input, parser.Config{IncludeDirs: includeDirs})
	if err != nil {
		return err
	}

	logger.Debug("emitting QBE IR", "functions", len(prog.Funcs))
	ssa, err := qbe.New().Emit(prog.Funcs)
	if err != nil {
		return err
	}

	ssaPath, finalSSA := stagePath(opts, ".ssa", StageSSA)
	if writeErr := os.WriteFile(ssaPath, []byte(ssa), 0o644); writeErr != nil {
		return errs.Driverf(writeErr, "writing %q", ssaPath)
	}
	if finalSSA {
		return nil
	}
	defer cleanup(logger, ssaPath, &err)

	asmPath, finalAsm := stagePath(opts, ".s", StageAsm)
	logger.Debug("running qbe", "in", ssaPath, "out", asmPath)
	if toolErr := runTool("qbe", ssaPath, asmPath); toolErr != nil {
		err = errs.Driverf(toolErr, "qbe")
		return err
	}
	if finalAsm {
		return nil
	}
	defer cleanup(logger, asmPath, &err)

	objPath, finalObj := stagePath(opts, ".o", StageObject)
	logger.Debug("running as", "in", asmPath, "out", objPath)
	if toolErr := runTool("as", asmPath, objPath); toolErr != nil {
		err = errs.Driverf(toolErr, "as")
		return err
	}
	if finalObj {
		return nil
	}
	defer cleanup(logger, objPath, &err)

	binPath := opts.Output
	if binPath == "" {
		binPath = stripExt(opts.Input)
	}

	ccArgs := []string{"-o", binPath, objPath}
	ccArgs = append(ccArgs, opts.LinkInputs...)
	if !opts.NoStdlib {
		if lib := stdlibArchive(); lib != "" {
			ccArgs = append(ccArgs, lib)
		}
	}

	logger.Debug("running cc", "args", ccArgs)
	cmd := exec.Command("cc", ccArgs...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if runErr := cmd.Run(); runErr != nil {
		err = errs.Driverf(runErr, "cc")
		return err
	}
	return nil
}

// stagePath decides where the output of one stage goes: opts.Output
// when this is the last stage the pipeline will run, a derived
// temporary path (input's name with ext substituted) otherwise.
func stagePath(opts Options, ext string, stage Stage) (path string, final bool) {
	final = opts.Stop == stage
	if final && opts.Output != "" {
		return opts.Output, true
	}
	return stripExt(opts.Input) + ext, final
}

// cleanup removes an intermediate file once it is no longer needed, but
// only on the success path - on error it is left in place, and its
// location logged, to aid debugging (spec §4.5 leaves this choice open).
func cleanup(logger *slog.Logger, path string, errp *error) {
	if *errp != nil {
		logger.Debug("keeping intermediate file after error", "path", path)
		return
	}
	if rmErr := os.Remove(path); rmErr != nil {
		logger.Debug("failed to remove intermediate file", "path", path, "error", rmErr)
	}
}

func runTool(name, in, out string) error {
	cmd := exec.Command(name, "-o", out, in)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func stripExt(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

func exeDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// stdlibIncludeDirs implements spec §6's "Include path auto-appends
// {exe_dir}/lib/include and /usr/include when stdlib is not disabled".
func stdlibIncludeDirs() []string {
	return []string{filepath.Join(exeDir(), "lib", "include"), "/usr/include"}
}

// stdlibArchive implements spec §6's two-path static-archive discovery:
// {exe_dir}/libtack.a, then {exe_dir}/lib/libtack.a. Returns "" if
// neither exists, in which case no archive is added to the link.
func stdlibArchive() string {
	for _, candidate := range []string{
		filepath.Join(exeDir(), "libtack.a"),
		filepath.Join(exeDir(), "lib", "libtack.a"),
	} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
