// This is the main-driver for the compiler.

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tack-lang/tack/driver"
)

// stringList collects repeated occurrences of a flag (-l FILE, -I DIR)
// into an ordered slice, in first-to-last appearance order.
type stringList []string

func (s *stringList) String() string {
	return fmt.Sprint([]string(*s))
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(rawArgs []string) int {
	fs := flag.NewFlagSet("tack", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	output := fs.String("o", "", "output path (default: input with suffix replaced)")
	stopSSA := fs.Bool("cssa", false, "stop after emitting SSA IR")
	stopAsm := fs.Bool("cs", false, "stop after the IR-assembler (emit .s)")
	stopObj := fs.Bool("c", false, "stop after the native assembler (emit .o)")
	noStdlib := fs.Bool("nostdlib", false, "do not auto-link the standard library nor add its include path")
	verbose := fs.Bool("v", false, "verbose logging to stderr")
	help := fs.Bool("help", false, "print help, exit 0")

	var linkInputs, includeDirs stringList
	fs.Var(&linkInputs, "l", "append to link inputs (repeatable)")
	fs.Var(&includeDirs, "I", "append include directory (repeatable)")

	// flag does not understand getopt-style concatenation ("-lFILE",
	// "-IDIR"), only "-l FILE"/"-l=FILE"; spec §6 requires both forms,
	// so the concatenated form is split into two words before parsing.
	args := splitConcatenatedFlags(rawArgs)

	// "-h" is not registered as its own flag, so the flag package's
	// built-in help handling (print usage, return flag.ErrHelp) covers
	// it; "-help"/"--help" are covered by the explicit flag above.
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 1
	}

	if *help {
		fs.Usage()
		return 0
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return 1
	}

	stop := driver.StageLink
	switch {
	case *stopSSA:
		stop = driver.StageSSA
	case *stopAsm:
		stop = driver.StageAsm
	case *stopObj:
		stop = driver.StageObject
	}

	opts := driver.Options{
		Input:       fs.Arg(0),
		Output:      *output,
		Stop:        stop,
		LinkInputs:  []string(linkInputs),
		IncludeDirs: []string(includeDirs),
		NoStdlib:    *noStdlib,
		Verbose:     *verbose,
	}

	if err := driver.Run(opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// splitConcatenatedFlags rewrites "-lFOO" into "-l", "FOO" (and likewise
// for "-I"), leaving every other argument untouched.
func splitConcatenatedFlags(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if len(a) > 2 && (a[:2] == "-l" || a[:2] == "-I") {
			out = append(out, a[:2], a[2:])
			continue
		}
		out = append(out, a)
	}
	return out
}
