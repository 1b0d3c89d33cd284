package driver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTool installs an executable script named name on PATH that copies
// its "-o OUT IN" input file to OUT, standing in for qbe/as/cc so tests
// never depend on the real toolchain being installed.
func fakeTool(t *testing.T, dir, name string) {
	t.Helper()
	script := "#!/bin/sh\nout=\"$2\"\nin=\"$3\"\ncp \"$in\" \"$out\"\n"
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
}

func withFakeToolchain(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	fakeTool(t, dir, "qbe")
	fakeTool(t, dir, "as")
	fakeTool(t, dir, "cc")
	old := os.Getenv("PATH")
	require.NoError(t, os.Setenv("PATH", dir+string(os.PathListSeparator)+old))
	t.Cleanup(func() { os.Setenv("PATH", old) })
}

func writeSrc(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "main.tack")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunStopsAfterSSA(t *testing.T) {
	src := writeSrc(t, `func main -> int do 0 end`)
	err := Run(Options{Input: src, Stop: StageSSA, NoStdlib: true})
	require.NoError(t, err)

	out := stripExt(src) + ".ssa"
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "export function w $main()")
}

func TestRunStopsAfterAssembly(t *testing.T) {
	withFakeToolchain(t)
	src := writeSrc(t, `func main -> int do 0 end`)
	err := Run(Options{Input: src, Stop: StageAsm, NoStdlib: true})
	require.NoError(t, err)

	_, err = os.Stat(stripExt(src) + ".s")
	require.NoError(t, err)
	_, err = os.Stat(stripExt(src) + ".ssa")
	assert.True(t, os.IsNotExist(err), "intermediate .ssa should be cleaned up on success")
}

func TestRunLinksByDefault(t *testing.T) {
	withFakeToolchain(t)
	src := writeSrc(t, `func main -> int do 0 end`)
	err := Run(Options{Input: src, NoStdlib: true})
	require.NoError(t, err)

	_, err = os.Stat(stripExt(src))
	require.NoError(t, err)
}

func TestRunMissingInputFails(t *testing.T) {
	err := Run(Options{Input: filepath.Join(t.TempDir(), "nope.tack")})
	assert.Error(t, err)
}

func TestRunNoInputFails(t *testing.T) {
	err := Run(Options{})
	assert.Error(t, err)
}

func TestRunPropagatesParseErrors(t *testing.T) {
	src := writeSrc(t, `func bad -> int do 1 2 end`)
	err := Run(Options{Input: src, Stop: StageSSA, NoStdlib: true})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "residual stack")
}

func TestRunKeepsIntermediatesOnToolFailure(t *testing.T) {
	dir := t.TempDir()
	// A "qbe" that always fails, to exercise the keep-on-error path.
	path := filepath.Join(dir, "qbe")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 1\n"), 0o755))
	old := os.Getenv("PATH")
	require.NoError(t, os.Setenv("PATH", dir+string(os.PathListSeparator)+old))
	t.Cleanup(func() { os.Setenv("PATH", old) })

	src := writeSrc(t, `func main -> int do 0 end`)
	err := Run(Options{Input: src, NoStdlib: true})
	assert.Error(t, err)

	_, statErr := os.Stat(stripExt(src) + ".ssa")
	assert.NoError(t, statErr, ".ssa should survive a failed qbe invocation")
}
