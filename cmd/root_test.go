// Copyright © 2024 The cstlint authors

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/cstlint/config"
	"github.com/luthersystems/cstlint/csttest"
	"github.com/luthersystems/cstlint/lint"
	"github.com/luthersystems/cstlint/parser"
)

type result struct {
	status int
	stdout string
	stderr string
}

func run(t *testing.T, p parser.Parser, args ...string) result {
	t.Helper()
	cmd := RootCommand(WithParser(p), WithDir(t.TempDir()))
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	status := Run(context.Background(), cmd, args)
	return result{status: status, stdout: stdout.String(), stderr: stderr.String()}
}

func writeSource(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "x.hack")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o600))
	return path
}

func TestRootCommand_Flags(t *testing.T) {
	cmd := RootCommand()
	assert.Equal(t, "cstlint [flags] [PATH...]", cmd.Use)
	for _, name := range []string{"mode", "verbose", "xhprof", "perf", "color", "parser", "no-cache", "list"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag: %s", name)
	}
	assert.True(t, cmd.Flags().Lookup("perf").Hidden)
	assert.Equal(t, "m", cmd.Flags().Lookup("mode").Shorthand)
	assert.Equal(t, "v", cmd.Flags().Lookup("verbose").Shorthand)
	assert.Contains(t, cmd.Long, "cstlint.json")
}

func TestRoot_PerfIsRejected(t *testing.T) {
	path := writeSource(t, csttest.SampleSource)
	r := run(t, csttest.Parser(csttest.Sample()), "--perf", path)
	assert.Equal(t, lint.ExitFatal, r.status)
	assert.Contains(t, r.stderr, "--perf is no longer supported; consider --xhprof")
	assert.Empty(t, r.stdout, "no file was processed")
}

func TestRoot_PerfIsRejectedWhenFalse(t *testing.T) {
	path := writeSource(t, csttest.SampleSource)
	r := run(t, csttest.Parser(csttest.Sample()), "--perf=false", path)
	assert.Equal(t, lint.ExitFatal, r.status)
	assert.Contains(t, r.stderr, ErrPerfRemoved.Error())
	assert.Empty(t, r.stdout)
}

func TestRoot_NoTargets(t *testing.T) {
	if _, found, _ := config.Find(os.TempDir()); found {
		t.Skip("a cstlint.json above the temp dir supplies roots")
	}
	r := run(t, csttest.Parser())
	assert.Equal(t, lint.ExitFatal, r.status)
	assert.Contains(t, r.stderr, lint.ErrNoTargets.Error())
}

func TestRoot_BadFlags(t *testing.T) {
	path := writeSource(t, "<?hh\n")
	for _, args := range [][]string{
		{"--mode", "xml", path},
		{"--color", "sometimes", path},
		{"--no-such-flag", path},
	} {
		r := run(t, csttest.Parser(csttest.Script()), args...)
		assert.Equal(t, lint.ExitFatal, r.status, "args %v", args)
		assert.Contains(t, r.stderr, "cstlint: ", "args %v", args)
	}
}

func TestRoot_CleanJSON(t *testing.T) {
	root := csttest.Script()
	path := writeSource(t, root.FullText())
	r := run(t, csttest.Parser(root), "--mode", "json", path)
	assert.Equal(t, lint.ExitClean, r.status)
	assert.JSONEq(t, `[]`, r.stdout)
	assert.Empty(t, r.stderr)
}

func TestRoot_FindingsJSON(t *testing.T) {
	path := writeSource(t, csttest.SampleSource)
	r := run(t, csttest.Parser(csttest.Sample()), "-m", "json", path)
	assert.Equal(t, lint.ExitFindings, r.status)

	var findings []lint.Finding
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &findings))
	require.Len(t, findings, 1)
	assert.Equal(t, "must-use-braces-for-control-flow", findings[0].Rule)
	assert.Equal(t, path, findings[0].Pos.File)
	assert.Equal(t, 2, findings[0].Pos.Line)
}

func TestRoot_FindingsPlain(t *testing.T) {
	path := writeSource(t, csttest.SampleSource)
	r := run(t, csttest.Parser(csttest.Sample()), "--color", "never", path)
	assert.Equal(t, lint.ExitFindings, r.status)
	assert.Contains(t, r.stdout, "if blocks must use braces")
	assert.Contains(t, r.stdout, "1 finding in 1 file")
}

func TestRoot_Verbose(t *testing.T) {
	root := csttest.Script()
	path := writeSource(t, root.FullText())

	r := run(t, csttest.Parser(root), "-v", path)
	assert.Equal(t, lint.ExitClean, r.status)
	assert.Contains(t, r.stderr, "Linting "+path)
	assert.NotContains(t, r.stderr, "no-tabs")

	r = run(t, csttest.Parser(root), "-vv", path)
	assert.Contains(t, r.stderr, "no-tabs")
}

func TestRoot_XHProf(t *testing.T) {
	root := csttest.Script()
	path := writeSource(t, root.FullText())
	r := run(t, csttest.Parser(root), "--xhprof", path)
	assert.Equal(t, lint.ExitClean, r.status)
	assert.Contains(t, r.stderr, `"Name": "lint.run"`)
	assert.Contains(t, r.stderr, `"Name": "lint.file"`)
}

func TestRoot_List(t *testing.T) {
	r := run(t, nil, "--list")
	assert.Equal(t, lint.ExitClean, r.status)
	assert.Contains(t, r.stdout, "no-whitespace-at-end-of-line")
	assert.Contains(t, r.stdout, "no-empty-statements")
}

func TestRoot_ParseFailureIsAFinding(t *testing.T) {
	path := writeSource(t, "<?hh\nunparseable\n")
	r := run(t, csttest.Parser(), "-m", "json", path)
	assert.Equal(t, lint.ExitFindings, r.status)

	var findings []lint.Finding
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &findings))
	require.NotEmpty(t, findings)
	assert.True(t, findings[0].ToolError)
}

func TestExitStatus(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, 0, exitStatus(&buf, nil))
	assert.Equal(t, 2, exitStatus(&buf, &ExitError{Code: 2}))
	assert.Empty(t, buf.String())
	assert.Equal(t, 1, exitStatus(&buf, ErrPerfRemoved))
	assert.Equal(t, "cstlint: --perf is no longer supported; consider --xhprof\n", buf.String())
}
