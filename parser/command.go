// Copyright © 2024 The cstlint authors

package parser

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/luthersystems/cstlint/syntax"
)

// DefaultBinary is the parser executable used when none is configured.
const DefaultBinary = "hh_parse"

// Command runs an external parser binary as "<Binary> <Args...> <path>" and
// decodes the parse result it writes to stdout.
type Command struct {
	Binary string
	Args   []string
}

// NewCommand returns a Command for hh_parse's full fidelity JSON output. An
// empty binary selects DefaultBinary.
func NewCommand(binary string) *Command {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Command{
		Binary: binary,
		Args:   []string{"--full-fidelity-json"},
	}
}

// Identity implements Identifier.
func (c *Command) Identity() string {
	return strings.Join(append([]string{c.Binary}, c.Args...), " ")
}

// Parse implements Parser. source is not passed to the binary, which reads
// path itself; it is only used to check that the result covers it.
func (c *Command) Parse(ctx context.Context, path string, source []byte) (*syntax.ParseResult, error) {
	args := append(append([]string(nil), c.Args...), path)
	cmd := exec.CommandContext(ctx, c.Binary, args...) //nolint:gosec // binary is operator configured
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("%s: %s: %w", path, c.Binary, err)
		}
		return nil, fmt.Errorf("%s: %s: %w: %s", path, c.Binary, err, msg)
	}
	pr, err := syntax.DecodeParseResult(&stdout)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if source != nil && pr.Text != string(source) {
		return nil, fmt.Errorf("%s: %w: program text differs from file contents", path, syntax.ErrMalformedParseResult)
	}
	return pr, nil
}
