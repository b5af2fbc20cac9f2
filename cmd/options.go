// Copyright © 2024 The cstlint authors

package cmd

import (
	"github.com/luthersystems/cstlint/lint"
	"github.com/luthersystems/cstlint/parser"
)

// Option configures RootCommand.
type Option func(*cmdConfig)

type cmdConfig struct {
	registry *lint.Registry
	parser   parser.Parser
	dir      string
}

// WithRegistry replaces the built-in rule registry. Embedders use it to add
// their own rules.
func WithRegistry(reg *lint.Registry) Option {
	return func(c *cmdConfig) { c.registry = reg }
}

// WithParser injects a parser. The --parser and --no-cache flags are
// ignored when a parser is injected.
func WithParser(p parser.Parser) Option {
	return func(c *cmdConfig) { c.parser = p }
}

// WithDir sets the directory whose configuration supplies roots when no
// paths are given. The working directory is used otherwise.
func WithDir(dir string) Option {
	return func(c *cmdConfig) { c.dir = dir }
}

func (c *cmdConfig) resolveRegistry() *lint.Registry {
	if c.registry != nil {
		return c.registry
	}
	return lint.DefaultRegistry()
}
