// Copyright © 2024 The cstlint authors

// Package config loads cstlint.json files and answers which linters apply to
// a given source file.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// FileName is the name of the configuration file searched for by Resolver.
const FileName = "cstlint.json"

// Builtin linter set names accepted by the builtinLinters key.
const (
	SetDefault = "default"
	SetAll     = "all"
	SetNone    = "none"
)

// ErrInvalidConfig is wrapped by every configuration error.
var ErrInvalidConfig = errors.New("invalid configuration")

// Catalog is the set of linters known to the program.
type Catalog interface {
	// Set returns the linter names in a named builtin set.
	Set(name string) ([]string, bool)
	// Has reports whether a linter is registered under name.
	Has(name string) bool
}

// Override adjusts the linter selection for files matching any of Patterns.
type Override struct {
	Patterns          []string `mapstructure:"patterns"`
	ExtraLinters      []string `mapstructure:"extraLinters"`
	DisabledLinters   []string `mapstructure:"disabledLinters"`
	DisabledAutoFixes []string `mapstructure:"disabledAutoFixes"`
}

// Suppression silences one linter for files matching Patterns. When Lines
// holds a [start, end] pair only findings on those lines (inclusive) are
// suppressed.
type Suppression struct {
	Linter   string   `mapstructure:"linter"`
	Patterns []string `mapstructure:"patterns"`
	Lines    []int    `mapstructure:"lines"`
}

// Document is the decoded contents of a cstlint.json file.
type Document struct {
	Roots             []string      `mapstructure:"roots"`
	BuiltinLinters    string        `mapstructure:"builtinLinters"`
	ExtraLinters      []string      `mapstructure:"extraLinters"`
	DisabledLinters   []string      `mapstructure:"disabledLinters"`
	DisabledAutoFixes []string      `mapstructure:"disabledAutoFixes"`
	Overrides         []Override    `mapstructure:"overrides"`
	Suppressions      []Suppression `mapstructure:"suppressions"`
}

// Config is a loaded configuration. Paths in the document are relative to
// Dir.
type Config struct {
	// Path is the file the configuration was read from, empty for the
	// default configuration.
	Path     string
	Dir      string
	Document Document

	catalog Catalog
}

// Default returns the configuration used when no cstlint.json is found.
func Default(dir string, catalog Catalog) *Config {
	return &Config{
		Dir:      dir,
		Document: Document{BuiltinLinters: SetDefault},
		catalog:  catalog,
	}
}

// Load reads the configuration file at path. Scalar keys may be overridden
// from the environment with the CSTLINT_ prefix, for example
// CSTLINT_BUILTINLINTERS=all.
func Load(path string, catalog Catalog) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix("CSTLINT")
	v.AutomaticEnv()
	v.SetDefault("builtinLinters", SetDefault)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, ErrInvalidConfig, err)
	}
	var doc Document
	if err := v.UnmarshalExact(&doc); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, ErrInvalidConfig, err)
	}
	c := &Config{
		Path:     path,
		Dir:      filepath.Dir(path),
		Document: doc,
		catalog:  catalog,
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func (c *Config) validate() error {
	doc := &c.Document
	if _, ok := c.catalog.Set(doc.BuiltinLinters); !ok {
		return fmt.Errorf("%w: unknown builtinLinters value %q", ErrInvalidConfig, doc.BuiltinLinters)
	}
	names := [][]string{doc.ExtraLinters, doc.DisabledLinters, doc.DisabledAutoFixes}
	for i, o := range doc.Overrides {
		if len(o.Patterns) == 0 {
			return fmt.Errorf("%w: overrides[%d] has no patterns", ErrInvalidConfig, i)
		}
		names = append(names, o.ExtraLinters, o.DisabledLinters, o.DisabledAutoFixes)
	}
	for i, s := range doc.Suppressions {
		if len(s.Patterns) == 0 {
			return fmt.Errorf("%w: suppressions[%d] has no patterns", ErrInvalidConfig, i)
		}
		if len(s.Lines) != 0 && (len(s.Lines) != 2 || s.Lines[0] > s.Lines[1] || s.Lines[0] < 1) {
			return fmt.Errorf("%w: suppressions[%d]: lines must be a [start, end] pair", ErrInvalidConfig, i)
		}
		names = append(names, []string{s.Linter})
	}
	for _, list := range names {
		for _, name := range list {
			if !c.catalog.Has(name) {
				return fmt.Errorf("%w: unknown linter %q", ErrInvalidConfig, name)
			}
		}
	}
	patterns := [][]string{}
	for _, o := range doc.Overrides {
		patterns = append(patterns, o.Patterns)
	}
	for _, s := range doc.Suppressions {
		patterns = append(patterns, s.Patterns)
	}
	for _, list := range patterns {
		for _, p := range list {
			if _, err := filepath.Match(p, ""); err != nil {
				return fmt.Errorf("%w: bad pattern %q: %v", ErrInvalidConfig, p, err)
			}
		}
	}
	return nil
}

// Roots returns the configured roots joined onto Dir.
func (c *Config) Roots() []string {
	roots := make([]string, 0, len(c.Document.Roots))
	for _, r := range c.Document.Roots {
		if filepath.IsAbs(r) {
			roots = append(roots, filepath.Clean(r))
			continue
		}
		roots = append(roots, filepath.Join(c.Dir, r))
	}
	return roots
}

// ForFile returns the settings that apply to the source file at path.
func (c *Config) ForFile(path string) *FileConfig {
	rel := c.relative(path)
	doc := &c.Document
	builtin, _ := c.catalog.Set(doc.BuiltinLinters)

	sel := newSelection()
	sel.add(builtin...)
	sel.add(doc.ExtraLinters...)
	sel.remove(doc.DisabledLinters...)
	fixes := newSelection()
	fixes.add(doc.DisabledAutoFixes...)
	for _, o := range doc.Overrides {
		if !matchAny(o.Patterns, rel) {
			continue
		}
		sel.add(o.ExtraLinters...)
		sel.remove(o.DisabledLinters...)
		fixes.add(o.DisabledAutoFixes...)
	}

	fc := &FileConfig{
		Path:              path,
		Config:            c,
		Linters:           sel.names(),
		DisabledAutoFixes: fixes.names(),
	}
	for _, s := range doc.Suppressions {
		if matchAny(s.Patterns, rel) {
			fc.Suppressions = append(fc.Suppressions, s)
		}
	}
	return fc
}

func (c *Config) relative(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	dir, err := filepath.Abs(c.Dir)
	if err != nil {
		dir = c.Dir
	}
	rel, err := filepath.Rel(dir, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// matchAny reports whether rel matches a pattern. Patterns ending in "/"
// match everything below that directory.
func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		p = filepath.ToSlash(p)
		if strings.HasSuffix(p, "/") {
			if strings.HasPrefix(rel, p) {
				return true
			}
			continue
		}
		if ok, _ := filepath.Match(p, rel); ok {
			return true
		}
		if !strings.Contains(p, "/") {
			if ok, _ := filepath.Match(p, filepath.Base(rel)); ok {
				return true
			}
		}
	}
	return false
}

// selection is an ordered set of names.
type selection struct {
	order []string
	in    map[string]bool
}

func newSelection() *selection {
	return &selection{in: map[string]bool{}}
}

func (s *selection) add(names ...string) {
	for _, n := range names {
		if !s.in[n] {
			s.in[n] = true
			s.order = append(s.order, n)
		}
	}
}

func (s *selection) remove(names ...string) {
	for _, n := range names {
		if !s.in[n] {
			continue
		}
		delete(s.in, n)
		for i, m := range s.order {
			if m == n {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}

func (s *selection) names() []string {
	return append([]string(nil), s.order...)
}
