// Copyright © 2024 The cstlint authors

// Package lint runs lint rules over Hack source files and reports what they
// find.
//
// A Rule is a registry entry: a name, documentation and a factory. For each
// file the Runner asks the configuration which rules apply, constructs a
// Linter from each Rule and collects its findings. Rules share the File, so
// the file is read and parsed at most once however many rules need it.
package lint

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/luthersystems/cstlint/config"
)

// SourceExtensions are the file extensions linted when walking a directory.
// Matching is case-insensitive.
var SourceExtensions = []string{".hack", ".hh", ".php"}

// IsSourceFile reports whether path has one of SourceExtensions.
func IsSourceFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SourceExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Linter is a rule instantiated for one file.
type Linter interface {
	// IsSuppressedForFile reports whether an in-source marker disables the
	// rule for the whole file.
	IsSuppressedForFile() bool
	// LintErrors returns the rule's findings for the file.
	LintErrors(ctx context.Context) ([]Finding, error)
}

// Rule defines a single lint check.
type Rule struct {
	// Name is a short identifier for this check (e.g. "no-tabs").
	Name string

	// Doc is a human-readable description. The first line is a short summary.
	Doc string

	// Severity is the default severity for findings from this rule.
	Severity Severity

	// Extensions restricts the rule to files with these extensions. Empty
	// means SourceExtensions.
	Extensions []string

	// Sniff, if set, must accept a file's contents for the rule to run.
	Sniff func(contents []byte) bool

	// Fixable rules attach a Fix to their findings.
	Fixable bool

	// New creates the linter for one file.
	New func(r *Rule, f *File) (Linter, error)
}

// Summary returns the first line of Doc.
func (r *Rule) Summary() string {
	s, _, _ := strings.Cut(r.Doc, "\n")
	return s
}

// ShouldLintFile reports whether the rule applies to f.
func (r *Rule) ShouldLintFile(f *File) bool {
	exts := r.Extensions
	if len(exts) == 0 {
		exts = SourceExtensions
	}
	ext := strings.ToLower(filepath.Ext(f.Path))
	matched := false
	for _, e := range exts {
		if ext == e {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	if r.Sniff == nil {
		return true
	}
	src, err := f.Contents()
	if err != nil {
		// Let the linter report the read failure.
		return true
	}
	return r.Sniff(src)
}

// Instantiate creates the rule's linter for f.
func (r *Rule) Instantiate(f *File) (Linter, error) {
	if r.New == nil {
		return nil, fmt.Errorf("rule %s has no constructor", r.Name)
	}
	return r.New(r, f)
}

// Registry holds the known rules and the named builtin sets.
type Registry struct {
	rules map[string]*Rule
	order []string
	sets  map[string][]string
}

// NewRegistry returns an empty registry whose "none" set is empty and whose
// "all" set grows as rules are registered.
func NewRegistry() *Registry {
	return &Registry{
		rules: map[string]*Rule{},
		sets:  map[string][]string{config.SetNone: nil},
	}
}

// Register adds rules. When inDefault is true they also join the "default"
// set.
func (reg *Registry) Register(inDefault bool, rules ...*Rule) error {
	for _, r := range rules {
		if r.Name == "" {
			return fmt.Errorf("rule has no name")
		}
		if _, dup := reg.rules[r.Name]; dup {
			return fmt.Errorf("rule %s registered twice", r.Name)
		}
		reg.rules[r.Name] = r
		reg.order = append(reg.order, r.Name)
		if inDefault {
			reg.sets[config.SetDefault] = append(reg.sets[config.SetDefault], r.Name)
		}
	}
	return nil
}

// Lookup returns the rule registered under name.
func (reg *Registry) Lookup(name string) (*Rule, bool) {
	r, ok := reg.rules[name]
	return r, ok
}

// Has implements config.Catalog.
func (reg *Registry) Has(name string) bool {
	_, ok := reg.rules[name]
	return ok
}

// Set implements config.Catalog.
func (reg *Registry) Set(name string) ([]string, bool) {
	if name == config.SetAll {
		return reg.Names(), true
	}
	if name == config.SetDefault {
		return append([]string(nil), reg.sets[config.SetDefault]...), true
	}
	s, ok := reg.sets[name]
	return append([]string(nil), s...), ok
}

// Names returns every registered rule name in registration order.
func (reg *Registry) Names() []string {
	return append([]string(nil), reg.order...)
}

// Rules returns every registered rule sorted by name.
func (reg *Registry) Rules() []*Rule {
	rules := make([]*Rule, 0, len(reg.rules))
	for _, r := range reg.rules {
		rules = append(rules, r)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].Name < rules[j].Name })
	return rules
}

// RuleDoc returns a formatted list of rule names and summaries for help
// text.
func (reg *Registry) RuleDoc() string {
	var b strings.Builder
	for _, r := range reg.Rules() {
		fmt.Fprintf(&b, "  %-36s %s\n", r.Name, r.Summary())
	}
	return b.String()
}

// DefaultRegistry returns a registry holding the built-in rules.
func DefaultRegistry() *Registry {
	reg := NewRegistry()
	if err := reg.Register(true,
		RuleNoWhitespaceAtEndOfLine,
		RuleNoTabs,
		RuleMustUseBracesForControlFlow,
	); err != nil {
		panic(err)
	}
	if err := reg.Register(false, RuleNoEmptyStatements); err != nil {
		panic(err)
	}
	return reg
}

var _ config.Catalog = (*Registry)(nil)
