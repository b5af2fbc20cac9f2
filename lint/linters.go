// Copyright © 2024 The cstlint authors

package lint

import (
	"context"
	"strings"

	"github.com/luthersystems/cstlint/astutil"
	"github.com/luthersystems/cstlint/syntax"
)

// LineProblem is a problem found by a line check.
type LineProblem struct {
	// Col is the 0-based byte column of the problem within the line.
	Col int
	// Length is the number of bytes blamed, at least one.
	Length  int
	Message string
	Notes   []string
	// Replacement, if set, is the corrected line.
	Replacement *string
}

// LineCheck inspects one line of a file, without its line terminator.
type LineCheck func(line string) []LineProblem

// LineLinter runs a LineCheck over every line of the raw file text. It does
// not need the syntax tree.
type LineLinter struct {
	rule  *Rule
	file  *File
	check LineCheck
}

// NewLineLinter returns a Rule constructor for check.
func NewLineLinter(check LineCheck) func(*Rule, *File) (Linter, error) {
	return func(r *Rule, f *File) (Linter, error) {
		return &LineLinter{rule: r, file: f, check: check}, nil
	}
}

// IsSuppressedForFile implements Linter.
func (l *LineLinter) IsSuppressedForFile() bool {
	return l.file.Markers().SuppressesFile(l.rule.Name)
}

// LintErrors implements Linter.
func (l *LineLinter) LintErrors(ctx context.Context) ([]Finding, error) {
	text, err := l.file.Text()
	if err != nil {
		return nil, err
	}
	var out []Finding
	start := 0
	for start < len(text) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := strings.IndexByte(text[start:], '\n')
		if end < 0 {
			end = len(text)
		} else {
			end += start
		}
		line := strings.TrimSuffix(text[start:end], "\r")
		for _, p := range l.check(line) {
			out = append(out, l.finding(line, start, p))
		}
		start = end + 1
	}
	return out, nil
}

func (l *LineLinter) finding(line string, lineStart int, p LineProblem) Finding {
	n := p.Length
	if n < 1 {
		n = 1
	}
	blameEnd := p.Col + n
	if blameEnd > len(line) {
		blameEnd = len(line)
	}
	blame := ""
	if p.Col < len(line) {
		blame = line[p.Col:blameEnd]
	}
	f := Finding{
		Pos:      l.file.Position(lineStart + p.Col),
		Message:  p.Message,
		Rule:     l.rule.Name,
		Severity: l.rule.Severity,
		Blame:    blame,
		Notes:    p.Notes,
	}
	if l.rule.Fixable && p.Replacement != nil {
		f.Fix = &Fix{Original: line, Replacement: *p.Replacement}
	}
	return f
}

// NodeProblem is a problem found by an AST check.
type NodeProblem struct {
	// Node is the blamed node. It defaults to the matched node.
	Node    *syntax.Node
	Message string
	Notes   []string
	// Replacement, if set, is the corrected form of Node. The missing node
	// means Node should be removed.
	Replacement *syntax.Node
}

// ASTCheck inspects one matched node. It returns nil when the node is fine.
type ASTCheck func(m astutil.Match) (*NodeProblem, error)

// ASTLinter runs an ASTCheck on every node of the given kinds in the file's
// syntax tree.
type ASTLinter struct {
	rule  *Rule
	file  *File
	kinds []syntax.Kind
	check ASTCheck
}

// NewASTLinter returns a Rule constructor for check, applied to nodes of the
// given kinds.
func NewASTLinter(check ASTCheck, kinds ...syntax.Kind) func(*Rule, *File) (Linter, error) {
	return func(r *Rule, f *File) (Linter, error) {
		return &ASTLinter{rule: r, file: f, kinds: kinds, check: check}, nil
	}
}

// IsSuppressedForFile implements Linter.
func (l *ASTLinter) IsSuppressedForFile() bool {
	return l.file.Markers().SuppressesFile(l.rule.Name)
}

// LintErrors implements Linter.
func (l *ASTLinter) LintErrors(ctx context.Context) ([]Finding, error) {
	root, err := l.file.Tree(ctx)
	if err != nil {
		return nil, err
	}
	var out []Finding
	for _, m := range astutil.FindAll(root, l.kinds...) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := l.check(m)
		if err != nil {
			return nil, err
		}
		if p == nil {
			continue
		}
		out = append(out, l.finding(root, m, p))
	}
	return out, nil
}

func (l *ASTLinter) finding(root *syntax.Node, m astutil.Match, p *NodeProblem) Finding {
	blamed := p.Node
	offset := m.Offset + len(m.Node.LeadingText())
	if blamed == nil {
		blamed = m.Node
	} else if blamed != m.Node {
		if off, ok := syntax.TextOffsetOf(root, blamed); ok {
			offset = off
		}
	}
	f := Finding{
		Pos:      l.file.Position(offset),
		Message:  p.Message,
		Rule:     l.rule.Name,
		Severity: l.rule.Severity,
		Blame:    blamed.Text(),
		Notes:    p.Notes,
	}
	if l.rule.Fixable && p.Replacement != nil {
		f.Fix = &Fix{Original: blamed.Text(), Replacement: p.Replacement.Text()}
	}
	return f
}
