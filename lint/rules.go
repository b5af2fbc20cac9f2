// Copyright © 2024 The cstlint authors

package lint

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/luthersystems/cstlint/astutil"
	"github.com/luthersystems/cstlint/syntax"
)

// RuleNoWhitespaceAtEndOfLine reports spaces and tabs before a line break.
var RuleNoWhitespaceAtEndOfLine = &Rule{
	Name:     "no-whitespace-at-end-of-line",
	Doc:      "Report whitespace at the end of a line.\n\nTrailing whitespace is invisible in most editors and produces noisy diffs.",
	Severity: SeverityWarning,
	Fixable:  true,
	New: NewLineLinter(func(line string) []LineProblem {
		trimmed := strings.TrimRight(line, " \t")
		if len(trimmed) == len(line) {
			return nil
		}
		return []LineProblem{{
			Col:         len(trimmed),
			Length:      len(line) - len(trimmed),
			Message:     "trailing whitespace",
			Replacement: &trimmed,
		}}
	}),
}

// RuleNoTabs reports the first tab character on each line.
var RuleNoTabs = &Rule{
	Name:     "no-tabs",
	Doc:      "Report tab characters.\n\nIndent with spaces so code renders the same everywhere.",
	Severity: SeverityWarning,
	New: NewLineLinter(func(line string) []LineProblem {
		i := strings.IndexByte(line, '\t')
		if i < 0 {
			return nil
		}
		return []LineProblem{{
			Col:     i,
			Length:  1,
			Message: "tab character found; use spaces",
		}}
	}),
}

// IsHackSource reports whether contents can be given to the Hack parser.
// Plain PHP files, which open with "<?php", cannot.
func IsHackSource(contents []byte) bool {
	return !bytes.HasPrefix(contents, []byte("<?php"))
}

// bodySlots maps control flow kinds to the slot holding their body.
var bodySlots = map[syntax.Kind]string{
	syntax.KindIfStatement:    "statement",
	syntax.KindElseifClause:   "statement",
	syntax.KindElseClause:     "statement",
	syntax.KindWhileStatement: "body",
}

// RuleMustUseBracesForControlFlow reports control flow statements whose body
// is a single statement rather than a block.
var RuleMustUseBracesForControlFlow = &Rule{
	Name:     "must-use-braces-for-control-flow",
	Doc:      "Require braces around the bodies of if, elseif, else and while.\n\n\"else if\" is allowed.",
	Severity: SeverityError,
	Fixable:  true,
	Sniff:    IsHackSource,
	New: NewASTLinter(
		checkBraces,
		syntax.KindIfStatement, syntax.KindElseifClause, syntax.KindElseClause, syntax.KindWhileStatement),
}

func checkBraces(m astutil.Match) (*NodeProblem, error) {
	body, err := m.Node.Child(bodySlots[m.Node.Kind()])
	if err != nil {
		return nil, err
	}
	if body.IsMissing() || body.Is(syntax.KindCompoundStatement) {
		return nil, nil
	}
	if m.Node.Is(syntax.KindElseClause) && body.Is(syntax.KindIfStatement) {
		return nil, nil
	}
	keyword, err := m.Node.Child("keyword")
	if err != nil {
		return nil, err
	}
	block, err := addBraces(body)
	if err != nil {
		return nil, err
	}
	return &NodeProblem{
		Node:        body,
		Message:     fmt.Sprintf("%s blocks must use braces", keyword.Text()),
		Replacement: block,
	}, nil
}

// addBraces wraps stmt in a compound statement. The statement's outer
// trivia moves onto the braces.
func addBraces(stmt *syntax.Node) (*syntax.Node, error) {
	first := astutil.FirstToken(stmt)
	last := astutil.LastToken(stmt)
	if first == nil {
		return nil, fmt.Errorf("%s has no tokens", stmt.Kind())
	}
	space := []syntax.Trivia{{Kind: "whitespace", Text: " "}}
	leading, trailing := first.Leading(), last.Trailing()
	inner, err := syntax.Rewrite(stmt, func(n *syntax.Node, _ []*syntax.Node) (*syntax.Node, error) {
		switch n {
		case first:
			n = n.WithLeading()
			if first == last {
				n = n.WithTrailing()
			}
		case last:
			n = n.WithTrailing()
		}
		return n, nil
	})
	if err != nil {
		return nil, err
	}
	return syntax.NewNode(syntax.KindCompoundStatement,
		syntax.NewToken("left_brace", "{", leading, space),
		syntax.NewList(inner),
		syntax.NewToken("right_brace", "}", space, trailing))
}

// RuleNoEmptyStatements reports statements that consist of a lone
// semicolon.
var RuleNoEmptyStatements = &Rule{
	Name:     "no-empty-statements",
	Doc:      "Report empty statements.\n\nA stray semicolon is usually left over from an edit.",
	Severity: SeverityWarning,
	Fixable:  true,
	Sniff:    IsHackSource,
	New:      NewASTLinter(checkEmptyStatement, syntax.KindExpressionStatement),
}

func checkEmptyStatement(m astutil.Match) (*NodeProblem, error) {
	expr, err := m.Node.Child("expression")
	if err != nil {
		return nil, err
	}
	if !expr.IsMissing() {
		return nil, nil
	}
	return &NodeProblem{
		Message:     "this statement is empty",
		Replacement: syntax.Missing(),
	}, nil
}
