// Copyright © 2024 The cstlint authors

// Package csttest provides fixtures for tests that need syntax trees without
// running the external parser.
package csttest

import (
	"context"
	"fmt"

	"github.com/luthersystems/cstlint/parser"
	"github.com/luthersystems/cstlint/syntax"
)

var (
	space   = []syntax.Trivia{{Kind: "whitespace", Text: " "}}
	newline = []syntax.Trivia{{Kind: "end_of_line", Text: "\n"}}
)

// T returns a token without trivia.
func T(kind, text string) *syntax.Node {
	return syntax.NewToken(kind, text, nil, nil)
}

// TS returns a token followed by a single space.
func TS(kind, text string) *syntax.Node {
	return syntax.NewToken(kind, text, nil, space)
}

// TN returns a token followed by a newline.
func TN(kind, text string) *syntax.Node {
	return syntax.NewToken(kind, text, nil, newline)
}

// N builds a production node and panics on a schema violation.
func N(kind syntax.Kind, children ...*syntax.Node) *syntax.Node {
	return syntax.MustNode(kind, children...)
}

// Var returns a variable expression for name, which includes the "$".
func Var(name string) *syntax.Node {
	return N(syntax.KindVariableExpression, T("variable", name))
}

// Echo returns "echo <expr>;" with a newline after the semicolon.
func Echo(expr *syntax.Node) *syntax.Node {
	return N(syntax.KindEchoStatement,
		TS("echo", "echo"),
		syntax.NewList(expr),
		TN("semicolon", ";"))
}

// Script wraps statements in a script that starts with "<?hh\n" and ends with
// an empty end-of-file token.
func Script(stmts ...*syntax.Node) *syntax.Node {
	prelude := N(syntax.KindMarkupSection,
		nil,
		nil,
		N(syntax.KindMarkupSuffix, T("less_than_question", "<?"), TN("name", "hh")),
		nil)
	eof := N(syntax.KindEndOfFile, T("end_of_file", ""))
	decls := append([]*syntax.Node{prelude}, stmts...)
	decls = append(decls, eof)
	return N(syntax.KindScript, syntax.NewList(decls...))
}

// SampleSource is the text of Sample.
const SampleSource = "<?hh\n" +
	"if ($x) echo $x;\n" +
	"while ($y) { echo $y;\n}\n" +
	";\n"

// Sample returns a script with an unbraced if, a braced while and an empty
// statement.
func Sample() *syntax.Node {
	unbraced := N(syntax.KindIfStatement,
		TS("if", "if"),
		T("left_paren", "("),
		Var("$x"),
		TS("right_paren", ")"),
		Echo(Var("$x")),
		nil,
		nil)
	body := N(syntax.KindCompoundStatement,
		TS("left_brace", "{"),
		syntax.NewList(Echo(Var("$y"))),
		TN("right_brace", "}"))
	braced := N(syntax.KindWhileStatement,
		TS("while", "while"),
		T("left_paren", "("),
		Var("$y"),
		TS("right_paren", ")"),
		body)
	empty := N(syntax.KindExpressionStatement, nil, TN("semicolon", ";"))
	return Script(unbraced, braced, empty)
}

// Parser returns a parser that answers from fixtures keyed by source text.
// Sources with no fixture fail to parse.
func Parser(fixtures ...*syntax.Node) parser.Parser {
	bySource := make(map[string]*syntax.Node, len(fixtures))
	for _, f := range fixtures {
		bySource[f.FullText()] = f
	}
	return parser.Func(func(_ context.Context, path string, source []byte) (*syntax.ParseResult, error) {
		root, ok := bySource[string(source)]
		if !ok {
			return nil, fmt.Errorf("%s: no parse fixture for source", path)
		}
		return syntax.NewParseResult(root, "csttest"), nil
	})
}
