// Copyright © 2024 The cstlint authors

package syntax_test

import (
	"errors"
	"testing"

	"github.com/luthersystems/cstlint/csttest"
	"github.com/luthersystems/cstlint/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertWidthAdditive(t *testing.T, n *syntax.Node) {
	t.Helper()
	if n.IsToken() {
		assert.Equal(t, len(n.FullText()), n.Width(), "token %v", n)
		return
	}
	sum := 0
	for _, c := range n.Children() {
		sum += c.Node.Width()
		assertWidthAdditive(t, c.Node)
	}
	assert.Equal(t, sum, n.Width(), "node %v", n)
}

func TestWidthAdditivity(t *testing.T) {
	root := csttest.Sample()
	assertWidthAdditive(t, root)
	assert.Equal(t, len(csttest.SampleSource), root.Width())
	assert.Equal(t, csttest.SampleSource, root.FullText())
}

func TestChildrenOrder(t *testing.T) {
	n := csttest.N(syntax.KindParenthesizedExpression,
		csttest.T("left_paren", "("), csttest.Var("$a"), csttest.T("right_paren", ")"))
	var names []string
	for _, c := range n.Children() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"left_paren", "expression", "right_paren"}, names)

	slots, ok := syntax.Slots(syntax.KindParenthesizedExpression)
	require.True(t, ok)
	assert.Equal(t, "parenthesized_expression_expression", slots[1].Key)

	qslots, ok := syntax.Slots(syntax.KindQualifiedNameExpression)
	require.True(t, ok)
	assert.Equal(t, "qualified_name_expression", qslots[0].Key)
}

func TestNewNode_ChildCount(t *testing.T) {
	_, err := syntax.NewNode(syntax.KindElseClause, csttest.T("else", "else"))
	require.Error(t, err)

	_, err = syntax.NewNode(syntax.Kind("no_such_production"))
	require.ErrorIs(t, err, syntax.ErrUnknownSlot)
}

func TestMissing(t *testing.T) {
	m := syntax.Missing()
	assert.True(t, m.IsMissing())
	assert.Equal(t, 0, m.Width())
	assert.Empty(t, m.Children())

	// A production whose children are all elided is missing too.
	clause := csttest.N(syntax.KindElseClause, nil, nil)
	assert.True(t, clause.IsMissing())

	// An empty end-of-file token has zero width but is a token.
	eof := csttest.T("end_of_file", "")
	assert.Equal(t, 0, eof.Width())
	assert.False(t, eof.IsMissing())
	assert.False(t, csttest.N(syntax.KindEndOfFile, eof).IsMissing())

	assert.False(t, csttest.Var("$x").IsMissing())
}

func TestNewList_DropsMissing(t *testing.T) {
	assert.Same(t, syntax.Missing(), syntax.NewList())
	assert.Same(t, syntax.Missing(), syntax.NewList(nil, syntax.Missing()))

	l := syntax.NewList(csttest.Var("$a"), nil, csttest.Var("$b"))
	require.True(t, l.IsList())
	require.Len(t, l.Elements(), 2)
	c, err := l.Child("1")
	require.NoError(t, err)
	assert.Equal(t, "$b", c.Text())
	_, err = l.Child("2")
	assert.ErrorIs(t, err, syntax.ErrUnknownSlot)
}

func TestGet_Narrowing(t *testing.T) {
	spec := csttest.N(syntax.KindSimpleTypeSpecifier, csttest.T("int", "int"))
	attr := csttest.N(syntax.KindXHPSimpleClassAttribute, spec)

	got, err := attr.Get("type")
	require.NoError(t, err)
	assert.Same(t, spec, got)

	bad := csttest.N(syntax.KindXHPSimpleClassAttribute, csttest.T("name", "Foo"))
	_, err = bad.Get("type")
	require.Error(t, err)
	assert.True(t, errors.Is(err, syntax.ErrTypeMismatch))
	var tm *syntax.TypeMismatchError
	require.ErrorAs(t, err, &tm)
	assert.Equal(t, syntax.KindXHPSimpleClassAttribute, tm.Parent)
	assert.Equal(t, "type", tm.Slot)
	assert.Equal(t, syntax.KindToken, tm.Got)
	assert.Equal(t, "xhp_simple_class_attribute.type: expected simple_type_specifier, got token", err.Error())

	// Untyped access never fails on kind.
	raw, err := bad.Child("type")
	require.NoError(t, err)
	assert.Equal(t, "Foo", raw.Text())

	_, err = attr.Child("nope")
	assert.ErrorIs(t, err, syntax.ErrUnknownSlot)
}

func TestChildAsAndAs(t *testing.T) {
	stmt := csttest.N(syntax.KindExpressionStatement, csttest.Var("$a"), csttest.T("semicolon", ";"))
	e, err := stmt.ChildAs("expression", syntax.KindVariableExpression, syntax.KindLiteralExpression)
	require.NoError(t, err)
	assert.Equal(t, syntax.KindVariableExpression, e.Kind())

	_, err = stmt.ChildAs("expression", syntax.KindLiteralExpression)
	assert.ErrorIs(t, err, syntax.ErrTypeMismatch)

	_, err = e.As(syntax.KindBinaryExpression)
	assert.ErrorIs(t, err, syntax.ErrTypeMismatch)
}

func TestHasAndWith(t *testing.T) {
	stmt := csttest.N(syntax.KindReturnStatement, csttest.TS("return", "return"), nil, csttest.T("semicolon", ";"))
	assert.True(t, stmt.Has("keyword"))
	assert.False(t, stmt.Has("expression"))
	assert.Equal(t, "return ;", stmt.FullText())

	kw, _ := stmt.Child("keyword")
	same, err := stmt.With("keyword", kw)
	require.NoError(t, err)
	assert.Same(t, stmt, same)

	with, err := stmt.With("expression", csttest.Var("$v"))
	require.NoError(t, err)
	assert.NotSame(t, stmt, with)
	assert.Equal(t, "return $v;", with.FullText())
	assert.Equal(t, "return ;", stmt.FullText(), "original is unchanged")
}

func TestTokenTrivia(t *testing.T) {
	tok := syntax.NewToken("name", "foo",
		[]syntax.Trivia{{Kind: "whitespace", Text: "  "}},
		[]syntax.Trivia{{Kind: "single_line_comment", Text: "// c"}, {Kind: "end_of_line", Text: "\n"}})
	assert.Equal(t, 2+3+5, tok.Width())
	assert.Equal(t, "foo", tok.Text())
	assert.Equal(t, "  ", tok.LeadingText())
	assert.Equal(t, "// c\n", tok.TrailingText())
	assert.Equal(t, "name", tok.TokenKind())

	bare := tok.WithLeading().WithTrailing()
	assert.Equal(t, "foo", bare.FullText())
	assert.Same(t, tok, tok.WithText("foo"))
	assert.Equal(t, "  bar// c\n", tok.WithText("bar").FullText())
}

func TestText_StripsOuterTrivia(t *testing.T) {
	root := csttest.Sample()
	decls, err := root.Get("declarations")
	require.NoError(t, err)
	ifStmt := decls.Elements()[1]
	assert.Equal(t, "if ($x) echo $x;\n", ifStmt.FullText())
	assert.Equal(t, "if ($x) echo $x;", ifStmt.Text())
}

func TestOffsetOfAndLineCol(t *testing.T) {
	root := csttest.Sample()
	decls, _ := root.Get("declarations")
	while := decls.Elements()[2]

	off, ok := syntax.OffsetOf(root, while)
	require.True(t, ok)
	assert.Equal(t, len("<?hh\nif ($x) echo $x;\n"), off)
	line, col := syntax.LineCol(root.FullText(), off)
	assert.Equal(t, 3, line)
	assert.Equal(t, 1, col)

	_, ok = syntax.OffsetOf(root, csttest.Var("$nope"))
	assert.False(t, ok)

	line, col = syntax.LineCol("ab\ncd", 4)
	assert.Equal(t, 2, line)
	assert.Equal(t, 2, col)
}
