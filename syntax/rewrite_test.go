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

func identity(n *syntax.Node, _ []*syntax.Node) (*syntax.Node, error) {
	return n, nil
}

func TestRewrite_Identity(t *testing.T) {
	root := csttest.Sample()
	out, err := syntax.Rewrite(root, identity)
	require.NoError(t, err)
	assert.Same(t, root, out)
}

func TestRewrite_Locality(t *testing.T) {
	root := csttest.Sample()
	decls, _ := root.Get("declarations")
	ifStmt := decls.Elements()[1]
	whileStmt := decls.Elements()[2]
	cond, _ := ifStmt.Child("condition")
	target, _ := cond.Child("expression")

	out, err := syntax.Rewrite(root, func(n *syntax.Node, _ []*syntax.Node) (*syntax.Node, error) {
		if n == target {
			return n.WithText("$z"), nil
		}
		return n, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "<?hh\nif ($z) echo $x;\nwhile ($y) { echo $y;\n}\n;\n", out.FullText())
	assert.Equal(t, csttest.SampleSource, root.FullText(), "input tree is unchanged")

	// Every node on the path from the token to the root is new.
	newDecls, _ := out.Get("declarations")
	newIf := newDecls.Elements()[1]
	newCond, _ := newIf.Child("condition")
	assert.NotSame(t, root, out)
	assert.NotSame(t, decls, newDecls)
	assert.NotSame(t, ifStmt, newIf)
	assert.NotSame(t, cond, newCond)

	// Every subtree off the path is shared.
	assert.Same(t, whileStmt, newDecls.Elements()[2])
	assert.Same(t, decls.Elements()[0], newDecls.Elements()[0])
	for _, name := range []string{"keyword", "left_paren", "right_paren", "statement"} {
		before, _ := ifStmt.Child(name)
		after, _ := newIf.Child(name)
		assert.Same(t, before, after, name)
	}
}

func TestRewrite_AncestorChain(t *testing.T) {
	// A(B(C, D), E) as expression_statement(parenthesized_expression(...), ;)
	c := csttest.T("left_paren", "(")
	d := csttest.Var("$d")
	rp := csttest.T("right_paren", ")")
	b := csttest.N(syntax.KindParenthesizedExpression, c, d, rp)
	e := csttest.T("semicolon", ";")
	a := csttest.N(syntax.KindExpressionStatement, b, e)

	seen := map[*syntax.Node][]*syntax.Node{}
	var order []*syntax.Node
	_, err := syntax.Rewrite(a, func(n *syntax.Node, ancestors []*syntax.Node) (*syntax.Node, error) {
		seen[n] = append([]*syntax.Node(nil), ancestors...)
		order = append(order, n)
		return n, nil
	})
	require.NoError(t, err)

	assert.Equal(t, []*syntax.Node{a, b}, seen[c])
	assert.Equal(t, []*syntax.Node{a}, seen[e])
	assert.Equal(t, []*syntax.Node{a}, seen[b])
	assert.Empty(t, seen[a])

	// Post-order, left to right.
	dTok, _ := d.Child("expression")
	assert.Equal(t, []*syntax.Node{c, dTok, d, rp, b, e, a}, order)
}

func TestRewrite_InitialAncestors(t *testing.T) {
	outer := csttest.Sample()
	v := csttest.Var("$q")
	var got []*syntax.Node
	_, err := syntax.Rewrite(v, func(n *syntax.Node, ancestors []*syntax.Node) (*syntax.Node, error) {
		if n == v {
			got = ancestors
		}
		return n, nil
	}, outer)
	require.NoError(t, err)
	assert.Equal(t, []*syntax.Node{outer}, got)
}

func TestRewrite_ErrorAborts(t *testing.T) {
	root := csttest.Sample()
	boom := errors.New("boom")
	calls := 0
	out, err := syntax.Rewrite(root, func(n *syntax.Node, _ []*syntax.Node) (*syntax.Node, error) {
		calls++
		if n.Kind() == syntax.KindEchoStatement {
			return nil, boom
		}
		return n.WithText("changed"), nil
	})
	require.ErrorIs(t, err, boom)
	assert.Nil(t, out)
	assert.Equal(t, csttest.SampleSource, root.FullText())
	assert.Greater(t, calls, 1)
}

func TestRewrite_NilRemovesListElement(t *testing.T) {
	root := csttest.Sample()
	out, err := syntax.Rewrite(root, func(n *syntax.Node, _ []*syntax.Node) (*syntax.Node, error) {
		if n.Kind() == syntax.KindExpressionStatement {
			return nil, nil
		}
		return n, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "<?hh\nif ($x) echo $x;\nwhile ($y) { echo $y;\n}\n", out.FullText())
	assertWidthAdditive(t, out)
}

func TestReplace(t *testing.T) {
	root := csttest.Sample()
	decls, _ := root.Get("declarations")
	empty := decls.Elements()[3]
	out := syntax.Replace(root, empty, csttest.Echo(csttest.Var("$w")))
	assert.Equal(t, "<?hh\nif ($x) echo $x;\nwhile ($y) { echo $y;\n}\necho $w;\n", out.FullText())

	assert.Same(t, root, syntax.Replace(root, csttest.Var("$absent"), csttest.Var("$w")))
}
