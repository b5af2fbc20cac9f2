// Copyright © 2024 The cstlint authors

package syntax_test

import (
	"strings"
	"testing"

	"github.com/luthersystems/cstlint/csttest"
	"github.com/luthersystems/cstlint/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const qualifiedNameJSON = `{
  "parse_tree": {
    "kind": "expression_statement",
    "expression_statement_expression": {
      "kind": "qualified_name_expression",
      "qualified_name_expression": {
        "kind": "token",
        "token": {"kind": "name", "width": 7, "leading": [{"kind": "whitespace", "width": 2}], "trailing": []}
      }
    },
    "expression_statement_semicolon": {
      "kind": "token",
      "token": {"kind": "semicolon", "text": ";", "leading": [], "trailing": [{"kind": "end_of_line", "text": "\n"}]}
    }
  },
  "program_text": "  Foo\\Bar;\n",
  "version": "test"
}`

func TestDecodeParseResult(t *testing.T) {
	pr, err := syntax.DecodeParseResult(strings.NewReader(qualifiedNameJSON))
	require.NoError(t, err)
	assert.Equal(t, "test", pr.Version)

	root, err := pr.Build()
	require.NoError(t, err)
	assert.Equal(t, syntax.KindExpressionStatement, root.Kind())
	assert.Equal(t, pr.Text, root.FullText())

	expr, err := root.Get("expression")
	require.NoError(t, err)
	name, err := expr.Child("expression")
	require.NoError(t, err)
	assert.Equal(t, `Foo\Bar`, name.Text())
	assert.Equal(t, "  ", name.LeadingText())
}

func TestFromParseResult_RoundTrip(t *testing.T) {
	root := csttest.Sample()
	pr := syntax.NewParseResult(root, "v1")
	rebuilt, err := pr.Build()
	require.NoError(t, err)
	assert.Equal(t, root.FullText(), rebuilt.FullText())
	assertWidthAdditive(t, rebuilt)
}

func TestFromParseResult_Offset(t *testing.T) {
	source := "<?hh\n$a;"
	tree := map[string]interface{}{
		"kind": "variable_expression",
		"variable_expression": map[string]interface{}{
			"kind":  "token",
			"token": map[string]interface{}{"kind": "variable", "width": 2},
		},
	}
	n, err := syntax.FromParseResult(tree, source, 5)
	require.NoError(t, err)
	assert.Equal(t, "$a", n.FullText())

	_, err = syntax.FromParseResult(tree, source, 7)
	require.ErrorIs(t, err, syntax.ErrMalformedParseResult)
}

func TestFromParseResult_Malformed(t *testing.T) {
	tok := func(text string) map[string]interface{} {
		return map[string]interface{}{"kind": "token", "token": map[string]interface{}{"kind": "x", "text": text}}
	}
	cases := []struct {
		name   string
		tree   map[string]interface{}
		source string
		reason string
	}{
		{"no kind", map[string]interface{}{}, "", "no kind"},
		{"unknown kind", map[string]interface{}{"kind": "frobnicate"}, "", "unknown node kind"},
		{
			"missing key",
			map[string]interface{}{"kind": "else_clause", "else_clause_keyword": tok("else")},
			"else",
			`no key "else_clause_statement"`,
		},
		{
			"text disagrees with source",
			map[string]interface{}{"kind": "variable_expression", "variable_expression": tok("$b")},
			"$a",
			"does not match source",
		},
		{
			"list without elements",
			map[string]interface{}{"kind": "list"},
			"",
			"no elements",
		},
		{
			"unexpected node key",
			map[string]interface{}{
				"kind":                     "variable_expression",
				"variable_expression":      tok("$a"),
				"variable_expression_name": tok("$a"),
			},
			"$a",
			`unexpected key "variable_expression_name"`,
		},
		{
			"unexpected token descriptor key",
			map[string]interface{}{"kind": "token", "token": map[string]interface{}{"kind": "x", "text": "a", "value": "a"}},
			"a",
			`unexpected key "value"`,
		},
		{
			"unexpected token wrapper key",
			map[string]interface{}{"kind": "token", "token": map[string]interface{}{"kind": "x", "text": "a"}, "width": 1},
			"a",
			`unexpected key "width"`,
		},
		{
			"unexpected trivia key",
			map[string]interface{}{"kind": "token", "token": map[string]interface{}{
				"kind": "x", "text": "a",
				"trailing": []interface{}{map[string]interface{}{"kind": "whitespace", "text": " ", "comment": true}},
			}},
			"a ",
			`unexpected key "comment"`,
		},
		{
			"unexpected list key",
			map[string]interface{}{"kind": "list", "elements": []interface{}{}, "separator": ","},
			"",
			`unexpected key "separator"`,
		},
		{
			"unexpected missing key",
			map[string]interface{}{"kind": "missing", "text": ""},
			"",
			`unexpected key "text"`,
		},
		{
			"token without text or width",
			map[string]interface{}{"kind": "token", "token": map[string]interface{}{"kind": "x"}},
			"abc",
			"neither text nor width",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := syntax.FromParseResult(tc.tree, tc.source, 0)
			require.ErrorIs(t, err, syntax.ErrMalformedParseResult)
			var me *syntax.MalformedError
			require.ErrorAs(t, err, &me)
			assert.Contains(t, me.Reason, tc.reason)
		})
	}
}

func TestBuild_WidthMismatch(t *testing.T) {
	pr := syntax.NewParseResult(csttest.Var("$a"), "v")
	pr.Text += "trailing junk"
	_, err := pr.Build()
	require.ErrorIs(t, err, syntax.ErrMalformedParseResult)
}

func TestDecodeParseResult_Invalid(t *testing.T) {
	_, err := syntax.DecodeParseResult(strings.NewReader("{"))
	require.ErrorIs(t, err, syntax.ErrMalformedParseResult)

	_, err = syntax.DecodeParseResult(strings.NewReader(`{"program_text": ""}`))
	require.ErrorIs(t, err, syntax.ErrMalformedParseResult)
}

func TestFromParseResult_AcceptsOffsets(t *testing.T) {
	tree := map[string]interface{}{"kind": "token", "token": map[string]interface{}{
		"kind": "variable", "offset": 0, "width": 2,
		"trailing": []interface{}{map[string]interface{}{"kind": "end_of_line", "offset": 2, "width": 1}},
	}}
	n, err := syntax.FromParseResult(tree, "$a\n", 0)
	require.NoError(t, err)
	assert.Equal(t, "$a", n.Text())
	assert.Equal(t, "$a\n", n.FullText())
}
