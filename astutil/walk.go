// Copyright © 2024 The cstlint authors

// Package astutil provides shared tree walking utilities for syntax trees.
//
// These helpers are used by the lint package and by rules for locating nodes
// of interest along with the context above them.
package astutil

import "github.com/luthersystems/cstlint/syntax"

// Walk calls fn for every node below and including root, depth-first in
// source order. ancestors holds the node's strict ancestors, outermost first;
// it is only valid for the duration of the call. Returning false from fn
// skips the node's children.
func Walk(root *syntax.Node, fn func(node *syntax.Node, ancestors []*syntax.Node) bool) {
	walkNode(root, nil, fn)
}

func walkNode(node *syntax.Node, ancestors []*syntax.Node, fn func(*syntax.Node, []*syntax.Node) bool) {
	if node == nil {
		return
	}
	if !fn(node, ancestors) {
		return
	}
	children := node.Children()
	if len(children) == 0 {
		return
	}
	ancestors = append(ancestors, node)
	for _, c := range children {
		walkNode(c.Node, ancestors, fn)
	}
}

// Match is a node found by FindAll together with its context.
type Match struct {
	Node      *syntax.Node
	Ancestors []*syntax.Node
	// Offset is the absolute offset of the node's first byte, trivia
	// included.
	Offset int
}

// FindAll returns every node of one of kinds in source order.
func FindAll(root *syntax.Node, kinds ...syntax.Kind) []Match {
	var out []Match
	var walk func(n *syntax.Node, ancestors []*syntax.Node, pos int)
	walk = func(n *syntax.Node, ancestors []*syntax.Node, pos int) {
		if n.Is(kinds...) {
			out = append(out, Match{
				Node:      n,
				Ancestors: append([]*syntax.Node(nil), ancestors...),
				Offset:    pos,
			})
		}
		children := n.Children()
		if len(children) == 0 {
			return
		}
		ancestors = append(ancestors, n)
		for _, c := range children {
			walk(c.Node, ancestors, pos)
			pos += c.Node.Width()
		}
	}
	walk(root, nil, 0)
	return out
}

// Tokens returns every token below root in source order.
func Tokens(root *syntax.Node) []*syntax.Node {
	var toks []*syntax.Node
	Walk(root, func(n *syntax.Node, _ []*syntax.Node) bool {
		if n.IsToken() {
			toks = append(toks, n)
		}
		return true
	})
	return toks
}

// FirstToken returns the first token below root, or nil.
func FirstToken(root *syntax.Node) *syntax.Node {
	var first *syntax.Node
	Walk(root, func(n *syntax.Node, _ []*syntax.Node) bool {
		if first != nil {
			return false
		}
		if n.IsToken() {
			first = n
			return false
		}
		return true
	})
	return first
}

// LastToken returns the last token below root, or nil.
func LastToken(root *syntax.Node) *syntax.Node {
	toks := Tokens(root)
	if len(toks) == 0 {
		return nil
	}
	return toks[len(toks)-1]
}

// Parent returns the innermost ancestor in ancestors, or nil.
func Parent(ancestors []*syntax.Node) *syntax.Node {
	if len(ancestors) == 0 {
		return nil
	}
	return ancestors[len(ancestors)-1]
}
