// Copyright © 2024 The cstlint authors

// Package syntax implements an immutable, full-fidelity concrete syntax tree
// for Hack source files.
//
// Every byte of the original source is owned by exactly one token, either as
// token text or as leading/trailing trivia, so FullText on a tree built from
// a parse result reproduces the source exactly. Nodes are never mutated;
// edits produce new nodes that share unchanged subtrees with the original
// (see Rewrite).
package syntax

import (
	"fmt"
	"strconv"
	"strings"
)

// Trivia is non-semantic source text attached to a token.
type Trivia struct {
	Kind string // whitespace, end_of_line, single_line_comment, ...
	Text string
}

// Node is a single syntax tree node. A node is a token, a list, the missing
// node, or a grammar production with the child slots its kind declares.
type Node struct {
	kind     Kind
	width    int
	hasToken bool
	children []*Node
	tok      *tokenData
}

type tokenData struct {
	kind     string
	text     string
	leading  []Trivia
	trailing []Trivia
}

// Child is a named child of a node.
type Child struct {
	Name string
	Node *Node
}

var missing = &Node{kind: KindMissing}

// Missing returns the node representing an elided optional element.
func Missing() *Node {
	return missing
}

// NewNode constructs a production node of the given kind. The number of
// children must match the kind's schema; nil children are stored as missing.
func NewNode(kind Kind, children ...*Node) (*Node, error) {
	e, ok := schema[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a production", ErrUnknownSlot, kind)
	}
	if len(children) != len(e.slots) {
		return nil, fmt.Errorf("%s: expected %d children, got %d", kind, len(e.slots), len(children))
	}
	return newComposite(kind, children), nil
}

// MustNode is like NewNode but panics on error. It is intended for building
// replacement trees of a statically known shape.
func MustNode(kind Kind, children ...*Node) *Node {
	n, err := NewNode(kind, children...)
	if err != nil {
		panic(err)
	}
	return n
}

// NewList constructs a list node. Missing and nil elements are dropped; a
// list with no remaining elements is the missing node.
func NewList(elems ...*Node) *Node {
	var kept []*Node
	for _, e := range elems {
		if e == nil || e.kind == KindMissing {
			continue
		}
		kept = append(kept, e)
	}
	if len(kept) == 0 {
		return missing
	}
	return newComposite(KindList, kept)
}

// NewToken constructs a token leaf.
func NewToken(kind, text string, leading, trailing []Trivia) *Node {
	t := &tokenData{
		kind:     kind,
		text:     text,
		leading:  leading,
		trailing: trailing,
	}
	return &Node{
		kind:     KindToken,
		width:    triviaWidth(leading) + len(text) + triviaWidth(trailing),
		hasToken: true,
		tok:      t,
	}
}

func newComposite(kind Kind, children []*Node) *Node {
	n := &Node{kind: kind, children: make([]*Node, len(children))}
	for i, c := range children {
		if c == nil {
			c = missing
		}
		n.children[i] = c
		n.width += c.width
		n.hasToken = n.hasToken || c.hasToken
	}
	return n
}

// withChildren returns a node of n's kind holding children. It is used by
// the rewrite engine and by With; lists drop missing elements.
func (n *Node) withChildren(children []*Node) *Node {
	if n.kind == KindList {
		return NewList(children...)
	}
	return newComposite(n.kind, children)
}

func triviaWidth(ts []Trivia) int {
	w := 0
	for _, t := range ts {
		w += len(t.Text)
	}
	return w
}

// Kind returns the node's kind.
func (n *Node) Kind() Kind {
	return n.kind
}

// Width returns the byte length of the node's full text, trivia included.
func (n *Node) Width() int {
	return n.width
}

// IsMissing reports whether n represents an elided optional element: it has
// zero width and no token below it.
func (n *Node) IsMissing() bool {
	return n.width == 0 && !n.hasToken
}

// IsToken reports whether n is a token leaf.
func (n *Node) IsToken() bool {
	return n.kind == KindToken
}

// IsList reports whether n is a list.
func (n *Node) IsList() bool {
	return n.kind == KindList
}

// Children returns n's children in declaration order. List elements are
// named by their index. Tokens and the missing node have no children.
func (n *Node) Children() []Child {
	if len(n.children) == 0 {
		return nil
	}
	out := make([]Child, len(n.children))
	if n.kind == KindList {
		for i, c := range n.children {
			out[i] = Child{Name: strconv.Itoa(i), Node: c}
		}
		return out
	}
	slots := schema[n.kind].slots
	for i, c := range n.children {
		out[i] = Child{Name: slots[i].Name, Node: c}
	}
	return out
}

// Elements returns the elements of a list. Any other node yields nil.
func (n *Node) Elements() []*Node {
	if n.kind != KindList {
		return nil
	}
	return n.children
}

func (n *Node) slotIndex(name string) (int, error) {
	if n.kind == KindList {
		i, err := strconv.Atoi(name)
		if err != nil || i < 0 || i >= len(n.children) {
			return 0, fmt.Errorf("%w: list has no element %q", ErrUnknownSlot, name)
		}
		return i, nil
	}
	e, ok := schema[n.kind]
	if !ok {
		return 0, fmt.Errorf("%w: %s has no children", ErrUnknownSlot, n.kind)
	}
	i, ok := e.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s has no child %q", ErrUnknownSlot, n.kind, name)
	}
	return i, nil
}

// Child returns the named child without checking its kind.
func (n *Node) Child(name string) (*Node, error) {
	i, err := n.slotIndex(name)
	if err != nil {
		return nil, err
	}
	return n.children[i], nil
}

// Has reports whether the named child exists and is not missing.
func (n *Node) Has(name string) bool {
	c, err := n.Child(name)
	return err == nil && !c.IsMissing()
}

// Get returns the named child narrowed to the kinds the schema declares for
// its slot. A missing child fails the narrowing unless the slot accepts any
// kind.
func (n *Node) Get(name string) (*Node, error) {
	i, err := n.slotIndex(name)
	if err != nil {
		return nil, err
	}
	var want []Kind
	if n.kind != KindList {
		want = schema[n.kind].slots[i].Want
	}
	return n.narrow(name, n.children[i], want)
}

// ChildAs returns the named child after asserting it has one of kinds.
func (n *Node) ChildAs(name string, kinds ...Kind) (*Node, error) {
	c, err := n.Child(name)
	if err != nil {
		return nil, err
	}
	return n.narrow(name, c, kinds)
}

func (n *Node) narrow(name string, c *Node, kinds []Kind) (*Node, error) {
	if len(kinds) == 0 || c.Is(kinds...) {
		return c, nil
	}
	return nil, &TypeMismatchError{Parent: n.kind, Slot: name, Want: kinds, Got: c.kind}
}

// Is reports whether n has one of kinds.
func (n *Node) Is(kinds ...Kind) bool {
	for _, k := range kinds {
		if n.kind == k {
			return true
		}
	}
	return false
}

// As returns n if it has one of kinds and a TypeMismatchError otherwise.
func (n *Node) As(kinds ...Kind) (*Node, error) {
	if n.Is(kinds...) {
		return n, nil
	}
	return nil, &TypeMismatchError{Want: kinds, Got: n.kind}
}

// With returns a copy of n whose named child is value. If value is already
// the child, n itself is returned.
func (n *Node) With(name string, value *Node) (*Node, error) {
	i, err := n.slotIndex(name)
	if err != nil {
		return nil, err
	}
	if value == nil {
		value = missing
	}
	if n.children[i] == value {
		return n, nil
	}
	children := make([]*Node, len(n.children))
	copy(children, n.children)
	children[i] = value
	return n.withChildren(children), nil
}

// TokenKind returns the token kind of a token, or "" for other nodes.
func (n *Node) TokenKind() string {
	if n.tok == nil {
		return ""
	}
	return n.tok.kind
}

// Leading returns a token's leading trivia.
func (n *Node) Leading() []Trivia {
	if n.tok == nil {
		return nil
	}
	return n.tok.leading
}

// Trailing returns a token's trailing trivia.
func (n *Node) Trailing() []Trivia {
	if n.tok == nil {
		return nil
	}
	return n.tok.trailing
}

// LeadingText returns the text of the leading trivia of n's first token.
func (n *Node) LeadingText() string {
	t := firstToken(n)
	if t == nil {
		return ""
	}
	return joinTrivia(t.tok.leading)
}

// TrailingText returns the text of the trailing trivia of n's last token.
func (n *Node) TrailingText() string {
	t := lastToken(n)
	if t == nil {
		return ""
	}
	return joinTrivia(t.tok.trailing)
}

func joinTrivia(ts []Trivia) string {
	var b strings.Builder
	for _, t := range ts {
		b.WriteString(t.Text)
	}
	return b.String()
}

// WithLeading returns a token with its leading trivia replaced.
func (n *Node) WithLeading(ts ...Trivia) *Node {
	if n.tok == nil {
		return n
	}
	return NewToken(n.tok.kind, n.tok.text, ts, n.tok.trailing)
}

// WithTrailing returns a token with its trailing trivia replaced.
func (n *Node) WithTrailing(ts ...Trivia) *Node {
	if n.tok == nil {
		return n
	}
	return NewToken(n.tok.kind, n.tok.text, n.tok.leading, ts)
}

// WithText returns a token with its text replaced, keeping its trivia. The
// token itself is returned when the text is unchanged.
func (n *Node) WithText(text string) *Node {
	if n.tok == nil || n.tok.text == text {
		return n
	}
	return NewToken(n.tok.kind, text, n.tok.leading, n.tok.trailing)
}

// FullText returns the exact source text spanned by n, trivia included.
func (n *Node) FullText() string {
	var b strings.Builder
	b.Grow(n.width)
	n.writeTo(&b)
	return b.String()
}

func (n *Node) writeTo(b *strings.Builder) {
	if n.tok != nil {
		for _, t := range n.tok.leading {
			b.WriteString(t.Text)
		}
		b.WriteString(n.tok.text)
		for _, t := range n.tok.trailing {
			b.WriteString(t.Text)
		}
		return
	}
	for _, c := range n.children {
		c.writeTo(b)
	}
}

// Text returns n's source text without the leading trivia of its first token
// and the trailing trivia of its last token. For a token this is the token
// text.
func (n *Node) Text() string {
	if n.tok != nil {
		return n.tok.text
	}
	full := n.FullText()
	return full[len(n.LeadingText()) : len(full)-len(n.TrailingText())]
}

func (n *Node) String() string {
	if n.tok != nil {
		return fmt.Sprintf("token(%s %q)", n.tok.kind, n.tok.text)
	}
	return fmt.Sprintf("%s[%d]", n.kind, n.width)
}

func firstToken(n *Node) *Node {
	if n.tok != nil {
		return n
	}
	for _, c := range n.children {
		if t := firstToken(c); t != nil {
			return t
		}
	}
	return nil
}

func lastToken(n *Node) *Node {
	if n.tok != nil {
		return n
	}
	for i := len(n.children) - 1; i >= 0; i-- {
		if t := lastToken(n.children[i]); t != nil {
			return t
		}
	}
	return nil
}
