// Copyright © 2024 The cstlint authors

package syntax

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
)

// ParseResult is the serialized output of the external parser.
type ParseResult struct {
	Tree    map[string]interface{} `json:"parse_tree" msgpack:"parse_tree"`
	Text    string                 `json:"program_text" msgpack:"program_text"`
	Version string                 `json:"version,omitempty" msgpack:"version"`
}

// DecodeParseResult reads a JSON encoded parse result from r.
func DecodeParseResult(r io.Reader) (*ParseResult, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var pr ParseResult
	if err := dec.Decode(&pr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedParseResult, err)
	}
	if pr.Tree == nil {
		return nil, malformed("parse_tree", 0, "missing parse tree")
	}
	return &pr, nil
}

// Build constructs the syntax tree described by pr.
func (pr *ParseResult) Build() (*Node, error) {
	root, err := FromParseResult(pr.Tree, pr.Text, 0)
	if err != nil {
		return nil, err
	}
	if root.Width() != len(pr.Text) {
		return nil, malformed("parse_tree", root.Width(),
			"tree spans %d bytes but program text has %d", root.Width(), len(pr.Text))
	}
	return root, nil
}

// FromParseResult converts a decoded parse tree into a Node. source is the
// original program text and offset the absolute byte offset at which tree
// starts. Children are resolved in declaration order, each starting where
// its previous sibling ended.
func FromParseResult(tree map[string]interface{}, source string, offset int) (*Node, error) {
	b := &builder{source: source}
	n, _, err := b.node(tree, "parse_tree", offset)
	return n, err
}

type builder struct {
	source string
}

func (b *builder) node(m map[string]interface{}, path string, pos int) (*Node, int, error) {
	kind, ok := m["kind"].(string)
	if !ok {
		return nil, pos, malformed(path, pos, "node has no kind")
	}
	switch Kind(kind) {
	case KindMissing:
		if err := onlyKeys(m, path, pos); err != nil {
			return nil, pos, err
		}
		return missing, pos, nil
	case KindToken:
		return b.token(m, path, pos)
	case KindList:
		return b.list(m, path, pos)
	}
	e, ok := schema[Kind(kind)]
	if !ok {
		return nil, pos, malformed(path, pos, "unknown node kind %q", kind)
	}
	if err := onlyKeys(m, path, pos, e.keys...); err != nil {
		return nil, pos, err
	}
	children := make([]*Node, len(e.slots))
	for i, s := range e.slots {
		raw, ok := m[s.Key]
		if !ok {
			return nil, pos, malformed(path, pos, "%s has no key %q", kind, s.Key)
		}
		cm, ok := raw.(map[string]interface{})
		if !ok {
			return nil, pos, malformed(path+"."+s.Key, pos, "expected object, got %T", raw)
		}
		var err error
		children[i], pos, err = b.node(cm, path+"."+s.Key, pos)
		if err != nil {
			return nil, pos, err
		}
	}
	return newComposite(Kind(kind), children), pos, nil
}

func (b *builder) list(m map[string]interface{}, path string, pos int) (*Node, int, error) {
	raw, ok := m["elements"]
	if !ok {
		return nil, pos, malformed(path, pos, "list has no elements")
	}
	if err := onlyKeys(m, path, pos, "elements"); err != nil {
		return nil, pos, err
	}
	elems, ok := raw.([]interface{})
	if !ok {
		return nil, pos, malformed(path+".elements", pos, "expected array, got %T", raw)
	}
	children := make([]*Node, len(elems))
	for i, el := range elems {
		ep := path + ".elements[" + strconv.Itoa(i) + "]"
		em, ok := el.(map[string]interface{})
		if !ok {
			return nil, pos, malformed(ep, pos, "expected object, got %T", el)
		}
		var err error
		children[i], pos, err = b.node(em, ep, pos)
		if err != nil {
			return nil, pos, err
		}
	}
	return NewList(children...), pos, nil
}

func (b *builder) token(m map[string]interface{}, path string, pos int) (*Node, int, error) {
	t, ok := m["token"].(map[string]interface{})
	if !ok {
		return nil, pos, malformed(path, pos, "token has no token descriptor")
	}
	if err := onlyKeys(m, path, pos, "token"); err != nil {
		return nil, pos, err
	}
	path += ".token"
	if err := onlyKeys(t, path, pos, tokenKeys...); err != nil {
		return nil, pos, err
	}
	kind, ok := t["kind"].(string)
	if !ok {
		return nil, pos, malformed(path, pos, "token has no kind")
	}
	leading, pos, err := b.trivia(t["leading"], path+".leading", pos)
	if err != nil {
		return nil, pos, err
	}
	text, err := b.text(t, path, pos)
	if err != nil {
		return nil, pos, err
	}
	pos += len(text)
	trailing, pos, err := b.trivia(t["trailing"], path+".trailing", pos)
	if err != nil {
		return nil, pos, err
	}
	return NewToken(kind, text, leading, trailing), pos, nil
}

func (b *builder) trivia(raw interface{}, path string, pos int) ([]Trivia, int, error) {
	if raw == nil {
		return nil, pos, nil
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, pos, malformed(path, pos, "expected array, got %T", raw)
	}
	var out []Trivia
	for i, it := range items {
		ip := path + "[" + strconv.Itoa(i) + "]"
		m, ok := it.(map[string]interface{})
		if !ok {
			return nil, pos, malformed(ip, pos, "expected object, got %T", it)
		}
		kind, ok := m["kind"].(string)
		if !ok {
			return nil, pos, malformed(ip, pos, "trivia has no kind")
		}
		if err := onlyKeys(m, ip, pos, triviaKeys...); err != nil {
			return nil, pos, err
		}
		text, err := b.text(m, ip, pos)
		if err != nil {
			return nil, pos, err
		}
		pos += len(text)
		out = append(out, Trivia{Kind: kind, Text: text})
	}
	return out, pos, nil
}

// Keys accepted in token and trivia descriptors besides "kind". hh_parse
// also emits each item's absolute "offset", which is recomputed here.
var (
	tokenKeys  = []string{"text", "width", "offset", "leading", "trailing"}
	triviaKeys = []string{"text", "width", "offset"}
)

// onlyKeys fails if m has a key other than "kind" and allowed.
func onlyKeys(m map[string]interface{}, path string, pos int, allowed ...string) error {
	for k := range m {
		if k == "kind" || contains(allowed, k) {
			continue
		}
		return malformed(path, pos, "unexpected key %q", k)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

// text resolves the text of a token or trivia descriptor starting at pos.
// An explicit "text" must agree with the source; otherwise "width" bytes
// are taken from the source.
func (b *builder) text(m map[string]interface{}, path string, pos int) (string, error) {
	width, hasWidth := asInt(m["width"])
	if raw, ok := m["text"]; ok {
		text, ok := raw.(string)
		if !ok {
			return "", malformed(path, pos, "text is %T, not a string", raw)
		}
		if hasWidth && width != len(text) {
			return "", malformed(path, pos, "width %d does not match text of length %d", width, len(text))
		}
		if b.source != "" {
			if pos+len(text) > len(b.source) || b.source[pos:pos+len(text)] != text {
				return "", malformed(path, pos, "text %q does not match source", text)
			}
		}
		return text, nil
	}
	if !hasWidth {
		return "", malformed(path, pos, "descriptor has neither text nor width")
	}
	if width < 0 || pos+width > len(b.source) {
		return "", malformed(path, pos, "width %d runs past end of source (%d bytes)", width, len(b.source))
	}
	return b.source[pos : pos+width], nil
}

// asInt accepts the numeric representations produced by encoding/json (with
// or without UseNumber) and by MessagePack decoding.
func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		if n > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	case float32:
		return int(n), float32(int(n)) == n
	case float64:
		return int(n), float64(int(n)) == n
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	}
	return 0, false
}

// Encode serializes n into the parse result format read by FromParseResult.
func Encode(n *Node) map[string]interface{} {
	switch n.kind {
	case KindMissing:
		return map[string]interface{}{"kind": string(KindMissing)}
	case KindToken:
		return map[string]interface{}{
			"kind": string(KindToken),
			"token": map[string]interface{}{
				"kind":     n.tok.kind,
				"text":     n.tok.text,
				"width":    len(n.tok.text),
				"leading":  encodeTrivia(n.tok.leading),
				"trailing": encodeTrivia(n.tok.trailing),
			},
		}
	case KindList:
		elems := make([]interface{}, len(n.children))
		for i, c := range n.children {
			elems[i] = Encode(c)
		}
		return map[string]interface{}{"kind": string(KindList), "elements": elems}
	}
	m := map[string]interface{}{"kind": string(n.kind)}
	for i, s := range schema[n.kind].slots {
		m[s.Key] = Encode(n.children[i])
	}
	return m
}

func encodeTrivia(ts []Trivia) []interface{} {
	out := make([]interface{}, len(ts))
	for i, t := range ts {
		out[i] = map[string]interface{}{"kind": t.Kind, "text": t.Text, "width": len(t.Text)}
	}
	return out
}

// NewParseResult wraps a tree in the envelope produced by the external
// parser.
func NewParseResult(root *Node, version string) *ParseResult {
	return &ParseResult{Tree: Encode(root), Text: root.FullText(), Version: version}
}
