// Copyright © 2024 The cstlint authors

package lint

import (
	"strings"

	parsec "github.com/prataprc/goparsec"
)

/*
Suppression markers are written in comments and name the rule they silence:

	marker := kind '[' rule ']'    (no whitespace inside)
	kind   := 'CSTLINT_IGNORE_ALL' | 'CSTLINT_IGNORE_ERROR' | 'CSTLINT_FIXME'
	rule   := /[A-Za-z0-9_\-]+/

CSTLINT_IGNORE_ALL silences the rule for the whole file. The other two
silence it on the marker's own line and on the line after it.
*/

// MarkerKind is the kind of a suppression marker.
type MarkerKind int

const (
	MarkerIgnoreAll MarkerKind = iota
	MarkerIgnoreError
	MarkerFixme
)

var markerKinds = map[string]MarkerKind{
	"CSTLINT_IGNORE_ALL":   MarkerIgnoreAll,
	"CSTLINT_IGNORE_ERROR": MarkerIgnoreError,
	"CSTLINT_FIXME":        MarkerFixme,
}

func (k MarkerKind) String() string {
	for name, kind := range markerKinds {
		if kind == k {
			return name
		}
	}
	return "UNKNOWN"
}

// Marker is one suppression marker found in a source file.
type Marker struct {
	Kind MarkerKind
	Rule string
	// Line is the 1-based line the marker appears on.
	Line int
}

// Markers is the set of suppression markers in one file.
type Markers struct {
	List []Marker
}

// SuppressesFile reports whether rule is silenced for the whole file.
func (m *Markers) SuppressesFile(rule string) bool {
	for _, mk := range m.List {
		if mk.Kind == MarkerIgnoreAll && mk.Rule == rule {
			return true
		}
	}
	return false
}

// SuppressesLine reports whether rule is silenced on the 1-based line.
func (m *Markers) SuppressesLine(rule string, line int) bool {
	for _, mk := range m.List {
		if mk.Rule != rule {
			continue
		}
		switch mk.Kind {
		case MarkerIgnoreAll:
			return true
		case MarkerIgnoreError, MarkerFixme:
			if line == mk.Line || line == mk.Line+1 {
				return true
			}
		}
	}
	return false
}

// ParseMarkers scans source for suppression markers.
func ParseMarkers(source []byte) *Markers {
	m := &Markers{}
	if len(source) == 0 {
		return m
	}
	lines := lineIndex(source)
	item := newMarkerParser()
	s := parsec.NewScanner(source)
	for !s.Endof() {
		var node parsec.ParsecNode
		node, s = item(s)
		if node == nil {
			break
		}
		if mk, ok := node.(*Marker); ok {
			m.List = append(m.List, *mk)
		}
	}
	for i := range m.List {
		m.List[i].Line = lines(m.List[i].Line)
	}
	return m
}

// newMarkerParser returns a parser that consumes either one marker or a run
// of text that cannot start one. A marker is matched as a single token so
// that no whitespace may appear inside it. A parsed marker's Line holds its
// byte offset until ParseMarkers converts it.
func newMarkerParser() parsec.Parser {
	marker := parsec.Token(`CSTLINT_(?:IGNORE_ALL|IGNORE_ERROR|FIXME)\[[A-Za-z0-9_\-]+\]`, "MARKER")
	text := parsec.Token(`(?s:[^C]+|C)`, "TEXT")
	return parsec.OrdChoice(markerNode, marker, text)
}

func markerNode(ns []parsec.ParsecNode) parsec.ParsecNode {
	if len(ns) != 1 {
		return nil
	}
	t, ok := ns[0].(*parsec.Terminal)
	if !ok || t.Name != "MARKER" {
		return ns[0]
	}
	kind, rest, _ := strings.Cut(t.Value, "[")
	return &Marker{
		Kind: markerKinds[kind],
		Rule: strings.TrimSuffix(rest, "]"),
		Line: t.Position,
	}
}

// lineIndex returns a function mapping byte offsets in source to 1-based
// line numbers.
func lineIndex(source []byte) func(offset int) int {
	var starts []int
	for i, b := range source {
		if b == '\n' {
			starts = append(starts, i)
		}
	}
	return func(offset int) int {
		line := 1
		for _, nl := range starts {
			if nl >= offset {
				break
			}
			line++
		}
		return line
	}
}
