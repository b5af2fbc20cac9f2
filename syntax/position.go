// Copyright © 2024 The cstlint authors

package syntax

import "strings"

// OffsetOf returns the absolute byte offset at which target starts within
// root, trivia included. Positions are not stored on nodes; they are
// recovered by accumulating the widths of everything before target.
func OffsetOf(root, target *Node) (int, bool) {
	return offsetOf(root, target, 0)
}

func offsetOf(n, target *Node, pos int) (int, bool) {
	if n == target {
		return pos, true
	}
	for _, c := range n.children {
		if off, ok := offsetOf(c, target, pos); ok {
			return off, true
		}
		pos += c.width
	}
	return 0, false
}

// TextOffsetOf is like OffsetOf but skips target's leading trivia, giving the
// offset of its first significant byte.
func TextOffsetOf(root, target *Node) (int, bool) {
	off, ok := OffsetOf(root, target)
	if !ok {
		return 0, false
	}
	return off + len(target.LeadingText()), true
}

// LineCol maps a byte offset in text to a 1-based line and column. Columns
// count bytes.
func LineCol(text string, offset int) (line, col int) {
	if offset > len(text) {
		offset = len(text)
	}
	if offset < 0 {
		offset = 0
	}
	before := text[:offset]
	line = strings.Count(before, "\n") + 1
	col = offset - (strings.LastIndexByte(before, '\n') + 1) + 1
	return line, col
}
