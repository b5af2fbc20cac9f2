// Copyright © 2024 The cstlint authors

package syntax

// Transform is applied to every node during a rewrite. node has already had
// its children rewritten; ancestors holds its strict ancestors, outermost
// first. Returning node unchanged keeps it; returning nil is the same as
// returning the missing node.
type Transform func(node *Node, ancestors []*Node) (*Node, error)

// Rewrite offers every node of root to fn in post-order, children left to
// right, and returns the resulting tree. Only the path from a changed node to
// the root is rebuilt; untouched subtrees are shared with root, and if
// nothing changes root itself is returned. ancestors, if given, is the
// context above root.
//
// If fn returns an error the rewrite stops and the error is returned with a
// nil tree. root is never modified.
func Rewrite(root *Node, fn Transform, ancestors ...*Node) (*Node, error) {
	return rewrite(root, fn, ancestors[:len(ancestors):len(ancestors)])
}

func rewrite(n *Node, fn Transform, ancestors []*Node) (*Node, error) {
	if len(n.children) > 0 {
		parents := make([]*Node, len(ancestors)+1)
		copy(parents, ancestors)
		parents[len(ancestors)] = n
		var changed []*Node
		for i, c := range n.children {
			nc, err := rewrite(c, fn, parents)
			if err != nil {
				return nil, err
			}
			if nc != c && changed == nil {
				changed = make([]*Node, len(n.children))
				copy(changed, n.children)
			}
			if changed != nil {
				changed[i] = nc
			}
		}
		if changed != nil {
			n = n.withChildren(changed)
		}
	}
	out, err := fn(n, ancestors)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = missing
	}
	return out, nil
}

// Replace returns root with target replaced by replacement. root is returned
// as is when target does not occur in it.
func Replace(root, target, replacement *Node) *Node {
	out, _ := Rewrite(root, func(n *Node, _ []*Node) (*Node, error) {
		if n == target {
			return replacement, nil
		}
		return n, nil
	})
	return out
}
