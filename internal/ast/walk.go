package ast

import (
	"perlscope/internal/source"
)

// Walk calls fn for n and every descendant in depth-first pre-order.
// fn returning false prunes the subtree. Nil children are skipped.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// Count returns the number of nodes in the tree.
func Count(n *Node) int {
	total := 0
	Walk(n, func(*Node) bool {
		total++
		return true
	})
	return total
}

// Equal reports structural equality: same kinds, spans, texts and child
// layout. Pointer sharing is irrelevant; this is the "node-for-node
// equivalent" check the incremental/full parse contract is stated in.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind || a.Span != b.Span || a.Text != b.Text {
		return false
	}
	if len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

// ShiftSpans returns a copy of the tree with every span moved by delta.
// Used by the incremental reparser to reuse subtrees that sit after the
// edit point: their structure is untouched, only positions move. With
// delta 0 the original node is returned unchanged (pure sharing).
func ShiftSpans(n *Node, delta int64) *Node {
	if n == nil || delta == 0 {
		return n
	}
	children := make([]*Node, len(n.Children))
	for i, c := range n.Children {
		children[i] = ShiftSpans(c, delta)
	}
	return &Node{
		Kind:     n.Kind,
		Span:     n.Span.Shift(delta),
		Text:     n.Text,
		Children: children,
	}
}

// NodeAt returns the smallest node whose span contains the offset, along
// with the chain of ancestors leading to it (outermost first). An offset
// exactly at a node's End is treated as inside for the last token of the
// node, which is what cursor-at-end-of-word queries need.
func NodeAt(root *Node, off uint32) (smallest *Node, ancestors []*Node) {
	if root == nil {
		return nil, nil
	}
	contains := func(n *Node) bool {
		return n.Span.Start <= off && off <= n.Span.End
	}
	if !contains(root) {
		return nil, nil
	}
	cur := root
	for {
		ancestors = append(ancestors, cur)
		var next *Node
		for _, c := range cur.Children {
			if c == nil {
				continue
			}
			// Strict containment wins; an offset that only touches a
			// node's End (cursor right after the last character) is a
			// fallback, so "$x|;" resolves to $x and not the semicolon.
			if c.Span.Contains(off) {
				next = c
				break
			}
			if next == nil && off == c.Span.End && contains(c) {
				next = c
			}
		}
		if next == nil {
			return cur, ancestors[:len(ancestors)-1]
		}
		cur = next
	}
}

// Statements returns the statement list of a File or Block node.
func Statements(n *Node) []*Node {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindFile, KindBlock:
		return n.Children
	default:
		return nil
	}
}

// SpanOf returns the node's span, or an empty span for nil.
func SpanOf(n *Node) source.Span {
	if n == nil {
		return source.Span{}
	}
	return n.Span
}
