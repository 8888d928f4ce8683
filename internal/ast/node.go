package ast

import (
	"perlscope/internal/source"
)

// Node is one syntax tree element. See the package doc for the child
// layout of each kind. A nil child marks an absent optional slot.
type Node struct {
	Kind     NodeKind
	Span     source.Span
	Text     string
	Children []*Node
}

// New builds a node; the parser is the only intended caller.
func New(kind NodeKind, span source.Span, text string, children ...*Node) *Node {
	return &Node{Kind: kind, Span: span, Text: text, Children: children}
}

// Child returns the i-th child or nil when out of range.
func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// Name returns the Ident child holding the construct's name, for the
// kinds that have one (PackageDecl, UseDecl, SubDecl, CallExpr).
func (n *Node) Name() *Node {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindPackageDecl, KindUseDecl, KindSubDecl, KindCallExpr:
		return n.Child(0)
	case KindMethodCall:
		return n.Child(1)
	default:
		return nil
	}
}
