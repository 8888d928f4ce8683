package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"perlscope/internal/ast"
	"perlscope/internal/source"
)

// CheckSpanInvariants verifies the span contract of a parsed tree:
// 1) the root is a File node whose span covers the whole content
// 2) every node's span stays inside its parent's span
// 3) sibling statements do not overlap and appear in source order
// 4) every span carries the file's ID
// Both the full parser and the reparse splice path must preserve these.
func CheckSpanInvariants(root *ast.Node, sf *source.File) error {
	if root == nil || sf == nil {
		return fmt.Errorf("nil tree or file")
	}
	if root.Kind != ast.KindFile {
		return fmt.Errorf("root kind is %v, want File", root.Kind)
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("content length overflow: %w", err)
	}
	if root.Span.Start != 0 || root.Span.End != lenContent {
		return fmt.Errorf("file span %v does not cover content [0,%d)", root.Span, lenContent)
	}
	return checkNode(root, sf.ID)
}

func checkNode(n *ast.Node, id source.FileID) error {
	if n.Span.File != id {
		return fmt.Errorf("%v node points at file %d, want %d", n.Kind, n.Span.File, id)
	}
	if n.Span.End < n.Span.Start {
		return fmt.Errorf("%v node has inverted span %v", n.Kind, n.Span)
	}
	var prevEnd uint32
	for i, c := range n.Children {
		if c == nil {
			continue
		}
		if c.Span.Start < n.Span.Start || c.Span.End > n.Span.End {
			return fmt.Errorf("child %v span %v escapes parent %v span %v",
				c.Kind, c.Span, n.Kind, n.Span)
		}
		if i > 0 && c.Span.Start < prevEnd {
			return fmt.Errorf("child %v span %v overlaps previous sibling ending at %d",
				c.Kind, c.Span, prevEnd)
		}
		prevEnd = c.Span.End
		if err := checkNode(c, id); err != nil {
			return err
		}
	}
	return nil
}
