package parser

import (
	"perlscope/internal/ast"
	"perlscope/internal/diag"
	"perlscope/internal/source"
)

const defaultMaxReparseFraction = 0.5

// ReuseStats describes how much of the previous tree survived a reparse.
// Reused counts nodes shared by pointer or by span-shifted clone; Total
// counts all nodes of the new tree.
type ReuseStats struct {
	Reused   int
	Total    int
	Fallback bool
}

// Ratio returns the reused fraction, 0 for an empty tree.
func (s ReuseStats) Ratio() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Reused) / float64(s.Total)
}

// Reparse builds the tree for newFile, reusing subtrees of the previous
// tree that the edit cannot have touched. Reuse is computed over
// top-level statements: statements before the edit are shared by
// pointer, statements after it are reused as span-shifted clones, and
// the window between them is reparsed. One extra statement on each side
// stays inside the window so lexical trailing context (a '/' flipping
// between regex and division) cannot leak a stale reading.
//
// The result is node-for-node identical to Parse(newFile, opts); any
// condition that could break that falls back to a full parse.
func Reparse(old *ast.Node, edit source.Edit, newFile *source.File, opts Options) (*ast.Node, ReuseStats) {
	full := func() (*ast.Node, ReuseStats) {
		tree := Parse(newFile, opts)
		return tree, ReuseStats{Total: ast.Count(tree), Fallback: true}
	}

	if old == nil || old.Kind != ast.KindFile {
		return full()
	}
	// Trees with contained errors reparse fully: reused subtrees carry
	// no diagnostics, so stale syntax errors would otherwise vanish or
	// survive wrongly.
	if hasBadNodes(old) {
		return full()
	}

	newLen := safeLen(newFile.Content)
	delta := edit.Delta()
	stmts := old.Children

	prefixEnd := 0
	for prefixEnd < len(stmts) && stmts[prefixEnd].Span.End < edit.Start {
		prefixEnd++
	}
	if prefixEnd > 0 {
		prefixEnd-- // safety margin
	}

	suffixStart := len(stmts)
	for suffixStart > 0 && stmts[suffixStart-1].Span.Start > edit.End {
		suffixStart--
	}
	if suffixStart < len(stmts) {
		suffixStart++ // safety margin
	}
	if suffixStart < prefixEnd {
		suffixStart = prefixEnd
	}

	windowStart := uint32(0)
	if prefixEnd > 0 {
		windowStart = stmts[prefixEnd-1].Span.End
	}
	windowEnd := newLen
	if suffixStart < len(stmts) {
		shifted := int64(stmts[suffixStart].Span.Start) + delta
		if shifted < int64(windowStart) || shifted > int64(newLen) {
			return full()
		}
		windowEnd = uint32(shifted)
	}

	frac := opts.MaxReparseFraction
	if frac <= 0 {
		frac = defaultMaxReparseFraction
	}
	if newLen > 0 && float64(windowEnd-windowStart) > frac*float64(newLen) {
		return full()
	}

	// The window parses against a private bag: a clean window is spliced
	// and its reports forwarded, an erroneous one discards the attempt.
	winBag := diag.NewBag(64)
	winOpts := opts
	winOpts.Reporter = diag.BagReporter{Bag: winBag}
	mid, openSection := parseWindow(newFile, windowStart, windowEnd, winOpts)
	if winBag.HasErrors() {
		return full()
	}
	// An unterminated POD or data section at the window limit swallows
	// everything after it in a real parse. The suffix statements would be
	// documentation, not code, so the splice cannot be trusted. A section
	// still open at true EOF swallows nothing that was going to be
	// spliced, so that case stays incremental.
	if openSection && windowEnd < newLen {
		return full()
	}
	for _, s := range mid {
		if hasBadNodes(s) {
			return full()
		}
	}

	reused := 0
	children := make([]*ast.Node, 0, prefixEnd+len(mid)+len(stmts)-suffixStart)
	for _, s := range stmts[:prefixEnd] {
		children = append(children, s)
		reused += ast.Count(s)
	}
	children = append(children, mid...)
	for _, s := range stmts[suffixStart:] {
		children = append(children, ast.ShiftSpans(s, delta))
		reused += ast.Count(s)
	}

	if opts.Reporter != nil {
		for _, d := range winBag.Items() {
			opts.Reporter.Report(d.Code, d.Severity, d.Primary, d.Message, d.Notes)
		}
	}

	span := source.Span{File: newFile.ID, Start: 0, End: newLen}
	root := ast.New(ast.KindFile, span, "", children...)
	return root, ReuseStats{Reused: reused, Total: ast.Count(root)}
}

func hasBadNodes(n *ast.Node) bool {
	found := false
	ast.Walk(n, func(c *ast.Node) bool {
		if c.Kind == ast.KindBadStmt || c.Kind == ast.KindBadExpr {
			found = true
		}
		return !found
	})
	return found
}
