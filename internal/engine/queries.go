package engine

import (
	"fmt"
	"sort"
	"strings"

	"perlscope/internal/diag"
	"perlscope/internal/parser"
	"perlscope/internal/sema"
	"perlscope/internal/source"
	"perlscope/internal/symbols"
	"perlscope/internal/workspace"
)

// HoverInfo describes the symbol under the cursor.
type HoverInfo struct {
	Name    string
	Kind    string
	Detail  string // declarator flags: my, our, local, builtin
	Package string
	Span    source.Span // the hovered occurrence
	Decl    source.Span // declaration site, zero for builtins
}

// CompletionItem is one name visible at the query offset.
type CompletionItem struct {
	Label  string
	Kind   string
	Detail string
}

// Hover returns symbol information at the offset, or nil when the
// offset is valid but nothing resolvable is there.
func (e *Engine) Hover(uri string, off uint32) (*HoverInfo, error) {
	snap, err := e.snapshot(uri)
	if err != nil {
		return nil, err
	}
	if !snap.File.ValidOffset(off) {
		return nil, fmt.Errorf("%w: %d in %s", source.ErrInvalidOffset, off, uri)
	}
	ref := refAt(snap, off)
	if ref == nil {
		return nil, nil
	}
	tab := e.tableFor(uri, snap)
	info := &HoverInfo{
		Name: tab.Strings.MustLookup(ref.Name),
		Span: ref.Span,
	}
	if ref.Kind == sema.RefBuiltin {
		info.Kind = "builtin"
		info.Detail = "builtin"
		return info, nil
	}
	sym := tab.Symbols.Get(ref.Symbol)
	if sym == nil {
		return info, nil
	}
	info.Kind = sym.Kind.String()
	info.Detail = strings.Join(sym.Flags.Strings(), " ")
	info.Package = sym.Package
	info.Decl = sym.Span
	return info, nil
}

// Completions lists names visible at the offset, innermost scope first
// wins on shadowing, sorted by label.
func (e *Engine) Completions(uri string, off uint32) ([]CompletionItem, error) {
	snap, err := e.snapshot(uri)
	if err != nil {
		return nil, err
	}
	if !snap.File.ValidOffset(off) {
		return nil, fmt.Errorf("%w: %d in %s", source.ErrInvalidOffset, off, uri)
	}

	tab := e.tableFor(uri, snap)
	seen := make(map[string]bool)
	var items []CompletionItem
	for scope := tab.ScopeAt(off); scope.IsValid(); scope = tab.Scopes.Get(scope).Parent {
		s := tab.Scopes.Get(scope)
		for nameID, ids := range s.NameIndex {
			name := tab.Strings.MustLookup(nameID)
			if seen[name] {
				continue
			}
			sym := lastVisible(tab, ids, off)
			if sym == nil {
				continue
			}
			seen[name] = true
			items = append(items, CompletionItem{
				Label:  name,
				Kind:   sym.Kind.String(),
				Detail: strings.Join(sym.Flags.Strings(), " "),
			})
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Label < items[j].Label })
	return items, nil
}

// Definition resolves the occurrence at the offset to its declaration.
// Locally declared symbols resolve within the snapshot; qualified names
// go through the workspace index.
func (e *Engine) Definition(uri string, off uint32) (workspace.Location, bool, error) {
	snap, err := e.snapshot(uri)
	if err != nil {
		return workspace.Location{}, false, err
	}
	if !snap.File.ValidOffset(off) {
		return workspace.Location{}, false, fmt.Errorf("%w: %d in %s", source.ErrInvalidOffset, off, uri)
	}
	ref := refAt(snap, off)
	if ref == nil {
		return workspace.Location{}, false, nil
	}
	if sym := e.tableFor(uri, snap).Symbols.Get(ref.Symbol); sym != nil {
		return workspace.Location{URI: uri, Span: sym.Span}, true, nil
	}
	loc := workspace.Location{URI: uri, Span: source.Span{Start: off, End: off}}
	def, _, ok := e.index.FindDefinition(loc)
	return def, ok, nil
}

// References returns every indexed occurrence of the symbol at the
// offset. partial reports that the index may be incomplete.
func (e *Engine) References(uri string, off uint32) ([]workspace.Location, bool, error) {
	snap, err := e.snapshot(uri)
	if err != nil {
		return nil, false, err
	}
	if !snap.File.ValidOffset(off) {
		return nil, false, fmt.Errorf("%w: %d in %s", source.ErrInvalidOffset, off, uri)
	}
	key, ok := e.keyAt(uri, snap, off)
	if !ok {
		return nil, e.index.Partial(), nil
	}
	locs, partial := e.index.FindReferences(key)
	return locs, partial, nil
}

// Diagnostics returns the committed diagnostics for the document.
func (e *Engine) Diagnostics(uri string) ([]diag.Diagnostic, error) {
	snap, err := e.snapshot(uri)
	if err != nil {
		return nil, err
	}
	out := make([]diag.Diagnostic, len(snap.Diags))
	copy(out, snap.Diags)
	return out, nil
}

// DocumentTokens returns the presentation tokens for highlighting.
func (e *Engine) DocumentTokens(uri string) ([]sema.Token, error) {
	snap, err := e.snapshot(uri)
	if err != nil {
		return nil, err
	}
	out := make([]sema.Token, len(snap.Sema.Tokens))
	copy(out, snap.Sema.Tokens)
	return out, nil
}

// ReuseStats returns the parse-reuse statistics of the last pipeline run.
func (e *Engine) ReuseStats(uri string) (parser.ReuseStats, error) {
	snap, err := e.snapshot(uri)
	if err != nil {
		return parser.ReuseStats{}, err
	}
	return snap.Stats, nil
}

// IndexState returns the global index state.
func (e *Engine) IndexState() workspace.State { return e.index.State() }

// IndexStateFor returns per-file state plus the degradation reason.
func (e *Engine) IndexStateFor(uri string) (workspace.State, workspace.Reason) {
	return e.index.FileState(uri)
}

// WorkspaceSymbols searches declared symbol names across the index.
func (e *Engine) WorkspaceSymbols(query string) []workspace.SymbolInfo {
	return e.index.WorkspaceSymbols(query)
}

// refAt finds the resolved reference covering the offset.
func refAt(snap *Snapshot, off uint32) *sema.Reference {
	refs := snap.Sema.Refs
	for i := range refs {
		if refs[i].Span.Contains(off) {
			return &refs[i]
		}
	}
	return nil
}

// keyAt maps the occurrence at the offset to its workspace key, falling
// back to the index for occurrences the snapshot cannot key itself.
func (e *Engine) keyAt(uri string, snap *Snapshot, off uint32) (workspace.SymbolKey, bool) {
	ref := refAt(snap, off)
	if ref == nil {
		return workspace.SymbolKey{}, false
	}
	return e.index.KeyAt(workspace.Location{URI: uri, Span: source.Span{Start: off, End: off}})
}

func lastVisible(tab *symbols.Table, ids []symbols.SymbolID, off uint32) *symbols.Symbol {
	for i := len(ids) - 1; i >= 0; i-- {
		sym := tab.Symbols.Get(ids[i])
		if sym.Flags&symbols.FlagLexical != 0 && off < sym.VisibleFrom {
			continue
		}
		return sym
	}
	return nil
}
