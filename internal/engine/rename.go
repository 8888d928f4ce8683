package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"perlscope/internal/sema"
	"perlscope/internal/source"
	"perlscope/internal/workspace"
)

var (
	// ErrUnresolvable means no renameable symbol sits at the offset.
	ErrUnresolvable = errors.New("rename: no resolvable symbol at offset")
	// ErrConflict means the new name collides in the declaring scope.
	ErrConflict = errors.New("rename: name already declared in scope")
	// ErrPartialIndex means the index may be missing occurrences; a
	// rename now could silently skip some. Callers warn or retry.
	ErrPartialIndex = errors.New("rename: workspace index is incomplete")
)

// WorkspaceEdit is the rename result: byte edits grouped per document,
// span-ordered within each.
type WorkspaceEdit struct {
	Changes map[string][]source.Edit
}

// RenamePrepare validates that the offset sits on a renameable symbol
// and returns the exact occurrence range to highlight.
func (e *Engine) RenamePrepare(uri string, off uint32) (source.Span, error) {
	snap, err := e.snapshot(uri)
	if err != nil {
		return source.Span{}, err
	}
	if !snap.File.ValidOffset(off) {
		return source.Span{}, fmt.Errorf("%w: %d in %s", source.ErrInvalidOffset, off, uri)
	}
	ref := refAt(snap, off)
	if ref == nil || ref.Kind == sema.RefBuiltin {
		return source.Span{}, ErrUnresolvable
	}
	return ref.Span, nil
}

// RenameApply renames the symbol at the offset across the workspace.
// Nothing is applied by the engine itself; the caller materializes the
// returned edits.
func (e *Engine) RenameApply(uri string, off uint32, newName string) (*WorkspaceEdit, error) {
	snap, err := e.snapshot(uri)
	if err != nil {
		return nil, err
	}
	if !snap.File.ValidOffset(off) {
		return nil, fmt.Errorf("%w: %d in %s", source.ErrInvalidOffset, off, uri)
	}
	ref := refAt(snap, off)
	if ref == nil || ref.Kind == sema.RefBuiltin {
		return nil, ErrUnresolvable
	}

	tab := e.tableFor(uri, snap)
	oldName := tab.Strings.MustLookup(ref.Name)
	newBase := strings.TrimLeft(newName, "$@%")
	if !validIdent(newBase) {
		return nil, fmt.Errorf("%w: %q is not a valid name", ErrUnresolvable, newName)
	}
	sigiled := strings.IndexAny(oldName, "$@%") == 0

	// Conflict check against the declaring scope, when the declaration
	// is local to this document.
	if sym := tab.Symbols.Get(ref.Symbol); sym != nil {
		replacement := newBase
		if sigiled {
			replacement = oldName[:1] + newBase
		}
		scope := tab.Scopes.Get(sym.Scope)
		if ids := scope.NameIndex[tab.Strings.Intern(replacement)]; len(ids) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrConflict, replacement)
		}
	}

	if e.index.Partial() {
		return nil, ErrPartialIndex
	}

	key, ok := e.index.KeyAt(workspace.Location{URI: uri, Span: source.Span{Start: off, End: off}})
	if !ok {
		return nil, ErrUnresolvable
	}
	locs, partial := e.index.FindReferences(key)
	if partial {
		return nil, ErrPartialIndex
	}

	we := &WorkspaceEdit{Changes: make(map[string][]source.Edit)}
	for _, loc := range locs {
		start := loc.Span.Start
		if sigiled {
			start++ // keep the occurrence's own sigil byte
		}
		we.Changes[loc.URI] = append(we.Changes[loc.URI], source.Edit{
			Start:   start,
			End:     loc.Span.End,
			NewText: newBase,
		})
	}
	for u := range we.Changes {
		edits := we.Changes[u]
		sort.Slice(edits, func(i, j int) bool { return edits[i].Start < edits[j].Start })
	}
	return we, nil
}

func validIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch {
		case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b == '_':
		case b >= '0' && b <= '9':
			if i == 0 {
				return false
			}
		case b == ':' && i+1 < len(s) && s[i+1] == ':':
			i++
		default:
			return false
		}
	}
	return true
}
