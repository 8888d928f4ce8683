package symbols

import (
	"perlscope/internal/source"
)

// Hints provide optional capacity suggestions for the table arenas.
type Hints struct{ Scopes, Symbols uint32 }

// Table holds the scope tree and symbols of one parsed file version.
// Tables are built once and read concurrently afterwards; nothing may
// mutate one after Build returns.
type Table struct {
	Scopes  *Scopes
	Symbols *Symbols
	Strings *source.Interner
	Root    ScopeID
	File    source.FileID
	Version int32
}

// NewTable builds a fresh table. If strings is nil a private interner is
// allocated; the engine passes its shared one so names compare across
// files.
func NewTable(h Hints, strings *source.Interner) *Table {
	if strings == nil {
		strings = source.NewInterner()
	}
	return &Table{
		Scopes:  NewScopes(h.Scopes),
		Symbols: NewSymbols(h.Symbols),
		Strings: strings,
	}
}

// ScopeAt returns the innermost scope containing the byte offset,
// falling back to the root when nothing narrower matches.
func (t *Table) ScopeAt(off uint32) ScopeID {
	cur := t.Root
	if cur == NoScopeID {
		return NoScopeID
	}
	for {
		scope := t.Scopes.Get(cur)
		next := NoScopeID
		for _, child := range scope.Children {
			cs := t.Scopes.Get(child)
			if cs.Span.Start <= off && off < cs.Span.End {
				next = child
				break
			}
		}
		if next == NoScopeID {
			return cur
		}
		cur = next
	}
}

// Resolve walks the scope chain from the given scope outward and returns
// the symbol the name binds to at byte offset at. Lexical (my) variables
// only bind after their declaration; subs, package variables and
// builtins bind file-wide. Among several declarations of the same name
// in one scope the lexically last visible one wins. Pass NoPos to skip
// the position check.
func (t *Table) Resolve(scope ScopeID, name source.StringID, at uint32) SymbolID {
	for scope.IsValid() {
		s := t.Scopes.Get(scope)
		if ids, ok := s.NameIndex[name]; ok {
			for i := len(ids) - 1; i >= 0; i-- {
				sym := t.Symbols.Get(ids[i])
				if at != NoPos && sym.Flags&FlagLexical != 0 && at < sym.VisibleFrom {
					continue
				}
				return ids[i]
			}
		}
		scope = s.Parent
	}
	return NoSymbolID
}

// ResolveAt combines ScopeAt and Resolve for position queries.
func (t *Table) ResolveAt(off uint32, name source.StringID) SymbolID {
	return t.Resolve(t.ScopeAt(off), name, off)
}

// Lookup is Resolve with an explicit found flag.
func (t *Table) Lookup(scope ScopeID, name source.StringID, at uint32) (SymbolID, bool) {
	id := t.Resolve(scope, name, at)
	return id, id.IsValid()
}

// Declarations returns every declaration of the name across the whole
// table, in declaration order. Shadowed and redeclared entries are all
// present; the query layer decides what to surface.
func (t *Table) Declarations(name source.StringID) []SymbolID {
	var out []SymbolID
	for i, sym := range t.Symbols.All() {
		if sym.Name == name {
			out = append(out, SymbolID(i+1))
		}
	}
	return out
}

// Declare allocates a symbol and registers it in its scope.
func (t *Table) Declare(sym Symbol) SymbolID {
	id := t.Symbols.New(sym)
	scope := t.Scopes.Get(sym.Scope)
	if scope != nil {
		scope.NameIndex[sym.Name] = append(scope.NameIndex[sym.Name], id)
		scope.Symbols = append(scope.Symbols, id)
	}
	return id
}
