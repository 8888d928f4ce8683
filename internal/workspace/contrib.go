package workspace

import (
	"perlscope/internal/sema"
	"perlscope/internal/source"
	"perlscope/internal/symbols"
)

// BuildContribution flattens one document's analysis into index rows.
// Lexical symbols get file-local keys; subs, packages and package
// variables get workspace-global keys under their package-qualified
// name so occurrences merge across files.
func BuildContribution(uri string, tab *symbols.Table, refs []sema.Reference) Contribution {
	var c Contribution
	all := tab.Symbols.All()
	for i := range all {
		sym := &all[i]
		name := tab.Strings.MustLookup(sym.Name)
		c.Symbols = append(c.Symbols, SymbolInfo{
			Key:      keyForSymbol(uri, sym, name),
			Name:     name,
			Kind:     sym.Kind,
			Location: Location{URI: uri, Span: sym.Span},
		})
	}
	for _, ref := range refs {
		var key SymbolKey
		switch {
		case ref.Symbol.IsValid():
			sym := tab.Symbols.Get(ref.Symbol)
			key = keyForSymbol(uri, sym, tab.Strings.MustLookup(sym.Name))
		case ref.Kind == sema.RefUse:
			// Package-qualified use of something declared elsewhere.
			key = SymbolKey{Name: tab.Strings.MustLookup(ref.Name)}
		default:
			continue
		}
		c.Refs = append(c.Refs, RefEntry{
			Key:      key,
			Location: Location{URI: uri, Span: ref.Span},
		})
	}
	return c
}

func keyForSymbol(uri string, sym *symbols.Symbol, name string) SymbolKey {
	if isGlobal(sym) {
		return SymbolKey{Name: qualifiedName(sym, name)}
	}
	return SymbolKey{URI: uri, Name: name, Decl: sym.Span.Start}
}

func isGlobal(sym *symbols.Symbol) bool {
	switch sym.Kind {
	case symbols.SymbolPackage, symbols.SymbolModule, symbols.SymbolSub:
		return true
	}
	return sym.Flags&symbols.FlagPackageVar != 0
}

func qualifiedName(sym *symbols.Symbol, name string) string {
	if sym.Kind == symbols.SymbolPackage || sym.Kind == symbols.SymbolModule {
		return name
	}
	if sym.Package == "" {
		return name
	}
	return sym.Package + "::" + name
}

// ToCached converts a contribution to its durable form.
func ToCached(c Contribution) ([]CachedSymbol, []CachedRef) {
	syms := make([]CachedSymbol, 0, len(c.Symbols))
	for _, s := range c.Symbols {
		syms = append(syms, CachedSymbol{
			Name: s.Name,
			Kind: s.Kind,
			Decl: s.Location.Span.Start,
			End:  s.Location.Span.End,
			Pkg:  pkgOfKey(s),
		})
	}
	refs := make([]CachedRef, 0, len(c.Refs))
	for _, r := range c.Refs {
		refs = append(refs, CachedRef{
			KeyURI:  r.Key.URI,
			KeyName: r.Key.Name,
			KeyDecl: r.Key.Decl,
			Start:   r.Location.Span.Start,
			End:     r.Location.Span.End,
		})
	}
	return syms, refs
}

// FromCached rebuilds a contribution for uri from its durable form.
func FromCached(uri string, syms []CachedSymbol, refs []CachedRef) Contribution {
	var c Contribution
	for _, s := range syms {
		span := spanOf(s.Decl, s.End)
		key := SymbolKey{Name: s.Name}
		if s.Pkg != "" {
			key.Name = s.Pkg
		} else {
			key = SymbolKey{URI: uri, Name: s.Name, Decl: s.Decl}
		}
		c.Symbols = append(c.Symbols, SymbolInfo{
			Key:      key,
			Name:     s.Name,
			Kind:     s.Kind,
			Location: Location{URI: uri, Span: span},
		})
	}
	for _, r := range refs {
		c.Refs = append(c.Refs, RefEntry{
			Key:      SymbolKey{URI: r.KeyURI, Name: r.KeyName, Decl: r.KeyDecl},
			Location: Location{URI: uri, Span: spanOf(r.Start, r.End)},
		})
	}
	return c
}

func spanOf(start, end uint32) source.Span {
	return source.Span{Start: start, End: end}
}

// pkgOfKey round-trips the global key name through the cache: globals
// store the qualified key name in Pkg, locals leave it empty.
func pkgOfKey(s SymbolInfo) string {
	if s.Key.Global() {
		return s.Key.Name
	}
	return ""
}
