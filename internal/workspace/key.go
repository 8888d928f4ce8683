package workspace

import (
	"perlscope/internal/source"
	"perlscope/internal/symbols"
)

// Location is a span inside a document identified by URI. The workspace
// layer speaks URIs; FileIDs stay private to each document pipeline.
type Location struct {
	URI  string
	Span source.Span
}

// SymbolKey identifies a declaration across the workspace. Lexical
// variables are file-private, so their key carries the URI and the
// declaration offset (shadowed declarations stay distinct); subs and
// package names are workspace-global with a package-qualified name and
// an empty URI.
type SymbolKey struct {
	URI  string
	Name string
	Decl uint32
}

// Global reports whether the key is visible across files.
func (k SymbolKey) Global() bool { return k.URI == "" }

// SymbolInfo is one indexed declaration.
type SymbolInfo struct {
	Key      SymbolKey
	Name     string
	Kind     symbols.SymbolKind
	Location Location
}

// RefEntry is one indexed occurrence bound to a key.
type RefEntry struct {
	Key      SymbolKey
	Location Location
}

// Contribution is everything one document version adds to the index; it
// is applied and removed as a unit.
type Contribution struct {
	Symbols []SymbolInfo
	Refs    []RefEntry
}
