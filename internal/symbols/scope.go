package symbols

import (
	"perlscope/internal/source"
)

// ScopeKind enumerates supported scope categories.
type ScopeKind uint8

const (
	ScopeInvalid ScopeKind = iota
	ScopeFile              // root scope of a parsed file
	ScopeSub               // subroutine body
	ScopeBlock             // bare block, loop body, eval block
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeFile:
		return "file"
	case ScopeSub:
		return "sub"
	case ScopeBlock:
		return "block"
	default:
		return "invalid"
	}
}

// Scope models a lexical scope with a parent-child hierarchy. NameIndex
// keeps every declaration of a name in source order, so redeclarations
// stay addressable: Resolve picks the lexically last visible one,
// Declarations returns them all.
type Scope struct {
	Kind      ScopeKind
	Parent    ScopeID
	Span      source.Span
	NameIndex map[source.StringID][]SymbolID
	Symbols   []SymbolID
	Children  []ScopeID
}
