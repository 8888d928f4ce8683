package symbols

import (
	"perlscope/internal/source"
)

// SymbolKind classifies the semantic meaning of a symbol. Variable kinds
// follow the sigil; the symbol name keeps the sigil too, so "$x" and
// "@x" are distinct entries.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolScalar
	SymbolArray
	SymbolHash
	SymbolSub
	SymbolPackage
	SymbolModule // use'd module
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolScalar:
		return "scalar"
	case SymbolArray:
		return "array"
	case SymbolHash:
		return "hash"
	case SymbolSub:
		return "sub"
	case SymbolPackage:
		return "package"
	case SymbolModule:
		return "module"
	default:
		return "invalid"
	}
}

// SymbolFlags encode declarator attributes for quick checks.
type SymbolFlags uint8

const (
	// FlagLexical marks my-declared variables, the only kind subject to
	// the declared-before-use rule.
	FlagLexical SymbolFlags = 1 << iota
	// FlagPackageVar marks our-declared variables.
	FlagPackageVar
	// FlagDynamic marks local-declared variables.
	FlagDynamic
	// FlagBuiltin marks predeclared names ($_, @ARGV, print, ...).
	FlagBuiltin
)

// Strings returns textual flag labels, for hover and debug output.
func (f SymbolFlags) Strings() []string {
	if f == 0 {
		return nil
	}
	labels := make([]string, 0, 4)
	if f&FlagLexical != 0 {
		labels = append(labels, "my")
	}
	if f&FlagPackageVar != 0 {
		labels = append(labels, "our")
	}
	if f&FlagDynamic != 0 {
		labels = append(labels, "local")
	}
	if f&FlagBuiltin != 0 {
		labels = append(labels, "builtin")
	}
	return labels
}

// Symbol describes a named entity declared in a scope. Span is the
// declaration site (the variable token, the sub name). VisibleFrom is
// the byte offset a lexical binding starts at: the end of the declaring
// statement, so "my $x = $x" resolves its initializer to the outer $x.
type Symbol struct {
	Name        source.StringID
	Kind        SymbolKind
	Scope       ScopeID
	Span        source.Span
	VisibleFrom uint32
	Flags       SymbolFlags
	Package     string // owning package for subs and package variables
}
