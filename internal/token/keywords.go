package token

var keywords = map[string]Kind{
	"my":      KwMy,
	"our":     KwOur,
	"local":   KwLocal,
	"sub":     KwSub,
	"package": KwPackage,
	"use":     KwUse,
	"no":      KwNo,
	"if":      KwIf,
	"elsif":   KwElsif,
	"else":    KwElse,
	"unless":  KwUnless,
	"while":   KwWhile,
	"until":   KwUntil,
	"for":     KwFor,
	"foreach": KwForeach,
	"return":  KwReturn,
	"last":    KwLast,
	"next":    KwNext,
	"eval":    KwEval,
	"do":      KwDo,
	"and":     KwAnd,
	"or":      KwOr,
	"not":     KwNot,
	"eq":      StrEq,
	"ne":      StrNe,
	"lt":      StrLt,
	"gt":      StrGt,
	"le":      StrLe,
	"ge":      StrGe,
	"cmp":     StrCmp,
	"x":       Repeat,
}

// LookupKeyword returns the keyword kind for ident, if it is one.
// Keywords are case-sensitive; only lowercase spellings are recognized.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
