package token

import (
	"perlscope/internal/source"
)

// Token represents a single source token with its location and trivia.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Leading []Trivia
}

// IsLiteral reports whether the token is a literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case NumberLit, StringLit, RegexLit, QwList:
		return true
	default:
		return false
	}
}

// IsVariable reports whether the token is a sigil variable.
func (t Token) IsVariable() bool {
	switch t.Kind {
	case ScalarVar, ArrayVar, HashVar:
		return true
	default:
		return false
	}
}

// IsKeyword reports whether the token is a language keyword.
func (t Token) IsKeyword() bool {
	switch t.Kind {
	case KwMy, KwOur, KwLocal, KwSub, KwPackage, KwUse, KwNo, KwIf, KwElsif,
		KwElse, KwUnless, KwWhile, KwUntil, KwFor, KwForeach, KwReturn,
		KwLast, KwNext, KwEval, KwDo, KwAnd, KwOr, KwNot:
		return true
	default:
		return false
	}
}

// IsWordOperator reports whether the token is a word-spelled operator
// (string comparisons and 'x').
func (t Token) IsWordOperator() bool {
	switch t.Kind {
	case StrEq, StrNe, StrLt, StrGt, StrLe, StrGe, StrCmp, Repeat:
		return true
	default:
		return false
	}
}

// IsIdent reports whether the token is a bareword identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }
