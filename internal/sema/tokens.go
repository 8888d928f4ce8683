package sema

import (
	"perlscope/internal/source"
)

// TokenType classifies a presentation token for editor highlighting.
type TokenType uint8

const (
	TokKeyword TokenType = iota
	TokVariable
	TokFunction
	TokPackage
	TokString
	TokNumber
	TokOperator
	TokComment
)

func (t TokenType) String() string {
	switch t {
	case TokKeyword:
		return "keyword"
	case TokVariable:
		return "variable"
	case TokFunction:
		return "function"
	case TokPackage:
		return "package"
	case TokString:
		return "string"
	case TokNumber:
		return "number"
	case TokOperator:
		return "operator"
	case TokComment:
		return "comment"
	default:
		return "unknown"
	}
}

// Token is one classified span of the document.
type Token struct {
	Span source.Span
	Type TokenType
}
