package token

import "perlscope/internal/source"

type TriviaKind uint8

const (
	TriviaSpace TriviaKind = iota
	TriviaNewline
	TriviaLineComment
	TriviaPod
)

func (k TriviaKind) String() string {
	switch k {
	case TriviaSpace:
		return "space"
	case TriviaNewline:
		return "newline"
	case TriviaLineComment:
		return "comment"
	case TriviaPod:
		return "pod"
	default:
		return "unknown"
	}
}

// Trivia is non-semantic source text attached to the following token.
type Trivia struct {
	Kind TriviaKind
	Span source.Span
	Text string
}
