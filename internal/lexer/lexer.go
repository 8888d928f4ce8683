package lexer

import (
	"perlscope/internal/source"
	"perlscope/internal/token"
)

// Lexer produces tokens for the Perl subset. A slash is lexed as a regex
// literal or as division depending on the previous significant token, so
// the lexer tracks one token of history.
type Lexer struct {
	file        *source.File
	cursor      Cursor
	opts        Options
	look        *token.Token   // one-token lookahead buffer
	hold        []token.Trivia // accumulated leading trivia
	prev        token.Kind     // last significant token kind, Invalid at start
	openSection bool           // POD or data section ran to the limit unclosed
}

func New(file *source.File, opts Options) *Lexer {
	cursor := NewCursor(file)
	if opts.End != 0 || opts.Start != 0 {
		cursor = NewWindowCursor(file, opts.Start, opts.End)
	}
	return &Lexer{
		file:   file,
		cursor: cursor,
		opts:   opts,
		prev:   token.Invalid,
	}
}

// Next returns the next significant token with its leading trivia attached.
// After EOF it always returns EOF.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		lx.prev = tok.Kind
		return tok
	}

	lx.collectLeadingTrivia()

	if lx.cursor.EOF() {
		return token.Token{Kind: token.EOF, Span: lx.emptySpan()}
	}

	ch := lx.cursor.Peek()
	var tok token.Token

	switch {
	case ch == '$' || ch == '@' || ch == '%':
		tok = lx.scanVariableOrOp()

	case isIdentStartByte(ch):
		tok = lx.scanIdentOrKeyword()

	case isDec(ch):
		tok = lx.scanNumber()

	case ch == '.' && isDec(lx.cursor.PeekAt(1)):
		tok = lx.scanNumber()

	case ch == '\'' || ch == '"':
		tok = lx.scanString()

	case ch == '/' && lx.regexAllowed():
		tok = lx.scanRegex()

	default:
		tok = lx.scanOperatorOrPunct()
	}

	tok.Leading = lx.hold
	lx.hold = nil
	lx.prev = tok.Kind
	return tok
}

// Peek returns the next token without consuming it.
func (lx *Lexer) Peek() token.Token {
	prev := lx.prev
	t := lx.Next()
	lx.look = &t
	lx.prev = prev
	return t
}

// InOpenSection reports whether the last trivia scan ended inside a POD
// or data section that did not close before the cursor's limit. The
// incremental reparser checks this at window EOF: an open section keeps
// swallowing text past the window, so suffix statements spliced after it
// would really be documentation, not code.
func (lx *Lexer) InOpenSection() bool { return lx.openSection }

// Tokens drains the lexer into a slice ending with EOF.
func Tokens(file *source.File, opts Options) []token.Token {
	lx := New(file, opts)
	var out []token.Token
	for {
		tok := lx.Next()
		out = append(out, tok)
		if tok.Kind == token.EOF {
			return out
		}
	}
}

// regexAllowed reports whether a '/' at the current position starts a
// regex literal. After a value (identifier, variable, literal, closing
// bracket, ++/--) it is division; in operator or statement position it is
// a pattern. This is the trailing-context ambiguity the incremental
// reparser has to respect.
func (lx *Lexer) regexAllowed() bool {
	switch lx.prev {
	case token.Ident, token.ScalarVar, token.ArrayVar, token.HashVar,
		token.NumberLit, token.StringLit, token.RegexLit, token.QwList,
		token.RParen, token.RBracket, token.PlusPlus, token.MinusMinus:
		return false
	default:
		return true
	}
}

func (lx *Lexer) emptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}
