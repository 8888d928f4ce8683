package lexer

import (
	"perlscope/internal/token"
)

// scanString scans '...' and "..." literals. Backslash escapes the next
// byte in both forms; interpolation inside double quotes is not expanded
// here (the engine classifies, it does not evaluate). An unterminated
// string runs to EOF with a report and still yields a StringLit so the
// parser can keep going.
func (lx *Lexer) scanString() token.Token {
	start := lx.cursor.Mark()
	quote := lx.cursor.Bump()

	for !lx.cursor.EOF() {
		b := lx.cursor.Bump()
		if b == '\\' && !lx.cursor.EOF() {
			lx.cursor.Bump()
			continue
		}
		if b == quote {
			sp := lx.cursor.SpanFrom(start)
			return token.Token{Kind: token.StringLit, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
		}
	}

	sp := lx.cursor.SpanFrom(start)
	lx.report("unterminated-string", sp, "unterminated string literal")
	return token.Token{Kind: token.StringLit, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

// scanRegex scans /pattern/flags. Only called when the token-history
// heuristic says a slash cannot be division. A newline before the closing
// slash aborts the literal: that is almost always an unterminated pattern,
// and bailing early keeps the damage local for the incremental reparser.
func (lx *Lexer) scanRegex() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // opening '/'

	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if b == '\n' {
			sp := lx.cursor.SpanFrom(start)
			lx.report("unterminated-regex", sp, "unterminated regex literal")
			return token.Token{Kind: token.RegexLit, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
		}
		lx.cursor.Bump()
		if b == '\\' && !lx.cursor.EOF() {
			lx.cursor.Bump()
			continue
		}
		if b == '/' {
			// Trailing flags: imsxg and friends.
			for isAlpha(lx.cursor.Peek()) {
				lx.cursor.Bump()
			}
			sp := lx.cursor.SpanFrom(start)
			return token.Token{Kind: token.RegexLit, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
		}
	}

	sp := lx.cursor.SpanFrom(start)
	lx.report("unterminated-regex", sp, "unterminated regex literal")
	return token.Token{Kind: token.RegexLit, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}
