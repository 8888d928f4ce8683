package lexer

import (
	"perlscope/internal/token"
)

// scanIdentOrKeyword scans a bareword and checks it against the keyword
// table. Package-qualified names (Foo::Bar::baz) are one Ident token.
// qw(...) lists are recognized here since 'qw' is lexically a bareword.
func (lx *Lexer) scanIdentOrKeyword() token.Token {
	start := lx.cursor.Mark()

	lx.cursor.Bump()
	for {
		b := lx.cursor.Peek()
		if isIdentContinueByte(b) {
			lx.cursor.Bump()
			continue
		}
		// '::' continues a qualified name only when an ident follows.
		if b == ':' && lx.cursor.PeekAt(1) == ':' && isIdentStartByte(lx.cursor.PeekAt(2)) {
			lx.cursor.Bump()
			lx.cursor.Bump()
			continue
		}
		break
	}

	sp := lx.cursor.SpanFrom(start)
	text := string(lx.file.Content[sp.Start:sp.End])

	if text == "qw" && isQwDelim(lx.cursor.Peek()) {
		return lx.scanQwList(start)
	}

	if k, ok := token.LookupKeyword(text); ok {
		return token.Token{Kind: k, Span: sp, Text: text}
	}
	return token.Token{Kind: token.Ident, Span: sp, Text: text}
}

func isQwDelim(b byte) bool {
	switch b {
	case '(', '[', '{', '<', '/', '!', '|':
		return true
	default:
		return false
	}
}

// scanQwList consumes qw<delim>...<closer>. The token text includes the
// whole construct; the parser splits the words.
func (lx *Lexer) scanQwList(start Mark) token.Token {
	open := lx.cursor.Bump()
	closer := closingDelim(open)
	for !lx.cursor.EOF() && lx.cursor.Peek() != closer {
		lx.cursor.Bump()
	}
	if !lx.cursor.Eat(closer) {
		sp := lx.cursor.SpanFrom(start)
		lx.report("unterminated-qw", sp, "unterminated qw list")
		return token.Token{Kind: token.QwList, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.QwList, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}
