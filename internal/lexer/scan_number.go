package lexer

import (
	"perlscope/internal/token"
)

// scanNumber scans decimal/float literals with optional exponent, plus
// 0x/0b/0o prefixes and '_' digit separators.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()

	if lx.cursor.Peek() == '0' {
		switch lx.cursor.PeekAt(1) {
		case 'x', 'X':
			lx.cursor.Bump()
			lx.cursor.Bump()
			for isHex(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
				lx.cursor.Bump()
			}
			return lx.numberToken(start)
		case 'b', 'B':
			lx.cursor.Bump()
			lx.cursor.Bump()
			for lx.cursor.Peek() == '0' || lx.cursor.Peek() == '1' || lx.cursor.Peek() == '_' {
				lx.cursor.Bump()
			}
			return lx.numberToken(start)
		}
	}

	lx.scanDigits()
	if lx.cursor.Peek() == '.' && isDec(lx.cursor.PeekAt(1)) {
		lx.cursor.Bump()
		lx.scanDigits()
	}
	if b := lx.cursor.Peek(); b == 'e' || b == 'E' {
		after := lx.cursor.PeekAt(1)
		if isDec(after) || ((after == '+' || after == '-') && isDec(lx.cursor.PeekAt(2))) {
			lx.cursor.Bump()
			if b2 := lx.cursor.Peek(); b2 == '+' || b2 == '-' {
				lx.cursor.Bump()
			}
			lx.scanDigits()
		}
	}
	return lx.numberToken(start)
}

func (lx *Lexer) scanDigits() {
	for isDec(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
		lx.cursor.Bump()
	}
}

func (lx *Lexer) numberToken(start Mark) token.Token {
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.NumberLit, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

func isHex(b byte) bool {
	return isDec(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
