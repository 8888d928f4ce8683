package lexer

import (
	"perlscope/internal/token"
)

// scanVariableOrOp scans $name/@name/%name (sigil included in the token).
// A '$'/'@'/'%' not followed by a name falls back to the operator scanner:
// '%' is also the modulus operator and '$'/'@' alone are invalid.
// Special punctuation variables ($_, $0, @_, $1..$9) are supported; the
// full zoo of $&-style globals is not part of the subset.
func (lx *Lexer) scanVariableOrOp() token.Token {
	start := lx.cursor.Mark()
	sigil := lx.cursor.Peek()
	next := lx.cursor.PeekAt(1)

	var kind token.Kind
	switch sigil {
	case '$':
		kind = token.ScalarVar
	case '@':
		kind = token.ArrayVar
	case '%':
		kind = token.HashVar
	}

	switch {
	case isIdentStartByte(next):
		lx.cursor.Bump() // sigil
		lx.cursor.Bump()
		for {
			b := lx.cursor.Peek()
			if isIdentContinueByte(b) {
				lx.cursor.Bump()
				continue
			}
			if b == ':' && lx.cursor.PeekAt(1) == ':' && isIdentStartByte(lx.cursor.PeekAt(2)) {
				lx.cursor.Bump()
				lx.cursor.Bump()
				continue
			}
			break
		}

	case sigil == '$' && isDec(next):
		// $0 and capture group variables $1..$9.
		lx.cursor.Bump()
		for isDec(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}

	case sigil == '$' && (next == '$' || next == '{'):
		// Dereference or ${name}: lex the sigil alone as an invalid-ish
		// scalar token; the parser reports the unsupported construct.
		lx.cursor.Bump()
		sp := lx.cursor.SpanFrom(start)
		lx.report("unsupported-deref", sp, "dereference syntax is outside the supported subset")
		return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}

	default:
		return lx.scanOperatorOrPunct()
	}

	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: kind, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}
