package lexer

import (
	"perlscope/internal/token"
)

// scanOperatorOrPunct scans operators and punctuation, longest match first.
func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	b := lx.cursor.Bump()
	kind := token.Invalid

	switch b {
	case '+':
		switch {
		case lx.cursor.Eat('+'):
			kind = token.PlusPlus
		case lx.cursor.Eat('='):
			kind = token.PlusAssign
		default:
			kind = token.Plus
		}
	case '-':
		switch {
		case lx.cursor.Eat('-'):
			kind = token.MinusMinus
		case lx.cursor.Eat('='):
			kind = token.MinusAssign
		case lx.cursor.Eat('>'):
			kind = token.Arrow
		default:
			kind = token.Minus
		}
	case '*':
		switch {
		case lx.cursor.Eat('*'):
			kind = token.StarStar
		case lx.cursor.Eat('='):
			kind = token.StarAssign
		default:
			kind = token.Star
		}
	case '/':
		// regexAllowed already said no: this is division territory.
		switch {
		case lx.cursor.Eat('/'):
			if lx.cursor.Eat('=') {
				kind = token.DefOrAssign
			} else {
				kind = token.DefOr
			}
		case lx.cursor.Eat('='):
			kind = token.SlashAssign
		default:
			kind = token.Slash
		}
	case '%':
		kind = token.Percent
	case '.':
		switch {
		case lx.cursor.Eat('.'):
			kind = token.DotDot
		case lx.cursor.Eat('='):
			kind = token.DotAssign
		default:
			kind = token.Dot
		}
	case '=':
		switch {
		case lx.cursor.Eat('='):
			kind = token.EqEq
		case lx.cursor.Eat('~'):
			kind = token.Match
		case lx.cursor.Eat('>'):
			kind = token.FatArrow
		default:
			kind = token.Assign
		}
	case '!':
		switch {
		case lx.cursor.Eat('='):
			kind = token.BangEq
		case lx.cursor.Eat('~'):
			kind = token.NotMatch
		default:
			kind = token.Bang
		}
	case '<':
		switch {
		case lx.cursor.Eat('='):
			if lx.cursor.Eat('>') {
				kind = token.Spaceship
			} else {
				kind = token.LtEq
			}
		default:
			kind = token.Lt
		}
	case '>':
		if lx.cursor.Eat('=') {
			kind = token.GtEq
		} else {
			kind = token.Gt
		}
	case '&':
		if lx.cursor.Eat('&') {
			kind = token.AndAnd
		} else {
			kind = token.Amp
		}
	case '|':
		switch {
		case lx.cursor.Eat('|'):
			if lx.cursor.Eat('=') {
				kind = token.OrOrAssign
			} else {
				kind = token.OrOr
			}
		default:
			kind = token.Invalid
		}
	case '?':
		kind = token.Question
	case ':':
		kind = token.Colon
	case ';':
		kind = token.Semicolon
	case ',':
		kind = token.Comma
	case '\\':
		kind = token.Backslash
	case '(':
		kind = token.LParen
	case ')':
		kind = token.RParen
	case '{':
		kind = token.LBrace
	case '}':
		kind = token.RBrace
	case '[':
		kind = token.LBracket
	case ']':
		kind = token.RBracket
	}

	sp := lx.cursor.SpanFrom(start)
	text := string(lx.file.Content[sp.Start:sp.End])
	if kind == token.Invalid {
		lx.report("unexpected-byte", sp, "unexpected character "+text)
	}
	return token.Token{Kind: kind, Span: sp, Text: text}
}
