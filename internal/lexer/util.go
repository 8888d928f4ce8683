package lexer

// Byte classifiers. Perl identifiers in the supported subset are ASCII:
// [A-Za-z_][A-Za-z0-9_]* with optional '::' package separators.

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isDec(b byte) bool {
	return b >= '0' && b <= '9'
}

func isIdentStartByte(b byte) bool {
	return isAlpha(b) || b == '_'
}

func isIdentContinueByte(b byte) bool {
	return isIdentStartByte(b) || isDec(b)
}

// closingDelim maps a qw/quote opening delimiter to its closer.
func closingDelim(open byte) byte {
	switch open {
	case '(':
		return ')'
	case '[':
		return ']'
	case '{':
		return '}'
	case '<':
		return '>'
	default:
		return open
	}
}
