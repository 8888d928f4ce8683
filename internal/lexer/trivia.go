package lexer

import (
	"strings"

	"perlscope/internal/token"
)

// collectLeadingTrivia gathers runs of trivia before a significant token:
//   - spaces/tabs coalesce into one TriviaSpace
//   - consecutive newlines coalesce into one TriviaNewline
//   - '#' to end of line is a TriviaLineComment
//   - '=word' at column 0 opens a POD block running through '=cut' (or EOF)
//   - __END__/__DATA__ at column 0 swallow the rest of the file
func (lx *Lexer) collectLeadingTrivia() {
	lx.hold = lx.hold[:0]
	for !lx.cursor.EOF() {
		start := lx.cursor.Mark()
		b := lx.cursor.Peek()

		if b == ' ' || b == '\t' {
			for {
				b2 := lx.cursor.Peek()
				if b2 != ' ' && b2 != '\t' {
					break
				}
				lx.cursor.Bump()
			}
			lx.pushTrivia(token.TriviaSpace, start)
			continue
		}

		if b == '\n' || b == '\r' {
			for {
				b2 := lx.cursor.Peek()
				if b2 != '\n' && b2 != '\r' {
					break
				}
				lx.cursor.Bump()
			}
			lx.pushTrivia(token.TriviaNewline, start)
			continue
		}

		if b == '#' {
			for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
				lx.cursor.Bump()
			}
			lx.pushTrivia(token.TriviaLineComment, start)
			continue
		}

		if b == '=' && lx.cursor.AtLineStart() && isAlpha(lx.cursor.PeekAt(1)) {
			lx.scanPod(start)
			continue
		}

		if b == '_' && lx.cursor.AtLineStart() && lx.atDataSection() {
			// Everything after __END__/__DATA__ is non-code. Data
			// sections never close, so the open flag always sticks.
			for !lx.cursor.EOF() {
				lx.cursor.Bump()
			}
			lx.openSection = true
			lx.pushTrivia(token.TriviaPod, start)
			continue
		}

		break
	}
}

// scanPod consumes a POD block from the opening '=word' line through the
// '=cut' line inclusive. An unterminated block runs to EOF without a
// report: POD is documentation, not an error.
func (lx *Lexer) scanPod(start Mark) {
	closed := false
	for !lx.cursor.EOF() {
		lineStart := lx.cursor.Off
		for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
			lx.cursor.Bump()
		}
		line := string(lx.file.Content[lineStart:lx.cursor.Off])
		lx.cursor.Eat('\n')
		if strings.HasPrefix(line, "=cut") {
			closed = true
			break
		}
	}
	lx.openSection = !closed
	lx.pushTrivia(token.TriviaPod, start)
}

func (lx *Lexer) atDataSection() bool {
	rest := lx.file.Content[lx.cursor.Off:lx.cursor.limit()]
	return hasLinePrefix(rest, "__END__") || hasLinePrefix(rest, "__DATA__")
}

func hasLinePrefix(b []byte, prefix string) bool {
	if len(b) < len(prefix) || string(b[:len(prefix)]) != prefix {
		return false
	}
	return len(b) == len(prefix) || b[len(prefix)] == '\n' || b[len(prefix)] == '\r'
}

func (lx *Lexer) pushTrivia(kind token.TriviaKind, start Mark) {
	sp := lx.cursor.SpanFrom(start)
	lx.hold = append(lx.hold, token.Trivia{
		Kind: kind,
		Span: sp,
		Text: string(lx.file.Content[sp.Start:sp.End]),
	})
}
