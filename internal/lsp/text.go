package lsp

import "unicode/utf8"

// offsetForPosition converts an LSP position (0-based line, UTF-16
// column) into a byte offset in text, clamping past-end positions.
func offsetForPosition(text string, pos position) int {
	if pos.Line < 0 || pos.Character < 0 {
		return 0
	}
	line := 0
	i := 0
	for i < len(text) && line < pos.Line {
		if text[i] == '\n' {
			line++
		}
		i++
	}
	if line < pos.Line {
		return len(text)
	}
	utf16Units := 0
	for i < len(text) {
		if text[i] == '\n' {
			break
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		need := 1
		if r > 0xFFFF {
			need = 2
		}
		if utf16Units+need > pos.Character {
			break
		}
		utf16Units += need
		i += size
		if utf16Units == pos.Character {
			break
		}
	}
	return i
}

// positionForOffset is the inverse of offsetForPosition.
func positionForOffset(text string, off int) position {
	if off < 0 {
		off = 0
	}
	if off > len(text) {
		off = len(text)
	}
	line := 0
	lineStart := 0
	for i := 0; i < off; i++ {
		if text[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	utf16Units := 0
	for i := lineStart; i < off; {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r > 0xFFFF {
			utf16Units += 2
		} else {
			utf16Units++
		}
		i += size
	}
	return position{Line: line, Character: utf16Units}
}
