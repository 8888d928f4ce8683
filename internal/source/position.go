package source

import (
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"
)

// ErrInvalidOffset reports an offset outside the file or inside a
// multi-byte code point. Callers are expected to re-validate their input;
// the engine never rounds a bad offset silently.
var ErrInvalidOffset = errors.New("invalid offset")

// ValidOffset reports whether off is inside the file (or at EOF) and on a
// UTF-8 code point boundary.
func (f *File) ValidOffset(off uint32) bool {
	if off > uint32(len(f.Content)) {
		return false
	}
	if off == uint32(len(f.Content)) {
		return true
	}
	return utf8.RuneStart(f.Content[off])
}

// lineAt returns the 1-based line containing off and the byte offset of
// that line's first byte. off must already be bounds-checked.
func (f *File) lineAt(off uint32) (line, lineStart uint32) {
	// LineIdx holds offsets of '\n'; the first entry >= off decides the line.
	idx := sort.Search(len(f.LineIdx), func(i int) bool { return f.LineIdx[i] >= off })
	line = uint32(idx) + 1
	if idx > 0 {
		lineStart = f.LineIdx[idx-1] + 1
	}
	return line, lineStart
}

// OffsetToPosition converts a byte offset into a 1-based line/column pair.
// The column is counted in bytes for EncodingUTF8 and in 16-bit code units
// for EncodingUTF16. Offsets past EOF or inside a multi-byte code point
// yield ErrInvalidOffset.
func (f *File) OffsetToPosition(off uint32, enc Encoding) (LineCol, error) {
	if off > uint32(len(f.Content)) {
		return LineCol{}, fmt.Errorf("%w: offset %d past end %d", ErrInvalidOffset, off, len(f.Content))
	}
	if off < uint32(len(f.Content)) && !utf8.RuneStart(f.Content[off]) {
		return LineCol{}, fmt.Errorf("%w: offset %d is inside a code point", ErrInvalidOffset, off)
	}

	line, lineStart := f.lineAt(off)
	switch enc {
	case EncodingUTF16:
		col := uint32(1)
		for i := lineStart; i < off; {
			r, size := utf8.DecodeRune(f.Content[i:])
			if r > 0xFFFF {
				col += 2
			} else {
				col++
			}
			i += uint32(size)
		}
		return LineCol{Line: line, Col: col}, nil
	default:
		return LineCol{Line: line, Col: off - lineStart + 1}, nil
	}
}

// PositionToOffset is the inverse of OffsetToPosition. A position pointing
// outside the file, past the end of its line, or into the middle of a
// multi-byte code point yields ErrInvalidOffset.
func (f *File) PositionToOffset(pos LineCol, enc Encoding) (uint32, error) {
	if pos.Line == 0 || pos.Col == 0 {
		return 0, fmt.Errorf("%w: line and column are 1-based", ErrInvalidOffset)
	}
	lineCount := uint32(len(f.LineIdx)) + 1
	if pos.Line > lineCount {
		return 0, fmt.Errorf("%w: line %d past end (file has %d lines)", ErrInvalidOffset, pos.Line, lineCount)
	}

	var lineStart uint32
	if pos.Line > 1 {
		lineStart = f.LineIdx[pos.Line-2] + 1
	}
	lineEnd := uint32(len(f.Content))
	if int(pos.Line-1) < len(f.LineIdx) {
		lineEnd = f.LineIdx[pos.Line-1]
	}

	switch enc {
	case EncodingUTF16:
		col := uint32(1)
		i := lineStart
		for i < lineEnd && col < pos.Col {
			r, size := utf8.DecodeRune(f.Content[i:])
			if r > 0xFFFF {
				col += 2
			} else {
				col++
			}
			i += uint32(size)
		}
		if col != pos.Col {
			return 0, fmt.Errorf("%w: column %d not addressable on line %d", ErrInvalidOffset, pos.Col, pos.Line)
		}
		return i, nil
	default:
		off := lineStart + pos.Col - 1
		if off > lineEnd {
			return 0, fmt.Errorf("%w: column %d past end of line %d", ErrInvalidOffset, pos.Col, pos.Line)
		}
		if off < uint32(len(f.Content)) && !utf8.RuneStart(f.Content[off]) {
			return 0, fmt.Errorf("%w: column %d is inside a code point", ErrInvalidOffset, pos.Col)
		}
		return off, nil
	}
}

// ResolveSpan converts a span into start/end positions in one call.
func (f *File) ResolveSpan(span Span, enc Encoding) (start, end LineCol, err error) {
	start, err = f.OffsetToPosition(span.Start, enc)
	if err != nil {
		return LineCol{}, LineCol{}, err
	}
	end, err = f.OffsetToPosition(span.End, enc)
	if err != nil {
		return LineCol{}, LineCol{}, err
	}
	return start, end, nil
}

// GetLine returns the text of a 1-based line without its newline, or ""
// when the line does not exist.
func (f *File) GetLine(lineNum uint32) string {
	if lineNum == 0 {
		return ""
	}
	var start uint32
	switch {
	case lineNum == 1:
		start = 0
	case int(lineNum-2) < len(f.LineIdx):
		start = f.LineIdx[lineNum-2] + 1
	default:
		return ""
	}
	end := uint32(len(f.Content))
	if int(lineNum-1) < len(f.LineIdx) {
		end = f.LineIdx[lineNum-1]
	}
	if start >= uint32(len(f.Content)) {
		return ""
	}
	return string(f.Content[start:end])
}
