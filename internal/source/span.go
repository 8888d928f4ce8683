package source

import (
	"fmt"
)

// Span is a half-open byte range [Start, End) inside a single file version.
type Span struct {
	File  FileID
	Start uint32
	End   uint32
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

// Contains reports whether the byte offset falls inside the span.
func (s Span) Contains(off uint32) bool {
	return s.Start <= off && off < s.End
}

// Overlaps reports whether two ranges in the same file intersect.
func (s Span) Overlaps(start, end uint32) bool {
	return s.Start < end && s.End > start
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Cover extends the span to include other (same file only).
func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// Shift moves the span by a signed byte delta. The caller guarantees the
// result stays non-negative.
func (s Span) Shift(delta int64) Span {
	return Span{
		File:  s.File,
		Start: uint32(int64(s.Start) + delta),
		End:   uint32(int64(s.End) + delta),
	}
}
