package source

import (
	"fmt"
)

// Edit is a byte-range replacement: [Start, End) of the previous version
// is replaced with NewText. Edits are consumed by the reparse they
// trigger and never retained.
type Edit struct {
	Start   uint32
	End     uint32
	NewText string
}

// Delta returns the signed change in document length.
func (e Edit) Delta() int64 {
	return int64(len(e.NewText)) - int64(e.End-e.Start)
}

// Validate checks the edit against the file it applies to. Both endpoints
// must be inside the text and on code point boundaries.
func (e Edit) Validate(f *File) error {
	if e.Start > e.End {
		return fmt.Errorf("%w: edit start %d after end %d", ErrInvalidOffset, e.Start, e.End)
	}
	if !f.ValidOffset(e.Start) || !f.ValidOffset(e.End) {
		return fmt.Errorf("%w: edit range %d-%d in file of %d bytes", ErrInvalidOffset, e.Start, e.End, len(f.Content))
	}
	return nil
}

// Apply produces the text that results from the edit.
func (e Edit) Apply(old []byte) []byte {
	out := make([]byte, 0, len(old)+len(e.NewText)-int(e.End-e.Start))
	out = append(out, old[:e.Start]...)
	out = append(out, e.NewText...)
	out = append(out, old[e.End:]...)
	return out
}
