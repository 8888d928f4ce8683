package source

import (
	"errors"
	"testing"
	"unicode/utf8"
)

func TestOffsetToPositionASCII(t *testing.T) {
	f := NewFile(0, "test.pl", []byte("my $x = 1;\nprint $x;\n"), FileVirtual)

	cases := []struct {
		off  uint32
		line uint32
		col  uint32
	}{
		{0, 1, 1},
		{3, 1, 4},
		{10, 1, 11}, // the newline itself belongs to line 1
		{11, 2, 1},
		{17, 2, 7},
		{21, 3, 1}, // EOF after trailing newline
	}
	for _, tc := range cases {
		pos, err := f.OffsetToPosition(tc.off, EncodingUTF8)
		if err != nil {
			t.Fatalf("offset %d: %v", tc.off, err)
		}
		if pos.Line != tc.line || pos.Col != tc.col {
			t.Errorf("offset %d: got %d:%d, want %d:%d", tc.off, pos.Line, pos.Col, tc.line, tc.col)
		}
	}
}

func TestPositionRoundTrip(t *testing.T) {
	texts := []string{
		"my $x = 1;\nprint $x;\n",
		"# комментарий\nmy $имя = \"значение\";\n",
		"my $emoji = \"\U0001F600\"; # astral\n",
		"",
		"no trailing newline",
	}
	for _, text := range texts {
		f := NewFile(0, "rt.pl", []byte(text), FileVirtual)
		for _, enc := range []Encoding{EncodingUTF8, EncodingUTF16} {
			for off := uint32(0); off <= uint32(len(f.Content)); off++ {
				if !f.ValidOffset(off) {
					continue
				}
				pos, err := f.OffsetToPosition(off, enc)
				if err != nil {
					t.Fatalf("%s offset %d: %v", enc, off, err)
				}
				back, err := f.PositionToOffset(pos, enc)
				if err != nil {
					t.Fatalf("%s pos %d:%d: %v", enc, pos.Line, pos.Col, err)
				}
				if back != off {
					t.Errorf("%s: offset %d -> %d:%d -> %d", enc, off, pos.Line, pos.Col, back)
				}
			}
		}
	}
}

func TestOffsetInsideCodePointRejected(t *testing.T) {
	f := NewFile(0, "wide.pl", []byte("my $п = 1;\n"), FileVirtual)

	// "$п": the Cyrillic letter occupies two bytes starting after "my $".
	inside := uint32(5)
	if utf8.RuneStart(f.Content[inside]) {
		t.Fatalf("test setup: offset %d should be a continuation byte", inside)
	}
	if _, err := f.OffsetToPosition(inside, EncodingUTF8); !errors.Is(err, ErrInvalidOffset) {
		t.Errorf("mid-code-point offset: got %v, want ErrInvalidOffset", err)
	}
	if _, err := f.OffsetToPosition(uint32(len(f.Content)+1), EncodingUTF8); !errors.Is(err, ErrInvalidOffset) {
		t.Errorf("past-EOF offset: got %v, want ErrInvalidOffset", err)
	}
}

func TestUTF16Columns(t *testing.T) {
	// One astral-plane rune (2 UTF-16 units, 4 UTF-8 bytes) before "x".
	f := NewFile(0, "emoji.pl", []byte("\U0001F600x"), FileVirtual)

	pos, err := f.OffsetToPosition(4, EncodingUTF16)
	if err != nil {
		t.Fatal(err)
	}
	if pos.Col != 3 {
		t.Errorf("UTF-16 column after astral rune: got %d, want 3", pos.Col)
	}

	// Column 2 points between the surrogate halves and is not addressable.
	if _, err := f.PositionToOffset(LineCol{Line: 1, Col: 2}, EncodingUTF16); !errors.Is(err, ErrInvalidOffset) {
		t.Errorf("surrogate-interior column: got %v, want ErrInvalidOffset", err)
	}
}

func TestPositionToOffsetBounds(t *testing.T) {
	f := NewFile(0, "b.pl", []byte("ab\ncd\n"), FileVirtual)

	if _, err := f.PositionToOffset(LineCol{Line: 0, Col: 1}, EncodingUTF8); !errors.Is(err, ErrInvalidOffset) {
		t.Errorf("line 0: got %v", err)
	}
	if _, err := f.PositionToOffset(LineCol{Line: 9, Col: 1}, EncodingUTF8); !errors.Is(err, ErrInvalidOffset) {
		t.Errorf("line past EOF: got %v", err)
	}
	if _, err := f.PositionToOffset(LineCol{Line: 1, Col: 9}, EncodingUTF8); !errors.Is(err, ErrInvalidOffset) {
		t.Errorf("column past EOL: got %v", err)
	}
}

func TestGetLine(t *testing.T) {
	f := NewFile(0, "l.pl", []byte("first\nsecond\nthird"), FileVirtual)

	if got := f.GetLine(2); got != "second" {
		t.Errorf("line 2: %q", got)
	}
	if got := f.GetLine(3); got != "third" {
		t.Errorf("line 3: %q", got)
	}
	if got := f.GetLine(4); got != "" {
		t.Errorf("line 4: %q", got)
	}
	if got := f.GetLine(0); got != "" {
		t.Errorf("line 0: %q", got)
	}
}
